package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides observability for simulation requests.
type Metrics struct {
	// Decisions by decision and mode
	Decisions *prometheus.CounterVec

	// Detected signals by tag
	Signals *prometheus.CounterVec

	// Requests rejected before evaluation, by reason
	Rejections *prometheus.CounterVec

	EvaluateLatency prometheus.Histogram
}

// New registers the simulation metrics on reg.
func New(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		Decisions: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ousia_decisions_total",
			Help: "Total decisions produced by decision and operating mode",
		}, []string{"decision", "mode"}),

		Signals: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ousia_signals_detected_total",
			Help: "Total signals detected by signal tag",
		}, []string{"signal"}),

		Rejections: factory.NewCounterVec(prometheus.CounterOpts{
			Name: "ousia_rejected_requests_total",
			Help: "Total requests rejected before evaluation by reason",
		}, []string{"reason"}), // reason: "validation", "mode", "scenario"

		EvaluateLatency: factory.NewHistogram(prometheus.HistogramOpts{
			Name:    "ousia_evaluate_duration_seconds",
			Help:    "Duration of one pipeline evaluation",
			Buckets: []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01},
		}),
	}
}

// ObserveDecision records one completed evaluation.
func (m *Metrics) ObserveDecision(decision, mode string, signals []string, d time.Duration) {
	if m == nil {
		return
	}
	m.Decisions.WithLabelValues(decision, mode).Inc()
	for _, s := range signals {
		m.Signals.WithLabelValues(s).Inc()
	}
	m.EvaluateLatency.Observe(d.Seconds())
}

// IncrementRejection records a request refused before evaluation.
func (m *Metrics) IncrementRejection(reason string) {
	if m != nil {
		m.Rejections.WithLabelValues(reason).Inc()
	}
}
