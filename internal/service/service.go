package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/Skufu/ousia/internal/engine"
	"github.com/Skufu/ousia/internal/logging"
	"github.com/Skufu/ousia/internal/metrics"
	"github.com/Skufu/ousia/internal/scenarios"
)

var (
	ErrMissingPatient = errors.New("either patient or scenario is required")
	ErrBatchTooLarge  = errors.New("batch too large")
)

// Request asks for one evaluation. Patient takes precedence over Scenario.
// An empty Mode falls back to the service default.
type Request struct {
	Mode     string          `json:"mode"`
	Scenario string          `json:"scenario"`
	Patient  *engine.Patient `json:"patient"`
}

type GateRequest struct {
	Consent           engine.ConsentLevel       `json:"consent"`
	Goal              engine.Goal               `json:"goal"`
	Contraindications []engine.Contraindication `json:"contra"`
}

type GateResponse struct {
	engine.GateResult
	Granted []engine.Decision `json:"granted"`
}

// BatchItem is one batch slot; exactly one of Outcome and Error is set.
type BatchItem struct {
	Index    int             `json:"index"`
	Outcome  *engine.Outcome `json:"outcome,omitempty"`
	Error    string          `json:"error,omitempty"`
	Problems []string        `json:"problems,omitempty"`
}

type Options struct {
	DefaultMode      engine.Mode
	MaxBatchSize     int
	BatchConcurrency int
	Metrics          *metrics.Metrics
	Logger           *slog.Logger
}

// Service validates requests, runs the engine and records metrics.
type Service struct {
	catalog          *scenarios.Catalog
	defaultMode      engine.Mode
	maxBatchSize     int
	batchConcurrency int
	metrics          *metrics.Metrics
	logger           *slog.Logger
}

func New(catalog *scenarios.Catalog, opts Options) *Service {
	s := &Service{
		catalog:          catalog,
		defaultMode:      opts.DefaultMode,
		maxBatchSize:     opts.MaxBatchSize,
		batchConcurrency: opts.BatchConcurrency,
		metrics:          opts.Metrics,
		logger:           opts.Logger,
	}
	if s.defaultMode == "" {
		s.defaultMode = engine.ModeClinical
	}
	if s.maxBatchSize <= 0 {
		s.maxBatchSize = 32
	}
	if s.batchConcurrency <= 0 {
		s.batchConcurrency = 1
	}
	if s.logger == nil {
		s.logger = logging.Discard()
	}
	return s
}

func (s *Service) Scenarios() []scenarios.Scenario {
	return s.catalog.List()
}

func (s *Service) Scenario(key string) (scenarios.Scenario, error) {
	return s.catalog.Lookup(key)
}

// Simulate resolves the mode and patient, validates, and evaluates.
func (s *Service) Simulate(ctx context.Context, req Request) (engine.Outcome, error) {
	mode := s.defaultMode
	if req.Mode != "" {
		parsed, err := engine.ParseMode(req.Mode)
		if err != nil {
			s.metrics.IncrementRejection("mode")
			return engine.Outcome{}, err
		}
		mode = parsed
	}

	patient, err := s.resolvePatient(req)
	if err != nil {
		return engine.Outcome{}, err
	}
	if err := engine.ValidatePatient(patient); err != nil {
		s.metrics.IncrementRejection("validation")
		return engine.Outcome{}, err
	}

	start := time.Now()
	out := engine.Evaluate(patient, mode)
	elapsed := time.Since(start)

	signals := make([]string, len(out.Report.DetectedSignals))
	for i, sig := range out.Report.DetectedSignals {
		signals[i] = string(sig)
	}
	s.metrics.ObserveDecision(string(out.Report.Decision), string(mode), signals, elapsed)
	s.logger.DebugContext(ctx, "simulation evaluated",
		"mode", mode,
		"decision", out.Report.Decision,
		"signals", signals,
		"elapsed", elapsed,
	)
	return out, nil
}

func (s *Service) resolvePatient(req Request) (engine.Patient, error) {
	if req.Patient != nil {
		return *req.Patient, nil
	}
	if req.Scenario == "" {
		s.metrics.IncrementRejection("validation")
		return engine.Patient{}, ErrMissingPatient
	}
	sc, err := s.catalog.Lookup(req.Scenario)
	if err != nil {
		s.metrics.IncrementRejection("scenario")
		return engine.Patient{}, err
	}
	return sc.Patient, nil
}

// SimulateBatch evaluates requests concurrently. Results keep input order and
// per-item failures are reported in the item. Only cancellation fails the batch.
func (s *Service) SimulateBatch(ctx context.Context, reqs []Request) ([]BatchItem, error) {
	if len(reqs) > s.maxBatchSize {
		return nil, fmt.Errorf("%w: %d items, limit %d", ErrBatchTooLarge, len(reqs), s.maxBatchSize)
	}

	items := make([]BatchItem, len(reqs))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(s.batchConcurrency)

	for i, req := range reqs {
		i, req := i, req
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			items[i] = s.batchItem(ctx, i, req)
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}
	return items, nil
}

func (s *Service) batchItem(ctx context.Context, i int, req Request) BatchItem {
	item := BatchItem{Index: i}
	out, err := s.Simulate(ctx, req)
	if err != nil {
		item.Error = err.Error()
		var verr *engine.ValidationError
		if errors.As(err, &verr) {
			item.Error = engine.ErrInvalidPatient.Error()
			item.Problems = verr.Problems
		}
		return item
	}
	item.Outcome = &out
	return item
}

// Gate runs the policy gate alone, for callers previewing permissions.
func (s *Service) Gate(req GateRequest) (GateResponse, error) {
	if err := engine.ValidateGateInput(req.Consent, req.Goal, req.Contraindications); err != nil {
		s.metrics.IncrementRejection("validation")
		return GateResponse{}, err
	}
	result := engine.Gate(req.Consent, req.Goal, req.Contraindications)
	return GateResponse{GateResult: result, Granted: result.Allowed.Granted()}, nil
}
