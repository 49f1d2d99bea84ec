package main

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/Skufu/ousia/internal/engine"
	"github.com/Skufu/ousia/internal/logging"
	"github.com/Skufu/ousia/internal/metrics"
	"github.com/Skufu/ousia/internal/scenarios"
	"github.com/Skufu/ousia/internal/service"
)

type fakeDB struct {
	err error
}

func (f fakeDB) Ping(ctx context.Context) error {
	return f.err
}

func newTestRouter(t *testing.T, db HealthChecker, opts service.Options) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	catalog, err := scenarios.Load()
	if err != nil {
		t.Fatalf("load scenarios: %v", err)
	}
	reg := prometheus.NewRegistry()
	opts.Metrics = metrics.New(reg)
	return setupRouter(service.New(catalog, opts), db, reg, logging.Discard())
}

func do(router *gin.Engine, method, path, body string) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	req, _ := http.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	router.ServeHTTP(w, req)
	return w
}

func TestRouterHealthz(t *testing.T) {
	router := newTestRouter(t, fakeDB{}, service.Options{})

	w := do(router, "GET", "/healthz", "")

	if w.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `"status":"ok"`) {
		t.Fatalf("unexpected body: %s", w.Body.String())
	}
	if w.Header().Get(requestIDHeader) == "" {
		t.Fatal("expected a request id header")
	}
}

func TestRouterReadyz(t *testing.T) {
	t.Run("db disabled", func(t *testing.T) {
		w := do(newTestRouter(t, nil, service.Options{}), "GET", "/readyz", "")
		if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"db":"disabled"`) {
			t.Fatalf("unexpected response %d: %s", w.Code, w.Body.String())
		}
	})

	t.Run("db unhealthy", func(t *testing.T) {
		w := do(newTestRouter(t, fakeDB{err: errors.New("connection refused")}, service.Options{}), "GET", "/readyz", "")
		if w.Code != http.StatusServiceUnavailable {
			t.Fatalf("expected 503, got %d", w.Code)
		}
		if !strings.Contains(w.Body.String(), "connection refused") {
			t.Fatalf("unexpected body: %s", w.Body.String())
		}
	})
}

// Ensure limitBodySize middleware allows small payloads and blocks large ones.
func TestLimitBodySize(t *testing.T) {
	gin.SetMode(gin.TestMode)
	router := gin.New()
	router.Use(limitBodySize(10))
	router.POST("/echo", func(c *gin.Context) {
		_, err := c.GetRawData()
		if err != nil {
			c.JSON(http.StatusRequestEntityTooLarge, gin.H{"error": "too large"})
			return
		}
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	t.Run("within limit", func(t *testing.T) {
		w := do(router, "POST", "/echo", "12345")
		if w.Code != http.StatusOK {
			t.Fatalf("expected 200, got %d", w.Code)
		}
	})

	t.Run("over limit", func(t *testing.T) {
		w := do(router, "POST", "/echo", "01234567890")
		if w.Code != http.StatusRequestEntityTooLarge {
			t.Fatalf("expected 413, got %d", w.Code)
		}
	})
}

func TestSimulateScenarioA(t *testing.T) {
	router := newTestRouter(t, nil, service.Options{})

	w := do(router, "POST", "/api/simulate", `{
		"mode": "clinical",
		"patient": {
			"symptoms": ["localized pain", "redness", "swelling"],
			"hr": 82, "temp": 37.2, "bp_sys": 118, "bp_dia": 76, "spo2": 98,
			"goal": "restore", "consent": 2, "contra": []
		}
	}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var out engine.Outcome
	if err := json.Unmarshal(w.Body.Bytes(), &out); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if out.Report.Decision != engine.DecisionRepair {
		t.Fatalf("expected repair, got %s", out.Report.Decision)
	}
	if out.Report.InterventionPlan[0].Action != "localized biomaterial scaffold support" {
		t.Fatalf("expected scaffold support first, got %+v", out.Report.InterventionPlan)
	}
	if !out.Gate.Allowed.Repair || out.Gate.Allowed.Augment {
		t.Fatalf("unexpected permissions: %+v", out.Gate.Allowed)
	}
}

func TestSimulateByScenarioKey(t *testing.T) {
	router := newTestRouter(t, nil, service.Options{DefaultMode: engine.ModeSpeculative})

	w := do(router, "POST", "/api/simulate", `{"scenario": "cognitive-enhancement"}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	body := w.Body.String()
	if !strings.Contains(body, `"decision":"enhance"`) || !strings.Contains(body, `"mode":"speculative"`) {
		t.Fatalf("unexpected body: %s", body)
	}
}

func TestSimulateValidation(t *testing.T) {
	router := newTestRouter(t, nil, service.Options{})

	w := do(router, "POST", "/api/simulate", `{
		"patient": {
			"symptoms": ["fever"],
			"hr": 80, "temp": 37.0, "bp_sys": 0, "bp_dia": 0, "spo2": 98,
			"goal": "restore", "consent": 2
		}
	}`)

	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422 for validation failure, got %d", w.Code)
	}
	body := strings.ToLower(w.Body.String())
	if !strings.Contains(body, "validation_failed") || !strings.Contains(body, "blood pressure") {
		t.Fatalf("expected validation error response, got %s", w.Body.String())
	}
}

func TestSimulateErrors(t *testing.T) {
	router := newTestRouter(t, nil, service.Options{})

	tests := []struct {
		name string
		body string
		code int
	}{
		{"malformed json", `{"patient":`, http.StatusBadRequest},
		{"unknown mode", `{"mode": "chaotic", "scenario": "minor-cut"}`, http.StatusUnprocessableEntity},
		{"nothing to evaluate", `{}`, http.StatusUnprocessableEntity},
		{"unknown scenario", `{"scenario": "moon-landing"}`, http.StatusNotFound},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := do(router, "POST", "/api/simulate", tt.body)
			if w.Code != tt.code {
				t.Fatalf("expected %d, got %d: %s", tt.code, w.Code, w.Body.String())
			}
		})
	}
}

func TestPolicyGate(t *testing.T) {
	router := newTestRouter(t, nil, service.Options{})

	w := do(router, "POST", "/api/policy/gate", `{"consent": 2, "goal": "performance", "contra": []}`)

	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Allowed engine.Permissions `json:"allowed"`
		Reasons []string           `json:"reasons"`
		Granted []engine.Decision  `json:"granted"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Granted) != 2 || resp.Allowed.Enhance {
		t.Fatalf("unexpected gate: %+v", resp)
	}
	if len(resp.Reasons) != 1 || resp.Reasons[0] != engine.ReasonEnhancementNotConsented {
		t.Fatalf("expected enhancement mismatch note, got %v", resp.Reasons)
	}

	w = do(router, "POST", "/api/policy/gate", `{"consent": 5, "goal": "restore"}`)
	if w.Code != http.StatusUnprocessableEntity {
		t.Fatalf("expected 422, got %d", w.Code)
	}
}

func TestScenarioRoutes(t *testing.T) {
	router := newTestRouter(t, nil, service.Options{})

	w := do(router, "GET", "/api/scenarios", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"key":"immunocompromised"`) {
		t.Fatalf("unexpected list response %d: %s", w.Code, w.Body.String())
	}

	w = do(router, "GET", "/api/scenarios/minor-cut", "")
	if w.Code != http.StatusOK || !strings.Contains(w.Body.String(), `"localized pain"`) {
		t.Fatalf("unexpected lookup response %d: %s", w.Code, w.Body.String())
	}

	w = do(router, "GET", "/api/scenarios/unknown", "")
	if w.Code != http.StatusNotFound {
		t.Fatalf("expected 404, got %d", w.Code)
	}
}

func TestSimulateBatch(t *testing.T) {
	router := newTestRouter(t, nil, service.Options{MaxBatchSize: 3, BatchConcurrency: 2})

	w := do(router, "POST", "/api/simulate/batch", `{"items": [
		{"scenario": "minor-cut"},
		{"scenario": "immunocompromised", "mode": "speculative"},
		{"scenario": "nope"}
	]}`)
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", w.Code, w.Body.String())
	}
	var resp struct {
		Items []service.BatchItem `json:"items"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(resp.Items) != 3 {
		t.Fatalf("expected 3 items, got %d", len(resp.Items))
	}
	if resp.Items[0].Outcome.Report.Decision != engine.DecisionRepair {
		t.Fatalf("expected repair first, got %+v", resp.Items[0])
	}
	if resp.Items[1].Outcome.Report.Decision != engine.DecisionDiagnosis {
		t.Fatalf("expected diagnosis second, got %+v", resp.Items[1])
	}
	if resp.Items[2].Outcome != nil || resp.Items[2].Error == "" {
		t.Fatalf("expected an error for the third item, got %+v", resp.Items[2])
	}

	w = do(router, "POST", "/api/simulate/batch", `{"items": [{}, {}, {}, {}]}`)
	if w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("expected 413, got %d", w.Code)
	}
}

func TestMetricsEndpoint(t *testing.T) {
	router := newTestRouter(t, nil, service.Options{})
	do(router, "POST", "/api/simulate", `{"scenario": "minor-cut"}`)

	w := do(router, "GET", "/metrics", "")
	if w.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", w.Code)
	}
	if !strings.Contains(w.Body.String(), `ousia_decisions_total{decision="repair",mode="clinical"} 1`) {
		t.Fatalf("expected decision counter, got %s", w.Body.String())
	}
}

func TestRequestIDIsEchoed(t *testing.T) {
	router := newTestRouter(t, nil, service.Options{})
	id := "7d444840-9dc0-11d1-b245-5ffdce74fad2"

	w := httptest.NewRecorder()
	req, _ := http.NewRequest("GET", "/healthz", nil)
	req.Header.Set(requestIDHeader, id)
	router.ServeHTTP(w, req)

	if got := w.Header().Get(requestIDHeader); got != id {
		t.Fatalf("expected %s, got %s", id, got)
	}
}

// Guard against long-running tests due to context leaks.
func TestLimitBodySizeContextDeadline(t *testing.T) {
	ctx, cancel := context.WithTimeout(context.Background(), 50*time.Millisecond)
	defer cancel()
	if err := ctx.Err(); err != nil && err != context.DeadlineExceeded {
		t.Fatalf("unexpected context error: %v", err)
	}
}
