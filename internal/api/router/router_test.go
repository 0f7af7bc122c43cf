package router

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	httpmiddleware "github.com/wolfman30/prospect-pipeline/internal/http/middleware"
	"github.com/wolfman30/prospect-pipeline/internal/observability/metrics"
	"github.com/wolfman30/prospect-pipeline/internal/preferences"
	"github.com/wolfman30/prospect-pipeline/internal/prospects"
	"github.com/wolfman30/prospect-pipeline/pkg/logging"
)

func newTestConfig(t *testing.T) *Config {
	t.Helper()

	logger := logging.New("error")
	reg := prometheus.NewRegistry()
	store := prospects.NewStore(prospects.NewInMemoryRepository(), logger).
		WithMetrics(metrics.NewPipelineMetrics(reg))
	prefs := preferences.NewHandler(preferences.NewMemoryStore(), logger)

	return &Config{
		Logger:         logger,
		Prospects:      prospects.NewHandler(store, logger).WithQueryDefaults(prefs.QueryDefaults),
		Preferences:    prefs,
		MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{}),
	}
}

func serve(h http.Handler, method, target, body, token string) *httptest.ResponseRecorder {
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	rr := httptest.NewRecorder()
	h.ServeHTTP(rr, req)
	return rr
}

func TestRouterHealthEndpoint(t *testing.T) {
	router := New(newTestConfig(t))

	rr := serve(router, http.MethodGet, "/health", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	var resp healthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("failed to decode health response: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("expected status 'ok', got %q", resp.Status)
	}
}

func TestRouterHealthReportsFailingDependency(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.HealthChecks = map[string]func(context.Context) error{
		"postgres": func(context.Context) error { return nil },
		"redis":    func(context.Context) error { return errors.New("connection refused") },
	}

	rr := serve(New(cfg), http.MethodGet, "/health", "", "")
	if rr.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected status %d, got %d", http.StatusServiceUnavailable, rr.Code)
	}
	var resp healthResponse
	if err := json.NewDecoder(rr.Body).Decode(&resp); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if resp.Checks["postgres"] != "ok" || resp.Checks["redis"] != "connection refused" {
		t.Fatalf("unexpected checks %v", resp.Checks)
	}
}

func TestRouterProspectsFlowAndMetrics(t *testing.T) {
	router := New(newTestConfig(t))

	rr := serve(router, http.MethodPost, "/prospects", `{"name":"Router Test","status":"warm"}`, "")
	if rr.Code != http.StatusCreated {
		t.Fatalf("expected status %d, got %d: %s", http.StatusCreated, rr.Code, rr.Body.String())
	}
	var created prospects.Prospect
	if err := json.NewDecoder(rr.Body).Decode(&created); err != nil {
		t.Fatalf("decode: %v", err)
	}

	rr = serve(router, http.MethodPost, "/prospects/"+created.ID+"/advance", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}

	rr = serve(router, http.MethodGet, "/metrics", "", "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected metrics status %d, got %d", http.StatusOK, rr.Code)
	}
	if !strings.Contains(rr.Body.String(), `pipeline_prospects_status_transitions_total{from="warm",to="ha-scheduled"} 1`) {
		t.Fatalf("expected transition counter in metrics output")
	}
}

func TestRouterPreferencesDriveListDefaults(t *testing.T) {
	router := New(newTestConfig(t))

	serve(router, http.MethodPost, "/prospects", `{"name":"Ann","status":"client"}`, "")
	serve(router, http.MethodPost, "/prospects", `{"name":"Ben"}`, "")

	rr := serve(router, http.MethodPut, "/preferences", `{"status":"client"}`, "")
	if rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d: %s", http.StatusOK, rr.Code, rr.Body.String())
	}

	rr = serve(router, http.MethodGet, "/prospects", "", "")
	var list prospects.ListResponse
	if err := json.NewDecoder(rr.Body).Decode(&list); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if list.Count != 1 || list.Rows[0].Name != "Ann" {
		t.Fatalf("expected saved client filter to apply, got %+v", list.Rows)
	}
}

func TestRouterRequiresTokenWhenAuthEnabled(t *testing.T) {
	cfg := newTestConfig(t)
	cfg.AuthSecret = "secret"
	cfg.RateLimiter = httpmiddleware.NewRateLimiter(100, 100)
	router := New(cfg)

	if rr := serve(router, http.MethodGet, "/prospects", "", ""); rr.Code != http.StatusUnauthorized {
		t.Fatalf("expected status %d, got %d", http.StatusUnauthorized, rr.Code)
	}
	if rr := serve(router, http.MethodGet, "/health", "", ""); rr.Code != http.StatusOK {
		t.Fatalf("expected health to stay public, got %d", rr.Code)
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.RegisteredClaims{
		Subject:   "coach-1",
		ExpiresAt: jwt.NewNumericDate(time.Now().Add(time.Minute)),
	})
	signed, err := token.SignedString([]byte("secret"))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	if rr := serve(router, http.MethodGet, "/prospects", "", signed); rr.Code != http.StatusOK {
		t.Fatalf("expected status %d, got %d", http.StatusOK, rr.Code)
	}
}
