package observability_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"GameLedger/internal/observability"
)

func TestLivenessHandler(t *testing.T) {
	h := observability.NewHealthChecker()

	w := httptest.NewRecorder()
	h.LivenessHandler(w, httptest.NewRequest("GET", "/healthz", nil))

	if w.Code != http.StatusOK {
		t.Errorf("liveness status: %d", w.Code)
	}
	var body map[string]interface{}
	if err := json.NewDecoder(w.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body["status"] != "alive" {
		t.Errorf("body: %v", body)
	}
}

func TestReadinessHandler(t *testing.T) {
	h := observability.NewHealthChecker()

	// Not ready until recovery completes.
	if h.IsReady() {
		t.Error("fresh checker should not be ready")
	}
	w := httptest.NewRecorder()
	h.ReadinessHandler(w, httptest.NewRequest("GET", "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("not-ready status: %d", w.Code)
	}

	h.SetReady(true)
	if !h.IsReady() {
		t.Error("checker should be ready after SetReady")
	}
	w = httptest.NewRecorder()
	h.ReadinessHandler(w, httptest.NewRequest("GET", "/readyz", nil))
	if w.Code != http.StatusOK {
		t.Errorf("ready status: %d", w.Code)
	}

	// Readiness can be withdrawn on shutdown.
	h.SetReady(false)
	w = httptest.NewRecorder()
	h.ReadinessHandler(w, httptest.NewRequest("GET", "/readyz", nil))
	if w.Code != http.StatusServiceUnavailable {
		t.Errorf("withdrawn status: %d", w.Code)
	}
}
