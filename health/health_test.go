package health

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
)

func TestLiveness(t *testing.T) {
	rec := httptest.NewRecorder()
	Liveness()(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("liveness returned %d", rec.Code)
	}
	if got := rec.Body.String(); got != `{"status":"ok"}` {
		t.Errorf("unexpected liveness body: %s", got)
	}
}

func TestReadiness_NilChecker(t *testing.T) {
	rec := httptest.NewRecorder()
	Readiness(nil)(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("readiness without dependency returned %d", rec.Code)
	}
	var resp CheckResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("malformed readiness body: %v", err)
	}
	if resp.Status != "healthy" {
		t.Errorf("expected healthy, got %q", resp.Status)
	}
}

func TestReadiness_HealthyDependency(t *testing.T) {
	downstream := httptest.NewServer(Liveness())
	defer downstream.Close()

	rec := httptest.NewRecorder()
	Readiness(NewHTTPChecker("payment", downstream.URL))(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("readiness returned %d", rec.Code)
	}
	var resp CheckResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("malformed readiness body: %v", err)
	}
	if resp.Status != "healthy" || resp.Check != "payment" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestReadiness_UnreachableDependency(t *testing.T) {
	downstream := httptest.NewServer(Liveness())
	downstream.Close()

	rec := httptest.NewRecorder()
	Readiness(NewHTTPChecker("payment", downstream.URL))(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("readiness with dead dependency returned %d", rec.Code)
	}
	var resp CheckResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("malformed readiness body: %v", err)
	}
	if resp.Status != "unhealthy" || resp.Error == "" {
		t.Errorf("unexpected response: %+v", resp)
	}
}

func TestHTTPChecker_UnexpectedStatus(t *testing.T) {
	downstream := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer downstream.Close()

	result := NewHTTPChecker("payment", downstream.URL).Check(context.Background())
	if result.Status != StatusUnhealthy {
		t.Errorf("expected unhealthy on 500, got %v", result.Status)
	}
	if result.Message != "unexpected status 500" {
		t.Errorf("unexpected message: %q", result.Message)
	}
}

func TestStatusString(t *testing.T) {
	if StatusHealthy.String() != "healthy" || StatusUnhealthy.String() != "unhealthy" {
		t.Error("status strings changed; they are part of the readiness wire format")
	}
	if Status(42).String() != "unknown" {
		t.Error("out-of-range status must report unknown")
	}
}

type stubChecker struct {
	result Result
}

func (s stubChecker) Name() string                 { return "stub" }
func (s stubChecker) Check(context.Context) Result { return s.result }

func TestReadiness_ReportsCheckerError(t *testing.T) {
	rec := httptest.NewRecorder()
	Readiness(stubChecker{result: Result{
		Status:  StatusUnhealthy,
		Message: "unreachable",
		Error:   errors.New("dial tcp: connection refused"),
	}})(rec, httptest.NewRequest(http.MethodGet, "/readyz", nil))

	var resp CheckResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatalf("malformed readiness body: %v", err)
	}
	if resp.Error != "dial tcp: connection refused" {
		t.Errorf("checker error not surfaced: %+v", resp)
	}
}
