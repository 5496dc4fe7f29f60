package health

import (
	"context"
	"encoding/json"
	"net/http"
	"time"
)

// Liveness returns an HTTP handler for liveness probes.
// This is a simple check that the process is running.
func Liveness() http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte(`{"status":"ok"}`))
	}
}

// CheckResponse is the JSON response for the readiness endpoint.
type CheckResponse struct {
	Status  string `json:"status"`
	Check   string `json:"check,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// Readiness returns an HTTP handler for readiness probes. A nil checker
// means the service has no dependency and is always ready.
func Readiness(checker Checker) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")

		if checker == nil {
			w.WriteHeader(http.StatusOK)
			_ = json.NewEncoder(w).Encode(CheckResponse{Status: StatusHealthy.String()})
			return
		}

		ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
		defer cancel()

		result := checker.Check(ctx)

		response := CheckResponse{
			Status:  result.Status.String(),
			Check:   checker.Name(),
			Message: result.Message,
		}
		if result.Error != nil {
			response.Error = result.Error.Error()
		}

		if result.Status == StatusHealthy {
			w.WriteHeader(http.StatusOK)
		} else {
			w.WriteHeader(http.StatusServiceUnavailable)
		}
		_ = json.NewEncoder(w).Encode(response)
	}
}
