package health

import (
	"context"
	"fmt"
	"net/http"
	"time"
)

// Status represents the health status of a component.
type Status int

const (
	// StatusHealthy indicates the component is functioning normally.
	StatusHealthy Status = iota
	// StatusUnhealthy indicates the component is not functioning properly.
	StatusUnhealthy
)

// String returns the string representation of the status.
func (s Status) String() string {
	switch s {
	case StatusHealthy:
		return "healthy"
	case StatusUnhealthy:
		return "unhealthy"
	default:
		return "unknown"
	}
}

// Result contains the outcome of a health check.
type Result struct {
	// Status is the health status.
	Status Status

	// Message provides additional context about the status.
	Message string

	// Error is the error if the check failed.
	Error error
}

// Checker is the interface for health checks.
type Checker interface {
	// Name returns the name of this checker.
	Name() string

	// Check performs the health check and returns the result.
	Check(ctx context.Context) Result
}

// HTTPChecker reports whether an HTTP dependency answers its health
// endpoint. Each chain service uses one for its downstream hop.
type HTTPChecker struct {
	name   string
	url    string
	client *http.Client
}

// NewHTTPChecker creates a checker that GETs the given URL.
func NewHTTPChecker(name, url string) *HTTPChecker {
	return &HTTPChecker{
		name: name,
		url:  url,
		client: &http.Client{
			Timeout: 3 * time.Second,
		},
	}
}

// Name returns the name of this checker.
func (c *HTTPChecker) Name() string {
	return c.name
}

// Check performs the health check.
func (c *HTTPChecker) Check(ctx context.Context) Result {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url, nil)
	if err != nil {
		return Result{Status: StatusUnhealthy, Message: "invalid health URL", Error: err}
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return Result{Status: StatusUnhealthy, Message: "unreachable", Error: err}
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Result{
			Status:  StatusUnhealthy,
			Message: fmt.Sprintf("unexpected status %d", resp.StatusCode),
		}
	}
	return Result{Status: StatusHealthy, Message: "ok"}
}
