package observe

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// DurationBucketsMS are the histogram bucket boundaries for request
// duration, in milliseconds. Fixed so percentile estimation is stable
// across all three services.
var DurationBucketsMS = []float64{10, 25, 50, 100, 250, 500, 1000, 2500, 5000, 10000}

// HTTPMetrics maintains the process-wide request metric series.
//
// Label cardinality is intentionally bounded: method, normalized route,
// and status class only. Per-request values (correlation id, order id)
// must never appear as labels.
type HTTPMetrics struct {
	requests metric.Int64Counter
	duration metric.Float64Histogram
	active   metric.Int64UpDownCounter

	// inFlight mirrors the active-requests gauge for cheap reads.
	inFlight atomic.Int64
}

// NewHTTPMetrics creates the request metric series on the given meter.
func NewHTTPMetrics(meter metric.Meter) (*HTTPMetrics, error) {
	requests, err := meter.Int64Counter(
		"http.server.requests",
		metric.WithDescription("Total number of completed HTTP requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	duration, err := meter.Float64Histogram(
		"http.server.request.duration",
		metric.WithDescription("HTTP request duration in milliseconds"),
		metric.WithUnit("ms"),
		metric.WithExplicitBucketBoundaries(DurationBucketsMS...),
	)
	if err != nil {
		return nil, err
	}

	active, err := meter.Int64UpDownCounter(
		"http.server.active_requests",
		metric.WithDescription("Number of requests currently in flight"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return nil, err
	}

	return &HTTPMetrics{
		requests: requests,
		duration: duration,
		active:   active,
	}, nil
}

// RequestStarted records a request entering the in-flight set.
func (m *HTTPMetrics) RequestStarted(ctx context.Context) {
	m.inFlight.Add(1)
	m.active.Add(ctx, 1)
}

// RequestCompleted records a normally completed request: one counter
// increment, one duration observation, and the gauge decrement.
func (m *HTTPMetrics) RequestCompleted(ctx context.Context, method, route string, status int, d time.Duration) {
	m.inFlight.Add(-1)
	m.active.Add(ctx, -1)

	opt := metric.WithAttributes(
		attribute.String("http.method", method),
		attribute.String("http.route", route),
		attribute.String("http.status_class", StatusClass(status)),
	)
	m.requests.Add(ctx, 1, opt)
	m.duration.Record(ctx, float64(d)/float64(time.Millisecond), opt)
}

// RequestAborted records a request whose client disconnected before a
// response was written. The gauge is decremented but no duration or status
// series is touched: no valid status exists.
func (m *HTTPMetrics) RequestAborted(ctx context.Context) {
	m.inFlight.Add(-1)
	m.active.Add(ctx, -1)
}

// InFlight returns the current number of in-flight requests.
func (m *HTTPMetrics) InFlight() int64 {
	return m.inFlight.Load()
}

// StatusClass buckets an HTTP status code into its class label ("2xx",
// "4xx", ...), keeping the status label cardinality bounded.
func StatusClass(status int) string {
	if status < 100 || status > 599 {
		return "unknown"
	}
	return fmt.Sprintf("%dxx", status/100)
}
