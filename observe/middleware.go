package observe

import (
	"context"
	"fmt"
	"net/http"
	"sync/atomic"
	"time"

	"github.com/go-chi/chi/v5"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/trace"
)

// defaultSkipPaths are low-value paths excluded from lifecycle tracking.
var defaultSkipPaths = []string{"/healthz", "/readyz", "/metrics"}

// Middleware wraps every inbound request with exactly-once lifecycle
// accounting: in-flight gauge entry/exit, correlation identifier, request
// span continued from the inbound trace context, and correlated logs.
//
// Contract:
//   - Concurrency: Wrap() returns a handler safe for concurrent use.
//   - Exactly-once exit: the decrement and terminal emission fire once per
//     request regardless of whether completion, client abort, or both occur.
//   - Errors: instrumentation failures never abort the wrapped handler.
type Middleware struct {
	tracer     trace.Tracer
	propagator propagation.TextMapPropagator
	metrics    *HTTPMetrics
	logger     Logger
	skip       map[string]struct{}
}

// MiddlewareOption configures a Middleware.
type MiddlewareOption func(*Middleware)

// WithSkipPaths replaces the default set of untracked paths.
func WithSkipPaths(paths ...string) MiddlewareOption {
	return func(m *Middleware) {
		m.skip = make(map[string]struct{}, len(paths))
		for _, p := range paths {
			m.skip[p] = struct{}{}
		}
	}
}

// NewMiddleware creates a Middleware from an Observer.
func NewMiddleware(obs *Observer, opts ...MiddlewareOption) (*Middleware, error) {
	if obs == nil {
		return nil, ErrNilObserver
	}

	metrics, err := NewHTTPMetrics(obs.Meter())
	if err != nil {
		return nil, err
	}

	m := &Middleware{
		tracer:     obs.Tracer(),
		propagator: obs.Propagator(),
		metrics:    metrics,
		logger:     obs.Logger(),
		skip:       make(map[string]struct{}, len(defaultSkipPaths)),
	}
	for _, p := range defaultSkipPaths {
		m.skip[p] = struct{}{}
	}
	for _, opt := range opts {
		opt(m)
	}
	return m, nil
}

// Metrics exposes the middleware's metric series, mainly for tests and
// readiness reporting.
func (m *Middleware) Metrics() *HTTPMetrics {
	return m.metrics
}

// Wrap instruments an HTTP handler with request lifecycle tracking.
func (m *Middleware) Wrap(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if _, ok := m.skip[r.URL.Path]; ok {
			next.ServeHTTP(w, r)
			return
		}

		// Continue the inbound trace, if any, as a child server span.
		ctx := m.propagator.Extract(r.Context(), propagation.HeaderCarrier(r.Header))
		ctx, span := m.tracer.Start(ctx, r.Method+" "+r.URL.Path,
			trace.WithSpanKind(trace.SpanKindServer),
			trace.WithAttributes(
				attribute.String("http.method", r.Method),
				attribute.String("http.target", r.URL.Path),
			),
		)

		corr := NewCorrelationID()
		reqLog := m.logger.WithRequest(RequestMeta{
			CorrelationID: corr,
			Method:        r.Method,
			Path:          r.URL.Path,
		})

		ctx = ContextWithCorrelationID(ctx, corr)
		ctx = ContextWithLogger(ctx, reqLog)
		r = r.WithContext(ctx)

		m.metrics.RequestStarted(ctx)
		reqLog.Info(ctx, "request received")

		start := time.Now()
		ww := &statusRecorder{ResponseWriter: w, status: http.StatusOK}

		// One-shot exit latch. Two terminal signals can fire for one
		// request: the abort callback below when the client disconnects,
		// and the completion path after the handler returns. Whichever
		// wins the compare-and-swap performs the single decrement.
		var done atomic.Bool

		stop := context.AfterFunc(ctx, func() {
			if !done.CompareAndSwap(false, true) {
				return
			}
			m.metrics.RequestAborted(ctx)
			span.SetStatus(codes.Error, "client disconnected")
			span.End()
			reqLog.Warn(ctx, "request aborted by client",
				Field{Key: "duration_ms", Value: msSince(start)},
			)
		})

		next.ServeHTTP(ww, r)

		stop()
		if !done.CompareAndSwap(false, true) {
			return
		}

		duration := time.Since(start)
		route := routePattern(r)
		m.metrics.RequestCompleted(ctx, r.Method, route, ww.status, duration)

		span.SetAttributes(attribute.Int("http.status_code", ww.status))
		if ww.status >= 500 {
			span.SetStatus(codes.Error, fmt.Sprintf("HTTP %d", ww.status))
		} else {
			span.SetStatus(codes.Ok, "")
		}
		span.End()

		fields := []Field{
			{Key: "status", Value: ww.status},
			{Key: "duration_ms", Value: float64(duration.Milliseconds())},
		}
		switch LevelForStatus(ww.status) {
		case LevelError:
			reqLog.Error(ctx, "request completed", fields...)
		case LevelWarn:
			reqLog.Warn(ctx, "request completed", fields...)
		default:
			reqLog.Info(ctx, "request completed", fields...)
		}
	})
}

// routePattern returns the normalized route for metric labels: the chi
// route pattern when available, the raw path otherwise. The pattern keeps
// label cardinality bounded for parameterized routes.
func routePattern(r *http.Request) string {
	if rctx := chi.RouteContext(r.Context()); rctx != nil {
		if p := rctx.RoutePattern(); p != "" {
			return p
		}
	}
	return r.URL.Path
}

func msSince(start time.Time) float64 {
	return float64(time.Since(start).Milliseconds())
}

// statusRecorder captures the status code written by the handler.
type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (rw *statusRecorder) WriteHeader(code int) {
	rw.status = code
	rw.ResponseWriter.WriteHeader(code)
}

func (rw *statusRecorder) Write(b []byte) (int, error) {
	return rw.ResponseWriter.Write(b)
}
