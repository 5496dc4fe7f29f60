// Package app holds the startup and shutdown plumbing shared by the three
// service binaries.
package app

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"golang.org/x/sync/errgroup"

	"github.com/Vijay-papanaboina/LGTM-stack/health"
	"github.com/Vijay-papanaboina/LGTM-stack/internal/config"
	"github.com/Vijay-papanaboina/LGTM-stack/observe"
)

// ObserverConfig maps service configuration onto the observability config.
func ObserverConfig(cfg *config.Config) observe.Config {
	return observe.Config{
		ServiceName: cfg.ServiceName,
		Version:     cfg.Version,
		Environment: cfg.Environment,
		Tracing: observe.TracingConfig{
			Enabled:   true,
			Exporter:  cfg.TraceExporter,
			Endpoint:  cfg.TraceEndpoint,
			SamplePct: cfg.TraceSamplePct,
		},
		Metrics: observe.MetricsConfig{
			Enabled:  true,
			Exporter: cfg.MetricsExporter,
			Endpoint: cfg.MetricsEndpoint,
		},
		Logging: observe.LoggingConfig{
			Enabled: true,
			Level:   cfg.LogLevel,
		},
	}
}

// NewRouter builds the router skeleton every service shares: lifecycle
// middleware on all business routes, liveness and readiness probes, and
// the metrics exposition endpoint when the Prometheus exporter is active.
func NewRouter(obs *observe.Observer, ready health.Checker) (*chi.Mux, error) {
	mw, err := observe.NewMiddleware(obs)
	if err != nil {
		return nil, err
	}

	r := chi.NewRouter()
	r.Use(mw.Wrap)
	r.Get("/healthz", health.Liveness())
	r.Get("/readyz", health.Readiness(ready))
	if mh := obs.MetricsHandler(); mh != nil {
		r.Method(http.MethodGet, "/metrics", mh)
	}
	return r, nil
}

// Serve runs the HTTP server until the context is canceled, then shuts it
// down gracefully and flushes buffered telemetry. Flush failures are
// logged, never escalated.
func Serve(ctx context.Context, obs *observe.Observer, srv *http.Server) error {
	log := obs.Logger()

	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Info(gctx, "server listening", observe.Field{Key: "addr", Value: srv.Addr})
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})
	g.Go(func() error {
		<-gctx.Done()
		sctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return srv.Shutdown(sctx)
	})
	err := g.Wait()

	fctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	if ferr := obs.Shutdown(fctx); ferr != nil {
		log.Error(context.Background(), "telemetry flush failed",
			observe.Field{Key: "error", Value: ferr.Error()},
		)
	}
	return err
}

// NewServer builds an http.Server with the shared timeout policy.
func NewServer(addr string, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:         addr,
		Handler:      handler,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 30 * time.Second,
		IdleTimeout:  60 * time.Second,
	}
}
