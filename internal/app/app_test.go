package app

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Vijay-papanaboina/LGTM-stack/internal/config"
	"github.com/Vijay-papanaboina/LGTM-stack/observe"
)

func TestObserverConfig(t *testing.T) {
	cfg, err := config.Load(config.Defaults{ServiceName: "gateway", Port: 8080})
	require.NoError(t, err)

	oc := ObserverConfig(cfg)
	assert.Equal(t, "gateway", oc.ServiceName)
	assert.True(t, oc.Tracing.Enabled)
	assert.True(t, oc.Metrics.Enabled)
	assert.True(t, oc.Logging.Enabled)
	assert.NoError(t, oc.Validate())
}

func TestNewRouter_Probes(t *testing.T) {
	obs, err := observe.NewObserver(context.Background(), observe.Config{ServiceName: "test"})
	require.NoError(t, err)

	r, err := NewRouter(obs, nil)
	require.NoError(t, err)

	for _, path := range []string{"/healthz", "/readyz"} {
		rec := httptest.NewRecorder()
		r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
		assert.Equal(t, http.StatusOK, rec.Code, path)
	}

	// No prometheus exporter, no exposition endpoint.
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestNewRouter_MetricsExposition(t *testing.T) {
	obs, err := observe.NewObserver(context.Background(), observe.Config{
		ServiceName: "test",
		Metrics:     observe.MetricsConfig{Enabled: true, Exporter: "prometheus"},
	})
	require.NoError(t, err)
	defer obs.Shutdown(context.Background())

	r, err := NewRouter(obs, nil)
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	assert.Equal(t, http.StatusOK, rec.Code)
}

func TestServe_StopsOnContextCancel(t *testing.T) {
	obs, err := observe.NewObserver(context.Background(), observe.Config{ServiceName: "test"})
	require.NoError(t, err)

	r, err := NewRouter(obs, nil)
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(context.Background())
	srv := NewServer("127.0.0.1:0", r)

	errc := make(chan error, 1)
	go func() {
		errc <- Serve(ctx, obs, srv)
	}()

	time.Sleep(50 * time.Millisecond)
	cancel()

	select {
	case err := <-errc:
		assert.NoError(t, err)
	case <-time.After(5 * time.Second):
		t.Fatal("Serve did not stop after context cancellation")
	}
}
