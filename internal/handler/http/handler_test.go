package http

import (
	"compress/gzip"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/MKhiriev/go-vrc-link/internal/logger"
	"github.com/MKhiriev/go-vrc-link/internal/metrics"
	"github.com/MKhiriev/go-vrc-link/models"
)

type staticHealth models.Health

func (s staticHealth) Health() models.Health { return models.Health(s) }

func newTestRouter(t *testing.T) http.Handler {
	t.Helper()

	collector := metrics.NewCollector(prometheus.NewRegistry())
	collector.SetPending(3)

	health := staticHealth{
		Status:            "ok",
		AuthStatus:        models.AuthStatusLoggedIn,
		RealtimeConnected: true,
		PendingTasks:      3,
		Version:           "1.0.0 (abc123, 2026-10-01)",
	}
	return NewHandler(health, collector.Handler(), logger.Nop()).Init()
}

// ─────────────────────────────────────────────
// NewHandler
// ─────────────────────────────────────────────

func TestNewHandler_StoresDependencies(t *testing.T) {
	log := logger.Nop()
	metricsHandler := http.NotFoundHandler()
	h := NewHandler(staticHealth{}, metricsHandler, log)

	require.NotNil(t, h)
	assert.Equal(t, log, h.logger)
	assert.NotNil(t, h.metrics)
	assert.Equal(t, staticHealth{}, h.health)
}

// ─────────────────────────────────────────────
// Init routes
// ─────────────────────────────────────────────

func TestInit_Healthz(t *testing.T) {
	router := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	assert.NotEmpty(t, rr.Header().Get(traceIDHeader))

	var got models.Health
	require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &got))
	assert.Equal(t, "ok", got.Status)
	assert.Equal(t, models.AuthStatusLoggedIn, got.AuthStatus)
	assert.True(t, got.RealtimeConnected)
	assert.Equal(t, 3, got.PendingTasks)
}

func TestInit_MetricsPlain(t *testing.T) {
	router := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Contains(t, rr.Body.String(), "vrc_link_queue_tasks_pending 3")
}

func TestInit_MetricsGzipped(t *testing.T) {
	router := newTestRouter(t)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	req.Header.Set("Accept-Encoding", "gzip")
	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, req)

	require.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, "gzip", rr.Header().Get("Content-Encoding"))

	zr, err := gzip.NewReader(rr.Body)
	require.NoError(t, err)
	body, err := io.ReadAll(zr)
	require.NoError(t, err)
	assert.Contains(t, string(body), "vrc_link_queue_tasks_pending 3")
}

func TestInit_UnknownRouteReturns404(t *testing.T) {
	router := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/api/nonexistent", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestInit_WrongMethodReturns404(t *testing.T) {
	router := newTestRouter(t)

	rr := httptest.NewRecorder()
	router.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/healthz", nil))

	assert.Equal(t, http.StatusNotFound, rr.Code)
}
