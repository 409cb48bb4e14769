package httpapi

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/moonback/Esil-events-v1-sub001/internal/metrics"
)

type pinger struct{ err error }

func (p pinger) Ping(context.Context) error { return p.err }

type natsStatus bool

func (n natsStatus) IsConnected() bool { return bool(n) }

type sessions int

func (s sessions) GetActiveSessionCount() int { return int(s) }

func get(t *testing.T, h http.Handler, path string) *httptest.ResponseRecorder {
	t.Helper()
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, path, nil))
	return rec
}

func TestHealthOK(t *testing.T) {
	h := New(&Config{Redis: pinger{}, NATS: natsStatus(true), Sessions: sessions(3)})

	rec := get(t, h, "/health")
	require.Equal(t, http.StatusOK, rec.Code)

	var body healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, "ok", body.Checks["redis"])
	assert.Equal(t, "ok", body.Checks["nats"])
	assert.Equal(t, 3, body.ActiveSessions)
}

func TestHealthDegraded(t *testing.T) {
	h := New(&Config{Redis: pinger{err: errors.New("dial tcp: connection refused")}, NATS: natsStatus(false)})

	rec := get(t, h, "/health")
	require.Equal(t, http.StatusServiceUnavailable, rec.Code)

	var body healthResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "degraded", body.Status)
	assert.Equal(t, "disconnected", body.Checks["nats"])
	assert.Contains(t, body.Checks["redis"], "connection refused")
}

func TestMetricsEndpoint(t *testing.T) {
	reg := prometheus.NewRegistry()
	m := metrics.NewAssistantMetrics(reg)
	m.ObservePipeline("completed")

	h := New(&Config{MetricsHandler: promhttp.HandlerFor(reg, promhttp.HandlerOpts{})})

	rec := get(t, h, "/metrics")
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `esil_assistant_pipeline_total{outcome="completed"} 1`)
}

func TestMetricsRouteAbsentWithoutHandler(t *testing.T) {
	rec := get(t, New(&Config{}), "/metrics")
	assert.Equal(t, http.StatusNotFound, rec.Code)
}
