package fibersrv_test

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/goccy/go-json"
	"github.com/marcodd23/go-micro-dbx/pkg/configx"
	"github.com/marcodd23/go-micro-dbx/pkg/dbx"
	"github.com/marcodd23/go-micro-dbx/pkg/metricsx"
	"github.com/marcodd23/go-micro-dbx/pkg/serverx/fibersrv"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type stubHandle struct {
	health dbx.Health
}

func (s stubHandle) Name() string { return s.health.Database }

func (s stubHandle) Status(context.Context) dbx.Health { return s.health }

func (s stubHandle) Terminate() {}

func newTestApp(t *testing.T, handles ...dbx.Handle) *fibersrv.FiberServer {
	registry := dbx.NewRegistry()
	for _, h := range handles {
		require.NoError(t, registry.Add(h))
	}

	metrics := metricsx.NewMetrics("orders-service", false)
	collector, err := metricsx.NewFailoverCollector(metrics.Registerer)
	require.NoError(t, err)
	collector.PublishFailover(context.Background(), dbx.FailoverEvent{Database: "orders", Operation: "query", Resolved: true, Attempts: 1})

	srv := fibersrv.NewFiberServer(configx.BaseConfig{Name: "orders-service"}, nil).(*fibersrv.FiberServer)
	fibersrv.RegisterDatabaseRoutes(srv.GetServer(), registry, metrics)

	return srv
}

func TestHealthRoute(t *testing.T) {
	srv := newTestApp(t,
		stubHandle{dbx.Health{Database: "orders", Primary: "writable", Replica: "reachable", Healthy: true}},
		stubHandle{dbx.Health{Database: "users", Primary: "writable", Healthy: true}},
	)

	resp, err := srv.GetServer().Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	var body fibersrv.HealthResponse
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.True(t, body.Healthy)
	require.Len(t, body.Databases, 2)
	assert.Equal(t, "orders", body.Databases[0].Database)
	assert.Equal(t, "users", body.Databases[1].Database)
}

func TestHealthRoute_Unhealthy(t *testing.T) {
	srv := newTestApp(t,
		stubHandle{dbx.Health{Database: "orders", Primary: "readonly", Healthy: false, Error: "read-only candidate"}},
		stubHandle{dbx.Health{Database: "users", Primary: "writable", Healthy: true}},
	)

	resp, err := srv.GetServer().Test(httptest.NewRequest(http.MethodGet, "/health", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	resp, err = srv.GetServer().Test(httptest.NewRequest(http.MethodGet, "/health/users", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	resp, err = srv.GetServer().Test(httptest.NewRequest(http.MethodGet, "/health/orders", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)

	var health dbx.Health
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "read-only candidate", health.Error)

	resp, err = srv.GetServer().Test(httptest.NewRequest(http.MethodGet, "/health/missing", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusNotFound, resp.StatusCode)
}

func TestMetricsRoute(t *testing.T) {
	srv := newTestApp(t)

	resp, err := srv.GetServer().Test(httptest.NewRequest(http.MethodGet, "/metrics", nil))
	require.NoError(t, err)
	assert.Equal(t, http.StatusOK, resp.StatusCode)

	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), `dbx_failover_total{database="orders",operation="query",result="resolved",service="orders-service"} 1`)
}
