package metricsx_test

import (
	"context"
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/marcodd23/go-micro-dbx/pkg/dbx"
	"github.com/marcodd23/go-micro-dbx/pkg/metricsx"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFailoverCollector(t *testing.T) {
	m := metricsx.NewMetrics("orders-service", false)

	collector, err := metricsx.NewFailoverCollector(m.Registerer)
	require.NoError(t, err)

	ctx := context.Background()
	collector.PublishFailover(ctx, dbx.FailoverEvent{Database: "orders", Operation: "query", Resolved: true, Attempts: 2, Duration: 20 * time.Millisecond})
	collector.PublishFailover(ctx, dbx.FailoverEvent{Database: "orders", Operation: "query", Resolved: true, Attempts: 1, Duration: 5 * time.Millisecond})
	collector.PublishFailover(ctx, dbx.FailoverEvent{Database: "orders", Operation: "transaction", Resolved: false, Attempts: 3, Duration: time.Second})

	expected := `
# HELP dbx_failover_total Failover protocol runs by outcome.
# TYPE dbx_failover_total counter
dbx_failover_total{database="orders",operation="query",result="resolved",service="orders-service"} 2
dbx_failover_total{database="orders",operation="transaction",result="exhausted",service="orders-service"} 1
`
	require.NoError(t, testutil.GatherAndCompare(m.Registry, strings.NewReader(expected), "dbx_failover_total"))

	count, err := testutil.GatherAndCount(m.Registry, "dbx_failover_attempts", "dbx_failover_duration_seconds")
	require.NoError(t, err)
	assert.Equal(t, 2, count)

	_, err = metricsx.NewFailoverCollector(m.Registerer)
	assert.Error(t, err, "registering twice must fail")
}

func TestRegisterSQLPool(t *testing.T) {
	m := metricsx.NewMetrics("orders-service", false)

	cfg := mysql.NewConfig()
	cfg.Addr = "127.0.0.1:1"
	cfg.DBName = "orders"
	connector, err := mysql.NewConnector(cfg)
	require.NoError(t, err)

	db := sql.OpenDB(connector)
	defer db.Close()

	require.NoError(t, metricsx.RegisterSQLPool(m.Registerer, "orders-primary", db))

	count, err := testutil.GatherAndCount(m.Registry, "go_sql_max_open_connections")
	require.NoError(t, err)
	assert.Equal(t, 1, count)
}

func TestHandler(t *testing.T) {
	m := metricsx.NewMetrics("orders-service", true)

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), `go_goroutines{service="orders-service"}`)
}
