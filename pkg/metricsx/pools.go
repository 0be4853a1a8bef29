package metricsx

import (
	"database/sql"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
)

// RegisterSQLPool exposes the database/sql statistics of a MySQL pool as go_sql_* metrics
// labelled db_name="<name>".
func RegisterSQLPool(reg prometheus.Registerer, name string, db *sql.DB) error {
	return reg.Register(collectors.NewDBStatsCollector(db, name))
}

// RegisterPgxPool exposes the statistics of a pgx pool as dbx_pgxpool_* metrics.
func RegisterPgxPool(reg prometheus.Registerer, name string, pool StatProvider) error {
	return reg.Register(newPgxPoolCollector(name, pool))
}

// StatProvider is implemented by *pgxpool.Pool and pgxdb.Pool.
type StatProvider interface {
	Stat() *pgxpool.Stat
}

type pgxPoolCollector struct {
	pool StatProvider

	maxConns      *prometheus.Desc
	totalConns    *prometheus.Desc
	idleConns     *prometheus.Desc
	acquiredConns *prometheus.Desc
	acquireCount  *prometheus.Desc
	emptyAcquire  *prometheus.Desc
	canceled      *prometheus.Desc
	waitSeconds   *prometheus.Desc
}

func newPgxPoolCollector(name string, pool StatProvider) *pgxPoolCollector {
	labels := prometheus.Labels{"db_name": name}
	desc := func(metric, help string) *prometheus.Desc {
		return prometheus.NewDesc(prometheus.BuildFQName("dbx", "pgxpool", metric), help, nil, labels)
	}

	return &pgxPoolCollector{
		pool:          pool,
		maxConns:      desc("max_conns", "Maximum size of the pool."),
		totalConns:    desc("total_conns", "Connections currently in the pool."),
		idleConns:     desc("idle_conns", "Idle connections in the pool."),
		acquiredConns: desc("acquired_conns", "Connections currently leased."),
		acquireCount:  desc("acquire_total", "Successful acquires."),
		emptyAcquire:  desc("empty_acquire_total", "Acquires that waited for a connection."),
		canceled:      desc("canceled_acquire_total", "Acquires canceled by their context."),
		waitSeconds:   desc("acquire_wait_seconds_total", "Time spent waiting in acquire."),
	}
}

func (c *pgxPoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.maxConns
	ch <- c.totalConns
	ch <- c.idleConns
	ch <- c.acquiredConns
	ch <- c.acquireCount
	ch <- c.emptyAcquire
	ch <- c.canceled
	ch <- c.waitSeconds
}

func (c *pgxPoolCollector) Collect(ch chan<- prometheus.Metric) {
	stat := c.pool.Stat()

	ch <- prometheus.MustNewConstMetric(c.maxConns, prometheus.GaugeValue, float64(stat.MaxConns()))
	ch <- prometheus.MustNewConstMetric(c.totalConns, prometheus.GaugeValue, float64(stat.TotalConns()))
	ch <- prometheus.MustNewConstMetric(c.idleConns, prometheus.GaugeValue, float64(stat.IdleConns()))
	ch <- prometheus.MustNewConstMetric(c.acquiredConns, prometheus.GaugeValue, float64(stat.AcquiredConns()))
	ch <- prometheus.MustNewConstMetric(c.acquireCount, prometheus.CounterValue, float64(stat.AcquireCount()))
	ch <- prometheus.MustNewConstMetric(c.emptyAcquire, prometheus.CounterValue, float64(stat.EmptyAcquireCount()))
	ch <- prometheus.MustNewConstMetric(c.canceled, prometheus.CounterValue, float64(stat.CanceledAcquireCount()))
	ch <- prometheus.MustNewConstMetric(c.waitSeconds, prometheus.CounterValue, stat.AcquireDuration().Seconds())
}
