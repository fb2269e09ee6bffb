package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// PoolStats is the subset of pgxpool statistics the collector reports.
type PoolStats interface {
	Stat() *pgxpool.Stat
}

// DBCollector reads connection pool statistics at scrape time.
type DBCollector struct {
	pool PoolStats

	total    *prometheus.Desc
	acquired *prometheus.Desc
	idle     *prometheus.Desc
	maxOpen  *prometheus.Desc
	waits    *prometheus.Desc
}

var _ prometheus.Collector = (*DBCollector)(nil)

func NewDBCollector(pool PoolStats) *DBCollector {
	name := func(n string) string { return prometheus.BuildFQName(namespace, "db", n) }
	return &DBCollector{
		pool:     pool,
		total:    prometheus.NewDesc(name("connections_open"), "Total number of open database connections", nil, nil),
		acquired: prometheus.NewDesc(name("connections_in_use"), "Number of database connections currently in use (acquired)", nil, nil),
		idle:     prometheus.NewDesc(name("connections_idle"), "Number of idle database connections", nil, nil),
		maxOpen:  prometheus.NewDesc(name("connections_max_open"), "Maximum number of open database connections allowed", nil, nil),
		waits:    prometheus.NewDesc(name("acquire_waits_total"), "Acquires that waited for a free connection", nil, nil),
	}
}

// RegisterDBCollector exposes pool statistics on the shared registry.
func RegisterDBCollector(pool PoolStats) error {
	return Registry.Register(NewDBCollector(pool))
}

func (c *DBCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.total
	ch <- c.acquired
	ch <- c.idle
	ch <- c.maxOpen
	ch <- c.waits
}

func (c *DBCollector) Collect(ch chan<- prometheus.Metric) {
	if c.pool == nil {
		return
	}
	stat := c.pool.Stat()
	if stat == nil {
		return
	}
	ch <- prometheus.MustNewConstMetric(c.total, prometheus.GaugeValue, float64(stat.TotalConns()))
	ch <- prometheus.MustNewConstMetric(c.acquired, prometheus.GaugeValue, float64(stat.AcquiredConns()))
	ch <- prometheus.MustNewConstMetric(c.idle, prometheus.GaugeValue, float64(stat.IdleConns()))
	ch <- prometheus.MustNewConstMetric(c.maxOpen, prometheus.GaugeValue, float64(stat.MaxConns()))
	ch <- prometheus.MustNewConstMetric(c.waits, prometheus.CounterValue, float64(stat.EmptyAcquireCount()))
}
