package metrics

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/push"
)

// Collector holds the metrics of one pipeline run. A batch job has no
// scrape endpoint, so the values are pushed to a Pushgateway at the end.
type Collector struct {
	logger *slog.Logger

	rowsLoaded     *prometheus.CounterVec
	tableFailures  *prometheus.CounterVec
	tablesSkipped  prometheus.Counter
	tableDuration  *prometheus.HistogramVec
	lastCompletion prometheus.Gauge

	registry *prometheus.Registry
}

func NewCollector(logger *slog.Logger) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		logger:   logger,
		registry: registry,

		rowsLoaded: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stock_etl_rows_loaded_total",
			Help: "Rows written to Postgres per table",
		}, []string{"table"}),

		tableFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Name: "stock_etl_table_failures_total",
			Help: "Tables whose load failed",
		}, []string{"table"}),

		tablesSkipped: prometheus.NewCounter(prometheus.CounterOpts{
			Name: "stock_etl_tables_skipped_total",
			Help: "Table names that matched no pipeline branch",
		}),

		tableDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "stock_etl_table_duration_seconds",
			Help:    "Time spent processing one table",
			Buckets: prometheus.ExponentialBuckets(0.05, 2, 12),
		}, []string{"table"}),

		lastCompletion: prometheus.NewGauge(prometheus.GaugeOpts{
			Name: "stock_etl_last_completion_timestamp_seconds",
			Help: "Unix time the last run finished",
		}),
	}

	registry.MustRegister(
		c.rowsLoaded,
		c.tableFailures,
		c.tablesSkipped,
		c.tableDuration,
		c.lastCompletion,
	)

	return c
}

func (c *Collector) RecordRows(table string, rows int64) {
	c.rowsLoaded.WithLabelValues(table).Add(float64(rows))
}

func (c *Collector) RecordFailure(table string) {
	c.tableFailures.WithLabelValues(table).Inc()
}

func (c *Collector) RecordSkipped() {
	c.tablesSkipped.Inc()
}

func (c *Collector) ObserveDuration(table string, d time.Duration) {
	c.tableDuration.WithLabelValues(table).Observe(d.Seconds())
}

func (c *Collector) MarkCompleted(t time.Time) {
	c.lastCompletion.Set(float64(t.Unix()))
}

func (c *Collector) Registry() *prometheus.Registry {
	return c.registry
}

// Push sends every metric to the Pushgateway at url under job. An empty url
// disables pushing.
func (c *Collector) Push(url, job string) error {
	if url == "" {
		c.logger.Debug("Pushgateway not configured, metrics not pushed")
		return nil
	}
	if err := push.New(url, job).Gatherer(c.registry).Push(); err != nil {
		return fmt.Errorf("failed to push metrics to %s: %w", url, err)
	}
	c.logger.Info("Pushed metrics", "url", url, "job", job)
	return nil
}
