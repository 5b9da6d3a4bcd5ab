// Package metrics exposes upsert counters for Prometheus.
package metrics

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
)

type Metrics struct {
	registry *prometheus.Registry

	upserts        *prometheus.CounterVec
	upsertFailures *prometheus.CounterVec
	rowsWritten    *prometheus.CounterVec
	upsertDuration *prometheus.HistogramVec
	connects       *prometheus.CounterVec
}

// New creates the collectors on a private registry so several managers
// (and tests) can coexist in one process.
func New(namespace string) *Metrics {
	if namespace == "" {
		namespace = "warehouser"
	}

	labels := []string{"dialect", "table"}

	m := &Metrics{
		registry: prometheus.NewRegistry(),
		upserts: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upserts_total",
			Help:      "Total number of upsert calls attempted",
		}, labels),
		upsertFailures: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upsert_failures_total",
			Help:      "Total number of upsert calls that were rolled back",
		}, labels),
		rowsWritten: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "upsert_rows_total",
			Help:      "Total number of rows sent by successful upserts",
		}, labels),
		upsertDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "upsert_duration_seconds",
			Help:      "Duration of upsert calls in seconds",
			Buckets:   prometheus.ExponentialBuckets(0.001, 4, 10),
		}, labels),
		connects: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "connects_total",
			Help:      "Total number of connection pools opened, by outcome",
		}, []string{"dialect", "outcome"}),
	}

	m.registry.MustRegister(
		m.upserts,
		m.upsertFailures,
		m.rowsWritten,
		m.upsertDuration,
		m.connects,
	)

	return m
}

// Registry returns the registry holding the collectors.
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

func (m *Metrics) RecordUpsertSuccess(dialect, table string, rows int, duration time.Duration) {
	m.upserts.WithLabelValues(dialect, table).Inc()
	m.rowsWritten.WithLabelValues(dialect, table).Add(float64(rows))
	m.upsertDuration.WithLabelValues(dialect, table).Observe(duration.Seconds())
}

func (m *Metrics) RecordUpsertFailure(dialect, table string, duration time.Duration) {
	m.upserts.WithLabelValues(dialect, table).Inc()
	m.upsertFailures.WithLabelValues(dialect, table).Inc()
	m.upsertDuration.WithLabelValues(dialect, table).Observe(duration.Seconds())
}

func (m *Metrics) RecordConnect(dialect string, err error) {
	outcome := "ok"
	if err != nil {
		outcome = "error"
	}
	m.connects.WithLabelValues(dialect, outcome).Inc()
}

// WriteTextfile dumps the current values in the node_exporter textfile
// format, for batch jobs that exit before they could be scraped.
func (m *Metrics) WriteTextfile(path string) error {
	return prometheus.WriteToTextfile(path, m.registry)
}
