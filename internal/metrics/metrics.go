// Package metrics holds the Prometheus collectors exposed on /metrics.
package metrics

import (
	"database/sql"
	"net/http"
	"strconv"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Metrics holds all Prometheus metric collectors.
type Metrics struct {
	HTTPRequestsTotal   *prometheus.CounterVec   // requests by method, route, status
	HTTPRequestDuration *prometheus.HistogramVec // latency by method, route
	RecordsSeeded       *prometheus.CounterVec   // default rows inserted at startup, by entity

	registry *prometheus.Registry
}

// New registers every collector on reg. A nil reg gets a fresh registry, so
// tests never collide on the global default one.
func New(reg *prometheus.Registry) *Metrics {
	if reg == nil {
		reg = prometheus.NewRegistry()
	}
	factory := promauto.With(reg)

	return &Metrics{
		HTTPRequestsTotal: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "http_requests_total",
				Help: "Total number of HTTP requests by method, route and status code",
			},
			[]string{"method", "route", "status"},
		),

		HTTPRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name: "http_request_duration_seconds",
				Help: "HTTP request latency in seconds",
				// Single-row queries: 5ms to 5s
				Buckets: []float64{0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5},
			},
			[]string{"method", "route"},
		),

		RecordsSeeded: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "records_seeded_total",
				Help: "Number of default records inserted at startup",
			},
			[]string{"entity"},
		),

		registry: reg,
	}
}

// RegisterDBStats exports sql.DBStats (open, in-use, idle connections, waits)
// for the pool under the db_name label.
func (m *Metrics) RegisterDBStats(db *sql.DB, dbName string) error {
	return m.registry.Register(collectors.NewDBStatsCollector(db, dbName))
}

// RecordHTTPRequest records a completed request.
func (m *Metrics) RecordHTTPRequest(method, route string, statusCode int) {
	m.HTTPRequestsTotal.WithLabelValues(method, route, strconv.Itoa(statusCode)).Inc()
}

// RecordHTTPDuration records how long a request took.
func (m *Metrics) RecordHTTPDuration(method, route string, duration time.Duration) {
	m.HTTPRequestDuration.WithLabelValues(method, route).Observe(duration.Seconds())
}

// RecordSeeded adds n seeded rows for entity.
func (m *Metrics) RecordSeeded(entity string, n int) {
	m.RecordsSeeded.WithLabelValues(entity).Add(float64(n))
}

// Handler serves the registry in the Prometheus exposition format.
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}
