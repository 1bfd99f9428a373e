// Package observability provides Prometheus metrics, OpenTelemetry tracing
// and the HTTP and repository instrumentation built on them.
package observability

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

// Collector holds all Prometheus metrics for the application
type Collector struct {
	// Registry for this collector instance
	registry *prometheus.Registry

	// HTTP metrics
	HTTPRequests *prometheus.CounterVec
	HTTPDuration *prometheus.HistogramVec

	// Business metrics
	AuthAttempts    *prometheus.CounterVec
	MemoriesCreated prometheus.Counter
	MemoriesDeleted prometheus.Counter
	UploadsAccepted *prometheus.CounterVec

	// Repository metrics
	DBOperations *prometheus.CounterVec
	DBDuration   *prometheus.HistogramVec
}

// NewCollector creates a collector with its own registry, so several can coexist in tests.
func NewCollector(namespace string) *Collector {
	registry := prometheus.NewRegistry()

	c := &Collector{
		registry: registry,
		HTTPRequests: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			[]string{"method", "route", "status"},
		),
		HTTPDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		AuthAttempts: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "auth_attempts_total",
				Help:      "Register and login attempts by outcome",
			},
			[]string{"operation", "outcome"},
		),
		MemoriesCreated: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "memories_created_total",
				Help:      "Total number of memories created",
			},
		),
		MemoriesDeleted: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "memories_deleted_total",
				Help:      "Total number of memories deleted",
			},
		),
		UploadsAccepted: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "uploads_accepted_total",
				Help:      "Attachments stored, by kind",
			},
			[]string{"kind"},
		),
		DBOperations: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "db_operations_total",
				Help:      "Total number of database operations",
			},
			[]string{"operation", "table", "status"},
		),
		DBDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "db_operation_duration_seconds",
				Help:      "Database operation duration in seconds",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"operation", "table"},
		),
	}

	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		c.HTTPRequests,
		c.HTTPDuration,
		c.AuthAttempts,
		c.MemoriesCreated,
		c.MemoriesDeleted,
		c.UploadsAccepted,
		c.DBOperations,
		c.DBDuration,
	)

	return c
}

// RecordAuthAttempt counts a register or login attempt.
func (c *Collector) RecordAuthAttempt(operation, outcome string) {
	c.AuthAttempts.WithLabelValues(operation, outcome).Inc()
}

// RecordDBOperation counts a repository call and its latency.
func (c *Collector) RecordDBOperation(operation, table string, duration time.Duration, err error) {
	status := "ok"
	if err != nil {
		status = "error"
	}
	c.DBOperations.WithLabelValues(operation, table, status).Inc()
	c.DBDuration.WithLabelValues(operation, table).Observe(duration.Seconds())
}

// GetRegistry returns the Prometheus registry for this collector
func (c *Collector) GetRegistry() *prometheus.Registry {
	return c.registry
}

// Handler serves the registry in the Prometheus exposition format.
func (c *Collector) Handler() http.Handler {
	return promhttp.HandlerFor(c.registry, promhttp.HandlerOpts{Registry: c.registry})
}

// RecordMemoryCreated counts a created memory.
func (c *Collector) RecordMemoryCreated() {
	c.MemoriesCreated.Inc()
}

// RecordMemoryDeleted counts a deleted memory.
func (c *Collector) RecordMemoryDeleted() {
	c.MemoriesDeleted.Inc()
}

// RecordUpload counts a stored attachment of the given kind (media or voice).
func (c *Collector) RecordUpload(kind string) {
	c.UploadsAccepted.WithLabelValues(kind).Inc()
}
