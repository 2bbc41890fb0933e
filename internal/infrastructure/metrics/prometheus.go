// Package metrics exposes Prometheus collectors for the API and the worker.
package metrics

import (
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
)

const namespace = "datahub"

// Metrics holds every collector on a private registry
type Metrics struct {
	registry *prometheus.Registry

	httpRequestsTotal   *prometheus.CounterVec
	httpRequestDuration *prometheus.HistogramVec
	jobsEnqueuedTotal   *prometheus.CounterVec
	jobsProcessedTotal  *prometheus.CounterVec
	jobDuration         *prometheus.HistogramVec
	documentScansTotal  *prometheus.CounterVec
	searchSyncTotal     *prometheus.CounterVec
}

// New creates the collectors and registers them with a new registry.
// Go runtime and process collectors are included.
func New() *Metrics {
	m := &Metrics{
		registry: prometheus.NewRegistry(),
		httpRequestsTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "requests_total",
			Help:      "Total number of HTTP requests handled.",
		}, []string{"method", "route", "status"}),
		httpRequestDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "http",
			Name:      "request_duration_seconds",
			Help:      "HTTP request latency.",
			Buckets:   prometheus.DefBuckets,
		}, []string{"method", "route"}),
		jobsEnqueuedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "jobs_enqueued_total",
			Help:      "Jobs pushed onto a queue.",
		}, []string{"queue", "function"}),
		jobsProcessedTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "jobs_processed_total",
			Help:      "Jobs run by the worker, by outcome.",
		}, []string{"queue", "function", "outcome"}),
		jobDuration: prometheus.NewHistogramVec(prometheus.HistogramOpts{
			Namespace: namespace,
			Subsystem: "queue",
			Name:      "job_duration_seconds",
			Help:      "Time spent running a job.",
			Buckets:   []float64{.05, .1, .25, .5, 1, 2.5, 5, 10, 30, 60, 300},
		}, []string{"function"}),
		documentScansTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "documents",
			Name:      "virus_scans_total",
			Help:      "Document virus scans, by result.",
		}, []string{"result"}),
		searchSyncTotal: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "search",
			Name:      "documents_synced_total",
			Help:      "Documents written to the search index.",
		}, []string{"app"}),
	}

	m.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
		m.httpRequestsTotal,
		m.httpRequestDuration,
		m.jobsEnqueuedTotal,
		m.jobsProcessedTotal,
		m.jobDuration,
		m.documentScansTotal,
		m.searchSyncTotal,
	)
	return m
}

// Handler serves the registry in the Prometheus exposition format
func (m *Metrics) Handler() http.Handler {
	return promhttp.HandlerFor(m.registry, promhttp.HandlerOpts{Registry: m.registry})
}

// Registry returns the underlying registry
func (m *Metrics) Registry() *prometheus.Registry {
	return m.registry
}

// ObserveHTTPRequest records a handled request
func (m *Metrics) ObserveHTTPRequest(method, route, status string, d time.Duration) {
	if m == nil {
		return
	}
	m.httpRequestsTotal.WithLabelValues(method, route, status).Inc()
	m.httpRequestDuration.WithLabelValues(method, route).Observe(d.Seconds())
}

// JobEnqueued counts a job pushed onto a queue
func (m *Metrics) JobEnqueued(queue, function string) {
	if m == nil {
		return
	}
	m.jobsEnqueuedTotal.WithLabelValues(queue, function).Inc()
}

// JobProcessed records a finished job. outcome is succeeded, retried or failed.
func (m *Metrics) JobProcessed(queue, function, outcome string, d time.Duration) {
	if m == nil {
		return
	}
	m.jobsProcessedTotal.WithLabelValues(queue, function, outcome).Inc()
	m.jobDuration.WithLabelValues(function).Observe(d.Seconds())
}

// DocumentScanned counts a scan result: clean, infected or failed
func (m *Metrics) DocumentScanned(result string) {
	if m == nil {
		return
	}
	m.documentScansTotal.WithLabelValues(result).Inc()
}

// SearchDocumentsSynced counts documents indexed for an app
func (m *Metrics) SearchDocumentsSynced(app string, n int) {
	if m == nil {
		return
	}
	m.searchSyncTotal.WithLabelValues(app).Add(float64(n))
}
