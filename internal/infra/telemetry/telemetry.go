package telemetry

import (
	"github.com/prometheus/client_golang/prometheus"
)

// Provider registers and owns every Prometheus collector the service exposes.
type Provider struct {
	Registry *prometheus.Registry

	HTTPRequestsTotal   *prometheus.CounterVec
	HTTPRequestDuration *prometheus.HistogramVec
	HTTPInFlight        prometheus.Gauge

	AuditEntriesRecorded prometheus.Counter
	AuditExportsTotal    prometheus.Counter
	AuditExportDuration  prometheus.Histogram

	ResetJobsEnqueued  prometheus.Counter
	ResetJobsProcessed *prometheus.CounterVec
	ResetEmailsSent    *prometheus.CounterVec
	ResetJobDuration   prometheus.Histogram
	ResetQueueDepth    prometheus.Gauge
	EventsPublished    *prometheus.CounterVec
	EventPublishErrors prometheus.Counter
}

// NewProvider builds the collector set under the given namespace.
func NewProvider(namespace string) *Provider {
	registry := prometheus.NewRegistry()

	p := &Provider{
		Registry: registry,

		HTTPRequestsTotal: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "http_requests_total",
				Help:      "Total HTTP requests by method, route and status code.",
			},
			[]string{"method", "route", "status"},
		),
		HTTPRequestDuration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request latency by method and route.",
				Buckets:   prometheus.DefBuckets,
			},
			[]string{"method", "route"},
		),
		HTTPInFlight: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "http_requests_in_flight",
				Help:      "Currently served HTTP requests.",
			},
		),

		AuditEntriesRecorded: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "audit_entries_recorded_total",
				Help:      "Audit entries written to the log.",
			},
		),
		AuditExportsTotal: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "audit_exports_total",
				Help:      "Spreadsheet exports generated.",
			},
		),
		AuditExportDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "audit_export_duration_seconds",
				Help:      "Time to build one export workbook.",
				Buckets:   []float64{0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
			},
		),

		ResetJobsEnqueued: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reset_jobs_enqueued_total",
				Help:      "Bulk password reset jobs accepted for processing.",
			},
		),
		ResetJobsProcessed: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reset_jobs_processed_total",
				Help:      "Bulk password reset jobs completed by outcome.",
			},
			[]string{"outcome"},
		),
		ResetEmailsSent: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "reset_emails_total",
				Help:      "Password reset emails by delivery outcome.",
			},
			[]string{"outcome"},
		),
		ResetJobDuration: prometheus.NewHistogram(
			prometheus.HistogramOpts{
				Namespace: namespace,
				Name:      "reset_job_duration_seconds",
				Help:      "Time to process one bulk reset job.",
				Buckets:   []float64{0.1, 0.5, 1, 5, 15, 60, 300},
			},
		),
		ResetQueueDepth: prometheus.NewGauge(
			prometheus.GaugeOpts{
				Namespace: namespace,
				Name:      "reset_queue_depth",
				Help:      "Jobs waiting in the in-process reset queue.",
			},
		),
		EventsPublished: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "events_published_total",
				Help:      "Domain events published by topic.",
			},
			[]string{"topic"},
		),
		EventPublishErrors: prometheus.NewCounter(
			prometheus.CounterOpts{
				Namespace: namespace,
				Name:      "event_publish_errors_total",
				Help:      "Domain event publish failures.",
			},
		),
	}

	registry.MustRegister(
		p.HTTPRequestsTotal,
		p.HTTPRequestDuration,
		p.HTTPInFlight,
		p.AuditEntriesRecorded,
		p.AuditExportsTotal,
		p.AuditExportDuration,
		p.ResetJobsEnqueued,
		p.ResetJobsProcessed,
		p.ResetEmailsSent,
		p.ResetJobDuration,
		p.ResetQueueDepth,
		p.EventsPublished,
		p.EventPublishErrors,
	)

	return p
}
