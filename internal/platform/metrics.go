package platform

import (
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics holds every counter, gauge, and histogram the ingestion
// pipeline and worker emit, registered against the default registry at
// construction time.
type Metrics struct {
	EventsReceived  *prometheus.CounterVec
	EventsIngested  *prometheus.CounterVec
	EventsDuplicate prometheus.Counter
	EventsFailed    *prometheus.CounterVec

	IngestionDuration prometheus.Histogram

	APIRequests        *prometheus.CounterVec
	APIRequestDuration *prometheus.HistogramVec
	ActiveConnections  prometheus.Gauge
	RateLimitExceeded  *prometheus.CounterVec
	QueueDepth         prometheus.Gauge
}

// NewMetrics registers and returns the pipeline's metrics.
func NewMetrics() *Metrics {
	return &Metrics{
		EventsReceived: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "events_received_total",
			Help: "Total number of events received in ingestion batches.",
		}, []string{"event_type"}),

		EventsIngested: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "events_ingested_total",
			Help: "Total number of events durably stored by the worker.",
		}, []string{"event_type"}),

		EventsDuplicate: promauto.NewCounter(prometheus.CounterOpts{
			Name: "events_duplicate_total",
			Help: "Total number of events rejected as duplicates.",
		}),

		EventsFailed: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "events_failed_total",
			Help: "Total number of events that failed processing, by reason.",
		}, []string{"reason"}),

		IngestionDuration: promauto.NewHistogram(prometheus.HistogramOpts{
			Name:    "ingestion_duration_seconds",
			Help:    "Duration of the ingest-to-queue path for an accepted batch.",
			Buckets: prometheus.DefBuckets,
		}),

		APIRequests: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "api_requests_total",
			Help: "Total HTTP requests served, by method, endpoint, and status code.",
		}, []string{"method", "endpoint", "status_code"}),

		APIRequestDuration: promauto.NewHistogramVec(prometheus.HistogramOpts{
			Name:    "api_request_duration_seconds",
			Help:    "Duration of HTTP requests, by method and endpoint.",
			Buckets: prometheus.DefBuckets,
		}, []string{"method", "endpoint"}),

		ActiveConnections: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "active_connections",
			Help: "Number of HTTP requests currently in flight.",
		}),

		RateLimitExceeded: promauto.NewCounterVec(prometheus.CounterOpts{
			Name: "rate_limit_exceeded_total",
			Help: "Total number of requests rejected by the rate limiter, by client IP.",
		}, []string{"client_ip"}),

		QueueDepth: promauto.NewGauge(prometheus.GaugeOpts{
			Name: "queue_depth",
			Help: "Approximate number of messages pending in the durable queue.",
		}),
	}
}

// IncReceived satisfies internal/ingest.Metrics.
func (m *Metrics) IncReceived(eventType string) { m.EventsReceived.WithLabelValues(eventType).Inc() }

// IncDuplicate satisfies internal/ingest.Metrics.
func (m *Metrics) IncDuplicate(n int) { m.EventsDuplicate.Add(float64(n)) }

// IncFailed satisfies internal/ingest.Metrics and internal/worker.Metrics.
func (m *Metrics) IncFailed(reason string) { m.EventsFailed.WithLabelValues(reason).Inc() }

// ObserveIngestDuration satisfies internal/ingest.Metrics.
func (m *Metrics) ObserveIngestDuration(d time.Duration) {
	m.IngestionDuration.Observe(d.Seconds())
}

// IncIngested satisfies internal/worker.Metrics.
func (m *Metrics) IncIngested(eventType string) { m.EventsIngested.WithLabelValues(eventType).Inc() }
