// Package api assembles the HTTP surface (component F): ingestion,
// analytics, and health endpoints, wired through the teacher's
// net/http middleware chain convention.
package api

import (
	"net/http"
	"time"

	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	apimw "github.com/nova-metrics/eventpipe/pkg/api/middleware"
)

// Handlers bundles the dependencies the router wires into endpoints.
type Handlers struct {
	Ingest    *IngestHandler
	Analytics *AnalyticsHandler
	Health    *HealthHandler
	RateLimit *RateLimitMiddleware
	Metrics   *MetricsMiddleware
}

// NewRouter builds the complete HTTP handler: route table wrapped in
// the request-id, metrics, rate-limit, and tracing middleware chain.
func NewRouter(h Handlers) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("POST /events", h.Ingest.Ingest)
	mux.HandleFunc("GET /events/count", h.Ingest.Count)
	mux.HandleFunc("GET /stats/dau", h.Analytics.DAU)
	mux.HandleFunc("GET /stats/top-events", h.Analytics.TopEvents)
	mux.HandleFunc("GET /stats/retention", h.Analytics.Retention)
	mux.HandleFunc("GET /health", h.Health.Health)
	mux.HandleFunc("GET /health/liveness", h.Health.Liveness)
	mux.HandleFunc("GET /health/readiness", h.Health.Readiness)
	mux.Handle("GET /metrics", h.Health.MetricsHandler())

	var handler http.Handler = mux
	handler = h.RateLimit.Wrap(handler)
	handler = h.Metrics.Wrap(handler)
	handler = apimw.RequestIDMiddleware()(handler)
	handler = otelhttp.NewHandler(handler, "eventpipe-api")

	return handler
}

// writeTimeout is a 30-second bound for a single handler. Nothing in the
// module references it; cmd/eventpipe-api sets its own server timeouts.
const writeTimeout = 30 * time.Second
