package api

import (
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/nova-metrics/eventpipe/internal/lifecycle"
)

// HealthHandler serves the liveness, readiness, aggregate health, and
// Prometheus scrape endpoints.
type HealthHandler struct {
	manager *lifecycle.Manager
}

// NewHealthHandler builds a HealthHandler.
func NewHealthHandler(manager *lifecycle.Manager) *HealthHandler {
	return &HealthHandler{manager: manager}
}

// Liveness handles GET /health/liveness.
func (h *HealthHandler) Liveness(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Liveness(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "alive"})
}

// Readiness handles GET /health/readiness.
func (h *HealthHandler) Readiness(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Readiness(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}

// Health handles GET /health, an aggregate view of both checks.
func (h *HealthHandler) Health(w http.ResponseWriter, r *http.Request) {
	if err := h.manager.Readiness(r.Context()); err != nil {
		writeError(w, http.StatusServiceUnavailable, err.Error())
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// MetricsHandler exposes the Prometheus scrape endpoint.
func (h *HealthHandler) MetricsHandler() http.Handler {
	return promhttp.Handler()
}
