package api

import (
	"encoding/json"
	"net/http"

	"github.com/nova-metrics/eventpipe/internal/event"
	"github.com/nova-metrics/eventpipe/internal/ingest"
	"github.com/nova-metrics/eventpipe/internal/platform"
	"github.com/nova-metrics/eventpipe/internal/store"
	"github.com/nova-metrics/eventpipe/pkg/logger"
)

// IngestHandler serves the event ingestion endpoints.
type IngestHandler struct {
	orchestrator *ingest.Orchestrator
	validator    *event.Validator
	store        *store.Store
}

// NewIngestHandler builds an IngestHandler.
func NewIngestHandler(orchestrator *ingest.Orchestrator, validator *event.Validator, s *store.Store) *IngestHandler {
	return &IngestHandler{orchestrator: orchestrator, validator: validator, store: s}
}

// Ingest handles POST /events.
func (h *IngestHandler) Ingest(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	var batch event.Batch
	if err := json.NewDecoder(r.Body).Decode(&batch); err != nil {
		writeError(w, http.StatusUnprocessableEntity, "invalid request body")
		return
	}

	if err := h.validator.ValidateBatch(&batch); err != nil {
		writeError(w, http.StatusUnprocessableEntity, err.Error())
		return
	}

	result, err := h.orchestrator.Ingest(ctx, batch)
	if err != nil {
		logger.L().ErrorContext(ctx, "failed to ingest batch", "error", err)
		writeError(w, platform.HTTPStatus(err), "failed to process events")
		return
	}

	status := http.StatusAccepted
	if result.Failed > 0 {
		status = http.StatusInternalServerError
	}
	writeJSON(w, status, result)
}

// Count handles GET /events/count.
func (h *IngestHandler) Count(w http.ResponseWriter, r *http.Request) {
	count, err := h.store.Count(r.Context())
	if err != nil {
		writeError(w, platform.HTTPStatus(err), "failed to count events")
		return
	}
	writeJSON(w, http.StatusOK, map[string]int64{"total_events": count})
}
