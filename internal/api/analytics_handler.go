package api

import (
	"net/http"
	"strconv"
	"time"

	"github.com/nova-metrics/eventpipe/internal/analytics"
	"github.com/nova-metrics/eventpipe/internal/platform"
)

// AnalyticsHandler serves the DAU, top-events, and retention endpoints.
type AnalyticsHandler struct {
	engine *analytics.Engine
}

// NewAnalyticsHandler builds an AnalyticsHandler.
func NewAnalyticsHandler(engine *analytics.Engine) *AnalyticsHandler {
	return &AnalyticsHandler{engine: engine}
}

const dateLayout = "2006-01-02"

func parseDateRange(r *http.Request) (from, to time.Time, err error) {
	from, err = time.Parse(dateLayout, r.URL.Query().Get("from"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	to, err = time.Parse(dateLayout, r.URL.Query().Get("to"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return from, to, nil
}

// DAU handles GET /stats/dau?from=YYYY-MM-DD&to=YYYY-MM-DD.
func (h *AnalyticsHandler) DAU(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "from and to must be YYYY-MM-DD dates")
		return
	}

	points, err := h.engine.DAU(r.Context(), from, to)
	if err != nil {
		writeError(w, platform.HTTPStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, points)
}

// TopEvents handles GET /stats/top-events?from=&to=&limit=.
func (h *AnalyticsHandler) TopEvents(w http.ResponseWriter, r *http.Request) {
	from, to, err := parseDateRange(r)
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "from and to must be YYYY-MM-DD dates")
		return
	}

	limit := 10
	if raw := r.URL.Query().Get("limit"); raw != "" {
		limit, err = strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "limit must be an integer")
			return
		}
	}

	events, err := h.engine.TopEvents(r.Context(), from, to, limit)
	if err != nil {
		writeError(w, platform.HTTPStatus(err), err.Error())
		return
	}
	writeJSON(w, http.StatusOK, events)
}

// Retention handles GET /stats/retention?start_date=&windows=&window_type=.
func (h *AnalyticsHandler) Retention(w http.ResponseWriter, r *http.Request) {
	start, err := time.Parse(dateLayout, r.URL.Query().Get("start_date"))
	if err != nil {
		writeError(w, http.StatusUnprocessableEntity, "start_date must be a YYYY-MM-DD date")
		return
	}

	windows := 3
	if raw := r.URL.Query().Get("windows"); raw != "" {
		windows, err = strconv.Atoi(raw)
		if err != nil {
			writeError(w, http.StatusUnprocessableEntity, "windows must be an integer")
			return
		}
	}

	windowType := r.URL.Query().Get("window_type")
	if windowType == "" {
		windowType = "daily"
	}
	if windowType != "daily" && windowType != "weekly" {
		writeError(w, http.StatusUnprocessableEntity, "window_type must be daily or weekly")
		return
	}

	cohorts, err := h.engine.Retention(r.Context(), start, windows, windowType)
	if err != nil {
		writeError(w, platform.HTTPStatus(err), err.Error())
		return
	}

	writeJSON(w, http.StatusOK, map[string]any{
		"cohorts":     cohorts,
		"window_type": windowType,
	})
}
