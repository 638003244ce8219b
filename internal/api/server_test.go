package api_test

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nova-metrics/eventpipe/internal/analytics"
	"github.com/nova-metrics/eventpipe/internal/api"
	"github.com/nova-metrics/eventpipe/internal/dedup"
	"github.com/nova-metrics/eventpipe/internal/event"
	"github.com/nova-metrics/eventpipe/internal/ingest"
	"github.com/nova-metrics/eventpipe/internal/lifecycle"
	"github.com/nova-metrics/eventpipe/internal/platform"
	"github.com/nova-metrics/eventpipe/internal/queue"
	"github.com/nova-metrics/eventpipe/internal/ratelimit"
	"github.com/nova-metrics/eventpipe/internal/store"
	cachemem "github.com/nova-metrics/eventpipe/pkg/cache/adapters/memory"
	"github.com/nova-metrics/eventpipe/pkg/database"
	"github.com/nova-metrics/eventpipe/pkg/database/sql"
	"github.com/nova-metrics/eventpipe/pkg/database/sql/adapters/sqlite"
	"github.com/nova-metrics/eventpipe/pkg/messaging/adapters/memory"
)

// testMetrics is shared by every test server: the collectors register
// with the default Prometheus registry, which rejects a second registration.
var testMetrics = platform.NewMetrics()

func newTestServer(t *testing.T) http.Handler {
	t.Helper()

	db, err := sqlite.New(sql.Config{Driver: database.DriverSQLite, Path: "file:" + t.Name() + "?mode=memory&cache=shared"})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := store.New(db)
	require.NoError(t, s.AutoMigrate(context.Background()))

	broker := memory.New(memory.Config{})
	pub, err := queue.NewPublisher(broker, "events.ingest")
	require.NoError(t, err)

	dedupClient := dedup.New(cachemem.New(), time.Hour)
	orchestrator := ingest.New(dedupClient, pub, nil)
	engine := analytics.New(db)
	manager := lifecycle.New(broker, s)
	metrics := testMetrics
	limiter := ratelimit.New(cachemem.New(), ratelimit.Config{Enabled: false, MaxRequests: 1000, Window: time.Minute})

	handlers := api.Handlers{
		Ingest:    api.NewIngestHandler(orchestrator, event.NewValidator(), s),
		Analytics: api.NewAnalyticsHandler(engine),
		Health:    api.NewHealthHandler(manager),
		RateLimit: api.NewRateLimitMiddleware(limiter, metrics),
		Metrics:   api.NewMetricsMiddleware(metrics),
	}
	return api.NewRouter(handlers)
}

func TestIngest_AcceptsValidBatch(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t))
	defer srv.Close()

	body, _ := json.Marshal(event.Batch{Events: []event.Event{{
		EventID:    uuid.New(),
		UserID:     "user-1",
		EventType:  "click",
		OccurredAt: time.Now().UTC(),
	}}})

	resp, err := http.Post(srv.URL+"/events", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusAccepted, resp.StatusCode)

	var result event.IngestResult
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&result))
	assert.Equal(t, 1, result.Accepted)
}

func TestIngest_RejectsEmptyBatch(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t))
	defer srv.Close()

	body, _ := json.Marshal(event.Batch{Events: []event.Event{}})
	resp, err := http.Post(srv.URL+"/events", "application/json", bytes.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()

	assert.Equal(t, http.StatusUnprocessableEntity, resp.StatusCode)
}

func TestHealth_Liveness(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health/liveness")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
}

func TestEventsCount_ReflectsStoredEvents(t *testing.T) {
	srv := httptest.NewServer(newTestServer(t))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/events/count")
	require.NoError(t, err)
	defer resp.Body.Close()

	var body map[string]int64
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
	assert.Equal(t, int64(0), body["total_events"])
}
