package analytics_test

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nova-metrics/eventpipe/internal/analytics"
	"github.com/nova-metrics/eventpipe/internal/event"
	"github.com/nova-metrics/eventpipe/internal/store"
	"github.com/nova-metrics/eventpipe/pkg/database"
	"github.com/nova-metrics/eventpipe/pkg/database/sql"
	"github.com/nova-metrics/eventpipe/pkg/database/sql/adapters/sqlite"
)

func newTestEngine(t *testing.T) (*analytics.Engine, *store.Store) {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := sqlite.New(sql.Config{Driver: database.DriverSQLite, Path: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := store.New(db)
	require.NoError(t, s.AutoMigrate(context.Background()))
	return analytics.New(db), s
}

func seed(t *testing.T, s *store.Store, userID, eventType string, occurredAt time.Time) {
	t.Helper()
	_, _, err := s.Insert(context.Background(), []event.Event{{
		EventID:    uuid.New(),
		UserID:     userID,
		EventType:  eventType,
		OccurredAt: occurredAt,
	}})
	require.NoError(t, err)
}

// TestDAU_TwoDayWindow covers spec end-to-end scenario 5: user_A and
// user_B active on day 1, only user_A active on day 2.
func TestDAU_TwoDayWindow(t *testing.T) {
	engine, s := newTestEngine(t)

	day1 := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	day2 := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)
	seed(t, s, "user_A", "click", day1)
	seed(t, s, "user_B", "click", day1)
	seed(t, s, "user_A", "view", day2)

	points, err := engine.DAU(context.Background(),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC))
	require.NoError(t, err)

	require.Len(t, points, 2)
	assert.Equal(t, analytics.DAUPoint{Date: "2024-01-01", ActiveUsers: 2}, points[0])
	assert.Equal(t, analytics.DAUPoint{Date: "2024-01-02", ActiveUsers: 1}, points[1])
}

func TestDAU_RejectsInvertedRange(t *testing.T) {
	engine, _ := newTestEngine(t)
	_, err := engine.DAU(context.Background(),
		time.Date(2024, 1, 2, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC))
	assert.Error(t, err)
}

func TestTopEvents_OrdersByCountDescending(t *testing.T) {
	engine, s := newTestEngine(t)
	day := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)

	seed(t, s, "user_A", "click", day)
	seed(t, s, "user_A", "click", day)
	seed(t, s, "user_B", "click", day)
	seed(t, s, "user_A", "view", day)

	events, err := engine.TopEvents(context.Background(),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 10)
	require.NoError(t, err)

	require.Len(t, events, 2)
	assert.Equal(t, analytics.TopEvent{EventType: "click", Count: 3}, events[0])
	assert.Equal(t, analytics.TopEvent{EventType: "view", Count: 1}, events[1])
}

// TestRetention_TwoWindows covers spec end-to-end scenario 6: cohort
// {u1,u2} on D, {u1} retained on D+1, nobody on D+2.
func TestRetention_TwoWindows(t *testing.T) {
	engine, s := newTestEngine(t)

	dayD := time.Date(2024, 1, 1, 10, 0, 0, 0, time.UTC)
	dayD1 := time.Date(2024, 1, 2, 10, 0, 0, 0, time.UTC)

	seed(t, s, "u1", "click", dayD)
	seed(t, s, "u2", "click", dayD)
	seed(t, s, "u1", "view", dayD1)

	cohorts, err := engine.Retention(context.Background(),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 2, "daily")
	require.NoError(t, err)
	require.Len(t, cohorts, 1)

	cohort := cohorts[0]
	assert.Equal(t, "2024-01-01", cohort.CohortStart)
	assert.Equal(t, 2, cohort.Window0)
	assert.Equal(t, 1, cohort.Windows[1])
	assert.Equal(t, 0, cohort.Windows[2])
	assert.InDelta(t, 50.0, cohort.RetentionRates[1], 0.001)
	assert.InDelta(t, 0.0, cohort.RetentionRates[2], 0.001)

	body, err := json.Marshal(cohort)
	require.NoError(t, err)

	var decoded map[string]any
	require.NoError(t, json.Unmarshal(body, &decoded))
	assert.Equal(t, "2024-01-01", decoded["cohort_start"])
	assert.Equal(t, float64(2), decoded["window_0"])
	assert.Equal(t, float64(1), decoded["window_1"])
	assert.Equal(t, float64(0), decoded["window_2"])
	assert.Equal(t, 50.0, decoded["retention_rate_1"])
	assert.Equal(t, 0.0, decoded["retention_rate_2"])
}

func TestRetention_EmptyCohortReturnsNil(t *testing.T) {
	engine, _ := newTestEngine(t)
	cohorts, err := engine.Retention(context.Background(),
		time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC), 2, "daily")
	require.NoError(t, err)
	assert.Nil(t, cohorts)
}

func TestRetention_RejectsWindowsOutOfRange(t *testing.T) {
	engine, _ := newTestEngine(t)
	_, err := engine.Retention(context.Background(), time.Now(), 0, "daily")
	assert.Error(t, err)
	_, err = engine.Retention(context.Background(), time.Now(), 11, "daily")
	assert.Error(t, err)
}
