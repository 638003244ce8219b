package store_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/nova-metrics/eventpipe/internal/event"
	"github.com/nova-metrics/eventpipe/internal/store"
	"github.com/nova-metrics/eventpipe/pkg/database"
	"github.com/nova-metrics/eventpipe/pkg/database/sql"
	"github.com/nova-metrics/eventpipe/pkg/database/sql/adapters/sqlite"
)

func newTestStore(t *testing.T) *store.Store {
	t.Helper()
	dsn := "file:" + t.Name() + "?mode=memory&cache=shared"
	db, err := sqlite.New(sql.Config{Driver: database.DriverSQLite, Path: dsn})
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	s := store.New(db)
	require.NoError(t, s.AutoMigrate(context.Background()))
	return s
}

func TestInsert_DeduplicatesByEventID(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	e := event.Event{
		EventID:    uuid.New(),
		UserID:     "user-1",
		EventType:  "click",
		OccurredAt: time.Now().Add(-time.Hour).UTC(),
		Properties: map[string]any{"x": float64(1)},
	}

	inserted, duplicate, err := s.Insert(ctx, []event.Event{e})
	require.NoError(t, err)
	require.Equal(t, 1, inserted)
	require.Equal(t, 0, duplicate)

	inserted, duplicate, err = s.Insert(ctx, []event.Event{e})
	require.NoError(t, err)
	require.Equal(t, 0, inserted)
	require.Equal(t, 1, duplicate)

	count, err := s.Count(ctx)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
}

func TestInsert_Batch(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	events := make([]event.Event, 5)
	for i := range events {
		events[i] = event.Event{
			EventID:    uuid.New(),
			UserID:     "user-1",
			EventType:  "view",
			OccurredAt: time.Now().Add(-time.Minute).UTC(),
		}
	}

	inserted, duplicate, err := s.Insert(ctx, events)
	require.NoError(t, err)
	require.Equal(t, 5, inserted)
	require.Equal(t, 0, duplicate)
}

func TestInsert_Empty(t *testing.T) {
	s := newTestStore(t)
	inserted, duplicate, err := s.Insert(context.Background(), nil)
	require.NoError(t, err)
	require.Equal(t, 0, inserted)
	require.Equal(t, 0, duplicate)
}
