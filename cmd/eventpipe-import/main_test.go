package main

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nova-metrics/eventpipe/internal/event"
)

type fakeInserter struct {
	seen map[string]bool
}

func (f *fakeInserter) Insert(ctx context.Context, events []event.Event) (int, int, error) {
	if f.seen == nil {
		f.seen = map[string]bool{}
	}
	inserted, duplicate := 0, 0
	for _, e := range events {
		key := e.EventID.String()
		if f.seen[key] {
			duplicate++
			continue
		}
		f.seen[key] = true
		inserted++
	}
	return inserted, duplicate, nil
}

func writeCSV(t *testing.T, contents string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "events.csv")
	require.NoError(t, os.WriteFile(path, []byte(contents), 0o644))
	return path
}

func TestRun_ImportsValidRows(t *testing.T) {
	csv := "event_id,occurred_at,user_id,event_type,properties_json\n" +
		`11111111-1111-1111-1111-111111111111,2026-01-01T00:00:00Z,user-1,click,"{""k"":1}"` + "\n" +
		"22222222-2222-2222-2222-222222222222,2026-01-01T00:00:01Z,user-2,view,\n"
	path := writeCSV(t, csv)

	ins := &fakeInserter{}
	imported, duplicates, failed, err := run(context.Background(), ins, path, 10)
	require.NoError(t, err)
	assert.Equal(t, 2, imported)
	assert.Equal(t, 0, duplicates)
	assert.Equal(t, 0, failed)
}

func TestRun_CountsUnparsableRowsAsFailed(t *testing.T) {
	csv := "event_id,occurred_at,user_id,event_type,properties_json\n" +
		"not-a-uuid,2026-01-01T00:00:00Z,user-1,click,\n"
	path := writeCSV(t, csv)

	ins := &fakeInserter{}
	imported, _, failed, err := run(context.Background(), ins, path, 10)
	require.NoError(t, err)
	assert.Equal(t, 0, imported)
	assert.Equal(t, 1, failed)
}

func TestRun_FlushesFinalPartialBatch(t *testing.T) {
	csv := "event_id,occurred_at,user_id,event_type,properties_json\n" +
		"11111111-1111-1111-1111-111111111111,2026-01-01T00:00:00Z,user-1,click,\n"
	path := writeCSV(t, csv)

	ins := &fakeInserter{}
	imported, _, _, err := run(context.Background(), ins, path, 100)
	require.NoError(t, err)
	assert.Equal(t, 1, imported)
}
