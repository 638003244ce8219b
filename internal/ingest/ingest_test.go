package ingest_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nova-metrics/eventpipe/internal/dedup"
	"github.com/nova-metrics/eventpipe/internal/event"
	"github.com/nova-metrics/eventpipe/internal/ingest"
	"github.com/nova-metrics/eventpipe/pkg/cache/adapters/memory"
)

type fakePublisher struct {
	published []event.Event
	failErr   error
}

func (p *fakePublisher) PublishBatch(ctx context.Context, events []event.Event) error {
	if p.failErr != nil {
		return p.failErr
	}
	p.published = append(p.published, events...)
	return nil
}

func newBatch(n int) event.Batch {
	events := make([]event.Event, n)
	for i := range events {
		events[i] = event.Event{
			EventID:    uuid.New(),
			UserID:     "user-1",
			EventType:  "click",
			OccurredAt: time.Now().UTC(),
			Properties: map[string]any{},
		}
	}
	return event.Batch{Events: events}
}

func TestIngest_AcceptsNewEvents(t *testing.T) {
	d := dedup.New(memory.New(), time.Hour)
	pub := &fakePublisher{}
	o := ingest.New(d, pub, nil)

	batch := newBatch(2)
	res, err := o.Ingest(context.Background(), batch)
	require.NoError(t, err)

	assert.Equal(t, 2, res.Accepted)
	assert.Equal(t, 0, res.Duplicates)
	assert.Equal(t, 0, res.Failed)
	assert.Len(t, pub.published, 2)
}

func TestIngest_AllDuplicatesShortCircuits(t *testing.T) {
	d := dedup.New(memory.New(), time.Hour)
	pub := &fakePublisher{}
	o := ingest.New(d, pub, nil)

	batch := newBatch(1)
	_, err := o.Ingest(context.Background(), batch)
	require.NoError(t, err)

	res, err := o.Ingest(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Accepted)
	assert.Equal(t, 1, res.Duplicates)
	assert.Empty(t, pub.published)
}

func TestIngest_PublishFailureReportsFailed(t *testing.T) {
	d := dedup.New(memory.New(), time.Hour)
	pub := &fakePublisher{failErr: errors.New("broker down")}
	o := ingest.New(d, pub, nil)

	batch := newBatch(3)
	res, err := o.Ingest(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, 0, res.Accepted)
	assert.Equal(t, 3, res.Failed)
}

func TestIngest_PartialDuplicates(t *testing.T) {
	d := dedup.New(memory.New(), time.Hour)
	pub := &fakePublisher{}
	o := ingest.New(d, pub, nil)

	batch := newBatch(3)
	require.NoError(t, d.MarkSeen(context.Background(), batch.Events[0].EventID))

	res, err := o.Ingest(context.Background(), batch)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Accepted)
	assert.Equal(t, 1, res.Duplicates)
	assert.Len(t, pub.published, 2)
}
