package worker_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nova-metrics/eventpipe/internal/event"
	"github.com/nova-metrics/eventpipe/internal/worker"
	"github.com/nova-metrics/eventpipe/pkg/messaging"
)

type fakeConsumer struct {
	msgs   []*messaging.Message
	closed bool
}

func (c *fakeConsumer) Consume(ctx context.Context, handler messaging.MessageHandler) error {
	for _, m := range c.msgs {
		if err := handler(ctx, m); err != nil {
			return err
		}
	}
	return nil
}

func (c *fakeConsumer) Close() error {
	c.closed = true
	return nil
}

type fakeStore struct {
	inserted []event.Event
	failNext error
}

func (s *fakeStore) Insert(ctx context.Context, events []event.Event) (int, int, error) {
	if s.failNext != nil {
		err := s.failNext
		s.failNext = nil
		return 0, 0, err
	}
	s.inserted = append(s.inserted, events...)
	return len(events), 0, nil
}

func validEvent() event.Event {
	return event.Event{
		EventID:    uuid.New(),
		UserID:     "user-1",
		EventType:  "click",
		OccurredAt: time.Now().UTC(),
		Properties: map[string]any{},
	}
}

func TestRun_StoresDecodedEvent(t *testing.T) {
	e := validEvent()
	payload, err := event.MarshalPayload(e)
	require.NoError(t, err)

	store := &fakeStore{}
	w := worker.New(&fakeConsumer{msgs: []*messaging.Message{{Payload: payload}}}, store, nil)

	require.NoError(t, w.Run(context.Background()))
	require.Len(t, store.inserted, 1)
	assert.Equal(t, e.EventID, store.inserted[0].EventID)
}

func TestRun_UndecodableMessageIsPoison(t *testing.T) {
	store := &fakeStore{}
	w := worker.New(&fakeConsumer{msgs: []*messaging.Message{{Payload: []byte("not json")}}}, store, nil)

	err := w.Run(context.Background())
	require.Error(t, err)
	assert.True(t, errors.Is(err, messaging.ErrPoison))
	assert.Empty(t, store.inserted)
}

func TestRun_StoreFailurePropagatesWithoutPoison(t *testing.T) {
	e := validEvent()
	payload, err := event.MarshalPayload(e)
	require.NoError(t, err)

	store := &fakeStore{failNext: errors.New("db down")}
	w := worker.New(&fakeConsumer{msgs: []*messaging.Message{{Payload: payload}}}, store, nil)

	err = w.Run(context.Background())
	require.Error(t, err)
	assert.False(t, errors.Is(err, messaging.ErrPoison))
}
