package queue_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"

	"github.com/nova-metrics/eventpipe/internal/event"
	"github.com/nova-metrics/eventpipe/internal/queue"
	"github.com/nova-metrics/eventpipe/pkg/messaging"
	"github.com/nova-metrics/eventpipe/pkg/messaging/adapters/memory"
)

func TestNewBroker_MemoryDriver(t *testing.T) {
	broker, err := queue.NewBroker(queue.Config{Driver: "memory"})
	require.NoError(t, err)
	require.NotNil(t, broker)
}

func TestNewBroker_UnknownDriver(t *testing.T) {
	_, err := queue.NewBroker(queue.Config{Driver: "smoke-signal"})
	require.Error(t, err)
}

func TestPublisher_PublishBatch_RoundTrips(t *testing.T) {
	broker := memory.New(memory.Config{})
	pub, err := queue.NewPublisher(broker, "events.ingest")
	require.NoError(t, err)
	defer pub.Close()

	consumer, err := broker.Consumer("events.ingest", "test-group")
	require.NoError(t, err)
	defer consumer.Close()

	events := []event.Event{
		{EventID: uuid.New(), UserID: "u1", EventType: "click", OccurredAt: time.Now().UTC()},
		{EventID: uuid.New(), UserID: "u2", EventType: "view", OccurredAt: time.Now().UTC()},
	}

	errCh := make(chan error, 1)
	received := make(chan event.Event, len(events))
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	go func() {
		errCh <- consumer.Consume(ctx, func(_ context.Context, msg *messaging.Message) error {
			e, err := event.UnmarshalPayload(msg.Payload)
			if err != nil {
				return err
			}
			received <- e
			return nil
		})
	}()

	require.NoError(t, pub.PublishBatch(context.Background(), events))

	for range events {
		select {
		case <-received:
		case <-time.After(time.Second):
			t.Fatal("timed out waiting for published event")
		}
	}
}
