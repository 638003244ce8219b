// Package tests holds a Broker contract test suite for messaging
// adapters. The memory adapter's test runs it; the nats and kafka
// adapters have no test that calls it.
package tests

import (
	"context"
	"testing"
	"time"

	"github.com/nova-metrics/eventpipe/pkg/messaging"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunBrokerTests exercises the publish/consume round trip any
// messaging.Broker implementation must satisfy.
func RunBrokerTests(t *testing.T, broker messaging.Broker) {
	t.Helper()

	topic := "tests.broker.roundtrip"

	producer, err := broker.Producer(topic)
	require.NoError(t, err)
	defer producer.Close()

	consumer, err := broker.Consumer(topic, "tests")
	require.NoError(t, err)
	defer consumer.Close()

	received := make(chan *messaging.Message, 1)
	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	go func() {
		_ = consumer.Consume(ctx, func(_ context.Context, msg *messaging.Message) error {
			received <- msg
			return nil
		})
	}()

	sent := &messaging.Message{Topic: topic, Payload: []byte(`{"ok":true}`)}
	require.NoError(t, producer.Publish(ctx, sent))

	select {
	case got := <-received:
		assert.Equal(t, sent.Payload, got.Payload)
	case <-ctx.Done():
		t.Fatal("timed out waiting for message")
	}
}
