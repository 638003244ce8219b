// Package queue wires the durable work-queue broker (component C,
// producer side) behind a driver-selectable factory, and adapts
// internal/event payloads onto the generic messaging.Producer contract.
package queue

import (
	"context"
	"time"

	"github.com/nova-metrics/eventpipe/internal/event"
	apperrors "github.com/nova-metrics/eventpipe/pkg/errors"
	"github.com/nova-metrics/eventpipe/pkg/messaging"
	"github.com/nova-metrics/eventpipe/pkg/messaging/adapters/kafka"
	"github.com/nova-metrics/eventpipe/pkg/messaging/adapters/memory"
	"github.com/nova-metrics/eventpipe/pkg/messaging/adapters/nats"
	"github.com/nova-metrics/eventpipe/pkg/resilience"
)

// publishRetry bounds the retry attempts for a transient broker publish
// failure; a connection outage still surfaces to the caller once
// exhausted, since PublishBatch's abort-on-first-failure contract
// depends on a bounded number of attempts per message.
var publishRetry = resilience.RetryConfig{
	MaxAttempts:    3,
	InitialBackoff: 50 * time.Millisecond,
	MaxBackoff:     500 * time.Millisecond,
}

// Config selects and configures the broker driver.
type Config struct {
	Driver string `env:"MESSAGING_DRIVER" env-default:"nats"`
	Topic  string `env:"QUEUE_SUBJECT" env-default:"events.ingest"`

	NATS  nats.Config
	Kafka kafka.Config
}

// NewBroker constructs the configured driver's Broker. Network-backed
// drivers are wrapped with tracing; retry is handled once, at the
// Publisher level below, rather than duplicated here as a
// messaging.ResilientBroker, to keep publish attempts single-counted.
func NewBroker(cfg Config) (messaging.Broker, error) {
	switch cfg.Driver {
	case "nats", "":
		b, err := nats.New(cfg.NATS)
		if err != nil {
			return nil, err
		}
		return messaging.NewInstrumentedBroker(b), nil
	case "kafka":
		b, err := kafka.New(cfg.Kafka)
		if err != nil {
			return nil, err
		}
		return messaging.NewInstrumentedBroker(b), nil
	case "memory":
		return memory.New(memory.Config{}), nil
	default:
		return nil, apperrors.InvalidArgument("unknown messaging driver: "+cfg.Driver, nil)
	}
}

// Publisher publishes accepted events to the durable queue.
type Publisher struct {
	producer messaging.Producer
}

// NewPublisher creates a producer for the configured topic.
func NewPublisher(broker messaging.Broker, topic string) (*Publisher, error) {
	producer, err := broker.Producer(topic)
	if err != nil {
		return nil, err
	}
	return &Publisher{producer: producer}, nil
}

// PublishBatch publishes each event sequentially; a failure aborts the
// remaining events (spec §4.C) and the error is returned to the caller
// to decide client-visible behavior.
func (p *Publisher) PublishBatch(ctx context.Context, events []event.Event) error {
	for _, e := range events {
		if err := p.Publish(ctx, e); err != nil {
			return err
		}
	}
	return nil
}

// Publish publishes a single event.
func (p *Publisher) Publish(ctx context.Context, e event.Event) error {
	payload, err := event.MarshalPayload(e)
	if err != nil {
		return apperrors.Internal("failed to marshal event", err)
	}
	msg := &messaging.Message{
		ID:      e.EventID.String(),
		Payload: payload,
	}
	return resilience.Retry(ctx, publishRetry, func(ctx context.Context) error {
		return p.producer.Publish(ctx, msg)
	})
}

// Close releases the publisher's producer.
func (p *Publisher) Close() error {
	return p.producer.Close()
}
