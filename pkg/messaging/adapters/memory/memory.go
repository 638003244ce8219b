// Package memory provides an in-process Broker used as a test double for
// the durable queue adapters (nats, kafka).
package memory

import (
	"context"
	"sync"

	"github.com/nova-metrics/eventpipe/pkg/messaging"
	"github.com/google/uuid"
)

// Config configures the in-memory broker.
type Config struct {
	// BufferSize is the per-topic channel capacity.
	BufferSize int
}

// Broker is a non-durable, single-process Broker implementation.
type Broker struct {
	cfg Config

	mu     sync.Mutex
	topics map[string]chan *messaging.Message
	closed bool
}

// New creates an in-memory broker.
func New(cfg Config) *Broker {
	if cfg.BufferSize <= 0 {
		cfg.BufferSize = 100
	}
	return &Broker{cfg: cfg, topics: make(map[string]chan *messaging.Message)}
}

func (b *Broker) channel(topic string) chan *messaging.Message {
	b.mu.Lock()
	defer b.mu.Unlock()
	ch, ok := b.topics[topic]
	if !ok {
		ch = make(chan *messaging.Message, b.cfg.BufferSize)
		b.topics[topic] = ch
	}
	return ch
}

func (b *Broker) Producer(topic string) (messaging.Producer, error) {
	return &producer{broker: b, topic: topic}, nil
}

func (b *Broker) Consumer(topic string, group string) (messaging.Consumer, error) {
	return &consumer{broker: b, topic: topic}, nil
}

func (b *Broker) Close() error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.closed {
		return nil
	}
	b.closed = true
	for _, ch := range b.topics {
		close(ch)
	}
	return nil
}

func (b *Broker) Healthy(ctx context.Context) bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return !b.closed
}

type producer struct {
	broker *Broker
	topic  string
}

func (p *producer) Publish(ctx context.Context, msg *messaging.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	select {
	case p.broker.channel(p.topic) <- msg:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (p *producer) PublishBatch(ctx context.Context, msgs []*messaging.Message) error {
	for _, msg := range msgs {
		if err := p.Publish(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (p *producer) Close() error { return nil }

type consumer struct {
	broker *Broker
	topic  string
}

func (c *consumer) Consume(ctx context.Context, handler messaging.MessageHandler) error {
	ch := c.broker.channel(c.topic)
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case msg, ok := <-ch:
			if !ok {
				return nil
			}
			_ = handler(ctx, msg)
		}
	}
}

func (c *consumer) Close() error { return nil }

var _ messaging.Broker = (*Broker)(nil)
