package kafka

import (
	"context"
	"errors"
	"fmt"

	"github.com/IBM/sarama"
	"github.com/nova-metrics/eventpipe/pkg/logger"
	"github.com/nova-metrics/eventpipe/pkg/messaging"
)

type consumer struct {
	broker *Broker
	topic  string
	group  sarama.ConsumerGroup
}

// Consume joins the consumer group and dispatches each claimed message to
// handler. Kafka has no per-message nak/term primitive: a poison message
// (or a successfully processed one) has its offset committed so it is
// never redelivered; a transient failure leaves the offset uncommitted,
// so the message is redelivered after the next rebalance.
func (c *consumer) Consume(ctx context.Context, handler messaging.MessageHandler) error {
	groupHandler := &consumerGroupHandler{handler: handler}
	for ctx.Err() == nil {
		if err := c.group.Consume(ctx, []string{c.topic}, groupHandler); err != nil {
			if errors.Is(err, sarama.ErrClosedConsumerGroup) {
				return nil
			}
			return fmt.Errorf("kafka consume group session: %w", err)
		}
	}
	return ctx.Err()
}

func (c *consumer) Close() error {
	return c.group.Close()
}

type consumerGroupHandler struct {
	handler messaging.MessageHandler
}

func (h *consumerGroupHandler) Setup(sarama.ConsumerGroupSession) error   { return nil }
func (h *consumerGroupHandler) Cleanup(sarama.ConsumerGroupSession) error { return nil }

func (h *consumerGroupHandler) ConsumeClaim(session sarama.ConsumerGroupSession, claim sarama.ConsumerGroupClaim) error {
	for {
		select {
		case <-session.Context().Done():
			return nil
		case m, ok := <-claim.Messages():
			if !ok {
				return nil
			}
			h.handleOne(session, m)
		}
	}
}

func (h *consumerGroupHandler) handleOne(session sarama.ConsumerGroupSession, m *sarama.ConsumerMessage) {
	msg := &messaging.Message{Topic: m.Topic, Payload: m.Value, Metadata: messaging.MessageMetadata{Partition: m.Partition, Offset: m.Offset}}
	for _, h := range m.Headers {
		if string(h.Key) == "message-id" {
			msg.ID = string(h.Value)
		}
	}

	err := h.handler(session.Context(), msg)
	switch {
	case err == nil, errors.Is(err, messaging.ErrPoison):
		session.MarkMessage(m, "")
	default:
		logger.L().ErrorContext(session.Context(), "kafka message processing failed, offset not committed", "topic", m.Topic, "partition", m.Partition, "offset", m.Offset, "error", err)
	}
}
