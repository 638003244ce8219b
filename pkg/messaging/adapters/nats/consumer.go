package nats

import (
	"context"
	"errors"

	"github.com/nova-metrics/eventpipe/pkg/logger"
	"github.com/nova-metrics/eventpipe/pkg/messaging"
	"github.com/nats-io/nats.go"
)

type consumer struct {
	broker *Broker
	sub    *nats.Subscription
}

// Consume pulls in batches of FetchBatch with a FetchTimeout wait. An
// empty fetch is normal idle behavior, not an error. The loop exits at
// its next iteration boundary once ctx is canceled.
func (c *consumer) Consume(ctx context.Context, handler messaging.MessageHandler) error {
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		msgs, err := c.sub.Fetch(c.broker.cfg.FetchBatch, nats.MaxWait(c.broker.cfg.FetchTimeout))
		if err != nil {
			if errors.Is(err, nats.ErrTimeout) || errors.Is(err, context.DeadlineExceeded) {
				continue
			}
			return messaging.ErrConsumeFailed(err)
		}

		for _, m := range msgs {
			c.handleOne(ctx, handler, m)
		}
	}
}

func (c *consumer) handleOne(ctx context.Context, handler messaging.MessageHandler, m *nats.Msg) {
	meta, _ := m.Metadata()
	msg := &messaging.Message{
		ID:      m.Header.Get(nats.MsgIdHdr),
		Topic:   m.Subject,
		Payload: m.Data,
	}
	if meta != nil {
		msg.Metadata.DeliveryCount = int(meta.NumDelivered)
	}

	err := handler(ctx, msg)
	switch {
	case err == nil:
		if ackErr := m.Ack(); ackErr != nil {
			logger.L().ErrorContext(ctx, "failed to ack message", "subject", m.Subject, "error", ackErr)
		}
	case errors.Is(err, messaging.ErrPoison):
		if termErr := m.Term(); termErr != nil {
			logger.L().ErrorContext(ctx, "failed to term message", "subject", m.Subject, "error", termErr)
		}
	default:
		if nakErr := m.NakWithDelay(c.broker.cfg.NakDelay); nakErr != nil {
			logger.L().ErrorContext(ctx, "failed to nak message", "subject", m.Subject, "error", nakErr)
		}
	}
}

func (c *consumer) Close() error {
	return c.sub.Unsubscribe()
}
