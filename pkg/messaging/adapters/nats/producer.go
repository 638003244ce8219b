package nats

import (
	"context"
	"time"

	"github.com/nova-metrics/eventpipe/pkg/messaging"
	"github.com/google/uuid"
	"github.com/nats-io/nats.go"
)

// producer publishes one JetStream message per call; the broker provides
// no wire-level batching (spec: per-event acknowledgment semantics).
type producer struct {
	broker  *Broker
	subject string
}

func (p *producer) Publish(ctx context.Context, msg *messaging.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	natsMsg := nats.NewMsg(p.subject)
	natsMsg.Data = msg.Payload
	natsMsg.Header.Set(nats.MsgIdHdr, msg.ID)
	for k, v := range msg.Headers {
		natsMsg.Header.Set(k, v)
	}

	_, err := p.broker.js.PublishMsg(natsMsg, nats.Context(ctx))
	if err != nil {
		return messaging.ErrPublishFailed(err)
	}
	return nil
}

// PublishBatch publishes sequentially; a failure aborts the remaining
// messages in the batch, per the component's design contract.
func (p *producer) PublishBatch(ctx context.Context, msgs []*messaging.Message) error {
	for _, msg := range msgs {
		if err := p.Publish(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (p *producer) Close() error {
	return nil
}
