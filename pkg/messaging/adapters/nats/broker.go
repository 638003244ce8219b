package nats

import (
	"context"

	"github.com/nova-metrics/eventpipe/pkg/logger"
	"github.com/nova-metrics/eventpipe/pkg/messaging"
	"github.com/nats-io/nats.go"
)

// Broker owns the JetStream connection and declares the work-queue stream
// idempotently at construction time.
type Broker struct {
	cfg  Config
	conn *nats.Conn
	js   nats.JetStreamContext
}

// New connects to NATS, opens a JetStream context, and declares the
// configured stream. Declaration is idempotent: an existing stream with
// the same name is left as-is.
func New(cfg Config) (*Broker, error) {
	conn, err := nats.Connect(cfg.URL, nats.Name("eventpipe"))
	if err != nil {
		return nil, messaging.ErrConnectionFailed(err)
	}

	js, err := conn.JetStream()
	if err != nil {
		conn.Close()
		return nil, messaging.ErrConnectionFailed(err)
	}

	b := &Broker{cfg: cfg, conn: conn, js: js}
	if err := b.declareStream(); err != nil {
		conn.Close()
		return nil, err
	}

	return b, nil
}

func (b *Broker) declareStream() error {
	streamCfg := &nats.StreamConfig{
		Name:      b.cfg.StreamName,
		Subjects:  b.cfg.Subjects,
		Retention: nats.WorkQueuePolicy,
		Storage:   nats.FileStorage,
		MaxAge:    b.cfg.MaxAge,
		MaxMsgs:   b.cfg.MaxMsgs,
		MaxBytes:  b.cfg.MaxBytes,
	}

	_, err := b.js.AddStream(streamCfg)
	if err == nil {
		return nil
	}
	if err == nats.ErrStreamNameAlreadyInUse {
		logger.L().Info("jetstream stream already declared", "stream", b.cfg.StreamName)
		return nil
	}
	return messaging.ErrInvalidConfig("failed to declare jetstream stream", err)
}

func (b *Broker) Producer(topic string) (messaging.Producer, error) {
	return &producer{broker: b, subject: topic}, nil
}

func (b *Broker) Consumer(topic string, group string) (messaging.Consumer, error) {
	durable := b.cfg.ConsumerDurable
	if group != "" {
		durable = group
	}

	_, err := b.js.AddConsumer(b.cfg.StreamName, &nats.ConsumerConfig{
		Durable:       durable,
		AckPolicy:     nats.AckExplicitPolicy,
		AckWait:       b.cfg.AckWait,
		MaxDeliver:    b.cfg.MaxDeliver,
		FilterSubject: topic,
	})
	if err != nil && err != nats.ErrConsumerNameAlreadyInUse {
		return nil, messaging.ErrInvalidConfig("failed to declare jetstream consumer", err)
	}

	sub, err := b.js.PullSubscribe(topic, durable, nats.Bind(b.cfg.StreamName, durable))
	if err != nil {
		return nil, messaging.ErrConsumeFailed(err)
	}

	return &consumer{broker: b, sub: sub}, nil
}

func (b *Broker) Close() error {
	b.conn.Close()
	return nil
}

func (b *Broker) Healthy(ctx context.Context) bool {
	return b.conn.Status() == nats.CONNECTED
}

var _ messaging.Broker = (*Broker)(nil)
