package kafka

import (
	"context"

	"github.com/IBM/sarama"
	"github.com/nova-metrics/eventpipe/pkg/messaging"
)

// Broker owns the Kafka client shared by every producer/consumer it creates.
type Broker struct {
	cfg    Config
	client sarama.Client
}

// New dials the configured brokers.
func New(cfg Config) (*Broker, error) {
	saramaCfg := sarama.NewConfig()
	saramaCfg.Producer.Return.Successes = true
	saramaCfg.Consumer.Offsets.Initial = sarama.OffsetOldest

	client, err := sarama.NewClient(cfg.Brokers, saramaCfg)
	if err != nil {
		return nil, messaging.ErrConnectionFailed(err)
	}

	return &Broker{cfg: cfg, client: client}, nil
}

func (b *Broker) Producer(topic string) (messaging.Producer, error) {
	syncProducer, err := sarama.NewSyncProducerFromClient(b.client)
	if err != nil {
		return nil, messaging.ErrConnectionFailed(err)
	}
	return &producer{broker: b, topic: topic, producer: syncProducer}, nil
}

func (b *Broker) Consumer(topic string, group string) (messaging.Consumer, error) {
	if group == "" {
		group = b.cfg.ConsumerGroup
	}
	grp, err := sarama.NewConsumerGroupFromClient(group, b.client)
	if err != nil {
		return nil, messaging.ErrConnectionFailed(err)
	}
	return &consumer{broker: b, topic: topic, group: grp}, nil
}

func (b *Broker) Close() error {
	return b.client.Close()
}

func (b *Broker) Healthy(ctx context.Context) bool {
	return !b.client.Closed()
}

var _ messaging.Broker = (*Broker)(nil)
