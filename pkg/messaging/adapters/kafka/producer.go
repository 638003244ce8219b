package kafka

import (
	"context"
	"time"

	"github.com/IBM/sarama"
	"github.com/nova-metrics/eventpipe/pkg/messaging"
	"github.com/google/uuid"
)

// producer is a Kafka sync producer implementation.
type producer struct {
	broker   *Broker
	topic    string
	producer sarama.SyncProducer
}

func (p *producer) Publish(ctx context.Context, msg *messaging.Message) error {
	if msg.ID == "" {
		msg.ID = uuid.New().String()
	}
	if msg.Timestamp.IsZero() {
		msg.Timestamp = time.Now()
	}

	kafkaMsg := p.toKafkaMessage(msg)

	partition, offset, err := p.producer.SendMessage(kafkaMsg)
	if err != nil {
		return messaging.ErrPublishFailed(err)
	}

	msg.Metadata.Partition = partition
	msg.Metadata.Offset = offset
	return nil
}

// PublishBatch publishes sequentially, matching the per-event
// acknowledgment semantics the consumer side relies on.
func (p *producer) PublishBatch(ctx context.Context, msgs []*messaging.Message) error {
	for _, msg := range msgs {
		if err := p.Publish(ctx, msg); err != nil {
			return err
		}
	}
	return nil
}

func (p *producer) toKafkaMessage(msg *messaging.Message) *sarama.ProducerMessage {
	kafkaMsg := &sarama.ProducerMessage{
		Topic:     p.topic,
		Value:     sarama.ByteEncoder(msg.Payload),
		Timestamp: msg.Timestamp,
	}
	if len(msg.Key) > 0 {
		kafkaMsg.Key = sarama.ByteEncoder(msg.Key)
	}
	for k, v := range msg.Headers {
		kafkaMsg.Headers = append(kafkaMsg.Headers, sarama.RecordHeader{Key: []byte(k), Value: []byte(v)})
	}
	kafkaMsg.Headers = append(kafkaMsg.Headers, sarama.RecordHeader{Key: []byte("message-id"), Value: []byte(msg.ID)})
	return kafkaMsg
}

func (p *producer) Close() error {
	return p.producer.Close()
}
