// Package kafka provides a Kafka-backed Broker, selectable as an
// alternate MESSAGING_DRIVER for operators who run Kafka instead of NATS.
// It implements the same messaging.Broker contract as the nats adapter,
// though Kafka's retention model is log-based rather than work-queue, so
// operators choosing this driver accept at-least-once redelivery governed
// by consumer group offsets rather than per-message ack/nak/term.
package kafka

import "time"

// Config configures the Kafka broker.
type Config struct {
	Brokers []string `env:"QUEUE_KAFKA_BROKERS" env-default:"localhost:9092"`

	ConsumerGroup string        `env:"QUEUE_CONSUMER_NAME" env-default:"event-processor"`
	FetchTimeout  time.Duration `env:"QUEUE_FETCH_TIMEOUT" env-default:"1s"`
}
