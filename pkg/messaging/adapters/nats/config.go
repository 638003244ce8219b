// Package nats provides a JetStream-backed Broker implementing a durable,
// at-least-once work queue: a single stream with work-queue retention,
// file storage, and one pull-based durable consumer per subject/group.
package nats

import "time"

// Config configures the JetStream broker and the stream it declares.
type Config struct {
	URL string `env:"QUEUE_URL" env-default:"nats://localhost:4222"`

	StreamName string   `env:"QUEUE_STREAM_NAME" env-default:"EVENTS"`
	Subjects   []string `env:"QUEUE_SUBJECTS" env-default:"events.ingest"`

	MaxAge   time.Duration `env:"QUEUE_MAX_AGE" env-default:"168h"`
	MaxMsgs  int64         `env:"QUEUE_MAX_MSGS" env-default:"1000000"`
	MaxBytes int64         `env:"QUEUE_MAX_BYTES" env-default:"1073741824"`

	ConsumerDurable string        `env:"QUEUE_CONSUMER_NAME" env-default:"event-processor"`
	AckWait         time.Duration `env:"QUEUE_ACK_WAIT" env-default:"30s"`
	MaxDeliver      int           `env:"QUEUE_MAX_DELIVER" env-default:"3"`

	FetchBatch   int           `env:"QUEUE_FETCH_BATCH" env-default:"10"`
	FetchTimeout time.Duration `env:"QUEUE_FETCH_TIMEOUT" env-default:"1s"`

	NakDelay time.Duration `env:"QUEUE_NAK_DELAY" env-default:"5s"`
}
