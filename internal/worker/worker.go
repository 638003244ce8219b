// Package worker implements the async consumer (component D): pulls
// events off the durable queue and writes them through the idempotent
// store, one message at a time.
package worker

import (
	"context"
	"fmt"

	"github.com/nova-metrics/eventpipe/internal/event"
	"github.com/nova-metrics/eventpipe/pkg/logger"
	"github.com/nova-metrics/eventpipe/pkg/messaging"
)

// Store is the capability contract the worker writes through.
type Store interface {
	Insert(ctx context.Context, events []event.Event) (inserted int, duplicate int, err error)
}

// Metrics is the capability contract for worker-observed counters.
// A nil Metrics is valid; every method is a no-op in that case.
type Metrics interface {
	IncIngested(eventType string)
	IncDuplicate(n int)
	IncFailed(reason string)
}

// Worker consumes events.ingest messages and persists them.
type Worker struct {
	consumer messaging.Consumer
	store    Store
	metrics  Metrics
}

// New builds a Worker over an already-created Consumer.
func New(consumer messaging.Consumer, store Store, metrics Metrics) *Worker {
	return &Worker{consumer: consumer, store: store, metrics: metrics}
}

// Run blocks, processing messages until ctx is canceled. The consumer
// itself guarantees in-flight messages finish before an idle fetch loop
// observes cancellation, so Run does not need its own drain logic.
func (w *Worker) Run(ctx context.Context) error {
	logger.L().InfoContext(ctx, "worker started")
	err := w.consumer.Consume(ctx, w.handle)
	logger.L().InfoContext(ctx, "worker stopped")
	return err
}

// Close releases the underlying consumer.
func (w *Worker) Close() error {
	return w.consumer.Close()
}

func (w *Worker) handle(ctx context.Context, msg *messaging.Message) error {
	e, err := event.UnmarshalPayload(msg.Payload)
	if err != nil {
		logger.L().ErrorContext(ctx, "failed to decode event payload", "error", err)
		w.incFailed("decode_error")
		return fmt.Errorf("%w: %v", messaging.ErrPoison, err)
	}

	inserted, duplicate, err := w.store.Insert(ctx, []event.Event{e})
	if err != nil {
		logger.L().ErrorContext(ctx, "failed to store event", "event_id", e.EventID, "error", err)
		w.incFailed("processing_error")
		return err
	}

	switch {
	case inserted > 0:
		w.incIngested(e.EventType)
		logger.L().DebugContext(ctx, "event stored", "event_id", e.EventID)
	case duplicate > 0:
		w.incDuplicate()
		logger.L().DebugContext(ctx, "event was duplicate", "event_id", e.EventID)
	}
	return nil
}

func (w *Worker) incIngested(eventType string) {
	if w.metrics != nil {
		w.metrics.IncIngested(eventType)
	}
}

func (w *Worker) incDuplicate() {
	if w.metrics != nil {
		w.metrics.IncDuplicate(1)
	}
}

func (w *Worker) incFailed(reason string) {
	if w.metrics != nil {
		w.metrics.IncFailed(reason)
	}
}
