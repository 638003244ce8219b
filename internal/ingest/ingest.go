// Package ingest orchestrates the ingestion pipeline (component G):
// dedup-check, mark-seen, publish — the glue between the HTTP handler
// (which validates the batch first) and the rest of the pipeline's
// components.
package ingest

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/nova-metrics/eventpipe/internal/event"
	"github.com/nova-metrics/eventpipe/pkg/logger"
)

// Deduper is the capability contract for the dedup cache client.
type Deduper interface {
	CheckBatch(ctx context.Context, ids []uuid.UUID) (newIDs, duplicateIDs []uuid.UUID, err error)
	MarkBatchSeen(ctx context.Context, ids []uuid.UUID) error
}

// Publisher is the capability contract for the durable queue publisher.
type Publisher interface {
	PublishBatch(ctx context.Context, events []event.Event) error
}

// Metrics is the capability contract for ingest-observed counters. A
// nil Metrics is valid; every method is a no-op in that case.
type Metrics interface {
	IncReceived(eventType string)
	IncDuplicate(n int)
	IncFailed(reason string)
	ObserveIngestDuration(d time.Duration)
}

// Orchestrator wires dedup and publish into the spec's accept/reject
// decision for an ingested batch.
type Orchestrator struct {
	dedup   Deduper
	publish Publisher
	metrics Metrics
}

// New builds an Orchestrator.
func New(dedup Deduper, publish Publisher, metrics Metrics) *Orchestrator {
	return &Orchestrator{dedup: dedup, publish: publish, metrics: metrics}
}

// Ingest runs a validated batch through dedup-check, mark-seen, and
// publish, returning the per-batch outcome. The cache is marked seen
// before publish completes; a failure between those two steps leaves
// the duplicate marker in place even though the event was never
// durably queued. This trades a rare lost event for never double
// processing one, and is reported to the caller as Failed.
func (o *Orchestrator) Ingest(ctx context.Context, batch event.Batch) (event.IngestResult, error) {
	start := time.Now()

	ids := make([]uuid.UUID, len(batch.Events))
	for i, e := range batch.Events {
		ids[i] = e.EventID
		o.incReceived(e.EventType)
	}

	newIDs, duplicateIDs, err := o.dedup.CheckBatch(ctx, ids)
	if err != nil {
		return event.IngestResult{}, err
	}
	o.incDuplicate(len(duplicateIDs))

	if len(newIDs) == 0 {
		logger.L().InfoContext(ctx, "all events were duplicates", "total", len(batch.Events))
		return event.IngestResult{
			Accepted:   0,
			Duplicates: len(duplicateIDs),
			Failed:     0,
			Message:    "All events were duplicates",
		}, nil
	}

	newSet := make(map[uuid.UUID]struct{}, len(newIDs))
	for _, id := range newIDs {
		newSet[id] = struct{}{}
	}
	newEvents := make([]event.Event, 0, len(newIDs))
	for _, e := range batch.Events {
		if _, ok := newSet[e.EventID]; ok {
			newEvents = append(newEvents, e)
		}
	}

	if err := o.dedup.MarkBatchSeen(ctx, newIDs); err != nil {
		return event.IngestResult{}, err
	}

	if err := o.publish.PublishBatch(ctx, newEvents); err != nil {
		for range newEvents {
			o.incFailed("publish_error")
		}
		logger.L().ErrorContext(ctx, "failed to publish events after marking seen", "error", err)
		return event.IngestResult{
			Accepted:   0,
			Duplicates: len(duplicateIDs),
			Failed:     len(newEvents),
			Message:    "Failed to queue events for processing",
		}, nil
	}

	o.observeDuration(start)

	logger.L().InfoContext(ctx, "events accepted for processing",
		"accepted", len(newEvents), "duplicates", len(duplicateIDs), "duration_seconds", time.Since(start).Seconds())

	return event.IngestResult{
		Accepted:   len(newEvents),
		Duplicates: len(duplicateIDs),
		Failed:     0,
		Message:    "Accepted events for processing",
	}, nil
}

func (o *Orchestrator) incReceived(eventType string) {
	if o.metrics != nil {
		o.metrics.IncReceived(eventType)
	}
}

func (o *Orchestrator) incDuplicate(n int) {
	if o.metrics != nil && n > 0 {
		o.metrics.IncDuplicate(n)
	}
}

func (o *Orchestrator) incFailed(reason string) {
	if o.metrics != nil {
		o.metrics.IncFailed(reason)
	}
}

func (o *Orchestrator) observeDuration(start time.Time) {
	if o.metrics != nil {
		o.metrics.ObserveIngestDuration(time.Since(start))
	}
}
