// Package event defines the event and batch types shared by the ingest
// handler, the queue producer/consumer, and the event store.
package event

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
)

// Event is an immutable user-activity record. EventID is the dedup key
// and is enforced unique by the store.
type Event struct {
	EventID    uuid.UUID      `json:"event_id" validate:"required"`
	UserID     string         `json:"user_id" validate:"required,min=1,max=255"`
	EventType  string         `json:"event_type" validate:"required,min=1,max=100"`
	OccurredAt time.Time      `json:"occurred_at" validate:"required,not_future"`
	Properties map[string]any `json:"properties"`
}

// Batch is an ordered list of 1-1000 events submitted atomically over
// HTTP. Order is not preserved downstream.
type Batch struct {
	Events []Event `json:"events" validate:"required,min=1,max=1000,dive"`
}

// StoredEvent is an Event as persisted, with the store-assigned identity.
type StoredEvent struct {
	ID         int64          `json:"id"`
	EventID    uuid.UUID      `json:"event_id"`
	UserID     string         `json:"user_id"`
	EventType  string         `json:"event_type"`
	OccurredAt time.Time      `json:"occurred_at"`
	Properties map[string]any `json:"properties"`
	CreatedAt  time.Time      `json:"created_at"`
}

// IngestResult reports the outcome of a batch submission.
type IngestResult struct {
	Accepted   int    `json:"accepted"`
	Duplicates int    `json:"duplicates"`
	Failed     int    `json:"failed"`
	Message    string `json:"message"`
}

// MarshalPayload encodes an event for transport on the queue.
func MarshalPayload(e Event) ([]byte, error) {
	return json.Marshal(e)
}

// UnmarshalPayload decodes a queued event payload.
func UnmarshalPayload(data []byte) (Event, error) {
	var e Event
	if err := json.Unmarshal(data, &e); err != nil {
		return Event{}, err
	}
	if e.Properties == nil {
		e.Properties = map[string]any{}
	}
	return e, nil
}
