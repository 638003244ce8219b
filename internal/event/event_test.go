package event_test

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nova-metrics/eventpipe/internal/event"
)

func TestMarshalUnmarshalPayload_RoundTrips(t *testing.T) {
	e := event.Event{
		EventID:    uuid.New(),
		UserID:     "user-1",
		EventType:  "click",
		OccurredAt: time.Now().Add(-time.Minute).UTC(),
		Properties: map[string]any{"page": "home"},
	}

	data, err := event.MarshalPayload(e)
	require.NoError(t, err)

	decoded, err := event.UnmarshalPayload(data)
	require.NoError(t, err)

	assert.Equal(t, e.EventID, decoded.EventID)
	assert.Equal(t, e.UserID, decoded.UserID)
	assert.Equal(t, e.EventType, decoded.EventType)
	assert.Equal(t, "home", decoded.Properties["page"])
}

func TestUnmarshalPayload_DefaultsEmptyProperties(t *testing.T) {
	decoded, err := event.UnmarshalPayload([]byte(`{"event_id":"` + uuid.New().String() + `","user_id":"u","event_type":"t","occurred_at":"2026-01-01T00:00:00Z"}`))
	require.NoError(t, err)
	assert.NotNil(t, decoded.Properties)
	assert.Empty(t, decoded.Properties)
}

func TestUnmarshalPayload_InvalidJSON(t *testing.T) {
	_, err := event.UnmarshalPayload([]byte(`not json`))
	assert.Error(t, err)
}
