package store

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/nova-metrics/eventpipe/internal/event"
)

// eventRow is the GORM mapping for the events table described in spec §6:
// events(id BIGSERIAL PK, event_id UUID UNIQUE, user_id TEXT, event_type
// TEXT, occurred_at TIMESTAMPTZ, properties JSON, created_at TIMESTAMPTZ).
type eventRow struct {
	ID         int64          `gorm:"column:id;primaryKey;autoIncrement"`
	EventID    uuid.UUID      `gorm:"column:event_id;uniqueIndex;type:uuid"`
	UserID     string         `gorm:"column:user_id"`
	EventType  string         `gorm:"column:event_type;index"`
	OccurredAt time.Time      `gorm:"column:occurred_at;index"`
	Properties propertiesJSON `gorm:"column:properties;type:json"`
	CreatedAt  time.Time      `gorm:"column:created_at;autoCreateTime"`
}

func (eventRow) TableName() string { return "events" }

func rowFromEvent(e event.Event) eventRow {
	props := e.Properties
	if props == nil {
		props = map[string]any{}
	}
	return eventRow{
		EventID:    e.EventID,
		UserID:     e.UserID,
		EventType:  e.EventType,
		OccurredAt: e.OccurredAt,
		Properties: propertiesJSON(props),
	}
}

func (r eventRow) toStored() event.StoredEvent {
	return event.StoredEvent{
		ID:         r.ID,
		EventID:    r.EventID,
		UserID:     r.UserID,
		EventType:  r.EventType,
		OccurredAt: r.OccurredAt,
		Properties: map[string]any(r.Properties),
		CreatedAt:  r.CreatedAt,
	}
}

// propertiesJSON adapts a free-form property map onto a JSON column.
type propertiesJSON map[string]any

func (p propertiesJSON) Value() (driver.Value, error) {
	if p == nil {
		return "{}", nil
	}
	b, err := json.Marshal(map[string]any(p))
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func (p *propertiesJSON) Scan(value any) error {
	if value == nil {
		*p = propertiesJSON{}
		return nil
	}
	var raw []byte
	switch v := value.(type) {
	case []byte:
		raw = v
	case string:
		raw = []byte(v)
	default:
		return errors.New("propertiesJSON: unsupported scan type")
	}
	if len(raw) == 0 {
		*p = propertiesJSON{}
		return nil
	}
	var m map[string]any
	if err := json.Unmarshal(raw, &m); err != nil {
		return err
	}
	*p = propertiesJSON(m)
	return nil
}
