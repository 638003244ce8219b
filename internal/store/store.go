// Package store implements the durable event writer (component E):
// insert-on-conflict-do-nothing against the event_id uniqueness
// constraint, one transaction per batch.
package store

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/nova-metrics/eventpipe/internal/event"
	apperrors "github.com/nova-metrics/eventpipe/pkg/errors"
	"github.com/nova-metrics/eventpipe/pkg/logger"
)

// DB is the capability contract the store depends on (satisfied by
// pkg/database.DB and its instrumented/adapter wrappers).
type DB interface {
	Get(ctx context.Context) *gorm.DB
}

// Store is the durable event writer.
type Store struct {
	db DB
}

// New wraps a relational connection.
func New(db DB) *Store {
	return &Store{db: db}
}

// AutoMigrate creates the events table if it does not exist. The api,
// worker and import entrypoints call it at startup, and tests use it to
// stand up the sqlite schema.
func (s *Store) AutoMigrate(ctx context.Context) error {
	if err := s.db.Get(ctx).AutoMigrate(&eventRow{}); err != nil {
		return apperrors.Internal("failed to migrate events table", err)
	}
	return nil
}

// Insert writes events in a single transaction, one insert-on-conflict
// per event. Returns (inserted, duplicate) counts; any driver error
// rolls back the whole call.
func (s *Store) Insert(ctx context.Context, events []event.Event) (inserted int, duplicate int, err error) {
	if len(events) == 0 {
		return 0, 0, nil
	}

	txErr := s.db.Get(ctx).Transaction(func(tx *gorm.DB) error {
		for _, e := range events {
			row := rowFromEvent(e)
			result := tx.Clauses(clause.OnConflict{
				Columns:   []clause.Column{{Name: "event_id"}},
				DoNothing: true,
			}).Create(&row)
			if result.Error != nil {
				logger.L().ErrorContext(ctx, "failed to insert event", "event_id", e.EventID, "error", result.Error)
				return result.Error
			}
			if result.RowsAffected > 0 {
				inserted++
			} else {
				duplicate++
			}
		}
		return nil
	})
	if txErr != nil {
		return 0, 0, apperrors.Internal("failed to insert events", txErr)
	}

	logger.L().InfoContext(ctx, "events inserted", "inserted", inserted, "duplicate", duplicate, "total", len(events))
	return inserted, duplicate, nil
}

// Count returns the total number of stored events.
func (s *Store) Count(ctx context.Context) (int64, error) {
	var count int64
	if err := s.db.Get(ctx).Model(&eventRow{}).Count(&count).Error; err != nil {
		return 0, apperrors.Internal("failed to count events", err)
	}
	return count, nil
}
