// Package dedup implements the dedup cache client (component A): a
// TTL-backed seen/unseen hint in front of the store's uniqueness
// constraint, which remains the authority.
package dedup

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/nova-metrics/eventpipe/pkg/cache"
	apperrors "github.com/nova-metrics/eventpipe/pkg/errors"
)

const keyPrefix = "event:seen:"

// Client checks and marks event identifiers as seen.
type Client struct {
	cache cache.Cache
	ttl   time.Duration
}

// New wraps a cache with the configured idempotency TTL.
func New(c cache.Cache, ttl time.Duration) *Client {
	return &Client{cache: c, ttl: ttl}
}

func key(id uuid.UUID) string {
	return fmt.Sprintf("%s%s", keyPrefix, id)
}

// CheckBatch partitions ids into new and duplicate, preserving no
// particular order. May false-negative (report "new" for an id already
// in the durable store); must never false-positive.
func (c *Client) CheckBatch(ctx context.Context, ids []uuid.UUID) (newIDs, duplicateIDs []uuid.UUID, err error) {
	newIDs = make([]uuid.UUID, 0, len(ids))
	duplicateIDs = make([]uuid.UUID, 0, len(ids))

	for _, id := range ids {
		dup, err := c.IsDuplicate(ctx, id)
		if err != nil {
			return nil, nil, err
		}
		if dup {
			duplicateIDs = append(duplicateIDs, id)
		} else {
			newIDs = append(newIDs, id)
		}
	}
	return newIDs, duplicateIDs, nil
}

// IsDuplicate reports whether id has already been marked seen.
func (c *Client) IsDuplicate(ctx context.Context, id uuid.UUID) (bool, error) {
	var marker string
	err := c.cache.Get(ctx, key(id), &marker)
	if apperrors.Is(err, apperrors.CodeNotFound) {
		return false, nil
	}
	if err != nil {
		return false, err
	}
	return true, nil
}

// MarkBatchSeen marks every id seen with the configured TTL. A race
// where a second writer finds the key already present is not an
// error; the post-condition (the key exists) is what matters.
func (c *Client) MarkBatchSeen(ctx context.Context, ids []uuid.UUID) error {
	for _, id := range ids {
		if err := c.MarkSeen(ctx, id); err != nil {
			return err
		}
	}
	return nil
}

// MarkSeen marks a single id seen.
func (c *Client) MarkSeen(ctx context.Context, id uuid.UUID) error {
	return c.cache.Set(ctx, key(id), "1", c.ttl)
}
