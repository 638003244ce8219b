package dedup_test

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nova-metrics/eventpipe/internal/dedup"
	"github.com/nova-metrics/eventpipe/pkg/cache/adapters/memory"
)

func TestCheckBatch_PartitionsNewAndDuplicate(t *testing.T) {
	c := dedup.New(memory.New(), time.Hour)
	ctx := context.Background()

	seen := uuid.New()
	unseen := uuid.New()

	require.NoError(t, c.MarkSeen(ctx, seen))

	newIDs, dupIDs, err := c.CheckBatch(ctx, []uuid.UUID{seen, unseen})
	require.NoError(t, err)

	assert.ElementsMatch(t, []uuid.UUID{unseen}, newIDs)
	assert.ElementsMatch(t, []uuid.UUID{seen}, dupIDs)
}

func TestMarkBatchSeen_ThenIsDuplicate(t *testing.T) {
	c := dedup.New(memory.New(), time.Hour)
	ctx := context.Background()

	ids := []uuid.UUID{uuid.New(), uuid.New()}
	require.NoError(t, c.MarkBatchSeen(ctx, ids))

	for _, id := range ids {
		dup, err := c.IsDuplicate(ctx, id)
		require.NoError(t, err)
		assert.True(t, dup)
	}
}

func TestIsDuplicate_NeverSeenIsFalse(t *testing.T) {
	c := dedup.New(memory.New(), time.Hour)
	dup, err := c.IsDuplicate(context.Background(), uuid.New())
	require.NoError(t, err)
	assert.False(t, dup)
}
