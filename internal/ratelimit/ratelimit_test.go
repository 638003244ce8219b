package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nova-metrics/eventpipe/internal/ratelimit"
	"github.com/nova-metrics/eventpipe/pkg/cache/adapters/memory"
)

func TestAllow_WithinLimit(t *testing.T) {
	l := ratelimit.New(memory.New(), ratelimit.Config{Enabled: true, MaxRequests: 2, Window: time.Minute})
	ctx := context.Background()

	res, err := l.Allow(ctx, "client-a")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = l.Allow(ctx, "client-a")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = l.Allow(ctx, "client-a")
	require.NoError(t, err)
	assert.False(t, res.Allowed)
}

func TestAllow_Disabled(t *testing.T) {
	l := ratelimit.New(memory.New(), ratelimit.Config{Enabled: false, MaxRequests: 1, Window: time.Minute})
	res, err := l.Allow(context.Background(), "client-a")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
	assert.Equal(t, int64(1), res.Remaining)
}

func TestAllow_PerClientIsolation(t *testing.T) {
	l := ratelimit.New(memory.New(), ratelimit.Config{Enabled: true, MaxRequests: 1, Window: time.Minute})
	ctx := context.Background()

	res, err := l.Allow(ctx, "client-a")
	require.NoError(t, err)
	assert.True(t, res.Allowed)

	res, err = l.Allow(ctx, "client-b")
	require.NoError(t, err)
	assert.True(t, res.Allowed)
}
