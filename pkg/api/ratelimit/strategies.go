package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/nova-metrics/eventpipe/pkg/cache"
)

type Strategy string

const (
	StrategyFixedWindow Strategy = "fixed_window"
)

// Result from a rate limit check
type Result struct {
	Allowed   bool
	Remaining int64
	Reset     time.Duration
}

// Limiter defines the interface for different strategies
type Limiter interface {
	// Allow checks if the request is allowed
	Allow(ctx context.Context, key string, limit int64, period time.Duration) (*Result, error)
}

// New creates a limiter for the given strategy.
func New(c cache.Cache, strategy Strategy) Limiter {
	return &FixedWindowLimiter{cache: c}
}

// =========================================================================
// Fixed Window Rate Limiter
// =========================================================================
// Simple time-bucketed counter. Resets at the start of each window.
// Pros: Simple, low memory
// Cons: Burst at window boundaries (2x traffic possible)

type FixedWindowLimiter struct {
	cache cache.Cache
}

func (l *FixedWindowLimiter) Allow(ctx context.Context, key string, limit int64, period time.Duration) (*Result, error) {
	window := time.Now().Truncate(period).Unix()
	cacheKey := fmt.Sprintf("rate_limit:%s:%d", key, window)

	curr, err := l.cache.Incr(ctx, cacheKey, 1)
	if err != nil {
		return nil, err
	}

	if curr == 1 {
		_ = l.cache.Set(ctx, cacheKey, int64(1), period)
	}

	remaining := limit - curr
	if remaining < 0 {
		remaining = 0
	}

	resetSeconds := period.Seconds() - float64(time.Now().Unix()%int64(period.Seconds()))

	return &Result{
		Allowed:   curr <= limit,
		Remaining: remaining,
		Reset:     time.Duration(resetSeconds) * time.Second,
	}, nil
}
