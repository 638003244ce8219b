// Package ratelimit implements component B: a fixed-window request
// counter keyed by client identifier, backed by pkg/api/ratelimit.
package ratelimit

import (
	"context"
	"time"

	"github.com/nova-metrics/eventpipe/pkg/api/ratelimit"
	"github.com/nova-metrics/eventpipe/pkg/cache"
)

// Config controls the limiter's behavior. When Enabled is false, every
// call is allowed and reports MaxRequests remaining.
type Config struct {
	Enabled     bool          `env:"RATE_LIMIT_ENABLED" env-default:"true"`
	MaxRequests int64         `env:"RATE_LIMIT_REQUESTS" env-default:"1000"`
	Window      time.Duration `env:"RATE_LIMIT_WINDOW" env-default:"60s"`
}

// Result mirrors pkg/api/ratelimit.Result for callers that should not
// depend on that package directly.
type Result struct {
	Allowed   bool
	Remaining int64
	Reset     time.Duration
}

// Limiter enforces Config against a cache-backed counter.
type Limiter struct {
	cfg     Config
	limiter ratelimit.Limiter
}

// New builds a Limiter over the given cache.
func New(c cache.Cache, cfg Config) *Limiter {
	return &Limiter{cfg: cfg, limiter: ratelimit.New(c, ratelimit.StrategyFixedWindow)}
}

// Allow checks and counts one request for client.
func (l *Limiter) Allow(ctx context.Context, client string) (Result, error) {
	if !l.cfg.Enabled {
		return Result{Allowed: true, Remaining: l.cfg.MaxRequests}, nil
	}

	res, err := l.limiter.Allow(ctx, client, l.cfg.MaxRequests, l.cfg.Window)
	if err != nil {
		return Result{}, err
	}
	return Result{Allowed: res.Allowed, Remaining: res.Remaining, Reset: res.Reset}, nil
}
