package platform

import (
	"time"

	"github.com/nova-metrics/eventpipe/pkg/cache"
	"github.com/nova-metrics/eventpipe/pkg/cache/adapters/memory"
	"github.com/nova-metrics/eventpipe/pkg/cache/adapters/redis"
	apperrors "github.com/nova-metrics/eventpipe/pkg/errors"
)

// NewCache constructs the configured driver's Cache. The redis driver
// is wrapped with circuit-breaker/retry resilience and tracing; the
// memory driver is returned unwrapped.
func NewCache(cfg cache.Config) (cache.Cache, error) {
	switch cfg.Driver {
	case "redis", "":
		c, err := redis.New(cfg)
		if err != nil {
			return nil, err
		}
		resilient := cache.NewResilientCache(c, cache.ResilientConfig{
			CircuitBreakerEnabled:   true,
			CircuitBreakerThreshold: 5,
			CircuitBreakerTimeout:   30 * time.Second,
			RetryEnabled:            true,
			RetryMaxAttempts:        2,
			RetryBackoff:            50 * time.Millisecond,
		})
		return cache.NewInstrumentedCache(resilient), nil
	case "memory":
		return memory.New(), nil
	default:
		return nil, apperrors.InvalidArgument("unknown cache driver: "+cfg.Driver, nil)
	}
}
