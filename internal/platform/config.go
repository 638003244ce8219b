// Package platform assembles the shared library's building blocks
// (config loading, structured logging, tracing, error classification)
// into this service's concrete configuration and cross-cutting
// adapters.
package platform

import (
	"time"

	"github.com/nova-metrics/eventpipe/internal/queue"
	"github.com/nova-metrics/eventpipe/internal/ratelimit"
	"github.com/nova-metrics/eventpipe/pkg/cache"
	"github.com/nova-metrics/eventpipe/pkg/config"
	sqlconf "github.com/nova-metrics/eventpipe/pkg/database/sql"
	"github.com/nova-metrics/eventpipe/pkg/logger"
	"github.com/nova-metrics/eventpipe/pkg/telemetry"
)

// Config aggregates every component's configuration into the one
// struct each cmd/ entrypoint loads from the environment.
type Config struct {
	HTTPPort int `env:"HTTP_PORT" env-default:"8080"`

	Log       logger.Config
	Telemetry telemetry.Config

	Store     sqlconf.Config
	Cache     cache.Config
	Queue     queue.Config
	RateLimit ratelimit.Config

	DedupTTL time.Duration `env:"DEDUP_TTL" env-default:"24h"`
}

// Load reads Config from the environment, applying every field's
// env-default and validating the result.
func Load() (Config, error) {
	var cfg Config
	if err := config.Load(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
