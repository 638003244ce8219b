// Package sql defines the connection contract shared by every relational
// store adapter (pkg/database/sql/adapters/*).
package sql

import (
	"context"
	"time"

	"gorm.io/gorm"
)

// Config holds connection parameters common to all sql adapters.
type Config struct {
	Driver string `env:"STORE_DRIVER" env-default:"postgres"`

	Host     string `env:"STORE_HOST" env-default:"localhost"`
	Port     string `env:"STORE_PORT" env-default:"5432"`
	User     string `env:"STORE_USER" env-default:"postgres"`
	Password string `env:"STORE_PASSWORD" env-default:""`
	Name     string `env:"STORE_NAME" env-default:"eventpipe"`
	SSLMode  string `env:"STORE_SSLMODE" env-default:"disable"`

	// Path is used by file-backed adapters (sqlite) instead of Host/Port/etc.
	Path string `env:"STORE_PATH" env-default:"file::memory:?cache=shared"`

	MaxIdleConns    int           `env:"STORE_MAX_IDLE_CONNS" env-default:"20"`
	MaxOpenConns    int           `env:"STORE_MAX_OPEN_CONNS" env-default:"30"`
	ConnMaxLifetime time.Duration `env:"STORE_CONN_MAX_LIFETIME" env-default:"30m"`
}

// SQL is the capability contract implemented by every relational adapter.
type SQL interface {
	// Get returns the connection scoped to ctx.
	Get(ctx context.Context) *gorm.DB

	// GetShard returns the connection for the given shard key.
	GetShard(ctx context.Context, key string) (*gorm.DB, error)

	// Close releases the underlying connection pool.
	Close() error
}
