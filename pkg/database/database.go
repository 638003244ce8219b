// Package database defines the capability contract for the system's
// relational store and a logger adapter shared by every sql driver.
package database

import (
	"context"
	"log/slog"
	"time"

	"github.com/nova-metrics/eventpipe/pkg/logger"
	"gorm.io/gorm"
	gormlogger "gorm.io/gorm/logger"
)

// Supported sql driver names.
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DB is the capability contract a relational store adapter implements.
type DB interface {
	// Get returns the connection scoped to ctx.
	Get(ctx context.Context) *gorm.DB

	// GetShard returns the connection for the given shard key. Single-node
	// adapters ignore the key and return the primary connection.
	GetShard(ctx context.Context, key string) (*gorm.DB, error)

	// Close releases the underlying connection pool.
	Close() error
}

// NewGORMLogger adapts GORM's query logging onto the shared slog logger.
func NewGORMLogger() gormlogger.Interface {
	return &gormLogAdapter{level: gormlogger.Warn}
}

type gormLogAdapter struct {
	level gormlogger.LogLevel
}

func (a *gormLogAdapter) LogMode(level gormlogger.LogLevel) gormlogger.Interface {
	cloned := *a
	cloned.level = level
	return &cloned
}

func (a *gormLogAdapter) Info(ctx context.Context, msg string, args ...interface{}) {
	if a.level >= gormlogger.Info {
		logger.L().InfoContext(ctx, msg, "args", args)
	}
}

func (a *gormLogAdapter) Warn(ctx context.Context, msg string, args ...interface{}) {
	if a.level >= gormlogger.Warn {
		logger.L().WarnContext(ctx, msg, "args", args)
	}
}

func (a *gormLogAdapter) Error(ctx context.Context, msg string, args ...interface{}) {
	if a.level >= gormlogger.Error {
		logger.L().ErrorContext(ctx, msg, "args", args)
	}
}

func (a *gormLogAdapter) Trace(ctx context.Context, begin time.Time, fc func() (string, int64), err error) {
	if a.level <= gormlogger.Silent {
		return
	}
	sql, rows := fc()
	elapsed := time.Since(begin)

	attrs := []any{"sql", sql, "rows", rows, "elapsed", elapsed}
	if err != nil {
		logger.L().Log(ctx, slog.LevelError, "gorm query failed", append(attrs, "error", err)...)
		return
	}
	if a.level >= gormlogger.Info {
		logger.L().Log(ctx, slog.LevelDebug, "gorm query", attrs...)
	}
}
