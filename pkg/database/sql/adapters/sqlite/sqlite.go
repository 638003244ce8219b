package sqlite

import (
	"context"
	"fmt"

	"github.com/nova-metrics/eventpipe/pkg/database"
	"github.com/nova-metrics/eventpipe/pkg/database/sql"
	"github.com/nova-metrics/eventpipe/pkg/errors"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

// Adapter implements the sql.SQL interface for SQLite. It backs the
// package's test suites; production traffic uses the postgres adapter.
type Adapter struct {
	db *gorm.DB
}

// New opens a SQLite connection using GORM.
func New(cfg sql.Config) (sql.SQL, error) {
	if cfg.Driver != database.DriverSQLite {
		return nil, errors.New(errors.CodeInvalidArgument, fmt.Sprintf("invalid driver %s for sqlite adapter", cfg.Driver), nil)
	}

	path := cfg.Path
	if path == "" {
		path = "file::memory:?cache=shared"
	}

	db, err := gorm.Open(sqlite.Open(path), &gorm.Config{
		Logger: database.NewGORMLogger(),
	})
	if err != nil {
		return nil, errors.Wrap(err, "failed to open sqlite database")
	}

	// SQLite allows a single writer; keep the pool tight.
	sqlDB, err := db.DB()
	if err != nil {
		return nil, errors.Wrap(err, "failed to get sql.DB")
	}
	sqlDB.SetMaxOpenConns(1)

	return &Adapter{db: db}, nil
}

// Get returns the primary database connection.
func (a *Adapter) Get(ctx context.Context) *gorm.DB {
	return a.db.WithContext(ctx)
}

// GetShard ignores key and returns the primary connection.
func (a *Adapter) GetShard(ctx context.Context, key string) (*gorm.DB, error) {
	return a.db.WithContext(ctx), nil
}

// Close releases all database connections.
func (a *Adapter) Close() error {
	sqlDB, err := a.db.DB()
	if err != nil {
		return errors.Wrap(err, "failed to get underlying sql.DB")
	}
	return sqlDB.Close()
}
