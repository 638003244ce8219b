package platform

import (
	"github.com/nova-metrics/eventpipe/pkg/database"
	"github.com/nova-metrics/eventpipe/pkg/database/sql"
	"github.com/nova-metrics/eventpipe/pkg/database/sql/adapters/postgres"
	"github.com/nova-metrics/eventpipe/pkg/database/sql/adapters/sqlite"
	apperrors "github.com/nova-metrics/eventpipe/pkg/errors"
)

// NewDB constructs the configured driver's relational connection,
// wrapped so that shard-resolution failures and Close are logged.
func NewDB(cfg sql.Config) (sql.SQL, error) {
	switch cfg.Driver {
	case "postgres", "":
		db, err := postgres.New(cfg)
		if err != nil {
			return nil, err
		}
		return instrumentedSQL{database.NewInstrumentedManager(db)}, nil
	case "sqlite":
		db, err := sqlite.New(cfg)
		if err != nil {
			return nil, err
		}
		return instrumentedSQL{database.NewInstrumentedManager(db)}, nil
	default:
		return nil, apperrors.InvalidArgument("unknown store driver: "+cfg.Driver, nil)
	}
}

// instrumentedSQL adapts database.InstrumentedManager's method set back
// onto the sql.SQL contract the store package depends on.
type instrumentedSQL struct {
	*database.InstrumentedManager
}

var _ sql.SQL = instrumentedSQL{}
