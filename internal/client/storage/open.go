package storage

import (
	"context"
	"fmt"

	"github.com/atinyakov/jobboard/internal/config"
)

// Open returns the Store selected by the configuration.
func Open(ctx context.Context, o *config.Options) (Store, error) {
	switch o.Storage {
	case config.StorageFile:
		return NewFileStore(o.StoragePath)
	case config.StorageSQLite:
		dsn := o.StorageDSN
		if dsn == "" {
			dsn = "session.db"
		}
		return OpenSQL(ctx, DriverSQLite, dsn)
	case config.StoragePostgres:
		return OpenSQL(ctx, DriverPostgres, o.StorageDSN)
	case config.StorageRedis:
		return OpenRedis(ctx, o.RedisAddr, o.RedisPassword)
	default:
		return nil, fmt.Errorf("unknown storage backend %q", o.Storage)
	}
}
