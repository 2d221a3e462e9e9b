// Package db selects and opens the configured account store.
package db

import (
	"context"
	"fmt"
	"strings"

	"github.com/cinefind/moviesearch/internal/core/ports"
	"github.com/cinefind/moviesearch/internal/infrastructure/config"
	"github.com/cinefind/moviesearch/internal/infrastructure/db/mongo"
	"github.com/cinefind/moviesearch/internal/infrastructure/db/postgres"
	"github.com/cinefind/moviesearch/internal/infrastructure/db/sqlite"
)

const (
	DriverMongo    = "mongo"
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Store is a ports.Store that owns its connection.
type Store interface {
	ports.Store
	Close() error
}

// Open connects to the store named by cfg.Store.Driver. Schema migrations or
// index creation run before it returns.
func Open(ctx context.Context, cfg *config.Config) (Store, error) {
	switch driver := strings.ToLower(cfg.Store.Driver); driver {
	case DriverMongo:
		return mongo.Open(ctx, mongo.Config{URI: cfg.Mongo.URI, Database: cfg.Mongo.Database})
	case DriverPostgres:
		return postgres.Open(ctx, cfg.Postgres.DSN)
	case DriverSQLite:
		return sqlite.Open(cfg.SQLite.Path)
	default:
		return nil, fmt.Errorf("unknown store driver %q", driver)
	}
}

// NeedsHousekeeping reports whether stale reset tokens must be swept by the
// application. MongoDB expires them with a TTL index.
func NeedsHousekeeping(driver string) bool {
	return !strings.EqualFold(driver, DriverMongo)
}
