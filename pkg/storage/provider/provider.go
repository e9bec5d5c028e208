// Package provider opens the storage.Driver selected by configuration.
package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/papercomputeco/bridge/pkg/storage"
	"github.com/papercomputeco/bridge/pkg/storage/inmemory"
	"github.com/papercomputeco/bridge/pkg/storage/postgres"
	"github.com/papercomputeco/bridge/pkg/storage/sqlite"
)

// Provider names.
const (
	Memory   = "memory"
	SQLite   = "sqlite"
	Postgres = "postgres"
)

// Options selects and configures a storage backend.
type Options struct {
	Provider    string
	SQLitePath  string
	PostgresDSN string
}

// Open returns the driver for opts.Provider. An empty provider selects
// in-memory storage.
func Open(ctx context.Context, opts Options) (storage.Driver, error) {
	switch opts.Provider {
	case "", Memory:
		return inmemory.NewDriver(), nil

	case SQLite:
		if opts.SQLitePath == "" {
			return nil, errors.New("sqlite storage requires a database path")
		}
		driver, err := sqlite.NewDriver(ctx, opts.SQLitePath)
		if err != nil {
			return nil, fmt.Errorf("failed to create SQLite driver: %w", err)
		}
		return driver, nil

	case Postgres:
		if opts.PostgresDSN == "" {
			return nil, errors.New("postgres storage requires a connection string")
		}
		driver, err := postgres.NewDriver(ctx, opts.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("failed to create PostgreSQL driver: %w", err)
		}
		return driver, nil

	default:
		return nil, fmt.Errorf("unknown storage provider %q", opts.Provider)
	}
}
