// Package postgres stores bridge records in PostgreSQL through the pgx
// database/sql driver.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"entgo.io/ent/dialect"
	_ "github.com/jackc/pgx/v5/stdlib"

	entdriver "github.com/papercomputeco/bridge/pkg/storage/ent/driver"
)

const (
	maxOpenConns    = 10
	maxIdleConns    = 5
	connMaxIdleTime = 5 * time.Minute
)

// Driver is a storage.Driver backed by a records table in PostgreSQL.
type Driver struct {
	*entdriver.EntDriver
}

// NewDriver connects to dsn, either key=value pairs or a postgres:// URI,
// and creates the records table when it is missing.
func NewDriver(ctx context.Context, dsn string) (*Driver, error) {
	db, err := sql.Open("pgx", dsn)
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}
	db.SetMaxOpenConns(maxOpenConns)
	db.SetMaxIdleConns(maxIdleConns)
	db.SetConnMaxIdleTime(connMaxIdleTime)

	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to reach postgres: %w", err)
	}

	ed, err := entdriver.New(ctx, dialect.Postgres, db)
	if err != nil {
		db.Close()
		return nil, err
	}
	return &Driver{EntDriver: ed}, nil
}
