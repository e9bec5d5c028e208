// Package entdriver implements storage.Driver on top of the generated ent
// client. It is database-agnostic and is embedded by the sqlite and postgres
// drivers.
package entdriver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	entsql "entgo.io/ent/dialect/sql"

	"github.com/papercomputeco/bridge/pkg/storage"
	"github.com/papercomputeco/bridge/pkg/storage/ent"
	"github.com/papercomputeco/bridge/pkg/storage/ent/record"
)

// EntDriver provides storage operations using an ent client.
type EntDriver struct {
	Client *ent.Client
}

// New wraps an open database handle for the given ent dialect
// (dialect.SQLite or dialect.Postgres) and migrates the records table.
func New(ctx context.Context, dialectName string, db *sql.DB) (*EntDriver, error) {
	client := ent.NewClient(ent.Driver(entsql.OpenDB(dialectName, db)))

	if err := client.Schema.Create(ctx); err != nil {
		return nil, fmt.Errorf("failed to create schema: %w", err)
	}

	return &EntDriver{Client: client}, nil
}

// Read returns the records that exist for the given keys.
func (ed *EntDriver) Read(ctx context.Context, keys ...string) (map[string]*storage.Record, error) {
	result := make(map[string]*storage.Record, len(keys))
	if len(keys) == 0 {
		return result, nil
	}

	rows, err := ed.Client.Record.Query().
		Where(record.IDIn(keys...)).
		All(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to query records: %w", err)
	}

	for _, row := range rows {
		result[row.ID] = &storage.Record{
			Key:      row.ID,
			Document: []byte(row.Document),
			ETag:     row.Etag,
		}
	}

	return result, nil
}

// Write stores all records in a single transaction.
func (ed *EntDriver) Write(ctx context.Context, records ...*storage.Record) error {
	for _, rec := range records {
		if rec == nil {
			return errors.New("cannot store nil record")
		}
		if rec.Key == "" {
			return errors.New("cannot store record with empty key")
		}
	}

	tx, err := ed.Client.Tx(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}

	etags := make([]string, len(records))
	now := time.Now().UTC()

	for i, rec := range records {
		etags[i] = storage.NewETag()

		switch {
		case storage.Unconditional(rec.ETag):
			err = upsert(ctx, tx, rec, etags[i], now)
		case storage.CreateOnly(rec.ETag):
			err = create(ctx, tx, rec, etags[i], now)
		default:
			err = replace(ctx, tx, rec, etags[i], now)
		}
		if err != nil {
			_ = tx.Rollback()
			return err
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit records: %w", err)
	}

	for i, rec := range records {
		rec.ETag = etags[i]
	}

	return nil
}

// upsert overwrites a record regardless of its stored ETag, inserting it
// when the key is new.
func upsert(ctx context.Context, tx *ent.Tx, rec *storage.Record, etag string, now time.Time) error {
	n, err := tx.Record.Update().
		Where(record.ID(rec.Key)).
		SetDocument(string(rec.Document)).
		SetEtag(etag).
		SetUpdatedAt(now).
		Save(ctx)
	if err != nil {
		return fmt.Errorf("failed to update record %s: %w", rec.Key, err)
	}
	if n > 0 {
		return nil
	}

	return insert(ctx, tx, rec, etag, now)
}

// create inserts a record that must not exist yet.
func create(ctx context.Context, tx *ent.Tx, rec *storage.Record, etag string, now time.Time) error {
	// A failed INSERT aborts a postgres transaction, so look first.
	current, err := currentETag(ctx, tx, rec.Key)
	if err != nil {
		return err
	}
	if current != "" {
		return &storage.ConflictError{Key: rec.Key, Expected: rec.ETag, Current: current}
	}

	return insert(ctx, tx, rec, etag, now)
}

// insert adds a new row. Losing a race to another writer for the same key
// surfaces as a ConflictError.
func insert(ctx context.Context, tx *ent.Tx, rec *storage.Record, etag string, now time.Time) error {
	err := tx.Record.Create().
		SetID(rec.Key).
		SetDocument(string(rec.Document)).
		SetEtag(etag).
		SetUpdatedAt(now).
		Exec(ctx)
	if ent.IsConstraintError(err) {
		return &storage.ConflictError{Key: rec.Key, Expected: rec.ETag}
	}
	if err != nil {
		return fmt.Errorf("failed to insert record %s: %w", rec.Key, err)
	}

	return nil
}

// replace overwrites a record only if its stored ETag matches rec.ETag.
func replace(ctx context.Context, tx *ent.Tx, rec *storage.Record, etag string, now time.Time) error {
	n, err := tx.Record.Update().
		Where(record.ID(rec.Key), record.Etag(rec.ETag)).
		SetDocument(string(rec.Document)).
		SetEtag(etag).
		SetUpdatedAt(now).
		Save(ctx)
	if err != nil {
		return fmt.Errorf("failed to update record %s: %w", rec.Key, err)
	}
	if n > 0 {
		return nil
	}

	current, err := currentETag(ctx, tx, rec.Key)
	if err != nil {
		return err
	}

	return &storage.ConflictError{Key: rec.Key, Expected: rec.ETag, Current: current}
}

// currentETag returns the stored ETag for key, or "" if there is no such record.
func currentETag(ctx context.Context, tx *ent.Tx, key string) (string, error) {
	row, err := tx.Record.Get(ctx, key)
	if ent.IsNotFound(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to query etag: %w", err)
	}

	return row.Etag, nil
}

// Delete removes the given keys.
func (ed *EntDriver) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	if _, err := ed.Client.Record.Delete().Where(record.IDIn(keys...)).Exec(ctx); err != nil {
		return fmt.Errorf("failed to delete records: %w", err)
	}

	return nil
}

// Close closes the underlying database.
func (ed *EntDriver) Close() error {
	return ed.Client.Close()
}

var _ storage.Driver = (*EntDriver)(nil)
