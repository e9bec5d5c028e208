// Package inmemory provides a process-local storage.Driver.
package inmemory

import (
	"bytes"
	"context"
	"errors"
	"sync"

	"github.com/papercomputeco/bridge/pkg/storage"
)

// Driver implements storage.Driver using an in-memory map.
type Driver struct {
	// mu is a read write sync mutex for locking the mapping of records
	mu sync.RWMutex

	// records is the in memory map of records keyed by storage key
	records map[string]storage.Record
}

// NewDriver creates a new in-memory driver.
func NewDriver() *Driver {
	return &Driver{
		records: make(map[string]storage.Record),
	}
}

// Read returns copies of the records that exist for the given keys.
func (d *Driver) Read(_ context.Context, keys ...string) (map[string]*storage.Record, error) {
	d.mu.RLock()
	defer d.mu.RUnlock()

	result := make(map[string]*storage.Record, len(keys))
	for _, key := range keys {
		rec, ok := d.records[key]
		if !ok {
			continue
		}
		result[key] = &storage.Record{
			Key:      rec.Key,
			Document: bytes.Clone(rec.Document),
			ETag:     rec.ETag,
		}
	}

	return result, nil
}

// Write stores all records or none of them.
func (d *Driver) Write(_ context.Context, records ...*storage.Record) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	// Check every precondition before mutating anything
	for _, rec := range records {
		if rec == nil {
			return errors.New("cannot store nil record")
		}
		if rec.Key == "" {
			return errors.New("cannot store record with empty key")
		}
		if storage.Unconditional(rec.ETag) {
			continue
		}

		stored, exists := d.records[rec.Key]
		if storage.CreateOnly(rec.ETag) {
			if exists {
				return &storage.ConflictError{Key: rec.Key, Expected: rec.ETag, Current: stored.ETag}
			}
			continue
		}

		current := stored.ETag
		if current != rec.ETag {
			return &storage.ConflictError{Key: rec.Key, Expected: rec.ETag, Current: current}
		}
	}

	for _, rec := range records {
		etag := storage.NewETag()
		d.records[rec.Key] = storage.Record{
			Key:      rec.Key,
			Document: bytes.Clone(rec.Document),
			ETag:     etag,
		}
		rec.ETag = etag
	}

	return nil
}

// Delete removes the given keys.
func (d *Driver) Delete(_ context.Context, keys ...string) error {
	d.mu.Lock()
	defer d.mu.Unlock()

	for _, key := range keys {
		delete(d.records, key)
	}
	return nil
}

// Count returns the number of records in the in-memory store.
func (d *Driver) Count() int {
	d.mu.RLock()
	defer d.mu.RUnlock()
	return len(d.records)
}

// Close is a no-op for the in-memory driver.
func (d *Driver) Close() error {
	return nil
}

var _ storage.Driver = (*Driver)(nil)
