// Package storage defines the durable key-value contract used for bot state.
//
// Records are JSON documents addressed by a string key. Every stored record
// carries an opaque ETag that changes on each write; writers that pass the
// ETag they read get optimistic concurrency, writers that pass ETagAny (or
// no ETag) overwrite unconditionally, and writers that pass ETagAbsent only
// create.
package storage

import (
	"context"

	"github.com/google/uuid"
)

const (
	// ETagAny disables the conflict check for a write.
	ETagAny = "*"

	// ETagAbsent makes a write create-only: it conflicts when the key
	// already exists.
	ETagAbsent = "<absent>"
)

// Record is a single stored document.
type Record struct {
	// Key is the storage key of the document.
	Key string

	// Document is the JSON encoded document body.
	Document []byte

	// ETag is the version tag observed on read, or the precondition for a write.
	// After a successful Write it holds the new tag.
	ETag string
}

// Driver defines the interface for reading and writing records in a storage backend.
type Driver interface {
	// Read returns the records that exist for the given keys. Missing keys are
	// simply absent from the result map; a missing key is not an error.
	Read(ctx context.Context, keys ...string) (map[string]*Record, error)

	// Write stores all records. A record with ETagAbsent is only written if
	// the key does not exist yet. A record with any other ETag than "" or
	// ETagAny is only written if the stored ETag matches. A failed
	// precondition returns a ConflictError and no record in the batch is
	// written.
	Write(ctx context.Context, records ...*Record) error

	// Delete removes the given keys. Deleting a missing key is a no-op.
	Delete(ctx context.Context, keys ...string) error

	// Close closes the store and releases any resources.
	Close() error
}

// Unconditional reports whether a write with this ETag skips the conflict check.
func Unconditional(etag string) bool {
	return etag == "" || etag == ETagAny
}

// CreateOnly reports whether a write with this ETag must not replace an
// existing record.
func CreateOnly(etag string) bool {
	return etag == ETagAbsent
}

// NewETag returns a fresh version tag.
func NewETag() string {
	return uuid.NewString()
}

// ReadOne reads a single record, returning NotFoundError if it doesn't exist.
func ReadOne(ctx context.Context, d Driver, key string) (*Record, error) {
	records, err := d.Read(ctx, key)
	if err != nil {
		return nil, err
	}

	rec, ok := records[key]
	if !ok {
		return nil, NotFoundError{Key: key}
	}

	return rec, nil
}
