package storage

import "errors"

// ErrConflict is matched by ConflictError via errors.Is.
var ErrConflict = errors.New("etag conflict")

// NotFoundError is returned when a record doesn't exist in the store.
type NotFoundError struct {
	Key string
}

func (e NotFoundError) Error() string {
	if e.Key == "" {
		return "record not found"
	}

	return "record not found: " + e.Key
}

// ConflictError is returned when a conditional write loses against a newer version.
type ConflictError struct {
	Key string

	// Expected is the precondition, ETagAbsent for a create-only write.
	Expected string

	// Current is the stored ETag, empty if the record does not exist.
	Current string
}

func (e *ConflictError) Error() string {
	return "etag conflict on " + e.Key + ": expected " + e.Expected + ", found " + quoteOrNone(e.Current)
}

// Is reports whether target is ErrConflict.
func (e *ConflictError) Is(target error) bool {
	return target == ErrConflict
}

func quoteOrNone(s string) string {
	if s == "" {
		return "<none>"
	}
	return s
}
