package assistant

import (
	"errors"
	"fmt"
)

// ErrSessionInvalid is matched via errors.Is by errors of kind KindSessionInvalid.
var ErrSessionInvalid = errors.New("invalid session")

// ErrorKind classifies backend failures.
type ErrorKind int

const (
	// KindOther is any failure that is not recoverable by a new session.
	KindOther ErrorKind = iota

	// KindSessionInvalid means the backend rejected the session as expired or unknown.
	KindSessionInvalid
)

func (k ErrorKind) String() string {
	switch k {
	case KindSessionInvalid:
		return "session_invalid"
	default:
		return "other"
	}
}

// Error is the tagged error returned by Client implementations.
type Error struct {
	Kind ErrorKind

	// StatusCode is the backend HTTP status, 0 for transport failures.
	StatusCode int

	// Detail is the backend's error description.
	Detail string

	// Err is the underlying cause, if any.
	Err error
}

// SessionInvalid builds a KindSessionInvalid error.
func SessionInvalid(statusCode int, detail string) *Error {
	return &Error{Kind: KindSessionInvalid, StatusCode: statusCode, Detail: detail}
}

// Other builds a KindOther error wrapping cause.
func Other(statusCode int, detail string, cause error) *Error {
	return &Error{Kind: KindOther, StatusCode: statusCode, Detail: detail, Err: cause}
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0 && e.Detail != "":
		return fmt.Sprintf("%s (status %d)", e.Detail, e.StatusCode)
	case e.Detail != "":
		return e.Detail
	case e.Err != nil:
		return e.Err.Error()
	default:
		return e.Kind.String()
	}
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is ErrSessionInvalid and e is of that kind.
func (e *Error) Is(target error) bool {
	return target == ErrSessionInvalid && e.Kind == KindSessionInvalid
}

// IsSessionInvalid reports whether err signals a rejected session.
func IsSessionInvalid(err error) bool {
	return errors.Is(err, ErrSessionInvalid)
}
