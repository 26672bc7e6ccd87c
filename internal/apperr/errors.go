// Package apperr defines the structured error kinds shared across the
// ingestion and retrieval services.
//
// Internal components return these tagged errors instead of ad hoc error
// values; the single translation boundary at the HTTP edge maps them onto
// the external response shape without leaking internals.
package apperr

import (
	"errors"
	"fmt"
)

// Kind classifies an error for the edge translation layer.
type Kind int

const (
	// KindInternal is the fallback for unexpected failures.
	KindInternal Kind = iota

	// KindInvalid marks client errors (bad request shape, missing tenant
	// filter, files/metadata length mismatch).
	KindInvalid

	// KindNotFound marks a missing resource (file, document, collection).
	KindNotFound

	// KindUnsupported marks an input the system has no routine for
	// (e.g. a file format outside the extractor capability table).
	KindUnsupported

	// KindConflict marks a write that collides with already stored state.
	KindConflict

	// KindTokenExpired marks an expired or malformed signed token.
	// Terminal: never retried.
	KindTokenExpired

	// KindUnavailable marks a transient dependency failure that a caller
	// may retry with backoff.
	KindUnavailable
)

func (k Kind) String() string {
	switch k {
	case KindInvalid:
		return "invalid"
	case KindNotFound:
		return "not_found"
	case KindUnsupported:
		return "unsupported"
	case KindConflict:
		return "conflict"
	case KindTokenExpired:
		return "token_expired"
	case KindUnavailable:
		return "unavailable"
	default:
		return "internal"
	}
}

// Error is a tagged application error. It carries a Kind for the edge
// boundary and wraps the underlying cause for errors.Is / errors.As.
type Error struct {
	Kind Kind
	Msg  string
	Err  error
}

func (e *Error) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("%s: %v", e.Msg, e.Err)
	}
	return e.Msg
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports kind equality so that errors.Is(err, &Error{Kind: k}) and the
// sentinel helpers below work across wrapping.
func (e *Error) Is(target error) bool {
	var t *Error
	if !errors.As(target, &t) {
		return false
	}
	return e.Kind == t.Kind
}

// New creates a tagged error without a cause.
func New(kind Kind, msg string) *Error {
	return &Error{Kind: kind, Msg: msg}
}

// Newf creates a tagged error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, args...)}
}

// Wrap tags an underlying error with a kind and message.
// A nil cause returns nil so call sites can wrap unconditionally.
func Wrap(kind Kind, msg string, err error) error {
	if err == nil {
		return nil
	}
	return &Error{Kind: kind, Msg: msg, Err: err}
}

// KindOf extracts the Kind from an error chain, defaulting to KindInternal.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return KindInternal
}

// IsKind reports whether any error in the chain carries the given kind.
func IsKind(err error, kind Kind) bool {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind == kind
	}
	return false
}
