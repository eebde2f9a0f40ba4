// Package apperr defines the error taxonomy shared by every layer of the
// backend core.
//
// Every failure a caller can observe carries a stable Kind and a
// user-presentable message. Internal identifiers, SQL text and driver
// errors stay in the wrapped cause and are never part of Message.
//
// Propagation rules:
//   - NotFound, Forbidden, ValidationFailed, Conflict and StorageFailure
//     abort the enclosing atomic group with zero partial effects and
//     surface to the caller.
//   - SideEffectFailure is logged at the call site and dropped; it never
//     aborts or retries the main operation.
package apperr

import (
	"errors"
	"fmt"
)

// Kind categorizes an error for callers.
type Kind string

const (
	// KindNotFound indicates a referenced entity is absent.
	KindNotFound Kind = "NOT_FOUND"

	// KindForbidden indicates the actor lacks ownership of the target.
	KindForbidden Kind = "FORBIDDEN"

	// KindValidation indicates malformed input, rejected before any mutation.
	KindValidation Kind = "VALIDATION_FAILED"

	// KindConflict indicates the atomic group lost a concurrent race.
	// Retryable by the caller; the core performs no automatic retry.
	KindConflict Kind = "CONFLICT"

	// KindStorage indicates a durable-store I/O error.
	KindStorage Kind = "STORAGE_FAILURE"

	// KindSideEffect indicates a non-fatal external side effect failed
	// (file cleanup, delivery). Logged, never propagated as a failure of
	// the main operation.
	KindSideEffect Kind = "SIDE_EFFECT_FAILURE"
)

// Error is the structured error type for the backend core.
type Error struct {
	// Kind identifies the error category.
	Kind Kind

	// Message is a human-readable description, safe to show to callers.
	Message string

	// Details contains additional context keyed by field name.
	Details map[string]string

	// Err is the wrapped cause, if any. Not exposed in Message.
	Err error
}

// Error implements the error interface.
func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Kind, e.Message)
}

// Unwrap returns the wrapped cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// New creates an Error with the given kind and message.
func New(kind Kind, message string) *Error {
	return &Error{Kind: kind, Message: message}
}

// Newf creates an Error with a formatted message.
func Newf(kind Kind, format string, args ...any) *Error {
	return &Error{Kind: kind, Message: fmt.Sprintf(format, args...)}
}

// Wrap creates an Error wrapping a cause. The cause is reachable through
// errors.Unwrap but does not appear in the user-visible message.
func Wrap(kind Kind, message string, err error) *Error {
	return &Error{Kind: kind, Message: message, Err: err}
}

// KindOf extracts the Kind from an error chain.
// Returns the empty Kind for non-apperr errors.
func KindOf(err error) Kind {
	var e *Error
	if errors.As(err, &e) {
		return e.Kind
	}
	return ""
}

// IsNotFound reports whether err is a NotFound error.
func IsNotFound(err error) bool { return KindOf(err) == KindNotFound }

// IsForbidden reports whether err is a Forbidden error.
func IsForbidden(err error) bool { return KindOf(err) == KindForbidden }

// IsValidation reports whether err is a ValidationFailed error.
func IsValidation(err error) bool { return KindOf(err) == KindValidation }

// IsConflict reports whether err is a retryable Conflict error.
func IsConflict(err error) bool { return KindOf(err) == KindConflict }

// IsStorage reports whether err is a StorageFailure error.
func IsStorage(err error) bool { return KindOf(err) == KindStorage }

// IsSideEffect reports whether err is a non-fatal SideEffectFailure.
func IsSideEffect(err error) bool { return KindOf(err) == KindSideEffect }
