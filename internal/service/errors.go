package service

import (
	"context"
	"errors"

	"powerd/internal/cache"
	"powerd/internal/features"
	"powerd/internal/model"
	"powerd/internal/registry"
	"powerd/internal/schema"
)

// The taxonomy the boundary layer sees. Lower layers return their own typed
// errors; classify wraps them into exactly one of these categories so the
// HTTP layer never needs to know which package an error came from.

// badInputError: the caller's fault (missing field, bad number, bad
// timestamp). Request-scoped and recoverable.
type badInputError struct{ err error }

func (e badInputError) Error() string { return e.err.Error() }
func (e badInputError) Unwrap() error { return e.err }

// ErrBadInput wraps err as a user-input problem.
func ErrBadInput(err error) error { return badInputError{err: err} }

// IsBadInput reports whether err is a user-input problem (4xx-equivalent).
func IsBadInput(err error) bool {
	var t badInputError
	return errors.As(err, &t)
}

// notFoundError: the requested model id is not registered.
type notFoundError struct{ err error }

func (e notFoundError) Error() string { return e.err.Error() }
func (e notFoundError) Unwrap() error { return e.err }

// ErrNotFound wraps err as an unknown-model problem.
func ErrNotFound(err error) error { return notFoundError{err: err} }

// IsNotFound reports whether err names an unregistered model.
func IsNotFound(err error) bool {
	var t notFoundError
	return errors.As(err, &t)
}

// unavailableError: the model's artifact cannot be served right now; other
// models are unaffected and the process keeps running.
type unavailableError struct{ err error }

func (e unavailableError) Error() string { return e.err.Error() }
func (e unavailableError) Unwrap() error { return e.err }

// ErrUnavailable wraps err as an artifact-availability problem.
func ErrUnavailable(err error) error { return unavailableError{err: err} }

// IsUnavailable reports whether err is an artifact availability problem
// (5xx-equivalent, transient from the caller's point of view).
func IsUnavailable(err error) bool {
	var t unavailableError
	return errors.As(err, &t)
}

// internalError: an internal consistency bug (schema violation, vector
// length mismatch). Logged loudly, never silently corrected.
type internalError struct{ err error }

func (e internalError) Error() string { return e.err.Error() }
func (e internalError) Unwrap() error { return e.err }

// ErrInternal wraps err as an internal consistency failure.
func ErrInternal(err error) error { return internalError{err: err} }

// IsInternal reports whether err is an internal consistency failure.
func IsInternal(err error) bool {
	var t internalError
	return errors.As(err, &t)
}

// classify wraps a lower-layer error into the service taxonomy.
func classify(err error) error {
	switch {
	case schema.IsUnknownModel(err):
		return ErrNotFound(err)
	case features.IsMissingField(err), features.IsInvalidNumber(err), features.IsInvalidTimestamp(err):
		return ErrBadInput(err)
	case cache.IsArtifactUnavailable(err):
		return ErrUnavailable(err)
	case errors.Is(err, context.DeadlineExceeded), errors.Is(err, context.Canceled):
		return ErrUnavailable(err)
	case features.IsSchemaViolation(err), registry.IsSchemaMismatch(err), model.IsVectorLength(err):
		return ErrInternal(err)
	default:
		return ErrInternal(err)
	}
}
