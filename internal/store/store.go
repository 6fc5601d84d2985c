// Package store abstracts the remote object store holding model artifacts.
// The core only needs key-addressed fetch: get and exists. Listing and
// versioning are out of scope; artifacts are immutable per key.
package store

import "context"

// Store is a key→blob store.
type Store interface {
	// Get returns the blob stored under key. A missing key is reported via
	// IsNotFound; any other error should be treated as transient.
	Get(ctx context.Context, key string) ([]byte, error)
	// Exists reports whether key is present without fetching it.
	Exists(ctx context.Context, key string) (bool, error)
}

// notFoundError signals a key absent from the store (permanent, not retried).
type notFoundError struct{ key string }

func (e notFoundError) Error() string { return "not found: " + e.key }

// ErrNotFound constructs a notFoundError.
func ErrNotFound(key string) error { return notFoundError{key: key} }

// IsNotFound reports whether err indicates an absent key.
func IsNotFound(err error) bool {
	_, ok := err.(notFoundError)
	return ok
}
