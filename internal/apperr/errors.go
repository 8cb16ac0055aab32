// Package apperr defines the sentinel errors shared across the core.
package apperr

import "errors"

var (
	// ErrNotFound means an operation referenced an id that is not in the collection.
	ErrNotFound = errors.New("not found")
	// ErrValidation means a review failed input validation before any mutation.
	ErrValidation = errors.New("validation failed")
	// ErrStorage means the underlying store could not persist the collection.
	// The in-memory collection is unchanged when this is returned.
	ErrStorage = errors.New("storage unavailable")
	// ErrCorruptStore means the stored blob did not deserialize into a review
	// collection. Load-time handling degrades to an empty collection.
	ErrCorruptStore = errors.New("corrupt store")
)
