// Package store defines the durable blob boundary for the review collection.
//
// The collection is persisted as a single serialized blob under a fixed key:
// every save rewrites the whole collection. That is an explicit design bound
// for the expected scale (tens to low thousands of reviews), not an
// oversight; incremental persistence is the extension point if it ever grows
// past that.
package store

import "github.com/mcasas/reviewdeck/internal/models"

// StorageKey is the fixed key the collection blob is stored under.
const StorageKey = "reviewdeck_reviews"

// Provider is the interface for collection blob persistence.
type Provider interface {
	// Load reads the collection blob. A missing blob is not an error and
	// yields an empty collection; a malformed blob wraps apperr.ErrCorruptStore.
	Load() ([]models.Review, error)
	// Save serializes the full collection and replaces the stored blob
	// atomically. Failures wrap apperr.ErrStorage.
	Save(reviews []models.Review) error
}
