// Package repository owns the canonical in-memory review collection and its
// mutation operations. Durability is delegated to a store.Provider; every
// mutation persists the full collection before the in-memory state is
// committed, so a successful return always means memory and store agree.
package repository

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"math"
	"slices"
	"strings"
	"sync"
	"time"

	validation "github.com/go-ozzo/ozzo-validation/v4"
	"github.com/google/uuid"

	"github.com/mcasas/reviewdeck/internal/apperr"
	"github.com/mcasas/reviewdeck/internal/models"
	"github.com/mcasas/reviewdeck/internal/store"
)

// CreateInput is the caller-supplied data for a new review.
type CreateInput struct {
	Name     string
	Rating   float64
	Category string
	Notes    string
	Favorite bool
}

// Validate checks the input against the domain constraints: name and
// category non-empty, rating a finite number within the 0–10 scale.
func (in CreateInput) Validate() error {
	if math.IsNaN(in.Rating) || math.IsInf(in.Rating, 0) {
		return fmt.Errorf("%w: rating must be a finite number", apperr.ErrValidation)
	}
	err := validation.ValidateStruct(&in,
		validation.Field(&in.Name, validation.Required),
		validation.Field(&in.Category, validation.Required),
		validation.Field(&in.Rating, validation.Min(0.0), validation.Max(10.0)),
	)
	if err != nil {
		return fmt.Errorf("%w: %v", apperr.ErrValidation, err)
	}
	return nil
}

// Repository holds the canonical collection. Construct one per store; there
// is no ambient global, so tests can run independent instances side by side.
//
// All operations are safe for concurrent use: the HTTP layer serves each
// request in its own goroutine, so mutations serialize on mu and reads take
// the shared side.
type Repository struct {
	store  store.Provider
	logger *slog.Logger

	mu      sync.RWMutex
	reviews []models.Review
}

// New creates a Repository and loads the collection from the store exactly
// once. A corrupt blob degrades to an empty collection with a warning rather
// than failing startup.
func New(p store.Provider, logger *slog.Logger) (*Repository, error) {
	if logger == nil {
		logger = slog.Default()
	}
	reviews, err := p.Load()
	if err != nil {
		if !errors.Is(err, apperr.ErrCorruptStore) {
			return nil, fmt.Errorf("repository: load: %w", err)
		}
		logger.Warn("stored collection is corrupt, starting empty",
			slog.String("error", err.Error()))
		reviews = []models.Review{}
	}
	return &Repository{store: p, logger: logger, reviews: reviews}, nil
}

// Create validates the input, assigns a fresh id and creation time, appends
// to the collection, and persists it.
func (r *Repository) Create(_ context.Context, in CreateInput) (models.Review, error) {
	in.Name = strings.TrimSpace(in.Name)
	in.Category = strings.TrimSpace(in.Category)
	in.Notes = strings.TrimSpace(in.Notes)
	if err := in.Validate(); err != nil {
		return models.Review{}, err
	}

	review := models.Review{
		ID:        uuid.NewString(),
		Name:      in.Name,
		Rating:    in.Rating,
		Category:  in.Category,
		Notes:     in.Notes,
		Favorite:  in.Favorite,
		CreatedAt: time.Now(),
	}

	r.mu.Lock()
	defer r.mu.Unlock()
	next := append(slices.Clone(r.reviews), review)
	if err := r.store.Save(next); err != nil {
		return models.Review{}, err
	}
	r.reviews = next
	return review, nil
}

// Update merges the non-nil patch fields onto the stored review and persists
// the collection. ID and CreatedAt are never touched. The merged review is
// re-validated, so a patch cannot blank out name or category.
func (r *Repository) Update(_ context.Context, id string, patch models.ReviewPatch) (models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.update(id, patch)
}

// update applies a patch to the locked collection. Callers hold mu.
func (r *Repository) update(id string, patch models.ReviewPatch) (models.Review, error) {
	i := r.indexOf(id)
	if i < 0 {
		return models.Review{}, fmt.Errorf("%w: review %s", apperr.ErrNotFound, id)
	}

	merged := r.reviews[i]
	if patch.Name != nil {
		merged.Name = strings.TrimSpace(*patch.Name)
	}
	if patch.Rating != nil {
		merged.Rating = *patch.Rating
	}
	if patch.Category != nil {
		merged.Category = strings.TrimSpace(*patch.Category)
	}
	if patch.Notes != nil {
		merged.Notes = strings.TrimSpace(*patch.Notes)
	}
	if patch.Favorite != nil {
		merged.Favorite = *patch.Favorite
	}

	check := CreateInput{
		Name:     merged.Name,
		Rating:   merged.Rating,
		Category: merged.Category,
	}
	if err := check.Validate(); err != nil {
		return models.Review{}, err
	}

	next := slices.Clone(r.reviews)
	next[i] = merged
	if err := r.store.Save(next); err != nil {
		return models.Review{}, err
	}
	r.reviews = next
	return merged, nil
}

// Delete removes the review with the given id. Deleting an unknown id is not
// an error: it reports false and skips the store write.
func (r *Repository) Delete(_ context.Context, id string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return false, nil
	}
	next := slices.Delete(slices.Clone(r.reviews), i, i+1)
	if err := r.store.Save(next); err != nil {
		return false, err
	}
	r.reviews = next
	return true, nil
}

// ToggleFavorite flips the favorite flag and returns the updated review. The
// read and the flip happen under one lock, so concurrent toggles cannot both
// observe the same starting value.
func (r *Repository) ToggleFavorite(_ context.Context, id string) (models.Review, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	i := r.indexOf(id)
	if i < 0 {
		return models.Review{}, fmt.Errorf("%w: review %s", apperr.ErrNotFound, id)
	}
	flipped := !r.reviews[i].Favorite
	return r.update(id, models.ReviewPatch{Favorite: &flipped})
}

// Get looks up a review by id without side effects.
func (r *Repository) Get(id string) (models.Review, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if i := r.indexOf(id); i >= 0 {
		return r.reviews[i], true
	}
	return models.Review{}, false
}

// All returns the collection in creation order. The returned slice is a
// copy; reviews are plain values, so callers cannot reach repository state
// through it.
func (r *Repository) All() []models.Review {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return slices.Clone(r.reviews)
}

// Count returns the number of reviews in the collection.
func (r *Repository) Count() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.reviews)
}

// indexOf scans the locked collection. Callers hold mu.
func (r *Repository) indexOf(id string) int {
	return slices.IndexFunc(r.reviews, func(rev models.Review) bool {
		return rev.ID == id
	})
}
