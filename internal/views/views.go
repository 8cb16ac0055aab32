// Package views computes derived, read-only sequences over a review
// collection. Every function is pure: inputs are never mutated, the empty
// collection yields empty results, and nothing here can fail.
package views

import (
	"slices"
	"sort"
	"strings"

	"github.com/mcasas/reviewdeck/internal/models"
)

// Sort keys accepted by SortedBy.
const (
	SortNewest  = "newest"
	SortOldest  = "oldest"
	SortHighest = "highest"
	SortLowest  = "lowest"
	SortName    = "name"
)

// maxSearchResults caps Search output for display purposes.
const maxSearchResults = 10

// DefaultTopRatedThreshold is the rating cutoff the top-rated view uses when
// the caller does not supply one.
const DefaultTopRatedThreshold = 7

// SortedBy returns the reviews ordered by the given key. Ties preserve the
// original collection order. An unknown key returns the input order.
func SortedBy(reviews []models.Review, key string) []models.Review {
	out := slices.Clone(reviews)
	switch key {
	case SortNewest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		})
	case SortOldest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].CreatedAt.Before(out[j].CreatedAt)
		})
	case SortHighest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Rating > out[j].Rating
		})
	case SortLowest:
		sort.SliceStable(out, func(i, j int) bool {
			return out[i].Rating < out[j].Rating
		})
	case SortName:
		sort.SliceStable(out, func(i, j int) bool {
			return strings.ToLower(out[i].Name) < strings.ToLower(out[j].Name)
		})
	}
	return out
}

// TopRated returns reviews with rating >= threshold, highest first.
func TopRated(reviews []models.Review, threshold float64) []models.Review {
	var out []models.Review
	for _, r := range reviews {
		if r.Rating >= threshold {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Rating > out[j].Rating
	})
	return out
}

// Favorites returns favorite reviews, newest first.
func Favorites(reviews []models.Review) []models.Review {
	var out []models.Review
	for _, r := range reviews {
		if r.Favorite {
			out = append(out, r)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})
	return out
}

// Search matches the query case-insensitively against name or category,
// preserving collection order, capped at 10 results. A blank query returns
// nothing: search is inactive until something is typed.
func Search(reviews []models.Review, query string) []models.Review {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return nil
	}
	var out []models.Review
	for _, r := range reviews {
		if strings.Contains(strings.ToLower(r.Name), q) ||
			strings.Contains(strings.ToLower(r.Category), q) {
			out = append(out, r)
			if len(out) == maxSearchResults {
				break
			}
		}
	}
	return out
}

// CategoryCounts groups reviews by exact category label and returns the
// counts, most frequent first. Ties keep first-encountered order.
func CategoryCounts(reviews []models.Review) []models.CategoryCount {
	counts := make(map[string]int)
	var order []string
	for _, r := range reviews {
		if _, seen := counts[r.Category]; !seen {
			order = append(order, r.Category)
		}
		counts[r.Category]++
	}
	out := make([]models.CategoryCount, 0, len(order))
	for _, c := range order {
		out = append(out, models.CategoryCount{Category: c, Count: counts[c]})
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Count > out[j].Count
	})
	return out
}

// DistinctCategories returns the unique category labels in first-appearance
// order.
func DistinctCategories(reviews []models.Review) []string {
	seen := make(map[string]struct{})
	var out []string
	for _, r := range reviews {
		if _, ok := seen[r.Category]; ok {
			continue
		}
		seen[r.Category] = struct{}{}
		out = append(out, r.Category)
	}
	return out
}
