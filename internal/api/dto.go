package api

import (
	"github.com/mcasas/reviewdeck/internal/models"
)

// CreateReviewRequest is the request body for creating a review.
type CreateReviewRequest struct {
	Name     string  `json:"name" example:"Dune" validate:"required"`
	Rating   float64 `json:"rating" example:"9.5" validate:"required"`
	Category string  `json:"category" example:"Sci-Fi" validate:"required"`
	Notes    string  `json:"notes" example:"Rewatch in theatre"`
	Favorite bool    `json:"favorite" example:"false"`
}

// UpdateReviewRequest is the request body for partially updating a review.
// Omitted fields keep their stored values; id and createdAt are immutable.
type UpdateReviewRequest = models.ReviewPatch

// Review is the API representation of a review (aliased from the domain layer).
type Review = models.Review

// ReviewListResponse wraps review listings.
type ReviewListResponse struct {
	Reviews []Review `json:"reviews" validate:"required"`
	Total   int      `json:"total" example:"42" validate:"required"`
}

// SearchResponse wraps search results.
type SearchResponse struct {
	Results []Review `json:"results" validate:"required"`
}

// CategoriesResponse wraps the category aggregation.
type CategoriesResponse struct {
	Counts     []models.CategoryCount `json:"counts" validate:"required"`
	Categories []string               `json:"categories" validate:"required"`
}
