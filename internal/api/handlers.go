package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"strconv"

	"github.com/go-chi/chi/v5"

	"github.com/mcasas/reviewdeck/internal/apperr"
	"github.com/mcasas/reviewdeck/internal/repository"
	"github.com/mcasas/reviewdeck/internal/views"
)

// Handler holds API route handlers.
type Handler struct {
	repo  *repository.Repository
	onMut func(kind string, id string)
}

// NewHandler creates a new Handler. onMutation, if non-nil, is called after
// each successful mutation with the event kind and review id.
func NewHandler(repo *repository.Repository, onMutation func(kind, id string)) *Handler {
	if onMutation == nil {
		onMutation = func(string, string) {}
	}
	return &Handler{repo: repo, onMut: onMutation}
}

// ListReviews handles GET /reviews.
//
//	@Summary		List reviews with optional sorting
//	@Tags			reviews
//	@Produce		json
//	@Param			sort	query		string	false	"Sort key"	Enums(newest, oldest, highest, lowest, name)
//	@Success		200		{object}	ReviewListResponse
//	@Security		BearerAuth
//	@Router			/reviews [get]
func (h *Handler) ListReviews(w http.ResponseWriter, r *http.Request) {
	sortKey := r.URL.Query().Get("sort")
	all := h.repo.All()
	writeJSON(w, http.StatusOK, map[string]any{
		"reviews": views.SortedBy(all, sortKey),
		"total":   len(all),
	})
}

// GetReview handles GET /reviews/{id}.
//
//	@Summary		Get a single review by id
//	@Tags			reviews
//	@Produce		json
//	@Param			id	path		string	true	"Review id"
//	@Success		200	{object}	Review
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/reviews/{id} [get]
func (h *Handler) GetReview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	review, ok := h.repo.Get(id)
	if !ok {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	writeJSON(w, http.StatusOK, review)
}

// CreateReview handles POST /reviews.
//
//	@Summary		Create a new review
//	@Tags			reviews
//	@Accept			json
//	@Produce		json
//	@Param			body	body		CreateReviewRequest	true	"Review to create"
//	@Success		201		{object}	Review
//	@Failure		400		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/reviews [post]
func (h *Handler) CreateReview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	var req CreateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	review, err := h.repo.Create(r.Context(), repository.CreateInput{
		Name:     req.Name,
		Rating:   req.Rating,
		Category: req.Category,
		Notes:    req.Notes,
		Favorite: req.Favorite,
	})
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrValidation):
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		default:
			slog.Error("create review failed", slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	h.onMut("created", review.ID)
	writeJSON(w, http.StatusCreated, review)
}

// UpdateReview handles PATCH /reviews/{id}.
//
//	@Summary		Partially update a review
//	@Tags			reviews
//	@Accept			json
//	@Produce		json
//	@Param			id		path		string				true	"Review id"
//	@Param			body	body		UpdateReviewRequest	true	"Fields to change"
//	@Success		200		{object}	Review
//	@Failure		400		{object}	errResponse
//	@Failure		404		{object}	errResponse
//	@Security		BearerAuth
//	@Router			/reviews/{id} [patch]
func (h *Handler) UpdateReview(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, 1<<20)
	id := chi.URLParam(r, "id")
	var patch UpdateReviewRequest
	if err := json.NewDecoder(r.Body).Decode(&patch); err != nil {
		writeJSON(w, http.StatusBadRequest, errorBody("invalid JSON body"))
		return
	}
	review, err := h.repo.Update(r.Context(), id, patch)
	if err != nil {
		switch {
		case errors.Is(err, apperr.ErrNotFound):
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		case errors.Is(err, apperr.ErrValidation):
			writeJSON(w, http.StatusBadRequest, errorBody(err.Error()))
		default:
			slog.Error("update review failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	h.onMut("updated", review.ID)
	writeJSON(w, http.StatusOK, review)
}

// DeleteReview handles DELETE /reviews/{id}.
//
//	@Summary		Delete a review
//	@Tags			reviews
//	@Param			id	path	string	true	"Review id"
//	@Success		204	"Review deleted"
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/reviews/{id} [delete]
func (h *Handler) DeleteReview(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	removed, err := h.repo.Delete(r.Context(), id)
	if err != nil {
		slog.Error("delete review failed", slog.String("id", id), slog.String("error", err.Error()))
		writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		return
	}
	if !removed {
		writeJSON(w, http.StatusNotFound, errorBody("not found"))
		return
	}
	h.onMut("deleted", id)
	w.WriteHeader(http.StatusNoContent)
}

// ToggleFavorite handles POST /reviews/{id}/favorite.
//
//	@Summary		Toggle the favorite flag of a review
//	@Tags			reviews
//	@Produce		json
//	@Param			id	path		string	true	"Review id"
//	@Success		200	{object}	Review
//	@Failure		404	{object}	errResponse
//	@Security		BearerAuth
//	@Router			/reviews/{id}/favorite [post]
func (h *Handler) ToggleFavorite(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	review, err := h.repo.ToggleFavorite(r.Context(), id)
	if err != nil {
		if errors.Is(err, apperr.ErrNotFound) {
			writeJSON(w, http.StatusNotFound, errorBody("not found"))
		} else {
			slog.Error("toggle favorite failed", slog.String("id", id), slog.String("error", err.Error()))
			writeJSON(w, http.StatusInternalServerError, errorBody("internal error"))
		}
		return
	}
	h.onMut("updated", review.ID)
	writeJSON(w, http.StatusOK, review)
}

// Search handles GET /search.
//
//	@Summary		Search reviews by name or category
//	@Tags			search
//	@Produce		json
//	@Param			q	query		string	false	"Search query (blank returns no results)"
//	@Success		200	{object}	SearchResponse
//	@Security		BearerAuth
//	@Router			/search [get]
func (h *Handler) Search(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query().Get("q")
	results := views.Search(h.repo.All(), q)
	if results == nil {
		results = []Review{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"results": results,
	})
}

// TopRated handles GET /top-rated.
//
//	@Summary		List reviews at or above a rating threshold, highest first
//	@Tags			reviews
//	@Produce		json
//	@Param			threshold	query		number	false	"Rating cutoff (default 7)"
//	@Success		200			{object}	ReviewListResponse
//	@Security		BearerAuth
//	@Router			/top-rated [get]
func (h *Handler) TopRated(w http.ResponseWriter, r *http.Request) {
	threshold := float64(views.DefaultTopRatedThreshold)
	if raw := r.URL.Query().Get("threshold"); raw != "" {
		if v, err := strconv.ParseFloat(raw, 64); err == nil {
			threshold = v
		}
	}
	results := views.TopRated(h.repo.All(), threshold)
	if results == nil {
		results = []Review{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"reviews": results,
		"total":   len(results),
	})
}

// Favorites handles GET /favorites.
//
//	@Summary		List favorite reviews, newest first
//	@Tags			reviews
//	@Produce		json
//	@Success		200	{object}	ReviewListResponse
//	@Security		BearerAuth
//	@Router			/favorites [get]
func (h *Handler) Favorites(w http.ResponseWriter, r *http.Request) {
	results := views.Favorites(h.repo.All())
	if results == nil {
		results = []Review{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"reviews": results,
		"total":   len(results),
	})
}

// Categories handles GET /categories.
//
//	@Summary		Category aggregation: per-category counts and distinct labels
//	@Tags			categories
//	@Produce		json
//	@Success		200	{object}	CategoriesResponse
//	@Security		BearerAuth
//	@Router			/categories [get]
func (h *Handler) Categories(w http.ResponseWriter, r *http.Request) {
	all := h.repo.All()
	counts := views.CategoryCounts(all)
	categories := views.DistinctCategories(all)
	if categories == nil {
		categories = []string{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"counts":     counts,
		"categories": categories,
	})
}
