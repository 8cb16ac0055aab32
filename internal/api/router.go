package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/mcasas/reviewdeck/internal/repository"
)

// NewRouter creates a chi router with all API routes mounted.
// authEnabled controls whether Bearer token auth is enforced.
// onMutation, if non-nil, is invoked after each successful mutation.
// eventsHandler, if non-nil, is mounted at GET /events inside the auth group.
func NewRouter(repo *repository.Repository, authEnabled bool, token string, onMutation func(kind, id string), eventsHandler http.Handler) chi.Router {
	h := NewHandler(repo, onMutation)

	r := chi.NewRouter()
	r.Use(AuthMiddleware(authEnabled, token))

	// Reviews CRUD.
	r.Get("/reviews", h.ListReviews)
	r.Post("/reviews", h.CreateReview)
	r.Get("/reviews/{id}", h.GetReview)
	r.Patch("/reviews/{id}", h.UpdateReview)
	r.Delete("/reviews/{id}", h.DeleteReview)
	r.Post("/reviews/{id}/favorite", h.ToggleFavorite)

	// Derived views.
	r.Get("/search", h.Search)
	r.Get("/top-rated", h.TopRated)
	r.Get("/favorites", h.Favorites)
	r.Get("/categories", h.Categories)

	// SSE endpoint (protected by same auth middleware).
	if eventsHandler != nil {
		r.Get("/events", eventsHandler.ServeHTTP)
	}

	return r
}
