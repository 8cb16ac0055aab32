package api

import (
	"bytes"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/mcasas/reviewdeck/internal/repository"
	"github.com/mcasas/reviewdeck/internal/testutil"
)

// testEnv sets up a temp file store, repository, and router for testing.
// An empty authToken means disabled mode.
func testEnv(t *testing.T, authToken string) (*repository.Repository, http.Handler) {
	t.Helper()
	repo := testutil.TestRepository(t)
	router := NewRouter(repo, authToken != "", authToken, nil, nil)
	return repo, router
}

func createReview(t *testing.T, router http.Handler, body map[string]any) Review {
	t.Helper()
	raw, _ := json.Marshal(body)
	req := httptest.NewRequest(http.MethodPost, "/reviews", bytes.NewReader(raw))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusCreated {
		t.Fatalf("create status = %d, body = %s", w.Code, w.Body.String())
	}
	var review Review
	_ = json.Unmarshal(w.Body.Bytes(), &review)
	return review
}

func TestCreateAndGetReview(t *testing.T) {
	_, router := testEnv(t, "")

	created := createReview(t, router, map[string]any{
		"name": "Dune", "rating": 9.5, "category": "Sci-Fi",
	})
	if created.ID == "" {
		t.Fatal("no id assigned")
	}

	req := httptest.NewRequest(http.MethodGet, "/reviews/"+created.ID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("get status = %d", w.Code)
	}
	var got Review
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.Name != "Dune" || got.Rating != 9.5 {
		t.Errorf("got %+v", got)
	}
}

func TestCreateValidationError(t *testing.T) {
	_, router := testEnv(t, "")

	body, _ := json.Marshal(map[string]any{"name": "", "rating": 5, "category": "x"})
	req := httptest.NewRequest(http.MethodPost, "/reviews", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestListReviewsSorted(t *testing.T) {
	_, router := testEnv(t, "")
	createReview(t, router, map[string]any{"name": "low", "rating": 3, "category": "x"})
	createReview(t, router, map[string]any{"name": "high", "rating": 9, "category": "x"})

	req := httptest.NewRequest(http.MethodGet, "/reviews?sort=highest", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var resp ReviewListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 2 {
		t.Fatalf("total = %d, want 2", resp.Total)
	}
	if resp.Reviews[0].Name != "high" {
		t.Errorf("first = %q, want high", resp.Reviews[0].Name)
	}
}

func TestPatchReview(t *testing.T) {
	_, router := testEnv(t, "")
	created := createReview(t, router, map[string]any{
		"name": "Dune", "rating": 7, "category": "Sci-Fi", "notes": "keep me",
	})

	body, _ := json.Marshal(map[string]any{"rating": 9})
	req := httptest.NewRequest(http.MethodPatch, "/reviews/"+created.ID, bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("patch status = %d, body = %s", w.Code, w.Body.String())
	}
	var got Review
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.Rating != 9 {
		t.Errorf("rating = %v, want 9", got.Rating)
	}
	if got.Notes != "keep me" || got.ID != created.ID {
		t.Errorf("untouched fields changed: %+v", got)
	}
}

func TestPatchUnknownReview(t *testing.T) {
	_, router := testEnv(t, "")
	body, _ := json.Marshal(map[string]any{"rating": 9})
	req := httptest.NewRequest(http.MethodPatch, "/reviews/nope", bytes.NewReader(body))
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestDeleteReview(t *testing.T) {
	_, router := testEnv(t, "")
	created := createReview(t, router, map[string]any{"name": "Dune", "rating": 7, "category": "x"})

	req := httptest.NewRequest(http.MethodDelete, "/reviews/"+created.ID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNoContent {
		t.Fatalf("delete status = %d", w.Code)
	}

	// Second delete finds nothing.
	req = httptest.NewRequest(http.MethodDelete, "/reviews/"+created.ID, nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusNotFound {
		t.Errorf("second delete status = %d, want 404", w.Code)
	}
}

func TestToggleFavoriteEndpoint(t *testing.T) {
	_, router := testEnv(t, "")
	created := createReview(t, router, map[string]any{"name": "Dune", "rating": 7, "category": "x"})

	req := httptest.NewRequest(http.MethodPost, "/reviews/"+created.ID+"/favorite", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Fatalf("status = %d", w.Code)
	}
	var got Review
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if !got.Favorite {
		t.Error("favorite = false after toggle")
	}
}

func TestSearchEndpoint(t *testing.T) {
	_, router := testEnv(t, "")
	createReview(t, router, map[string]any{"name": "Dune", "rating": 9, "category": "Sci-Fi"})
	createReview(t, router, map[string]any{"name": "Paprika", "rating": 8, "category": "Anime"})

	req := httptest.NewRequest(http.MethodGet, "/search?q=dune", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	var resp SearchResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Results) != 1 || resp.Results[0].Name != "Dune" {
		t.Errorf("results = %+v", resp.Results)
	}

	// Blank query is inactive, not match-everything.
	req = httptest.NewRequest(http.MethodGet, "/search?q=", nil)
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Results) != 0 {
		t.Errorf("blank query results = %d, want 0", len(resp.Results))
	}
}

func TestTopRatedEndpoint(t *testing.T) {
	_, router := testEnv(t, "")
	for i, rating := range []float64{5, 8, 9} {
		createReview(t, router, map[string]any{
			"name": fmt.Sprintf("item %d", i), "rating": rating, "category": "x",
		})
	}

	req := httptest.NewRequest(http.MethodGet, "/top-rated", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	var resp ReviewListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 2 {
		t.Fatalf("total = %d, want 2", resp.Total)
	}
	if resp.Reviews[0].Rating != 9 || resp.Reviews[1].Rating != 8 {
		t.Errorf("order = %v, %v", resp.Reviews[0].Rating, resp.Reviews[1].Rating)
	}
}

func TestFavoritesEndpoint(t *testing.T) {
	_, router := testEnv(t, "")
	created := createReview(t, router, map[string]any{"name": "fav", "rating": 7, "category": "x", "favorite": true})
	createReview(t, router, map[string]any{"name": "plain", "rating": 7, "category": "x"})

	req := httptest.NewRequest(http.MethodGet, "/favorites", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	var resp ReviewListResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if resp.Total != 1 || resp.Reviews[0].ID != created.ID {
		t.Errorf("favorites = %+v", resp.Reviews)
	}
}

func TestCategoriesEndpoint(t *testing.T) {
	_, router := testEnv(t, "")
	createReview(t, router, map[string]any{"name": "1", "rating": 5, "category": "A"})
	createReview(t, router, map[string]any{"name": "2", "rating": 5, "category": "B"})
	createReview(t, router, map[string]any{"name": "3", "rating": 5, "category": "A"})

	req := httptest.NewRequest(http.MethodGet, "/categories", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	var resp CategoriesResponse
	_ = json.Unmarshal(w.Body.Bytes(), &resp)
	if len(resp.Counts) != 2 || resp.Counts[0].Category != "A" || resp.Counts[0].Count != 2 {
		t.Errorf("counts = %+v", resp.Counts)
	}
	if len(resp.Categories) != 2 {
		t.Errorf("categories = %v", resp.Categories)
	}
}

func TestAuthRequired(t *testing.T) {
	_, router := testEnv(t, "sekrit")

	req := httptest.NewRequest(http.MethodGet, "/reviews", nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("no token status = %d, want 401", w.Code)
	}

	req = httptest.NewRequest(http.MethodGet, "/reviews", nil)
	req.Header.Set("Authorization", "Bearer sekrit")
	w = httptest.NewRecorder()
	router.ServeHTTP(w, req)
	if w.Code != http.StatusOK {
		t.Errorf("with token status = %d, want 200", w.Code)
	}
}

func TestMutationCallback(t *testing.T) {
	repo := testutil.TestRepository(t)
	var kinds []string
	router := NewRouter(repo, false, "", func(kind, id string) {
		kinds = append(kinds, kind)
	}, nil)

	created := createReview(t, router, map[string]any{"name": "Dune", "rating": 7, "category": "x"})
	req := httptest.NewRequest(http.MethodDelete, "/reviews/"+created.ID, nil)
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	if len(kinds) != 2 || kinds[0] != "created" || kinds[1] != "deleted" {
		t.Errorf("kinds = %v", kinds)
	}
}
