package api

import (
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"

	"github.com/dnbdoctor/labelops/internal/domain"
	"github.com/dnbdoctor/labelops/internal/pkg/httputil"
	"github.com/dnbdoctor/labelops/internal/service/category"
)

// ListCategories returns all categories with subscriber counts.
func (h *Handlers) ListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := h.categories.List(r.Context())
	if err != nil {
		httputil.InternalError(w, err)
		return
	}
	if cats == nil {
		cats = []domain.Category{}
	}
	httputil.OK(w, map[string]any{"categories": cats})
}

// CreateCategory adds a category.
func (h *Handlers) CreateCategory(w http.ResponseWriter, r *http.Request) {
	var in category.CreateInput
	if !httputil.Decode(w, r, &in) {
		return
	}

	cat, err := h.categories.Create(r.Context(), in)
	if err != nil {
		switch {
		case errors.Is(err, category.ErrNameRequired):
			httputil.BadRequest(w, "category name is required")
		case errors.Is(err, category.ErrInvalidColor):
			httputil.BadRequest(w, "unknown category color")
		default:
			httputil.InternalError(w, err)
		}
		return
	}

	httputil.Created(w, map[string]any{"success": true, "category": cat})
}

// DeleteCategory removes a category. Its subscribers are detached rather
// than deleted.
func (h *Handlers) DeleteCategory(w http.ResponseWriter, r *http.Request) {
	id := chi.URLParam(r, "id")
	if err := h.categories.Delete(r.Context(), id); err != nil {
		if errors.Is(err, category.ErrNotFound) {
			httputil.NotFound(w, "category not found")
			return
		}
		httputil.InternalError(w, err)
		return
	}
	httputil.NoContent(w)
}
