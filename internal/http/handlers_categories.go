package http

import (
	"log/slog"
	"net/http"

	"contas/internal/core"
)

type createCategoryRequest struct {
	Title       string `json:"title"`
	Description string `json:"description"`
	Icon        string `json:"icon"`
	Color       string `json:"color"`
}

func (s *Server) handleCreateCategory(w http.ResponseWriter, r *http.Request) {
	var req createCategoryRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	cat := &core.Category{
		Title:       sanitizeInput(req.Title),
		Description: sanitizeInput(req.Description),
		Icon:        sanitizeInput(req.Icon),
		Color:       sanitizeInput(req.Color),
	}
	if err := cat.Validate(); err != nil {
		respondError(w, statusFor(err), err.Error())
		return
	}

	if _, err := s.store.CreateCategory(r.Context(), cat); err != nil {
		slog.ErrorContext(r.Context(), "Category creation failed", "error", err, "title", cat.Title)
		respondError(w, statusFor(err), err.Error())
		return
	}

	respondData(w, http.StatusCreated, newCategoryView(*cat))
}

func (s *Server) handleListCategories(w http.ResponseWriter, r *http.Request) {
	cats, err := s.store.ListCategories(r.Context())
	if err != nil {
		slog.ErrorContext(r.Context(), "Category list failed", "error", err)
		respondError(w, statusFor(err), err.Error())
		return
	}

	views := make([]categoryView, 0, len(cats))
	for _, c := range cats {
		views = append(views, newCategoryView(c))
	}
	respondData(w, http.StatusOK, views)
}

// handleDeleteCategory removes a category. Transactions and recurring series
// that referenced it are kept, uncategorized.
func (s *Server) handleDeleteCategory(w http.ResponseWriter, r *http.Request) {
	id, err := pathID(r)
	if err != nil {
		respondError(w, http.StatusBadRequest, err.Error())
		return
	}

	if err := s.store.DeleteCategory(r.Context(), id); err != nil {
		slog.ErrorContext(r.Context(), "Category delete failed", "error", err, "id", id)
		respondError(w, statusFor(err), err.Error())
		return
	}

	s.invalidateDashboard()
	respondData(w, http.StatusOK, map[string]int64{"id": id})
}
