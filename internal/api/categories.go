package api

import (
	"database/sql"
	"log/slog"
	"net/http"

	"github.com/erazemk/izposoja/internal/authz"
	"github.com/erazemk/izposoja/internal/model"
	"github.com/erazemk/izposoja/internal/store"
)

// CategoriesHandler handles item category endpoints.
type CategoriesHandler struct {
	DB     *sql.DB
	Policy *authz.Engine
}

type categoryRequest struct {
	Name        string `json:"name"`
	Description string `json:"description"`
}

// List handles GET /api/categories.
func (h *CategoriesHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := store.ListCategories(r.Context(), h.DB)
	if err != nil {
		writeError(w, err, "failed to list categories")
		return
	}

	visible := []model.ItemCategory{}
	for i := range categories {
		if allowed(r, h.Policy, authz.ItemCategoryRead, &categories[i]) {
			visible = append(visible, categories[i])
		}
	}
	jsonResponse(w, http.StatusOK, visible)
}

// Create handles POST /api/categories.
func (h *CategoriesHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}

	if !authorize(w, r, h.Policy, authz.ItemCategoryCreate, &model.ItemCategory{Name: req.Name}) {
		return
	}

	c, err := store.CreateCategory(r.Context(), h.DB, req.Name, req.Description)
	if err != nil {
		jsonError(w, http.StatusConflict, "category already exists")
		return
	}

	slog.Info("category created", "user", username(r.Context()), "category", c.Name)
	jsonResponse(w, http.StatusCreated, c)
}

// load fetches the category named by the path, writing 4xx/5xx on failure.
func (h *CategoriesHandler) load(w http.ResponseWriter, r *http.Request) *model.ItemCategory {
	id, err := pathID(r)
	if err != nil {
		jsonError(w, http.StatusBadRequest, "invalid category id")
		return nil
	}
	c, err := store.GetCategory(r.Context(), h.DB, id)
	if err != nil {
		writeError(w, err, "failed to get category")
		return nil
	}
	if c == nil {
		jsonError(w, http.StatusNotFound, "category not found")
	}
	return c
}

// Get handles GET /api/categories/{id}.
func (h *CategoriesHandler) Get(w http.ResponseWriter, r *http.Request) {
	c := h.load(w, r)
	if c == nil || !authorize(w, r, h.Policy, authz.ItemCategoryRead, c) {
		return
	}
	jsonResponse(w, http.StatusOK, c)
}

// Update handles PUT /api/categories/{id}.
func (h *CategoriesHandler) Update(w http.ResponseWriter, r *http.Request) {
	c := h.load(w, r)
	if c == nil || !authorize(w, r, h.Policy, authz.ItemCategoryUpdate, c) {
		return
	}

	var req categoryRequest
	if err := decodeJSON(r, &req); err != nil {
		jsonError(w, http.StatusBadRequest, "invalid request body")
		return
	}
	if req.Name == "" {
		jsonError(w, http.StatusBadRequest, "name required")
		return
	}

	if err := store.UpdateCategory(r.Context(), h.DB, c.ID, req.Name, req.Description); err != nil {
		jsonError(w, http.StatusConflict, "category already exists")
		return
	}
	c.Name, c.Description = req.Name, req.Description

	slog.Info("category updated", "user", username(r.Context()), "category", c.Name)
	jsonResponse(w, http.StatusOK, c)
}

// Delete handles DELETE /api/categories/{id}.
func (h *CategoriesHandler) Delete(w http.ResponseWriter, r *http.Request) {
	c := h.load(w, r)
	if c == nil || !authorize(w, r, h.Policy, authz.ItemCategoryDelete, c) {
		return
	}

	if err := store.DeleteCategory(r.Context(), h.DB, c.ID); err != nil {
		writeError(w, err, "failed to delete category")
		return
	}

	slog.Info("category deleted", "user", username(r.Context()), "category", c.Name)
	jsonResponse(w, http.StatusOK, map[string]string{"message": "category deleted"})
}
