package handler

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/sitesupply/procurement-api/internal/domain"
	"github.com/sitesupply/procurement-api/internal/service"
	"go.uber.org/zap"
)

type CategoryHandler struct {
	categoryService *service.CategoryService
	logger          *zap.Logger
}

func NewCategoryHandler(categoryService *service.CategoryService, logger *zap.Logger) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		logger:          logger,
	}
}

// List godoc
// @Summary List material categories
// @Description Get all material categories ordered by name
// @Tags Categories
// @Produce json
// @Success 200 {array} domain.CategoryDTO
// @Failure 401 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /categories [get]
func (h *CategoryHandler) List(w http.ResponseWriter, r *http.Request) {
	categories, err := h.categoryService.List(r.Context())
	if err != nil {
		h.logger.Error("failed to list categories", zap.Error(err))
		respondWithError(w, http.StatusInternalServerError, "Failed to list categories")
		return
	}

	respondJSON(w, http.StatusOK, categories)
}

// Create godoc
// @Summary Create material category
// @Description Create a category. The slug is derived from the name. Admin only.
// @Tags Categories
// @Accept json
// @Produce json
// @Param request body domain.CreateCategoryRequest true "Category data"
// @Success 201 {object} domain.CategoryDTO
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 409 {object} domain.APIError "Slug already exists"
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /categories [post]
func (h *CategoryHandler) Create(w http.ResponseWriter, r *http.Request) {
	var req domain.CreateCategoryRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid request body: malformed JSON")
		return
	}

	if err := validate.Struct(req); err != nil {
		respondValidationError(w, err)
		return
	}

	category, err := h.categoryService.Create(r.Context(), &req)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrDuplicateSlug):
			respondWithError(w, http.StatusConflict, "A category with this name already exists")
		case errors.Is(err, service.ErrInvalidInput):
			respondWithError(w, http.StatusBadRequest, err.Error())
		default:
			h.logger.Error("failed to create category", zap.Error(err))
			respondWithError(w, http.StatusInternalServerError, "Internal server error")
		}
		return
	}

	w.Header().Set("Location", "/api/v1/categories/"+category.ID.String())
	respondJSON(w, http.StatusCreated, category)
}

// Delete godoc
// @Summary Delete material category
// @Description Delete a category. Admin only. Request items keep their free-text category value.
// @Tags Categories
// @Produce json
// @Param id path string true "Category ID" format(uuid)
// @Success 204 "No Content"
// @Failure 400 {object} domain.APIError
// @Failure 401 {object} domain.APIError
// @Failure 403 {object} domain.APIError
// @Failure 404 {object} domain.APIError
// @Failure 500 {object} domain.APIError
// @Security BearerAuth
// @Router /categories/{id} [delete]
func (h *CategoryHandler) Delete(w http.ResponseWriter, r *http.Request) {
	id, err := uuid.Parse(chi.URLParam(r, "id"))
	if err != nil {
		respondWithError(w, http.StatusBadRequest, "Invalid category ID: must be a valid UUID")
		return
	}

	if err := h.categoryService.Delete(r.Context(), id); err != nil {
		if errors.Is(err, service.ErrNotFound) {
			respondWithError(w, http.StatusNotFound, "Category not found")
			return
		}
		h.logger.Error("failed to delete category", zap.Error(err), zap.String("category_id", id.String()))
		respondWithError(w, http.StatusInternalServerError, "Internal server error")
		return
	}

	w.WriteHeader(http.StatusNoContent)
}
