package handlers

import (
	"net/http"
	"strings"

	"github.com/rogerio-castellano/inventory-master/internal/models"
)

// CreateCategoryHandler godoc
// @Summary Create a category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param category body CategoryRequest true "Category to add"
// @Success 201 {object} models.Category
// @Failure 400 {array} ValidationError
// @Failure 409 {string} string "Duplicated name"
// @Router /categories [post]
func CreateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	var req CategoryRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}
	if validationErrors := validateCategory(req); len(validationErrors) > 0 {
		respond(w, http.StatusBadRequest, validationErrors)
		return
	}

	created, err := categoryRepo.Create(r.Context(), models.Category{
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
	})
	if err != nil {
		writeRepoError(w, err, "create category")
		return
	}
	respond(w, http.StatusCreated, created)
}

// GetCategoriesHandler godoc
// @Summary List categories ordered by name
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Category
// @Failure 500 {string} string "Internal error"
// @Router /categories [get]
func GetCategoriesHandler(w http.ResponseWriter, r *http.Request) {
	categories, err := categoryRepo.List(r.Context())
	if err != nil {
		writeRepoError(w, err, "fetch categories")
		return
	}
	respond(w, http.StatusOK, categories)
}

// GetCategoryByIDHandler godoc
// @Summary Get category by ID
// @Tags categories
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category ID"
// @Success 200 {object} models.Category
// @Failure 400 {string} string "Invalid ID"
// @Failure 404 {string} string "Not found"
// @Router /categories/{id} [get]
func GetCategoryByIDHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "category")
	if !ok {
		return
	}
	category, err := categoryRepo.GetByID(r.Context(), id)
	if err != nil {
		writeRepoError(w, err, "fetch category")
		return
	}
	respond(w, http.StatusOK, category)
}

// UpdateCategoryHandler godoc
// @Summary Update a category
// @Tags categories
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path string true "Category ID"
// @Param category body CategoryRequest true "Updated category"
// @Success 200 {object} models.Category
// @Failure 400 {array} ValidationError
// @Failure 404 {string} string "Not found"
// @Failure 409 {string} string "Duplicated name"
// @Router /categories/{id} [put]
func UpdateCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "category")
	if !ok {
		return
	}

	var req CategoryRequest
	if err := readJSON(w, r, &req); err != nil {
		http.Error(w, "invalid input", http.StatusBadRequest)
		return
	}
	if validationErrors := validateCategory(req); len(validationErrors) > 0 {
		respond(w, http.StatusBadRequest, validationErrors)
		return
	}

	updated, err := categoryRepo.Update(r.Context(), models.Category{
		ID:          id,
		Name:        strings.TrimSpace(req.Name),
		Description: req.Description,
	})
	if err != nil {
		writeRepoError(w, err, "update category")
		return
	}
	respond(w, http.StatusOK, updated)
}

// DeleteCategoryHandler godoc
// @Summary Delete a category
// @Description Products in the category become uncategorized
// @Tags categories
// @Security BearerAuth
// @Param id path string true "Category ID"
// @Success 204 "Deleted successfully"
// @Failure 400 {string} string "Invalid ID"
// @Failure 404 {string} string "Not found"
// @Router /categories/{id} [delete]
func DeleteCategoryHandler(w http.ResponseWriter, r *http.Request) {
	id, ok := idParam(w, r, "category")
	if !ok {
		return
	}
	if err := categoryRepo.Delete(r.Context(), id); err != nil {
		writeRepoError(w, err, "delete category")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
