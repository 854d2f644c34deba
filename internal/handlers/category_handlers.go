package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"carwash_backend/internal/services"
)

type CategoryHandler struct {
	categoryService services.CategoryService
}

// NewCategoryHandler creates a new CategoryHandler.
func NewCategoryHandler(cs services.CategoryService) *CategoryHandler {
	return &CategoryHandler{categoryService: cs}
}

func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	var req services.CreateCategoryRequest
	if !bindJSON(c, &req, "CreateCategory") {
		return
	}
	category, err := h.categoryService.CreateCategory(req)
	if err != nil {
		respondServiceError(c, err, "CreateCategory: Error from categoryService.CreateCategory", "Failed to create category.")
		return
	}
	c.JSON(http.StatusCreated, category)
}

// GetCategories lists the menu, optionally narrowed by ?wash_type=.
func (h *CategoryHandler) GetCategories(c *gin.Context) {
	var washType *string
	if wt := c.Query("wash_type"); wt != "" {
		washType = &wt
	}
	categories, err := h.categoryService.GetCategories(washType)
	if err != nil {
		respondServiceError(c, err, "GetCategories: Error from categoryService.GetCategories", "Failed to fetch categories.")
		return
	}
	c.JSON(http.StatusOK, gin.H{"data": categories})
}

func (h *CategoryHandler) GetCategoryByID(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "category")
	if !ok {
		return
	}
	category, err := h.categoryService.GetCategoryByID(id)
	if err != nil {
		respondServiceError(c, err, fmt.Sprintf("GetCategoryByID: Error for ID %d", id), "Failed to fetch category.")
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "category")
	if !ok {
		return
	}
	var req services.UpdateCategoryRequest
	if !bindJSON(c, &req, "UpdateCategory") {
		return
	}
	category, err := h.categoryService.UpdateCategory(id, req)
	if err != nil {
		respondServiceError(c, err, fmt.Sprintf("UpdateCategory: Error for ID %d", id), "Failed to update category.")
		return
	}
	c.JSON(http.StatusOK, category)
}

func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	id, ok := parseIDParam(c, "id", "category")
	if !ok {
		return
	}
	if err := h.categoryService.DeleteCategory(id); err != nil {
		respondServiceError(c, err, fmt.Sprintf("DeleteCategory: Error for ID %d", id), "Failed to delete category.")
		return
	}
	c.Status(http.StatusNoContent)
}
