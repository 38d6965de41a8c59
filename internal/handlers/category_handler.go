package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	apperrors "moneta/internal/errors"
	"moneta/internal/models"
	"moneta/internal/pagination"
	"moneta/internal/services"
)

// CategoryHandler handles category-related requests
type CategoryHandler struct {
	categoryService services.CategoryServicer
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService services.CategoryServicer) *CategoryHandler {
	return &CategoryHandler{categoryService: categoryService}
}

// CreateCategoryRequest represents the request payload for creating a category
type CreateCategoryRequest struct {
	Name          string              `json:"name" binding:"required,max=100"`
	Type          models.CategoryType `json:"type" binding:"required,category_type"`
	Description   string              `json:"description" binding:"max=500"`
	Icon          string              `json:"icon" binding:"max=50"`
	Color         string              `json:"color" binding:"omitempty,hex_color"`
	Keywords      []string            `json:"keywords"`
	MonthlyBudget int64               `json:"monthly_budget" binding:"min=0"`
}

// UpdateCategoryRequest represents the request payload for updating a category
type UpdateCategoryRequest struct {
	Name          string   `json:"name" binding:"omitempty,max=100"`
	Description   string   `json:"description" binding:"max=500"`
	Icon          string   `json:"icon" binding:"max=50"`
	Color         string   `json:"color" binding:"omitempty,hex_color"`
	Keywords      []string `json:"keywords"`
	MonthlyBudget *int64   `json:"monthly_budget" binding:"omitempty,min=0"`
}

// ListCategories returns the user's categories plus system defaults
// @Summary     List categories
// @Description List the user's categories and system defaults, optionally filtered by type
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       type query string false "Category type (income or expense)"
// @Param       page query int false "Page number"
// @Param       page_size query int false "Page size"
// @Success     200 {object} map[string]interface{} "Paginated categories"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories [get]
func (h *CategoryHandler) ListCategories(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var page pagination.PageRequest
	if err := c.ShouldBindQuery(&page); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	var categoryType *models.CategoryType
	if raw := c.Query("type"); raw != "" {
		ct := models.CategoryType(raw)
		if ct != models.CategoryTypeIncome && ct != models.CategoryTypeExpense {
			respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid category type"))
			return
		}
		categoryType = &ct
	}

	result, err := h.categoryService.GetUserCategories(userID, categoryType, page)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Categories retrieved", result)
}

// GetCategory returns a single category
// @Summary     Get a category
// @Description Get one of the user's categories or a system default by ID
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Category ID"
// @Success     200 {object} models.Category "Category"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Router      /categories/{id} [get]
func (h *CategoryHandler) GetCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	category, err := h.categoryService.GetCategoryByID(userID, c.Param("id"))
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Category retrieved", category)
}

// CreateCategory handles the creation of a new category
// @Summary     Create a category
// @Description Create a new transaction category
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       request body CreateCategoryRequest true "Category details"
// @Success     201 {object} models.Category "Category created"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     409 {object} ErrorResponse "Duplicate category"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories [post]
func (h *CategoryHandler) CreateCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req CreateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.categoryService.CreateCategory(userID, req.Name, req.Type,
		req.Description, req.Icon, req.Color, req.Keywords, req.MonthlyBudget)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusCreated, "Category created", category)
}

// UpdateCategory handles updating a category
// @Summary     Update a category
// @Description Update one of the user's categories. System defaults are read-only.
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Category ID"
// @Param       request body UpdateCategoryRequest true "Fields to update"
// @Success     200 {object} models.Category "Category updated"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     500 {object} ErrorResponse "Server error"
// @Router      /categories/{id} [put]
func (h *CategoryHandler) UpdateCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	var req UpdateCategoryRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, err.Error()))
		return
	}

	category, err := h.categoryService.UpdateCategory(userID, c.Param("id"),
		req.Name, req.Description, req.Icon, req.Color, req.Keywords, req.MonthlyBudget)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Category updated", category)
}

// DeleteCategory handles deleting a category
// @Summary     Delete a category
// @Description Soft-delete one of the user's categories. Categories still referenced by transactions cannot be deleted.
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       id path string true "Category ID"
// @Success     200 {object} map[string]interface{} "Category deleted"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Failure     404 {object} ErrorResponse "Category not found"
// @Failure     409 {object} ErrorResponse "Category in use"
// @Router      /categories/{id} [delete]
func (h *CategoryHandler) DeleteCategory(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	if err := h.categoryService.DeleteCategory(userID, c.Param("id")); err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Category deleted", nil)
}

// SuggestCategories suggests categories for a description
// @Summary     Suggest categories
// @Description Match free text against category names and keywords, returning up to three candidates of the requested type
// @Tags        categories
// @Accept      json
// @Produce     json
// @Security    BearerAuth
// @Param       q query string false "Free text to match"
// @Param       type query string true "Category type (income or expense)"
// @Success     200 {array} models.Category "Suggested categories"
// @Failure     400 {object} ErrorResponse "Invalid input"
// @Failure     401 {object} ErrorResponse "Unauthorized"
// @Router      /categories/suggest [get]
func (h *CategoryHandler) SuggestCategories(c *gin.Context) {
	userID, err := getUserID(c)
	if err != nil {
		respondWithError(c, err)
		return
	}

	categoryType := models.CategoryType(c.Query("type"))
	if categoryType != models.CategoryTypeIncome && categoryType != models.CategoryTypeExpense {
		respondWithError(c, apperrors.WithMessage(apperrors.ErrInvalidInput, "Invalid category type"))
		return
	}

	suggestions, err := h.categoryService.SuggestCategories(userID, c.Query("q"), categoryType)
	if err != nil {
		respondWithError(c, err)
		return
	}

	respondSuccess(c, http.StatusOK, "Suggestions retrieved", gin.H{"suggestions": suggestions})
}
