package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/fincontrol/fincontrol-backend/internal/domain"
	"github.com/fincontrol/fincontrol-backend/internal/middleware"
	"github.com/fincontrol/fincontrol-backend/internal/service"
	"github.com/fincontrol/fincontrol-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// CategoryHandler handles category-related HTTP requests
type CategoryHandler struct {
	categoryService *service.CategoryService
	publisher       websocket.EventPublisher
}

// NewCategoryHandler creates a new CategoryHandler
func NewCategoryHandler(categoryService *service.CategoryService, publisher websocket.EventPublisher) *CategoryHandler {
	return &CategoryHandler{
		categoryService: categoryService,
		publisher:       publisher,
	}
}

// CreateCategoryRequest represents the create category request body
type CreateCategoryRequest struct {
	Name     string `json:"name" validate:"required,max=50"`
	IsIncome bool   `json:"isIncome"`
	ParentID *int32 `json:"parentId,omitempty"`
}

// UpdateCategoryRequest represents the update category request body
type UpdateCategoryRequest struct {
	Name     string `json:"name" validate:"required,max=50"`
	IsIncome bool   `json:"isIncome"`
}

// CreateCategory handles POST /categories
func (h *CategoryHandler) CreateCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CreateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if err := c.Validate(&req); err != nil {
		return NewValidationError(c, "Validation failed", nil)
	}

	category, err := h.categoryService.Create(c.Request().Context(), userID, req.Name, req.IsIncome, req.ParentID)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCategoryExists):
			return NewConflictError(c, "A category with this name already exists")
		case errors.Is(err, domain.ErrNameRequired), errors.Is(err, domain.ErrNameTooLong):
			return NewValidationError(c, "Invalid category name", []ValidationError{
				{Field: "name", Message: err.Error()},
			})
		case errors.Is(err, domain.ErrCategoryNotFound):
			return NewValidationError(c, "Parent category not found", []ValidationError{
				{Field: "parentId", Message: "Must reference one of your categories"},
			})
		}
		log.Error().Err(err).Msg("Failed to create category")
		return NewInternalError(c, "Failed to create category")
	}

	h.publisher.Publish(userID, websocket.CategoryCreated(category))
	return c.JSON(http.StatusCreated, category)
}

// GetCategories handles GET /categories
func (h *CategoryHandler) GetCategories(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	categories, err := h.categoryService.List(c.Request().Context(), userID)
	if err != nil {
		log.Error().Err(err).Msg("Failed to list categories")
		return NewInternalError(c, "Failed to list categories")
	}
	if categories == nil {
		categories = []*domain.Category{}
	}

	return c.JSON(http.StatusOK, categories)
}

// UpdateCategory handles PUT /categories/:id
func (h *CategoryHandler) UpdateCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseInt32Param(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid category id", nil)
	}

	var req UpdateCategoryRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if err := c.Validate(&req); err != nil {
		return NewValidationError(c, "Validation failed", nil)
	}

	category, err := h.categoryService.Update(c.Request().Context(), userID, id, req.Name, req.IsIncome)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrCategoryNotFound):
			return NewNotFoundError(c, "Category not found")
		case errors.Is(err, domain.ErrCategoryExists):
			return NewConflictError(c, "A category with this name already exists")
		case errors.Is(err, domain.ErrNameRequired), errors.Is(err, domain.ErrNameTooLong):
			return NewValidationError(c, "Invalid category name", []ValidationError{
				{Field: "name", Message: err.Error()},
			})
		}
		log.Error().Err(err).Msg("Failed to update category")
		return NewInternalError(c, "Failed to update category")
	}

	h.publisher.Publish(userID, websocket.CategoryUpdated(category))
	return c.JSON(http.StatusOK, category)
}

// DeleteCategory handles DELETE /categories/:id
func (h *CategoryHandler) DeleteCategory(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := parseInt32Param(c, "id")
	if err != nil {
		return NewValidationError(c, "Invalid category id", nil)
	}

	if err := h.categoryService.Delete(c.Request().Context(), userID, id); err != nil {
		switch {
		case errors.Is(err, domain.ErrCategoryNotFound):
			return NewNotFoundError(c, "Category not found")
		case errors.Is(err, domain.ErrCategoryInUse):
			return NewConflictError(c, "Category has transactions and cannot be deleted")
		}
		log.Error().Err(err).Msg("Failed to delete category")
		return NewInternalError(c, "Failed to delete category")
	}

	h.publisher.Publish(userID, websocket.CategoryDeleted(map[string]int32{"id": id}))
	return c.NoContent(http.StatusNoContent)
}

func parseInt32Param(c echo.Context, name string) (int32, error) {
	v, err := strconv.ParseInt(c.Param(name), 10, 32)
	if err != nil {
		return 0, err
	}
	return int32(v), nil
}
