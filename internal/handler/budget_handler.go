package handler

import (
	"errors"
	"net/http"

	"github.com/fincontrol/fincontrol-backend/internal/domain"
	"github.com/fincontrol/fincontrol-backend/internal/middleware"
	"github.com/fincontrol/fincontrol-backend/internal/service"
	"github.com/fincontrol/fincontrol-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// BudgetHandler handles monthly budget HTTP requests
type BudgetHandler struct {
	budgetService *service.BudgetService
	publisher     websocket.EventPublisher
}

// NewBudgetHandler creates a new BudgetHandler
func NewBudgetHandler(budgetService *service.BudgetService, publisher websocket.EventPublisher) *BudgetHandler {
	return &BudgetHandler{
		budgetService: budgetService,
		publisher:     publisher,
	}
}

// SetBudgetRequest represents the set budget request body
type SetBudgetRequest struct {
	PlannedIncome  string `json:"plannedIncome" validate:"required"`
	PlannedExpense string `json:"plannedExpense" validate:"required"`
}

// GetBudget handles GET /budgets/:month
func (h *BudgetHandler) GetBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	month, err := domain.ParseMonth(c.Param("month"))
	if err != nil {
		return NewValidationError(c, "Invalid month, expected YYYY-MM", nil)
	}

	overview, err := h.budgetService.Overview(c.Request().Context(), userID, month)
	if err != nil {
		log.Error().Err(err).Msg("Failed to load budget overview")
		return NewInternalError(c, "Failed to load budget")
	}

	return c.JSON(http.StatusOK, overview)
}

// SetBudget handles PUT /budgets/:month
func (h *BudgetHandler) SetBudget(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	month, err := domain.ParseMonth(c.Param("month"))
	if err != nil {
		return NewValidationError(c, "Invalid month, expected YYYY-MM", nil)
	}

	var req SetBudgetRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if err := c.Validate(&req); err != nil {
		return NewValidationError(c, "Validation failed", nil)
	}

	plannedIncome, err := decimal.NewFromString(req.PlannedIncome)
	if err != nil {
		return NewValidationError(c, "Invalid planned income", []ValidationError{
			{Field: "plannedIncome", Message: "Must be a valid decimal number"},
		})
	}
	plannedExpense, err := decimal.NewFromString(req.PlannedExpense)
	if err != nil {
		return NewValidationError(c, "Invalid planned expense", []ValidationError{
			{Field: "plannedExpense", Message: "Must be a valid decimal number"},
		})
	}

	budget, err := h.budgetService.Set(c.Request().Context(), userID, month, plannedIncome, plannedExpense)
	if err != nil {
		if errors.Is(err, domain.ErrInvalidBudget) {
			return NewValidationError(c, "Planned figures must not be negative", nil)
		}
		log.Error().Err(err).Msg("Failed to set budget")
		return NewInternalError(c, "Failed to set budget")
	}

	h.publisher.Publish(userID, websocket.BudgetUpdated(budget))
	return c.JSON(http.StatusOK, budget)
}
