package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/fincontrol/fincontrol-backend/internal/domain"
	"github.com/fincontrol/fincontrol-backend/internal/middleware"
	"github.com/fincontrol/fincontrol-backend/internal/service"
	"github.com/fincontrol/fincontrol-backend/internal/websocket"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
)

// TransactionHandler handles transaction-related HTTP requests
type TransactionHandler struct {
	transactionService *service.TransactionService
	publisher          websocket.EventPublisher
}

// NewTransactionHandler creates a new TransactionHandler
func NewTransactionHandler(transactionService *service.TransactionService, publisher websocket.EventPublisher) *TransactionHandler {
	return &TransactionHandler{
		transactionService: transactionService,
		publisher:          publisher,
	}
}

// CreateTransactionRequest represents the create transaction request body
type CreateTransactionRequest struct {
	Amount      string  `json:"amount" validate:"required"`
	CategoryID  int32   `json:"categoryId" validate:"required"`
	Date        *string `json:"date,omitempty"`
	Description string  `json:"description,omitempty"`
}

// TransactionResponse represents a transaction in API responses
type TransactionResponse struct {
	ID          int64  `json:"id"`
	Amount      string `json:"amount"`
	Date        string `json:"date"`
	CategoryID  int32  `json:"categoryId"`
	Description string `json:"description,omitempty"`
	CreatedAt   string `json:"createdAt"`
}

// PaginatedTransactionsResponse represents a transaction page in API responses
type PaginatedTransactionsResponse struct {
	Data       []TransactionResponse `json:"data"`
	Page       int32                 `json:"page"`
	PageSize   int32                 `json:"pageSize"`
	TotalItems int64                 `json:"totalItems"`
	TotalPages int32                 `json:"totalPages"`
}

func transactionToResponse(t *domain.Transaction) TransactionResponse {
	return TransactionResponse{
		ID:          t.ID,
		Amount:      t.Amount.String(),
		Date:        t.Date.Format("2006-01-02"),
		CategoryID:  t.CategoryID,
		Description: t.Description,
		CreatedAt:   t.CreatedAt.Format(time.RFC3339),
	}
}

// CreateTransaction handles POST /transactions
func (h *TransactionHandler) CreateTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req CreateTransactionRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if err := c.Validate(&req); err != nil {
		return NewValidationError(c, "Validation failed", nil)
	}

	amount, err := decimal.NewFromString(req.Amount)
	if err != nil {
		return NewValidationError(c, "Invalid amount", []ValidationError{
			{Field: "amount", Message: "Must be a valid decimal number"},
		})
	}

	date := time.Now().UTC()
	if req.Date != nil && *req.Date != "" {
		parsed, err := time.Parse("2006-01-02", *req.Date)
		if err != nil {
			return NewValidationError(c, "Invalid date", []ValidationError{
				{Field: "date", Message: "Must be in YYYY-MM-DD format"},
			})
		}
		date = parsed
	}

	transaction, err := h.transactionService.Create(c.Request().Context(), userID, amount, date, req.CategoryID, req.Description)
	if err != nil {
		switch {
		case errors.Is(err, domain.ErrInvalidAmount):
			return NewValidationError(c, "Invalid amount", []ValidationError{
				{Field: "amount", Message: "Must be greater than zero"},
			})
		case errors.Is(err, domain.ErrCategoryNotFound):
			return NewValidationError(c, "Category not found", []ValidationError{
				{Field: "categoryId", Message: "Must reference one of your categories"},
			})
		}
		log.Error().Err(err).Msg("Failed to create transaction")
		return NewInternalError(c, "Failed to create transaction")
	}

	resp := transactionToResponse(transaction)
	h.publisher.Publish(userID, websocket.TransactionCreated(resp))
	return c.JSON(http.StatusCreated, resp)
}

// GetTransactions handles GET /transactions
func (h *TransactionHandler) GetTransactions(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	filters, err := parseTransactionFilters(c)
	if err != nil {
		return NewValidationError(c, err.Error(), nil)
	}

	var page *domain.PaginatedTransactions
	if period := c.QueryParam("period"); period != "" {
		page, err = h.transactionService.ListPeriod(c.Request().Context(), userID, period, time.Now(), filters)
		if errors.Is(err, domain.ErrNotFound) {
			return NewValidationError(c, "Invalid period", []ValidationError{
				{Field: "period", Message: "Must be one of: today, week, month"},
			})
		}
		if err != nil {
			log.Error().Err(err).Msg("Failed to list transactions")
			return NewInternalError(c, "Failed to list transactions")
		}
	} else {
		page, err = h.transactionService.List(c.Request().Context(), userID, filters)
		if err != nil {
			log.Error().Err(err).Msg("Failed to list transactions")
			return NewInternalError(c, "Failed to list transactions")
		}
	}

	resp := PaginatedTransactionsResponse{
		Data:       make([]TransactionResponse, 0, len(page.Data)),
		Page:       page.Page,
		PageSize:   page.PageSize,
		TotalItems: page.TotalItems,
		TotalPages: page.TotalPages,
	}
	for _, t := range page.Data {
		resp.Data = append(resp.Data, transactionToResponse(t))
	}

	return c.JSON(http.StatusOK, resp)
}

// DeleteTransaction handles DELETE /transactions/:id
func (h *TransactionHandler) DeleteTransaction(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	id, err := strconv.ParseInt(c.Param("id"), 10, 64)
	if err != nil {
		return NewValidationError(c, "Invalid transaction id", nil)
	}

	if err := h.transactionService.Delete(c.Request().Context(), userID, id); err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return NewNotFoundError(c, "Transaction not found")
		}
		log.Error().Err(err).Msg("Failed to delete transaction")
		return NewInternalError(c, "Failed to delete transaction")
	}

	h.publisher.Publish(userID, websocket.TransactionDeleted(map[string]int64{"id": id}))
	return c.NoContent(http.StatusNoContent)
}

func parseTransactionFilters(c echo.Context) (*domain.TransactionFilters, error) {
	filters := &domain.TransactionFilters{}

	if v := c.QueryParam("from"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, errors.New("from must be in YYYY-MM-DD format")
		}
		filters.From = &parsed
	}
	if v := c.QueryParam("to"); v != "" {
		parsed, err := time.Parse("2006-01-02", v)
		if err != nil {
			return nil, errors.New("to must be in YYYY-MM-DD format")
		}
		filters.To = &parsed
	}
	if v := c.QueryParam("categoryId"); v != "" {
		id, err := strconv.ParseInt(v, 10, 32)
		if err != nil {
			return nil, errors.New("categoryId must be an integer")
		}
		categoryID := int32(id)
		filters.CategoryID = &categoryID
	}
	if v := c.QueryParam("page"); v != "" {
		page, err := strconv.ParseInt(v, 10, 32)
		if err != nil || page < 1 {
			return nil, errors.New("page must be a positive integer")
		}
		filters.Page = int32(page)
	}
	if v := c.QueryParam("pageSize"); v != "" {
		pageSize, err := strconv.ParseInt(v, 10, 32)
		if err != nil || pageSize < 1 {
			return nil, errors.New("pageSize must be a positive integer")
		}
		filters.PageSize = int32(pageSize)
	}

	return filters, nil
}
