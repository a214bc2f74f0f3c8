package handler

import (
	"errors"
	"net/http"
	"time"

	"github.com/fincontrol/fincontrol-backend/internal/domain"
	"github.com/fincontrol/fincontrol-backend/internal/middleware"
	"github.com/fincontrol/fincontrol-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// ReportHandler serves the budget analysis report and the dashboard summary
type ReportHandler struct {
	analysisService    *service.AnalysisService
	transactionService *service.TransactionService
}

// NewReportHandler creates a new ReportHandler
func NewReportHandler(analysisService *service.AnalysisService, transactionService *service.TransactionService) *ReportHandler {
	return &ReportHandler{
		analysisService:    analysisService,
		transactionService: transactionService,
	}
}

// GetBudgetReport handles GET /reports/budget/:month
func (h *ReportHandler) GetBudgetReport(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	month, err := domain.ParseMonth(c.Param("month"))
	if err != nil {
		return NewValidationError(c, "Invalid month, expected YYYY-MM", nil)
	}

	report, err := h.analysisService.ComputeReport(c.Request().Context(), userID, month, time.Now())
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return NewUnauthorizedError(c, "User no longer exists")
		}
		log.Error().Err(err).Msg("Failed to compute budget report")
		return NewInternalError(c, "Failed to compute report")
	}

	return c.JSON(http.StatusOK, report)
}

// DashboardSummaryResponse represents the dashboard summary
type DashboardSummaryResponse struct {
	Report             *domain.BudgetReport  `json:"report"`
	Balance            string                `json:"balance"`
	TodayIncome        string                `json:"todayIncome"`
	TodayExpense       string                `json:"todayExpense"`
	RecentTransactions []TransactionResponse `json:"recentTransactions"`
}

// GetSummary handles GET /dashboard/summary. It bundles the current month's
// report with today's totals and the latest transactions.
func (h *ReportHandler) GetSummary(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	ctx := c.Request().Context()
	now := time.Now()

	report, err := h.analysisService.ComputeReport(ctx, userID, domain.MonthOf(now), now)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return NewUnauthorizedError(c, "User no longer exists")
		}
		log.Error().Err(err).Msg("Failed to compute dashboard report")
		return NewInternalError(c, "Failed to load dashboard")
	}

	todayIncome, todayExpense, err := h.transactionService.DayTotals(ctx, userID, now)
	if err != nil {
		log.Error().Err(err).Msg("Failed to sum today's transactions")
		return NewInternalError(c, "Failed to load dashboard")
	}

	recent, err := h.transactionService.List(ctx, userID, &domain.TransactionFilters{Page: 1, PageSize: 5})
	if err != nil {
		log.Error().Err(err).Msg("Failed to list recent transactions")
		return NewInternalError(c, "Failed to load dashboard")
	}

	resp := DashboardSummaryResponse{
		Report:             report,
		Balance:            report.TotalIncome.Sub(report.TotalExpense).String(),
		TodayIncome:        todayIncome.String(),
		TodayExpense:       todayExpense.String(),
		RecentTransactions: make([]TransactionResponse, 0, len(recent.Data)),
	}
	for _, t := range recent.Data {
		resp.RecentTransactions = append(resp.RecentTransactions, transactionToResponse(t))
	}

	return c.JSON(http.StatusOK, resp)
}
