package service

import (
	"context"

	"github.com/fincontrol/fincontrol-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// budgetHistoryLimit bounds the history shown alongside a month's budget.
const budgetHistoryLimit = 3

// BudgetService handles monthly budget business logic
type BudgetService struct {
	budgetRepo      domain.MonthlyBudgetRepository
	transactionRepo domain.TransactionRepository
}

// NewBudgetService creates a new BudgetService
func NewBudgetService(budgetRepo domain.MonthlyBudgetRepository, transactionRepo domain.TransactionRepository) *BudgetService {
	return &BudgetService{
		budgetRepo:      budgetRepo,
		transactionRepo: transactionRepo,
	}
}

// GetOrCreate returns the user's budget for the month, creating a zero
// budget on first view
func (s *BudgetService) GetOrCreate(ctx context.Context, userID uuid.UUID, month domain.Month) (*domain.MonthlyBudget, error) {
	return s.budgetRepo.GetOrCreate(ctx, userID, month)
}

// Set upserts the planned figures for a month. Negative values are rejected
// here, at the input boundary; the analysis engine never sees them.
func (s *BudgetService) Set(ctx context.Context, userID uuid.UUID, month domain.Month, plannedIncome, plannedExpense decimal.Decimal) (*domain.MonthlyBudget, error) {
	if plannedIncome.IsNegative() || plannedExpense.IsNegative() {
		return nil, domain.ErrInvalidBudget
	}
	return s.budgetRepo.Upsert(ctx, userID, month, plannedIncome, plannedExpense)
}

// BudgetOverview pairs a month's budget with the actual totals and plan
// deltas, plus recent budget history.
type BudgetOverview struct {
	Budget       *domain.MonthlyBudget   `json:"budget"`
	TotalIncome  decimal.Decimal         `json:"totalIncome"`
	TotalExpense decimal.Decimal         `json:"totalExpense"`
	IncomeDiff   decimal.Decimal         `json:"incomeDiff"`
	ExpenseDiff  decimal.Decimal         `json:"expenseDiff"`
	History      []*domain.MonthlyBudget `json:"history"`
}

// Overview returns the budget page data for a month: the (lazily created)
// budget, actual income/expense sums and diffs against plan.
func (s *BudgetService) Overview(ctx context.Context, userID uuid.UUID, month domain.Month) (*BudgetOverview, error) {
	budget, err := s.budgetRepo.GetOrCreate(ctx, userID, month)
	if err != nil {
		return nil, err
	}

	from, to := month.Start(), month.End()
	totalIncome, err := s.transactionRepo.SumRange(ctx, userID, from, to, true)
	if err != nil {
		return nil, err
	}
	totalExpense, err := s.transactionRepo.SumRange(ctx, userID, from, to, false)
	if err != nil {
		return nil, err
	}

	history, err := s.budgetRepo.History(ctx, userID, month, budgetHistoryLimit)
	if err != nil {
		return nil, err
	}

	return &BudgetOverview{
		Budget:       budget,
		TotalIncome:  totalIncome,
		TotalExpense: totalExpense,
		IncomeDiff:   totalIncome.Sub(budget.PlannedIncome),
		ExpenseDiff:  totalExpense.Sub(budget.PlannedExpense),
		History:      history,
	}, nil
}
