package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// MonthlyBudget holds the planned figures for one user-month. A row is
// created lazily the first time a user views or sets a budget for a month
// and is never deleted automatically.
type MonthlyBudget struct {
	ID             int32           `json:"id"`
	UserID         uuid.UUID       `json:"userId"`
	Month          Month           `json:"month"`
	PlannedIncome  decimal.Decimal `json:"plannedIncome"`
	PlannedExpense decimal.Decimal `json:"plannedExpense"`
	CreatedAt      time.Time       `json:"createdAt"`
	UpdatedAt      time.Time       `json:"updatedAt"`
}

type MonthlyBudgetRepository interface {
	// Get returns ErrNotFound when the user has no budget for the month.
	Get(ctx context.Context, userID uuid.UUID, month Month) (*MonthlyBudget, error)
	GetOrCreate(ctx context.Context, userID uuid.UUID, month Month) (*MonthlyBudget, error)
	Upsert(ctx context.Context, userID uuid.UUID, month Month, plannedIncome, plannedExpense decimal.Decimal) (*MonthlyBudget, error)
	// History returns budgets for months up to and including the given one,
	// newest first.
	History(ctx context.Context, userID uuid.UUID, upTo Month, limit int32) ([]*MonthlyBudget, error)
}
