package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Transaction is a single recorded operation. Amounts are always positive;
// whether the money came in or went out is derived from the category.
type Transaction struct {
	ID          int64           `json:"id"`
	UserID      uuid.UUID       `json:"userId"`
	Amount      decimal.Decimal `json:"amount"`
	Date        time.Time       `json:"date"`
	CategoryID  int32           `json:"categoryId"`
	Description string          `json:"description,omitempty"`
	CreatedAt   time.Time       `json:"createdAt"`
}

type TransactionFilters struct {
	From       *time.Time
	To         *time.Time
	CategoryID *int32
	Page       int32
	PageSize   int32
}

const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

type PaginatedTransactions struct {
	Data       []*Transaction `json:"data"`
	Page       int32          `json:"page"`
	PageSize   int32          `json:"pageSize"`
	TotalItems int64          `json:"totalItems"`
	TotalPages int32          `json:"totalPages"`
}

type TransactionRepository interface {
	Create(ctx context.Context, transaction *Transaction) (*Transaction, error)
	GetByID(ctx context.Context, userID uuid.UUID, id int64) (*Transaction, error)
	GetByUser(ctx context.Context, userID uuid.UUID, filters *TransactionFilters) (*PaginatedTransactions, error)
	// ListRange returns every transaction with from <= date < to,
	// ordered by date then id.
	ListRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*Transaction, error)
	// SumRange returns the total amount over [from, to) restricted to
	// categories of the given polarity. An empty range sums to zero.
	SumRange(ctx context.Context, userID uuid.UUID, from, to time.Time, isIncome bool) (decimal.Decimal, error)
	Delete(ctx context.Context, userID uuid.UUID, id int64) error
}
