package service

import (
	"context"
	"strings"
	"time"

	"github.com/fincontrol/fincontrol-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TransactionService handles transaction business logic
type TransactionService struct {
	transactionRepo domain.TransactionRepository
	categoryRepo    domain.CategoryRepository
}

// NewTransactionService creates a new TransactionService
func NewTransactionService(transactionRepo domain.TransactionRepository, categoryRepo domain.CategoryRepository) *TransactionService {
	return &TransactionService{
		transactionRepo: transactionRepo,
		categoryRepo:    categoryRepo,
	}
}

// Create records a transaction after validating the amount and that the
// category belongs to the acting user.
func (s *TransactionService) Create(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, date time.Time, categoryID int32, description string) (*domain.Transaction, error) {
	if !amount.IsPositive() {
		return nil, domain.ErrInvalidAmount
	}

	if _, err := s.categoryRepo.GetByID(ctx, userID, categoryID); err != nil {
		return nil, domain.ErrCategoryNotFound
	}

	return s.transactionRepo.Create(ctx, &domain.Transaction{
		UserID:      userID,
		Amount:      amount,
		Date:        date,
		CategoryID:  categoryID,
		Description: strings.TrimSpace(description),
	})
}

// CreateByCategoryName records a transaction against a category resolved by
// name, case-insensitively. Used by the bot's /add command.
func (s *TransactionService) CreateByCategoryName(ctx context.Context, userID uuid.UUID, amount decimal.Decimal, date time.Time, categoryName, description string) (*domain.Transaction, *domain.Category, error) {
	if !amount.IsPositive() {
		return nil, nil, domain.ErrInvalidAmount
	}

	categories, err := s.categoryRepo.GetAllByUser(ctx, userID)
	if err != nil {
		return nil, nil, err
	}

	category, ok := domain.NewCategoryIndex(categories).Find(categoryName)
	if !ok {
		return nil, nil, domain.ErrCategoryNotFound
	}

	transaction, err := s.transactionRepo.Create(ctx, &domain.Transaction{
		UserID:      userID,
		Amount:      amount,
		Date:        date,
		CategoryID:  category.ID,
		Description: strings.TrimSpace(description),
	})
	if err != nil {
		return nil, nil, err
	}
	return transaction, category, nil
}

// List returns the user's transactions with optional filters and pagination
func (s *TransactionService) List(ctx context.Context, userID uuid.UUID, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	return s.transactionRepo.GetByUser(ctx, userID, filters)
}

// Period names accepted by ListPeriod.
const (
	PeriodToday = "today"
	PeriodWeek  = "week"
	PeriodMonth = "month"
)

// ListPeriod returns the user's transactions within a named period relative
// to now: the current day, the last 7 days, or the current calendar month.
func (s *TransactionService) ListPeriod(ctx context.Context, userID uuid.UUID, period string, now time.Time, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	if filters == nil {
		filters = &domain.TransactionFilters{}
	}

	day := dayStart(now)
	switch period {
	case PeriodToday:
		from, to := day, day.AddDate(0, 0, 1)
		filters.From, filters.To = &from, &to
	case PeriodWeek:
		from, to := day.AddDate(0, 0, -7), day.AddDate(0, 0, 1)
		filters.From, filters.To = &from, &to
	case PeriodMonth:
		month := domain.MonthOf(now)
		from, to := month.Start(), month.End()
		filters.From, filters.To = &from, &to
	case "":
		// no window
	default:
		return nil, domain.ErrNotFound
	}

	return s.transactionRepo.GetByUser(ctx, userID, filters)
}

// Delete removes a transaction owned by the user
func (s *TransactionService) Delete(ctx context.Context, userID uuid.UUID, id int64) error {
	return s.transactionRepo.Delete(ctx, userID, id)
}

// DayTotals returns the income and expense sums for a single day.
// This is the same totals primitive the monthly report uses, scoped to a
// one-day window; the daily digest is built on it.
func (s *TransactionService) DayTotals(ctx context.Context, userID uuid.UUID, day time.Time) (income, expense decimal.Decimal, err error) {
	from := dayStart(day)
	to := from.AddDate(0, 0, 1)

	income, err = s.transactionRepo.SumRange(ctx, userID, from, to, true)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	expense, err = s.transactionRepo.SumRange(ctx, userID, from, to, false)
	if err != nil {
		return decimal.Zero, decimal.Zero, err
	}
	return income, expense, nil
}

// WeekExpenses returns the expense sum over the last 7 days including today
func (s *TransactionService) WeekExpenses(ctx context.Context, userID uuid.UUID, now time.Time) (decimal.Decimal, error) {
	to := dayStart(now).AddDate(0, 0, 1)
	from := to.AddDate(0, 0, -8)
	return s.transactionRepo.SumRange(ctx, userID, from, to, false)
}

func dayStart(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}
