package postgres

import (
	"context"
	"errors"
	"fmt"

	"github.com/fincontrol/fincontrol-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// MonthlyBudgetRepository implements domain.MonthlyBudgetRepository using
// PostgreSQL. Months are stored as "YYYY-MM" text, so lexicographic order
// is chronological order.
type MonthlyBudgetRepository struct {
	pool *pgxpool.Pool
}

// NewMonthlyBudgetRepository creates a new MonthlyBudgetRepository
func NewMonthlyBudgetRepository(pool *pgxpool.Pool) *MonthlyBudgetRepository {
	return &MonthlyBudgetRepository{pool: pool}
}

const budgetColumns = `id, user_id, month, planned_income, planned_expense, created_at, updated_at`

// Get returns the user's budget for the month, or ErrNotFound
func (r *MonthlyBudgetRepository) Get(ctx context.Context, userID uuid.UUID, month domain.Month) (*domain.MonthlyBudget, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT `+budgetColumns+`
		 FROM monthly_budgets
		 WHERE user_id = $1 AND month = $2`,
		userID, month.String(),
	)

	budget, err := scanBudget(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return budget, nil
}

// GetOrCreate returns the user's budget for the month, inserting a zero
// budget on first view
func (r *MonthlyBudgetRepository) GetOrCreate(ctx context.Context, userID uuid.UUID, month domain.Month) (*domain.MonthlyBudget, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO monthly_budgets (user_id, month, planned_income, planned_expense)
		 VALUES ($1, $2, 0, 0)
		 ON CONFLICT (user_id, month) DO UPDATE SET month = EXCLUDED.month
		 RETURNING `+budgetColumns,
		userID, month.String(),
	)
	return scanBudget(row)
}

// Upsert sets the planned figures for the month, creating the row if needed
func (r *MonthlyBudgetRepository) Upsert(ctx context.Context, userID uuid.UUID, month domain.Month, plannedIncome, plannedExpense decimal.Decimal) (*domain.MonthlyBudget, error) {
	income, err := decimalToPgNumeric(plannedIncome)
	if err != nil {
		return nil, fmt.Errorf("invalid planned income: %w", err)
	}
	expense, err := decimalToPgNumeric(plannedExpense)
	if err != nil {
		return nil, fmt.Errorf("invalid planned expense: %w", err)
	}

	row := r.pool.QueryRow(ctx,
		`INSERT INTO monthly_budgets (user_id, month, planned_income, planned_expense)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (user_id, month) DO UPDATE
		 SET planned_income = EXCLUDED.planned_income,
		     planned_expense = EXCLUDED.planned_expense,
		     updated_at = NOW()
		 RETURNING `+budgetColumns,
		userID, month.String(), income, expense,
	)
	return scanBudget(row)
}

// History returns budgets for months up to and including the given one,
// newest first
func (r *MonthlyBudgetRepository) History(ctx context.Context, userID uuid.UUID, upTo domain.Month, limit int32) ([]*domain.MonthlyBudget, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+budgetColumns+`
		 FROM monthly_budgets
		 WHERE user_id = $1 AND month <= $2
		 ORDER BY month DESC
		 LIMIT $3`,
		userID, upTo.String(), limit,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var budgets []*domain.MonthlyBudget
	for rows.Next() {
		budget, err := scanBudget(rows)
		if err != nil {
			return nil, err
		}
		budgets = append(budgets, budget)
	}
	return budgets, rows.Err()
}

func scanBudget(row pgx.Row) (*domain.MonthlyBudget, error) {
	var (
		budget   domain.MonthlyBudget
		monthStr string
		income   pgtype.Numeric
		expense  pgtype.Numeric
	)
	err := row.Scan(
		&budget.ID,
		&budget.UserID,
		&monthStr,
		&income,
		&expense,
		&budget.CreatedAt,
		&budget.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	month, err := domain.ParseMonth(monthStr)
	if err != nil {
		return nil, fmt.Errorf("stored month %q: %w", monthStr, err)
	}
	budget.Month = month
	budget.PlannedIncome = pgNumericToDecimal(income)
	budget.PlannedExpense = pgNumericToDecimal(expense)
	return &budget, nil
}
