package postgres

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fincontrol/fincontrol-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/shopspring/decimal"
)

// TransactionRepository implements domain.TransactionRepository using PostgreSQL
type TransactionRepository struct {
	pool *pgxpool.Pool
}

// NewTransactionRepository creates a new TransactionRepository
func NewTransactionRepository(pool *pgxpool.Pool) *TransactionRepository {
	return &TransactionRepository{pool: pool}
}

// Create creates a new transaction
func (r *TransactionRepository) Create(ctx context.Context, transaction *domain.Transaction) (*domain.Transaction, error) {
	amount, err := decimalToPgNumeric(transaction.Amount)
	if err != nil {
		return nil, fmt.Errorf("invalid amount: %w", err)
	}

	row := r.pool.QueryRow(ctx,
		`INSERT INTO transactions (user_id, amount, date, category_id, description)
		 VALUES ($1, $2, $3, $4, $5)
		 RETURNING id, user_id, amount, date, category_id, description, created_at`,
		transaction.UserID, amount, timeToPgDate(transaction.Date), transaction.CategoryID, transaction.Description,
	)

	return scanTransaction(row)
}

// GetByID retrieves a transaction owned by the user
func (r *TransactionRepository) GetByID(ctx context.Context, userID uuid.UUID, id int64) (*domain.Transaction, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT id, user_id, amount, date, category_id, description, created_at
		 FROM transactions
		 WHERE id = $1 AND user_id = $2`,
		id, userID,
	)

	transaction, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return transaction, nil
}

// GetByUser retrieves a page of the user's transactions, newest first
func (r *TransactionRepository) GetByUser(ctx context.Context, userID uuid.UUID, filters *domain.TransactionFilters) (*domain.PaginatedTransactions, error) {
	if filters == nil {
		filters = &domain.TransactionFilters{}
	}
	page := filters.Page
	if page < 1 {
		page = 1
	}
	pageSize := filters.PageSize
	if pageSize < 1 {
		pageSize = domain.DefaultPageSize
	}
	if pageSize > domain.MaxPageSize {
		pageSize = domain.MaxPageSize
	}

	where := `user_id = $1`
	args := []any{userID}
	if filters.From != nil {
		args = append(args, timeToPgDate(*filters.From))
		where += fmt.Sprintf(` AND date >= $%d`, len(args))
	}
	if filters.To != nil {
		args = append(args, timeToPgDate(*filters.To))
		where += fmt.Sprintf(` AND date < $%d`, len(args))
	}
	if filters.CategoryID != nil {
		args = append(args, *filters.CategoryID)
		where += fmt.Sprintf(` AND category_id = $%d`, len(args))
	}

	var totalItems int64
	if err := r.pool.QueryRow(ctx,
		`SELECT COUNT(*) FROM transactions WHERE `+where, args...,
	).Scan(&totalItems); err != nil {
		return nil, err
	}

	args = append(args, pageSize, (page-1)*pageSize)
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, amount, date, category_id, description, created_at
		 FROM transactions
		 WHERE `+where+`
		 ORDER BY date DESC, id DESC
		 LIMIT $`+fmt.Sprint(len(args)-1)+` OFFSET $`+fmt.Sprint(len(args)),
		args...,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	transactions := make([]*domain.Transaction, 0, pageSize)
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, transaction)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}

	return &domain.PaginatedTransactions{
		Data:       transactions,
		Page:       page,
		PageSize:   pageSize,
		TotalItems: totalItems,
		TotalPages: int32((totalItems + int64(pageSize) - 1) / int64(pageSize)),
	}, nil
}

// ListRange returns every transaction with from <= date < to, ordered by
// date then id
func (r *TransactionRepository) ListRange(ctx context.Context, userID uuid.UUID, from, to time.Time) ([]*domain.Transaction, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT id, user_id, amount, date, category_id, description, created_at
		 FROM transactions
		 WHERE user_id = $1 AND date >= $2 AND date < $3
		 ORDER BY date, id`,
		userID, timeToPgDate(from), timeToPgDate(to),
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var transactions []*domain.Transaction
	for rows.Next() {
		transaction, err := scanTransaction(rows)
		if err != nil {
			return nil, err
		}
		transactions = append(transactions, transaction)
	}
	return transactions, rows.Err()
}

// SumRange returns the total over [from, to) restricted to categories of
// the given polarity
func (r *TransactionRepository) SumRange(ctx context.Context, userID uuid.UUID, from, to time.Time, isIncome bool) (decimal.Decimal, error) {
	var sum pgtype.Numeric
	err := r.pool.QueryRow(ctx,
		`SELECT COALESCE(SUM(t.amount), 0)
		 FROM transactions t
		 JOIN categories c ON c.id = t.category_id
		 WHERE t.user_id = $1 AND t.date >= $2 AND t.date < $3 AND c.is_income = $4`,
		userID, timeToPgDate(from), timeToPgDate(to), isIncome,
	).Scan(&sum)
	if err != nil {
		return decimal.Zero, err
	}
	return pgNumericToDecimal(sum), nil
}

// Delete removes a transaction owned by the user
func (r *TransactionRepository) Delete(ctx context.Context, userID uuid.UUID, id int64) error {
	tag, err := r.pool.Exec(ctx,
		`DELETE FROM transactions WHERE id = $1 AND user_id = $2`, id, userID)
	if err != nil {
		return err
	}
	if tag.RowsAffected() == 0 {
		return domain.ErrNotFound
	}
	return nil
}

func scanTransaction(row pgx.Row) (*domain.Transaction, error) {
	var (
		transaction domain.Transaction
		amount      pgtype.Numeric
		date        pgtype.Date
	)
	err := row.Scan(
		&transaction.ID,
		&transaction.UserID,
		&amount,
		&date,
		&transaction.CategoryID,
		&transaction.Description,
		&transaction.CreatedAt,
	)
	if err != nil {
		return nil, err
	}
	transaction.Amount = pgNumericToDecimal(amount)
	transaction.Date = date.Time
	return &transaction, nil
}
