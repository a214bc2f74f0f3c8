package postgres

import (
	"context"
	"errors"

	"github.com/fincontrol/fincontrol-backend/internal/domain"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// TelegramLinkTokenRepository implements domain.TelegramLinkTokenRepository
// using PostgreSQL. The table is keyed by user, so a user can hold at most
// one pending token.
type TelegramLinkTokenRepository struct {
	pool *pgxpool.Pool
}

// NewTelegramLinkTokenRepository creates a new TelegramLinkTokenRepository
func NewTelegramLinkTokenRepository(pool *pgxpool.Pool) *TelegramLinkTokenRepository {
	return &TelegramLinkTokenRepository{pool: pool}
}

// Replace stores a fresh token for the user, discarding any previous one
func (r *TelegramLinkTokenRepository) Replace(ctx context.Context, userID uuid.UUID, token string) (*domain.TelegramLinkToken, error) {
	row := r.pool.QueryRow(ctx,
		`INSERT INTO telegram_link_tokens (user_id, token)
		 VALUES ($1, $2)
		 ON CONFLICT (user_id) DO UPDATE
		 SET token = EXCLUDED.token, created_at = NOW()
		 RETURNING user_id, token, created_at`,
		userID, token,
	)
	return scanLinkToken(row)
}

// GetByToken retrieves a pending token by its value
func (r *TelegramLinkTokenRepository) GetByToken(ctx context.Context, token string) (*domain.TelegramLinkToken, error) {
	row := r.pool.QueryRow(ctx,
		`SELECT user_id, token, created_at FROM telegram_link_tokens WHERE token = $1`,
		token,
	)

	linkToken, err := scanLinkToken(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, domain.ErrNotFound
		}
		return nil, err
	}
	return linkToken, nil
}

// Delete removes the user's pending token, if any
func (r *TelegramLinkTokenRepository) Delete(ctx context.Context, userID uuid.UUID) error {
	_, err := r.pool.Exec(ctx,
		`DELETE FROM telegram_link_tokens WHERE user_id = $1`, userID)
	return err
}

func scanLinkToken(row pgx.Row) (*domain.TelegramLinkToken, error) {
	var linkToken domain.TelegramLinkToken
	err := row.Scan(&linkToken.UserID, &linkToken.Token, &linkToken.CreatedAt)
	if err != nil {
		return nil, err
	}
	return &linkToken, nil
}
