package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

type User struct {
	ID              uuid.UUID  `json:"id"`
	Username        string     `json:"username"`
	Email           string     `json:"email"`
	PasswordHash    string     `json:"-"`
	TelegramID      *int64     `json:"telegramId,omitempty"`
	TelegramLinked  bool       `json:"telegramLinked"`
	SendDailyReport bool       `json:"sendDailyReport"`
	CreatedAt       time.Time  `json:"createdAt"`
	UpdatedAt       time.Time  `json:"updatedAt"`
}

type UserRepository interface {
	Create(ctx context.Context, user *User) (*User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*User, error)
	GetByUsername(ctx context.Context, username string) (*User, error)
	GetByTelegramID(ctx context.Context, telegramID int64) (*User, error)
	LinkTelegram(ctx context.Context, id uuid.UUID, telegramID int64) (*User, error)
	SetDailyReport(ctx context.Context, id uuid.UUID, enabled bool) error
	// GetDigestRecipients returns users with a linked telegram account
	// that opted in to the daily report.
	GetDigestRecipients(ctx context.Context) ([]*User, error)
}
