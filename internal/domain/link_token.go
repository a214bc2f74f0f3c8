package domain

import (
	"context"
	"time"

	"github.com/google/uuid"
)

// LinkTokenTTL is how long a generated telegram link token stays valid.
const LinkTokenTTL = 5 * time.Minute

// TelegramLinkToken is a single-use token that ties a website session to a
// telegram chat. A user has at most one pending token; regenerating
// replaces it.
type TelegramLinkToken struct {
	UserID    uuid.UUID `json:"userId"`
	Token     string    `json:"token"`
	CreatedAt time.Time `json:"createdAt"`
}

// Expired reports whether the token is past its TTL at the given time
func (t *TelegramLinkToken) Expired(now time.Time) bool {
	return now.Sub(t.CreatedAt) > LinkTokenTTL
}

type TelegramLinkTokenRepository interface {
	// Replace stores a fresh token for the user, discarding any previous one.
	Replace(ctx context.Context, userID uuid.UUID, token string) (*TelegramLinkToken, error)
	GetByToken(ctx context.Context, token string) (*TelegramLinkToken, error)
	Delete(ctx context.Context, userID uuid.UUID) error
}
