package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/fincontrol/fincontrol-backend/internal/domain"
	"github.com/google/uuid"
)

// LinkService manages telegram account linking via short-lived tokens:
// the website generates a deep link, the bot consumes it.
type LinkService struct {
	linkRepo domain.TelegramLinkTokenRepository
	userRepo domain.UserRepository
	botName  string
}

// NewLinkService creates a new LinkService
func NewLinkService(linkRepo domain.TelegramLinkTokenRepository, userRepo domain.UserRepository, botName string) *LinkService {
	return &LinkService{linkRepo: linkRepo, userRepo: userRepo, botName: botName}
}

// GenerateLink issues a fresh token for the user, replacing any pending one,
// and returns the deep link to open the bot with it.
func (s *LinkService) GenerateLink(ctx context.Context, userID uuid.UUID) (token, url string, err error) {
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return "", "", err
	}

	token = uuid.NewString()
	if _, err := s.linkRepo.Replace(ctx, userID, token); err != nil {
		return "", "", err
	}

	return token, fmt.Sprintf("https://t.me/%s?start=%s", s.botName, token), nil
}

// CompleteLink consumes a token and attaches the telegram chat id to the
// token's owner. Expired tokens are deleted and rejected.
func (s *LinkService) CompleteLink(ctx context.Context, token string, telegramID int64) (*domain.User, error) {
	linkToken, err := s.linkRepo.GetByToken(ctx, token)
	if err != nil {
		if errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrLinkTokenNotFound
		}
		return nil, err
	}

	if linkToken.Expired(time.Now()) {
		_ = s.linkRepo.Delete(ctx, linkToken.UserID)
		return nil, domain.ErrLinkTokenExpired
	}

	user, err := s.userRepo.LinkTelegram(ctx, linkToken.UserID, telegramID)
	if err != nil {
		return nil, err
	}

	if err := s.linkRepo.Delete(ctx, linkToken.UserID); err != nil {
		return nil, err
	}
	return user, nil
}
