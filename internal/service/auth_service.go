package service

import (
	"context"
	"errors"
	"strings"

	"github.com/fincontrol/fincontrol-backend/internal/auth"
	"github.com/fincontrol/fincontrol-backend/internal/domain"
	"github.com/google/uuid"
)

// AuthService handles registration, login and telegram identity resolution
type AuthService struct {
	userRepo domain.UserRepository
	tokens   *auth.TokenManager
}

// NewAuthService creates a new AuthService
func NewAuthService(userRepo domain.UserRepository, tokens *auth.TokenManager) *AuthService {
	return &AuthService{userRepo: userRepo, tokens: tokens}
}

// Register creates a user with a bcrypt-hashed password
func (s *AuthService) Register(ctx context.Context, username, email, password string) (*domain.User, error) {
	username = strings.TrimSpace(username)
	if username == "" {
		return nil, domain.ErrNameRequired
	}
	if len(username) > domain.MaxUsernameLength {
		return nil, domain.ErrNameTooLong
	}

	hash, err := auth.HashPassword(password)
	if err != nil {
		return nil, err
	}

	return s.userRepo.Create(ctx, &domain.User{
		Username:        username,
		Email:           strings.TrimSpace(email),
		PasswordHash:    hash,
		SendDailyReport: true,
	})
}

// Login verifies credentials and issues a token pair
func (s *AuthService) Login(ctx context.Context, username, password string) (*domain.User, auth.TokenPair, error) {
	user, err := s.userRepo.GetByUsername(ctx, strings.TrimSpace(username))
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrNotFound) {
			return nil, auth.TokenPair{}, domain.ErrInvalidCredentials
		}
		return nil, auth.TokenPair{}, err
	}

	if err := auth.ComparePassword(user.PasswordHash, password); err != nil {
		return nil, auth.TokenPair{}, domain.ErrInvalidCredentials
	}

	pair, err := s.tokens.NewTokenPair(user.ID)
	if err != nil {
		return nil, auth.TokenPair{}, err
	}
	return user, pair, nil
}

// Refresh exchanges a valid refresh token for a new token pair
func (s *AuthService) Refresh(ctx context.Context, refreshToken string) (auth.TokenPair, error) {
	userID, err := s.tokens.ParseRefreshToken(refreshToken)
	if err != nil {
		return auth.TokenPair{}, domain.ErrUnauthorized
	}

	// The user must still exist; tokens outlive account deletion otherwise.
	if _, err := s.userRepo.GetByID(ctx, userID); err != nil {
		return auth.TokenPair{}, domain.ErrUnauthorized
	}

	return s.tokens.NewTokenPair(userID)
}

// GetByID returns the user with the given id
func (s *AuthService) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	return s.userRepo.GetByID(ctx, id)
}

// ResolveTelegram maps a telegram chat id to the linked account.
// Unknown or unlinked ids yield ErrNotLinked, never an empty user.
func (s *AuthService) ResolveTelegram(ctx context.Context, telegramID int64) (*domain.User, error) {
	user, err := s.userRepo.GetByTelegramID(ctx, telegramID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) || errors.Is(err, domain.ErrNotFound) {
			return nil, domain.ErrNotLinked
		}
		return nil, err
	}
	if !user.TelegramLinked {
		return nil, domain.ErrNotLinked
	}
	return user, nil
}
