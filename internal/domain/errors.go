package domain

import "errors"

// Domain errors
var (
	ErrNotFound           = errors.New("resource not found")
	ErrUserNotFound       = errors.New("user not found")
	ErrNotLinked          = errors.New("account is not linked to telegram")
	ErrInvalidAmount      = errors.New("amount must be a positive number")
	ErrCategoryNotFound   = errors.New("category not found")
	ErrCategoryExists     = errors.New("category with this name already exists")
	ErrCategoryInUse      = errors.New("category has transactions and cannot be deleted")
	ErrInvalidMonth       = errors.New("month must be in YYYY-MM format")
	ErrInvalidBudget      = errors.New("planned budget values must not be negative")
	ErrLinkTokenNotFound  = errors.New("link token not found")
	ErrLinkTokenExpired   = errors.New("link token has expired")
	ErrInvalidCredentials = errors.New("invalid username or password")
	ErrUsernameTaken      = errors.New("username is already taken")
	ErrNameRequired       = errors.New("name is required")
	ErrNameTooLong        = errors.New("name exceeds maximum length")
	ErrUnauthorized       = errors.New("unauthorized")
)

// Validation constants
const (
	MaxCategoryNameLength = 50
	MaxUsernameLength     = 150
)
