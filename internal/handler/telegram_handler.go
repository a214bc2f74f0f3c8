package handler

import (
	"errors"
	"net/http"

	"github.com/fincontrol/fincontrol-backend/internal/domain"
	"github.com/fincontrol/fincontrol-backend/internal/middleware"
	"github.com/fincontrol/fincontrol-backend/internal/service"
	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/rs/zerolog/log"
)

// TelegramHandler handles telegram account linking requests
type TelegramHandler struct {
	linkService *service.LinkService
	userRepo    domain.UserRepository
}

// NewTelegramHandler creates a new TelegramHandler
func NewTelegramHandler(linkService *service.LinkService, userRepo domain.UserRepository) *TelegramHandler {
	return &TelegramHandler{
		linkService: linkService,
		userRepo:    userRepo,
	}
}

// LinkResponse carries the generated link token and the bot deep link
type LinkResponse struct {
	Token     string `json:"token"`
	URL       string `json:"url"`
	ExpiresIn int    `json:"expiresInSeconds"`
}

// DailyReportRequest represents the daily report opt-in request body
type DailyReportRequest struct {
	Enabled *bool `json:"enabled" validate:"required"`
}

// GenerateLink handles POST /telegram/link
func (h *TelegramHandler) GenerateLink(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	token, url, err := h.linkService.GenerateLink(c.Request().Context(), userID)
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return NewUnauthorizedError(c, "User no longer exists")
		}
		log.Error().Err(err).Msg("Failed to generate telegram link")
		return NewInternalError(c, "Failed to generate link")
	}

	return c.JSON(http.StatusCreated, LinkResponse{
		Token:     token,
		URL:       url,
		ExpiresIn: int(domain.LinkTokenTTL.Seconds()),
	})
}

// SetDailyReport handles PUT /telegram/daily-report
func (h *TelegramHandler) SetDailyReport(c echo.Context) error {
	userID := middleware.GetUserID(c)
	if userID == uuid.Nil {
		return NewUnauthorizedError(c, "Authentication required")
	}

	var req DailyReportRequest
	if err := c.Bind(&req); err != nil {
		return NewValidationError(c, "Invalid request body", nil)
	}
	if err := c.Validate(&req); err != nil {
		return NewValidationError(c, "Validation failed", nil)
	}

	if err := h.userRepo.SetDailyReport(c.Request().Context(), userID, *req.Enabled); err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return NewUnauthorizedError(c, "User no longer exists")
		}
		log.Error().Err(err).Msg("Failed to update daily report setting")
		return NewInternalError(c, "Failed to update setting")
	}

	return c.JSON(http.StatusOK, map[string]bool{"enabled": *req.Enabled})
}
