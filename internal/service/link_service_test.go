package service

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/fincontrol/fincontrol-backend/internal/domain"
	"github.com/fincontrol/fincontrol-backend/internal/testutil"
	"github.com/google/uuid"
)

func TestGenerateLink_ReplacesPendingToken(t *testing.T) {
	linkRepo := testutil.NewMockLinkTokenRepository()
	userRepo := testutil.NewMockUserRepository()
	user := userRepo.AddUser(&domain.User{Username: "alice"})
	linkService := NewLinkService(linkRepo, userRepo, "fincontrol_bot")

	first, url, err := linkService.GenerateLink(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !strings.HasPrefix(url, "https://t.me/fincontrol_bot?start=") {
		t.Errorf("Unexpected deep link %q", url)
	}

	second, _, err := linkService.GenerateLink(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if first == second {
		t.Error("Expected regeneration to produce a fresh token")
	}
	if _, err := linkRepo.GetByToken(context.Background(), first); err != domain.ErrNotFound {
		t.Errorf("Expected the old token to be replaced, got %v", err)
	}
}

func TestCompleteLink_Success(t *testing.T) {
	linkRepo := testutil.NewMockLinkTokenRepository()
	userRepo := testutil.NewMockUserRepository()
	user := userRepo.AddUser(&domain.User{Username: "alice"})
	linkService := NewLinkService(linkRepo, userRepo, "fincontrol_bot")

	token, _, err := linkService.GenerateLink(context.Background(), user.ID)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}

	linked, err := linkService.CompleteLink(context.Background(), token, 424242)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if !linked.TelegramLinked || linked.TelegramID == nil || *linked.TelegramID != 424242 {
		t.Errorf("Expected user to be linked to 424242, got %+v", linked)
	}

	// Token is single-use
	if _, err := linkService.CompleteLink(context.Background(), token, 424242); err != domain.ErrLinkTokenNotFound {
		t.Errorf("Expected consumed token to be gone, got %v", err)
	}
}

func TestCompleteLink_Expired(t *testing.T) {
	linkRepo := testutil.NewMockLinkTokenRepository()
	userRepo := testutil.NewMockUserRepository()
	user := userRepo.AddUser(&domain.User{Username: "alice"})
	linkService := NewLinkService(linkRepo, userRepo, "fincontrol_bot")

	token := uuid.NewString()
	linkRepo.Tokens[user.ID] = &domain.TelegramLinkToken{
		UserID:    user.ID,
		Token:     token,
		CreatedAt: time.Now().Add(-domain.LinkTokenTTL - time.Minute),
	}

	if _, err := linkService.CompleteLink(context.Background(), token, 424242); err != domain.ErrLinkTokenExpired {
		t.Errorf("Expected ErrLinkTokenExpired, got %v", err)
	}
	if len(linkRepo.Tokens) != 0 {
		t.Error("Expected the expired token to be deleted")
	}
}

func TestCompleteLink_UnknownToken(t *testing.T) {
	linkService := NewLinkService(testutil.NewMockLinkTokenRepository(), testutil.NewMockUserRepository(), "fincontrol_bot")

	if _, err := linkService.CompleteLink(context.Background(), uuid.NewString(), 1); err != domain.ErrLinkTokenNotFound {
		t.Errorf("Expected ErrLinkTokenNotFound, got %v", err)
	}
}
