package service

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/fincontrol/fincontrol-backend/internal/domain"
	"github.com/fincontrol/fincontrol-backend/internal/testutil"
	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
)

type digestFixture struct {
	userRepo        *testutil.MockUserRepository
	transactionRepo *testutil.MockTransactionRepository
	digestService   *DigestService
}

func newDigestFixture() *digestFixture {
	userRepo := testutil.NewMockUserRepository()
	transactionRepo := testutil.NewMockTransactionRepository()
	transactionService := NewTransactionService(transactionRepo, testutil.NewMockCategoryRepository())
	return &digestFixture{
		userRepo:        userRepo,
		transactionRepo: transactionRepo,
		digestService:   NewDigestService(userRepo, transactionService),
	}
}

func (f *digestFixture) addRecipient(username string, chatID int64) *domain.User {
	return f.userRepo.AddUser(&domain.User{
		Username:        username,
		TelegramID:      &chatID,
		TelegramLinked:  true,
		SendDailyReport: true,
	})
}

func (f *digestFixture) addExpense(user *domain.User, amount int64, date time.Time) {
	categoryID := int32(len(f.transactionRepo.Categories) + 1)
	f.transactionRepo.Categories[categoryID] = &domain.Category{ID: categoryID, UserID: user.ID, Name: "Food"}
	f.transactionRepo.AddTransaction(&domain.Transaction{
		UserID:     user.ID,
		Amount:     decimal.NewFromInt(amount),
		Date:       date,
		CategoryID: categoryID,
	})
}

func TestPrepareDailyDigests_OnlyLinkedOptedInUsers(t *testing.T) {
	f := newDigestFixture()
	today := time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)

	alice := f.addRecipient("alice", 100)
	f.addExpense(alice, 750, today)

	chatID := int64(200)
	f.userRepo.AddUser(&domain.User{Username: "bob", TelegramID: &chatID, TelegramLinked: true, SendDailyReport: false})
	f.userRepo.AddUser(&domain.User{Username: "carol", SendDailyReport: true})

	messages, err := f.digestService.PrepareDailyDigests(context.Background(), today)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(messages))
	}
	if messages[0].TelegramID != 100 {
		t.Errorf("Expected delivery to chat 100, got %d", messages[0].TelegramID)
	}
	if messages[0].Text != "Daily report:\nSpent today: 750.00 ₽" {
		t.Errorf("Unexpected digest text %q", messages[0].Text)
	}
}

func TestPrepareDailyDigests_ZeroSpendStillReports(t *testing.T) {
	f := newDigestFixture()
	f.addRecipient("alice", 100)
	today := time.Date(2025, time.June, 10, 12, 0, 0, 0, time.UTC)

	messages, err := f.digestService.PrepareDailyDigests(context.Background(), today)
	if err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if len(messages) != 1 {
		t.Fatalf("Expected 1 message, got %d", len(messages))
	}
	if messages[0].Text != "Daily report:\nSpent today: 0.00 ₽" {
		t.Errorf("Unexpected digest text %q", messages[0].Text)
	}
}

func TestSendAll_OneFailureDoesNotAbortBatch(t *testing.T) {
	f := newDigestFixture()
	f.addRecipient("alice", 100)
	f.addRecipient("bob", 200)
	f.addRecipient("carol", 300)

	sender := testutil.NewMockMessageSender()
	sender.FailFor[200] = errors.New("chat not found")

	worker := NewDigestWorker(f.digestService, sender, zerolog.Nop(), DefaultDigestWorkerConfig())
	worker.SendAll(context.Background(), time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC))

	if len(sender.Sent) != 2 {
		t.Fatalf("Expected 2 deliveries, got %d", len(sender.Sent))
	}
	if len(sender.SentTo(100)) != 1 || len(sender.SentTo(300)) != 1 {
		t.Error("Expected alice and carol to receive their digests despite bob's failure")
	}
	if len(sender.SentTo(200)) != 0 {
		t.Error("Expected no recorded delivery for the failing chat")
	}
}

func TestDigestWorker_StartStop(t *testing.T) {
	worker := NewDigestWorker(newDigestFixture().digestService, testutil.NewMockMessageSender(), zerolog.Nop(), DefaultDigestWorkerConfig())

	worker.Start(context.Background())
	if !worker.IsRunning() {
		t.Error("Expected worker to be running after Start")
	}

	worker.Stop()
	if worker.IsRunning() {
		t.Error("Expected worker to be stopped after Stop")
	}
}

func TestDigestWorker_NextRun(t *testing.T) {
	worker := NewDigestWorker(newDigestFixture().digestService, testutil.NewMockMessageSender(), zerolog.Nop(), DigestWorkerConfig{Hour: 9, Minute: 0, Location: time.UTC})

	before := time.Date(2025, time.June, 10, 8, 30, 0, 0, time.UTC)
	if got := worker.nextRun(before); !got.Equal(time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected same-day run, got %v", got)
	}

	after := time.Date(2025, time.June, 10, 9, 0, 0, 0, time.UTC)
	if got := worker.nextRun(after); !got.Equal(time.Date(2025, time.June, 11, 9, 0, 0, 0, time.UTC)) {
		t.Errorf("Expected next-day run when time already passed, got %v", got)
	}
}
