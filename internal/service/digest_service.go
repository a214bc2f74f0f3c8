package service

import (
	"context"
	"fmt"
	"time"

	"github.com/fincontrol/fincontrol-backend/internal/domain"
)

// DigestMessage is one prepared daily report, addressed by telegram chat id
type DigestMessage struct {
	TelegramID int64
	Text       string
}

// DigestService prepares the daily report messages for users who linked
// telegram and opted in.
type DigestService struct {
	userRepo           domain.UserRepository
	transactionService *TransactionService
}

// NewDigestService creates a new DigestService
func NewDigestService(userRepo domain.UserRepository, transactionService *TransactionService) *DigestService {
	return &DigestService{
		userRepo:           userRepo,
		transactionService: transactionService,
	}
}

// PrepareDailyDigests builds one message per eligible recipient with the
// user's expense sum for the given day. Users without a chat id are skipped.
func (s *DigestService) PrepareDailyDigests(ctx context.Context, today time.Time) ([]DigestMessage, error) {
	recipients, err := s.userRepo.GetDigestRecipients(ctx)
	if err != nil {
		return nil, err
	}

	messages := make([]DigestMessage, 0, len(recipients))
	for _, user := range recipients {
		if user.TelegramID == nil {
			continue
		}

		_, expense, err := s.transactionService.DayTotals(ctx, user.ID, today)
		if err != nil {
			return nil, err
		}

		messages = append(messages, DigestMessage{
			TelegramID: *user.TelegramID,
			Text:       fmt.Sprintf("Daily report:\nSpent today: %s", FormatMoney(expense)),
		})
	}
	return messages, nil
}
