package service

import (
	"context"
	"sync"
	"time"

	"github.com/rs/zerolog"
)

// MessageSender delivers a text message to a telegram chat. The bot
// implements it; tests substitute their own.
type MessageSender interface {
	SendMessage(chatID int64, text string) error
}

// DigestWorker is a background worker that sends the daily digest at a
// fixed local wall-clock time.
type DigestWorker struct {
	digestService *DigestService
	sender        MessageSender
	logger        zerolog.Logger
	hour          int
	minute        int
	location      *time.Location
	stopCh        chan struct{}
	doneCh        chan struct{}
	mu            sync.Mutex
	running       bool
}

// DigestWorkerConfig holds configuration for the digest worker
type DigestWorkerConfig struct {
	Hour     int // Local hour of day to send at
	Minute   int
	Location *time.Location
}

// DefaultDigestWorkerConfig returns the 09:00 local default
func DefaultDigestWorkerConfig() DigestWorkerConfig {
	return DigestWorkerConfig{Hour: 9, Minute: 0, Location: time.Local}
}

// NewDigestWorker creates a new digest worker
func NewDigestWorker(digestService *DigestService, sender MessageSender, logger zerolog.Logger, config DigestWorkerConfig) *DigestWorker {
	if config.Location == nil {
		config.Location = time.Local
	}
	if config.Hour < 0 || config.Hour > 23 {
		config.Hour = 9
	}
	if config.Minute < 0 || config.Minute > 59 {
		config.Minute = 0
	}

	return &DigestWorker{
		digestService: digestService,
		sender:        sender,
		logger:        logger.With().Str("component", "digest_worker").Logger(),
		hour:          config.Hour,
		minute:        config.Minute,
		location:      config.Location,
		stopCh:        make(chan struct{}),
		doneCh:        make(chan struct{}),
	}
}

// Start begins waiting for the next send time
func (w *DigestWorker) Start(ctx context.Context) {
	w.mu.Lock()
	if w.running {
		w.mu.Unlock()
		return
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info().
		Int("hour", w.hour).
		Int("minute", w.minute).
		Msg("Starting digest worker")

	go w.run(ctx)
}

// Stop gracefully stops the digest worker
func (w *DigestWorker) Stop() {
	w.mu.Lock()
	if !w.running {
		w.mu.Unlock()
		return
	}
	w.mu.Unlock()

	w.logger.Info().Msg("Stopping digest worker")
	close(w.stopCh)
	<-w.doneCh
	w.logger.Info().Msg("Digest worker stopped")
}

// IsRunning returns whether the worker is currently running
func (w *DigestWorker) IsRunning() bool {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.running
}

func (w *DigestWorker) run(ctx context.Context) {
	defer close(w.doneCh)

	for {
		timer := time.NewTimer(time.Until(w.nextRun(time.Now().In(w.location))))

		select {
		case <-ctx.Done():
			timer.Stop()
			w.setStopped()
			return
		case <-w.stopCh:
			timer.Stop()
			w.setStopped()
			return
		case <-timer.C:
			w.SendAll(ctx, time.Now().In(w.location))
		}
	}
}

func (w *DigestWorker) setStopped() {
	w.mu.Lock()
	w.running = false
	w.mu.Unlock()
}

// nextRun returns the next occurrence of hour:minute strictly after now
func (w *DigestWorker) nextRun(now time.Time) time.Time {
	next := time.Date(now.Year(), now.Month(), now.Day(), w.hour, w.minute, 0, 0, w.location)
	if !next.After(now) {
		next = next.AddDate(0, 0, 1)
	}
	return next
}

// SendAll prepares and delivers the digest batch. One recipient's delivery
// failure is logged and does not abort the rest of the batch.
func (w *DigestWorker) SendAll(ctx context.Context, today time.Time) {
	startTime := time.Now()

	messages, err := w.digestService.PrepareDailyDigests(ctx, today)
	if err != nil {
		w.logger.Error().Err(err).Msg("Failed to prepare daily digests")
		return
	}

	sent := 0
	failed := 0
	for _, msg := range messages {
		select {
		case <-ctx.Done():
			w.logger.Info().Msg("Context cancelled, stopping digest batch")
			return
		case <-w.stopCh:
			w.logger.Info().Msg("Stop signal received, stopping digest batch")
			return
		default:
		}

		if err := w.sender.SendMessage(msg.TelegramID, msg.Text); err != nil {
			w.logger.Error().
				Err(err).
				Int64("chat_id", msg.TelegramID).
				Msg("Failed to deliver daily digest")
			failed++
			continue
		}
		sent++
	}

	w.logger.Info().
		Int("sent", sent).
		Int("failed", failed).
		Dur("elapsed", time.Since(startTime)).
		Msg("Completed daily digest batch")
}
