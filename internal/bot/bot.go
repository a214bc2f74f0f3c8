package bot

import (
	"context"
	"sync"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"
	"github.com/rs/zerolog"

	"github.com/fincontrol/fincontrol-backend/internal/service"
)

// updateTimeout is the long-polling timeout in seconds
const updateTimeout = 30

// Bot is the telegram front end. It long-polls for updates, dispatches
// commands against the same services the HTTP API uses, and doubles as the
// digest worker's message sender.
type Bot struct {
	api                *tgbotapi.BotAPI
	authService        *service.AuthService
	linkService        *service.LinkService
	transactionService *service.TransactionService
	categoryService    *service.CategoryService
	budgetService      *service.BudgetService
	analysisService    *service.AnalysisService
	logger             zerolog.Logger

	stopCh  chan struct{}
	doneCh  chan struct{}
	mu      sync.Mutex
	running bool
}

// New creates a new Bot using the given bot token
func New(
	token string,
	authService *service.AuthService,
	linkService *service.LinkService,
	transactionService *service.TransactionService,
	categoryService *service.CategoryService,
	budgetService *service.BudgetService,
	analysisService *service.AnalysisService,
	logger zerolog.Logger,
) (*Bot, error) {
	api, err := tgbotapi.NewBotAPI(token)
	if err != nil {
		return nil, err
	}

	return &Bot{
		api:                api,
		authService:        authService,
		linkService:        linkService,
		transactionService: transactionService,
		categoryService:    categoryService,
		budgetService:      budgetService,
		analysisService:    analysisService,
		logger:             logger.With().Str("component", "bot").Logger(),
		stopCh:             make(chan struct{}),
		doneCh:             make(chan struct{}),
	}, nil
}

// Username returns the bot's telegram username
func (b *Bot) Username() string {
	return b.api.Self.UserName
}

// SendMessage implements service.MessageSender
func (b *Bot) SendMessage(chatID int64, text string) error {
	_, err := b.api.Send(tgbotapi.NewMessage(chatID, text))
	return err
}

// Start begins long-polling for updates
func (b *Bot) Start(ctx context.Context) {
	b.mu.Lock()
	if b.running {
		b.mu.Unlock()
		return
	}
	b.running = true
	b.mu.Unlock()

	b.logger.Info().Str("username", b.Username()).Msg("Starting telegram bot")

	go b.run(ctx)
}

// Stop gracefully stops the bot
func (b *Bot) Stop() {
	b.mu.Lock()
	if !b.running {
		b.mu.Unlock()
		return
	}
	b.mu.Unlock()

	b.logger.Info().Msg("Stopping telegram bot")
	close(b.stopCh)
	b.api.StopReceivingUpdates()
	<-b.doneCh
	b.logger.Info().Msg("Telegram bot stopped")
}

// IsRunning returns whether the bot is currently polling
func (b *Bot) IsRunning() bool {
	b.mu.Lock()
	defer b.mu.Unlock()
	return b.running
}

func (b *Bot) run(ctx context.Context) {
	defer close(b.doneCh)

	updateConfig := tgbotapi.NewUpdate(0)
	updateConfig.Timeout = updateTimeout
	updates := b.api.GetUpdatesChan(updateConfig)

	for {
		select {
		case <-ctx.Done():
			b.setStopped()
			return
		case <-b.stopCh:
			b.setStopped()
			return
		case update, ok := <-updates:
			if !ok {
				b.setStopped()
				return
			}
			if update.Message == nil {
				continue
			}
			b.handleMessage(ctx, update.Message)
		}
	}
}

func (b *Bot) setStopped() {
	b.mu.Lock()
	b.running = false
	b.mu.Unlock()
}

// handleMessage dispatches one incoming message. A failing handler is
// logged and answered with a generic error; it never stops the poll loop.
func (b *Bot) handleMessage(ctx context.Context, msg *tgbotapi.Message) {
	if !msg.IsCommand() {
		b.reply(msg.Chat.ID, helpText)
		return
	}

	var (
		text string
		err  error
	)

	switch msg.Command() {
	case "start":
		text, err = b.handleStart(ctx, msg)
	case "today":
		text, err = b.handleToday(ctx, msg)
	case "week":
		text, err = b.handleWeek(ctx, msg)
	case "month":
		text, err = b.handleMonth(ctx, msg)
	case "add":
		text, err = b.handleAdd(ctx, msg)
	case "newcategory":
		text, err = b.handleNewCategory(ctx, msg)
	case "budget":
		text, err = b.handleBudget(ctx, msg)
	case "recommendations":
		text, err = b.handleRecommendations(ctx, msg)
	case "help":
		text = helpText
	default:
		text = "Unknown command. Send /help for the list of commands."
	}

	if err != nil {
		b.logger.Error().
			Err(err).
			Str("command", msg.Command()).
			Int64("chat_id", msg.Chat.ID).
			Msg("Command failed")
		if text == "" {
			text = "Something went wrong, please try again."
		}
	}

	b.reply(msg.Chat.ID, text)
}

func (b *Bot) reply(chatID int64, text string) {
	if text == "" {
		return
	}
	if err := b.SendMessage(chatID, text); err != nil {
		b.logger.Error().Err(err).Int64("chat_id", chatID).Msg("Failed to send reply")
	}
}
