package main

import (
	"context"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/fincontrol/fincontrol-backend/internal/auth"
	"github.com/fincontrol/fincontrol-backend/internal/bot"
	"github.com/fincontrol/fincontrol-backend/internal/config"
	"github.com/fincontrol/fincontrol-backend/internal/handler"
	"github.com/fincontrol/fincontrol-backend/internal/middleware"
	"github.com/fincontrol/fincontrol-backend/internal/repository/postgres"
	"github.com/fincontrol/fincontrol-backend/internal/service"
	"github.com/fincontrol/fincontrol-backend/internal/storage"
	"github.com/fincontrol/fincontrol-backend/internal/websocket"
)

func main() {
	// Initialize zerolog
	zerolog.TimeFieldFormat = zerolog.TimeFormatUnix
	if os.Getenv("ENV") != "production" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr})
	}

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load configuration")
	}

	// Run database migrations
	if err := storage.RunMigrations(cfg.DatabaseURL); err != nil {
		log.Fatal().Err(err).Msg("Failed to run migrations")
	}
	log.Info().Msg("Migrations applied")

	// Connect to database
	pool, err := pgxpool.New(context.Background(), cfg.DatabaseURL)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pool.Close()

	// Verify database connection
	if err := pool.Ping(context.Background()); err != nil {
		log.Fatal().Err(err).Msg("Failed to ping database")
	}
	log.Info().Msg("Connected to database")

	// Initialize repositories
	userRepo := postgres.NewUserRepository(pool)
	categoryRepo := postgres.NewCategoryRepository(pool)
	transactionRepo := postgres.NewTransactionRepository(pool)
	budgetRepo := postgres.NewMonthlyBudgetRepository(pool)
	linkRepo := postgres.NewTelegramLinkTokenRepository(pool)

	// Initialize services
	tokens := auth.NewTokenManager(cfg.JWT.Secret, cfg.JWT.Issuer, cfg.JWT.AccessTTL, cfg.JWT.RefreshTTL)
	authService := service.NewAuthService(userRepo, tokens)
	categoryService := service.NewCategoryService(categoryRepo)
	transactionService := service.NewTransactionService(transactionRepo, categoryRepo)
	budgetService := service.NewBudgetService(budgetRepo, transactionRepo)
	analysisService := service.NewAnalysisService(userRepo, transactionRepo, categoryRepo, budgetRepo)
	linkService := service.NewLinkService(linkRepo, userRepo, cfg.Telegram.BotName)
	digestService := service.NewDigestService(userRepo, transactionService)

	// Initialize middleware
	authMiddleware := middleware.NewAuthMiddleware(tokens)
	rateLimiter := middleware.NewRateLimiter()
	defer rateLimiter.Stop()

	// Initialize websocket hub
	hub := websocket.NewHub()

	// Initialize handlers
	authHandler := handler.NewAuthHandler(authService)
	categoryHandler := handler.NewCategoryHandler(categoryService, hub)
	transactionHandler := handler.NewTransactionHandler(transactionService, hub)
	budgetHandler := handler.NewBudgetHandler(budgetService, hub)
	reportHandler := handler.NewReportHandler(analysisService, transactionService)
	telegramHandler := handler.NewTelegramHandler(linkService, userRepo)
	wsHandler := handler.NewWebSocketHandler(hub, tokens, cfg.CORSOrigins)

	// Create Echo instance
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.Validator = handler.NewValidator()

	// Request ID middleware
	e.Use(echomiddleware.RequestID())

	// CORS middleware
	e.Use(echomiddleware.CORSWithConfig(echomiddleware.CORSConfig{
		AllowOrigins:     cfg.CORSOrigins,
		AllowMethods:     []string{http.MethodGet, http.MethodPost, http.MethodPut, http.MethodPatch, http.MethodDelete, http.MethodOptions},
		AllowHeaders:     []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	// Security headers middleware
	e.Use(echomiddleware.SecureWithConfig(echomiddleware.SecureConfig{
		XSSProtection:      "1; mode=block",
		ContentTypeNosniff: "nosniff",
		XFrameOptions:      "DENY",
		HSTSMaxAge:         31536000,
		ReferrerPolicy:     "strict-origin-when-cross-origin",
	}))

	// Request logging middleware with zerolog
	e.Use(zerologMiddleware())

	// Recovery middleware
	e.Use(echomiddleware.Recover())

	// Health check endpoint
	e.GET("/health", func(c echo.Context) error {
		return c.JSON(http.StatusOK, map[string]string{"status": "ok"})
	})

	// Register API routes
	handler.RegisterRoutes(e, authMiddleware, rateLimiter, authHandler, categoryHandler, transactionHandler, budgetHandler, reportHandler, telegramHandler, wsHandler)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	// Start telegram bot and digest worker when a token is configured
	var (
		tgBot        *bot.Bot
		digestWorker *service.DigestWorker
	)
	if cfg.Telegram.Token != "" {
		tgBot, err = bot.New(cfg.Telegram.Token, authService, linkService, transactionService, categoryService, budgetService, analysisService, log.Logger)
		if err != nil {
			log.Fatal().Err(err).Msg("Failed to create telegram bot")
		}
		tgBot.Start(ctx)

		digestWorker = service.NewDigestWorker(digestService, tgBot, log.Logger, service.DigestWorkerConfig{
			Hour:     cfg.Digest.Hour,
			Minute:   cfg.Digest.Minute,
			Location: cfg.DigestLocation(),
		})
		digestWorker.Start(ctx)
	} else {
		log.Info().Msg("Telegram bot disabled, no token configured")
	}

	// Start server in goroutine
	go func() {
		log.Info().Str("port", cfg.Port).Msg("Starting server")
		if err := e.Start(":" + cfg.Port); err != nil && err != http.ErrServerClosed {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	// Graceful shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Info().Msg("Shutting down server...")

	if digestWorker != nil {
		digestWorker.Stop()
	}
	if tgBot != nil {
		tgBot.Stop()
	}

	shutdownCtx, shutdownCancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer shutdownCancel()

	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Fatal().Err(err).Msg("Server forced to shutdown")
	}

	log.Info().Msg("Server exited")
}

// zerologMiddleware returns a middleware that logs requests using zerolog
func zerologMiddleware() echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			start := time.Now()

			err := next(c)
			if err != nil {
				c.Error(err)
			}

			req := c.Request()
			res := c.Response()

			log.Info().
				Str("method", req.Method).
				Str("path", req.URL.Path).
				Int("status", res.Status).
				Dur("latency", time.Since(start)).
				Str("request_id", res.Header().Get(echo.HeaderXRequestID)).
				Msg("request")

			return nil
		}
	}
}
