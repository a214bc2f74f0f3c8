package handler

import (
	"github.com/fincontrol/fincontrol-backend/internal/middleware"
	"github.com/labstack/echo/v4"
)

// RegisterRoutes sets up all API routes
func RegisterRoutes(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, rateLimiter *middleware.RateLimiter, authHandler *AuthHandler, categoryHandler *CategoryHandler, transactionHandler *TransactionHandler, budgetHandler *BudgetHandler, reportHandler *ReportHandler, telegramHandler *TelegramHandler, wsHandler *WebSocketHandler) {
	// API version 1
	api := e.Group("/api/v1")

	// Auth routes (register/login/refresh are public)
	auth := api.Group("/auth")
	auth.POST("/register", authHandler.Register)
	auth.POST("/login", authHandler.Login)
	auth.POST("/refresh", authHandler.Refresh)
	auth.GET("/me", authHandler.Me, authMiddleware.Authenticate())

	protect := []echo.MiddlewareFunc{
		authMiddleware.Authenticate(),
		middleware.RateLimitMiddleware(rateLimiter),
	}

	// Category routes (protected)
	categories := api.Group("/categories", protect...)
	categories.POST("", categoryHandler.CreateCategory)
	categories.GET("", categoryHandler.GetCategories)
	categories.PUT("/:id", categoryHandler.UpdateCategory)
	categories.DELETE("/:id", categoryHandler.DeleteCategory)

	// Transaction routes (protected)
	transactions := api.Group("/transactions", protect...)
	transactions.POST("", transactionHandler.CreateTransaction)
	transactions.GET("", transactionHandler.GetTransactions)
	transactions.DELETE("/:id", transactionHandler.DeleteTransaction)

	// Budget routes (protected)
	budgets := api.Group("/budgets", protect...)
	budgets.GET("/:month", budgetHandler.GetBudget)
	budgets.PUT("/:month", budgetHandler.SetBudget)

	// Report routes (protected)
	reports := api.Group("/reports", protect...)
	reports.GET("/budget/:month", reportHandler.GetBudgetReport)

	// Dashboard routes (protected)
	dashboard := api.Group("/dashboard", protect...)
	dashboard.GET("/summary", reportHandler.GetSummary)

	// Telegram routes (protected)
	telegram := api.Group("/telegram", protect...)
	telegram.POST("/link", telegramHandler.GenerateLink)
	telegram.PUT("/daily-report", telegramHandler.SetDailyReport)

	// WebSocket endpoint authenticates via query token
	e.GET("/ws", wsHandler.HandleWS)
}
