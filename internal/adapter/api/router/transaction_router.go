package router

import (
	"channelmarket/internal/adapter/api/handler"
	"channelmarket/internal/adapter/api/middleware"
	"channelmarket/internal/infrastructure/ratelimit"

	"github.com/labstack/echo/v4"
)

func SetupTransactionRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, limiter *ratelimit.RateLimiter) {
	transactionHandler := handler.GetTransactionHandler()
	chatHandler := handler.GetChatHandler()

	transactions := e.Group("/v1/transactions")
	transactions.Use(authMiddleware.Authenticate)

	transactions.POST("", transactionHandler.CreateTransaction, middleware.RateLimit(limiter, "create_transaction"))
	transactions.GET("", transactionHandler.ListTransactions)
	transactions.GET("/:id", transactionHandler.GetTransaction)
	transactions.POST("/:id/resolve", transactionHandler.ResolveTransaction)
	transactions.POST("/:id/fail", transactionHandler.FailTransaction)
	transactions.GET("/:id/logs", transactionHandler.GetTransactionLogs)

	// Thread messages live under the transaction they belong to.
	transactions.GET("/:id/messages", chatHandler.ListMessages)
	transactions.POST("/:id/messages", chatHandler.PostMessage)
}
