package router

import (
	"channelmarket/internal/adapter/api/handler"
	"channelmarket/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupClaimRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, agentMiddleware *middleware.AgentMiddleware) {
	claimHandler := handler.GetClaimHandler()
	transactionHandler := handler.GetTransactionHandler()

	// Participants can re-request an agent for their own transaction.
	transactions := e.Group("/v1/transactions")
	transactions.Use(authMiddleware.Authenticate)
	transactions.POST("/:id/request-agent", claimHandler.RequestClaim)

	// Agent endpoints
	agent := e.Group("/v1/agent")
	agent.Use(authMiddleware.Authenticate)
	agent.Use(agentMiddleware.AgentOnly)

	agent.GET("/claims", claimHandler.ListPendingClaims)
	agent.POST("/claims/:id", claimHandler.ClaimTransaction)
	agent.GET("/transactions", transactionHandler.ListTransactions)
}
