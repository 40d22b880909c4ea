package router

import (
	"channelmarket/internal/adapter/api/middleware"
	"channelmarket/internal/infrastructure/ratelimit"

	"github.com/labstack/echo/v4"
)

func Setup(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, agentMiddleware *middleware.AgentMiddleware, limiter *ratelimit.RateLimiter) {
	SetupListingRouter(e, authMiddleware)
	SetupTransactionRouter(e, authMiddleware, limiter)
	SetupPaymentRouter(e, authMiddleware, limiter)
	SetupChatRouter(e, authMiddleware)
	SetupClaimRouter(e, authMiddleware, agentMiddleware)
	SetupAdminRouter(e, authMiddleware, agentMiddleware)
	SetupWebSocketRouter(e, authMiddleware)
	SetupHealthRouter(e)
}
