package router

import (
	"channelmarket/internal/adapter/api/handler"
	"channelmarket/internal/adapter/api/middleware"
	"channelmarket/internal/infrastructure/ratelimit"

	"github.com/labstack/echo/v4"
)

func SetupPaymentRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, limiter *ratelimit.RateLimiter) {
	paymentHandler := handler.GetPaymentHandler()

	payments := e.Group("/v1/payments")
	payments.Use(authMiddleware.Authenticate)
	payments.POST("/checkout-session", paymentHandler.CreateCheckoutSession, middleware.RateLimit(limiter, "create_session"))

	// Webhook endpoint is authenticated by Stripe's signature, not a token.
	e.POST("/v1/webhooks/stripe", paymentHandler.HandleStripeWebhook)
}
