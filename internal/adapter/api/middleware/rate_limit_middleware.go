package middleware

import (
	"net/http"

	"channelmarket/internal/infrastructure/ratelimit"

	"github.com/labstack/echo/v4"
)

// RateLimit applies the named per-user bucket before the handler runs.
// Unauthenticated requests fall back to the client IP as the bucket key.
func RateLimit(limiter *ratelimit.RateLimiter, action string) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			key, ok := c.Get("uid").(string)
			if !ok || key == "" {
				key = c.RealIP()
			}

			allowed, retryAfter := limiter.Allow(key, action)
			if !allowed {
				return c.JSON(http.StatusTooManyRequests, map[string]interface{}{
					"error":       "Rate limit exceeded",
					"retry_after": int(retryAfter.Seconds()),
				})
			}

			return next(c)
		}
	}
}
