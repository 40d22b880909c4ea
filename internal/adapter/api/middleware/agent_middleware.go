package middleware

import (
	"net/http"

	"channelmarket/internal/domain/repository"

	"github.com/labstack/echo/v4"
)

// AgentMiddleware gates routes on the role record stored with the user
// document. Roles are data, not deployment configuration, so a role change
// takes effect on the next request without a restart.
type AgentMiddleware struct {
	userRepo repository.UserRepository
}

func NewAgentMiddleware(userRepo repository.UserRepository) *AgentMiddleware {
	return &AgentMiddleware{
		userRepo: userRepo,
	}
}

func (m *AgentMiddleware) AgentOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		uid, ok := c.Get("uid").(string)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
		}

		user, err := m.userRepo.GetByID(c.Request().Context(), uid)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to verify agent privileges")
		}

		if !user.IsAgent() {
			return echo.NewHTTPError(http.StatusForbidden, "Escrow agent privileges required")
		}

		return next(c)
	}
}

func (m *AgentMiddleware) AdminOnly(next echo.HandlerFunc) echo.HandlerFunc {
	return func(c echo.Context) error {
		uid, ok := c.Get("uid").(string)
		if !ok {
			return echo.NewHTTPError(http.StatusUnauthorized, "Authentication required")
		}

		user, err := m.userRepo.GetByID(c.Request().Context(), uid)
		if err != nil {
			return echo.NewHTTPError(http.StatusInternalServerError, "Failed to verify admin privileges")
		}

		if user.Role != "admin" {
			return echo.NewHTTPError(http.StatusForbidden, "Admin privileges required")
		}

		return next(c)
	}
}
