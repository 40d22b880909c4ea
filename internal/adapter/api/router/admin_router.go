package router

import (
	"channelmarket/internal/adapter/api/handler"
	"channelmarket/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupAdminRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware, agentMiddleware *middleware.AgentMiddleware) {
	adminHandler := handler.GetAdminHandler()

	admin := e.Group("/v1/admin")
	admin.Use(authMiddleware.Authenticate)
	admin.Use(agentMiddleware.AdminOnly)

	admin.PUT("/users/:id/role", adminHandler.SetUserRole)
	admin.GET("/alerts", adminHandler.ListAlerts)
}
