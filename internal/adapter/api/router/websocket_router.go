package router

import (
	"channelmarket/internal/adapter/api/handler"
	"channelmarket/internal/adapter/api/middleware"

	"github.com/labstack/echo/v4"
)

func SetupWebSocketRouter(e *echo.Echo, authMiddleware *middleware.AuthMiddleware) {
	webSocketHandler := handler.GetWebSocketHandler()

	e.GET("/v1/ws", webSocketHandler.HandleWebSocket, authMiddleware.AuthenticateQueryToken)
}
