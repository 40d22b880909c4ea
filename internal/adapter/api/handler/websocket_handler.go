package handler

import (
	"net/http"
	"net/url"

	gorillaws "github.com/gorilla/websocket"
	"github.com/labstack/echo/v4"

	"channelmarket/internal/infrastructure/realtime"
	"channelmarket/pkg/errors"
)

type WebSocketHandler struct {
	hub      *realtime.Hub
	upgrader gorillaws.Upgrader
}

func NewWebSocketHandler(hub *realtime.Hub, allowedOrigins []string) *WebSocketHandler {
	allowed := make(map[string]bool, len(allowedOrigins))
	for _, origin := range allowedOrigins {
		allowed[origin] = true
	}

	h := &WebSocketHandler{hub: hub}
	h.upgrader = gorillaws.Upgrader{
		ReadBufferSize:  1024,
		WriteBufferSize: 1024,
		CheckOrigin: func(r *http.Request) bool {
			return originAllowed(allowed, r.Header.Get("Origin"))
		},
	}
	return h
}

// originAllowed admits non-browser clients, which send no Origin header, and
// browsers on one of the configured checkout origins.
func originAllowed(allowed map[string]bool, origin string) bool {
	if origin == "" {
		return true
	}
	parsed, err := url.Parse(origin)
	if err != nil || parsed.Scheme == "" || parsed.Host == "" {
		return false
	}
	return allowed[parsed.Scheme+"://"+parsed.Host]
}

func (h *WebSocketHandler) HandleWebSocket(c echo.Context) error {
	userID, ok := c.Get("uid").(string)
	if !ok || userID == "" {
		return errors.Unauthorized("Authentication required", nil)
	}

	conn, err := h.upgrader.Upgrade(c.Response(), c.Request(), nil)
	if err != nil {
		return errors.Internal("Failed to upgrade connection", err)
	}

	client := &realtime.Client{
		UserID: userID,
		Conn:   conn,
		Send:   make(chan []byte, 256),
	}

	h.hub.Register <- client

	go client.ReadPump(h.hub)
	go client.WritePump()

	return nil
}
