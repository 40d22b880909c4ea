package realtime

import (
	"context"
	"encoding/json"
	"log"
	"sync"

	"github.com/gorilla/websocket"
)

// Client represents one authenticated WebSocket connection.
type Client struct {
	UserID string
	Conn   *websocket.Conn
	Send   chan []byte
}

// ThreadAuthorizer reports whether a user may subscribe to a transaction's
// event stream. Joins are gated the same way the HTTP read paths are.
type ThreadAuthorizer func(ctx context.Context, transactionID, userID string) bool

// Hub fans chat events out to connected participants. It is a delivery
// convenience only: the append-log store remains the source of truth, and a
// subscriber that missed a broadcast recovers by reading the log.
type Hub struct {
	clients    map[string]*Client
	threads    map[string]map[string]bool // transactionID -> set of userIDs
	authorize  ThreadAuthorizer
	Register   chan *Client
	Unregister chan *Client
	mutex      sync.RWMutex
}

func NewHub(authorize ThreadAuthorizer) *Hub {
	return &Hub{
		clients:    make(map[string]*Client),
		threads:    make(map[string]map[string]bool),
		authorize:  authorize,
		Register:   make(chan *Client),
		Unregister: make(chan *Client),
	}
}

// Start runs the hub's main loop in a goroutine.
func (h *Hub) Start(ctx context.Context) {
	go func() {
		for {
			select {
			case client := <-h.Register:
				h.mutex.Lock()
				h.clients[client.UserID] = client
				h.mutex.Unlock()
				log.Printf("Realtime client registered: %s", client.UserID)

			case client := <-h.Unregister:
				h.mutex.Lock()
				if _, ok := h.clients[client.UserID]; ok {
					delete(h.clients, client.UserID)
					close(client.Send)
				}
				for _, members := range h.threads {
					delete(members, client.UserID)
				}
				h.mutex.Unlock()
				log.Printf("Realtime client unregistered: %s", client.UserID)

			case <-ctx.Done():
				return
			}
		}
	}()
}

// JoinThread subscribes a connected user to a transaction's event stream.
// Non-participants are dropped; knowing a transaction id is not enough to
// read its events.
func (h *Hub) JoinThread(ctx context.Context, transactionID, userID string) {
	if h.authorize == nil || !h.authorize(ctx, transactionID, userID) {
		log.Printf("Realtime join denied: user=%s transaction=%s", userID, transactionID)
		return
	}

	h.mutex.Lock()
	defer h.mutex.Unlock()

	if h.threads[transactionID] == nil {
		h.threads[transactionID] = make(map[string]bool)
	}
	h.threads[transactionID][userID] = true
}

func (h *Hub) LeaveThread(transactionID, userID string) {
	h.mutex.Lock()
	defer h.mutex.Unlock()

	delete(h.threads[transactionID], userID)
}

// SendToUser delivers a payload to one user if connected.
func (h *Hub) SendToUser(userID string, message []byte) {
	h.mutex.RLock()
	client, ok := h.clients[userID]
	h.mutex.RUnlock()

	if !ok {
		return
	}

	select {
	case client.Send <- message:
	default:
		// Slow consumer; the log store still has the event.
	}
}

// SendToThread delivers a payload to every subscribed participant except the
// sender.
func (h *Hub) SendToThread(transactionID string, message []byte, excludeUserID string) {
	h.mutex.RLock()
	members := make([]string, 0, len(h.threads[transactionID]))
	for userID := range h.threads[transactionID] {
		if userID != excludeUserID {
			members = append(members, userID)
		}
	}
	h.mutex.RUnlock()

	for _, userID := range members {
		h.SendToUser(userID, message)
	}
}

// BroadcastEvent marshals a typed notification and fans it out.
func (h *Hub) BroadcastEvent(transactionID string, payload interface{}, excludeUserID string) {
	message, err := json.Marshal(payload)
	if err != nil {
		log.Printf("Realtime broadcast marshal error: %v", err)
		return
	}
	h.SendToThread(transactionID, message, excludeUserID)
}

// ReadPump drains the connection until it closes. Inbound frames carry only
// join/leave commands; messages themselves go through the HTTP API so they
// hit the append log.
func (c *Client) ReadPump(h *Hub) {
	defer func() {
		h.Unregister <- c
		c.Conn.Close()
	}()

	for {
		_, message, err := c.Conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				log.Printf("websocket read error: %v", err)
			}
			break
		}

		var cmd struct {
			Type          string `json:"type"`
			TransactionID string `json:"transaction_id"`
		}
		if err := json.Unmarshal(message, &cmd); err != nil {
			continue
		}

		switch cmd.Type {
		case "join_thread":
			h.JoinThread(context.Background(), cmd.TransactionID, c.UserID)
		case "leave_thread":
			h.LeaveThread(cmd.TransactionID, c.UserID)
		}
	}
}

// WritePump sends queued payloads to the WebSocket connection.
func (c *Client) WritePump() {
	defer c.Conn.Close()

	for {
		message, ok := <-c.Send
		if !ok {
			c.Conn.WriteMessage(websocket.CloseMessage, []byte{})
			return
		}

		if err := c.Conn.WriteMessage(websocket.TextMessage, message); err != nil {
			log.Printf("websocket write error: %v", err)
			return
		}
	}
}
