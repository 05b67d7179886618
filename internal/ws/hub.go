// Package ws pushes notification ledger entries to connected clients. The
// feed is push-only: the ledger row is written first, then mirrored to any
// live connection, so a dropped socket loses nothing.
package ws

import (
	"sync"

	"procura_backend/internal/logger"
	"procura_backend/internal/models"
)

// Hub tracks live connections per user. A user may hold several (multiple
// tabs); Publish fans out to all of them.
type Hub struct {
	clients    map[string]map[*Client]bool
	register   chan *Client
	unregister chan *Client
	mu         sync.RWMutex
}

func NewHub() *Hub {
	return &Hub{
		clients:    make(map[string]map[*Client]bool),
		register:   make(chan *Client),
		unregister: make(chan *Client),
	}
}

func (h *Hub) Run() {
	for {
		select {
		case client := <-h.register:
			h.mu.Lock()
			if h.clients[client.UserID] == nil {
				h.clients[client.UserID] = make(map[*Client]bool)
			}
			h.clients[client.UserID][client] = true
			h.mu.Unlock()
			logger.Debug("ws client connected", "user_id", client.UserID)

		case client := <-h.unregister:
			h.mu.Lock()
			if conns, ok := h.clients[client.UserID]; ok && conns[client] {
				close(client.send)
				delete(conns, client)
				if len(conns) == 0 {
					delete(h.clients, client.UserID)
				}
			}
			h.mu.Unlock()
			logger.Debug("ws client disconnected", "user_id", client.UserID)
		}
	}
}

// Publish mirrors a notification to the recipient's live connections. A slow
// connection is dropped rather than blocking the caller.
func (h *Hub) Publish(userID string, notification *models.Notification) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for client := range h.clients[userID] {
		select {
		case client.send <- notification:
		default:
			go func(c *Client) { h.unregister <- c }(client)
		}
	}
}
