package ws

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/gorilla/websocket"

	"procura_backend/internal/logger"
	"procura_backend/internal/middleware"
	"procura_backend/internal/models"
	"procura_backend/pkg/apperrors"
)

var upgrader = websocket.Upgrader{
	ReadBufferSize:  1024,
	WriteBufferSize: 1024,
	CheckOrigin: func(r *http.Request) bool {
		return true // TODO: restrict to the frontend origin before exposing publicly
	},
}

type Handler struct {
	hub *Hub
}

func NewHandler(hub *Hub) *Handler {
	return &Handler{hub: hub}
}

// ServeWS upgrades an authenticated request to a notification feed. Identity
// comes from the auth middleware, never from the query string.
func (h *Handler) ServeWS(c *gin.Context) {
	actor, ok := middleware.GetActor(c)
	if !ok {
		apperrors.HandleError(c, apperrors.NewUnauthorizedError("Authentication required"))
		return
	}

	conn, err := upgrader.Upgrade(c.Writer, c.Request, nil)
	if err != nil {
		logger.Warn("ws upgrade failed", "error", err)
		return
	}

	client := &Client{
		UserID: actor.UserID,
		conn:   conn,
		send:   make(chan *models.Notification, 16),
		hub:    h.hub,
	}

	h.hub.register <- client

	go client.readPump()
	go client.writePump()
}
