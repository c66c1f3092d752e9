package api

import (
	"net/http"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"credential-bridge/internal/types"
)

// EventHub broadcasts credential lifecycle events to WebSocket subscribers
type EventHub struct {
	upgrader websocket.Upgrader
	logger   *logrus.Logger

	mu      sync.Mutex
	clients map[*websocket.Conn]bool
}

// NewEventHub creates an event hub
func NewEventHub(logger *logrus.Logger) *EventHub {
	return &EventHub{
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin: func(r *http.Request) bool {
				// The API binds to loopback; cross-origin browsers are not
				// a supported client.
				return true
			},
		},
		logger:  logger,
		clients: make(map[*websocket.Conn]bool),
	}
}

// HandleEvents handles GET /api/v1/events, upgrading to a WebSocket that
// streams credential events
func (h *EventHub) HandleEvents(w http.ResponseWriter, r *http.Request) {
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.WithError(err).Warn("WebSocket upgrade failed")
		return
	}

	h.mu.Lock()
	h.clients[conn] = true
	count := len(h.clients)
	h.mu.Unlock()

	h.logger.WithField("subscribers", count).Info("Event subscriber connected")

	// Drain reads so close frames are processed; subscribers never send.
	go func() {
		defer h.remove(conn)
		for {
			if _, _, err := conn.ReadMessage(); err != nil {
				return
			}
		}
	}()
}

// Broadcast sends a credential event to every subscriber
func (h *EventHub) Broadcast(event types.CredentialEvent) {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		conn.SetWriteDeadline(time.Now().Add(5 * time.Second))
		if err := conn.WriteJSON(event); err != nil {
			h.logger.WithError(err).Debug("Dropping event subscriber")
			conn.Close()
			delete(h.clients, conn)
		}
	}
}

// Close disconnects every subscriber
func (h *EventHub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	for conn := range h.clients {
		conn.Close()
		delete(h.clients, conn)
	}
}

func (h *EventHub) remove(conn *websocket.Conn) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.clients[conn] {
		conn.Close()
		delete(h.clients, conn)
	}
}
