package server

import (
	"sync"

	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"

	"github.com/yourusername/quant-trader/internal/models"
)

// Hub fans processed match events out to connected websocket clients.
// Publish never blocks the pipeline; a client too slow to drain its send
// buffer is disconnected.
type Hub struct {
	mu      sync.RWMutex
	clients map[*client]struct{}
	logger  *logrus.Logger
}

type client struct {
	conn *websocket.Conn
	send chan models.MatchEvent
}

// NewHub creates an empty event hub
func NewHub(logger *logrus.Logger) *Hub {
	return &Hub{
		clients: make(map[*client]struct{}),
		logger:  logger,
	}
}

// Publish delivers an event to every connected client
func (h *Hub) Publish(event models.MatchEvent) {
	h.mu.RLock()
	defer h.mu.RUnlock()

	for c := range h.clients {
		select {
		case c.send <- event:
		default:
			// Slow consumer, drop the connection asynchronously
			go h.remove(c)
		}
	}
}

// ClientCount returns the number of connected stream clients
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) add(conn *websocket.Conn) *client {
	c := &client{
		conn: conn,
		send: make(chan models.MatchEvent, 64),
	}

	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()

	h.logger.WithField("clients", h.ClientCount()).Debug("Stream client connected")
	return c
}

func (h *Hub) remove(c *client) {
	h.mu.Lock()
	_, present := h.clients[c]
	delete(h.clients, c)
	h.mu.Unlock()

	if present {
		close(c.send)
		c.conn.Close()
		h.logger.WithField("clients", h.ClientCount()).Debug("Stream client disconnected")
	}
}

// writeLoop pushes queued events to one client until its channel closes or a
// write fails
func (h *Hub) writeLoop(c *client) {
	for event := range c.send {
		if err := c.conn.WriteJSON(event); err != nil {
			h.remove(c)
			return
		}
	}
}

// readLoop drains control frames so pings are answered, removing the client
// when the peer goes away
func (h *Hub) readLoop(c *client) {
	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			h.remove(c)
			return
		}
	}
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.Lock()
	clients := make([]*client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.Unlock()

	for _, c := range clients {
		h.remove(c)
	}
}
