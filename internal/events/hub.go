package events

import (
	"context"
	"log/slog"
	"sync"

	"github.com/google/uuid"
)

// Hub maintains the set of active WebSocket clients and fans messages out
// to them. Run must be running for Register, Unregister and Broadcast to make
// progress.
type Hub struct {
	clients    map[*Client]bool
	broadcast  chan envelope
	register   chan *Client
	unregister chan *Client
	done       chan struct{}
	mu         sync.RWMutex
}

// envelope is a message addressed to one masjid, or to everyone when
// masjidID is uuid.Nil.
type envelope struct {
	masjidID uuid.UUID
	data     []byte
}

// NewHub creates a new WebSocket hub.
func NewHub() *Hub {
	return &Hub{
		clients:    make(map[*Client]bool),
		broadcast:  make(chan envelope, 256),
		register:   make(chan *Client),
		unregister: make(chan *Client),
		done:       make(chan struct{}),
	}
}

// Run is the hub's event loop. It returns when ctx is cancelled, closing
// every client's send channel on the way out.
func (h *Hub) Run(ctx context.Context) {
	defer close(h.done)
	for {
		select {
		case <-ctx.Done():
			h.mu.Lock()
			for c := range h.clients {
				close(c.send)
				delete(h.clients, c)
			}
			h.mu.Unlock()
			return

		case c := <-h.register:
			h.mu.Lock()
			h.clients[c] = true
			n := len(h.clients)
			h.mu.Unlock()
			slog.Debug("websocket client connected", "masjid_id", c.masjidID, "clients", n)

		case c := <-h.unregister:
			h.mu.Lock()
			if _, ok := h.clients[c]; ok {
				delete(h.clients, c)
				close(c.send)
			}
			n := len(h.clients)
			h.mu.Unlock()
			slog.Debug("websocket client disconnected", "masjid_id", c.masjidID, "clients", n)

		case env := <-h.broadcast:
			h.mu.Lock()
			for c := range h.clients {
				if !c.wants(env.masjidID) {
					continue
				}
				select {
				case c.send <- env.data:
				default:
					// Slow consumer: drop it rather than stall everyone else.
					close(c.send)
					delete(h.clients, c)
				}
			}
			h.mu.Unlock()
		}
	}
}

// Broadcast queues data for every client watching masjidID. uuid.Nil
// addresses all clients. A full queue drops the message.
func (h *Hub) Broadcast(masjidID uuid.UUID, data []byte) {
	select {
	case h.broadcast <- envelope{masjidID: masjidID, data: data}:
	default:
		slog.Warn("websocket broadcast queue full, dropping message", "masjid_id", masjidID)
	}
}

// Register adds a client to the hub. It reports false once the hub has
// stopped.
func (h *Hub) Register(c *Client) bool {
	select {
	case h.register <- c:
		return true
	case <-h.done:
		return false
	}
}

// Unregister removes a client from the hub.
func (h *Hub) Unregister(c *Client) {
	select {
	case h.unregister <- c:
	case <-h.done:
	}
}

// Direct queues data for a single client if it is still registered.
// Channels are only closed under mu, so the send cannot hit a closed channel.
func (h *Hub) Direct(c *Client, data []byte) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.clients[c] {
		return
	}
	select {
	case c.send <- data:
	default:
	}
}

// ClientCount returns the number of connected clients.
func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// Client is one WebSocket connection's view of the hub.
type Client struct {
	hub      *Hub
	masjidID uuid.UUID
	send     chan []byte
}

// NewClient creates a client that receives events for masjidID, or for
// every masjid when masjidID is uuid.Nil.
func NewClient(hub *Hub, masjidID uuid.UUID) *Client {
	return &Client{
		hub:      hub,
		masjidID: masjidID,
		send:     make(chan []byte, 256),
	}
}

// Send returns the channel the hub delivers messages on. It is closed when
// the hub drops the client.
func (c *Client) Send() <-chan []byte {
	return c.send
}

func (c *Client) wants(masjidID uuid.UUID) bool {
	return masjidID == uuid.Nil || c.masjidID == uuid.Nil || c.masjidID == masjidID
}
