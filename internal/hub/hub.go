// Package hub fans a frame.Frame received on one connection.Conn endpoint
// out to every other endpoint registered with the gateway, generalizing the
// teacher's CAN-frame broadcast hub to frame.Frame (spec's "connection
// multiplexer" is per-Conn; cmd/mavlink-gw layers this hub on top of N
// Conns to relay between them, the way mavlink-router/MAVProxy do).
package hub

import (
	"sync"

	"github.com/tellurian-uas/gomavlink/frame"
	"github.com/tellurian-uas/gomavlink/internal/logging"
	"github.com/tellurian-uas/gomavlink/internal/metrics"
)

type BackpressurePolicy int

const (
	PolicyDrop BackpressurePolicy = iota
	PolicyKick
)

// Client is one registered relay endpoint's outbound queue.
type Client struct {
	Name      string
	Out       chan frame.Frame
	Closed    chan struct{}
	closeOnce sync.Once
}

// Close signals the client is closed (idempotent).
func (c *Client) Close() {
	c.closeOnce.Do(func() {
		close(c.Closed)
	})
}

// Hub fans a received frame out to every other registered client.
type Hub struct {
	mu         sync.RWMutex
	clients    map[*Client]struct{}
	OutBufSize int
	Policy     BackpressurePolicy
}

// New creates a Hub with default settings.
func New() *Hub { return &Hub{clients: make(map[*Client]struct{})} }

// Add registers a client with the hub.
func (h *Hub) Add(c *Client) {
	h.mu.Lock()
	prev := len(h.clients)
	h.clients[c] = struct{}{}
	cur := len(h.clients)
	h.mu.Unlock()
	metrics.SetActiveEndpoints(cur)
	if prev == 0 && cur == 1 {
		logging.L().Info("relay_first_endpoint_connected")
	}
}

// Remove unregisters a client; safe to call multiple times.
func (h *Hub) Remove(c *Client) {
	h.mu.Lock()
	_, existed := h.clients[c]
	if existed {
		delete(h.clients, c)
	}
	cur := len(h.clients)
	h.mu.Unlock()
	select {
	case <-c.Closed:
	default:
		c.Close()
	}
	metrics.SetActiveEndpoints(cur)
	if existed && cur == 0 {
		logging.L().Info("relay_last_endpoint_disconnected")
	}
}

// Broadcast relays fr, received from source, to every other registered
// client, honoring the backpressure policy on a full queue.
func (h *Hub) Broadcast(source *Client, fr frame.Frame) {
	clients := h.Snapshot()
	for _, c := range clients {
		if c == source {
			continue
		}
		select {
		case c.Out <- fr:
		default:
			if h.Policy == PolicyKick {
				metrics.IncKick()
				c.Close() // signal writer to exit; the relay's teardown will Remove it when its read loop ends
			} else {
				metrics.IncDrop()
			}
		}
	}
}

// Snapshot returns a slice copy of current clients (read-only use).
func (h *Hub) Snapshot() []*Client {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	return clients
}

// Count returns the number of active clients.
func (h *Hub) Count() int { h.mu.RLock(); n := len(h.clients); h.mu.RUnlock(); return n }
