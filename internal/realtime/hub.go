// Package realtime routes live events to the websocket sessions of a user.
package realtime

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
)

// Frame is the wire shape of every websocket message in both directions.
type Frame struct {
	Event string          `json:"event"`
	Data  json.RawMessage `json:"data,omitempty"`
}

// Envelope addresses a frame to every session of one user. It is also the
// payload carried over the bus between instances.
type Envelope struct {
	UserID string `json:"userId"`
	Frame  Frame  `json:"frame"`
}

type SessionObserver interface {
	SessionOpened()
	SessionClosed()
}

// Hub maps user ids to their connected clients. A client sits in at most one
// channel; a user may own any number of clients.
type Hub struct {
	mu       sync.RWMutex
	channels map[string]map[*Client]struct{}
	bus      Bus
	observer SessionObserver
}

func NewHub() *Hub {
	return &Hub{channels: make(map[string]map[*Client]struct{})}
}

func (h *Hub) SetObserver(o SessionObserver) {
	h.observer = o
}

// AttachBus routes Publish through bus and delivers whatever the bus forwards
// to local sessions.
func (h *Hub) AttachBus(ctx context.Context, bus Bus) error {
	if err := bus.StartForwarder(ctx, h.deliver); err != nil {
		return err
	}
	h.mu.Lock()
	h.bus = bus
	h.mu.Unlock()
	return nil
}

// Join binds c to the channel of userID, leaving any previous channel.
func (h *Hub) Join(c *Client, userID string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.closed {
		return
	}
	if c.channel == userID {
		return
	}
	h.removeLocked(c)
	clients, ok := h.channels[userID]
	if !ok {
		clients = make(map[*Client]struct{})
		h.channels[userID] = clients
	}
	clients[c] = struct{}{}
	c.channel = userID
	if h.observer != nil {
		h.observer.SessionOpened()
	}
}

// Leave drops c from its channel and closes its outbound queue.
func (h *Hub) Leave(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.removeLocked(c)
	if !c.closed {
		c.closed = true
		close(c.send)
	}
}

func (h *Hub) removeLocked(c *Client) {
	if c.channel == "" {
		return
	}
	if clients, ok := h.channels[c.channel]; ok {
		delete(clients, c)
		if len(clients) == 0 {
			delete(h.channels, c.channel)
		}
	}
	c.channel = ""
	if h.observer != nil {
		h.observer.SessionClosed()
	}
}

// Connections reports how many sessions userID has on this instance.
func (h *Hub) Connections(userID string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.channels[userID])
}

// Publish sends event to every session of userID. Delivery is best effort.
func (h *Hub) Publish(ctx context.Context, userID, event string, payload any) {
	data, err := json.Marshal(payload)
	if err != nil {
		slog.WarnContext(ctx, "live event encode failed", "event", event, "err", err)
		return
	}
	env := Envelope{UserID: userID, Frame: Frame{Event: event, Data: data}}

	h.mu.RLock()
	bus := h.bus
	h.mu.RUnlock()
	if bus == nil {
		h.deliver(env)
		return
	}
	if err := bus.Publish(ctx, env); err != nil {
		slog.WarnContext(ctx, "live event publish failed, delivering locally", "event", event, "err", err)
		h.deliver(env)
	}
}

func (h *Hub) deliver(env Envelope) {
	raw, err := json.Marshal(env.Frame)
	if err != nil {
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	for c := range h.channels[env.UserID] {
		c.enqueue(raw)
	}
}
