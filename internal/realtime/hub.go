// Package realtime owns the per-deal rooms and the websocket fan-out. The
// hub is an explicit object created at process start; it performs no access
// checks of its own, so callers validate deal access before a join.
package realtime

import (
	"encoding/json"
	"sync"

	"github.com/google/uuid"

	"github.com/dealdesk/dealdesk-backend/pkg/metrics"
)

// Hub tracks connected clients and their room memberships.
type Hub struct {
	mu      sync.RWMutex
	rooms   map[uuid.UUID]map[*Client]struct{}
	clients map[*Client]struct{}
	metrics *metrics.RealtimeMetrics
}

// Broadcaster is the fan-out surface consumed by controllers and the event
// handler. Delivery is best-effort.
type Broadcaster interface {
	Broadcast(dealID uuid.UUID, event string, payload any, exclude *Client)
}

// NewHub constructs an empty hub. Metrics may be nil.
func NewHub(m *metrics.RealtimeMetrics) *Hub {
	return &Hub{
		rooms:   make(map[uuid.UUID]map[*Client]struct{}),
		clients: make(map[*Client]struct{}),
		metrics: m,
	}
}

// Register adds a connected client to the hub.
func (h *Hub) Register(c *Client) {
	h.mu.Lock()
	h.clients[c] = struct{}{}
	h.mu.Unlock()
	h.publishGauges()
}

// Unregister removes the client from the hub and every room, and closes its
// send channel exactly once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	delete(h.clients, c)
	for dealID, members := range h.rooms {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, dealID)
		}
	}
	c.closeSend()
	h.mu.Unlock()
	h.publishGauges()
}

// Join adds the client to the deal's room.
func (h *Hub) Join(c *Client, dealID uuid.UUID) {
	h.mu.Lock()
	if _, ok := h.clients[c]; !ok {
		h.mu.Unlock()
		return
	}
	members, ok := h.rooms[dealID]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[dealID] = members
	}
	members[c] = struct{}{}
	h.mu.Unlock()
	h.publishGauges()
}

// Leave removes the client from the deal's room.
func (h *Hub) Leave(c *Client, dealID uuid.UUID) {
	h.mu.Lock()
	if members, ok := h.rooms[dealID]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, dealID)
		}
	}
	h.mu.Unlock()
	h.publishGauges()
}

// InRoom reports whether the client is currently joined to the deal's room.
func (h *Hub) InRoom(c *Client, dealID uuid.UUID) bool {
	h.mu.RLock()
	defer h.mu.RUnlock()
	_, ok := h.rooms[dealID][c]
	return ok
}

// Broadcast delivers the event to every member of the deal's room except the
// excluded client. A member whose send buffer is full is dropped from the
// hub rather than allowed to block the fan-out.
func (h *Hub) Broadcast(dealID uuid.UUID, event string, payload any, exclude *Client) {
	frame, err := NewFrame(event, payload)
	if err != nil {
		return
	}
	raw, err := json.Marshal(frame)
	if err != nil {
		return
	}

	h.mu.RLock()
	members := make([]*Client, 0, len(h.rooms[dealID]))
	for c := range h.rooms[dealID] {
		if c != exclude {
			members = append(members, c)
		}
	}
	h.mu.RUnlock()

	var slow []*Client
	for _, c := range members {
		if !c.trySend(raw) {
			slow = append(slow, c)
		}
	}
	for _, c := range slow {
		h.metrics.IncDropped()
		h.Unregister(c)
	}
	h.metrics.IncBroadcast(event)
}

func (h *Hub) publishGauges() {
	if h.metrics == nil {
		return
	}
	h.mu.RLock()
	clients := len(h.clients)
	rooms := len(h.rooms)
	h.mu.RUnlock()
	h.metrics.SetClients(clients)
	h.metrics.SetRooms(rooms)
}
