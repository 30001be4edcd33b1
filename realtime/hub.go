// Package realtime keeps track of connected clients and the rooms they
// joined, and fans frames out to them.
//
// Sends never block. Every client owns a buffered outbox drained by its own
// writer goroutine; when the outbox is full the frame is dropped for that
// client only.
package realtime

import (
	"log"
	"sync"

	"food-delivery-relay/events"

	"github.com/google/uuid"
)

// Mirror receives a copy of every published notice
type Mirror interface {
	Mirror(n events.Notice)
}

type Hub struct {
	mu      sync.RWMutex
	clients map[*Client]struct{}
	rooms   map[string]map[*Client]struct{}

	sendBuffer int
	mirror     Mirror
}

// NewHub builds a hub. mirror may be nil.
func NewHub(sendBuffer int, mirror Mirror) *Hub {
	if sendBuffer <= 0 {
		sendBuffer = 256
	}
	return &Hub{
		clients:    make(map[*Client]struct{}),
		rooms:      make(map[string]map[*Client]struct{}),
		sendBuffer: sendBuffer,
		mirror:     mirror,
	}
}

func (h *Hub) register(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.clients[c] = struct{}{}
}

func (h *Hub) newClient() *Client {
	c := &Client{
		ID:    uuid.NewString(),
		hub:   h,
		send:  make(chan []byte, h.sendBuffer),
		rooms: make(map[string]struct{}),
	}
	h.register(c)
	return c
}

// Unregister drops c from every room and closes its outbox. Calling it
// twice is harmless.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.closed {
		return
	}
	for room := range c.rooms {
		h.removeMember(room, c)
	}
	delete(h.clients, c)
	c.closed = true
	close(c.send)
}

// Join adds c to room and reports whether it was not a member yet
func (h *Hub) Join(c *Client, room string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if c.closed {
		return false
	}
	if _, ok := c.rooms[room]; ok {
		return false
	}
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[*Client]struct{})
		h.rooms[room] = members
	}
	members[c] = struct{}{}
	c.rooms[room] = struct{}{}
	return true
}

// Leave removes c from room and reports whether it was a member
func (h *Hub) Leave(c *Client, room string) bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	if _, ok := c.rooms[room]; !ok {
		return false
	}
	h.removeMember(room, c)
	return true
}

func (h *Hub) removeMember(room string, c *Client) {
	delete(c.rooms, room)
	if members, ok := h.rooms[room]; ok {
		delete(members, c)
		if len(members) == 0 {
			delete(h.rooms, room)
		}
	}
}

// BroadcastToRoom sends the event to every member of room. An empty or
// unknown room is a no-op.
func (h *Hub) BroadcastToRoom(room, event string, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	members := h.rooms[room]
	if len(members) == 0 {
		return
	}
	b, err := encode(event, payload)
	if err != nil {
		log.Printf("broadcast to %s: %v", room, err)
		return
	}
	for c := range members {
		c.deliver(b)
	}
}

// BroadcastGlobal sends the event to every connected client
func (h *Hub) BroadcastGlobal(event string, payload any) {
	h.mu.RLock()
	defer h.mu.RUnlock()
	if len(h.clients) == 0 {
		return
	}
	b, err := encode(event, payload)
	if err != nil {
		log.Printf("global broadcast: %v", err)
		return
	}
	for c := range h.clients {
		c.deliver(b)
	}
}

// Emit sends the event to c alone
func (h *Hub) Emit(c *Client, event string, payload any) {
	b, err := encode(event, payload)
	if err != nil {
		log.Printf("emit to %s: %v", c.ID, err)
		return
	}
	h.mu.RLock()
	defer h.mu.RUnlock()
	if !c.closed {
		c.deliver(b)
	}
}

// Publish emits every wire name of each notice, in table order, to the
// notice's room or to everyone, then hands the notice to the mirror.
func (h *Hub) Publish(notices ...events.Notice) {
	for _, n := range notices {
		for _, name := range events.WireNames(n.Event) {
			if n.Global() {
				h.BroadcastGlobal(name, n.Payload)
			} else {
				h.BroadcastToRoom(n.Room, name, n.Payload)
			}
		}
		if h.mirror != nil {
			h.mirror.Mirror(n)
		}
	}
}

func (h *Hub) ClientCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

// Close disconnects every client
func (h *Hub) Close() {
	h.mu.RLock()
	clients := make([]*Client, 0, len(h.clients))
	for c := range h.clients {
		clients = append(clients, c)
	}
	h.mu.RUnlock()
	for _, c := range clients {
		h.Unregister(c)
	}
}
