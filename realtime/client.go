package realtime

import (
	"fmt"
	"log"
	"net/http"
	"strings"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 64 << 10
)

// Client is one socket connection. rooms and closed are guarded by the hub.
type Client struct {
	ID string

	hub    *Hub
	conn   *websocket.Conn
	send   chan []byte
	rooms  map[string]struct{}
	closed bool
}

// Emit sends an event to this client only
func (c *Client) Emit(event string, payload any) {
	c.hub.Emit(c, event, payload)
}

// deliver must be called with the hub lock held
func (c *Client) deliver(b []byte) {
	select {
	case c.send <- b:
	default:
		log.Printf("client %s outbox full, dropping frame", c.ID)
	}
}

// Dispatcher handles every inbound frame that is not a membership request.
// A returned error is logged; the connection stays open.
type Dispatcher interface {
	Dispatch(c *Client, f Frame) error
}

// NewUpgrader builds the websocket upgrader. origin is the allowed Origin
// header value; "*" or "" accepts any.
func NewUpgrader(origin string) *websocket.Upgrader {
	return &websocket.Upgrader{
		ReadBufferSize:  4096,
		WriteBufferSize: 4096,
		CheckOrigin: func(r *http.Request) bool {
			if origin == "" || origin == "*" {
				return true
			}
			return strings.EqualFold(r.Header.Get("Origin"), origin)
		},
	}
}

// Serve runs the connection until the peer goes away
func (h *Hub) Serve(conn *websocket.Conn, d Dispatcher) {
	c := h.newClient()
	c.conn = conn
	log.Printf("client %s connected from %s", c.ID, conn.RemoteAddr())

	go c.writePump()
	c.readPump(d)

	h.Unregister(c)
	log.Printf("client %s disconnected", c.ID)
}

func (c *Client) readPump(d Dispatcher) {
	defer c.conn.Close()
	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				log.Printf("client %s read: %v", c.ID, err)
			}
			return
		}
		f, err := decode(raw)
		if err != nil {
			log.Printf("client %s: %v", c.ID, err)
			continue
		}
		if err := c.handle(d, f); err != nil {
			log.Printf("client %s event %s: %v", c.ID, f.Event, err)
		}
	}
}

// handle processes one frame. Panics are turned into errors so one bad
// message never takes the connection down.
func (c *Client) handle(d Dispatcher, f Frame) (err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("handler panic: %v", r)
		}
	}()

	switch f.Event {
	case EventJoinRoom, EventJoin:
		room, err := parseRoomRequest(f.Data)
		if err != nil {
			return err
		}
		if c.hub.Join(c, room) {
			log.Printf("client %s joined %s", c.ID, room)
		}
		return nil
	case EventLeaveRoom, EventLeave:
		room, err := parseRoomRequest(f.Data)
		if err != nil {
			return err
		}
		if c.hub.Leave(c, room) {
			log.Printf("client %s left %s", c.ID, room)
		}
		return nil
	}
	if d == nil {
		return fmt.Errorf("no handler for %s", f.Event)
	}
	return d.Dispatch(c, f)
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case b, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, b); err != nil {
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
