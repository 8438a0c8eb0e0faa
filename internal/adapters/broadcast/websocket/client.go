package websocket

import (
	"sync"
	"sync/atomic"
	"time"

	"github.com/goccy/go-json"
	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 4 * 1024

	clientBuffer = 16
)

var clientIDCounter atomic.Uint64

type Client struct {
	id   uint64
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	// closed se lee y escribe con hub.mu tomado.
	closed    bool
	closeOnce sync.Once
}

func newClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		id:   clientIDCounter.Add(1),
		hub:  hub,
		conn: conn,
		send: make(chan []byte, clientBuffer),
	}
}

// enqueue no bloquea; false => buffer lleno o cliente cerrado.
// Requiere hub.mu tomado (al menos RLock).
func (c *Client) enqueue(msg []byte) bool {
	if c.closed {
		return false
	}
	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

// close requiere hub.mu tomado (Lock).
func (c *Client) close() {
	c.closeOnce.Do(func() {
		c.closed = true
		close(c.send)
	})
}

func (c *Client) start() {
	go c.writePump()
	go c.readPump()
}

// readPump solo atiende pings del cliente y detecta el cierre.
func (c *Client) readPump() {
	defer func() {
		c.hub.unregister(c)
		_ = c.conn.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseAbnormalClosure) {
				c.hub.log.Warn("unexpected websocket close", map[string]any{"client_id": c.id, "err": err})
			}
			return
		}

		var msg Message
		if json.Unmarshal(raw, &msg) != nil || msg.Type != MessageTypePing {
			continue
		}
		if pong, err := json.Marshal(Message{Type: MessageTypePong}); err == nil {
			c.hub.mu.RLock()
			c.enqueue(pong)
			c.hub.mu.RUnlock()
		}
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				_ = c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, msg); err != nil {
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
