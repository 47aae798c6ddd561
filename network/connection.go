package network

import (
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"gridwalk/logging"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 1 << 20
)

// Connection wraps a WebSocket connection with a buffered outbound queue so
// that a slow consumer never blocks the goroutine producing a broadcast.
type Connection struct {
	ws   *websocket.Conn
	send chan []byte

	mu     sync.Mutex
	closed bool
}

// NewConnection creates a new connection wrapper
func NewConnection(ws *websocket.Conn) *Connection {
	return &Connection{
		ws:   ws,
		send: make(chan []byte, 256),
	}
}

// MessageHandler interface for handling inbound messages
type MessageHandler interface {
	HandleMessage(conn *Connection, message []byte)
}

// ReadPump reads messages from the WebSocket connection until it fails or
// closes. Runs in the caller's goroutine.
func (c *Connection) ReadPump(h MessageHandler) {
	defer c.Close()
	c.ws.SetReadLimit(maxMessageSize)

	for {
		_, message, err := c.ws.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseAbnormalClosure) {
				logging.Log.Warnf("read error: %v", err)
			}
			return
		}
		h.HandleMessage(c, message)
	}
}

// WritePump drains the outbound queue to the WebSocket. Run in its own
// goroutine, one per connection.
func (c *Connection) WritePump() {
	defer c.ws.Close()

	for message := range c.send {
		c.ws.SetWriteDeadline(time.Now().Add(writeWait))
		if err := c.ws.WriteMessage(websocket.TextMessage, message); err != nil {
			return
		}
	}
	c.ws.WriteMessage(websocket.CloseMessage, []byte{})
}

// SendMessage marshals and enqueues a message. The enqueue never blocks: if
// the queue is full the connection is closed, on the grounds that a client
// that far behind is not worth stalling the world for.
func (c *Connection) SendMessage(msg interface{}) error {
	messageBytes, err := json.Marshal(msg)
	if err != nil {
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return nil
	}
	select {
	case c.send <- messageBytes:
	default:
		logging.Log.Warnf("send queue full, dropping connection")
		c.closeLocked()
	}
	return nil
}

// Close shuts down the connection and its outbound queue. Safe to call more
// than once.
func (c *Connection) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.closeLocked()
}

func (c *Connection) closeLocked() {
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
	if c.ws != nil {
		_ = c.ws.Close()
	}
}
