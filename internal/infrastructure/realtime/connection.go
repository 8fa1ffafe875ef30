package realtime

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

const (
	writeWait  = 10 * time.Second
	pingPeriod = 30 * time.Second
)

var ErrConnectionClosed = errors.New("realtime: connection closed")

// Connection wraps a websocket and coordinates outbound writes via a buffered
// channel. Each connection belongs to exactly one authenticated user and is
// safe for concurrent use.
type Connection struct {
	ID     string
	UserID string

	ws   *websocket.Conn
	send chan []byte
	once sync.Once
	done chan struct{}
}

// NewConnection constructs a Connection bound to the given user. sendBuffer
// caps how many undelivered events a slow client may accumulate before being
// disconnected; zero selects the default.
func NewConnection(userID string, ws *websocket.Conn, sendBuffer int) *Connection {
	if sendBuffer <= 0 {
		sendBuffer = 128
	}
	return &Connection{
		ID:     uuid.NewString(),
		UserID: userID,
		ws:     ws,
		send:   make(chan []byte, sendBuffer),
		done:   make(chan struct{}),
	}
}

// Start launches the write loop. It must be called exactly once per connection.
func (c *Connection) Start() {
	go c.writeLoop()
}

// Send enqueues payload for delivery. Delivery is best-effort: if the client
// is slow and the buffer is full, the connection is closed to keep
// backpressure bounded.
func (c *Connection) Send(payload []byte) error {
	select {
	case <-c.done:
		return ErrConnectionClosed
	case c.send <- payload:
		return nil
	default:
		c.Close(websocket.CloseGoingAway, "send buffer full")
		return ErrConnectionClosed
	}
}

// Close terminates the connection and stops the write loop. Closing an
// already-closed connection is a no-op.
func (c *Connection) Close(code int, reason string) {
	c.once.Do(func() {
		close(c.done)
		_ = c.ws.SetWriteDeadline(time.Now().Add(writeWait))
		_ = c.ws.WriteControl(websocket.CloseMessage, websocket.FormatCloseMessage(code, reason), time.Now().Add(writeWait))
		_ = c.ws.Close()
	})
}

func (c *Connection) writeLoop() {
	ticker := time.NewTicker(pingPeriod)
	defer ticker.Stop()

	for {
		select {
		case <-c.done:
			return
		case msg := <-c.send:
			if err := c.writeMessage(msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.writePing(); err != nil {
				return
			}
		}
	}
}

func (c *Connection) writeMessage(payload []byte) error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.TextMessage, payload)
}

func (c *Connection) writePing() error {
	if err := c.ws.SetWriteDeadline(time.Now().Add(writeWait)); err != nil {
		return err
	}
	return c.ws.WriteMessage(websocket.PingMessage, nil)
}
