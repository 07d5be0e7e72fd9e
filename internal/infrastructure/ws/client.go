package ws

import (
	"errors"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/gorilla/websocket"
)

var (
	ErrSlowConsumer     = errors.New("connection send buffer full")
	ErrConnectionClosed = errors.New("connection closed")
)

const (
	writeWait     = 10 * time.Second
	pongWait      = 60 * time.Second
	pingPeriod    = (pongWait * 9) / 10
	maxFrameBytes = 1 << 16
)

// Client wraps one upgraded connection. Deliveries go through a buffered
// channel drained by writePump, so a slow reader never blocks a broadcast.
type Client struct {
	id   string
	raw  *websocket.Conn
	conn *connWrapper
	send chan *WSMessage

	mu     sync.Mutex
	closed bool
}

func NewClient(conn *websocket.Conn, sendBuffer int) *Client {
	if sendBuffer <= 0 {
		sendBuffer = 64
	}

	c := &Client{
		id:   uuid.NewString(),
		raw:  conn,
		conn: newConnWrapper(conn),
		send: make(chan *WSMessage, sendBuffer),
	}

	conn.SetReadLimit(maxFrameBytes)
	_ = conn.SetReadDeadline(time.Now().Add(pongWait))
	conn.SetPongHandler(func(string) error {
		return conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	return c
}

func (c *Client) ConnectionID() string {
	return c.id
}

// Deliver hands a message to the connection without blocking. Returns
// ErrSlowConsumer when the buffer is full and ErrConnectionClosed after
// shutdown.
func (c *Client) Deliver(msg *WSMessage) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return ErrConnectionClosed
	}

	select {
	case c.send <- msg:
		return nil
	default:
		return ErrSlowConsumer
	}
}

// ReadFrame blocks for the next inbound frame. There is exactly one reader
// per connection.
func (c *Client) ReadFrame() (*Frame, error) {
	var frame Frame
	if err := c.raw.ReadJSON(&frame); err != nil {
		return nil, err
	}
	return &frame, nil
}

// shutdown marks the client closed and releases writePump. Idempotent.
func (c *Client) shutdown() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// writePump owns all writes to the connection. It runs until shutdown
// closes the send channel or a write fails.
func (c *Client) writePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		_ = c.conn.Close()
	}()

	for {
		select {
		case msg, ok := <-c.send:
			if !ok {
				_ = c.conn.CloseFrame()
				return
			}
			if err := c.conn.WriteJSON(msg); err != nil {
				return
			}
		case <-ticker.C:
			if err := c.conn.Ping(writeWait); err != nil {
				return
			}
		}
	}
}
