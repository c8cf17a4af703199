package ws

import (
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

const (
	writeWait      = 10 * time.Second
	pongWait       = 60 * time.Second
	pingPeriod     = (pongWait * 9) / 10
	maxMessageSize = 512
)

// Client binds one WebSocket connection to one thread subscription.
// A dropped connection never transitions back to open: the browser
// reconnects with a fresh Client.
type Client struct {
	hub      *Hub
	conn     *websocket.Conn
	send     chan []byte
	threadID string
	userID   string

	once sync.Once
	done chan struct{}
}

// NewClient creates a client for the given thread subscription
func NewClient(hub *Hub, conn *websocket.Conn, threadID, userID string) *Client {
	return &Client{
		hub:      hub,
		conn:     conn,
		send:     make(chan []byte, 256),
		threadID: threadID,
		userID:   userID,
		done:     make(chan struct{}),
	}
}

// Deliver enqueues payload for the write pump. A full buffer means the
// client stopped draining; the error tells the hub to evict it.
func (c *Client) Deliver(payload []byte) error {
	select {
	case <-c.done:
		return errors.New("ws: client closed")
	case c.send <- payload:
		return nil
	default:
		return errors.New("ws: send buffer full")
	}
}

// Close terminates the connection and stops both pumps. Idempotent.
func (c *Client) Close() {
	c.once.Do(func() {
		close(c.done)
		c.conn.Close()
	})
}

// ReadPump consumes client frames. They carry no application data; the
// read loop only keeps pong deadlines fresh and detects disconnects.
// Unsubscription happens here, on every exit path.
func (c *Client) ReadPump() {
	defer func() {
		c.hub.Unsubscribe(c.threadID, c)
		c.Close()
	}()

	c.conn.SetReadLimit(maxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
	c.conn.SetPongHandler(func(string) error {
		c.conn.SetReadDeadline(time.Now().Add(pongWait)) //nolint:errcheck
		return nil
	})

	for {
		if _, _, err := c.conn.ReadMessage(); err != nil {
			break
		}
	}
}

// WritePump sends queued payloads and keepalive pings to the WebSocket
func (c *Client) WritePump() {
	ticker := time.NewTicker(pingPeriod)
	defer func() {
		ticker.Stop()
		c.Close()
	}()

	for {
		select {
		case <-c.done:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait))    //nolint:errcheck
			c.conn.WriteMessage(websocket.CloseMessage, []byte{}) //nolint:errcheck
			return

		case message := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			if err := c.conn.WriteMessage(websocket.TextMessage, message); err != nil {
				return
			}

		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(writeWait)) //nolint:errcheck
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
