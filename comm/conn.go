package comm

import (
	"encoding/json"
	"errors"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// Conn is the transport handle for one connected socket. Send must never
// block the caller; game logic runs while holding a game's lock and outbound
// pushes are fire-and-forget.
type Conn interface {
	Send(v interface{}) error
	Close() error
}

// WSConn wraps a gorilla connection with a buffered outbound queue and a
// single writer goroutine. A full queue drops the message instead of
// stalling the mutation path; the client re-syncs with a full-data-update.
type WSConn struct {
	conn   *websocket.Conn
	logger *zap.Logger

	mu     sync.Mutex
	send   chan []byte
	closed bool
}

func NewWSConn(conn *websocket.Conn, logger *zap.Logger) *WSConn {
	c := &WSConn{
		conn:   conn,
		send:   make(chan []byte, 64),
		logger: logger,
	}
	go c.writePump()
	return c
}

func (c *WSConn) Send(v interface{}) error {
	payload, err := json.Marshal(v)
	if err != nil {
		c.logger.Error("Failed to marshal outbound message", zap.Error(err))
		return err
	}

	c.mu.Lock()
	defer c.mu.Unlock()
	if c.closed {
		return errors.New("connection closed")
	}

	select {
	case c.send <- payload:
		return nil
	default:
		c.logger.Warn("Send buffer full, dropping outbound message")
		return errors.New("send buffer full")
	}
}

// Ping sends a websocket ping control frame. Safe to call concurrently with
// the write pump.
func (c *WSConn) Ping() error {
	return c.conn.WriteControl(websocket.PingMessage, nil, time.Now().Add(10*time.Second))
}

// Close shuts down the transport and the write pump. Further Sends fail,
// repeated Close is a no-op.
func (c *WSConn) Close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	close(c.send)
	c.mu.Unlock()

	return c.conn.Close()
}

func (c *WSConn) writePump() {
	for payload := range c.send {
		if err := c.conn.WriteMessage(websocket.TextMessage, payload); err != nil {
			return
		}
	}
}
