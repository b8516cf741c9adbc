package stream

import (
	"context"
	"log/slog"
	"sync"
	"time"

	"github.com/gorilla/websocket"
)

// client wraps a single WebSocket connection. It owns the read loop and
// serializes writes; lifecycle decisions (reconnects, state) belong to the
// Manager.
type client struct {
	cfg    Config
	logger *slog.Logger

	conn     *websocket.Conn
	messages chan []byte

	writeMu sync.Mutex

	mu     sync.Mutex
	closed bool
}

func newClient(cfg Config, logger *slog.Logger) *client {
	if logger == nil {
		logger = slog.Default()
	}
	return &client{
		cfg:      cfg,
		logger:   logger,
		messages: make(chan []byte, cfg.BufferSize),
	}
}

// connect dials the stream endpoint and starts the read loop.
func (c *client) connect(ctx context.Context) error {
	dialer := websocket.Dialer{
		HandshakeTimeout: c.cfg.HandshakeTimeout,
	}

	conn, _, err := dialer.DialContext(ctx, c.cfg.URL, nil)
	if err != nil {
		return err
	}
	c.conn = conn

	go c.readLoop()

	c.logger.Debug("websocket connected", "url", c.cfg.URL)
	return nil
}

// close tears the connection down. The read loop notices and exits, which
// closes the messages channel: that channel closure is the close signal.
func (c *client) close() error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return nil
	}
	c.closed = true
	c.mu.Unlock()

	c.conn.WriteControl(
		websocket.CloseMessage,
		websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""),
		time.Now().Add(time.Second),
	)
	return c.conn.Close()
}

// send writes raw bytes to the connection.
func (c *client) send(data []byte) error {
	c.mu.Lock()
	if c.closed {
		c.mu.Unlock()
		return ErrNotConnected
	}
	c.mu.Unlock()

	c.writeMu.Lock()
	defer c.writeMu.Unlock()

	c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
	return c.conn.WriteMessage(websocket.TextMessage, data)
}

// readLoop reads frames until the connection dies for any reason, clean or
// not, then closes the messages channel exactly once.
func (c *client) readLoop() {
	defer close(c.messages)

	for {
		_, data, err := c.conn.ReadMessage()
		if err != nil {
			c.mu.Lock()
			wasClosed := c.closed
			c.mu.Unlock()

			if !wasClosed {
				// Transport error: log only. Recovery is driven by the
				// close signal the Manager sees when messages closes.
				c.logger.Warn("websocket read failed", "error", err)
			}
			return
		}

		c.messages <- data
	}
}
