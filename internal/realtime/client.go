package realtime

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"

	"github.com/dealdesk/dealdesk-backend/internal/access"
	"github.com/dealdesk/dealdesk-backend/pkg/config"
	"github.com/dealdesk/dealdesk-backend/pkg/logger"
)

// Client is one authenticated websocket connection.
type Client struct {
	conn      *websocket.Conn
	send      chan []byte
	sendMu    sync.Mutex
	closed    bool
	principal access.Principal
	cfg       config.RealtimeConfig
	log       *logger.Logger
	ctx       context.Context
}

// NewClient wraps an upgraded connection. The caller registers it with the
// hub and starts the pumps. The context outlives the upgrade request and
// carries the connection's log fields.
func NewClient(ctx context.Context, conn *websocket.Conn, principal access.Principal, cfg config.RealtimeConfig, log *logger.Logger) *Client {
	if log != nil {
		ctx = log.WithUserID(ctx, principal.ID.String())
	}
	return &Client{
		conn:      conn,
		send:      make(chan []byte, cfg.SendBuffer),
		principal: principal,
		cfg:       cfg,
		log:       log,
		ctx:       ctx,
	}
}

// Principal returns the identity bound to this connection.
func (c *Client) Principal() access.Principal {
	return c.principal
}

// Context returns the connection-scoped context.
func (c *Client) Context() context.Context {
	return c.ctx
}

// SendFrame queues a frame for this client only. Returns false when the
// buffer is full.
func (c *Client) SendFrame(event string, payload any) bool {
	frame, err := NewFrame(event, payload)
	if err != nil {
		return false
	}
	raw, err := json.Marshal(frame)
	if err != nil {
		return false
	}
	return c.trySend(raw)
}

// trySend queues raw bytes for the write pump. Returns false when the client
// has been closed or its buffer is full. Sends and closeSend serialize on
// sendMu so a concurrent unregister can never close the channel mid-send.
func (c *Client) trySend(raw []byte) bool {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return false
	}
	select {
	case c.send <- raw:
		return true
	default:
		return false
	}
}

// closeSend closes the send channel exactly once.
func (c *Client) closeSend() {
	c.sendMu.Lock()
	defer c.sendMu.Unlock()
	if c.closed {
		return
	}
	c.closed = true
	close(c.send)
}

// ReadPump consumes inbound frames until the connection drops, handing each
// one to the dispatcher. It must run on its own goroutine; it unregisters
// the client on exit.
func (c *Client) ReadPump(hub *Hub, dispatch func(*Client, Frame)) {
	defer func() {
		hub.Unregister(c)
		c.conn.Close()
	}()

	c.conn.SetReadLimit(c.cfg.MaxMessageSize)
	c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongTimeout))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(c.cfg.PongTimeout))
	})

	for {
		_, raw, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) && c.log != nil {
				c.log.Warn(c.ctx, "websocket closed unexpectedly: "+err.Error())
			}
			return
		}

		var frame Frame
		if err := json.Unmarshal(raw, &frame); err != nil {
			c.SendFrame(EventError, errorEvent{Message: "malformed frame"})
			continue
		}
		dispatch(c, frame)
	}
}

// WritePump drains the send channel onto the wire and keeps the connection
// alive with pings. It must run on its own goroutine.
func (c *Client) WritePump() {
	pingInterval := c.cfg.PongTimeout * 9 / 10
	ticker := time.NewTicker(pingInterval)
	defer func() {
		ticker.Stop()
		c.conn.Close()
	}()

	for {
		select {
		case raw, ok := <-c.send:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if !ok {
				c.conn.WriteMessage(websocket.CloseMessage, []byte{})
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, raw); err != nil {
				return
			}
		case <-ticker.C:
			c.conn.SetWriteDeadline(time.Now().Add(c.cfg.WriteTimeout))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				return
			}
		}
	}
}
