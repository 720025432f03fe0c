package hub

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"

	"github.com/soar/padremap/internal/assign"
	"github.com/soar/padremap/internal/gamepad"
	"github.com/soar/padremap/internal/remap"
)

// ErrBusy is reported when a client asks for a second assignment while one
// is still running.
const ErrBusy gamepad.Code = "busy"

// Client represents a connected WebSocket client.
type Client struct {
	hub  *Hub
	conn *websocket.Conn
	log  *zap.Logger
	send chan []byte
	quit chan struct{}
	once sync.Once

	mu     sync.Mutex
	cancel context.CancelFunc // running assignment, if any
}

// NewClient creates a new Client attached to the hub.
func NewClient(hub *Hub, conn *websocket.Conn) *Client {
	return &Client{
		hub:  hub,
		conn: conn,
		log:  hub.log.With(zap.String("remote", conn.RemoteAddr().String())),
		send: make(chan []byte, 256),
		quit: make(chan struct{}),
	}
}

// Send queues msg for delivery. It reports false if the send buffer is full.
func (c *Client) Send(msg []byte) bool {
	select {
	case <-c.quit:
		return true
	default:
	}

	select {
	case c.send <- msg:
		return true
	default:
		return false
	}
}

func (c *Client) sendJSON(msg *WSMessage) {
	data, err := json.Marshal(msg)
	if err != nil {
		c.log.Error("marshal message", zap.Error(err))
		return
	}
	c.Send(data)
}

func (c *Client) close() {
	c.once.Do(func() {
		close(c.quit)
		c.stopAssign()
	})
}

// WritePump sends messages from the send channel to the WebSocket connection.
func (c *Client) WritePump() {
	defer func() {
		c.conn.Close()
	}()

	for {
		select {
		case msg := <-c.send:
			err := c.conn.WriteMessage(websocket.TextMessage, msg)
			if err != nil {
				return
			}

		case <-c.quit:
			return
		}
	}
}

// ReadPumpWithHandler reads messages from the WebSocket and handles client commands.
func (c *Client) ReadPumpWithHandler(svc remap.Service, timeout time.Duration) {
	defer func() {
		c.hub.Unregister(c)
		c.close()
		c.conn.Close()
	}()

	for {
		_, message, err := c.conn.ReadMessage()
		if err != nil {
			break
		}

		var clientMsg ClientMessage
		if err := json.Unmarshal(message, &clientMsg); err != nil {
			c.log.Warn("invalid client message", zap.Error(err))
			continue
		}

		switch clientMsg.Type {
		case "list":
			c.sendJSON(NewDevicesMessage(0, svc.Devices()))

		case "assign":
			mode, err := assign.ParseMode(clientMsg.Mode)
			if err != nil {
				c.sendJSON(NewErrorMessage(clientMsg.ID, "invalid_mode"))
				continue
			}
			c.startAssign(svc, clientMsg.ID, mode, timeout)

		case "cancel":
			c.stopAssign()

		default:
			c.log.Warn("unknown client message", zap.String("type", clientMsg.Type))
		}
	}
}

func (c *Client) startAssign(svc remap.Service, id gamepad.ID, mode assign.Mode, timeout time.Duration) {
	c.mu.Lock()
	if c.cancel != nil {
		c.mu.Unlock()
		c.sendJSON(NewErrorMessage(id, ErrBusy))
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	c.cancel = cancel
	c.mu.Unlock()

	go func() {
		defer func() {
			c.mu.Lock()
			c.cancel = nil
			c.mu.Unlock()
			cancel()
		}()

		control, err := svc.Assign(ctx, id, mode)
		switch {
		case err == nil:
			c.sendJSON(NewAssignedMessage(id, mode.String(), control))

		case ctx.Err() != nil, gamepad.CodeOf(err) == remap.ErrCancelled:
			c.sendJSON(NewCancelledMessage(id, mode.String()))

		default:
			c.sendJSON(NewErrorMessage(id, gamepad.CodeOf(err)))
		}
	}()
}

func (c *Client) stopAssign() {
	c.mu.Lock()
	cancel := c.cancel
	c.mu.Unlock()

	if cancel != nil {
		cancel()
	}
}
