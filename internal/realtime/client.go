package realtime

import (
	"context"
	"encoding/json"
	"errors"
	"time"

	"civicdesk/internal/conf"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

const (
	writeWait      = 10 * time.Second
	maxMessageSize = 4096

	defaultSendBuffer   = 32
	defaultPingInterval = 30 * time.Second
)

// Client is one live WebSocket connection. Its room fields are guarded by the hub lock.
type Client struct {
	id   string
	hub  *Hub
	conn *websocket.Conn
	send chan []byte

	identity string
	roles    map[string]struct{}

	pingInterval time.Duration
	logger       *zap.Logger
}

// NewClient wraps an upgraded connection. Call Serve to run it.
func NewClient(id string, hub *Hub, conn *websocket.Conn, cfg *conf.RealtimeConfig, logger *zap.Logger) *Client {
	c := newClient(id, hub, sendBufferSize(cfg))
	c.conn = conn
	c.pingInterval = pingInterval(cfg)
	c.logger = logger.Named("Client").With(zap.String("connID", id))
	return c
}

func newClient(id string, hub *Hub, buffer int) *Client {
	return &Client{
		id:           id,
		hub:          hub,
		send:         make(chan []byte, buffer),
		roles:        make(map[string]struct{}),
		pingInterval: defaultPingInterval,
		logger:       zap.NewNop(),
	}
}

// ID returns the connection id.
func (c *Client) ID() string { return c.id }

// Serve registers the connection and blocks until it is closed by the peer, the hub or ctx.
func (c *Client) Serve(ctx context.Context) error {
	if err := c.hub.Register(c); err != nil {
		_ = c.conn.WriteControl(websocket.CloseMessage,
			websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"),
			time.Now().Add(writeWait))
		_ = c.conn.Close()
		return err
	}

	done := make(chan struct{})
	go func() {
		defer close(done)
		c.writePump()
	}()

	stop := context.AfterFunc(ctx, func() { _ = c.conn.Close() })
	defer stop()

	c.readPump()
	// Closing the send queue stops the write pump.
	c.hub.Unregister(c)
	<-done
	return nil
}

func (c *Client) readPump() {
	c.conn.SetReadLimit(maxMessageSize)
	pongWait := c.pingInterval * 2
	_ = c.conn.SetReadDeadline(time.Now().Add(pongWait))
	c.conn.SetPongHandler(func(string) error {
		return c.conn.SetReadDeadline(time.Now().Add(pongWait))
	})

	for {
		_, payload, err := c.conn.ReadMessage()
		if err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure, websocket.CloseNoStatusReceived) {
				c.logger.Debug("readPump: unexpected close", zap.Error(err))
			}
			return
		}
		c.handleMessage(payload)
	}
}

func (c *Client) handleMessage(payload []byte) {
	var msg Inbound
	if err := json.Unmarshal(payload, &msg); err != nil {
		c.logger.Debug("handleMessage: malformed message ignored", zap.Error(err))
		return
	}

	arg, ok := roomArgument(msg.Data)
	if !ok {
		c.logger.Debug("handleMessage: missing room argument", zap.String("event", msg.Event))
		return
	}

	var err error
	switch msg.Event {
	case EventJoin:
		err = c.hub.JoinUser(c, arg)
	case EventJoinRole:
		err = c.hub.JoinRole(c, arg)
	default:
		c.logger.Debug("handleMessage: unknown event ignored", zap.String("event", msg.Event))
		return
	}
	if err != nil && !errors.Is(err, ErrNotRegistered) {
		c.logger.Warn("handleMessage: join failed", zap.Error(err), zap.String("event", msg.Event))
	}
}

func (c *Client) writePump() {
	ticker := time.NewTicker(c.pingInterval)
	defer ticker.Stop()

	for {
		select {
		case frame, ok := <-c.send:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if !ok {
				// Closed by the hub.
				_ = c.conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseNormalClosure, ""))
				_ = c.conn.Close()
				return
			}
			if err := c.conn.WriteMessage(websocket.TextMessage, frame); err != nil {
				c.logger.Debug("writePump: write failed", zap.Error(err))
				_ = c.conn.Close()
				return
			}
		case <-ticker.C:
			_ = c.conn.SetWriteDeadline(time.Now().Add(writeWait))
			if err := c.conn.WriteMessage(websocket.PingMessage, nil); err != nil {
				_ = c.conn.Close()
				return
			}
		}
	}
}

func sendBufferSize(cfg *conf.RealtimeConfig) int {
	if cfg == nil || cfg.SendBufferSize <= 0 {
		return defaultSendBuffer
	}
	return cfg.SendBufferSize
}

func pingInterval(cfg *conf.RealtimeConfig) time.Duration {
	if cfg == nil || cfg.PingIntervalSecond <= 0 {
		return defaultPingInterval
	}
	return time.Duration(cfg.PingIntervalSecond) * time.Second
}
