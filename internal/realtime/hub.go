package realtime

import (
	"errors"
	"sync"

	"civicdesk/internal/constants"
	"civicdesk/internal/metrics"

	"go.uber.org/zap"
)

var (
	ErrHubClosed     = errors.New("hub is closed")
	ErrNotRegistered = errors.New("connection is not registered")
)

// Hub tracks live connections and their room memberships.
// Room mutations come from the owning connection's read loop or its teardown.
type Hub struct {
	mu      sync.RWMutex
	clients map[string]*Client
	rooms   map[string]map[string]*Client
	closed  bool
	metrics *metrics.Metrics
	logger  *zap.Logger
}

func NewHub(m *metrics.Metrics, logger *zap.Logger) *Hub {
	return &Hub{
		clients: make(map[string]*Client),
		rooms:   make(map[string]map[string]*Client),
		metrics: m,
		logger:  logger.Named("Hub"),
	}
}

// Register adds a connection with no room memberships.
func (h *Hub) Register(c *Client) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return ErrHubClosed
	}
	h.clients[c.id] = c
	h.metrics.Connections.Inc()
	h.logger.Debug("Register: connection opened", zap.String("connID", c.id))
	return nil
}

// Unregister removes the connection from every room and closes its send queue.
// It is safe to call more than once.
func (h *Hub) Unregister(c *Client) {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c.id]; !ok {
		return
	}
	h.detachLocked(c)
	h.metrics.Connections.Dec()
	h.logger.Debug("Unregister: connection closed", zap.String("connID", c.id))
}

// JoinUser places the connection in the identity room of userID.
// A connection holds one identity room; joining another replaces it.
func (h *Hub) JoinUser(c *Client, userID string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c.id]; !ok {
		return ErrNotRegistered
	}

	room := userRoom(userID)
	if c.identity == room {
		return nil
	}
	if c.identity != "" {
		h.leaveLocked(c, c.identity)
	}
	h.joinLocked(c, room)
	c.identity = room
	return nil
}

// JoinRole adds the connection to the room of role. Joining twice has no effect.
func (h *Hub) JoinRole(c *Client, role string) error {
	h.mu.Lock()
	defer h.mu.Unlock()

	if _, ok := h.clients[c.id]; !ok {
		return ErrNotRegistered
	}

	room := roleRoom(role)
	if _, ok := c.roles[room]; ok {
		return nil
	}
	h.joinLocked(c, room)
	c.roles[room] = struct{}{}
	return nil
}

// EmitToUser sends to every connection in the identity room of userID.
func (h *Hub) EmitToUser(userID, eventType string, data interface{}) int {
	return h.emitToRoom(constants.ScopeUser, userRoom(userID), eventType, data)
}

// EmitToRole sends to every connection in the room of role.
func (h *Hub) EmitToRole(role, eventType string, data interface{}) int {
	return h.emitToRoom(constants.ScopeRole, roleRoom(role), eventType, data)
}

// BroadcastToAll sends to every live connection regardless of rooms.
func (h *Hub) BroadcastToAll(eventType string, data interface{}) int {
	frame, ok := h.encode(eventType, data)
	if !ok {
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, c := range h.clients {
		if h.offer(c, frame) {
			delivered++
		}
	}
	h.metrics.IncEmitted(string(constants.ScopeAll), delivered)
	return delivered
}

// Close disconnects every client and rejects new registrations.
func (h *Hub) Close() {
	h.mu.Lock()
	defer h.mu.Unlock()

	if h.closed {
		return
	}
	h.closed = true
	for _, c := range h.clients {
		h.detachLocked(c)
		h.metrics.Connections.Dec()
	}
	h.logger.Info("Close: hub closed")
}

// ConnectionCount returns the number of live connections.
func (h *Hub) ConnectionCount() int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.clients)
}

// RoomSize returns the number of connections in room.
func (h *Hub) RoomSize(room string) int {
	h.mu.RLock()
	defer h.mu.RUnlock()
	return len(h.rooms[room])
}

func (h *Hub) emitToRoom(scope constants.NotificationScope, room, eventType string, data interface{}) int {
	frame, ok := h.encode(eventType, data)
	if !ok {
		return 0
	}

	h.mu.RLock()
	defer h.mu.RUnlock()

	delivered := 0
	for _, c := range h.rooms[room] {
		if h.offer(c, frame) {
			delivered++
		}
	}
	h.metrics.IncEmitted(string(scope), delivered)
	return delivered
}

func (h *Hub) encode(eventType string, data interface{}) ([]byte, bool) {
	frame, err := encodeNotification(eventType, data)
	if err != nil {
		h.logger.Error("encode: failed to marshal notification", zap.Error(err), zap.String("type", eventType))
		return nil, false
	}
	return frame, true
}

// offer never blocks; a full send queue drops the frame. Caller holds at least the read lock.
func (h *Hub) offer(c *Client, frame []byte) bool {
	select {
	case c.send <- frame:
		return true
	default:
		h.metrics.NotificationsDropped.Inc()
		h.logger.Debug("offer: send buffer full, dropping", zap.String("connID", c.id))
		return false
	}
}

func (h *Hub) joinLocked(c *Client, room string) {
	members, ok := h.rooms[room]
	if !ok {
		members = make(map[string]*Client)
		h.rooms[room] = members
	}
	members[c.id] = c
}

func (h *Hub) leaveLocked(c *Client, room string) {
	members, ok := h.rooms[room]
	if !ok {
		return
	}
	delete(members, c.id)
	if len(members) == 0 {
		delete(h.rooms, room)
	}
}

func (h *Hub) detachLocked(c *Client) {
	if c.identity != "" {
		h.leaveLocked(c, c.identity)
		c.identity = ""
	}
	for room := range c.roles {
		h.leaveLocked(c, room)
	}
	c.roles = make(map[string]struct{})
	delete(h.clients, c.id)
	close(c.send)
}
