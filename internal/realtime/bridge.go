package realtime

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"civicdesk/internal/conf"
	"civicdesk/internal/constants"
	"civicdesk/internal/mq"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

const relayPublishTimeout = 2 * time.Second

// relayEnvelope is the broker message carrying one notification between instances.
type relayEnvelope struct {
	Origin string                      `json:"origin"`
	Scope  constants.NotificationScope `json:"scope"`
	Target string                      `json:"target,omitempty"`
	Type   string                      `json:"type"`
	Data   json.RawMessage             `json:"data,omitempty"`
}

// Bridge delivers notifications to the local hub and relays them to the other
// instances through the broker. Relayed messages are delivered at most once.
type Bridge struct {
	hub       *Hub
	publisher mq.Publisher
	exchange  string
	origin    string
	logger    *zap.Logger
}

func NewBridge(hub *Hub, publisher mq.Publisher, cfg *conf.RabbitMQConfig, logger *zap.Logger) *Bridge {
	return &Bridge{
		hub:       hub,
		publisher: publisher,
		exchange:  cfg.NotificationExchange,
		origin:    uuid.NewString(),
		logger:    logger.Named("Bridge"),
	}
}

// Exchange returns the broker topic the bridge publishes and listens on.
func (b *Bridge) Exchange() string { return b.exchange }

func (b *Bridge) EmitToUser(userID, eventType string, data interface{}) int {
	n := b.hub.EmitToUser(userID, eventType, data)
	b.relay(constants.ScopeUser, userID, eventType, data)
	return n
}

func (b *Bridge) EmitToRole(role, eventType string, data interface{}) int {
	n := b.hub.EmitToRole(role, eventType, data)
	b.relay(constants.ScopeRole, role, eventType, data)
	return n
}

func (b *Bridge) BroadcastToAll(eventType string, data interface{}) int {
	n := b.hub.BroadcastToAll(eventType, data)
	b.relay(constants.ScopeAll, "", eventType, data)
	return n
}

// Handle delivers a relayed notification to the local hub. Messages this
// instance published itself are ignored.
func (b *Bridge) Handle(ctx context.Context, body []byte) error {
	var env relayEnvelope
	if err := json.Unmarshal(body, &env); err != nil {
		return fmt.Errorf("decode relay envelope: %w", err)
	}
	if env.Origin == b.origin {
		return nil
	}

	var data interface{}
	if len(env.Data) > 0 {
		data = env.Data
	}

	switch env.Scope {
	case constants.ScopeUser:
		b.hub.EmitToUser(env.Target, env.Type, data)
	case constants.ScopeRole:
		b.hub.EmitToRole(env.Target, env.Type, data)
	case constants.ScopeAll:
		b.hub.BroadcastToAll(env.Type, data)
	default:
		return fmt.Errorf("unknown relay scope %q", env.Scope)
	}
	return nil
}

func (b *Bridge) relay(scope constants.NotificationScope, target, eventType string, data interface{}) {
	var raw json.RawMessage
	if data != nil {
		encoded, err := json.Marshal(data)
		if err != nil {
			b.logger.Error("relay: failed to marshal data", zap.Error(err), zap.String("type", eventType))
			return
		}
		raw = encoded
	}
	body, err := json.Marshal(relayEnvelope{
		Origin: b.origin,
		Scope:  scope,
		Target: target,
		Type:   eventType,
		Data:   raw,
	})
	if err != nil {
		b.logger.Error("relay: failed to marshal envelope", zap.Error(err), zap.String("type", eventType))
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), relayPublishTimeout)
	defer cancel()
	if err := b.publisher.Publish(ctx, b.exchange, body); err != nil {
		b.logger.Warn("relay: publish failed, remote instances miss this notification",
			zap.Error(err), zap.String("scope", string(scope)), zap.String("type", eventType))
	}
}
