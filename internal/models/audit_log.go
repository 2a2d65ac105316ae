package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuditLog is one immutable entry of the administrative audit trail.
// ActorDisplayName is a snapshot taken at write time and is never re-joined.
type AuditLog struct {
	ID               primitive.ObjectID     `json:"id" bson:"_id,omitempty"`
	ActorID          primitive.ObjectID     `json:"actorId" bson:"actor_id"`
	ActorDisplayName string                 `json:"actorDisplayName" bson:"actor_display_name"`
	Action           string                 `json:"action" bson:"action"`
	TargetType       string                 `json:"targetType" bson:"target_type"`
	TargetID         string                 `json:"targetId,omitempty" bson:"target_id,omitempty"`
	Details          map[string]interface{} `json:"details,omitempty" bson:"details,omitempty"`
	ClientIP         string                 `json:"clientIp,omitempty" bson:"client_ip,omitempty"`
	ClientAgent      string                 `json:"clientAgent,omitempty" bson:"client_agent,omitempty"`
	CreatedAt        time.Time              `json:"createdAt" bson:"created_at"`
}
