package dto

import (
	"civicdesk/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// GroupCount is one bucket of a single-dimension breakdown.
type GroupCount struct {
	Key   string `json:"key" bson:"_id"`
	Count int64  `json:"count" bson:"count"`
}

// ActorCount is one entry of the top-actors breakdown.
type ActorCount struct {
	ActorID          primitive.ObjectID `json:"actorId" bson:"_id"`
	ActorDisplayName string             `json:"actorDisplayName" bson:"actor_display_name"`
	Count            int64              `json:"count" bson:"count"`
}

// AuditStatistics is the faceted summary of the audit trail.
type AuditStatistics struct {
	ByAction     []GroupCount `json:"byAction"`
	ByTargetType []GroupCount `json:"byTargetType"`
	TopActors    []ActorCount `json:"topActors"`
	TotalCount   int64        `json:"totalCount"`
}

// RecordAuditLogRequest carries the metadata of one audited action to the recorder.
type RecordAuditLogRequest struct {
	ActorID    primitive.ObjectID
	Action     string
	TargetType string
	TargetID   string
	Details    map[string]interface{}
	IPAddress  string
	UserAgent  string
}

// ClientInfo is the network origin of a request.
type ClientInfo struct {
	IP        string
	UserAgent string
}

// CreateAuditLogRequest is the body of the manual record-creation endpoint.
type CreateAuditLogRequest struct {
	Action     string                 `json:"action"`
	TargetType string                 `json:"targetType"`
	TargetID   string                 `json:"targetId,omitempty"`
	Details    map[string]interface{} `json:"details,omitempty"`
	Client     ClientInfo             `json:"-"`
}

// NewRecordFromCreateRequest builds a recorder request for a manual entry made by operator.
func NewRecordFromCreateRequest(operator *models.User, req *CreateAuditLogRequest) *RecordAuditLogRequest {
	return &RecordAuditLogRequest{
		ActorID:    operator.UserId,
		Action:     req.Action,
		TargetType: req.TargetType,
		TargetID:   req.TargetID,
		Details:    req.Details,
		IPAddress:  req.Client.IP,
		UserAgent:  req.Client.UserAgent,
	}
}

// PurgeResult is returned by the retention endpoint.
type PurgeResult struct {
	DeletedCount int64 `json:"deletedCount"`
	DaysOld      int   `json:"daysOld"`
}
