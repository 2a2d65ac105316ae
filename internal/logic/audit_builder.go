package logic

import (
	"civicdesk/internal/dto"
	"civicdesk/internal/models"
)

// AuditLogOption defines a function that configures an AuditLog object.
type AuditLogOption func(*models.AuditLog)

// WithTargetID is an option to reference the affected entity.
func WithTargetID(id string) AuditLogOption {
	return func(log *models.AuditLog) {
		if id != "" {
			log.TargetID = id
		}
	}
}

// WithDetails is an option to attach free-form details.
func WithDetails(details map[string]interface{}) AuditLogOption {
	return func(log *models.AuditLog) {
		if len(details) > 0 {
			log.Details = details
		}
	}
}

// WithClient is an option to record the caller's network origin.
func WithClient(ip, agent string) AuditLogOption {
	return func(log *models.AuditLog) {
		log.ClientIP = ip
		log.ClientAgent = agent
	}
}

// NewAuditLog is a shared constructor for creating standardized audit log objects using the Option Pattern.
// Id and created_at are left to the store.
func NewAuditLog(actor *models.User, action, targetType string, opts ...AuditLogOption) *models.AuditLog {
	log := &models.AuditLog{
		ActorID:          actor.UserId,
		ActorDisplayName: actor.Name,
		Action:           action,
		TargetType:       targetType,
	}

	for _, opt := range opts {
		opt(log)
	}

	return log
}

// buildAuditLog turns a recorder request into a record attributed to actor.
func buildAuditLog(actor *models.User, req *dto.RecordAuditLogRequest, targetType string) *models.AuditLog {
	return NewAuditLog(actor, req.Action, targetType,
		WithTargetID(req.TargetID),
		WithDetails(req.Details),
		WithClient(req.IPAddress, req.UserAgent),
	)
}
