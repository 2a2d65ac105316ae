package repository

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// ------------------- AuditLogFilter options -------------------

// AuditLogFilterOption configures an AuditLogFilter.
type AuditLogFilterOption func(*AuditLogFilter)

// NewAuditLogFilter builds a filter from the given options.
func NewAuditLogFilter(opts ...AuditLogFilterOption) *AuditLogFilter {
	f := &AuditLogFilter{}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// WithAction is an option to filter records by exact action.
func WithAction(action string) AuditLogFilterOption {
	return func(f *AuditLogFilter) {
		f.Action = action
	}
}

// WithTargetType is an option to filter records by target type.
func WithTargetType(targetType string) AuditLogFilterOption {
	return func(f *AuditLogFilter) {
		f.TargetType = targetType
	}
}

// WithTarget is an option to filter records by target type and id.
func WithTarget(targetType, targetID string) AuditLogFilterOption {
	return func(f *AuditLogFilter) {
		f.TargetType = targetType
		f.TargetID = targetID
	}
}

// WithActorID is an option to filter records by actor.
func WithActorID(actorID primitive.ObjectID) AuditLogFilterOption {
	return func(f *AuditLogFilter) {
		f.ActorID = &actorID
	}
}

// WithDateRange is an option to bound created_at inclusively. Nil bounds are ignored.
func WithDateRange(start, end *time.Time) AuditLogFilterOption {
	return func(f *AuditLogFilter) {
		f.StartDate = start
		f.EndDate = end
	}
}

// WithCreatedBefore is an option to match records strictly older than cutoff.
func WithCreatedBefore(cutoff time.Time) AuditLogFilterOption {
	return func(f *AuditLogFilter) {
		f.CreatedBefore = &cutoff
	}
}
