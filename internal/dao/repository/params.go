package repository

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// --- Parameter Structs ---

// AuditLogFilter selects audit records. Zero-valued fields do not constrain the query.
// StartDate and EndDate are inclusive; CreatedBefore is exclusive and is used by retention.
type AuditLogFilter struct {
	Action        string
	TargetType    string
	TargetID      string
	ActorID       *primitive.ObjectID
	StartDate     *time.Time
	EndDate       *time.Time
	CreatedBefore *time.Time
}

// IsEmpty reports whether the filter matches every record.
func (f *AuditLogFilter) IsEmpty() bool {
	return f == nil || (f.Action == "" &&
		f.TargetType == "" &&
		f.TargetID == "" &&
		f.ActorID == nil &&
		f.StartDate == nil &&
		f.EndDate == nil &&
		f.CreatedBefore == nil)
}

// TimeRange is an optional inclusive bound on created_at.
type TimeRange struct {
	Start *time.Time
	End   *time.Time
}

// AuditDimension names a field the audit trail can be grouped by.
type AuditDimension string

const (
	DimensionAction     AuditDimension = "action"
	DimensionTargetType AuditDimension = "target_type"
	DimensionActor      AuditDimension = "actor_id"
)

// FindAuditLogsParams holds the pagination window of a Find call.
type FindAuditLogsParams struct {
	Filter *AuditLogFilter
	Offset int
	Limit  int
}
