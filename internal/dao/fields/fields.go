package fields

const (
	FieldObjectId  = "_id"
	FieldCreatedAt = "created_at"
	FieldName      = "name"
	FieldEmail     = "email"
	FieldRole      = "role"

	FieldAuditActorID          = "actor_id"
	FieldAuditActorDisplayName = "actor_display_name"
	FieldAuditAction           = "action"
	FieldAuditTargetType       = "target_type"
	FieldAuditTargetID         = "target_id"
)
