package mongodb

const (
	CollectionUsers     = "users"
	CollectionAuditLogs = "audit_logs"
)

const (
	indexAuditTTL = "created_at_ttl"
)
