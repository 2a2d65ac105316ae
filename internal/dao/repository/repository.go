package repository

import (
	"context"

	"civicdesk/internal/dto"
	"civicdesk/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// AuditLogRepository is the audit record store. Records are append-only: there is no update method.
type AuditLogRepository interface {
	// Insert assigns the id and created_at of the record and returns the stored copy.
	Insert(ctx context.Context, log *models.AuditLog) (*models.AuditLog, error)
	// Find returns one page of matching records, newest first, and the total match count.
	Find(ctx context.Context, params *FindAuditLogsParams) ([]*models.AuditLog, int64, error)
	// DeleteWhere removes every matching record. An empty filter is rejected.
	DeleteWhere(ctx context.Context, filter *AuditLogFilter) (int64, error)
	// CountGroupedBy counts records per value of dimension, sorted by count desc.
	CountGroupedBy(ctx context.Context, dimension AuditDimension, tr TimeRange) ([]dto.GroupCount, error)
	// Statistics computes every breakdown in a single aggregation.
	Statistics(ctx context.Context, tr TimeRange) (*dto.AuditStatistics, error)
	// EnsureIndexes creates the secondary and retention indexes.
	EnsureIndexes(ctx context.Context) error
}

// UserRepository resolves actor identities.
type UserRepository interface {
	GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error)
}
