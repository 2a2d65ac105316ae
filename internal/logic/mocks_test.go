package logic

import (
	"context"

	"civicdesk/internal/dao/repository"
	"civicdesk/internal/dto"
	"civicdesk/internal/models"

	"github.com/stretchr/testify/mock"
	"go.mongodb.org/mongo-driver/bson/primitive"
)

// mockAuditLogRepository implements repository.AuditLogRepository using testify/mock.
type mockAuditLogRepository struct {
	mock.Mock
}

func newMockAuditLogRepository() *mockAuditLogRepository {
	return &mockAuditLogRepository{}
}

func (m *mockAuditLogRepository) Insert(ctx context.Context, log *models.AuditLog) (*models.AuditLog, error) {
	args := m.Called(ctx, log)
	if fn, ok := args.Get(0).(func(context.Context, *models.AuditLog) *models.AuditLog); ok {
		return fn(ctx, log), args.Error(1)
	}
	if res := args.Get(0); res != nil {
		return res.(*models.AuditLog), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuditLogRepository) Find(ctx context.Context, params *repository.FindAuditLogsParams) ([]*models.AuditLog, int64, error) {
	args := m.Called(ctx, params)
	if res := args.Get(0); res != nil {
		return res.([]*models.AuditLog), args.Get(1).(int64), args.Error(2)
	}
	return nil, args.Get(1).(int64), args.Error(2)
}

func (m *mockAuditLogRepository) DeleteWhere(ctx context.Context, filter *repository.AuditLogFilter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockAuditLogRepository) CountGroupedBy(ctx context.Context, dimension repository.AuditDimension, tr repository.TimeRange) ([]dto.GroupCount, error) {
	args := m.Called(ctx, dimension, tr)
	if res := args.Get(0); res != nil {
		return res.([]dto.GroupCount), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuditLogRepository) Statistics(ctx context.Context, tr repository.TimeRange) (*dto.AuditStatistics, error) {
	args := m.Called(ctx, tr)
	if res := args.Get(0); res != nil {
		return res.(*dto.AuditStatistics), args.Error(1)
	}
	return nil, args.Error(1)
}

func (m *mockAuditLogRepository) EnsureIndexes(ctx context.Context) error {
	args := m.Called(ctx)
	return args.Error(0)
}

// mockUserRepository implements repository.UserRepository using testify/mock.
type mockUserRepository struct {
	mock.Mock
}

func newMockUserRepository() *mockUserRepository {
	return &mockUserRepository{}
}

func (m *mockUserRepository) GetUserByID(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	args := m.Called(ctx, id)
	if res := args.Get(0); res != nil {
		return res.(*models.User), args.Error(1)
	}
	return nil, args.Error(1)
}

type mockNotifier struct {
	mock.Mock
}

func (m *mockNotifier) EmitToUser(userID, eventType string, data interface{}) int {
	return m.Called(userID, eventType, data).Int(0)
}

func (m *mockNotifier) EmitToRole(role, eventType string, data interface{}) int {
	return m.Called(role, eventType, data).Int(0)
}

func (m *mockNotifier) BroadcastToAll(eventType string, data interface{}) int {
	return m.Called(eventType, data).Int(0)
}
