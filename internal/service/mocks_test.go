package service

import (
	"context"
	"sync"

	"civicdesk/internal/dao/repository"
	"civicdesk/internal/dto"
	"civicdesk/internal/models"
	"civicdesk/pkg/pagination"

	"github.com/stretchr/testify/mock"
)

type recordingSink struct {
	mu      sync.Mutex
	entries []*dto.RecordAuditLogRequest
	panics  bool
}

func (s *recordingSink) RecordAsync(req *dto.RecordAuditLogRequest) {
	if s.panics {
		panic("sink exploded")
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	s.entries = append(s.entries, req)
}

func (s *recordingSink) recorded() []*dto.RecordAuditLogRequest {
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]*dto.RecordAuditLogRequest(nil), s.entries...)
}

type mockAuditQueryService struct {
	mock.Mock
}

func (m *mockAuditQueryService) ListAuditLogs(ctx context.Context, filter *repository.AuditLogFilter, pageReq *pagination.PageRequest) (*pagination.PageResult, error) {
	args := m.Called(ctx, filter, pageReq)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*pagination.PageResult), args.Error(1)
}

func (m *mockAuditQueryService) GetStatistics(ctx context.Context, tr repository.TimeRange) (*dto.AuditStatistics, error) {
	args := m.Called(ctx, tr)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.AuditStatistics), args.Error(1)
}

func (m *mockAuditQueryService) PurgeOlderThan(ctx context.Context, days int) (int64, error) {
	args := m.Called(ctx, days)
	return args.Get(0).(int64), args.Error(1)
}

func (m *mockAuditQueryService) CreateAuditLog(ctx context.Context, operator *models.User, req *dto.CreateAuditLogRequest) (*models.AuditLog, error) {
	args := m.Called(ctx, operator, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*models.AuditLog), args.Error(1)
}

type mockNotificationSender struct {
	mock.Mock
}

func (m *mockNotificationSender) Send(ctx context.Context, req *dto.SendNotificationRequest) (*dto.SendNotificationResponse, error) {
	args := m.Called(ctx, req)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*dto.SendNotificationResponse), args.Error(1)
}
