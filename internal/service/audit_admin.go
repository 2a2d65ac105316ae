package service

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"civicdesk/internal/dao/repository"
	"civicdesk/internal/dto"
	"civicdesk/internal/helper"
	"civicdesk/internal/logic"
	"civicdesk/internal/models"
	"civicdesk/pkg/pagination"

	"go.uber.org/zap"
)

// AuditQueryService is the audit logic used by the admin endpoints.
type AuditQueryService interface {
	ListAuditLogs(ctx context.Context, filter *repository.AuditLogFilter, pageReq *pagination.PageRequest) (*pagination.PageResult, error)
	GetStatistics(ctx context.Context, tr repository.TimeRange) (*dto.AuditStatistics, error)
	PurgeOlderThan(ctx context.Context, days int) (int64, error)
	CreateAuditLog(ctx context.Context, operator *models.User, req *dto.CreateAuditLogRequest) (*models.AuditLog, error)
}

// AuditAdminService serves the audit trail endpoints.
type AuditAdminService struct {
	auditLogic AuditQueryService
	logger     *zap.Logger
}

// NewAuditAdminService creates a new AuditAdminService.
func NewAuditAdminService(auditLogic AuditQueryService, logger *zap.Logger) *AuditAdminService {
	return &AuditAdminService{
		auditLogic: auditLogic,
		logger:     logger.Named("AuditAdminService"),
	}
}

// ListAuditLogs handles GET /api/admin/audit-logs.
func (s *AuditAdminService) ListAuditLogs(r *http.Request) *Response {
	q := r.URL.Query()

	start, end, err := parseDateRange(q.Get("startDate"), q.Get("endDate"))
	if err != nil {
		return ResponseErrorWithStatus(http.StatusBadRequest, err.Error())
	}
	actorID, err := helper.ParseObjectID(q.Get("actorId"))
	if err != nil {
		return ResponseErrorWithStatus(http.StatusBadRequest, "actorId: "+err.Error())
	}
	page, err := parseOptionalInt(q.Get("page"), "page")
	if err != nil {
		return ResponseErrorWithStatus(http.StatusBadRequest, err.Error())
	}
	if page > pagination.MaxPage {
		return ResponseErrorWithStatus(http.StatusBadRequest, fmt.Sprintf("page must not exceed %d", pagination.MaxPage))
	}
	limit, err := parseOptionalInt(q.Get("limit"), "limit")
	if err != nil {
		return ResponseErrorWithStatus(http.StatusBadRequest, err.Error())
	}

	opts := []repository.AuditLogFilterOption{
		repository.WithAction(strings.TrimSpace(q.Get("action"))),
		repository.WithTargetType(strings.TrimSpace(q.Get("targetType"))),
		repository.WithDateRange(start, end),
	}
	if actorID != nil {
		opts = append(opts, repository.WithActorID(*actorID))
	}

	result, err := s.auditLogic.ListAuditLogs(r.Context(), repository.NewAuditLogFilter(opts...), pagination.NewPageRequest(page, limit))
	if err != nil {
		s.logError("ListAuditLogs", err)
		return ResponseError(err)
	}
	return ResponsePage(result)
}

// GetStatistics handles GET /api/admin/audit-logs/statistics.
func (s *AuditAdminService) GetStatistics(r *http.Request) *Response {
	q := r.URL.Query()
	start, end, err := parseDateRange(q.Get("startDate"), q.Get("endDate"))
	if err != nil {
		return ResponseErrorWithStatus(http.StatusBadRequest, err.Error())
	}

	stats, err := s.auditLogic.GetStatistics(r.Context(), repository.TimeRange{Start: start, End: end})
	if err != nil {
		s.logError("GetStatistics", err)
		return ResponseError(err)
	}
	return ResponseSuccess(stats)
}

// CreateAuditLog handles POST /api/admin/audit-logs.
func (s *AuditAdminService) CreateAuditLog(r *http.Request) *Response {
	operator, ok := helper.OperatorFromContext(r.Context())
	if !ok {
		return ResponseErrorWithStatus(http.StatusUnauthorized, "Unauthorized")
	}

	var req dto.CreateAuditLogRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return ResponseErrorWithStatus(http.StatusBadRequest, "invalid request body")
	}
	req.Client = dto.ClientInfo{IP: helper.ClientIP(r), UserAgent: r.UserAgent()}

	record, err := s.auditLogic.CreateAuditLog(r.Context(), operator, &req)
	if err != nil {
		s.logError("CreateAuditLog", err)
		return ResponseError(err)
	}
	return ResponseCreated(record)
}

// CleanupAuditLogs handles DELETE /api/admin/audit-logs/cleanup.
func (s *AuditAdminService) CleanupAuditLogs(r *http.Request) *Response {
	days := logic.DefaultPurgeDays
	if raw := strings.TrimSpace(r.URL.Query().Get("daysOld")); raw != "" {
		v, err := strconv.Atoi(raw)
		if err != nil || v <= 0 {
			return ResponseErrorWithStatus(http.StatusBadRequest, "daysOld must be a positive integer")
		}
		days = v
	}

	deleted, err := s.auditLogic.PurgeOlderThan(r.Context(), days)
	if err != nil {
		s.logError("CleanupAuditLogs", err)
		return ResponseError(err)
	}
	return ResponseSuccessWithMsg(
		&dto.PurgeResult{DeletedCount: deleted, DaysOld: days},
		fmt.Sprintf("Deleted %d audit logs older than %d days", deleted, days),
	)
}

func (s *AuditAdminService) logError(method string, err error) {
	if statusFromError(err) >= http.StatusInternalServerError {
		s.logger.Error(method+": request failed", zap.Error(err))
	}
}

// parseDateRange reads inclusive bounds. A date-only endDate covers the whole day.
func parseDateRange(rawStart, rawEnd string) (*time.Time, *time.Time, error) {
	start, err := helper.ParseDate(rawStart, false)
	if err != nil {
		return nil, nil, fmt.Errorf("startDate: %w", err)
	}
	end, err := helper.ParseDate(rawEnd, true)
	if err != nil {
		return nil, nil, fmt.Errorf("endDate: %w", err)
	}
	return start, end, nil
}

func parseOptionalInt(raw, name string) (int, error) {
	raw = strings.TrimSpace(raw)
	if raw == "" {
		return 0, nil
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("%s must be an integer", name)
	}
	return v, nil
}
