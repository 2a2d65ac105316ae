package logic

import (
	"context"
	"errors"
	"fmt"
	"time"

	"civicdesk/internal/constants"
	"civicdesk/internal/dao/repository"
	"civicdesk/internal/dto"
	"civicdesk/internal/metrics"
	"civicdesk/internal/models"
	"civicdesk/pkg/pagination"

	"go.uber.org/zap"
)

// DefaultPurgeDays is the retention horizon used when a purge names none.
const DefaultPurgeDays = 90

// AuditQueryLogic serves listing, aggregation and retention of the audit trail.
type AuditQueryLogic struct {
	auditRepo repository.AuditLogRepository
	recorder  *AuditRecorder
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewAuditQueryLogic creates a new instance of AuditQueryLogic.
func NewAuditQueryLogic(auditRepo repository.AuditLogRepository, recorder *AuditRecorder, m *metrics.Metrics, logger *zap.Logger) *AuditQueryLogic {
	return &AuditQueryLogic{
		auditRepo: auditRepo,
		recorder:  recorder,
		metrics:   m,
		logger:    logger.Named("AuditQueryLogic"),
		now:       time.Now,
	}
}

// ListAuditLogs returns one page of records matching filter, newest first.
func (l *AuditQueryLogic) ListAuditLogs(ctx context.Context, filter *repository.AuditLogFilter, pageReq *pagination.PageRequest) (*pagination.PageResult, error) {
	if filter == nil {
		filter = repository.NewAuditLogFilter()
	}
	if filter.TargetType != "" {
		targetType := constants.ParseTargetType(filter.TargetType)
		if !targetType.IsValid() {
			return nil, newValidationError(fmt.Errorf("%w: %q", ErrInvalidTargetType, filter.TargetType))
		}
		// Stored values are canonical lowercase.
		filter.TargetType = targetType.String()
	}
	if err := validateRange(filter.StartDate, filter.EndDate); err != nil {
		return nil, err
	}

	logs, total, err := l.auditRepo.Find(ctx, &repository.FindAuditLogsParams{
		Filter: filter,
		Offset: pageReq.GetOffset(),
		Limit:  pageReq.GetLimit(),
	})
	if err != nil {
		return nil, fmt.Errorf("%w: list audit logs: %w", ErrStoreFailure, err)
	}

	return pagination.NewPageResult(logs, total, pageReq), nil
}

// GetStatistics summarises the trail within tr.
func (l *AuditQueryLogic) GetStatistics(ctx context.Context, tr repository.TimeRange) (*dto.AuditStatistics, error) {
	if err := validateRange(tr.Start, tr.End); err != nil {
		return nil, err
	}

	stats, err := l.auditRepo.Statistics(ctx, tr)
	if err == nil {
		return stats, nil
	}

	l.logger.Warn("GetStatistics: faceted aggregation failed, falling back to per-dimension counts", zap.Error(err))
	stats, fallbackErr := l.groupedStatistics(ctx, tr)
	if fallbackErr != nil {
		return nil, fmt.Errorf("%w: audit statistics: %w", ErrStoreFailure, errors.Join(err, fallbackErr))
	}
	return stats, nil
}

// groupedStatistics builds the action and target type breakdowns one dimension at a time.
// Top actors need the display-name snapshot and are left empty.
func (l *AuditQueryLogic) groupedStatistics(ctx context.Context, tr repository.TimeRange) (*dto.AuditStatistics, error) {
	byAction, err := l.auditRepo.CountGroupedBy(ctx, repository.DimensionAction, tr)
	if err != nil {
		return nil, err
	}
	byTargetType, err := l.auditRepo.CountGroupedBy(ctx, repository.DimensionTargetType, tr)
	if err != nil {
		return nil, err
	}

	stats := &dto.AuditStatistics{
		ByAction:     byAction,
		ByTargetType: byTargetType,
		TopActors:    []dto.ActorCount{},
	}
	for _, g := range byAction {
		stats.TotalCount += g.Count
	}
	return stats, nil
}

// PurgeOlderThan deletes every record created more than days ago. Non-positive days use DefaultPurgeDays.
func (l *AuditQueryLogic) PurgeOlderThan(ctx context.Context, days int) (int64, error) {
	if days <= 0 {
		days = DefaultPurgeDays
	}
	cutoff := l.now().Add(-time.Duration(days) * 24 * time.Hour)

	deleted, err := l.auditRepo.DeleteWhere(ctx, repository.NewAuditLogFilter(repository.WithCreatedBefore(cutoff)))
	if err != nil {
		return 0, fmt.Errorf("%w: purge audit logs: %w", ErrStoreFailure, err)
	}

	l.metrics.AddPurged(deleted)
	l.logger.Info("PurgeOlderThan: audit logs purged",
		zap.Int("daysOld", days), zap.Time("cutoff", cutoff), zap.Int64("deleted", deleted))
	return deleted, nil
}

// CreateAuditLog records a manual entry attributed to operator.
func (l *AuditQueryLogic) CreateAuditLog(ctx context.Context, operator *models.User, req *dto.CreateAuditLogRequest) (*models.AuditLog, error) {
	return l.recorder.Record(ctx, dto.NewRecordFromCreateRequest(operator, req))
}

func validateRange(start, end *time.Time) error {
	if start != nil && end != nil && start.After(*end) {
		return newValidationError(fmt.Errorf("startDate %s is after endDate %s", start.Format(time.RFC3339), end.Format(time.RFC3339)))
	}
	return nil
}
