package logic

import (
	"context"
	"errors"
	"fmt"
	"maps"
	"runtime/debug"
	"strings"
	"sync"
	"time"

	"civicdesk/internal/conf"
	"civicdesk/internal/constants"
	"civicdesk/internal/dao/repository"
	"civicdesk/internal/dto"
	"civicdesk/internal/metrics"
	"civicdesk/internal/models"

	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.uber.org/zap"
)

// AuditRecorder validates audit entries, snapshots the actor name and persists them.
type AuditRecorder struct {
	auditRepo    repository.AuditLogRepository
	userRepo     repository.UserRepository
	metrics      *metrics.Metrics
	writeTimeout time.Duration
	inflight     sync.WaitGroup
	logger       *zap.Logger
}

// NewAuditRecorder creates a new instance of AuditRecorder.
func NewAuditRecorder(auditRepo repository.AuditLogRepository, userRepo repository.UserRepository, cfg *conf.AuditConfig, m *metrics.Metrics, logger *zap.Logger) *AuditRecorder {
	return &AuditRecorder{
		auditRepo:    auditRepo,
		userRepo:     userRepo,
		metrics:      m,
		writeTimeout: cfg.WriteTimeout(),
		logger:       logger.Named("AuditRecorder"),
	}
}

// Record writes one entry and returns the stored record.
// Errors match ErrValidation, ErrActorNotFound or ErrStoreFailure.
func (r *AuditRecorder) Record(ctx context.Context, req *dto.RecordAuditLogRequest) (*models.AuditLog, error) {
	targetType, err := validateRecordRequest(req)
	if err != nil {
		return nil, err
	}

	actor, err := r.resolveActor(ctx, req.ActorID)
	if err != nil {
		return nil, err
	}

	stored, err := r.auditRepo.Insert(ctx, buildAuditLog(actor, req, targetType.String()))
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrStoreFailure, err)
	}
	return stored, nil
}

// RecordAsync writes the entry on its own goroutine and returns immediately.
// The write is detached from the caller's context and bounded by the configured timeout.
// Failures are logged and counted, never returned.
func (r *AuditRecorder) RecordAsync(req *dto.RecordAuditLogRequest) {
	entry := *req
	entry.Details = maps.Clone(req.Details)

	r.inflight.Add(1)
	r.metrics.AuditInFlight.Inc()
	go func() {
		defer r.inflight.Done()
		defer r.metrics.AuditInFlight.Dec()
		defer func() {
			if p := recover(); p != nil {
				r.metrics.IncAuditWrite(metrics.OutcomePanicked)
				r.logger.Error("RecordAsync: panic recovered",
					zap.Any("panic", p),
					zap.String("action", entry.Action),
					zap.ByteString("stack", debug.Stack()))
			}
		}()

		ctx, cancel := context.WithTimeout(context.Background(), r.writeTimeout)
		defer cancel()

		start := time.Now()
		_, err := r.Record(ctx, &entry)
		r.metrics.AuditWriteDuration.Observe(time.Since(start).Seconds())

		switch {
		case err == nil:
			r.metrics.IncAuditWrite(metrics.OutcomeRecorded)
		case errors.Is(err, ErrActorNotFound):
			r.metrics.IncAuditWrite(metrics.OutcomeSkipped)
			r.logger.Debug("RecordAsync: actor not found, skipping",
				zap.Stringer("actorID", entry.ActorID), zap.String("action", entry.Action))
		default:
			r.metrics.IncAuditWrite(metrics.OutcomeFailed)
			r.logger.Error("RecordAsync: failed to record audit log", zap.Error(err),
				zap.Stringer("actorID", entry.ActorID),
				zap.String("action", entry.Action),
				zap.String("targetType", entry.TargetType))
		}
	}()
}

// Wait blocks until every pending asynchronous write finishes or ctx is done.
func (r *AuditRecorder) Wait(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		r.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (r *AuditRecorder) resolveActor(ctx context.Context, id primitive.ObjectID) (*models.User, error) {
	actor, err := r.userRepo.GetUserByID(ctx, id)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, fmt.Errorf("%w: %s", ErrActorNotFound, id.Hex())
		}
		return nil, fmt.Errorf("%w: resolve actor: %w", ErrStoreFailure, err)
	}
	return actor, nil
}

func validateRecordRequest(req *dto.RecordAuditLogRequest) (constants.TargetType, error) {
	if req.ActorID.IsZero() {
		return constants.TargetTypeUnknown, newValidationError(ErrMissingActor)
	}
	if strings.TrimSpace(req.Action) == "" {
		return constants.TargetTypeUnknown, newValidationError(ErrMissingAction)
	}
	targetType := constants.ParseTargetType(req.TargetType)
	if !targetType.IsValid() {
		return constants.TargetTypeUnknown, newValidationError(fmt.Errorf("%w: %q", ErrInvalidTargetType, req.TargetType))
	}
	return targetType, nil
}
