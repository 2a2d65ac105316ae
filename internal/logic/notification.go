package logic

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"civicdesk/internal/constants"
	"civicdesk/internal/dto"

	"github.com/google/uuid"
	"go.uber.org/zap"
)

var (
	errMissingType      = errors.New("notification type is required")
	errMissingTarget    = errors.New("notification target is required")
	errUnknownScope     = errors.New("unknown notification scope")
	errBroadcastBlocked = errors.New("only announcement lifecycle notifications may be broadcast to all")
)

// Notifier delivers notifications to live connections. Each method reports the
// number of local recipients that accepted the event.
type Notifier interface {
	EmitToUser(userID, eventType string, data interface{}) int
	EmitToRole(role, eventType string, data interface{}) int
	BroadcastToAll(eventType string, data interface{}) int
}

// NotificationLogic validates notification requests and hands them to the fan-out.
type NotificationLogic struct {
	notifier Notifier
	logger   *zap.Logger
}

// NewNotificationLogic creates a new instance of NotificationLogic.
func NewNotificationLogic(notifier Notifier, logger *zap.Logger) *NotificationLogic {
	return &NotificationLogic{
		notifier: notifier,
		logger:   logger.Named("NotificationLogic"),
	}
}

// Send pushes one notification to the rooms selected by req.Scope.
// Delivery is best effort: zero live recipients is not an error.
func (l *NotificationLogic) Send(ctx context.Context, req *dto.SendNotificationRequest) (*dto.SendNotificationResponse, error) {
	if err := validateNotification(req); err != nil {
		return nil, err
	}

	var delivered int
	switch req.Scope {
	case constants.ScopeUser:
		delivered = l.notifier.EmitToUser(req.Target, req.Type, req.Data)
	case constants.ScopeRole:
		delivered = l.notifier.EmitToRole(req.Target, req.Type, req.Data)
	case constants.ScopeAll:
		delivered = l.notifier.BroadcastToAll(req.Type, req.Data)
	}

	l.logger.Debug("Send: notification emitted",
		zap.String("scope", string(req.Scope)),
		zap.String("target", req.Target),
		zap.String("type", req.Type),
		zap.Int("delivered", delivered))

	return &dto.SendNotificationResponse{
		ID:     uuid.NewString(),
		Scope:  req.Scope,
		Target: req.Target,
		Type:   req.Type,
	}, nil
}

func validateNotification(req *dto.SendNotificationRequest) error {
	req.Type = strings.TrimSpace(req.Type)
	req.Target = strings.TrimSpace(req.Target)

	if req.Type == "" {
		return newValidationError(errMissingType)
	}
	switch req.Scope {
	case constants.ScopeUser, constants.ScopeRole:
		if req.Target == "" {
			return newValidationError(errMissingTarget)
		}
	case constants.ScopeAll:
		if !constants.IsAnnouncementLifecycle(req.Type) {
			return newValidationError(fmt.Errorf("%w: %s", errBroadcastBlocked, req.Type))
		}
		req.Target = ""
	default:
		return newValidationError(fmt.Errorf("%w: %q", errUnknownScope, req.Scope))
	}
	return nil
}
