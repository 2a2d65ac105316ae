package service

import (
	"context"
	"encoding/json"
	"net/http"

	"civicdesk/internal/dto"

	"go.uber.org/zap"
)

// NotificationSender pushes notifications to live connections.
type NotificationSender interface {
	Send(ctx context.Context, req *dto.SendNotificationRequest) (*dto.SendNotificationResponse, error)
}

// NotificationsAdminService serves the notification endpoint.
type NotificationsAdminService struct {
	sender NotificationSender
	logger *zap.Logger
}

// NewNotificationsAdminService creates a new NotificationsAdminService.
func NewNotificationsAdminService(sender NotificationSender, logger *zap.Logger) *NotificationsAdminService {
	return &NotificationsAdminService{
		sender: sender,
		logger: logger.Named("NotificationsAdminService"),
	}
}

// SendNotification handles POST /api/admin/notifications.
func (s *NotificationsAdminService) SendNotification(r *http.Request) *Response {
	var req dto.SendNotificationRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		return ResponseErrorWithStatus(http.StatusBadRequest, "invalid request body")
	}

	sent, err := s.sender.Send(r.Context(), &req)
	if err != nil {
		if statusFromError(err) >= http.StatusInternalServerError {
			s.logger.Error("SendNotification: send failed", zap.Error(err))
		}
		return ResponseError(err)
	}
	return ResponseSuccessWithMsg(sent, "Notification sent")
}
