package dto

import "civicdesk/internal/constants"

// SendNotificationRequest is the body of the admin notification endpoint.
type SendNotificationRequest struct {
	Scope  constants.NotificationScope `json:"scope"`
	Target string                      `json:"target,omitempty"`
	Type   string                      `json:"type"`
	Data   interface{}                 `json:"data,omitempty"`
}

// SendNotificationResponse echoes the accepted notification.
type SendNotificationResponse struct {
	ID     string                      `json:"id"`
	Scope  constants.NotificationScope `json:"scope"`
	Target string                      `json:"target,omitempty"`
	Type   string                      `json:"type"`
}
