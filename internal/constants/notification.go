package constants

// Notification types pushed through the real-time fan-out.
const (
	NotificationNewAnnouncement         = "NEW_ANNOUNCEMENT"
	NotificationAnnouncementPublished   = "ANNOUNCEMENT_PUBLISHED"
	NotificationAnnouncementUpdated     = "ANNOUNCEMENT_UPDATED"
	NotificationAnnouncementUnpublished = "ANNOUNCEMENT_UNPUBLISHED"
	NotificationAnnouncementDeleted     = "ANNOUNCEMENT_DELETED"
)

var announcementLifecycle = map[string]struct{}{
	NotificationNewAnnouncement:         {},
	NotificationAnnouncementPublished:   {},
	NotificationAnnouncementUpdated:     {},
	NotificationAnnouncementUnpublished: {},
	NotificationAnnouncementDeleted:     {},
}

// IsAnnouncementLifecycle reports whether the notification type may be broadcast to every connection.
func IsAnnouncementLifecycle(t string) bool {
	_, ok := announcementLifecycle[t]
	return ok
}

// NotificationScope selects the delivery rooms of a notification.
type NotificationScope string

const (
	ScopeUser NotificationScope = "user"
	ScopeRole NotificationScope = "role"
	ScopeAll  NotificationScope = "all"
)

// Audit actions emitted by this service itself.
const (
	ActionAuditLogsPurged  = "audit_logs_purged"
	ActionNotificationSent = "notification_sent"
)
