package app

import (
	"net/http"

	"civicdesk/internal/constants"
	"civicdesk/internal/limiter"
	http_middleware "civicdesk/internal/middleware/http"
	"civicdesk/internal/provider"
	"civicdesk/internal/realtime"
	"civicdesk/internal/service"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"
)

// Handlers groups the HTTP endpoints mounted by NewHttpHandlerRegister.
type Handlers struct {
	Audit         *service.AuditAdminService
	Notifications *service.NotificationsAdminService
	WebSocket     *service.WebSocketHandler
	Hook          *service.AuditHook
}

// NewHttpHandlerRegister creates the registrar function for all HTTP handlers.
// Admin routes require a bearer token; the mutating ones are rate limited per operator.
func NewHttpHandlerRegister(
	authMiddleware http_middleware.AuthMiddleware,
	limiterManager *limiter.Manager,
	handlers Handlers,
	registry *prometheus.Registry,
	hub *realtime.Hub,
	appName provider.AppName,
	logger *zap.Logger,
) HttpHandlerRegister {
	return func(mux *http.ServeMux) {
		recoverer := http_middleware.NewRecoverMiddleware(logger)
		createLimiter := http_middleware.CreateRateLimitMiddleware(limiterManager, limiter.PolicyAuditCreate)
		purgeLimiter := http_middleware.CreateRateLimitMiddleware(limiterManager, limiter.PolicyAuditPurge)
		notifyLimiter := http_middleware.CreateRateLimitMiddleware(limiterManager, limiter.PolicyNotificationSend)

		admin := func(h http.Handler) http.Handler {
			return recoverer(authMiddleware(h))
		}

		mux.Handle("GET /api/admin/audit-logs",
			admin(service.Plain(handlers.Audit.ListAuditLogs)))
		mux.Handle("GET /api/admin/audit-logs/statistics",
			admin(service.Plain(handlers.Audit.GetStatistics)))
		mux.Handle("POST /api/admin/audit-logs",
			admin(createLimiter(service.Plain(handlers.Audit.CreateAuditLog))))
		mux.Handle("DELETE /api/admin/audit-logs/cleanup",
			admin(purgeLimiter(handlers.Hook.Guarded(constants.ActionAuditLogsPurged, handlers.Audit.CleanupAuditLogs))))
		mux.Handle("POST /api/admin/notifications",
			admin(notifyLimiter(handlers.Hook.Guarded(constants.ActionNotificationSent, handlers.Notifications.SendNotification))))

		mux.Handle("GET /ws", handlers.WebSocket)
		mux.Handle("GET /metrics", promhttp.HandlerFor(registry, promhttp.HandlerOpts{Registry: registry}))
		mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, r *http.Request) {
			service.WriteJSON(w, http.StatusOK, map[string]interface{}{
				"status":      "ok",
				"service":     string(appName),
				"connections": hub.ConnectionCount(),
			})
		})
	}
}
