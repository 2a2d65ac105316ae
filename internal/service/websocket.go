package service

import (
	"net/http"

	"civicdesk/internal/conf"
	"civicdesk/internal/realtime"
	"civicdesk/pkg/snowflake"

	"github.com/gorilla/websocket"
	"go.uber.org/zap"
)

// WebSocketHandler upgrades GET /ws and hands the connection to the hub.
type WebSocketHandler struct {
	hub      *realtime.Hub
	ids      *snowflake.Generator
	cfg      *conf.RealtimeConfig
	upgrader websocket.Upgrader
	logger   *zap.Logger
}

// NewWebSocketHandler creates a new WebSocketHandler.
func NewWebSocketHandler(hub *realtime.Hub, ids *snowflake.Generator, cfg *conf.RealtimeConfig, logger *zap.Logger) *WebSocketHandler {
	return &WebSocketHandler{
		hub: hub,
		ids: ids,
		cfg: cfg,
		upgrader: websocket.Upgrader{
			ReadBufferSize:  1024,
			WriteBufferSize: 1024,
			CheckOrigin:     originChecker(cfg),
		},
		logger: logger.Named("WebSocketHandler"),
	}
}

// ServeHTTP implements the http.Handler interface.
func (h *WebSocketHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	id, err := h.ids.NextString()
	if err != nil {
		h.logger.Error("ServeHTTP: failed to generate connection id", zap.Error(err))
		WriteHttpError(w, http.StatusServiceUnavailable, "connection id unavailable")
		return
	}

	// Upgrade writes its own error response.
	conn, err := h.upgrader.Upgrade(w, r, nil)
	if err != nil {
		h.logger.Debug("ServeHTTP: upgrade failed", zap.Error(err))
		return
	}

	client := realtime.NewClient(id, h.hub, conn, h.cfg, h.logger)
	if err := client.Serve(r.Context()); err != nil {
		h.logger.Debug("ServeHTTP: connection refused", zap.String("connID", id), zap.Error(err))
	}
}

// originChecker allows the configured origins. "*" allows any origin; an empty
// list keeps the same-origin check of the upgrader.
func originChecker(cfg *conf.RealtimeConfig) func(r *http.Request) bool {
	if cfg == nil || len(cfg.AllowedOrigins) == 0 {
		return nil
	}
	allowed := make(map[string]struct{}, len(cfg.AllowedOrigins))
	for _, o := range cfg.AllowedOrigins {
		if o == "*" {
			return func(*http.Request) bool { return true }
		}
		allowed[o] = struct{}{}
	}
	return func(r *http.Request) bool {
		origin := r.Header.Get("Origin")
		if origin == "" {
			return true
		}
		_, ok := allowed[origin]
		return ok
	}
}
