package service

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"civicdesk/internal/conf"
	"civicdesk/internal/metrics"
	"civicdesk/internal/realtime"
	"civicdesk/pkg/snowflake"

	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestWebSocketHandler_DeliversRoleNotification(t *testing.T) {
	hub := realtime.NewHub(metrics.NewNop(), zap.NewNop())
	t.Cleanup(hub.Close)
	ids, err := snowflake.NewGenerator(1)
	require.NoError(t, err)

	srv := httptest.NewServer(NewWebSocketHandler(hub, ids, &conf.RealtimeConfig{SendBufferSize: 8, PingIntervalSecond: 5}, zap.NewNop()))
	t.Cleanup(srv.Close)

	conn, _, err := websocket.DefaultDialer.Dial("ws"+strings.TrimPrefix(srv.URL, "http"), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, conn.WriteJSON(map[string]string{"event": realtime.EventJoinRole, "data": "admin"}))
	require.Eventually(t, func() bool {
		return hub.EmitToRole("admin", "COMPLAINT_ESCALATED", map[string]string{"id": "c9"}) == 1
	}, 2*time.Second, 20*time.Millisecond)

	require.NoError(t, conn.SetReadDeadline(time.Now().Add(2*time.Second)))
	var msg struct {
		Event string                `json:"event"`
		Data  realtime.Notification `json:"data"`
	}
	require.NoError(t, conn.ReadJSON(&msg))
	assert.Equal(t, realtime.EventNotification, msg.Event)
	assert.Equal(t, "COMPLAINT_ESCALATED", msg.Data.Type)
}

func TestOriginChecker(t *testing.T) {
	assert.Nil(t, originChecker(&conf.RealtimeConfig{}))

	anyOrigin := originChecker(&conf.RealtimeConfig{AllowedOrigins: []string{"*"}})
	r := httptest.NewRequest(http.MethodGet, "/ws", nil)
	r.Header.Set("Origin", "https://evil.example")
	assert.True(t, anyOrigin(r))

	listed := originChecker(&conf.RealtimeConfig{AllowedOrigins: []string{"https://admin.city.gov"}})
	assert.False(t, listed(r))
	r.Header.Set("Origin", "https://admin.city.gov")
	assert.True(t, listed(r))
}
