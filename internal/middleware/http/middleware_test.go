package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"civicdesk/internal/conf"
	"civicdesk/internal/helper"
	"civicdesk/internal/limiter"
	"civicdesk/pkg/jwt"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

const janeID = "65a000000000000000000001"

func newManager(t *testing.T) *jwt.Manager {
	t.Helper()
	m, err := jwt.NewSymmetric([]byte("test-secret"), "civicdesk")
	require.NoError(t, err)
	return m
}

func bearer(t *testing.T, m *jwt.Manager, payload map[string]interface{}) string {
	t.Helper()
	token, err := m.Generate(payload, jwt.WithTTL(time.Hour))
	require.NoError(t, err)
	return "Bearer " + token
}

func echoOperator() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		op, _ := helper.OperatorFromContext(r.Context())
		_ = json.NewEncoder(w).Encode(map[string]string{"id": op.UserId.Hex(), "name": op.Name, "role": op.Role})
	})
}

func TestAuthMiddleware(t *testing.T) {
	m := newManager(t)
	h := NewAuthMiddleware(m, zap.NewNop())(echoOperator())

	t.Run("valid token", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/admin/audit-logs", nil)
		req.Header.Set("Authorization", bearer(t, m, map[string]interface{}{
			"user_id": janeID, "name": "Jane Admin", "role": "admin",
		}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)

		require.Equal(t, http.StatusOK, rec.Code)
		var got map[string]string
		require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &got))
		assert.Equal(t, janeID, got["id"])
		assert.Equal(t, "Jane Admin", got["name"])
		assert.Equal(t, "admin", got["role"])
	})

	t.Run("missing header", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("payload without user id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", bearer(t, m, map[string]interface{}{"name": "Nobody"}))
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})
}

func TestRateLimitMiddleware(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	lm, err := limiter.NewManager(&conf.RateLimiterConfig{
		Default: conf.RateLimiterPolicy{Interval: "1m", Limit: 100},
		Policies: map[string]conf.RateLimiterPolicy{
			limiter.PolicyAuditPurge: {Interval: "1h", Limit: 2},
		},
	}, client, "civicdesk:test:")
	require.NoError(t, err)

	m := newManager(t)
	auth := NewAuthMiddleware(m, zap.NewNop())
	h := auth(CreateRateLimitMiddleware(lm, limiter.PolicyAuditPurge)(echoOperator()))
	token := bearer(t, m, map[string]interface{}{"user_id": janeID, "name": "Jane Admin", "role": "admin"})

	codes := make([]int, 0, 3)
	for i := 0; i < 3; i++ {
		req := httptest.NewRequest(http.MethodDelete, "/api/admin/audit-logs/cleanup", nil)
		req.Header.Set("Authorization", token)
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		codes = append(codes, rec.Code)
	}
	assert.Equal(t, []int{http.StatusOK, http.StatusOK, http.StatusTooManyRequests}, codes)

	rec := httptest.NewRecorder()
	CreateRateLimitMiddleware(lm, limiter.PolicyAuditPurge)(echoOperator()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)
}

func TestRecoverMiddleware(t *testing.T) {
	h := NewRecoverMiddleware(zap.NewNop())(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		panic("handler bug")
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/admin/audit-logs", nil))

	assert.Equal(t, http.StatusInternalServerError, rec.Code)
	assert.Contains(t, rec.Body.String(), `"success":false`)
}
