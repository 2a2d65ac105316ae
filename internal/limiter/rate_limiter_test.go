package limiter

import (
	"context"
	"testing"
	"time"

	"civicdesk/internal/conf"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return client
}

func TestRedisRateLimiter_Allow(t *testing.T) {
	client := setupRedis(t)
	now := time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

	l := NewRedisRateLimiter(client, "civicdesk:test:", PolicyAuditPurge, 1, 3, time.Minute)
	l.now = func() time.Time { return now }

	ctx := context.Background()
	for i := 0; i < 3; i++ {
		ok, err := l.Allow(ctx, "alice")
		require.NoError(t, err)
		assert.True(t, ok, "request %d", i)
	}

	ok, err := l.Allow(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, ok, "bucket should be empty")

	ok, err = l.Allow(ctx, "bob")
	require.NoError(t, err)
	assert.True(t, ok, "buckets are per identifier")

	now = now.Add(2 * time.Second)
	ok, err = l.Allow(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok, "tokens refill over time")
}

func TestRedisRateLimiter_PoliciesDoNotShareBuckets(t *testing.T) {
	client := setupRedis(t)

	m, err := NewManager(&conf.RateLimiterConfig{
		Default: conf.RateLimiterPolicy{Interval: "1m", Limit: 1},
		Policies: map[string]conf.RateLimiterPolicy{
			PolicyAuditCreate: {Interval: "1m", Limit: 1},
		},
	}, client, "civicdesk:test:")
	require.NoError(t, err)

	ctx := context.Background()
	ok, err := m.Get(PolicyAuditCreate).Allow(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.Get(defaultPolicyName).Allow(ctx, "alice")
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = m.Get(PolicyAuditCreate).Allow(ctx, "alice")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestManager_Get(t *testing.T) {
	client := setupRedis(t)

	m, err := NewManager(&conf.RateLimiterConfig{
		Default: conf.RateLimiterPolicy{Interval: "1s", Limit: 5},
		Policies: map[string]conf.RateLimiterPolicy{
			PolicyNotificationSend: {Interval: "1m", Limit: 60},
		},
	}, client, "ns:")
	require.NoError(t, err)

	assert.Equal(t, PolicyNotificationSend, m.Get(PolicyNotificationSend).policy)
	assert.Equal(t, defaultPolicyName, m.Get("missing").policy)
}

func TestNewManager_InvalidPolicies(t *testing.T) {
	client := setupRedis(t)

	_, err := NewManager(nil, client, "ns:")
	assert.Error(t, err)

	_, err = NewManager(&conf.RateLimiterConfig{Default: conf.RateLimiterPolicy{Interval: "1s", Limit: 0}}, client, "ns:")
	assert.Error(t, err)

	_, err = NewManager(&conf.RateLimiterConfig{Default: conf.RateLimiterPolicy{Interval: "soon", Limit: 1}}, client, "ns:")
	assert.Error(t, err)

	_, err = NewManager(&conf.RateLimiterConfig{
		Default:  conf.RateLimiterPolicy{Interval: "1s", Limit: 1},
		Policies: map[string]conf.RateLimiterPolicy{"bad": {Interval: "-1s", Limit: 1}},
	}, client, "ns:")
	assert.Error(t, err)
}
