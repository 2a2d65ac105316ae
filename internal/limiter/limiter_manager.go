package limiter

import (
	"fmt"
	"time"

	"civicdesk/internal/conf"
	"civicdesk/internal/provider"

	"github.com/redis/go-redis/v9"
)

const defaultPolicyName = "default"

// Policies applied to the admin endpoints.
const (
	PolicyAuditCreate      = "audit_create"
	PolicyAuditPurge       = "audit_purge"
	PolicyNotificationSend = "notification_send"
)

// Manager holds and provides access to named rate limiters.
type Manager struct {
	limiters map[string]*RedisRateLimiter
}

// NewManager creates a new rate limiter manager from configuration.
// It initializes a rate limiter for the default policy and each named policy.
func NewManager(cfg *conf.RateLimiterConfig, redisClient *redis.Client, ns provider.RedisNamespace) (*Manager, error) {
	if cfg == nil {
		return nil, fmt.Errorf("rate limiter config is nil")
	}

	limiters := make(map[string]*RedisRateLimiter)

	createLimiter := func(name string, policy conf.RateLimiterPolicy) (*RedisRateLimiter, error) {
		if policy.Limit <= 0 {
			return nil, fmt.Errorf("policy limit must be positive")
		}
		duration, err := time.ParseDuration(policy.Interval)
		if err != nil {
			return nil, fmt.Errorf("invalid policy interval format: %w", err)
		}
		if duration <= 0 {
			return nil, fmt.Errorf("policy interval must be positive")
		}

		// Tokens per second; the bucket holds one full interval worth.
		rate := float64(policy.Limit) / duration.Seconds()
		size := float64(policy.Limit)
		expiration := duration * 2

		return NewRedisRateLimiter(redisClient, ns, name, rate, size, expiration), nil
	}

	defaultLimiter, err := createLimiter(defaultPolicyName, cfg.Default)
	if err != nil {
		return nil, fmt.Errorf("failed to create default rate limiter: %w", err)
	}
	limiters[defaultPolicyName] = defaultLimiter

	for name, policy := range cfg.Policies {
		limiter, err := createLimiter(name, policy)
		if err != nil {
			return nil, fmt.Errorf("failed to create policy '%s': %w", name, err)
		}
		limiters[name] = limiter
	}

	return &Manager{limiters: limiters}, nil
}

// Get retrieves a named rate limiter.
// If a limiter with the given name is not found, it returns the default limiter.
func (m *Manager) Get(name string) *RedisRateLimiter {
	if limiter, ok := m.limiters[name]; ok {
		return limiter
	}
	return m.limiters[defaultPolicyName]
}
