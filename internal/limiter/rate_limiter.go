package limiter

import (
	"context"
	"fmt"
	"time"

	"civicdesk/internal/provider"

	"github.com/redis/go-redis/v9"
)

// tokenBucket refills tokens proportionally to the elapsed time and takes one per call.
const tokenBucket = `
local tokens_key = KEYS[1]
local rate = tonumber(ARGV[1])
local capacity = tonumber(ARGV[2])
local now = tonumber(ARGV[3])
local requested = tonumber(ARGV[4])
local expire_seconds = math.ceil(tonumber(ARGV[5]))

local tokens = tonumber(redis.call("HGET", tokens_key, "tokens"))
local last_refill = tonumber(redis.call("HGET", tokens_key, "last_refill"))

if tokens == nil or last_refill == nil then
	tokens = capacity
	last_refill = now
else
	local elapsed = math.max(0, now - last_refill)
	tokens = math.min(capacity, tokens + elapsed * rate)
	last_refill = now
end

local allowed = 0
if tokens >= requested then
	tokens = tokens - requested
	allowed = 1
end

redis.call("HSET", tokens_key, "tokens", tokens, "last_refill", last_refill)
redis.call("EXPIRE", tokens_key, expire_seconds)
return allowed
`

// RedisRateLimiter is a distributed token bucket shared by every instance through Redis.
type RedisRateLimiter struct {
	redisClient   *redis.Client
	namespace     provider.RedisNamespace
	policy        string
	rate          float64 // tokens added per second
	bucketSize    float64
	keyExpiration time.Duration
	luaScript     *redis.Script
	now           func() time.Time
}

// NewRedisRateLimiter creates a new Redis-based rate limiter for one policy.
func NewRedisRateLimiter(redisClient *redis.Client, ns provider.RedisNamespace, policy string, rate float64, size float64, expiration time.Duration) *RedisRateLimiter {
	return &RedisRateLimiter{
		redisClient:   redisClient,
		namespace:     ns,
		policy:        policy,
		rate:          rate,
		bucketSize:    size,
		keyExpiration: expiration,
		luaScript:     redis.NewScript(tokenBucket),
		now:           time.Now,
	}
}

// Allow checks if a request from the given identifier is allowed.
func (l *RedisRateLimiter) Allow(ctx context.Context, identifier string) (bool, error) {
	key := fmt.Sprintf("%sratelimit:%s:%s", l.namespace, l.policy, identifier)

	now := float64(l.now().UnixNano()) / 1e9

	result, err := l.luaScript.Run(ctx, l.redisClient, []string{key}, l.rate, l.bucketSize, now, 1.0, l.keyExpiration.Seconds()).Int64()
	if err != nil {
		return false, fmt.Errorf("failed to execute rate limit script: %w", err)
	}

	return result == 1, nil
}
