package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "aigw:ratelimit:"

// RedisLimiter implements Limiter on Redis for multi-process deployments.
// The whole check-and-consume runs inside one Lua script, so concurrent
// gateway instances cannot race each other past the maximum.
type RedisLimiter struct {
	client redis.UniversalClient
	script *redis.Script
	window time.Duration
	max    int
}

// NewRedisLimiter creates a Redis-backed fixed-window limiter.
func NewRedisLimiter(client redis.UniversalClient, cfg Config) *RedisLimiter {
	if cfg.Window <= 0 {
		cfg.Window = DefaultWindow
	}
	if cfg.MaxRequests <= 0 {
		cfg.MaxRequests = DefaultMaxRequests
	}

	luaScript := `
local now = tonumber(ARGV[1])
local window = tonumber(ARGV[2])
local max = tonumber(ARGV[3])

local bucket = redis.call('HMGET', KEYS[1], 'count', 'reset_at')
local count = tonumber(bucket[1])
local reset_at = tonumber(bucket[2])

-- Missing or expired window: start fresh with count 1.
if not count or not reset_at or reset_at <= now then
    local fresh_reset = now + window
    redis.call('HSET', KEYS[1], 'count', 1, 'reset_at', fresh_reset)
    redis.call('PEXPIRE', KEYS[1], window + 1000)
    return {0, 1, fresh_reset}
end

-- At the maximum: reject without mutating, so the window never extends.
if count >= max then
    return {1, count, reset_at}
end

count = redis.call('HINCRBY', KEYS[1], 'count', 1)
return {0, count, reset_at}
`

	return &RedisLimiter{
		client: client,
		script: redis.NewScript(luaScript),
		window: cfg.Window,
		max:    cfg.MaxRequests,
	}
}

// CheckAndConsume returns true when the caller is over quota.
func (l *RedisLimiter) CheckAndConsume(ctx context.Context, key string, now time.Time) (bool, error) {
	args := []interface{}{now.UnixMilli(), l.window.Milliseconds(), l.max}

	val, err := l.script.Run(ctx, l.client, []string{redisKeyPrefix + key}, args...).Result()
	if err != nil {
		return false, fmt.Errorf("rate limit script: %w", err)
	}

	results, ok := val.([]interface{})
	if !ok || len(results) < 1 {
		return false, fmt.Errorf("unexpected result from rate limit script: %T", val)
	}

	limited, ok := results[0].(int64)
	if !ok {
		return false, fmt.Errorf("unexpected limited flag from rate limit script: %T", results[0])
	}
	return limited == 1, nil
}

// Reset deletes all gateway rate-limit keys. Intended for tests.
func (l *RedisLimiter) Reset(ctx context.Context) error {
	iter := l.client.Scan(ctx, 0, redisKeyPrefix+"*", 0).Iterator()
	for iter.Next(ctx) {
		if err := l.client.Del(ctx, iter.Val()).Err(); err != nil {
			return err
		}
	}
	return iter.Err()
}
