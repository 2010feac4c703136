package ratelimit

import (
	"context"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "nyinsen:ratelimit:"

// fixedWindowScript applies one hit to the hash at KEYS[1].
// ARGV: [1]=now_ms, [2]=limit, [3]=window_ms
// Returns {count, reset_at_ms, allowed}.
var fixedWindowScript = goredis.NewScript(`
local now = tonumber(ARGV[1])
local limit = tonumber(ARGV[2])
local window = tonumber(ARGV[3])
local count = tonumber(redis.call('HGET', KEYS[1], 'count'))
local reset_at = tonumber(redis.call('HGET', KEYS[1], 'reset_at'))
if count == nil or reset_at == nil or now > reset_at then
  reset_at = now + window
  redis.call('HSET', KEYS[1], 'count', 1, 'reset_at', reset_at)
  redis.call('PEXPIRE', KEYS[1], window + 1000)
  return {1, reset_at, 1}
end
if count >= limit then
  return {count, reset_at, 0}
end
count = redis.call('HINCRBY', KEYS[1], 'count', 1)
return {count, reset_at, 1}
`)

// RedisStore shares windows between instances. The script runs atomically on
// the server so concurrent hits on one key never over-admit.
type RedisStore struct {
	rdb goredis.Scripter
}

func NewRedisStore(rdb goredis.Scripter) *RedisStore {
	return &RedisStore{rdb: rdb}
}

// NewRedisClient parses a redis:// URL and verifies the server answers.
func NewRedisClient(ctx context.Context, redisURL string) (*goredis.Client, error) {
	opts, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	client := goredis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return client, nil
}

func (store *RedisStore) Hit(ctx context.Context, key string, now time.Time, limit int, window time.Duration) (Result, error) {
	values, err := fixedWindowScript.Run(ctx, store.rdb, []string{redisKeyPrefix + key},
		now.UnixMilli(),
		limit,
		window.Milliseconds(),
	).Int64Slice()
	if err != nil {
		return Result{}, fmt.Errorf("fixed window script failed: %w", err)
	}
	if len(values) != 3 {
		return Result{}, fmt.Errorf("fixed window script returned %d values", len(values))
	}

	return Result{
		Allowed: values[2] == 1,
		Count:   int(values[0]),
		ResetAt: time.UnixMilli(values[1]),
	}, nil
}
