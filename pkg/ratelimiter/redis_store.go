package ratelimiter

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// takeScript refills and takes atomically. State is a hash {tokens, last}
// where last is the refill watermark in milliseconds.
var takeScript = redis.NewScript(`
local capacity = tonumber(ARGV[1])
local rate     = tonumber(ARGV[2])
local interval = tonumber(ARGV[3])
local want     = tonumber(ARGV[4])
local now      = tonumber(ARGV[5])

local state  = redis.call("HMGET", KEYS[1], "tokens", "last")
local tokens = tonumber(state[1])
local last   = tonumber(state[2])
if tokens == nil then
  tokens = capacity
  last = now
end

local intervals = math.floor((now - last) / interval)
if intervals > 0 then
  intervals = math.min(intervals, math.floor(capacity / rate) + 1)
  tokens = math.min(tokens + intervals * rate, capacity)
  last = last + intervals * interval
  if tokens == capacity then
    last = now
  end
end

local ok = 0
if tokens >= want then
  tokens = tokens - want
  ok = 1
end

redis.call("HSET", KEYS[1], "tokens", tokens, "last", last)
local ttl = math.ceil((capacity - tokens) / rate) * interval + interval
redis.call("PEXPIRE", KEYS[1], ttl)
return {ok, tokens, last + interval}
`)

// RedisClient is the subset of *redis.Client the store uses.
type RedisClient interface {
	redis.Scripter
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStore shares buckets between instances through Redis.
type RedisStore struct {
	client RedisClient
	prefix string
	now    func() time.Time
}

func NewRedisStore(client RedisClient, prefix string) *RedisStore {
	if prefix == "" {
		prefix = "ratelimit:"
	}
	return &RedisStore{client: client, prefix: prefix, now: time.Now}
}

func (rs *RedisStore) Take(ctx context.Context, key string, tokens int, cfg Config) (bool, int, time.Time, error) {
	res, err := takeScript.Run(ctx, rs.client, []string{rs.prefix + key},
		cfg.Capacity, cfg.RefillRate, cfg.RefillInterval.Milliseconds(), tokens, rs.now().UnixMilli(),
	).Int64Slice()
	if err != nil {
		return false, 0, time.Time{}, err
	}
	return res[0] == 1, int(res[1]), time.UnixMilli(res[2]), nil
}

func (rs *RedisStore) Reset(ctx context.Context, key string) error {
	return rs.client.Del(ctx, rs.prefix+key).Err()
}
