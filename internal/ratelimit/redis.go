package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// tokenBucketScript refills tokens at `rate` per second up to `burst` and
// takes one token if available, atomically per key.
var tokenBucketScript = redis.NewScript(`
local key = KEYS[1]
local rate = tonumber(ARGV[1])
local burst = tonumber(ARGV[2])
local now = tonumber(ARGV[3])

local data = redis.call('HMGET', key, 'tokens', 'ts')
local tokens = tonumber(data[1])
local ts = tonumber(data[2])

if tokens == nil then
  tokens = burst
  ts = now
end

local elapsed = math.max(0, now - ts)
tokens = math.min(burst, tokens + elapsed * rate)

local allowed = 0
if tokens >= 1 then
  tokens = tokens - 1
  allowed = 1
end

redis.call('HSET', key, 'tokens', tokens, 'ts', now)
redis.call('EXPIRE', key, math.ceil(burst / rate) * 2 + 60)

return allowed
`)

// Redis is a token bucket whose state lives in Redis, so the limit holds
// across all server instances.
type Redis struct {
	client *redis.Client
	rps    float64
	burst  int
}

func NewRedis(client *redis.Client, rps float64, burst int) *Redis {
	return &Redis{client: client, rps: rps, burst: burst}
}

func (r *Redis) Allow(ctx context.Context, key string) (bool, error) {
	now := float64(time.Now().UnixMicro()) / 1e6
	res, err := tokenBucketScript.Run(ctx, r.client,
		[]string{fmt.Sprintf("ratelimit:%s", key)},
		r.rps, r.burst, now,
	).Int()
	if err != nil {
		return false, err
	}
	return res == 1, nil
}
