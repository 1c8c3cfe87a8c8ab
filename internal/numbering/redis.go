package numbering

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	redisKeyPrefix = "procurement:seq:"
	// DefaultRedisTTL outlives the day a scope belongs to.
	DefaultRedisTTL = 48 * time.Hour
)

// raiseScript sets KEYS[1] to ARGV[1] unless it already holds more, and
// refreshes the ttl (ARGV[2], milliseconds) when it writes.
var raiseScript = redis.NewScript(`
local current = tonumber(redis.call('GET', KEYS[1]) or '0')
local floor = tonumber(ARGV[1])
if current < floor then
	redis.call('SET', KEYS[1], ARGV[1], 'PX', ARGV[2])
	return floor
end
return current
`)

// RedisSequencer keeps counters in redis with INCR.
type RedisSequencer struct {
	client *redis.Client
	ttl    time.Duration
}

func NewRedisSequencer(client *redis.Client, ttl time.Duration) *RedisSequencer {
	if ttl <= 0 {
		ttl = DefaultRedisTTL
	}
	return &RedisSequencer{client: client, ttl: ttl}
}

func (s *RedisSequencer) Next(ctx context.Context, scope string) (int64, error) {
	key := redisKeyPrefix + scope
	n, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, fmt.Errorf("redis incr %s: %w", key, err)
	}
	if n == 1 {
		if err := s.client.Expire(ctx, key, s.ttl).Err(); err != nil {
			return 0, fmt.Errorf("redis expire %s: %w", key, err)
		}
	}
	return n, nil
}

func (s *RedisSequencer) Raise(ctx context.Context, scope string, floor int64) error {
	key := redisKeyPrefix + scope
	if err := raiseScript.Run(ctx, s.client, []string{key}, floor, s.ttl.Milliseconds()).Err(); err != nil {
		return fmt.Errorf("redis raise %s: %w", key, err)
	}
	return nil
}
