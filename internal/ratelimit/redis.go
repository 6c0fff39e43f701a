package ratelimit

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps one sorted set per identity, scored by unix
// nanoseconds. Keys expire after the window so idle identities cost
// nothing.
type RedisStore struct {
	client *redis.Client
	window time.Duration
}

func NewRedisStore(client *redis.Client, window time.Duration) *RedisStore {
	return &RedisStore{client: client, window: window}
}

var _ Store = (*RedisStore)(nil)

func redisKey(identity string) string {
	return "ratelimit:submissions:" + identity
}

func (s *RedisStore) Tally(ctx context.Context, key string, cutoff time.Time) (int, error) {
	rkey := redisKey(key)

	if err := s.client.ZRemRangeByScore(ctx, rkey,
		"-inf", fmt.Sprintf("%d", cutoff.UnixNano()),
	).Err(); err != nil {
		return 0, err
	}

	count, err := s.client.ZCard(ctx, rkey).Result()
	return int(count), err
}

func (s *RedisStore) Record(ctx context.Context, key string, at time.Time) error {
	rkey := redisKey(key)

	pipe := s.client.TxPipeline()
	pipe.ZAdd(ctx, rkey, redis.Z{
		Score:  float64(at.UnixNano()),
		Member: at.UnixNano(),
	})
	pipe.Expire(ctx, rkey, s.window)
	_, err := pipe.Exec(ctx)
	return err
}
