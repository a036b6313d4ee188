package verification

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	codePrefix  = "tangent:verification:code:"
	issuePrefix = "tangent:verification:issued:"
)

// RedisStore keeps codes in Redis with the code TTL as key expiry.
type RedisStore struct {
	cache *redis.Client
}

// NewRedisStore builds a Redis-backed code store.
func NewRedisStore(cache *redis.Client) *RedisStore {
	return &RedisStore{cache: cache}
}

func (s *RedisStore) Save(ctx context.Context, code Code, ttl time.Duration) error {
	if ttl <= 0 {
		return s.Delete(ctx, code.Channel, code.Destination)
	}
	payload, err := json.Marshal(code)
	if err != nil {
		return fmt.Errorf("encode code: %w", err)
	}
	return s.cache.Set(ctx, codePrefix+key(code.Channel, code.Destination), payload, ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, channel, destination string) (Code, error) {
	raw, err := s.cache.Get(ctx, codePrefix+key(channel, destination)).Bytes()
	if errors.Is(err, redis.Nil) {
		return Code{}, ErrNotFound
	}
	if err != nil {
		return Code{}, err
	}
	var code Code
	if err := json.Unmarshal(raw, &code); err != nil {
		return Code{}, fmt.Errorf("decode code: %w", err)
	}
	return code, nil
}

func (s *RedisStore) Delete(ctx context.Context, channel, destination string) error {
	return s.cache.Del(ctx, codePrefix+key(channel, destination)).Err()
}

func (s *RedisStore) CountIssue(ctx context.Context, channel, destination string, window time.Duration) (int64, error) {
	k := issuePrefix + key(channel, destination)
	cnt, err := s.cache.Incr(ctx, k).Result()
	if err != nil {
		return 0, err
	}
	if cnt == 1 {
		s.cache.Expire(ctx, k, window)
	}
	return cnt, nil
}
