package store

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisMaxValueSize is the Redis string value limit.
const RedisMaxValueSize = 512 * 1024 * 1024

// RedisStore implements Store using go-redis/v9.
type RedisStore struct {
	client       *redis.Client
	ttl          time.Duration
	maxValueSize int
}

// NewRedisStore creates a RedisStore from a Redis URL. A zero ttl keeps keys
// until deleted; maxValueSize <= 0 uses RedisMaxValueSize.
func NewRedisStore(redisURL string, ttl time.Duration, maxValueSize int) (*RedisStore, error) {
	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}
	if maxValueSize <= 0 || maxValueSize > RedisMaxValueSize {
		maxValueSize = RedisMaxValueSize
	}
	return &RedisStore{
		client:       redis.NewClient(opts),
		ttl:          ttl,
		maxValueSize: maxValueSize,
	}, nil
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Set(ctx context.Context, key string, value []byte) error {
	if len(value) > s.maxValueSize {
		return fmt.Errorf("setting %s (%d bytes): %w", key, len(value), ErrValueTooLarge)
	}
	err := s.client.Set(ctx, key, value, s.ttl).Err()
	if err != nil && isOOM(err) {
		return fmt.Errorf("setting %s: %w: %v", key, ErrQuotaExceeded, err)
	}
	return err
}

func (s *RedisStore) Get(ctx context.Context, key string) ([]byte, bool, error) {
	val, err := s.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return val, true, nil
}

func (s *RedisStore) Delete(ctx context.Context, key string) error {
	return s.client.Del(ctx, key).Err()
}

func (s *RedisStore) MaxValueSize() int {
	return s.maxValueSize
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

// isOOM reports whether Redis refused a write because maxmemory was reached.
func isOOM(err error) bool {
	var rerr redis.Error
	if errors.As(err, &rerr) {
		return strings.HasPrefix(rerr.Error(), "OOM")
	}
	return false
}
