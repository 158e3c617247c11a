package snapshot

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore keeps snapshots in Redis. Keys expire at the freshness
// window, so stale entries vanish on their own; the Manager still applies
// the SavedAt check for entries written by other backends.
type RedisStore struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedisStore creates a Redis-backed store.
func NewRedisStore(client *redis.Client) *RedisStore {
	return &RedisStore{
		client: client,
		ttl:    MaxAge,
	}
}

func (s *RedisStore) key(formID string) string {
	return "snapshot:" + formID
}

func (s *RedisStore) Put(ctx context.Context, formID string, data []byte) error {
	return s.client.Set(ctx, s.key(formID), data, s.ttl).Err()
}

func (s *RedisStore) Get(ctx context.Context, formID string) ([]byte, error) {
	data, err := s.client.Get(ctx, s.key(formID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return data, nil
}

func (s *RedisStore) Delete(ctx context.Context, formID string) error {
	return s.client.Del(ctx, s.key(formID)).Err()
}
