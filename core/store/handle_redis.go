package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisHandle stores values in Redis. Entries expire after the TTL, which
// makes it the session-scoped backend.
type RedisHandle struct {
	client redis.Cmdable
	prefix string
	ttl    time.Duration
}

// NewRedisHandle creates a handle. A zero TTL stores keys without expiry.
func NewRedisHandle(client redis.Cmdable, prefix string, ttl time.Duration) *RedisHandle {
	return &RedisHandle{client: client, prefix: prefix, ttl: ttl}
}

func (h *RedisHandle) key(k string) string {
	return h.prefix + k
}

func (h *RedisHandle) GetItem(ctx context.Context, key string) (string, bool, error) {
	v, err := h.client.Get(ctx, h.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("failed to read %s: %w", key, err)
	}
	return v, true, nil
}

func (h *RedisHandle) SetItem(ctx context.Context, key, value string) error {
	if err := h.client.Set(ctx, h.key(key), value, h.ttl).Err(); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (h *RedisHandle) RemoveItem(ctx context.Context, key string) error {
	if err := h.client.Del(ctx, h.key(key)).Err(); err != nil {
		return fmt.Errorf("failed to delete %s: %w", key, err)
	}
	return nil
}
