package auth

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Revocations remembers logged-out token IDs until they would expire anyway.
type Revocations interface {
	Revoke(ctx context.Context, id string, ttl time.Duration) error
	Revoked(ctx context.Context, id string) (bool, error)
}

// RedisRevocations stores revoked token IDs in Redis.
type RedisRevocations struct {
	client *redis.Client
	prefix string
}

// NewRedisRevocations constructs a Redis-backed revocation list.
func NewRedisRevocations(client *redis.Client) *RedisRevocations {
	return &RedisRevocations{client: client, prefix: "auth:revoked:"}
}

func (r *RedisRevocations) Revoke(ctx context.Context, id string, ttl time.Duration) error {
	if ttl <= 0 {
		return nil
	}
	return r.client.Set(ctx, r.prefix+id, 1, ttl).Err()
}

func (r *RedisRevocations) Revoked(ctx context.Context, id string) (bool, error) {
	n, err := r.client.Exists(ctx, r.prefix+id).Result()
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

var _ Revocations = (*RedisRevocations)(nil)
