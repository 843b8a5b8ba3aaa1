package contracts

import (
	"context"
	"time"
)

type RedisRepository interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value interface{}, exp time.Duration) error
	Delete(ctx context.Context, key string) error
	// IncrementWithTTL atomically increments key and arms its expiry on first
	// touch, returning the post-increment count.
	IncrementWithTTL(ctx context.Context, key string, ttl time.Duration) (int64, error)
	TrySetNX(ctx context.Context, key string, value interface{}, exp time.Duration) (bool, error)
}
