package infra

import (
	"context"
	"time"

	"github.com/go-redis/redis/v8"
)

// Cache is the slice of the redis client the services use for cache-aside
// reads. It exists so tests can swap the client for a mock.
type Cache interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

var _ Cache = (*redis.Client)(nil)
