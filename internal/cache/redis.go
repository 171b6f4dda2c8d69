package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis keeps responses in a shared Redis instance so several server replicas
// can reuse each other's results.
type Redis struct {
	client *redis.Client
	ttl    time.Duration
}

// NewRedis connects lazily to the Redis server at addr.
func NewRedis(addr string, ttl time.Duration) *Redis {
	return NewRedisFromClient(redis.NewClient(&redis.Options{Addr: addr}), ttl)
}

// NewRedisFromClient wraps an existing client.
func NewRedisFromClient(client *redis.Client, ttl time.Duration) *Redis {
	return &Redis{client: client, ttl: ttl}
}

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := r.client.Get(ctx, key).Bytes()
	if err != nil {
		return nil, false
	}
	return val, true
}

func (r *Redis) Set(ctx context.Context, key string, value []byte) error {
	return r.client.Set(ctx, key, value, r.ttl).Err()
}

// Ping checks that the server is reachable.
func (r *Redis) Ping(ctx context.Context) error {
	return r.client.Ping(ctx).Err()
}

// Close releases the underlying connections.
func (r *Redis) Close() error {
	return r.client.Close()
}
