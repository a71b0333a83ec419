package cache

import (
	"context"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"todo-bot/internal/config"
	"todo-bot/pkg/logger"
)

const eventKeyPrefix = "todo-bot:event:"

var (
	client *redis.Client
	once   sync.Once
)

// Client returns the global Redis client (initialized on first use), or nil
// when REDIS_URL is unset or the server is unreachable.
func Client(ctx context.Context) *redis.Client {
	once.Do(func() {
		cfg := config.Get()
		if cfg.RedisURL == "" {
			logger.Info(ctx, "Redis not configured; webhook de-duplication disabled")
			return
		}
		opts, err := redis.ParseURL(cfg.RedisURL)
		if err != nil {
			logger.Error(ctx, "Invalid REDIS_URL", "error", err, "url", cfg.RedisURL)
			return
		}
		c := redis.NewClient(opts)
		if err := c.Ping(ctx).Err(); err != nil {
			logger.Error(ctx, "Redis ping failed", "error", err)
			return
		}
		client = c
		logger.Info(ctx, "Redis client initialized", "pool_size", opts.PoolSize)
	})
	return client
}

// Dedup remembers webhook deliveries for a while so platform retries are processed once.
type Dedup struct {
	client *redis.Client
	ttl    time.Duration
}

// NewDedup returns a Dedup. A nil client disables de-duplication.
func NewDedup(client *redis.Client, ttl time.Duration) *Dedup {
	return &Dedup{client: client, ttl: ttl}
}

// First reports whether key has not been seen within the TTL, and marks it seen.
// Redis failures fail open: the delivery is treated as new.
func (d *Dedup) First(ctx context.Context, key string) bool {
	if d == nil || d.client == nil {
		return true
	}
	ok, err := d.client.SetNX(ctx, eventKeyPrefix+key, 1, d.ttl).Result()
	if err != nil {
		logger.Warn(ctx, "Redis dedup check failed", "error", err, "key", key)
		return true
	}
	return ok
}

// Forget drops key so a redelivery of the same event is processed again.
func (d *Dedup) Forget(ctx context.Context, key string) {
	if d == nil || d.client == nil {
		return
	}
	if err := d.client.Del(ctx, eventKeyPrefix+key).Err(); err != nil {
		logger.Warn(ctx, "Redis dedup forget failed", "error", err, "key", key)
	}
}

// Ping checks the Redis connection; a disabled Dedup is always healthy.
func (d *Dedup) Ping(ctx context.Context) error {
	if d == nil || d.client == nil {
		return nil
	}
	return d.client.Ping(ctx).Err()
}
