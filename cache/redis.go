package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// DefaultKeyPrefix namespaces every key this package writes.
const DefaultKeyPrefix = "glosslive:cache:"

// RedisCache is a Redis-backed translation cache shared across processes.
type RedisCache struct {
	client    redis.Cmdable
	ttl       time.Duration
	keyPrefix string
	timeout   time.Duration
	logger    *zap.SugaredLogger
}

// RedisConfig holds configuration for the Redis cache.
type RedisConfig struct {
	URL       string             // Redis connection URL (e.g., "redis://localhost:6379/0")
	TTL       time.Duration      // Entry lifetime (0 = no expiration)
	KeyPrefix string             // Prefix for all keys (default: DefaultKeyPrefix)
	Timeout   time.Duration      // Per-operation timeout (default: 2s)
	Logger    *zap.SugaredLogger // Logger for swallowed read errors (optional)
}

// NewRedisCache connects to Redis and verifies the connection with a PING.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parsing redis url: %w", err)
	}

	client := redis.NewClient(opts)

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("connecting to redis: %w", err)
	}

	return NewRedisCacheFromClient(client, cfg), nil
}

// NewRedisCacheFromClient creates a RedisCache from an existing client.
// cfg.URL is ignored.
func NewRedisCacheFromClient(client redis.Cmdable, cfg RedisConfig) *RedisCache {
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = DefaultKeyPrefix
	}

	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 2 * time.Second
	}

	ttl := cfg.TTL
	if ttl < 0 {
		ttl = 0
	}

	logger := cfg.Logger
	if logger == nil {
		logger = zap.NewNop().Sugar()
	}

	return &RedisCache{
		client:    client,
		ttl:       ttl,
		keyPrefix: prefix,
		timeout:   timeout,
		logger:    logger,
	}
}

// Get retrieves a value. Redis failures are logged and reported as misses.
func (c *RedisCache) Get(key string) (string, bool) {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	val, err := c.client.Get(ctx, c.keyPrefix+key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false
	}
	if err != nil {
		c.logger.Warnw("redis cache read failed", "key", key, "error", err)
		return "", false
	}
	return val, true
}

// Set stores a value with the configured TTL.
func (c *RedisCache) Set(key string, value string) error {
	ctx, cancel := context.WithTimeout(context.Background(), c.timeout)
	defer cancel()

	if err := c.client.Set(ctx, c.keyPrefix+key, value, c.ttl).Err(); err != nil {
		return fmt.Errorf("writing cache entry: %w", err)
	}
	return nil
}

// Ping tests the Redis connection.
func (c *RedisCache) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the underlying client when it owns a connection pool.
func (c *RedisCache) Close() error {
	if closer, ok := c.client.(interface{ Close() error }); ok {
		return closer.Close()
	}
	return nil
}

// Verify RedisCache implements TranslationCache
var _ TranslationCache = (*RedisCache)(nil)
