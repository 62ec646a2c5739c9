package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"

	"github.com/platinummonkey/sourcedocs/pkg/observability"
)

// RedisConfig holds connection settings for the shared cache tier.
type RedisConfig struct {
	URL        string
	Password   string
	DB         int
	MaxRetries int
	PoolSize   int
	TTL        time.Duration
	KeyPrefix  string
}

// Redis caches rendered pages in a shared Redis instance so several
// generators can reuse each other's output.
type Redis struct {
	client  *redis.Client
	ttl     time.Duration
	prefix  string
	metrics *observability.Metrics
}

// NewRedis connects to Redis and verifies the connection with a ping.
func NewRedis(cfg RedisConfig, metrics *observability.Metrics) (*Redis, error) {
	opts, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis URL: %w", err)
	}

	if cfg.Password != "" {
		opts.Password = cfg.Password
	}
	if cfg.DB > 0 {
		opts.DB = cfg.DB
	}
	if cfg.MaxRetries > 0 {
		opts.MaxRetries = cfg.MaxRetries
	}
	if cfg.PoolSize > 0 {
		opts.PoolSize = cfg.PoolSize
	}

	opts.DialTimeout = 5 * time.Second
	opts.ReadTimeout = 3 * time.Second
	opts.WriteTimeout = 3 * time.Second
	opts.PoolTimeout = 4 * time.Second

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w: %v", ErrCacheUnavailable, err)
	}

	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	prefix := cfg.KeyPrefix
	if prefix == "" {
		prefix = "sourcedocs:page:"
	}

	return &Redis{client: client, ttl: ttl, prefix: prefix, metrics: metrics}, nil
}

// Client exposes the underlying client for health checks.
func (c *Redis) Client() *redis.Client {
	return c.client
}

// Get returns the cached value or ErrCacheMiss.
func (c *Redis) Get(ctx context.Context, key string) ([]byte, error) {
	if key == "" {
		return nil, ErrInvalidCacheKey
	}

	data, err := c.client.Get(ctx, c.prefix+key).Bytes()
	switch {
	case errors.Is(err, redis.Nil):
		c.record("get", "miss")
		return nil, ErrCacheMiss
	case err != nil:
		c.record("get", "error")
		return nil, fmt.Errorf("redis get failed: %w", err)
	}

	c.record("get", "hit")
	return data, nil
}

// Set stores value under key with the configured TTL.
func (c *Redis) Set(ctx context.Context, key string, value []byte) error {
	if key == "" {
		return ErrInvalidCacheKey
	}

	if err := c.client.Set(ctx, c.prefix+key, value, c.ttl).Err(); err != nil {
		c.record("set", "error")
		return fmt.Errorf("redis set failed: %w", err)
	}

	c.record("set", "ok")
	return nil
}

// Delete removes key if present.
func (c *Redis) Delete(ctx context.Context, key string) error {
	if key == "" {
		return ErrInvalidCacheKey
	}

	if err := c.client.Del(ctx, c.prefix+key).Err(); err != nil {
		c.record("del", "error")
		return fmt.Errorf("redis delete failed: %w", err)
	}

	c.record("del", "ok")
	return nil
}

// Ping checks the connection.
func (c *Redis) Ping(ctx context.Context) error {
	return c.client.Ping(ctx).Err()
}

// Close closes the connection pool.
func (c *Redis) Close() error {
	return c.client.Close()
}

func (c *Redis) record(command, status string) {
	if c.metrics == nil {
		return
	}
	c.metrics.RedisCommandsTotal.WithLabelValues(command, status).Inc()
}
