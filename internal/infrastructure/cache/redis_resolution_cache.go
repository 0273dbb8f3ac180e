package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// RedisResolutionCache implements ResolutionCache using Redis so every
// instance behind the load balancer sees the same resolutions and
// invalidations.
type RedisResolutionCache struct {
	client     *redis.Client
	ownsClient bool
	ttl        time.Duration
	logger     *zap.Logger
}

// RedisResolutionCacheOption is a functional option for configuring the cache
type RedisResolutionCacheOption func(*RedisResolutionCache)

// WithRedisTTL sets the default TTL for cached resolutions
func WithRedisTTL(ttl time.Duration) RedisResolutionCacheOption {
	return func(c *RedisResolutionCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithRedisLogger sets the logger for the cache
func WithRedisLogger(logger *zap.Logger) RedisResolutionCacheOption {
	return func(c *RedisResolutionCache) {
		c.logger = logger
	}
}

// NewRedisResolutionCache creates a resolution cache on a fresh Redis
// connection and verifies it with a ping
func NewRedisResolutionCache(addr, password string, db int, opts ...RedisResolutionCacheOption) (*RedisResolutionCache, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	cache := &RedisResolutionCache{
		client:     client,
		ownsClient: true,
		ttl:        DefaultResolutionTTL,
		logger:     zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache, nil
}

// NewRedisResolutionCacheWithClient wraps an existing client. Close does
// not close a borrowed client.
func NewRedisResolutionCacheWithClient(client *redis.Client, opts ...RedisResolutionCacheOption) *RedisResolutionCache {
	cache := &RedisResolutionCache{
		client: client,
		ttl:    DefaultResolutionTTL,
		logger: zap.NewNop(),
	}

	for _, opt := range opts {
		opt(cache)
	}

	return cache
}

// Get retrieves a cached resolution for the domain slug
func (c *RedisResolutionCache) Get(ctx context.Context, domain string) (*TenantResolution, error) {
	data, err := c.client.Get(ctx, resolutionKey(domain)).Bytes()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get resolution from Redis: %w", err)
	}

	var res TenantResolution
	if err := json.Unmarshal(data, &res); err != nil {
		// A corrupt entry behaves like a miss; the next Set overwrites it
		c.logger.Warn("dropping corrupt resolution cache entry",
			zap.String("domain", domain),
			zap.Error(err),
		)
		_ = c.client.Del(ctx, resolutionKey(domain)).Err()
		return nil, nil
	}
	return &res, nil
}

// Set stores a resolution with a TTL
func (c *RedisResolutionCache) Set(ctx context.Context, domain string, res *TenantResolution, ttl time.Duration) error {
	if res == nil {
		return nil
	}
	if ttl == 0 {
		ttl = c.ttl
	}

	data, err := json.Marshal(res)
	if err != nil {
		return fmt.Errorf("failed to marshal resolution: %w", err)
	}

	if err := c.client.Set(ctx, resolutionKey(domain), data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to set resolution in Redis: %w", err)
	}
	return nil
}

// Invalidate drops the cached resolution for a domain slug
func (c *RedisResolutionCache) Invalidate(ctx context.Context, domain string) error {
	if err := c.client.Del(ctx, resolutionKey(domain)).Err(); err != nil {
		return fmt.Errorf("failed to invalidate resolution in Redis: %w", err)
	}
	return nil
}

// Close closes the Redis connection if this cache owns it
func (c *RedisResolutionCache) Close() error {
	if c.ownsClient {
		return c.client.Close()
	}
	return nil
}
