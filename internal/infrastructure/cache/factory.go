package cache

import (
	"fmt"

	"go.uber.org/zap"

	"github.com/tienda/backend/internal/infrastructure/config"
)

// ResolutionCacheFactory creates resolution caches based on configuration
type ResolutionCacheFactory struct {
	resolverConfig        config.ResolverConfig
	redisConfig           config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// ResolutionCacheFactoryOption is a functional option for configuring the factory
type ResolutionCacheFactoryOption func(*ResolutionCacheFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) ResolutionCacheFactoryOption {
	return func(f *ResolutionCacheFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory cache
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) ResolutionCacheFactoryOption {
	return func(f *ResolutionCacheFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewResolutionCacheFactory creates a new factory
func NewResolutionCacheFactory(resolverCfg config.ResolverConfig, redisCfg config.RedisConfig, opts ...ResolutionCacheFactoryOption) *ResolutionCacheFactory {
	f := &ResolutionCacheFactory{
		resolverConfig:        resolverCfg,
		redisConfig:           redisCfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateCache creates a resolution cache for the configured backend.
// A Redis backend falls back to in-memory when Redis is unreachable and
// fallback is allowed, so a cache outage degrades to per-instance caching
// instead of taking tenant resolution down.
func (f *ResolutionCacheFactory) CreateCache() (ResolutionCache, error) {
	switch f.resolverConfig.CacheBackend {
	case "", "memory":
		return f.createInMemoryCache(), nil
	case "redis":
		cache, err := f.createRedisCache()
		if err == nil {
			f.logger.Info("using Redis tenant resolution cache")
			return cache, nil
		}
		if !f.allowInMemoryFallback {
			return nil, fmt.Errorf("Redis required for tenant resolution cache but unavailable: %w", err)
		}
		f.logger.Warn("Redis unavailable, falling back to in-memory tenant resolution cache. "+
			"Lifecycle invalidations will not propagate across instances.",
			zap.Error(err),
		)
		return f.createInMemoryCache(), nil
	default:
		return nil, fmt.Errorf("unknown resolution cache backend: %s", f.resolverConfig.CacheBackend)
	}
}

func (f *ResolutionCacheFactory) createInMemoryCache() ResolutionCache {
	return NewInMemoryResolutionCache(
		WithInMemoryTTL(f.resolverConfig.CacheTTL),
		WithInMemoryLogger(f.logger),
	)
}

func (f *ResolutionCacheFactory) createRedisCache() (ResolutionCache, error) {
	addr := fmt.Sprintf("%s:%d", f.redisConfig.Host, f.redisConfig.Port)
	return NewRedisResolutionCache(addr, f.redisConfig.Password, f.redisConfig.DB,
		WithRedisTTL(f.resolverConfig.CacheTTL),
		WithRedisLogger(f.logger),
	)
}
