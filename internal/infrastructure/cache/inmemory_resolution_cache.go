package cache

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"go.uber.org/zap"
)

const defaultCleanupInterval = 30 * time.Second

// InMemoryResolutionCache implements ResolutionCache with process-local
// storage. Suitable for single-instance deployments and tests; a
// multi-instance deployment wants the Redis cache so invalidations are
// seen everywhere.
type InMemoryResolutionCache struct {
	entries sync.Map // map[string]*resolutionEntry
	ttl     time.Duration
	logger  *zap.Logger
	stopCh  chan struct{}
	stopped int32

	hits   int64
	misses int64
}

type resolutionEntry struct {
	value     *TenantResolution
	expiresAt time.Time
}

func (e *resolutionEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// InMemoryResolutionCacheOption is a functional option for configuring the cache
type InMemoryResolutionCacheOption func(*InMemoryResolutionCache)

// WithInMemoryTTL sets the default TTL for cached resolutions
func WithInMemoryTTL(ttl time.Duration) InMemoryResolutionCacheOption {
	return func(c *InMemoryResolutionCache) {
		if ttl > 0 {
			c.ttl = ttl
		}
	}
}

// WithInMemoryLogger sets the logger for the cache
func WithInMemoryLogger(logger *zap.Logger) InMemoryResolutionCacheOption {
	return func(c *InMemoryResolutionCache) {
		c.logger = logger
	}
}

// NewInMemoryResolutionCache creates a new in-memory resolution cache
func NewInMemoryResolutionCache(opts ...InMemoryResolutionCacheOption) *InMemoryResolutionCache {
	cache := &InMemoryResolutionCache{
		ttl:    DefaultResolutionTTL,
		logger: zap.NewNop(),
		stopCh: make(chan struct{}),
	}

	for _, opt := range opts {
		opt(cache)
	}

	go cache.cleanupExpired()

	return cache
}

// Get retrieves a cached resolution for the domain slug
func (c *InMemoryResolutionCache) Get(ctx context.Context, domain string) (*TenantResolution, error) {
	key := resolutionKey(domain)

	if value, ok := c.entries.Load(key); ok {
		entry := value.(*resolutionEntry)
		if !entry.isExpired() {
			atomic.AddInt64(&c.hits, 1)
			return entry.value, nil
		}
		c.entries.Delete(key)
	}

	atomic.AddInt64(&c.misses, 1)
	return nil, nil
}

// Set stores a resolution with a TTL
func (c *InMemoryResolutionCache) Set(ctx context.Context, domain string, res *TenantResolution, ttl time.Duration) error {
	if res == nil {
		return nil
	}
	if ttl == 0 {
		ttl = c.ttl
	}

	c.entries.Store(resolutionKey(domain), &resolutionEntry{
		value:     res,
		expiresAt: time.Now().Add(ttl),
	})
	return nil
}

// Invalidate drops the cached resolution for a domain slug
func (c *InMemoryResolutionCache) Invalidate(ctx context.Context, domain string) error {
	c.entries.Delete(resolutionKey(domain))
	return nil
}

// Close stops the cleanup goroutine
func (c *InMemoryResolutionCache) Close() error {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

// Stats returns hit and miss counters for monitoring
func (c *InMemoryResolutionCache) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// cleanupExpired periodically removes expired entries so domains that are
// never looked up again do not pin memory
func (c *InMemoryResolutionCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.entries.Range(func(key, value interface{}) bool {
				if entry, ok := value.(*resolutionEntry); ok && entry.isExpired() {
					c.entries.Delete(key)
				}
				return true
			})
		}
	}
}
