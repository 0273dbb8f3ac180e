package cache

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/tienda/backend/internal/domain/identity"
)

// TenantResolution is the cacheable outcome of resolving a domain slug to
// a tenant. Status is cached alongside the ID so suspended and deleted
// tenants keep their distinct responses without a database round trip.
type TenantResolution struct {
	TenantID uuid.UUID             `json:"tenant_id"`
	Status   identity.TenantStatus `json:"status"`
}

// ResolutionCache caches domain-to-tenant lookups. A nil result with a nil
// error is a cache miss; callers fall through to the repository.
type ResolutionCache interface {
	// Get retrieves a cached resolution for the domain slug
	Get(ctx context.Context, domain string) (*TenantResolution, error)

	// Set stores a resolution with a TTL. Zero TTL uses the cache default.
	Set(ctx context.Context, domain string, res *TenantResolution, ttl time.Duration) error

	// Invalidate drops the cached resolution for a domain slug
	Invalidate(ctx context.Context, domain string) error

	// Close releases cache resources
	Close() error
}

// DefaultResolutionTTL bounds how long a stale tenant status can be served
// after a lifecycle change that bypassed invalidation.
const DefaultResolutionTTL = 30 * time.Second

func resolutionKey(domain string) string {
	return "tenant:resolve:" + strings.ToLower(domain)
}
