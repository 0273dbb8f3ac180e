package identity

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tienda/backend/internal/domain/identity"
	"github.com/tienda/backend/internal/domain/shared"
	"github.com/tienda/backend/internal/infrastructure/cache"
)

// ErrTenantUnresolved means no tenant matched the request
var ErrTenantUnresolved = shared.NewDomainError("TENANT_UNRESOLVED", "No tenant matches this request")

// ErrTenantDeleted means the matched tenant was deleted. Kept distinct
// from unresolved so a deleted shop can answer with a tombstone page
// instead of a generic not-found.
var ErrTenantDeleted = shared.NewDomainError("TENANT_DELETED", "Tenant has been deleted")

// Resolution is the result of resolving a request to a tenant. It does
// not carry the tenant's license; quota decisions load it at decision
// time so a plan change or revocation applies to the next request, not
// the next cache expiry.
type Resolution struct {
	TenantID uuid.UUID
	Domain   string
	Status   identity.TenantStatus
}

// ResolveRequest carries the identifying signals extracted from a request,
// strongest first: an explicit tenant id beats the host subdomain, which
// beats the configured single-tenant fallback.
type ResolveRequest struct {
	TenantID string // explicit tenant id from header or param
	Host     string // request host, e.g. acme.tienda.app
}

// Resolver maps incoming requests to tenants. Lookups by domain go through
// a short-TTL cache; lifecycle operations invalidate it.
type Resolver struct {
	tenantRepo    identity.TenantRepository
	cache         cache.ResolutionCache
	baseDomain    string
	defaultDomain string
	logger        *zap.Logger
}

// NewResolver creates a new tenant resolver. baseDomain is the shared
// suffix tenant shops live under ("tienda.app"); defaultDomain, when set,
// resolves requests that carry no tenant signal at all.
func NewResolver(
	tenantRepo identity.TenantRepository,
	resolutionCache cache.ResolutionCache,
	baseDomain string,
	defaultDomain string,
	logger *zap.Logger,
) *Resolver {
	return &Resolver{
		tenantRepo:    tenantRepo,
		cache:         resolutionCache,
		baseDomain:    strings.ToLower(strings.TrimSpace(baseDomain)),
		defaultDomain: identity.NormalizeDomain(defaultDomain),
		logger:        logger,
	}
}

// Resolve resolves a request to a tenant following the precedence order.
// Deleted tenants return ErrTenantDeleted; anything that matches nothing
// returns ErrTenantUnresolved. Suspended and pending tenants resolve
// normally; the caller decides what their status permits.
func (r *Resolver) Resolve(ctx context.Context, req ResolveRequest) (*Resolution, error) {
	if req.TenantID != "" {
		return r.resolveByID(ctx, req.TenantID)
	}

	if slug := r.slugFromHost(req.Host); slug != "" {
		return r.resolveByDomain(ctx, slug)
	}

	if r.defaultDomain != "" {
		return r.resolveByDomain(ctx, r.defaultDomain)
	}

	return nil, ErrTenantUnresolved
}

// ResolveDomain resolves a domain slug directly, bypassing host parsing
func (r *Resolver) ResolveDomain(ctx context.Context, domain string) (*Resolution, error) {
	return r.resolveByDomain(ctx, identity.NormalizeDomain(domain))
}

func (r *Resolver) resolveByID(ctx context.Context, raw string) (*Resolution, error) {
	id, err := uuid.Parse(raw)
	if err != nil {
		return nil, ErrTenantUnresolved
	}

	tenant, err := r.tenantRepo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrTenantUnresolved
		}
		return nil, err
	}

	return r.toResolution(tenant)
}

func (r *Resolver) resolveByDomain(ctx context.Context, slug string) (*Resolution, error) {
	if slug == "" {
		return nil, ErrTenantUnresolved
	}

	if cached := r.fromCache(ctx, slug); cached != nil {
		if cached.Status == identity.TenantStatusDeleted {
			return nil, ErrTenantDeleted
		}
		return &Resolution{TenantID: cached.TenantID, Domain: slug, Status: cached.Status}, nil
	}

	tenant, err := r.tenantRepo.FindByDomain(ctx, slug)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrTenantUnresolved
		}
		return nil, err
	}

	r.storeCache(ctx, slug, tenant)

	return r.toResolution(tenant)
}

func (r *Resolver) toResolution(tenant *identity.Tenant) (*Resolution, error) {
	if tenant.IsDeleted() {
		return nil, ErrTenantDeleted
	}
	return &Resolution{
		TenantID: tenant.ID,
		Domain:   tenant.Domain,
		Status:   tenant.Status,
	}, nil
}

// slugFromHost extracts the tenant slug from a host under the base domain.
// "acme.tienda.app" yields "acme"; the bare base domain and hosts outside
// it yield nothing.
func (r *Resolver) slugFromHost(host string) string {
	if host == "" || r.baseDomain == "" {
		return ""
	}

	host = strings.ToLower(host)
	if i := strings.IndexByte(host, ':'); i >= 0 {
		host = host[:i]
	}

	suffix := "." + r.baseDomain
	if !strings.HasSuffix(host, suffix) {
		return ""
	}

	slug := strings.TrimSuffix(host, suffix)
	if slug == "" || strings.Contains(slug, ".") {
		return ""
	}
	return slug
}

func (r *Resolver) fromCache(ctx context.Context, slug string) *cache.TenantResolution {
	if r.cache == nil {
		return nil
	}
	cached, err := r.cache.Get(ctx, slug)
	if err != nil {
		r.logger.Warn("tenant resolution cache read failed",
			zap.String("domain", slug),
			zap.Error(err),
		)
		return nil
	}
	return cached
}

func (r *Resolver) storeCache(ctx context.Context, slug string, tenant *identity.Tenant) {
	if r.cache == nil {
		return
	}
	err := r.cache.Set(ctx, slug, &cache.TenantResolution{
		TenantID: tenant.ID,
		Status:   tenant.Status,
	}, 0)
	if err != nil {
		r.logger.Warn("tenant resolution cache write failed",
			zap.String("domain", slug),
			zap.Error(err),
		)
	}
}
