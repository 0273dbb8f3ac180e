package identity

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tienda/backend/internal/domain/identity"
	"github.com/tienda/backend/internal/domain/shared"
	"github.com/tienda/backend/internal/infrastructure/cache"
)

// TenantService handles tenant lifecycle operations for the mothership
// console: provisioning, suspension, soft deletion and hard purge.
type TenantService struct {
	tenantRepo identity.TenantRepository
	cache      cache.ResolutionCache
	logger     *zap.Logger
}

// NewTenantService creates a new tenant service
func NewTenantService(
	tenantRepo identity.TenantRepository,
	resolutionCache cache.ResolutionCache,
	logger *zap.Logger,
) *TenantService {
	return &TenantService{
		tenantRepo: tenantRepo,
		cache:      resolutionCache,
		logger:     logger,
	}
}

// Create provisions a new tenant. The domain slug must be unique among
// non-deleted tenants; a soft-deleted tenant releases its slug.
func (s *TenantService) Create(ctx context.Context, input CreateTenantInput) (*TenantDTO, error) {
	domain := identity.NormalizeDomain(input.Domain)

	exists, err := s.tenantRepo.ExistsByDomain(ctx, domain)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, shared.NewDomainError("DOMAIN_TAKEN", "Domain is already in use by another tenant")
	}

	tenant, err := identity.NewTenant(input.Name, domain)
	if err != nil {
		return nil, err
	}

	if input.ContactEmail != "" {
		if err := tenant.SetContactEmail(input.ContactEmail); err != nil {
			return nil, err
		}
	}

	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return nil, err
	}

	s.logger.Info("tenant provisioned",
		zap.String("tenant_id", tenant.ID.String()),
		zap.String("domain", tenant.Domain),
	)

	dto := ToTenantDTO(tenant)
	return &dto, nil
}

// Get returns a tenant by ID
func (s *TenantService) Get(ctx context.Context, id uuid.UUID) (*TenantDTO, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	dto := ToTenantDTO(tenant)
	return &dto, nil
}

// List returns tenants matching the filter with a total count
func (s *TenantService) List(ctx context.Context, filter TenantFilter) (*shared.Paginated[TenantDTO], error) {
	sharedFilter := filter.ToSharedFilter()

	tenants, err := s.tenantRepo.FindAll(ctx, sharedFilter)
	if err != nil {
		return nil, err
	}

	total, err := s.tenantRepo.Count(ctx, sharedFilter)
	if err != nil {
		return nil, err
	}

	dtos := make([]TenantDTO, len(tenants))
	for i := range tenants {
		dtos[i] = ToTenantDTO(&tenants[i])
	}

	result := shared.NewPaginated(dtos, total, sharedFilter.Page, sharedFilter.PageSize)
	return &result, nil
}

// Update changes mutable tenant fields
func (s *TenantService) Update(ctx context.Context, input UpdateTenantInput) (*TenantDTO, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, input.ID)
	if err != nil {
		return nil, err
	}

	if input.Name != nil {
		if err := tenant.Rename(*input.Name); err != nil {
			return nil, err
		}
	}
	if input.ContactEmail != nil {
		if err := tenant.SetContactEmail(*input.ContactEmail); err != nil {
			return nil, err
		}
	}

	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return nil, err
	}

	s.invalidateResolution(ctx, tenant.Domain)

	dto := ToTenantDTO(tenant)
	return &dto, nil
}

// Activate transitions a tenant to active
func (s *TenantService) Activate(ctx context.Context, id uuid.UUID) (*TenantDTO, error) {
	return s.transition(ctx, id, func(t *identity.Tenant) error { return t.Activate() })
}

// Suspend transitions a tenant to suspended
func (s *TenantService) Suspend(ctx context.Context, id uuid.UUID) (*TenantDTO, error) {
	return s.transition(ctx, id, func(t *identity.Tenant) error { return t.Suspend() })
}

// SoftDelete marks a tenant deleted. The row is retained for audit and
// the domain slug is released for reuse.
func (s *TenantService) SoftDelete(ctx context.Context, id uuid.UUID) (*TenantDTO, error) {
	dto, err := s.transition(ctx, id, func(t *identity.Tenant) error { return t.SoftDelete() })
	if err != nil {
		return nil, err
	}
	s.logger.Info("tenant soft-deleted", zap.String("tenant_id", id.String()))
	return dto, nil
}

// Purge physically removes a soft-deleted tenant
func (s *TenantService) Purge(ctx context.Context, id uuid.UUID) error {
	tenant, err := s.tenantRepo.FindByID(ctx, id)
	if err != nil {
		return err
	}

	if err := s.tenantRepo.Purge(ctx, id); err != nil {
		return err
	}

	s.invalidateResolution(ctx, tenant.Domain)
	s.logger.Warn("tenant purged", zap.String("tenant_id", id.String()))
	return nil
}

func (s *TenantService) transition(ctx context.Context, id uuid.UUID, fn func(*identity.Tenant) error) (*TenantDTO, error) {
	tenant, err := s.tenantRepo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}

	if err := fn(tenant); err != nil {
		return nil, err
	}

	if err := s.tenantRepo.Save(ctx, tenant); err != nil {
		return nil, err
	}

	s.invalidateResolution(ctx, tenant.Domain)

	dto := ToTenantDTO(tenant)
	return &dto, nil
}

// invalidateResolution drops the cached resolution for a domain. Cache
// errors are logged, not returned: the TTL bounds staleness either way.
func (s *TenantService) invalidateResolution(ctx context.Context, domain string) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Invalidate(ctx, domain); err != nil {
		s.logger.Error("failed to invalidate tenant resolution cache",
			zap.String("domain", domain),
			zap.Error(err),
		)
	}
}
