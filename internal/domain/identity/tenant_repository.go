package identity

import (
	"context"

	"github.com/google/uuid"
	"github.com/tienda/backend/internal/domain/shared"
)

// TenantRepository defines the interface for tenant persistence.
// Lookups return soft-deleted tenants too; callers decide whether a deleted
// tenant is acceptable (the resolver reports it distinctly, for one).
type TenantRepository interface {
	// FindByID finds a tenant by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Tenant, error)

	// FindByDomain finds a tenant by its routable domain slug
	FindByDomain(ctx context.Context, domain string) (*Tenant, error)

	// FindAll finds all tenants matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Tenant, error)

	// Save creates or updates a tenant
	Save(ctx context.Context, tenant *Tenant) error

	// Purge physically removes a tenant row. Only valid for tenants that
	// were already soft-deleted.
	Purge(ctx context.Context, id uuid.UUID) error

	// ExistsByDomain checks if a non-deleted tenant holds the given domain
	ExistsByDomain(ctx context.Context, domain string) (bool, error)

	// Count counts tenants matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
