package licensing

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/tienda/backend/internal/domain/shared"
)

// LicenseRepository defines the interface for license persistence
type LicenseRepository interface {
	// FindBySerial finds a license by its serial
	FindBySerial(ctx context.Context, serial string) (*License, error)

	// FindByTenant finds the license currently bound to the tenant, if any
	FindByTenant(ctx context.Context, tenantID uuid.UUID) (*License, error)

	// LockByTenant is FindByTenant with a row lock held for the duration
	// of the surrounding transaction. Callers use it to serialize quota
	// admission per tenant.
	LockByTenant(ctx context.Context, tenantID uuid.UUID) (*License, error)

	// FindAll finds all licenses matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]License, error)

	// Save creates or updates a license
	Save(ctx context.Context, license *License) error

	// BindTenant atomically binds a generated license to a tenant.
	// At most one concurrent caller succeeds per serial; losers observe
	// the license as already activated.
	BindTenant(ctx context.Context, serial string, tenantID uuid.UUID, at time.Time) error

	// Count counts licenses matching the filter
	Count(ctx context.Context, filter shared.Filter) (int64, error)
}
