package quota

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tienda/backend/internal/domain/licensing"
	"github.com/tienda/backend/internal/domain/shared"
	"github.com/tienda/backend/internal/infrastructure/persistence/tenant"
)

// ErrNoLicense means the tenant has no activated license bound
var ErrNoLicense = shared.NewDomainError("NO_LICENSE", "Tenant has no active license")

// QuotaExceededError reports a denial with the ceiling and the usage
// observed at decision time, so callers can render "2000 of 2000 used".
type QuotaExceededError struct {
	Kind    licensing.ResourceKind
	Ceiling int64
	Current int64
}

func (e *QuotaExceededError) Error() string {
	return fmt.Sprintf("quota exceeded for %s: %d of %d used", e.Kind, e.Current, e.Ceiling)
}

// Gate decides whether a tenant may create another quota-limited resource.
// Usage is always derived by counting the tenant's rows at decision time.
//
// CheckAndAdmit is advisory: between the count and the caller's insert
// another writer can slip in. AdmitWithin closes that window by taking a
// row lock on the tenant's license inside the caller's transaction before
// counting, so concurrent writers for the same tenant queue up and each
// one counts the rows its predecessors committed.
type Gate struct {
	licenses licensing.LicenseRepository
	usage    licensing.UsageCounter
	logger   *zap.Logger
	now      func() time.Time
}

// NewGate creates a new quota gate
func NewGate(
	licenses licensing.LicenseRepository,
	usage licensing.UsageCounter,
	logger *zap.Logger,
) *Gate {
	return &Gate{
		licenses: licenses,
		usage:    usage,
		logger:   logger,
		now:      time.Now,
	}
}

// WithClock overrides the gate's clock, mainly for tests
func (g *Gate) WithClock(now func() time.Time) *Gate {
	g.now = now
	return g
}

// licenseLookup loads a tenant's license. The strict admission path uses
// a locking lookup; the advisory path a plain read.
type licenseLookup func(ctx context.Context, tenantID uuid.UUID) (*licensing.License, error)

// CheckAndAdmit admits delta new resources of the given kind, or returns
// why not: ErrNoLicense, the license state errors, or QuotaExceededError.
func (g *Gate) CheckAndAdmit(ctx context.Context, tenantID uuid.UUID, kind licensing.ResourceKind, delta int64) error {
	return g.admit(ctx, g.licenses.FindByTenant, g.usage, tenantID, kind, delta)
}

// AdmitWithin is CheckAndAdmit bound to the caller's transaction: licenses
// and counter must be backed by the transaction that also performs the
// guarded insert. The license row is locked before the count, so two
// concurrent creates at one slot under the ceiling cannot both get in.
func (g *Gate) AdmitWithin(ctx context.Context, licenses licensing.LicenseRepository, counter licensing.UsageCounter, tenantID uuid.UUID, kind licensing.ResourceKind, delta int64) error {
	return g.admit(ctx, licenses.LockByTenant, counter, tenantID, kind, delta)
}

func (g *Gate) admit(ctx context.Context, find licenseLookup, counter licensing.UsageCounter, tenantID uuid.UUID, kind licensing.ResourceKind, delta int64) error {
	if !kind.IsValid() {
		return shared.NewDomainError("INVALID_RESOURCE_KIND", "Unknown resource kind")
	}
	if delta < 1 {
		delta = 1
	}

	license, err := g.findLicense(ctx, find, tenantID)
	if err != nil {
		return err
	}

	ceiling := license.CeilingFor(kind)
	if ceiling == nil {
		return nil
	}

	current, err := counter.CountResources(ctx, tenantID, kind)
	if err != nil {
		return err
	}

	if current+delta > *ceiling {
		g.logger.Info("quota admission denied",
			zap.String("tenant_id", tenantID.String()),
			zap.String("resource", string(kind)),
			zap.Int64("current", current),
			zap.Int64("ceiling", *ceiling),
		)
		return &QuotaExceededError{Kind: kind, Ceiling: *ceiling, Current: current}
	}

	return nil
}

// Usage reports the tenant's current usage against its license ceilings,
// one entry per resource kind
func (g *Gate) Usage(ctx context.Context, tenantID uuid.UUID) ([]licensing.Usage, error) {
	license, err := g.findLicense(ctx, g.licenses.FindByTenant, tenantID)
	if err != nil {
		return nil, err
	}

	kinds := []licensing.ResourceKind{licensing.ResourceProduct, licensing.ResourceOrder}
	report := make([]licensing.Usage, 0, len(kinds))
	for _, kind := range kinds {
		current, err := g.usage.CountResources(ctx, tenantID, kind)
		if err != nil {
			return nil, err
		}
		report = append(report, licensing.Usage{
			Kind:    kind,
			Current: current,
			Ceiling: license.CeilingFor(kind),
		})
	}
	return report, nil
}

// findLicense loads the tenant's license and rejects unusable states.
// The licenses table is tenant-guarded, so the lookup runs exempt.
func (g *Gate) findLicense(ctx context.Context, find licenseLookup, tenantID uuid.UUID) (*licensing.License, error) {
	license, err := find(tenant.Exempt(ctx), tenantID)
	if err != nil {
		if errors.Is(err, shared.ErrNotFound) {
			return nil, ErrNoLicense
		}
		return nil, err
	}

	if license.Status == licensing.StatusSuspended {
		return nil, licensing.ErrLicenseSuspended
	}
	if license.IsExpired(g.now()) {
		return nil, licensing.ErrLicenseExpired
	}
	if license.Status != licensing.StatusActivated {
		return nil, ErrNoLicense
	}

	return license, nil
}
