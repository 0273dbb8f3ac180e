package licensing

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tienda/backend/internal/domain/audit"
	"github.com/tienda/backend/internal/domain/identity"
	"github.com/tienda/backend/internal/domain/licensing"
	"github.com/tienda/backend/internal/domain/shared"
	"github.com/tienda/backend/internal/infrastructure/persistence/tenant"
)

// LicenseService handles license administration and activation. License
// rows are tenant-guarded in the database, so every repository call runs
// under an exempt context; this service is the system-side owner of that
// table.
type LicenseService struct {
	licenses   licensing.LicenseRepository
	tenantRepo identity.TenantRepository
	auditRepo  audit.Repository
	logger     *zap.Logger
	now        func() time.Time
}

// NewLicenseService creates a new license service
func NewLicenseService(
	licenses licensing.LicenseRepository,
	tenantRepo identity.TenantRepository,
	auditRepo audit.Repository,
	logger *zap.Logger,
) *LicenseService {
	return &LicenseService{
		licenses:   licenses,
		tenantRepo: tenantRepo,
		auditRepo:  auditRepo,
		logger:     logger,
		now:        time.Now,
	}
}

// WithClock overrides the service clock, mainly for tests
func (s *LicenseService) WithClock(now func() time.Time) *LicenseService {
	s.now = now
	return s
}

// Generate mints a new license in the generated state. Only the
// mothership tier may mint.
func (s *LicenseService) Generate(ctx context.Context, input GenerateLicenseInput) (*LicenseDTO, error) {
	if !identity.ActorRole(input.ActorRole).CanAdministerLicenses() {
		return nil, shared.ErrForbidden
	}

	license, err := licensing.NewLicense(
		licensing.Plan(input.Plan),
		licensing.DurationPolicy(input.Duration),
	)
	if err != nil {
		return nil, err
	}

	if err := s.licenses.Save(tenant.Exempt(ctx), license); err != nil {
		return nil, err
	}

	s.appendAudit(ctx, input.ActorID, input.ActorRole, audit.ActionLicenseGenerated, license.ID, map[string]string{
		"serial": license.Serial,
		"plan":   license.Plan.String(),
	})

	s.logger.Info("license generated",
		zap.String("serial", license.Serial),
		zap.String("plan", license.Plan.String()),
	)

	dto := ToLicenseDTO(license)
	return &dto, nil
}

// Activate binds a license to a tenant. The serial is validated
// structurally before any lookup; concurrent activations of the same
// serial are serialized by the repository, so at most one tenant wins.
func (s *LicenseService) Activate(ctx context.Context, input ActivateLicenseInput) (*LicenseDTO, error) {
	if err := licensing.ValidateSerial(input.Serial); err != nil {
		return nil, err
	}

	target, err := s.tenantRepo.FindByID(ctx, input.TenantID)
	if err != nil {
		return nil, err
	}
	if target.IsDeleted() {
		return nil, shared.ErrNotFound
	}

	ectx := tenant.Exempt(ctx)
	now := s.now()

	license, err := s.licenses.FindBySerial(ectx, input.Serial)
	if err != nil {
		return nil, err
	}
	if err := license.CanActivateFor(input.TenantID, now); err != nil {
		return nil, err
	}

	if err := s.licenses.BindTenant(ectx, input.Serial, input.TenantID, now); err != nil {
		return nil, err
	}

	// The tenant's plan follows its activated license
	if err := target.SetPlan(license.Plan); err == nil {
		if err := s.tenantRepo.Save(ctx, target); err != nil {
			s.logger.Error("failed to update tenant plan after activation",
				zap.String("tenant_id", input.TenantID.String()),
				zap.Error(err),
			)
		}
	}

	activated, err := s.licenses.FindBySerial(ectx, input.Serial)
	if err != nil {
		return nil, err
	}

	s.logger.Info("license activated",
		zap.String("serial", input.Serial),
		zap.String("tenant_id", input.TenantID.String()),
	)

	dto := ToLicenseDTO(activated)
	return &dto, nil
}

// Suspend makes a license temporarily unusable
func (s *LicenseService) Suspend(ctx context.Context, input RevokeLicenseInput) (*LicenseDTO, error) {
	return s.mutate(ctx, input, audit.ActionLicenseSuspended, func(l *licensing.License) error {
		return l.Suspend()
	})
}

// Resume lifts a suspension
func (s *LicenseService) Resume(ctx context.Context, input RevokeLicenseInput) (*LicenseDTO, error) {
	return s.mutate(ctx, input, "", func(l *licensing.License) error {
		return l.Resume()
	})
}

// SoftRevoke unbinds the tenant and makes the serial reusable
func (s *LicenseService) SoftRevoke(ctx context.Context, input RevokeLicenseInput) (*LicenseDTO, error) {
	return s.mutate(ctx, input, audit.ActionLicenseRevoked, func(l *licensing.License) error {
		return l.SoftRevoke()
	})
}

// Revoke permanently disables a license
func (s *LicenseService) Revoke(ctx context.Context, input RevokeLicenseInput) (*LicenseDTO, error) {
	return s.mutate(ctx, input, audit.ActionLicenseRevoked, func(l *licensing.License) error {
		l.Revoke()
		return nil
	})
}

// GetBySerial returns a license by serial
func (s *LicenseService) GetBySerial(ctx context.Context, serial string) (*LicenseDTO, error) {
	if err := licensing.ValidateSerial(serial); err != nil {
		return nil, err
	}
	license, err := s.licenses.FindBySerial(tenant.Exempt(ctx), serial)
	if err != nil {
		return nil, err
	}
	dto := ToLicenseDTO(license)
	return &dto, nil
}

// GetForTenant returns the license bound to a tenant
func (s *LicenseService) GetForTenant(ctx context.Context, tenantID uuid.UUID) (*LicenseDTO, error) {
	license, err := s.licenses.FindByTenant(tenant.Exempt(ctx), tenantID)
	if err != nil {
		return nil, err
	}
	dto := ToLicenseDTO(license)
	return &dto, nil
}

// List returns licenses matching the filter with a total count
func (s *LicenseService) List(ctx context.Context, filter LicenseFilter) (*shared.Paginated[LicenseDTO], error) {
	sharedFilter := filter.ToSharedFilter()
	ectx := tenant.Exempt(ctx)

	licenses, err := s.licenses.FindAll(ectx, sharedFilter)
	if err != nil {
		return nil, err
	}

	total, err := s.licenses.Count(ectx, sharedFilter)
	if err != nil {
		return nil, err
	}

	dtos := make([]LicenseDTO, len(licenses))
	for i := range licenses {
		dtos[i] = ToLicenseDTO(&licenses[i])
	}

	result := shared.NewPaginated(dtos, total, sharedFilter.Page, sharedFilter.PageSize)
	return &result, nil
}

func (s *LicenseService) mutate(ctx context.Context, input RevokeLicenseInput, action audit.ActionKind, fn func(*licensing.License) error) (*LicenseDTO, error) {
	if !identity.ActorRole(input.ActorRole).CanAdministerLicenses() {
		return nil, shared.ErrForbidden
	}
	if err := licensing.ValidateSerial(input.Serial); err != nil {
		return nil, err
	}

	ectx := tenant.Exempt(ctx)
	license, err := s.licenses.FindBySerial(ectx, input.Serial)
	if err != nil {
		return nil, err
	}

	if err := fn(license); err != nil {
		return nil, err
	}

	if err := s.licenses.Save(ectx, license); err != nil {
		return nil, err
	}

	if action != "" {
		s.appendAudit(ctx, input.ActorID, input.ActorRole, action, license.ID, map[string]string{
			"serial": license.Serial,
			"status": string(license.Status),
		})
	}

	dto := ToLicenseDTO(license)
	return &dto, nil
}

// appendAudit records a privileged license action. Audit failures are
// logged at error severity and never fail the operation itself.
func (s *LicenseService) appendAudit(ctx context.Context, actorID uuid.UUID, actorRole string, action audit.ActionKind, targetID uuid.UUID, details map[string]string) {
	if s.auditRepo == nil || actorID == uuid.Nil {
		return
	}

	entry, err := audit.NewEntry(actorID, actorRole, action, targetID, "license", details)
	if err != nil {
		s.logger.Error("failed to build audit entry", zap.Error(err))
		return
	}

	if err := s.auditRepo.Append(ctx, entry); err != nil && !errors.Is(err, context.Canceled) {
		s.logger.Error("failed to append audit entry",
			zap.String("action", string(action)),
			zap.Error(err),
		)
	}
}
