package licensing

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tienda/backend/internal/domain/audit"
	"github.com/tienda/backend/internal/domain/identity"
	"github.com/tienda/backend/internal/domain/licensing"
	"github.com/tienda/backend/internal/domain/shared"
)

// MockLicenseRepository is a mock implementation of LicenseRepository
type MockLicenseRepository struct {
	mock.Mock
}

func (m *MockLicenseRepository) FindBySerial(ctx context.Context, serial string) (*licensing.License, error) {
	args := m.Called(ctx, serial)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*licensing.License), args.Error(1)
}

func (m *MockLicenseRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) (*licensing.License, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*licensing.License), args.Error(1)
}

func (m *MockLicenseRepository) LockByTenant(ctx context.Context, tenantID uuid.UUID) (*licensing.License, error) {
	args := m.Called(ctx, tenantID)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*licensing.License), args.Error(1)
}

func (m *MockLicenseRepository) FindAll(ctx context.Context, filter shared.Filter) ([]licensing.License, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]licensing.License), args.Error(1)
}

func (m *MockLicenseRepository) Save(ctx context.Context, license *licensing.License) error {
	args := m.Called(ctx, license)
	return args.Error(0)
}

func (m *MockLicenseRepository) BindTenant(ctx context.Context, serial string, tenantID uuid.UUID, at time.Time) error {
	args := m.Called(ctx, serial, tenantID, at)
	return args.Error(0)
}

func (m *MockLicenseRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockTenantRepository is a mock implementation of TenantRepository
type MockTenantRepository struct {
	mock.Mock
}

func (m *MockTenantRepository) FindByID(ctx context.Context, id uuid.UUID) (*identity.Tenant, error) {
	args := m.Called(ctx, id)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Tenant), args.Error(1)
}

func (m *MockTenantRepository) FindByDomain(ctx context.Context, domain string) (*identity.Tenant, error) {
	args := m.Called(ctx, domain)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*identity.Tenant), args.Error(1)
}

func (m *MockTenantRepository) FindAll(ctx context.Context, filter shared.Filter) ([]identity.Tenant, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).([]identity.Tenant), args.Error(1)
}

func (m *MockTenantRepository) Save(ctx context.Context, tenant *identity.Tenant) error {
	args := m.Called(ctx, tenant)
	return args.Error(0)
}

func (m *MockTenantRepository) Purge(ctx context.Context, id uuid.UUID) error {
	args := m.Called(ctx, id)
	return args.Error(0)
}

func (m *MockTenantRepository) ExistsByDomain(ctx context.Context, domain string) (bool, error) {
	args := m.Called(ctx, domain)
	return args.Bool(0), args.Error(1)
}

func (m *MockTenantRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	args := m.Called(ctx, filter)
	return args.Get(0).(int64), args.Error(1)
}

// MockAuditRepository is a mock implementation of audit.Repository
type MockAuditRepository struct {
	mock.Mock
}

func (m *MockAuditRepository) Append(ctx context.Context, entry *audit.Entry) error {
	args := m.Called(ctx, entry)
	return args.Error(0)
}

func (m *MockAuditRepository) FindByTarget(ctx context.Context, targetID uuid.UUID, filter shared.Filter) ([]audit.Entry, error) {
	args := m.Called(ctx, targetID, filter)
	return args.Get(0).([]audit.Entry), args.Error(1)
}

func (m *MockAuditRepository) FindByActor(ctx context.Context, actorID uuid.UUID, filter shared.Filter) ([]audit.Entry, error) {
	args := m.Called(ctx, actorID, filter)
	return args.Get(0).([]audit.Entry), args.Error(1)
}

func newService(licenses *MockLicenseRepository, tenants *MockTenantRepository, audits *MockAuditRepository) *LicenseService {
	return NewLicenseService(licenses, tenants, audits, zap.NewNop())
}

func actorInput(serial string) RevokeLicenseInput {
	return RevokeLicenseInput{Serial: serial, ActorID: uuid.New(), ActorRole: "mothership"}
}

func TestLicenseService_Generate(t *testing.T) {
	ctx := context.Background()

	t.Run("mints a license and audits it", func(t *testing.T) {
		licenses := new(MockLicenseRepository)
		licenses.On("Save", mock.Anything, mock.AnythingOfType("*licensing.License")).Return(nil)
		audits := new(MockAuditRepository)
		audits.On("Append", ctx, mock.MatchedBy(func(e *audit.Entry) bool {
			return e.Action == audit.ActionLicenseGenerated
		})).Return(nil)

		svc := newService(licenses, new(MockTenantRepository), audits)
		dto, err := svc.Generate(ctx, GenerateLicenseInput{
			Plan:      "pro",
			Duration:  "lifetime",
			ActorID:   uuid.New(),
			ActorRole: "mothership",
		})

		require.NoError(t, err)
		assert.Equal(t, "generated", dto.Status)
		assert.NoError(t, licensing.ValidateSerial(dto.Serial))
		require.NotNil(t, dto.MaxProducts)
		assert.Equal(t, int64(2000), *dto.MaxProducts)
		assert.Nil(t, dto.MaxOrders)
		audits.AssertExpectations(t)
	})

	t.Run("rejects an unknown plan", func(t *testing.T) {
		svc := newService(new(MockLicenseRepository), new(MockTenantRepository), new(MockAuditRepository))
		_, err := svc.Generate(ctx, GenerateLicenseInput{Plan: "platinum", Duration: "lifetime", ActorRole: "mothership"})
		assert.Error(t, err)
	})

	t.Run("only mothership may mint", func(t *testing.T) {
		svc := newService(new(MockLicenseRepository), new(MockTenantRepository), new(MockAuditRepository))
		for _, role := range []string{"admin", "staff", "impersonator", ""} {
			_, err := svc.Generate(ctx, GenerateLicenseInput{Plan: "free", Duration: "lifetime", ActorID: uuid.New(), ActorRole: role})
			assert.ErrorIs(t, err, shared.ErrForbidden, "role %q", role)
		}
	})

	t.Run("audit failure does not fail generation", func(t *testing.T) {
		licenses := new(MockLicenseRepository)
		licenses.On("Save", mock.Anything, mock.Anything).Return(nil)
		audits := new(MockAuditRepository)
		audits.On("Append", mock.Anything, mock.Anything).Return(errors.New("audit store down"))

		svc := newService(licenses, new(MockTenantRepository), audits)
		_, err := svc.Generate(ctx, GenerateLicenseInput{
			Plan:      "free",
			Duration:  "lifetime",
			ActorID:   uuid.New(),
			ActorRole: "mothership",
		})
		assert.NoError(t, err)
	})
}

func TestLicenseService_Activate(t *testing.T) {
	ctx := context.Background()

	newTenant := func(t *testing.T) *identity.Tenant {
		t.Helper()
		tenant, err := identity.NewTenant("Acme", "acme")
		require.NoError(t, err)
		require.NoError(t, tenant.Activate())
		return tenant
	}

	generated := func(t *testing.T) *licensing.License {
		t.Helper()
		license, err := licensing.NewLicense(licensing.PlanStarter, licensing.DurationLifetime)
		require.NoError(t, err)
		return license
	}

	t.Run("binds license and aligns the tenant plan", func(t *testing.T) {
		target := newTenant(t)
		license := generated(t)

		activated := *license
		now := time.Now()
		require.NoError(t, activated.Activate(target.ID, now))

		licenses := new(MockLicenseRepository)
		licenses.On("FindBySerial", mock.Anything, license.Serial).Return(license, nil).Once()
		licenses.On("BindTenant", mock.Anything, license.Serial, target.ID, mock.AnythingOfType("time.Time")).Return(nil)
		licenses.On("FindBySerial", mock.Anything, license.Serial).Return(&activated, nil)

		tenants := new(MockTenantRepository)
		tenants.On("FindByID", ctx, target.ID).Return(target, nil)
		tenants.On("Save", ctx, target).Return(nil)

		svc := newService(licenses, tenants, new(MockAuditRepository))
		dto, err := svc.Activate(ctx, ActivateLicenseInput{Serial: license.Serial, TenantID: target.ID})

		require.NoError(t, err)
		assert.Equal(t, "activated", dto.Status)
		assert.Equal(t, licensing.PlanStarter, target.Plan)
		licenses.AssertExpectations(t)
	})

	t.Run("malformed serial is rejected before lookup", func(t *testing.T) {
		licenses := new(MockLicenseRepository)
		svc := newService(licenses, new(MockTenantRepository), new(MockAuditRepository))

		_, err := svc.Activate(ctx, ActivateLicenseInput{Serial: "NOT-A-SERIAL", TenantID: uuid.New()})

		assert.ErrorIs(t, err, licensing.ErrInvalidSerialFormat)
		licenses.AssertNotCalled(t, "FindBySerial", mock.Anything, mock.Anything)
	})

	t.Run("deleted tenant cannot activate", func(t *testing.T) {
		target := newTenant(t)
		require.NoError(t, target.SoftDelete())

		tenants := new(MockTenantRepository)
		tenants.On("FindByID", ctx, target.ID).Return(target, nil)

		svc := newService(new(MockLicenseRepository), tenants, new(MockAuditRepository))
		_, err := svc.Activate(ctx, ActivateLicenseInput{Serial: "TND-AAAA-BBBB-CCCC", TenantID: target.ID})

		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("license held by another tenant is rejected", func(t *testing.T) {
		target := newTenant(t)
		license := generated(t)
		require.NoError(t, license.Activate(uuid.New(), time.Now()))

		licenses := new(MockLicenseRepository)
		licenses.On("FindBySerial", mock.Anything, license.Serial).Return(license, nil)
		tenants := new(MockTenantRepository)
		tenants.On("FindByID", ctx, target.ID).Return(target, nil)

		svc := newService(licenses, tenants, new(MockAuditRepository))
		_, err := svc.Activate(ctx, ActivateLicenseInput{Serial: license.Serial, TenantID: target.ID})

		assert.ErrorIs(t, err, licensing.ErrAlreadyActivated)
		licenses.AssertNotCalled(t, "BindTenant", mock.Anything, mock.Anything, mock.Anything, mock.Anything)
	})
}

func TestLicenseService_Mutations(t *testing.T) {
	ctx := context.Background()

	activated := func(t *testing.T) *licensing.License {
		t.Helper()
		license, err := licensing.NewLicense(licensing.PlanPro, licensing.DurationLifetime)
		require.NoError(t, err)
		require.NoError(t, license.Activate(uuid.New(), time.Now()))
		return license
	}

	t.Run("suspend and resume", func(t *testing.T) {
		license := activated(t)
		licenses := new(MockLicenseRepository)
		licenses.On("FindBySerial", mock.Anything, license.Serial).Return(license, nil)
		licenses.On("Save", mock.Anything, license).Return(nil)
		audits := new(MockAuditRepository)
		audits.On("Append", mock.Anything, mock.Anything).Return(nil)

		svc := newService(licenses, new(MockTenantRepository), audits)

		dto, err := svc.Suspend(ctx, actorInput(license.Serial))
		require.NoError(t, err)
		assert.Equal(t, "suspended", dto.Status)

		dto, err = svc.Resume(ctx, actorInput(license.Serial))
		require.NoError(t, err)
		assert.Equal(t, "activated", dto.Status)
	})

	t.Run("soft revoke returns the serial to the pool", func(t *testing.T) {
		license := activated(t)
		licenses := new(MockLicenseRepository)
		licenses.On("FindBySerial", mock.Anything, license.Serial).Return(license, nil)
		licenses.On("Save", mock.Anything, license).Return(nil)
		audits := new(MockAuditRepository)
		audits.On("Append", mock.Anything, mock.Anything).Return(nil)

		svc := newService(licenses, new(MockTenantRepository), audits)
		dto, err := svc.SoftRevoke(ctx, actorInput(license.Serial))

		require.NoError(t, err)
		assert.Equal(t, "generated", dto.Status)
		assert.Nil(t, dto.TenantID)
	})

	t.Run("hard revoke is terminal", func(t *testing.T) {
		license := activated(t)
		licenses := new(MockLicenseRepository)
		licenses.On("FindBySerial", mock.Anything, license.Serial).Return(license, nil)
		licenses.On("Save", mock.Anything, license).Return(nil)
		audits := new(MockAuditRepository)
		audits.On("Append", mock.Anything, mock.Anything).Return(nil)

		svc := newService(licenses, new(MockTenantRepository), audits)
		dto, err := svc.Revoke(ctx, actorInput(license.Serial))
		require.NoError(t, err)
		assert.Equal(t, "revoked", dto.Status)

		// A revoked license cannot be suspended or resumed
		_, err = svc.Suspend(ctx, actorInput(license.Serial))
		assert.ErrorIs(t, err, licensing.ErrLicenseRevoked)
	})
}
