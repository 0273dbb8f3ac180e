package support

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/tienda/backend/internal/domain/audit"
	"github.com/tienda/backend/internal/domain/identity"
	"github.com/tienda/backend/internal/domain/shared"
	"github.com/tienda/backend/internal/infrastructure/auth"
)

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

const testGrantSecret = "test-impersonation-secret-at-least-32b"

func activeTenant(t *testing.T) *identity.Tenant {
	t.Helper()
	tenant, err := identity.NewTenant("Acme", "acme")
	require.NoError(t, err)
	require.NoError(t, tenant.Activate())
	return tenant
}

func newTestService(tenants *MockTenantRepository, audits *MockAuditRepository, logger *zap.Logger) *ImpersonationService {
	grants := auth.NewGrantService(testGrantSecret, "tienda-test")
	return NewImpersonationService(grants, auth.NewInMemoryGrantRevocations(), tenants, audits, logger)
}

func TestImpersonationService_Issue(t *testing.T) {
	ctx := context.Background()

	t.Run("mothership operator gets a grant and an audit entry", func(t *testing.T) {
		target := activeTenant(t)
		operator := uuid.New()

		tenants := new(MockTenantRepository)
		tenants.On("FindByID", ctx, target.ID).Return(target, nil)

		audits := new(MockAuditRepository)
		audits.On("Append", ctx, mock.MatchedBy(func(e *audit.Entry) bool {
			return e.Action == audit.ActionImpersonationIssued &&
				e.ActorID == operator &&
				e.TargetID == target.ID
		})).Return(nil)

		svc := newTestService(tenants, audits, zap.NewNop())
		grant, err := svc.Issue(ctx, IssueInput{
			TenantID:  target.ID,
			ActorID:   operator,
			ActorRole: identity.RoleMothership,
		})

		require.NoError(t, err)
		assert.NotEmpty(t, grant.Token)
		assert.Equal(t, target.ID, grant.TenantID)

		claims, err := svc.Verify(ctx, grant.Token)
		require.NoError(t, err)
		assert.True(t, claims.Impersonated)
		assert.Equal(t, auth.RoleImpersonator, claims.Role)
		audits.AssertExpectations(t)
	})

	t.Run("non-mothership roles are forbidden", func(t *testing.T) {
		tenants := new(MockTenantRepository)
		svc := newTestService(tenants, new(MockAuditRepository), zap.NewNop())

		for _, role := range []identity.ActorRole{identity.RoleAdmin, identity.RoleStaff, identity.RoleImpersonator} {
			_, err := svc.Issue(ctx, IssueInput{
				TenantID:  uuid.New(),
				ActorID:   uuid.New(),
				ActorRole: role,
			})
			assert.ErrorIs(t, err, shared.ErrForbidden)
		}
		tenants.AssertNotCalled(t, "FindByID", mock.Anything, mock.Anything)
	})

	t.Run("unknown target tenant", func(t *testing.T) {
		tenants := new(MockTenantRepository)
		tenants.On("FindByID", ctx, mock.Anything).Return(nil, shared.ErrNotFound)

		svc := newTestService(tenants, new(MockAuditRepository), zap.NewNop())
		_, err := svc.Issue(ctx, IssueInput{
			TenantID:  uuid.New(),
			ActorID:   uuid.New(),
			ActorRole: identity.RoleMothership,
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("deleted target tenant reads as not found", func(t *testing.T) {
		target := activeTenant(t)
		require.NoError(t, target.SoftDelete())

		tenants := new(MockTenantRepository)
		tenants.On("FindByID", ctx, target.ID).Return(target, nil)

		svc := newTestService(tenants, new(MockAuditRepository), zap.NewNop())
		_, err := svc.Issue(ctx, IssueInput{
			TenantID:  target.ID,
			ActorID:   uuid.New(),
			ActorRole: identity.RoleMothership,
		})
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("audit outage is logged but does not block issuance", func(t *testing.T) {
		target := activeTenant(t)

		tenants := new(MockTenantRepository)
		tenants.On("FindByID", ctx, target.ID).Return(target, nil)

		audits := new(MockAuditRepository)
		audits.On("Append", ctx, mock.Anything).Return(errors.New("audit store down"))

		core, logs := observer.New(zap.ErrorLevel)
		svc := newTestService(tenants, audits, zap.New(core))

		grant, err := svc.Issue(ctx, IssueInput{
			TenantID:  target.ID,
			ActorID:   uuid.New(),
			ActorRole: identity.RoleMothership,
		})

		require.NoError(t, err)
		assert.NotEmpty(t, grant.Token)
		require.Equal(t, 1, logs.Len())
		assert.Contains(t, logs.All()[0].Message, "audit")
	})
}

func TestImpersonationService_Revoke(t *testing.T) {
	ctx := context.Background()
	target := activeTenant(t)

	tenants := new(MockTenantRepository)
	tenants.On("FindByID", ctx, target.ID).Return(target, nil)
	audits := new(MockAuditRepository)
	audits.On("Append", ctx, mock.Anything).Return(nil)

	svc := newTestService(tenants, audits, zap.NewNop())
	grant, err := svc.Issue(ctx, IssueInput{
		TenantID:  target.ID,
		ActorID:   uuid.New(),
		ActorRole: identity.RoleMothership,
	})
	require.NoError(t, err)

	_, err = svc.Verify(ctx, grant.Token)
	require.NoError(t, err)

	require.NoError(t, svc.Revoke(ctx, grant.Token))

	_, err = svc.Verify(ctx, grant.Token)
	assert.ErrorIs(t, err, auth.ErrGrantRevoked)
}
