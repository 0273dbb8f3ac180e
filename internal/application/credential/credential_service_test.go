package credential

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/tienda/backend/internal/domain/credential"
	"github.com/tienda/backend/internal/domain/shared"
	"github.com/tienda/backend/internal/infrastructure/vault"
)

// MockCredentialRepository is a mock implementation of credential.Repository
type MockCredentialRepository struct {
	mock.Mock
}

func (m *MockCredentialRepository) FindByTenantAndName(ctx context.Context, tenantID uuid.UUID, name string) (*credential.Credential, error) {
	args := m.Called(ctx, tenantID, name)
	if args.Get(0) == nil {
		return nil, args.Error(1)
	}
	return args.Get(0).(*credential.Credential), args.Error(1)
}

func (m *MockCredentialRepository) ListNames(ctx context.Context, tenantID uuid.UUID) ([]string, error) {
	args := m.Called(ctx, tenantID)
	return args.Get(0).([]string), args.Error(1)
}

func (m *MockCredentialRepository) Save(ctx context.Context, cred *credential.Credential) error {
	args := m.Called(ctx, cred)
	return args.Error(0)
}

func (m *MockCredentialRepository) Delete(ctx context.Context, tenantID uuid.UUID, name string) error {
	args := m.Called(ctx, tenantID, name)
	return args.Error(0)
}

const testMasterKey = "0123456789abcdef0123456789abcdef"

func newTestService(t *testing.T, repo credential.Repository) *Service {
	t.Helper()
	v, err := vault.New(testMasterKey)
	require.NoError(t, err)
	return NewService(repo, v, nil, zap.NewNop())
}

func TestCredentialService_PutAndGet(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	t.Run("round-trips a secret through the vault", func(t *testing.T) {
		var stored *credential.Credential

		repo := new(MockCredentialRepository)
		repo.On("FindByTenantAndName", ctx, tenantID, "stripe_api_key").
			Return(nil, shared.ErrNotFound).Once()
		repo.On("Save", ctx, mock.AnythingOfType("*credential.Credential")).
			Run(func(args mock.Arguments) {
				stored = args.Get(1).(*credential.Credential)
			}).Return(nil)

		svc := newTestService(t, repo)
		require.NoError(t, svc.Put(ctx, tenantID, "stripe_api_key", "sk_live_123"))

		require.NotNil(t, stored)
		assert.NotContains(t, stored.Envelope, "sk_live_123")

		repo.On("FindByTenantAndName", ctx, tenantID, "stripe_api_key").Return(stored, nil)

		secret, err := svc.Get(ctx, tenantID, "stripe_api_key")
		require.NoError(t, err)
		assert.Equal(t, "sk_live_123", secret)
	})

	t.Run("put replaces an existing envelope", func(t *testing.T) {
		existing, err := credential.New(tenantID, "smtp_password", "stale-envelope")
		require.NoError(t, err)

		repo := new(MockCredentialRepository)
		repo.On("FindByTenantAndName", ctx, tenantID, "smtp_password").Return(existing, nil)
		repo.On("Save", ctx, existing).Return(nil)

		svc := newTestService(t, repo)
		require.NoError(t, svc.Put(ctx, tenantID, "smtp_password", "hunter2"))

		assert.NotEqual(t, "stale-envelope", existing.Envelope)
		repo.AssertExpectations(t)
	})

	t.Run("rejects an empty secret", func(t *testing.T) {
		svc := newTestService(t, new(MockCredentialRepository))
		err := svc.Put(ctx, tenantID, "empty", "")
		assert.Error(t, err)
	})

	t.Run("missing credential", func(t *testing.T) {
		repo := new(MockCredentialRepository)
		repo.On("FindByTenantAndName", ctx, tenantID, "ghost").Return(nil, shared.ErrNotFound)

		svc := newTestService(t, repo)
		_, err := svc.Get(ctx, tenantID, "ghost")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("envelope sealed under another key fails closed", func(t *testing.T) {
		otherVault, err := vault.New("ffffffffffffffffffffffffffffffff")
		require.NoError(t, err)
		foreign, err := otherVault.Seal("secret")
		require.NoError(t, err)

		cred, err := credential.New(tenantID, "rotated", foreign)
		require.NoError(t, err)

		repo := new(MockCredentialRepository)
		repo.On("FindByTenantAndName", ctx, tenantID, "rotated").Return(cred, nil)

		svc := newTestService(t, repo)
		_, err = svc.Get(ctx, tenantID, "rotated")
		assert.ErrorIs(t, err, vault.ErrDecryptionFailed)
	})
}

func TestCredentialService_ListAndDelete(t *testing.T) {
	ctx := context.Background()
	tenantID := uuid.New()

	repo := new(MockCredentialRepository)
	repo.On("ListNames", ctx, tenantID).Return([]string{"a", "b"}, nil)
	repo.On("Delete", ctx, tenantID, "a").Return(nil)
	repo.On("Delete", ctx, tenantID, "ghost").Return(shared.ErrNotFound)

	svc := newTestService(t, repo)

	names, err := svc.List(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, []string{"a", "b"}, names)

	assert.NoError(t, svc.Delete(ctx, tenantID, "a"))
	assert.ErrorIs(t, svc.Delete(ctx, tenantID, "ghost"), shared.ErrNotFound)
}
