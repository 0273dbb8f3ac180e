package persistence

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/postgres"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tienda/backend/internal/domain/licensing"
	"github.com/tienda/backend/internal/domain/shared"
	"github.com/tienda/backend/internal/infrastructure/persistence/models"
)

func setupLicenseTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	// One shared in-memory database for every goroutine in the test
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	err = db.AutoMigrate(&models.LicenseModel{})
	require.NoError(t, err)

	return db
}

func newStoredLicense(t *testing.T, repo *GormLicenseRepository, plan licensing.Plan) *licensing.License {
	t.Helper()
	license, err := licensing.NewLicense(plan, licensing.DurationLifetime)
	require.NoError(t, err)
	require.NoError(t, repo.Save(context.Background(), license))
	return license
}

func TestLicenseRepository_SaveAndFind(t *testing.T) {
	db := setupLicenseTestDB(t)
	repo := NewGormLicenseRepository(db)
	ctx := context.Background()

	t.Run("round-trips a generated license", func(t *testing.T) {
		license := newStoredLicense(t, repo, licensing.PlanStarter)

		found, err := repo.FindBySerial(ctx, license.Serial)
		require.NoError(t, err)
		assert.Equal(t, licensing.StatusGenerated, found.Status)
		assert.Equal(t, licensing.PlanStarter, found.Plan)
		require.NotNil(t, found.MaxProducts)
		assert.Equal(t, int64(50), *found.MaxProducts)
		require.NotNil(t, found.MaxOrders)
		assert.Equal(t, int64(100), *found.MaxOrders)
		assert.Nil(t, found.TenantID)
	})

	t.Run("pro licenses keep an unbounded order ceiling", func(t *testing.T) {
		license := newStoredLicense(t, repo, licensing.PlanPro)

		found, err := repo.FindBySerial(ctx, license.Serial)
		require.NoError(t, err)
		require.NotNil(t, found.MaxProducts)
		assert.Equal(t, int64(2000), *found.MaxProducts)
		assert.Nil(t, found.MaxOrders)
	})

	t.Run("returns not found for unknown serial", func(t *testing.T) {
		_, err := repo.FindBySerial(ctx, "TND-XXXX-XXXX-XXXX")
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestLicenseRepository_BindTenant(t *testing.T) {
	ctx := context.Background()
	now := time.Now().UTC().Truncate(time.Second)

	t.Run("binds a generated license", func(t *testing.T) {
		repo := NewGormLicenseRepository(setupLicenseTestDB(t))
		license := newStoredLicense(t, repo, licensing.PlanStarter)
		tenantID := uuid.New()

		require.NoError(t, repo.BindTenant(ctx, license.Serial, tenantID, now))

		found, err := repo.FindBySerial(ctx, license.Serial)
		require.NoError(t, err)
		assert.Equal(t, licensing.StatusActivated, found.Status)
		require.NotNil(t, found.TenantID)
		assert.Equal(t, tenantID, *found.TenantID)
		require.NotNil(t, found.ActivatedAt)
	})

	t.Run("rejects a second tenant", func(t *testing.T) {
		repo := NewGormLicenseRepository(setupLicenseTestDB(t))
		license := newStoredLicense(t, repo, licensing.PlanStarter)

		require.NoError(t, repo.BindTenant(ctx, license.Serial, uuid.New(), now))

		err := repo.BindTenant(ctx, license.Serial, uuid.New(), now)
		assert.ErrorIs(t, err, licensing.ErrAlreadyActivated)
	})

	t.Run("same tenant re-activation is idempotent", func(t *testing.T) {
		repo := NewGormLicenseRepository(setupLicenseTestDB(t))
		license := newStoredLicense(t, repo, licensing.PlanStarter)
		tenantID := uuid.New()

		require.NoError(t, repo.BindTenant(ctx, license.Serial, tenantID, now))
		assert.NoError(t, repo.BindTenant(ctx, license.Serial, tenantID, now))
	})

	t.Run("an expired license never binds", func(t *testing.T) {
		repo := NewGormLicenseRepository(setupLicenseTestDB(t))

		license, err := licensing.NewLicense(licensing.PlanStarter, licensing.DurationMonthly)
		require.NoError(t, err)
		past := now.AddDate(0, -2, 0)
		license.ExpiresAt = &past
		require.NoError(t, repo.Save(ctx, license))

		err = repo.BindTenant(ctx, license.Serial, uuid.New(), now)
		assert.ErrorIs(t, err, licensing.ErrLicenseExpired)

		found, err := repo.FindBySerial(ctx, license.Serial)
		require.NoError(t, err)
		assert.Equal(t, licensing.StatusGenerated, found.Status)
		assert.Nil(t, found.TenantID)
	})

	t.Run("unknown serial", func(t *testing.T) {
		repo := NewGormLicenseRepository(setupLicenseTestDB(t))
		err := repo.BindTenant(ctx, "TND-ZZZZ-ZZZZ-ZZZZ", uuid.New(), now)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("exactly one of many concurrent activations wins", func(t *testing.T) {
		repo := NewGormLicenseRepository(setupLicenseTestDB(t))
		license := newStoredLicense(t, repo, licensing.PlanPro)

		const attempts = 10
		tenants := make([]uuid.UUID, attempts)
		for i := range tenants {
			tenants[i] = uuid.New()
		}

		errs := make([]error, attempts)
		var wg sync.WaitGroup
		for i := 0; i < attempts; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				errs[i] = repo.BindTenant(ctx, license.Serial, tenants[i], now)
			}(i)
		}
		wg.Wait()

		winners := 0
		for i, err := range errs {
			if err == nil {
				winners++
				found, ferr := repo.FindBySerial(ctx, license.Serial)
				require.NoError(t, ferr)
				require.NotNil(t, found.TenantID)
				assert.Equal(t, tenants[i], *found.TenantID)
			} else {
				assert.ErrorIs(t, err, licensing.ErrAlreadyActivated)
			}
		}
		assert.Equal(t, 1, winners)
	})
}

// TestLicenseRepository_LockByTenant_EmitsRowLock runs the locking lookup
// against a mocked postgres connection and asserts the generated SQL takes
// the FOR UPDATE lock that serializes quota admission per tenant.
func TestLicenseRepository_LockByTenant_EmitsRowLock(t *testing.T) {
	mockDB, mock, err := sqlmock.New()
	require.NoError(t, err)
	defer mockDB.Close()

	db, err := gorm.Open(postgres.New(postgres.Config{
		Conn:       mockDB,
		DriverName: "postgres",
	}), &gorm.Config{SkipDefaultTransaction: true})
	require.NoError(t, err)

	tenantID := uuid.New()
	mock.ExpectQuery(`SELECT \* FROM "licenses" WHERE tenant_id = .+ FOR UPDATE`).
		WillReturnRows(sqlmock.NewRows([]string{"id"}))

	_, err = NewGormLicenseRepository(db).LockByTenant(context.Background(), tenantID)
	assert.ErrorIs(t, err, shared.ErrNotFound)
	assert.NoError(t, mock.ExpectationsWereMet())
}

func TestLicenseRepository_FindByTenant(t *testing.T) {
	db := setupLicenseTestDB(t)
	repo := NewGormLicenseRepository(db)
	ctx := context.Background()

	license := newStoredLicense(t, repo, licensing.PlanFree)
	tenantID := uuid.New()
	require.NoError(t, repo.BindTenant(ctx, license.Serial, tenantID, time.Now()))

	found, err := repo.FindByTenant(ctx, tenantID)
	require.NoError(t, err)
	assert.Equal(t, license.Serial, found.Serial)

	_, err = repo.FindByTenant(ctx, uuid.New())
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestLicenseRepository_FindAll(t *testing.T) {
	db := setupLicenseTestDB(t)
	repo := NewGormLicenseRepository(db)
	ctx := context.Background()

	first := newStoredLicense(t, repo, licensing.PlanTrial)
	newStoredLicense(t, repo, licensing.PlanEnterprise)

	t.Run("filters by serial fragment", func(t *testing.T) {
		filter := shared.Filter{Page: 1, PageSize: 10, Search: first.Serial[4:9]}
		licenses, err := repo.FindAll(ctx, filter)
		require.NoError(t, err)
		require.NotEmpty(t, licenses)
		assert.Equal(t, first.Serial, licenses[0].Serial)
	})

	t.Run("counts all", func(t *testing.T) {
		count, err := repo.Count(ctx, shared.Filter{})
		require.NoError(t, err)
		assert.Equal(t, int64(2), count)
	})
}
