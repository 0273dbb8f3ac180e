package persistence

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tienda/backend/internal/domain/commerce"
	"github.com/tienda/backend/internal/domain/licensing"
	"github.com/tienda/backend/internal/domain/shared"
	"github.com/tienda/backend/internal/infrastructure/persistence/tenant"
)

func setupCommerceTestDB(t *testing.T) *gorm.DB {
	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)

	err = db.AutoMigrate(&commerce.Product{}, &commerce.Order{})
	require.NoError(t, err)

	return db
}

func scopedCtx(t *testing.T, tenantID uuid.UUID) context.Context {
	t.Helper()
	ctx, err := tenant.Scope(context.Background(), tenantID)
	require.NoError(t, err)
	return ctx
}

func storeProduct(t *testing.T, repo *GormProductRepository, ctx context.Context, tenantID uuid.UUID, sku string) *commerce.Product {
	t.Helper()
	product, err := commerce.NewProduct(tenantID, sku, "Product "+sku, decimal.NewFromInt(10))
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctx, product))
	return product
}

func TestProductRepository_TenantScoping(t *testing.T) {
	db := setupCommerceTestDB(t)
	repo := NewGormProductRepository(db)

	tenantA := uuid.New()
	tenantB := uuid.New()
	ctxA := scopedCtx(t, tenantA)
	ctxB := scopedCtx(t, tenantB)

	productA := storeProduct(t, repo, ctxA, tenantA, "SKU-A1")
	storeProduct(t, repo, ctxB, tenantB, "SKU-B1")

	t.Run("finds own products", func(t *testing.T) {
		found, err := repo.FindByID(ctxA, productA.ID)
		require.NoError(t, err)
		assert.Equal(t, "SKU-A1", found.SKU)
	})

	t.Run("cannot see another tenant's product", func(t *testing.T) {
		_, err := repo.FindByID(ctxB, productA.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})

	t.Run("cannot delete another tenant's product", func(t *testing.T) {
		err := repo.Delete(ctxB, productA.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)

		_, err = repo.FindByID(ctxA, productA.ID)
		assert.NoError(t, err)
	})

	t.Run("list shows only own products", func(t *testing.T) {
		products, err := repo.FindAll(ctxA, shared.DefaultFilter())
		require.NoError(t, err)
		require.Len(t, products, 1)
		assert.Equal(t, tenantA, products[0].TenantID)
	})

	t.Run("refuses to create across scopes", func(t *testing.T) {
		stray, err := commerce.NewProduct(tenantA, "SKU-A2", "Stray", decimal.NewFromInt(5))
		require.NoError(t, err)

		err = repo.Create(ctxB, stray)
		assert.ErrorIs(t, err, tenant.ErrScopeMismatch)
	})

	t.Run("requires a tenant scope", func(t *testing.T) {
		_, err := repo.FindAll(context.Background(), shared.DefaultFilter())
		assert.ErrorIs(t, err, tenant.ErrTenantRequired)
	})
}

func TestProductRepository_FindBySKU(t *testing.T) {
	db := setupCommerceTestDB(t)
	repo := NewGormProductRepository(db)

	tenantID := uuid.New()
	ctx := scopedCtx(t, tenantID)
	storeProduct(t, repo, ctx, tenantID, "WIDGET-1")

	found, err := repo.FindBySKU(ctx, "widget-1")
	require.NoError(t, err)
	assert.Equal(t, "WIDGET-1", found.SKU)

	_, err = repo.FindBySKU(ctx, "WIDGET-2")
	assert.ErrorIs(t, err, shared.ErrNotFound)
}

func TestOrderRepository_TenantScoping(t *testing.T) {
	db := setupCommerceTestDB(t)
	repo := NewGormOrderRepository(db)

	tenantA := uuid.New()
	tenantB := uuid.New()
	ctxA := scopedCtx(t, tenantA)
	ctxB := scopedCtx(t, tenantB)

	orderA, err := commerce.NewOrder(tenantA, commerce.NewOrderNumber(1), decimal.NewFromInt(99))
	require.NoError(t, err)
	require.NoError(t, repo.Create(ctxA, orderA))

	t.Run("finds own orders", func(t *testing.T) {
		found, err := repo.FindByID(ctxA, orderA.ID)
		require.NoError(t, err)
		assert.Equal(t, "ORD-00000001", found.Number)
	})

	t.Run("cannot see another tenant's order", func(t *testing.T) {
		_, err := repo.FindByID(ctxB, orderA.ID)
		assert.ErrorIs(t, err, shared.ErrNotFound)
	})
}

func TestUsageCounter_CountResources(t *testing.T) {
	db := setupCommerceTestDB(t)
	products := NewGormProductRepository(db)
	orders := NewGormOrderRepository(db)
	counter := NewGormUsageCounter(db)

	tenantA := uuid.New()
	tenantB := uuid.New()
	ctxA := scopedCtx(t, tenantA)
	ctxB := scopedCtx(t, tenantB)

	storeProduct(t, products, ctxA, tenantA, "CNT-1")
	archived := storeProduct(t, products, ctxA, tenantA, "CNT-2")
	storeProduct(t, products, ctxB, tenantB, "CNT-3")

	// Archived products still hold their quota slot
	require.NoError(t, archived.Archive())
	require.NoError(t, products.Save(ctxA, archived))

	order, err := commerce.NewOrder(tenantA, commerce.NewOrderNumber(7), decimal.NewFromInt(30))
	require.NoError(t, err)
	require.NoError(t, orders.Create(ctxA, order))
	require.NoError(t, order.Cancel())
	require.NoError(t, orders.Save(ctxA, order))

	ctx := context.Background()

	count, err := counter.CountResources(ctx, tenantA, licensing.ResourceProduct)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	count, err = counter.CountResources(ctx, tenantA, licensing.ResourceOrder)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	count, err = counter.CountResources(ctx, tenantB, licensing.ResourceProduct)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)

	t.Run("deleting frees the slot", func(t *testing.T) {
		require.NoError(t, products.Delete(ctxA, archived.ID))

		count, err := counter.CountResources(ctx, tenantA, licensing.ResourceProduct)
		require.NoError(t, err)
		assert.Equal(t, int64(1), count)
	})

	t.Run("unknown kind is rejected", func(t *testing.T) {
		_, err := counter.CountResources(ctx, tenantA, licensing.ResourceKind("warehouse"))
		assert.Error(t, err)
	})
}
