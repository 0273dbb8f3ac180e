package commerce

import (
	"testing"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewProduct(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates active product with normalized sku", func(t *testing.T) {
		p, err := NewProduct(tenantID, " widget-01 ", "Widget", decimal.NewFromInt(19))
		require.NoError(t, err)

		assert.Equal(t, "WIDGET-01", p.SKU)
		assert.Equal(t, ProductStatusActive, p.Status)
		assert.Equal(t, tenantID, p.TenantID)
		assert.True(t, p.IsActive())
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		_, err := NewProduct(uuid.Nil, "SKU", "Widget", decimal.Zero)
		assert.Error(t, err)

		_, err = NewProduct(tenantID, "", "Widget", decimal.Zero)
		assert.Error(t, err)

		_, err = NewProduct(tenantID, "SKU", "", decimal.Zero)
		assert.Error(t, err)

		_, err = NewProduct(tenantID, "SKU", "Widget", decimal.NewFromInt(-1))
		assert.Error(t, err)
	})
}

func TestProduct_Archive(t *testing.T) {
	p, err := NewProduct(uuid.New(), "SKU-1", "Widget", decimal.Zero)
	require.NoError(t, err)

	require.NoError(t, p.Archive())
	assert.Equal(t, ProductStatusArchived, p.Status)
	assert.False(t, p.IsActive())

	assert.Error(t, p.Archive())
}

func TestProduct_SetPrice(t *testing.T) {
	p, err := NewProduct(uuid.New(), "SKU-1", "Widget", decimal.Zero)
	require.NoError(t, err)

	require.NoError(t, p.SetPrice(decimal.NewFromFloat(9.99)))
	assert.True(t, p.Price.Equal(decimal.NewFromFloat(9.99)))

	assert.Error(t, p.SetPrice(decimal.NewFromInt(-5)))
}

func TestNewOrder(t *testing.T) {
	tenantID := uuid.New()

	t.Run("creates pending order", func(t *testing.T) {
		o, err := NewOrder(tenantID, NewOrderNumber(42), decimal.NewFromInt(100))
		require.NoError(t, err)

		assert.Equal(t, "ORD-00000042", o.Number)
		assert.Equal(t, OrderStatusPending, o.Status)
		assert.Equal(t, tenantID, o.TenantID)
	})

	t.Run("rejects invalid input", func(t *testing.T) {
		_, err := NewOrder(uuid.Nil, "ORD-1", decimal.Zero)
		assert.Error(t, err)

		_, err = NewOrder(tenantID, "", decimal.Zero)
		assert.Error(t, err)

		_, err = NewOrder(tenantID, "ORD-1", decimal.NewFromInt(-1))
		assert.Error(t, err)
	})
}

func TestOrder_Lifecycle(t *testing.T) {
	t.Run("pending order can be paid once", func(t *testing.T) {
		o, err := NewOrder(uuid.New(), "ORD-1", decimal.NewFromInt(50))
		require.NoError(t, err)

		require.NoError(t, o.MarkPaid())
		assert.Equal(t, OrderStatusPaid, o.Status)
		assert.Error(t, o.MarkPaid())
		assert.Error(t, o.Cancel())
	})

	t.Run("pending order can be cancelled", func(t *testing.T) {
		o, err := NewOrder(uuid.New(), "ORD-2", decimal.NewFromInt(50))
		require.NoError(t, err)

		require.NoError(t, o.Cancel())
		assert.Equal(t, OrderStatusCancelled, o.Status)
		assert.Error(t, o.MarkPaid())
	})
}
