package commerce

import (
	"context"

	"github.com/google/uuid"
	"github.com/tienda/backend/internal/domain/shared"
)

// ProductRepository defines the interface for product persistence.
// All lookups run under the caller's tenant scope.
type ProductRepository interface {
	// FindByID finds a product by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Product, error)

	// FindBySKU finds a product by its SKU within the tenant
	FindBySKU(ctx context.Context, sku string) (*Product, error)

	// FindAll finds all products matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Product, error)

	// Create inserts a new product. Use inside a quota admission
	// transaction so count and insert see the same snapshot.
	Create(ctx context.Context, product *Product) error

	// Save updates an existing product
	Save(ctx context.Context, product *Product) error

	// Delete removes a product
	Delete(ctx context.Context, id uuid.UUID) error

	// Count counts the tenant's products
	Count(ctx context.Context) (int64, error)
}

// OrderRepository defines the interface for order persistence.
// All lookups run under the caller's tenant scope.
type OrderRepository interface {
	// FindByID finds an order by its ID
	FindByID(ctx context.Context, id uuid.UUID) (*Order, error)

	// FindAll finds all orders matching the filter
	FindAll(ctx context.Context, filter shared.Filter) ([]Order, error)

	// Create inserts a new order. Use inside a quota admission
	// transaction so count and insert see the same snapshot.
	Create(ctx context.Context, order *Order) error

	// Save updates an existing order
	Save(ctx context.Context, order *Order) error

	// Count counts the tenant's orders
	Count(ctx context.Context) (int64, error)
}
