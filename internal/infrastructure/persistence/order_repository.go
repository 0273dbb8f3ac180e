package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tienda/backend/internal/domain/commerce"
	"github.com/tienda/backend/internal/domain/shared"
	"github.com/tienda/backend/internal/infrastructure/persistence/tenant"
)

// GormOrderRepository implements OrderRepository using GORM
type GormOrderRepository struct {
	db *gorm.DB
}

// NewGormOrderRepository creates a new GormOrderRepository
func NewGormOrderRepository(db *gorm.DB) *GormOrderRepository {
	return &GormOrderRepository{db: db}
}

func (r *GormOrderRepository) scoped(ctx context.Context) (*gorm.DB, error) {
	tenantID, ok := tenant.FromContext(ctx)
	if !ok {
		return nil, tenant.ErrTenantRequired
	}
	return r.db.WithContext(ctx).Where("tenant_id = ?", tenantID), nil
}

// FindByID finds an order by its ID within the tenant scope
func (r *GormOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*commerce.Order, error) {
	query, err := r.scoped(ctx)
	if err != nil {
		return nil, err
	}
	var order commerce.Order
	if err := query.First(&order, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &order, nil
}

// FindAll finds all orders in the tenant scope matching the filter
func (r *GormOrderRepository) FindAll(ctx context.Context, filter shared.Filter) ([]commerce.Order, error) {
	query, err := r.scoped(ctx)
	if err != nil {
		return nil, err
	}
	query = query.Model(&commerce.Order{})

	if filter.Search != "" {
		query = query.Where("number LIKE ?", "%"+filter.Search+"%")
	}

	sortField := ValidateSortField(filter.OrderBy, OrderSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(sortField + " " + sortOrder)

	query = applyPagination(query, filter)

	var orders []commerce.Order
	if err := query.Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}

// Create inserts a new order after checking it belongs to the scoped tenant
func (r *GormOrderRepository) Create(ctx context.Context, order *commerce.Order) error {
	tenantID, ok := tenant.FromContext(ctx)
	if !ok {
		return tenant.ErrTenantRequired
	}
	if order.TenantID != tenantID {
		return tenant.ErrScopeMismatch
	}
	return r.db.WithContext(ctx).Create(order).Error
}

// Save updates an existing order
func (r *GormOrderRepository) Save(ctx context.Context, order *commerce.Order) error {
	tenantID, ok := tenant.FromContext(ctx)
	if !ok {
		return tenant.ErrTenantRequired
	}
	if order.TenantID != tenantID {
		return tenant.ErrScopeMismatch
	}
	return r.db.WithContext(ctx).Save(order).Error
}

// Count counts every order row the tenant owns. Cancelled orders still
// hold a quota slot.
func (r *GormOrderRepository) Count(ctx context.Context) (int64, error) {
	query, err := r.scoped(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := query.Model(&commerce.Order{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
