package persistence

import (
	"context"
	"errors"
	"strings"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tienda/backend/internal/domain/commerce"
	"github.com/tienda/backend/internal/domain/shared"
	"github.com/tienda/backend/internal/infrastructure/persistence/tenant"
)

// GormProductRepository implements ProductRepository using GORM.
// Every method resolves the tenant from the context scope and filters
// explicitly; the tenant callback is the backstop, not the mechanism.
type GormProductRepository struct {
	db *gorm.DB
}

// NewGormProductRepository creates a new GormProductRepository
func NewGormProductRepository(db *gorm.DB) *GormProductRepository {
	return &GormProductRepository{db: db}
}

func (r *GormProductRepository) scoped(ctx context.Context) (*gorm.DB, uuid.UUID, error) {
	tenantID, ok := tenant.FromContext(ctx)
	if !ok {
		return nil, uuid.Nil, tenant.ErrTenantRequired
	}
	return r.db.WithContext(ctx).Where("tenant_id = ?", tenantID), tenantID, nil
}

// FindByID finds a product by its ID within the tenant scope
func (r *GormProductRepository) FindByID(ctx context.Context, id uuid.UUID) (*commerce.Product, error) {
	query, _, err := r.scoped(ctx)
	if err != nil {
		return nil, err
	}
	var product commerce.Product
	if err := query.First(&product, "id = ?", id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindBySKU finds a product by its SKU within the tenant scope
func (r *GormProductRepository) FindBySKU(ctx context.Context, sku string) (*commerce.Product, error) {
	query, _, err := r.scoped(ctx)
	if err != nil {
		return nil, err
	}
	var product commerce.Product
	if err := query.Where("sku = ?", strings.ToUpper(strings.TrimSpace(sku))).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return &product, nil
}

// FindAll finds all products in the tenant scope matching the filter
func (r *GormProductRepository) FindAll(ctx context.Context, filter shared.Filter) ([]commerce.Product, error) {
	query, _, err := r.scoped(ctx)
	if err != nil {
		return nil, err
	}
	query = query.Model(&commerce.Product{})

	if filter.Search != "" {
		keyword := "%" + filter.Search + "%"
		query = query.Where("sku LIKE ? OR name LIKE ?", keyword, keyword)
	}

	sortField := ValidateSortField(filter.OrderBy, ProductSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(sortField + " " + sortOrder)

	query = applyPagination(query, filter)

	var products []commerce.Product
	if err := query.Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

// Create inserts a new product after checking it belongs to the scoped tenant
func (r *GormProductRepository) Create(ctx context.Context, product *commerce.Product) error {
	tenantID, ok := tenant.FromContext(ctx)
	if !ok {
		return tenant.ErrTenantRequired
	}
	if product.TenantID != tenantID {
		return tenant.ErrScopeMismatch
	}
	return r.db.WithContext(ctx).Create(product).Error
}

// Save updates an existing product
func (r *GormProductRepository) Save(ctx context.Context, product *commerce.Product) error {
	tenantID, ok := tenant.FromContext(ctx)
	if !ok {
		return tenant.ErrTenantRequired
	}
	if product.TenantID != tenantID {
		return tenant.ErrScopeMismatch
	}
	return r.db.WithContext(ctx).Save(product).Error
}

// Delete removes a product within the tenant scope
func (r *GormProductRepository) Delete(ctx context.Context, id uuid.UUID) error {
	query, _, err := r.scoped(ctx)
	if err != nil {
		return err
	}
	result := query.Delete(&commerce.Product{}, "id = ?", id)
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}

// Count counts every product row the tenant owns. Archived products
// still hold a quota slot.
func (r *GormProductRepository) Count(ctx context.Context) (int64, error) {
	query, _, err := r.scoped(ctx)
	if err != nil {
		return 0, err
	}
	var count int64
	if err := query.Model(&commerce.Product{}).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
