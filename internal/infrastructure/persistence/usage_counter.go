package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tienda/backend/internal/domain/commerce"
	"github.com/tienda/backend/internal/domain/licensing"
	"github.com/tienda/backend/internal/domain/shared"
)

// GormUsageCounter implements licensing.UsageCounter by counting the
// tenant's rows in the quota-limited tables. Usage is always derived from
// live row counts, never from a stored counter that could drift.
type GormUsageCounter struct {
	db *gorm.DB
}

// NewGormUsageCounter creates a new GormUsageCounter
func NewGormUsageCounter(db *gorm.DB) *GormUsageCounter {
	return &GormUsageCounter{db: db}
}

// CountResources counts the tenant's rows for the given resource kind.
// Archived products and cancelled orders still count; only deletion
// frees a slot.
func (c *GormUsageCounter) CountResources(ctx context.Context, tenantID uuid.UUID, kind licensing.ResourceKind) (int64, error) {
	var model interface{}
	switch kind {
	case licensing.ResourceProduct:
		model = &commerce.Product{}
	case licensing.ResourceOrder:
		model = &commerce.Order{}
	default:
		return 0, shared.NewDomainError("INVALID_RESOURCE_KIND", "Unknown resource kind")
	}

	var count int64
	if err := c.db.WithContext(ctx).Model(model).
		Where("tenant_id = ?", tenantID).
		Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
