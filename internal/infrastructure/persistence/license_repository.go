package persistence

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/tienda/backend/internal/domain/licensing"
	"github.com/tienda/backend/internal/domain/shared"
	"github.com/tienda/backend/internal/infrastructure/persistence/models"
)

// GormLicenseRepository implements LicenseRepository using GORM
type GormLicenseRepository struct {
	db *gorm.DB
}

// NewGormLicenseRepository creates a new GormLicenseRepository
func NewGormLicenseRepository(db *gorm.DB) *GormLicenseRepository {
	return &GormLicenseRepository{db: db}
}

// FindBySerial finds a license by its serial
func (r *GormLicenseRepository) FindBySerial(ctx context.Context, serial string) (*licensing.License, error) {
	var model models.LicenseModel
	if err := r.db.WithContext(ctx).First(&model, "serial = ?", serial).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindByTenant finds the license currently bound to the tenant, if any
func (r *GormLicenseRepository) FindByTenant(ctx context.Context, tenantID uuid.UUID) (*licensing.License, error) {
	var model models.LicenseModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ?", tenantID).
		Order("activated_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// LockByTenant is FindByTenant with a FOR UPDATE row lock held until the
// surrounding transaction ends. Concurrent admissions for the same tenant
// queue behind the lock instead of counting against the same snapshot.
// The sqlite dialector used in tests drops the locking clause; those
// databases run on a single connection and serialize writers anyway.
func (r *GormLicenseRepository) LockByTenant(ctx context.Context, tenantID uuid.UUID) (*licensing.License, error) {
	var model models.LicenseModel
	if err := r.db.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("tenant_id = ?", tenantID).
		Order("activated_at DESC").
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// FindAll finds all licenses matching the filter
func (r *GormLicenseRepository) FindAll(ctx context.Context, filter shared.Filter) ([]licensing.License, error) {
	var licenseModels []models.LicenseModel
	query := r.db.WithContext(ctx).Model(&models.LicenseModel{})

	if filter.Search != "" {
		query = query.Where("serial LIKE ?", "%"+filter.Search+"%")
	}

	sortField := ValidateSortField(filter.OrderBy, LicenseSortFields, "created_at")
	sortOrder := ValidateSortOrder(filter.OrderDir)
	query = query.Order(sortField + " " + sortOrder)

	query = applyPagination(query, filter)

	if err := query.Find(&licenseModels).Error; err != nil {
		return nil, err
	}

	licenses := make([]licensing.License, len(licenseModels))
	for i, model := range licenseModels {
		licenses[i] = *model.ToDomain()
	}
	return licenses, nil
}

// Save creates or updates a license
func (r *GormLicenseRepository) Save(ctx context.Context, license *licensing.License) error {
	model := models.LicenseModelFromDomain(license)
	return r.db.WithContext(ctx).Save(model).Error
}

// BindTenant atomically transitions the license from generated to activated
// for the given tenant. The status and expiry guards in the WHERE clause make
// the transition a compare-and-set: under concurrent activation attempts the
// database serializes the updates and the guard matches for exactly one of
// them, and a license that expired since the caller's pre-check never binds.
// Losers re-read the row to map their failure onto the right domain error,
// including the idempotent same-tenant case.
func (r *GormLicenseRepository) BindTenant(ctx context.Context, serial string, tenantID uuid.UUID, at time.Time) error {
	result := r.db.WithContext(ctx).Model(&models.LicenseModel{}).
		Where("serial = ? AND status = ? AND (expires_at IS NULL OR expires_at > ?)",
			serial, licensing.StatusGenerated, at).
		Updates(map[string]interface{}{
			"status":       licensing.StatusActivated,
			"tenant_id":    tenantID,
			"activated_at": at,
			"updated_at":   at,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 1 {
		return nil
	}

	license, err := r.FindBySerial(ctx, serial)
	if err != nil {
		return err
	}
	if err := license.CanActivateFor(tenantID, at); err != nil {
		return err
	}
	// CanActivateFor permits only the idempotent same-tenant re-activation
	// once the license has left the generated state.
	return nil
}

// Count counts licenses matching the filter
func (r *GormLicenseRepository) Count(ctx context.Context, filter shared.Filter) (int64, error) {
	var count int64
	query := r.db.WithContext(ctx).Model(&models.LicenseModel{})

	if filter.Search != "" {
		query = query.Where("serial LIKE ?", "%"+filter.Search+"%")
	}

	if err := query.Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
