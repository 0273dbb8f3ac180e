package persistence

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tienda/backend/internal/domain/credential"
	"github.com/tienda/backend/internal/domain/shared"
	"github.com/tienda/backend/internal/infrastructure/persistence/models"
)

// GormCredentialRepository implements credential.Repository using GORM.
// Rows hold sealed envelopes only; this layer never sees plaintext.
type GormCredentialRepository struct {
	db *gorm.DB
}

// NewGormCredentialRepository creates a new GormCredentialRepository
func NewGormCredentialRepository(db *gorm.DB) *GormCredentialRepository {
	return &GormCredentialRepository{db: db}
}

// FindByTenantAndName finds the credential for (tenant, name)
func (r *GormCredentialRepository) FindByTenantAndName(ctx context.Context, tenantID uuid.UUID, name string) (*credential.Credential, error) {
	var model models.CredentialModel
	if err := r.db.WithContext(ctx).
		Where("tenant_id = ? AND name = ?", tenantID, name).
		First(&model).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, shared.ErrNotFound
		}
		return nil, err
	}
	return model.ToDomain(), nil
}

// ListNames lists the credential names stored for a tenant
func (r *GormCredentialRepository) ListNames(ctx context.Context, tenantID uuid.UUID) ([]string, error) {
	var names []string
	if err := r.db.WithContext(ctx).Model(&models.CredentialModel{}).
		Where("tenant_id = ?", tenantID).
		Order("name ASC").
		Pluck("name", &names).Error; err != nil {
		return nil, err
	}
	return names, nil
}

// Save creates or updates a credential. Upserts on the (tenant, name)
// pair so resealing an existing name replaces its envelope in place.
func (r *GormCredentialRepository) Save(ctx context.Context, cred *credential.Credential) error {
	model := models.CredentialModelFromDomain(cred)
	result := r.db.WithContext(ctx).Model(&models.CredentialModel{}).
		Where("tenant_id = ? AND name = ?", cred.TenantID, cred.Name).
		Updates(map[string]interface{}{
			"envelope":   cred.Envelope,
			"updated_at": cred.UpdatedAt,
		})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return r.db.WithContext(ctx).Create(model).Error
	}
	return nil
}

// Delete removes a credential
func (r *GormCredentialRepository) Delete(ctx context.Context, tenantID uuid.UUID, name string) error {
	result := r.db.WithContext(ctx).
		Where("tenant_id = ? AND name = ?", tenantID, name).
		Delete(&models.CredentialModel{})
	if result.Error != nil {
		return result.Error
	}
	if result.RowsAffected == 0 {
		return shared.ErrNotFound
	}
	return nil
}
