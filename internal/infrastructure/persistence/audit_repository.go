package persistence

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	"github.com/tienda/backend/internal/domain/audit"
	"github.com/tienda/backend/internal/domain/shared"
	"github.com/tienda/backend/internal/infrastructure/persistence/models"
)

// GormAuditRepository implements audit.Repository using GORM.
// The audit log is a system table and append-only.
type GormAuditRepository struct {
	db *gorm.DB
}

// NewGormAuditRepository creates a new GormAuditRepository
func NewGormAuditRepository(db *gorm.DB) *GormAuditRepository {
	return &GormAuditRepository{db: db}
}

// Append writes one audit entry
func (r *GormAuditRepository) Append(ctx context.Context, entry *audit.Entry) error {
	model := models.AuditEntryModelFromDomain(entry)
	return r.db.WithContext(ctx).Create(model).Error
}

// FindByTarget lists entries for a target, newest first
func (r *GormAuditRepository) FindByTarget(ctx context.Context, targetID uuid.UUID, filter shared.Filter) ([]audit.Entry, error) {
	return r.find(ctx, "target_id = ?", targetID, filter)
}

// FindByActor lists entries recorded for an actor, newest first
func (r *GormAuditRepository) FindByActor(ctx context.Context, actorID uuid.UUID, filter shared.Filter) ([]audit.Entry, error) {
	return r.find(ctx, "actor_id = ?", actorID, filter)
}

func (r *GormAuditRepository) find(ctx context.Context, cond string, id uuid.UUID, filter shared.Filter) ([]audit.Entry, error) {
	var entryModels []models.AuditEntryModel
	query := r.db.WithContext(ctx).Model(&models.AuditEntryModel{}).
		Where(cond, id).
		Order("occurred_at DESC")

	query = applyPagination(query, filter)

	if err := query.Find(&entryModels).Error; err != nil {
		return nil, err
	}

	entries := make([]audit.Entry, len(entryModels))
	for i, model := range entryModels {
		entries[i] = model.ToDomain()
	}
	return entries, nil
}
