package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/tienda/backend/internal/domain/audit"
)

// AuditEntryModel is the persistence model for audit entries.
// The table is append-only: nothing updates or deletes rows.
type AuditEntryModel struct {
	ID         uuid.UUID         `gorm:"type:uuid;primaryKey"`
	ActorID    uuid.UUID         `gorm:"type:uuid;not null;index"`
	ActorRole  string            `gorm:"type:varchar(20);not null"`
	Action     audit.ActionKind  `gorm:"type:varchar(64);not null;index"`
	TargetID   uuid.UUID         `gorm:"type:uuid;index"`
	TargetKind string            `gorm:"type:varchar(32)"`
	Details    map[string]string `gorm:"serializer:json"`
	OccurredAt time.Time         `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (AuditEntryModel) TableName() string {
	return "audit_entries"
}

// ToDomain converts the persistence model to a domain audit Entry
func (m *AuditEntryModel) ToDomain() audit.Entry {
	return audit.Entry{
		ID:         m.ID,
		ActorID:    m.ActorID,
		ActorRole:  m.ActorRole,
		Action:     m.Action,
		TargetID:   m.TargetID,
		TargetKind: m.TargetKind,
		Details:    m.Details,
		OccurredAt: m.OccurredAt,
	}
}

// AuditEntryModelFromDomain creates a persistence model from a domain audit Entry
func AuditEntryModelFromDomain(e *audit.Entry) *AuditEntryModel {
	return &AuditEntryModel{
		ID:         e.ID,
		ActorID:    e.ActorID,
		ActorRole:  e.ActorRole,
		Action:     e.Action,
		TargetID:   e.TargetID,
		TargetKind: e.TargetKind,
		Details:    e.Details,
		OccurredAt: e.OccurredAt,
	}
}
