package audit

import (
	"time"

	"github.com/google/uuid"
	"github.com/tienda/backend/internal/domain/shared"
)

// ActionKind identifies a privileged action recorded in the audit trail
type ActionKind string

const (
	ActionImpersonationIssued = ActionKind("impersonation.grant_issued")
	ActionLicenseGenerated    = ActionKind("license.generated")
	ActionLicenseRevoked      = ActionKind("license.revoked")
	ActionLicenseSuspended    = ActionKind("license.suspended")
	ActionTenantPurged        = ActionKind("tenant.purged")
	ActionCredentialWritten   = ActionKind("credential.written")
)

// Entry is an immutable record of a privileged action. Entries are
// append-only; nothing in the system updates or deletes them.
type Entry struct {
	ID         uuid.UUID         `gorm:"type:uuid;primaryKey"`
	ActorID    uuid.UUID         `gorm:"type:uuid;not null;index"`
	ActorRole  string            `gorm:"type:varchar(20);not null"`
	Action     ActionKind        `gorm:"type:varchar(64);not null;index"`
	TargetID   uuid.UUID         `gorm:"type:uuid;index"` // Tenant or license being acted on
	TargetKind string            `gorm:"type:varchar(32)"`
	Details    map[string]string `gorm:"serializer:json"`
	OccurredAt time.Time         `gorm:"not null;index"`
}

// TableName returns the table name for GORM
func (Entry) TableName() string {
	return "audit_entries"
}

// NewEntry creates an audit entry stamped with the current time
func NewEntry(actorID uuid.UUID, actorRole string, action ActionKind, targetID uuid.UUID, targetKind string, details map[string]string) (*Entry, error) {
	if actorID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_ACTOR", "Actor ID cannot be empty")
	}
	if action == "" {
		return nil, shared.NewDomainError("INVALID_ACTION", "Action kind cannot be empty")
	}
	return &Entry{
		ID:         uuid.New(),
		ActorID:    actorID,
		ActorRole:  actorRole,
		Action:     action,
		TargetID:   targetID,
		TargetKind: targetKind,
		Details:    details,
		OccurredAt: time.Now(),
	}, nil
}
