package credential

import (
	"time"

	"github.com/google/uuid"
	"github.com/tienda/backend/internal/domain/shared"
)

// Credential is an encrypted per-tenant secret (payment API key, SMTP
// password) keyed by (tenant id, name). Only the sealed envelope is ever
// stored; plaintext exists in memory for the duration of a request.
type Credential struct {
	shared.BaseEntity
	TenantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_credential_tenant_name"`
	Name     string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_credential_tenant_name"`
	Envelope string    `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (Credential) TableName() string {
	return "tenant_credentials"
}

// New creates a credential holding an already-sealed envelope
func New(tenantID uuid.UUID, name, envelope string) (*Credential, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if name == "" || len(name) > 100 {
		return nil, shared.NewDomainError("INVALID_CREDENTIAL_NAME", "Credential name must be 1-100 characters")
	}
	if envelope == "" {
		return nil, shared.NewDomainError("INVALID_ENVELOPE", "Envelope cannot be empty")
	}
	return &Credential{
		BaseEntity: shared.NewBaseEntity(),
		TenantID:   tenantID,
		Name:       name,
		Envelope:   envelope,
	}, nil
}

// Reseal replaces the stored envelope
func (c *Credential) Reseal(envelope string) error {
	if envelope == "" {
		return shared.NewDomainError("INVALID_ENVELOPE", "Envelope cannot be empty")
	}
	c.Envelope = envelope
	c.UpdatedAt = time.Now()
	return nil
}
