package models

import (
	"github.com/google/uuid"
	"github.com/tienda/backend/internal/domain/credential"
)

// CredentialModel is the persistence model for the Credential domain entity.
// Only the sealed envelope is stored, never plaintext.
type CredentialModel struct {
	BaseModel
	TenantID uuid.UUID `gorm:"type:uuid;not null;uniqueIndex:idx_credential_tenant_name"`
	Name     string    `gorm:"type:varchar(100);not null;uniqueIndex:idx_credential_tenant_name"`
	Envelope string    `gorm:"type:text;not null"`
}

// TableName returns the table name for GORM
func (CredentialModel) TableName() string {
	return "tenant_credentials"
}

// ToDomain converts the persistence model to a domain Credential entity
func (m *CredentialModel) ToDomain() *credential.Credential {
	return &credential.Credential{
		BaseEntity: m.BaseModel.ToDomain(),
		TenantID:   m.TenantID,
		Name:       m.Name,
		Envelope:   m.Envelope,
	}
}

// FromDomain populates the persistence model from a domain Credential entity
func (m *CredentialModel) FromDomain(c *credential.Credential) {
	m.FromDomainBaseEntity(c.BaseEntity)
	m.TenantID = c.TenantID
	m.Name = c.Name
	m.Envelope = c.Envelope
}

// CredentialModelFromDomain creates a new persistence model from a domain Credential entity
func CredentialModelFromDomain(c *credential.Credential) *CredentialModel {
	m := &CredentialModel{}
	m.FromDomain(c)
	return m
}
