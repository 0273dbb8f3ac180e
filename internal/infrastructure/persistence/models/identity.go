package models

import (
	"time"

	"github.com/tienda/backend/internal/domain/identity"
	"github.com/tienda/backend/internal/domain/licensing"
)

// TenantModel is the persistence model for the Tenant domain entity.
type TenantModel struct {
	AggregateModel
	Name         string                `gorm:"type:varchar(200);not null"`
	Domain       string                `gorm:"type:varchar(63);not null;index"`
	Status       identity.TenantStatus `gorm:"type:varchar(20);not null;default:'pending'"`
	Plan         licensing.Plan        `gorm:"type:varchar(20);not null;default:'free'"`
	ContactEmail string                `gorm:"type:varchar(200)"`
	DeletedAt    *time.Time            `gorm:"index"`
}

// TableName returns the table name for GORM
func (TenantModel) TableName() string {
	return "tenants"
}

// ToDomain converts the persistence model to a domain Tenant entity
func (m *TenantModel) ToDomain() *identity.Tenant {
	tenant := &identity.Tenant{
		Name:         m.Name,
		Domain:       m.Domain,
		Status:       m.Status,
		Plan:         m.Plan,
		ContactEmail: m.ContactEmail,
		DeletedAt:    m.DeletedAt,
	}
	m.PopulateAggregateRoot(&tenant.BaseAggregateRoot)
	return tenant
}

// FromDomain populates the persistence model from a domain Tenant entity
func (m *TenantModel) FromDomain(t *identity.Tenant) {
	m.FromDomainAggregateRoot(t.BaseAggregateRoot)
	m.Name = t.Name
	m.Domain = t.Domain
	m.Status = t.Status
	m.Plan = t.Plan
	m.ContactEmail = t.ContactEmail
	m.DeletedAt = t.DeletedAt
}

// TenantModelFromDomain creates a new persistence model from a domain Tenant entity
func TenantModelFromDomain(t *identity.Tenant) *TenantModel {
	m := &TenantModel{}
	m.FromDomain(t)
	return m
}
