package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/tienda/backend/internal/domain/licensing"
)

// LicenseModel is the persistence model for the License domain entity.
type LicenseModel struct {
	AggregateModel
	Serial      string           `gorm:"type:varchar(20);not null;uniqueIndex"`
	Plan        licensing.Plan   `gorm:"type:varchar(20);not null"`
	Status      licensing.Status `gorm:"type:varchar(20);not null;default:'generated';index"`
	TenantID    *uuid.UUID       `gorm:"type:uuid;index"`
	MaxProducts *int64
	MaxOrders   *int64
	ExpiresAt   *time.Time `gorm:"index"`
	ActivatedAt *time.Time
}

// TableName returns the table name for GORM
func (LicenseModel) TableName() string {
	return "licenses"
}

// ToDomain converts the persistence model to a domain License entity
func (m *LicenseModel) ToDomain() *licensing.License {
	license := &licensing.License{
		Serial:      m.Serial,
		Plan:        m.Plan,
		Status:      m.Status,
		TenantID:    m.TenantID,
		MaxProducts: m.MaxProducts,
		MaxOrders:   m.MaxOrders,
		ExpiresAt:   m.ExpiresAt,
		ActivatedAt: m.ActivatedAt,
	}
	m.PopulateAggregateRoot(&license.BaseAggregateRoot)
	return license
}

// FromDomain populates the persistence model from a domain License entity
func (m *LicenseModel) FromDomain(l *licensing.License) {
	m.FromDomainAggregateRoot(l.BaseAggregateRoot)
	m.Serial = l.Serial
	m.Plan = l.Plan
	m.Status = l.Status
	m.TenantID = l.TenantID
	m.MaxProducts = l.MaxProducts
	m.MaxOrders = l.MaxOrders
	m.ExpiresAt = l.ExpiresAt
	m.ActivatedAt = l.ActivatedAt
}

// LicenseModelFromDomain creates a new persistence model from a domain License entity
func LicenseModelFromDomain(l *licensing.License) *LicenseModel {
	m := &LicenseModel{}
	m.FromDomain(l)
	return m
}
