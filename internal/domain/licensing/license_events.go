package licensing

import (
	"github.com/google/uuid"
	"github.com/tienda/backend/internal/domain/shared"
)

// Aggregate type constant
const AggregateTypeLicense = "License"

// Event type constants
const (
	EventTypeLicenseGenerated     = "LicenseGenerated"
	EventTypeLicenseActivated     = "LicenseActivated"
	EventTypeLicenseStatusChanged = "LicenseStatusChanged"
)

// LicenseGeneratedEvent is published when an administrator mints a license
type LicenseGeneratedEvent struct {
	shared.BaseDomainEvent
	Serial string `json:"serial"`
	Plan   Plan   `json:"plan"`
}

// NewLicenseGeneratedEvent creates a new LicenseGeneratedEvent
func NewLicenseGeneratedEvent(license *License) *LicenseGeneratedEvent {
	return &LicenseGeneratedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLicenseGenerated, AggregateTypeLicense, license.ID, uuid.Nil),
		Serial:          license.Serial,
		Plan:            license.Plan,
	}
}

// LicenseActivatedEvent is published when a license is bound to a tenant
type LicenseActivatedEvent struct {
	shared.BaseDomainEvent
	Serial string `json:"serial"`
	Plan   Plan   `json:"plan"`
}

// NewLicenseActivatedEvent creates a new LicenseActivatedEvent
func NewLicenseActivatedEvent(license *License, tenantID uuid.UUID) *LicenseActivatedEvent {
	return &LicenseActivatedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLicenseActivated, AggregateTypeLicense, license.ID, tenantID),
		Serial:          license.Serial,
		Plan:            license.Plan,
	}
}

// LicenseStatusChangedEvent is published on suspend, resume and revoke
type LicenseStatusChangedEvent struct {
	shared.BaseDomainEvent
	Serial    string `json:"serial"`
	OldStatus Status `json:"old_status"`
	NewStatus Status `json:"new_status"`
}

// NewLicenseStatusChangedEvent creates a new LicenseStatusChangedEvent
func NewLicenseStatusChangedEvent(license *License, oldStatus, newStatus Status) *LicenseStatusChangedEvent {
	tenantID := uuid.Nil
	if license.TenantID != nil {
		tenantID = *license.TenantID
	}
	return &LicenseStatusChangedEvent{
		BaseDomainEvent: shared.NewBaseDomainEvent(EventTypeLicenseStatusChanged, AggregateTypeLicense, license.ID, tenantID),
		Serial:          license.Serial,
		OldStatus:       oldStatus,
		NewStatus:       newStatus,
	}
}
