package licensing

import (
	"time"

	"github.com/google/uuid"
	"github.com/tienda/backend/internal/domain/shared"
)

// Status represents the lifecycle state of a license
type Status string

const (
	StatusGenerated Status = "generated" // Minted by an administrator, not yet bound
	StatusActivated Status = "activated" // Bound to exactly one tenant
	StatusSuspended Status = "suspended" // Temporarily unusable, reversible
	StatusRevoked   Status = "revoked"   // Permanently unusable, terminal
)

// DurationPolicy determines how a license's expiration is computed at
// generation time
type DurationPolicy string

const (
	DurationLifetime  DurationPolicy = "lifetime"
	DurationMonthly   DurationPolicy = "monthly"
	DurationQuarterly DurationPolicy = "quarterly"
	DurationYearly    DurationPolicy = "yearly"
)

// IsValid returns true if the duration policy is known
func (d DurationPolicy) IsValid() bool {
	switch d {
	case DurationLifetime, DurationMonthly, DurationQuarterly, DurationYearly:
		return true
	}
	return false
}

// ExpirationFrom computes the expiration for a license generated at the
// given time. Lifetime licenses never expire (nil).
func (d DurationPolicy) ExpirationFrom(now time.Time) *time.Time {
	var exp time.Time
	switch d {
	case DurationMonthly:
		exp = now.AddDate(0, 1, 0)
	case DurationQuarterly:
		exp = now.AddDate(0, 3, 0)
	case DurationYearly:
		exp = now.AddDate(1, 0, 0)
	default:
		return nil
	}
	return &exp
}

// License represents a grant of capability to a tenant. It is the aggregate
// root for license operations.
type License struct {
	shared.BaseAggregateRoot
	Serial      string     `gorm:"type:varchar(20);not null;uniqueIndex"`
	Plan        Plan       `gorm:"type:varchar(20);not null"`
	Status      Status     `gorm:"type:varchar(20);not null;default:'generated'"`
	TenantID    *uuid.UUID `gorm:"type:uuid;index"` // nil until activation
	MaxProducts *int64     // nil = unbounded
	MaxOrders   *int64     // nil = unbounded
	ExpiresAt   *time.Time `gorm:"index"` // nil = perpetual
	ActivatedAt *time.Time
}

// TableName returns the table name for GORM
func (License) TableName() string {
	return "licenses"
}

// NewLicense mints a license with a fresh serial, status generated, and
// quota ceilings resolved from the plan table
func NewLicense(plan Plan, policy DurationPolicy) (*License, error) {
	if !plan.IsValid() {
		return nil, shared.NewDomainError("INVALID_PLAN", "Invalid license plan")
	}
	if !policy.IsValid() {
		return nil, shared.NewDomainError("INVALID_DURATION_POLICY", "Invalid duration policy")
	}

	serial, err := NewSerial()
	if err != nil {
		return nil, err
	}

	now := time.Now()
	limits := LimitsFor(plan)

	license := &License{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Serial:            serial,
		Plan:              plan,
		Status:            StatusGenerated,
		MaxProducts:       limits.MaxProducts,
		MaxOrders:         limits.MaxOrders,
		ExpiresAt:         policy.ExpirationFrom(now),
	}

	license.AddDomainEvent(NewLicenseGeneratedEvent(license))

	return license, nil
}

// IsExpired returns true if the license is past its expiration.
// Perpetual licenses never expire.
func (l *License) IsExpired(now time.Time) bool {
	if l.ExpiresAt == nil {
		return false
	}
	return now.After(*l.ExpiresAt)
}

// IsUsable returns true if the license currently grants capability:
// activated, not suspended or revoked, and not expired. Expired licenses
// are unusable regardless of stored status.
func (l *License) IsUsable(now time.Time) bool {
	return l.Status == StatusActivated && !l.IsExpired(now)
}

// CanActivateFor reports whether the license may be bound to the given
// tenant. It returns nil when activation is permitted, including the
// idempotent case where the license is already bound to that same tenant.
func (l *License) CanActivateFor(tenantID uuid.UUID, now time.Time) error {
	if l.IsExpired(now) {
		return ErrLicenseExpired
	}
	switch l.Status {
	case StatusRevoked:
		return ErrLicenseRevoked
	case StatusSuspended:
		return ErrLicenseSuspended
	case StatusActivated:
		if l.TenantID != nil && *l.TenantID == tenantID {
			return nil
		}
		return ErrAlreadyActivated
	}
	return nil
}

// Activate binds the license to a tenant and stamps the activation time.
// The persistence layer is responsible for serializing concurrent
// activations per serial; this method only enforces state rules.
func (l *License) Activate(tenantID uuid.UUID, now time.Time) error {
	if tenantID == uuid.Nil {
		return shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if err := l.CanActivateFor(tenantID, now); err != nil {
		return err
	}
	if l.Status == StatusActivated {
		// Idempotent re-activation by the same tenant
		return nil
	}

	l.Status = StatusActivated
	l.TenantID = &tenantID
	l.ActivatedAt = &now
	l.UpdatedAt = now
	l.IncrementVersion()

	l.AddDomainEvent(NewLicenseActivatedEvent(l, tenantID))

	return nil
}

// Suspend makes the license temporarily unusable. Reversible via Resume.
func (l *License) Suspend() error {
	if l.Status == StatusRevoked {
		return ErrLicenseRevoked
	}
	if l.Status != StatusActivated {
		return ErrNotActivated
	}

	l.Status = StatusSuspended
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	l.AddDomainEvent(NewLicenseStatusChangedEvent(l, StatusActivated, StatusSuspended))

	return nil
}

// Resume lifts a suspension
func (l *License) Resume() error {
	if l.Status != StatusSuspended {
		return shared.NewDomainError("NOT_SUSPENDED", "License is not suspended")
	}

	l.Status = StatusActivated
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	l.AddDomainEvent(NewLicenseStatusChangedEvent(l, StatusSuspended, StatusActivated))

	return nil
}

// SoftRevoke unbinds the tenant and returns the license to the generated
// state so the serial can be reassigned
func (l *License) SoftRevoke() error {
	if l.Status == StatusRevoked {
		return ErrLicenseRevoked
	}

	old := l.Status
	l.Status = StatusGenerated
	l.TenantID = nil
	l.ActivatedAt = nil
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	l.AddDomainEvent(NewLicenseStatusChangedEvent(l, old, StatusGenerated))

	return nil
}

// Revoke permanently disables the license and unbinds its tenant.
// This is terminal; a revoked license can never be reused.
func (l *License) Revoke() {
	old := l.Status
	l.Status = StatusRevoked
	l.TenantID = nil
	l.UpdatedAt = time.Now()
	l.IncrementVersion()

	l.AddDomainEvent(NewLicenseStatusChangedEvent(l, old, StatusRevoked))
}

// CeilingFor returns the quota ceiling for a resource kind.
// Nil means unbounded.
func (l *License) CeilingFor(kind ResourceKind) *int64 {
	switch kind {
	case ResourceProduct:
		return l.MaxProducts
	case ResourceOrder:
		return l.MaxOrders
	}
	return nil
}

// ResourceKind identifies a quota-limited resource
type ResourceKind string

const (
	ResourceProduct ResourceKind = "product"
	ResourceOrder   ResourceKind = "order"
)

// IsValid returns true if the resource kind is known
func (k ResourceKind) IsValid() bool {
	return k == ResourceProduct || k == ResourceOrder
}
