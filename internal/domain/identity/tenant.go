package identity

import (
	"strings"
	"time"

	"github.com/tienda/backend/internal/domain/licensing"
	"github.com/tienda/backend/internal/domain/shared"
)

// TenantStatus represents the status of a tenant
type TenantStatus string

const (
	TenantStatusPending   TenantStatus = "pending"   // Provisioned, not yet activated
	TenantStatusActive    TenantStatus = "active"    // Serving traffic
	TenantStatusSuspended TenantStatus = "suspended" // Suspended due to payment/violation issues
	TenantStatusDeleted   TenantStatus = "deleted"   // Soft-deleted, retained for audit
)

// Tenant represents one store in the multi-tenant platform.
// It is the aggregate root for tenant lifecycle operations.
//
// Soft-deleted tenants are retained: their status flips to deleted and
// DeletedAt is stamped, but the row stays until an administrative purge.
// The domain uniqueness invariant applies only among non-deleted tenants.
type Tenant struct {
	shared.BaseAggregateRoot
	Name         string         `gorm:"type:varchar(200);not null"`
	Domain       string         `gorm:"type:varchar(63);not null;index"` // Routable subdomain slug
	Status       TenantStatus   `gorm:"type:varchar(20);not null;default:'pending'"`
	Plan         licensing.Plan `gorm:"type:varchar(20);not null;default:'free'"`
	ContactEmail string         `gorm:"type:varchar(200)"`
	DeletedAt    *time.Time     `gorm:"index"` // Soft-delete marker
}

// TableName returns the table name for GORM
func (Tenant) TableName() string {
	return "tenants"
}

// NewTenant creates a new tenant in pending status
func NewTenant(name, domain string) (*Tenant, error) {
	if err := validateTenantName(name); err != nil {
		return nil, err
	}
	domain = NormalizeDomain(domain)
	if err := ValidateDomain(domain); err != nil {
		return nil, err
	}

	tenant := &Tenant{
		BaseAggregateRoot: shared.NewBaseAggregateRoot(),
		Name:              name,
		Domain:            domain,
		Status:            TenantStatusPending,
		Plan:              licensing.PlanFree,
	}

	tenant.AddDomainEvent(NewTenantCreatedEvent(tenant))

	return tenant, nil
}

// Rename updates the tenant's display name
func (t *Tenant) Rename(name string) error {
	if err := validateTenantName(name); err != nil {
		return err
	}

	t.Name = name
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// SetContactEmail sets the tenant's contact email
func (t *Tenant) SetContactEmail(email string) error {
	if email != "" && len(email) > 200 {
		return shared.NewDomainError("INVALID_EMAIL", "Email cannot exceed 200 characters")
	}

	t.ContactEmail = email
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// SetPlan records the plan granted by the tenant's activated license
func (t *Tenant) SetPlan(plan licensing.Plan) error {
	if !plan.IsValid() {
		return shared.NewDomainError("INVALID_PLAN", "Invalid tenant plan")
	}

	t.Plan = plan
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	return nil
}

// Activate moves the tenant into active status
func (t *Tenant) Activate() error {
	if t.IsDeleted() {
		return shared.NewDomainError("TENANT_DELETED", "Cannot activate a deleted tenant")
	}
	if t.Status == TenantStatusActive {
		return shared.NewDomainError("ALREADY_ACTIVE", "Tenant is already active")
	}

	oldStatus := t.Status
	t.Status = TenantStatusActive
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	t.AddDomainEvent(NewTenantStatusChangedEvent(t, oldStatus, TenantStatusActive))

	return nil
}

// Suspend suspends the tenant
func (t *Tenant) Suspend() error {
	if t.IsDeleted() {
		return shared.NewDomainError("TENANT_DELETED", "Cannot suspend a deleted tenant")
	}
	if t.Status == TenantStatusSuspended {
		return shared.NewDomainError("ALREADY_SUSPENDED", "Tenant is already suspended")
	}

	oldStatus := t.Status
	t.Status = TenantStatusSuspended
	t.UpdatedAt = time.Now()
	t.IncrementVersion()

	t.AddDomainEvent(NewTenantStatusChangedEvent(t, oldStatus, TenantStatusSuspended))

	return nil
}

// SoftDelete marks the tenant deleted while retaining the row.
// Hard removal happens only through an explicit administrative purge.
func (t *Tenant) SoftDelete() error {
	if t.IsDeleted() {
		return shared.NewDomainError("ALREADY_DELETED", "Tenant is already deleted")
	}

	oldStatus := t.Status
	now := time.Now()
	t.Status = TenantStatusDeleted
	t.DeletedAt = &now
	t.UpdatedAt = now
	t.IncrementVersion()

	t.AddDomainEvent(NewTenantStatusChangedEvent(t, oldStatus, TenantStatusDeleted))

	return nil
}

// IsActive returns true if the tenant is active
func (t *Tenant) IsActive() bool {
	return t.Status == TenantStatusActive
}

// IsSuspended returns true if the tenant is suspended
func (t *Tenant) IsSuspended() bool {
	return t.Status == TenantStatusSuspended
}

// IsDeleted returns true if the tenant has been soft-deleted
func (t *Tenant) IsDeleted() bool {
	return t.Status == TenantStatusDeleted || t.DeletedAt != nil
}

// NormalizeDomain lowercases and trims a domain slug
func NormalizeDomain(domain string) string {
	return strings.ToLower(strings.TrimSpace(domain))
}

// ValidateDomain checks that a domain slug is routable as a subdomain label
func ValidateDomain(domain string) error {
	if domain == "" {
		return shared.NewDomainError("INVALID_DOMAIN", "Domain cannot be empty")
	}
	if len(domain) > 63 {
		return shared.NewDomainError("INVALID_DOMAIN", "Domain cannot exceed 63 characters")
	}
	for i, r := range domain {
		isAlnum := (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9')
		if isAlnum {
			continue
		}
		if r == '-' && i != 0 && i != len(domain)-1 {
			continue
		}
		return shared.NewDomainError("INVALID_DOMAIN", "Domain can only contain lowercase letters, digits, and interior hyphens")
	}
	return nil
}

func validateTenantName(name string) error {
	if name == "" {
		return shared.NewDomainError("INVALID_NAME", "Tenant name cannot be empty")
	}
	if len(name) > 200 {
		return shared.NewDomainError("INVALID_NAME", "Tenant name cannot exceed 200 characters")
	}
	return nil
}
