package identity

import (
	"time"

	"github.com/google/uuid"

	"github.com/tienda/backend/internal/domain/identity"
	"github.com/tienda/backend/internal/domain/shared"
)

// CreateTenantInput contains input for provisioning a tenant
type CreateTenantInput struct {
	Name         string
	Domain       string
	ContactEmail string
}

// UpdateTenantInput contains input for updating a tenant
type UpdateTenantInput struct {
	ID           uuid.UUID
	Name         *string
	ContactEmail *string
}

// TenantDTO represents tenant data transfer object
type TenantDTO struct {
	ID           uuid.UUID  `json:"id"`
	Name         string     `json:"name"`
	Domain       string     `json:"domain"`
	Status       string     `json:"status"`
	Plan         string     `json:"plan"`
	ContactEmail string     `json:"contact_email,omitempty"`
	DeletedAt    *time.Time `json:"deleted_at,omitempty"`
	CreatedAt    time.Time  `json:"created_at"`
	UpdatedAt    time.Time  `json:"updated_at"`
}

// ToTenantDTO converts a domain tenant to its DTO
func ToTenantDTO(t *identity.Tenant) TenantDTO {
	return TenantDTO{
		ID:           t.ID,
		Name:         t.Name,
		Domain:       t.Domain,
		Status:       string(t.Status),
		Plan:         t.Plan.String(),
		ContactEmail: t.ContactEmail,
		DeletedAt:    t.DeletedAt,
		CreatedAt:    t.CreatedAt,
		UpdatedAt:    t.UpdatedAt,
	}
}

// TenantFilter represents filter for querying tenants
type TenantFilter struct {
	Page     int
	PageSize int
	SortBy   string
	SortDir  string
	Keyword  string
}

// ToSharedFilter converts TenantFilter to shared.Filter
func (f TenantFilter) ToSharedFilter() shared.Filter {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	if f.SortBy != "" {
		filter.OrderBy = f.SortBy
	}
	if f.SortDir != "" {
		filter.OrderDir = f.SortDir
	}
	filter.Search = f.Keyword
	return filter
}
