package licensing

import (
	"time"

	"github.com/google/uuid"

	"github.com/tienda/backend/internal/domain/licensing"
	"github.com/tienda/backend/internal/domain/shared"
)

// GenerateLicenseInput contains input for minting a license
type GenerateLicenseInput struct {
	Plan      string
	Duration  string
	ActorID   uuid.UUID
	ActorRole string
}

// ActivateLicenseInput contains input for binding a license to a tenant
type ActivateLicenseInput struct {
	Serial   string
	TenantID uuid.UUID
}

// RevokeLicenseInput contains input for suspend/revoke operations
type RevokeLicenseInput struct {
	Serial    string
	ActorID   uuid.UUID
	ActorRole string
}

// LicenseDTO represents license data transfer object
type LicenseDTO struct {
	ID          uuid.UUID  `json:"id"`
	Serial      string     `json:"serial"`
	Plan        string     `json:"plan"`
	Status      string     `json:"status"`
	TenantID    *uuid.UUID `json:"tenant_id,omitempty"`
	MaxProducts *int64     `json:"max_products,omitempty"`
	MaxOrders   *int64     `json:"max_orders,omitempty"`
	ExpiresAt   *time.Time `json:"expires_at,omitempty"`
	ActivatedAt *time.Time `json:"activated_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
}

// ToLicenseDTO converts a domain license to its DTO
func ToLicenseDTO(l *licensing.License) LicenseDTO {
	return LicenseDTO{
		ID:          l.ID,
		Serial:      l.Serial,
		Plan:        l.Plan.String(),
		Status:      string(l.Status),
		TenantID:    l.TenantID,
		MaxProducts: l.MaxProducts,
		MaxOrders:   l.MaxOrders,
		ExpiresAt:   l.ExpiresAt,
		ActivatedAt: l.ActivatedAt,
		CreatedAt:   l.CreatedAt,
	}
}

// LicenseFilter represents filter for querying licenses
type LicenseFilter struct {
	Page     int
	PageSize int
	SortBy   string
	SortDir  string
	Serial   string
}

// ToSharedFilter converts LicenseFilter to shared.Filter
func (f LicenseFilter) ToSharedFilter() shared.Filter {
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
	filter.Search = f.Serial
	return filter
}
