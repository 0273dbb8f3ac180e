package credential

import (
	"context"

	"github.com/google/uuid"
)

// Repository defines the interface for credential persistence
type Repository interface {
	// FindByTenantAndName finds the credential for (tenant, name)
	FindByTenantAndName(ctx context.Context, tenantID uuid.UUID, name string) (*Credential, error)

	// ListNames lists the credential names stored for a tenant.
	// Envelopes are not returned; callers fetch them individually.
	ListNames(ctx context.Context, tenantID uuid.UUID) ([]string, error)

	// Save creates or updates a credential
	Save(ctx context.Context, cred *Credential) error

	// Delete removes a credential
	Delete(ctx context.Context, tenantID uuid.UUID, name string) error
}
