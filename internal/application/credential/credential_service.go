package credential

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tienda/backend/internal/domain/audit"
	"github.com/tienda/backend/internal/domain/credential"
	"github.com/tienda/backend/internal/domain/shared"
	"github.com/tienda/backend/internal/infrastructure/vault"
)

// Service stores and retrieves per-tenant secrets through the vault.
// Plaintext lives only in memory for the duration of a call; the
// repository ever sees sealed envelopes, and so do the logs.
type Service struct {
	repo      credential.Repository
	vault     *vault.Vault
	auditRepo audit.Repository
	logger    *zap.Logger
}

// NewService creates a new credential service
func NewService(
	repo credential.Repository,
	v *vault.Vault,
	auditRepo audit.Repository,
	logger *zap.Logger,
) *Service {
	return &Service{
		repo:      repo,
		vault:     v,
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// Put seals a secret and stores it under (tenant, name), replacing any
// previous value for that name
func (s *Service) Put(ctx context.Context, tenantID uuid.UUID, name, secret string) error {
	if secret == "" {
		return shared.NewDomainError("INVALID_SECRET", "Secret cannot be empty")
	}

	envelope, err := s.vault.Seal(secret)
	if err != nil {
		return err
	}

	existing, err := s.repo.FindByTenantAndName(ctx, tenantID, name)
	switch {
	case err == nil:
		if err := existing.Reseal(envelope); err != nil {
			return err
		}
		if err := s.repo.Save(ctx, existing); err != nil {
			return err
		}
	case errors.Is(err, shared.ErrNotFound):
		cred, err := credential.New(tenantID, name, envelope)
		if err != nil {
			return err
		}
		if err := s.repo.Save(ctx, cred); err != nil {
			return err
		}
	default:
		return err
	}

	s.appendAudit(ctx, tenantID, name)

	s.logger.Info("credential stored",
		zap.String("tenant_id", tenantID.String()),
		zap.String("name", name),
	)
	return nil
}

// Get unseals and returns the secret stored under (tenant, name)
func (s *Service) Get(ctx context.Context, tenantID uuid.UUID, name string) (string, error) {
	cred, err := s.repo.FindByTenantAndName(ctx, tenantID, name)
	if err != nil {
		return "", err
	}
	return s.vault.Unseal(cred.Envelope)
}

// List returns the credential names stored for a tenant
func (s *Service) List(ctx context.Context, tenantID uuid.UUID) ([]string, error) {
	return s.repo.ListNames(ctx, tenantID)
}

// Delete removes the credential stored under (tenant, name)
func (s *Service) Delete(ctx context.Context, tenantID uuid.UUID, name string) error {
	if err := s.repo.Delete(ctx, tenantID, name); err != nil {
		return err
	}
	s.logger.Info("credential deleted",
		zap.String("tenant_id", tenantID.String()),
		zap.String("name", name),
	)
	return nil
}

func (s *Service) appendAudit(ctx context.Context, tenantID uuid.UUID, name string) {
	if s.auditRepo == nil {
		return
	}

	entry, err := audit.NewEntry(tenantID, "tenant", audit.ActionCredentialWritten, tenantID, "credential", map[string]string{
		"name": name,
	})
	if err != nil {
		s.logger.Error("failed to build audit entry", zap.Error(err))
		return
	}

	if err := s.auditRepo.Append(ctx, entry); err != nil {
		s.logger.Error("failed to append audit entry", zap.Error(err))
	}
}
