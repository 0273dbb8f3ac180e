package support

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tienda/backend/internal/domain/audit"
	"github.com/tienda/backend/internal/domain/identity"
	"github.com/tienda/backend/internal/domain/shared"
	"github.com/tienda/backend/internal/infrastructure/auth"
)

// ImpersonationService issues short-lived grants that let a mothership
// operator act inside a tenant's shop. Every issuance is written to the
// audit trail; an audit store outage is logged at error severity but
// never blocks support work.
type ImpersonationService struct {
	grants      *auth.GrantService
	revocations auth.GrantRevocations
	tenantRepo  identity.TenantRepository
	auditRepo   audit.Repository
	logger      *zap.Logger
}

// NewImpersonationService creates a new impersonation service
func NewImpersonationService(
	grants *auth.GrantService,
	revocations auth.GrantRevocations,
	tenantRepo identity.TenantRepository,
	auditRepo audit.Repository,
	logger *zap.Logger,
) *ImpersonationService {
	return &ImpersonationService{
		grants:      grants,
		revocations: revocations,
		tenantRepo:  tenantRepo,
		auditRepo:   auditRepo,
		logger:      logger,
	}
}

// IssueInput contains input for issuing an impersonation grant
type IssueInput struct {
	TenantID  uuid.UUID
	ActorID   uuid.UUID
	ActorRole identity.ActorRole
}

// Issue issues an impersonation grant for the target tenant. Only the
// mothership role may impersonate; unknown or deleted targets are not
// distinguished from each other.
func (s *ImpersonationService) Issue(ctx context.Context, input IssueInput) (*auth.Grant, error) {
	if !input.ActorRole.CanImpersonate() {
		return nil, shared.ErrForbidden
	}

	target, err := s.tenantRepo.FindByID(ctx, input.TenantID)
	if err != nil {
		return nil, err
	}
	if target.IsDeleted() {
		return nil, shared.ErrNotFound
	}

	grant, err := s.grants.Issue(input.TenantID, input.ActorID)
	if err != nil {
		return nil, err
	}

	s.appendAudit(ctx, input, grant)

	s.logger.Info("impersonation grant issued",
		zap.String("tenant_id", input.TenantID.String()),
		zap.String("impersonator_id", input.ActorID.String()),
		zap.Time("expires_at", grant.ExpiresAt),
	)

	return grant, nil
}

// Verify validates a grant token and checks it has not been revoked
func (s *ImpersonationService) Verify(ctx context.Context, token string) (*auth.GrantClaims, error) {
	claims, err := s.grants.Verify(token)
	if err != nil {
		return nil, err
	}

	if s.revocations != nil && claims.ID != "" {
		revoked, err := s.revocations.IsRevoked(ctx, claims.ID)
		if err != nil {
			return nil, err
		}
		if revoked {
			return nil, auth.ErrGrantRevoked
		}
	}

	return claims, nil
}

// Revoke invalidates a grant before its natural expiry. The revocation
// only needs to outlive the grant itself.
func (s *ImpersonationService) Revoke(ctx context.Context, token string) error {
	claims, err := s.grants.Verify(token)
	if err != nil {
		return err
	}
	if claims.ID == "" {
		return auth.ErrInvalidClaims
	}

	ttl := claims.RemainingTTL(time.Now())
	if ttl <= 0 {
		return nil
	}
	return s.revocations.Revoke(ctx, claims.ID, ttl)
}

func (s *ImpersonationService) appendAudit(ctx context.Context, input IssueInput, grant *auth.Grant) {
	entry, err := audit.NewEntry(
		input.ActorID,
		string(input.ActorRole),
		audit.ActionImpersonationIssued,
		input.TenantID,
		"tenant",
		map[string]string{
			"grant_id":   grant.GrantID,
			"expires_at": grant.ExpiresAt.UTC().Format(time.RFC3339),
		},
	)
	if err != nil {
		s.logger.Error("failed to build audit entry", zap.Error(err))
		return
	}

	if err := s.auditRepo.Append(ctx, entry); err != nil {
		s.logger.Error("failed to append impersonation audit entry",
			zap.String("tenant_id", input.TenantID.String()),
			zap.Error(err),
		)
	}
}
