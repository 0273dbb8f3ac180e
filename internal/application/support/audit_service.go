package support

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tienda/backend/internal/domain/audit"
	"github.com/tienda/backend/internal/domain/identity"
	"github.com/tienda/backend/internal/domain/shared"
)

// AuditService exposes the read side of the audit trail to the
// mothership console. Entries are append-only; this service never
// writes.
type AuditService struct {
	auditRepo audit.Repository
	logger    *zap.Logger
}

// NewAuditService creates a new audit query service
func NewAuditService(auditRepo audit.Repository, logger *zap.Logger) *AuditService {
	return &AuditService{
		auditRepo: auditRepo,
		logger:    logger,
	}
}

// AuditEntryDTO is the read model for one audit entry
type AuditEntryDTO struct {
	ID         uuid.UUID         `json:"id"`
	ActorID    uuid.UUID         `json:"actor_id"`
	ActorRole  string            `json:"actor_role"`
	Action     string            `json:"action"`
	TargetID   uuid.UUID         `json:"target_id"`
	TargetKind string            `json:"target_kind"`
	Details    map[string]string `json:"details,omitempty"`
	OccurredAt time.Time         `json:"occurred_at"`
}

// ListByTarget returns entries recorded against a target, newest first
func (s *AuditService) ListByTarget(ctx context.Context, actorRole identity.ActorRole, targetID uuid.UUID, filter shared.Filter) ([]AuditEntryDTO, error) {
	if !actorRole.CanReadAudit() {
		return nil, shared.ErrForbidden
	}
	entries, err := s.auditRepo.FindByTarget(ctx, targetID, filter)
	if err != nil {
		return nil, err
	}
	return toAuditDTOs(entries), nil
}

// ListByActor returns entries recorded for an actor, newest first
func (s *AuditService) ListByActor(ctx context.Context, actorRole identity.ActorRole, actorID uuid.UUID, filter shared.Filter) ([]AuditEntryDTO, error) {
	if !actorRole.CanReadAudit() {
		return nil, shared.ErrForbidden
	}
	entries, err := s.auditRepo.FindByActor(ctx, actorID, filter)
	if err != nil {
		return nil, err
	}
	return toAuditDTOs(entries), nil
}

func toAuditDTOs(entries []audit.Entry) []AuditEntryDTO {
	dtos := make([]AuditEntryDTO, len(entries))
	for i, e := range entries {
		dtos[i] = AuditEntryDTO{
			ID:         e.ID,
			ActorID:    e.ActorID,
			ActorRole:  e.ActorRole,
			Action:     string(e.Action),
			TargetID:   e.TargetID,
			TargetKind: e.TargetKind,
			Details:    e.Details,
			OccurredAt: e.OccurredAt,
		}
	}
	return dtos
}
