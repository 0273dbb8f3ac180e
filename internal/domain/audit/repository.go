package audit

import (
	"context"

	"github.com/google/uuid"
	"github.com/tienda/backend/internal/domain/shared"
)

// Repository defines the append-only interface for audit persistence.
// There is deliberately no update or delete.
type Repository interface {
	// Append writes one audit entry
	Append(ctx context.Context, entry *Entry) error

	// FindByTarget lists entries for a target (tenant, license), newest first
	FindByTarget(ctx context.Context, targetID uuid.UUID, filter shared.Filter) ([]Entry, error)

	// FindByActor lists entries recorded for an actor, newest first
	FindByActor(ctx context.Context, actorID uuid.UUID, filter shared.Filter) ([]Entry, error)
}
