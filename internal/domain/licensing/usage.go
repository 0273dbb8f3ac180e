package licensing

import (
	"context"

	"github.com/google/uuid"
)

// UsageCounter reports a tenant's current consumption of quota-limited
// resources. Counts are derived from the resource tables, never stored,
// so they cannot drift.
type UsageCounter interface {
	// CountResources counts the tenant's stored resources of a kind
	CountResources(ctx context.Context, tenantID uuid.UUID, kind ResourceKind) (int64, error)
}

// Usage pairs a resource count with the ceiling in force for it.
// A nil ceiling means unbounded.
type Usage struct {
	Kind    ResourceKind `json:"kind"`
	Current int64        `json:"current"`
	Ceiling *int64       `json:"ceiling,omitempty"`
}

// Remaining returns how many more resources fit under the ceiling.
// Unbounded usage returns nil.
func (u Usage) Remaining() *int64 {
	if u.Ceiling == nil {
		return nil
	}
	left := *u.Ceiling - u.Current
	if left < 0 {
		left = 0
	}
	return &left
}

// AtCeiling reports whether the count has reached the ceiling
func (u Usage) AtCeiling() bool {
	return u.Ceiling != nil && u.Current >= *u.Ceiling
}
