package auth

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
)

// GrantRevocations invalidates impersonation grants before they expire,
// for example when a support session ends early or a grant leaks.
type GrantRevocations interface {
	// Revoke marks a grant ID as revoked. ttl should be the grant's
	// remaining lifetime; after that the entry is garbage.
	Revoke(ctx context.Context, grantID string, ttl time.Duration) error

	// IsRevoked reports whether a grant ID has been revoked
	IsRevoked(ctx context.Context, grantID string) (bool, error)
}

// RedisGrantRevocations implements GrantRevocations using Redis so
// revocation is visible to every instance immediately.
type RedisGrantRevocations struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisGrantRevocations creates a revocation list on an existing Redis client
func NewRedisGrantRevocations(client *redis.Client) *RedisGrantRevocations {
	return &RedisGrantRevocations{
		client:    client,
		keyPrefix: "grant:revoked:",
	}
}

func (r *RedisGrantRevocations) key(grantID string) string {
	return r.keyPrefix + grantID
}

// Revoke marks a grant ID as revoked
func (r *RedisGrantRevocations) Revoke(ctx context.Context, grantID string, ttl time.Duration) error {
	if err := r.client.Set(ctx, r.key(grantID), "1", ttl).Err(); err != nil {
		return fmt.Errorf("failed to revoke grant: %w", err)
	}
	return nil
}

// IsRevoked reports whether a grant ID has been revoked
func (r *RedisGrantRevocations) IsRevoked(ctx context.Context, grantID string) (bool, error) {
	exists, err := r.client.Exists(ctx, r.key(grantID)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check grant revocation: %w", err)
	}
	return exists > 0, nil
}

var _ GrantRevocations = (*RedisGrantRevocations)(nil)

// InMemoryGrantRevocations provides an in-memory implementation for
// tests and single instance deployments.
type InMemoryGrantRevocations struct {
	mu      sync.RWMutex
	revoked map[string]time.Time // grant ID -> entry expiration
}

// NewInMemoryGrantRevocations creates an empty in-memory revocation list
func NewInMemoryGrantRevocations() *InMemoryGrantRevocations {
	return &InMemoryGrantRevocations{
		revoked: make(map[string]time.Time),
	}
}

// Revoke marks a grant ID as revoked
func (r *InMemoryGrantRevocations) Revoke(_ context.Context, grantID string, ttl time.Duration) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.revoked[grantID] = time.Now().Add(ttl)
	return nil
}

// IsRevoked reports whether a grant ID has been revoked
func (r *InMemoryGrantRevocations) IsRevoked(_ context.Context, grantID string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	expiration, exists := r.revoked[grantID]
	if !exists {
		return false, nil
	}
	if time.Now().After(expiration) {
		delete(r.revoked, grantID)
		return false, nil
	}
	return true, nil
}

var _ GrantRevocations = (*InMemoryGrantRevocations)(nil)
