package cache

import (
	"context"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tienda/backend/internal/domain/identity"
)

func TestInMemoryResolutionCache(t *testing.T) {
	ctx := context.Background()

	t.Run("miss returns nil without error", func(t *testing.T) {
		cache := NewInMemoryResolutionCache()
		defer cache.Close()

		res, err := cache.Get(ctx, "nobody")
		require.NoError(t, err)
		assert.Nil(t, res)
	})

	t.Run("set then get", func(t *testing.T) {
		cache := NewInMemoryResolutionCache()
		defer cache.Close()

		stored := &TenantResolution{TenantID: uuid.New(), Status: identity.TenantStatusActive}
		require.NoError(t, cache.Set(ctx, "acme", stored, 0))

		res, err := cache.Get(ctx, "acme")
		require.NoError(t, err)
		require.NotNil(t, res)
		assert.Equal(t, stored.TenantID, res.TenantID)
		assert.Equal(t, identity.TenantStatusActive, res.Status)
	})

	t.Run("lookup is case-insensitive", func(t *testing.T) {
		cache := NewInMemoryResolutionCache()
		defer cache.Close()

		stored := &TenantResolution{TenantID: uuid.New(), Status: identity.TenantStatusActive}
		require.NoError(t, cache.Set(ctx, "Acme", stored, 0))

		res, err := cache.Get(ctx, "ACME")
		require.NoError(t, err)
		require.NotNil(t, res)
		assert.Equal(t, stored.TenantID, res.TenantID)
	})

	t.Run("expired entries behave like misses", func(t *testing.T) {
		cache := NewInMemoryResolutionCache()
		defer cache.Close()

		stored := &TenantResolution{TenantID: uuid.New(), Status: identity.TenantStatusActive}
		require.NoError(t, cache.Set(ctx, "fleeting", stored, time.Millisecond))

		time.Sleep(5 * time.Millisecond)

		res, err := cache.Get(ctx, "fleeting")
		require.NoError(t, err)
		assert.Nil(t, res)
	})

	t.Run("invalidate drops the entry", func(t *testing.T) {
		cache := NewInMemoryResolutionCache()
		defer cache.Close()

		stored := &TenantResolution{TenantID: uuid.New(), Status: identity.TenantStatusDeleted}
		require.NoError(t, cache.Set(ctx, "bravo", stored, 0))
		require.NoError(t, cache.Invalidate(ctx, "bravo"))

		res, err := cache.Get(ctx, "bravo")
		require.NoError(t, err)
		assert.Nil(t, res)
	})

	t.Run("tracks hits and misses", func(t *testing.T) {
		cache := NewInMemoryResolutionCache()
		defer cache.Close()

		stored := &TenantResolution{TenantID: uuid.New(), Status: identity.TenantStatusActive}
		require.NoError(t, cache.Set(ctx, "charlie", stored, 0))

		_, _ = cache.Get(ctx, "charlie")
		_, _ = cache.Get(ctx, "missing")

		hits, misses := cache.Stats()
		assert.Equal(t, int64(1), hits)
		assert.Equal(t, int64(1), misses)
	})

	t.Run("close is idempotent", func(t *testing.T) {
		cache := NewInMemoryResolutionCache()
		require.NoError(t, cache.Close())
		require.NoError(t, cache.Close())
	})
}
