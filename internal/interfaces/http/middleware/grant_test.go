package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/tienda/backend/internal/application/support"
	"github.com/tienda/backend/internal/domain/identity"
	"github.com/tienda/backend/internal/infrastructure/auth"
	"github.com/tienda/backend/internal/infrastructure/persistence"
	"github.com/tienda/backend/internal/infrastructure/persistence/models"
)

const grantTestSecret = "grant-middleware-secret-at-least-32b"

type grantFixture struct {
	repo          *persistence.GormTenantRepository
	impersonation *support.ImpersonationService
	engine        *gin.Engine
	tenant        *identity.Tenant
	operatorID    uuid.UUID
}

func setupGrantFixture(t *testing.T, now func() time.Time) *grantFixture {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err)
	require.NoError(t, db.AutoMigrate(&models.TenantModel{}, &models.AuditEntryModel{}))

	repo := persistence.NewGormTenantRepository(db)
	auditRepo := persistence.NewGormAuditRepository(db)

	opts := []auth.GrantServiceOption{}
	if now != nil {
		opts = append(opts, auth.WithClock(now))
	}
	grants := auth.NewGrantService(grantTestSecret, "tienda", opts...)
	impersonation := support.NewImpersonationService(
		grants,
		auth.NewInMemoryGrantRevocations(),
		repo,
		auditRepo,
		zap.NewNop(),
	)

	tenant, err := identity.NewTenant("Acme", "acme")
	require.NoError(t, err)
	require.NoError(t, tenant.Activate())
	require.NoError(t, repo.Save(testCtx(), tenant))

	engine := gin.New()
	engine.Use(RequestID())
	engine.GET("/support", func(c *gin.Context) {
		// Simulate a resolved tenant ahead of grant verification
		c.Set(TenantIDKey, tenant.ID.String())
		GrantAuth(impersonation)(c)
		if c.IsAborted() {
			return
		}
		claims, _ := GetGrantClaims(c)
		c.JSON(http.StatusOK, gin.H{"impersonator": claims.ImpersonatorID})
	})

	return &grantFixture{
		repo:          repo,
		impersonation: impersonation,
		engine:        engine,
		tenant:        tenant,
		operatorID:    uuid.New(),
	}
}

func (f *grantFixture) issueGrant(t *testing.T, tenantID uuid.UUID) *auth.Grant {
	t.Helper()
	grant, err := f.impersonation.Issue(testCtx(), support.IssueInput{
		TenantID:  tenantID,
		ActorID:   f.operatorID,
		ActorRole: identity.RoleMothership,
	})
	require.NoError(t, err)
	return grant
}

func TestGrantAuthMiddleware(t *testing.T) {
	t.Run("accepts a valid grant for the resolved tenant", func(t *testing.T) {
		f := setupGrantFixture(t, nil)
		grant := f.issueGrant(t, f.tenant.ID)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/support", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+grant.Token)
		f.engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), f.operatorID.String())
	})

	t.Run("rejects requests without a grant", func(t *testing.T) {
		f := setupGrantFixture(t, nil)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/support", nil)
		f.engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("rejects an expired grant", func(t *testing.T) {
		issued := time.Now()
		clock := issued
		f := setupGrantFixture(t, func() time.Time { return clock })
		grant := f.issueGrant(t, f.tenant.ID)

		// Six minutes later the five minute grant is dead
		clock = issued.Add(6 * time.Minute)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/support", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+grant.Token)
		f.engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "GRANT_EXPIRED")
	})

	t.Run("still honors a grant four minutes in", func(t *testing.T) {
		issued := time.Now()
		clock := issued
		f := setupGrantFixture(t, func() time.Time { return clock })
		grant := f.issueGrant(t, f.tenant.ID)

		clock = issued.Add(4 * time.Minute)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/support", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+grant.Token)
		f.engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusOK, w.Code)
	})

	t.Run("rejects a revoked grant", func(t *testing.T) {
		f := setupGrantFixture(t, nil)
		grant := f.issueGrant(t, f.tenant.ID)
		require.NoError(t, f.impersonation.Revoke(testCtx(), grant.Token))

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/support", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+grant.Token)
		f.engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "GRANT_REVOKED")
	})

	t.Run("rejects a grant issued for another tenant", func(t *testing.T) {
		f := setupGrantFixture(t, nil)

		other, err := identity.NewTenant("Rival", "rival")
		require.NoError(t, err)
		require.NoError(t, other.Activate())
		require.NoError(t, f.repo.Save(testCtx(), other))

		grant := f.issueGrant(t, other.ID)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/support", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+grant.Token)
		f.engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusForbidden, w.Code)
	})

	t.Run("rejects a grant signed with another secret", func(t *testing.T) {
		f := setupGrantFixture(t, nil)

		foreign := auth.NewGrantService("another-secret-entirely-32-bytes!!", "tienda")
		grant, err := foreign.Issue(f.tenant.ID, f.operatorID)
		require.NoError(t, err)

		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, "/support", nil)
		req.Header.Set(AuthHeaderKey, BearerPrefix+grant.Token)
		f.engine.ServeHTTP(w, req)

		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})
}
