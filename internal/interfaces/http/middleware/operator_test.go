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

	"github.com/tienda/backend/internal/infrastructure/auth"
)

const operatorTestSecret = "operator-middleware-secret-32-bytes!"

func setupOperatorEngine(t *testing.T, tokens *auth.OperatorTokenService) *gin.Engine {
	t.Helper()

	engine := gin.New()
	engine.Use(RequestID())
	engine.Use(OperatorAuth(tokens))
	engine.GET("/api/v1/admin/licenses", func(c *gin.Context) {
		actorID, role, ok := GetOperatorActor(c)
		require.True(t, ok)
		c.JSON(http.StatusOK, gin.H{"actor_id": actorID.String(), "role": role})
	})
	engine.GET("/api/v1/license", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	return engine
}

func doOperatorRequest(engine *gin.Engine, path, token string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if token != "" {
		req.Header.Set(AuthHeaderKey, BearerPrefix+token)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, req)
	return w
}

func TestOperatorAuth(t *testing.T) {
	tokens := auth.NewOperatorTokenService(operatorTestSecret, "tienda-test", time.Hour)
	engine := setupOperatorEngine(t, tokens)

	t.Run("valid token reaches the admin surface", func(t *testing.T) {
		actorID := uuid.New()
		token, err := tokens.Issue(actorID, "mothership")
		require.NoError(t, err)

		w := doOperatorRequest(engine, "/api/v1/admin/licenses", token.Token, nil)
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), actorID.String())
		assert.Contains(t, w.Body.String(), `"role":"mothership"`)
	})

	t.Run("missing token is rejected", func(t *testing.T) {
		w := doOperatorRequest(engine, "/api/v1/admin/licenses", "", nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Operator token required")
	})

	t.Run("actor headers alone do not authenticate", func(t *testing.T) {
		w := doOperatorRequest(engine, "/api/v1/admin/licenses", "", map[string]string{
			"X-Actor-ID":   uuid.New().String(),
			"X-Actor-Role": "mothership",
		})
		assert.Equal(t, http.StatusUnauthorized, w.Code)
	})

	t.Run("token signed with another secret is rejected", func(t *testing.T) {
		forger := auth.NewOperatorTokenService("some-other-secret-32-bytes-long!!", "tienda-test", time.Hour)
		token, err := forger.Issue(uuid.New(), "mothership")
		require.NoError(t, err)

		w := doOperatorRequest(engine, "/api/v1/admin/licenses", token.Token, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "Invalid operator token")
	})

	t.Run("expired token is rejected with its own code", func(t *testing.T) {
		issuedAt := time.Now().Add(-2 * time.Hour)
		issuer := auth.NewOperatorTokenService(operatorTestSecret, "tienda-test", time.Hour).
			WithClock(func() time.Time { return issuedAt })
		token, err := issuer.Issue(uuid.New(), "mothership")
		require.NoError(t, err)

		w := doOperatorRequest(engine, "/api/v1/admin/licenses", token.Token, nil)
		assert.Equal(t, http.StatusUnauthorized, w.Code)
		assert.Contains(t, w.Body.String(), "OPERATOR_TOKEN_EXPIRED")
	})

	t.Run("paths outside the guard pass without a token", func(t *testing.T) {
		w := doOperatorRequest(engine, "/api/v1/license", "", nil)
		assert.Equal(t, http.StatusOK, w.Code)
	})
}

func TestGetOperatorActor_Unset(t *testing.T) {
	c, _ := gin.CreateTestContext(httptest.NewRecorder())
	_, _, ok := GetOperatorActor(c)
	assert.False(t, ok)
}
