package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/tienda/backend/internal/application/support"
	"github.com/tienda/backend/internal/infrastructure/auth"
	"github.com/tienda/backend/internal/infrastructure/logger"
	"github.com/tienda/backend/internal/interfaces/http/dto"
)

// Grant context keys
const (
	GrantClaimsKey    = "grant_claims"
	ImpersonatorIDKey = "impersonator_id"
	AuthHeaderKey     = "Authorization"
	BearerPrefix      = "Bearer "
)

// GrantAuth verifies an impersonation grant on each request. The grant's
// tenant must match the tenant the request resolved to; a grant for one
// tenant opens no doors anywhere else.
func GrantAuth(impersonation *support.ImpersonationService) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			abortGrant(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, "Impersonation grant required")
			return
		}

		claims, err := impersonation.Verify(c.Request.Context(), token)
		if err != nil {
			code, message := grantErrorResponse(err)
			abortGrant(c, http.StatusUnauthorized, code, message)
			return
		}

		if tenantID := GetTenantID(c); tenantID != "" && claims.TenantID != tenantID {
			abortGrant(c, http.StatusForbidden, dto.ErrCodeForbidden, "Grant does not cover this tenant")
			return
		}

		c.Set(GrantClaimsKey, claims)
		c.Set(ImpersonatorIDKey, claims.ImpersonatorID)

		ctx := c.Request.Context()
		log := logger.FromContext(ctx)
		ctx, _ = logger.WithImpersonatorID(ctx, log, claims.ImpersonatorID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

// OptionalGrantAuth verifies a grant when one is presented but lets
// unauthenticated requests through. Handlers decide what anonymous
// callers may do.
func OptionalGrantAuth(impersonation *support.ImpersonationService, log *zap.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		token := extractBearerToken(c)
		if token == "" {
			c.Next()
			return
		}

		claims, err := impersonation.Verify(c.Request.Context(), token)
		if err != nil {
			if log != nil {
				log.Debug("Ignoring invalid impersonation grant", zap.Error(err))
			}
			c.Next()
			return
		}

		c.Set(GrantClaimsKey, claims)
		c.Set(ImpersonatorIDKey, claims.ImpersonatorID)
		c.Next()
	}
}

func extractBearerToken(c *gin.Context) string {
	header := c.GetHeader(AuthHeaderKey)
	if header == "" || !strings.HasPrefix(header, BearerPrefix) {
		return ""
	}
	return strings.TrimPrefix(header, BearerPrefix)
}

func grantErrorResponse(err error) (code, message string) {
	switch {
	case errors.Is(err, auth.ErrExpiredGrant):
		return "GRANT_EXPIRED", "Impersonation grant has expired"
	case errors.Is(err, auth.ErrGrantRevoked):
		return "GRANT_REVOKED", "Impersonation grant has been revoked"
	default:
		return dto.ErrCodeUnauthorized, "Invalid impersonation grant"
	}
}

func abortGrant(c *gin.Context, status int, code, message string) {
	c.AbortWithStatusJSON(status, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetGrantClaims retrieves verified grant claims from gin.Context
func GetGrantClaims(c *gin.Context) (*auth.GrantClaims, bool) {
	value, exists := c.Get(GrantClaimsKey)
	if !exists {
		return nil, false
	}
	claims, ok := value.(*auth.GrantClaims)
	return claims, ok
}
