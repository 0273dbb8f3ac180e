package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tienda/backend/internal/infrastructure/auth"
	"github.com/tienda/backend/internal/infrastructure/logger"
	"github.com/tienda/backend/internal/interfaces/http/dto"
)

// Operator context keys
const (
	OperatorClaimsKey = "operator_claims"
	OperatorIDKey     = "operator_id"
	OperatorRoleKey   = "operator_role"
)

// OperatorAuthConfig holds configuration for the operator auth middleware
type OperatorAuthConfig struct {
	// Tokens verifies operator console tokens
	Tokens *auth.OperatorTokenService
	// GuardPathPrefixes are the path prefixes that require an operator
	// token; everything else passes through untouched
	GuardPathPrefixes []string
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultOperatorAuthConfig guards the admin surface
func DefaultOperatorAuthConfig(tokens *auth.OperatorTokenService) OperatorAuthConfig {
	return OperatorAuthConfig{
		Tokens: tokens,
		GuardPathPrefixes: []string{
			"/api/v1/admin",
		},
		Logger: nil,
	}
}

// OperatorAuth requires a signed operator token on the admin surface.
// The actor identity and role downstream handlers authorize against come
// from the verified claims, never from request headers.
func OperatorAuth(tokens *auth.OperatorTokenService) gin.HandlerFunc {
	return OperatorAuthWithConfig(DefaultOperatorAuthConfig(tokens))
}

// OperatorAuthWithConfig returns operator auth middleware with custom configuration
func OperatorAuthWithConfig(cfg OperatorAuthConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		guarded := false
		for _, prefix := range cfg.GuardPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				guarded = true
				break
			}
		}
		if !guarded {
			c.Next()
			return
		}

		token := extractBearerToken(c)
		if token == "" {
			abortOperator(c, dto.ErrCodeUnauthorized, "Operator token required")
			return
		}

		claims, err := cfg.Tokens.Verify(token)
		if err != nil {
			if cfg.Logger != nil {
				cfg.Logger.Warn("Operator authentication failed",
					zap.String("path", path),
					zap.Error(err),
				)
			}
			code, message := operatorErrorResponse(err)
			abortOperator(c, code, message)
			return
		}

		c.Set(OperatorClaimsKey, claims)
		c.Set(OperatorIDKey, claims.ActorID)
		c.Set(OperatorRoleKey, claims.Role)

		ctx := c.Request.Context()
		log := logger.FromContext(ctx)
		ctx, _ = logger.WithActorID(ctx, log, claims.ActorID)
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func operatorErrorResponse(err error) (code, message string) {
	if errors.Is(err, auth.ErrExpiredOperatorToken) {
		return "OPERATOR_TOKEN_EXPIRED", "Operator token has expired"
	}
	return dto.ErrCodeUnauthorized, "Invalid operator token"
}

func abortOperator(c *gin.Context, code, message string) {
	c.AbortWithStatusJSON(http.StatusUnauthorized, dto.NewErrorResponseWithRequestID(code, message, GetRequestID(c)))
}

// GetOperatorActor retrieves the verified operator identity from
// gin.Context. The second return is the operator's role.
func GetOperatorActor(c *gin.Context) (uuid.UUID, string, bool) {
	value, exists := c.Get(OperatorClaimsKey)
	if !exists {
		return uuid.Nil, "", false
	}
	claims, ok := value.(*auth.OperatorClaims)
	if !ok {
		return uuid.Nil, "", false
	}
	actorID, err := claims.GetActorUUID()
	if err != nil {
		return uuid.Nil, "", false
	}
	return actorID, claims.Role, true
}
