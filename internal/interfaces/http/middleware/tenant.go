package middleware

import (
	"errors"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/tienda/backend/internal/application/identity"
	domainidentity "github.com/tienda/backend/internal/domain/identity"
	"github.com/tienda/backend/internal/domain/shared"
	"github.com/tienda/backend/internal/infrastructure/logger"
	"github.com/tienda/backend/internal/infrastructure/persistence/tenant"
	"github.com/tienda/backend/internal/interfaces/http/dto"
)

// Tenant context keys
const (
	TenantIDKey     = "tenant_id"
	TenantHeaderKey = "X-Tenant-ID"
)

// TenantResolutionConfig holds configuration for the resolution middleware
type TenantResolutionConfig struct {
	// Resolver maps request signals to a tenant
	Resolver *identity.Resolver
	// SkipPaths are paths served without tenant context
	SkipPaths []string
	// SkipPathPrefixes are path prefixes served without tenant context
	SkipPathPrefixes []string
	// RejectSuspended turns suspended tenants away with 403
	RejectSuspended bool
	// Logger for middleware logging
	Logger *zap.Logger
}

// DefaultTenantResolutionConfig returns the default resolution configuration
func DefaultTenantResolutionConfig(resolver *identity.Resolver) TenantResolutionConfig {
	return TenantResolutionConfig{
		Resolver: resolver,
		SkipPaths: []string{
			"/health",
			"/healthz",
			"/ready",
			"/api/v1/health",
		},
		SkipPathPrefixes: []string{
			"/api/v1/admin",
		},
		RejectSuspended: true,
		Logger:          nil,
	}
}

// TenantResolution resolves the tenant for each request from the
// X-Tenant-ID header or the request host, and scopes the request
// context so every query downstream is tenant-bound.
func TenantResolution(resolver *identity.Resolver) gin.HandlerFunc {
	return TenantResolutionWithConfig(DefaultTenantResolutionConfig(resolver))
}

// TenantResolutionWithConfig returns resolution middleware with custom configuration
func TenantResolutionWithConfig(cfg TenantResolutionConfig) gin.HandlerFunc {
	return func(c *gin.Context) {
		path := c.Request.URL.Path
		for _, skipPath := range cfg.SkipPaths {
			if path == skipPath {
				c.Next()
				return
			}
		}
		for _, prefix := range cfg.SkipPathPrefixes {
			if strings.HasPrefix(path, prefix) {
				c.Next()
				return
			}
		}

		resolution, err := cfg.Resolver.Resolve(c.Request.Context(), identity.ResolveRequest{
			TenantID: c.GetHeader(TenantHeaderKey),
			Host:     c.Request.Host,
		})
		if err != nil {
			abortResolution(c, cfg.Logger, err)
			return
		}

		if cfg.RejectSuspended && resolution.Status == domainidentity.TenantStatusSuspended {
			c.AbortWithStatusJSON(http.StatusForbidden, dto.NewErrorResponseWithRequestID(
				"TENANT_SUSPENDED",
				"Tenant account is suspended",
				GetRequestID(c),
			))
			return
		}

		c.Set(TenantIDKey, resolution.TenantID.String())

		ctx := c.Request.Context()
		log := logger.FromContext(ctx)
		ctx, _ = logger.WithTenantID(ctx, log, resolution.TenantID.String())

		ctx, err = tenant.Scope(ctx, resolution.TenantID)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
				dto.ErrCodeInternal,
				"Failed to establish tenant scope",
				GetRequestID(c),
			))
			return
		}
		c.Request = c.Request.WithContext(ctx)

		c.Next()
	}
}

func abortResolution(c *gin.Context, log *zap.Logger, err error) {
	requestID := GetRequestID(c)

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		c.AbortWithStatusJSON(dto.GetHTTPStatus(domainErr.Code), dto.NewErrorResponseWithRequestID(
			domainErr.Code,
			domainErr.Message,
			requestID,
		))
		return
	}

	if log != nil {
		log.Error("Tenant resolution failed",
			zap.String("host", c.Request.Host),
			zap.Error(err),
		)
	}
	c.AbortWithStatusJSON(http.StatusInternalServerError, dto.NewErrorResponseWithRequestID(
		dto.ErrCodeInternal,
		"Tenant resolution failed",
		requestID,
	))
}

// GetTenantID retrieves the resolved tenant ID from gin.Context
func GetTenantID(c *gin.Context) string {
	return c.GetString(TenantIDKey)
}

// GetTenantUUID retrieves the resolved tenant ID as a UUID
func GetTenantUUID(c *gin.Context) (uuid.UUID, error) {
	tenantID := GetTenantID(c)
	if tenantID == "" {
		return uuid.Nil, errors.New("tenant not resolved for this request")
	}
	return uuid.Parse(tenantID)
}
