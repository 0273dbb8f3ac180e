package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tienda/backend/internal/application/quota"
	"github.com/tienda/backend/internal/domain/shared"
	"github.com/tienda/backend/internal/infrastructure/auth"
	"github.com/tienda/backend/internal/interfaces/http/dto"
	"github.com/tienda/backend/internal/interfaces/http/middleware"
)

// BaseHandler provides common handler utilities
type BaseHandler struct{}

// getTenantID extracts the resolved tenant ID for the request
func getTenantID(c *gin.Context) (uuid.UUID, error) {
	return middleware.GetTenantUUID(c)
}

// getActor extracts the acting identity from verified claims: an
// operator token on the admin surface or an impersonation grant inside a
// tenant. Identity never comes from client-supplied headers.
func getActor(c *gin.Context) (uuid.UUID, string, error) {
	if actorID, role, ok := middleware.GetOperatorActor(c); ok {
		return actorID, role, nil
	}

	if claims, ok := middleware.GetGrantClaims(c); ok {
		actorID, err := uuid.Parse(claims.ImpersonatorID)
		if err != nil {
			return uuid.Nil, "", err
		}
		return actorID, claims.Role, nil
	}

	return uuid.Nil, "", errors.New("actor not identified")
}

// Success sends a success response
func (h *BaseHandler) Success(c *gin.Context, data any) {
	c.JSON(http.StatusOK, dto.NewSuccessResponse(data))
}

// SuccessWithMeta sends a success response with pagination meta
func (h *BaseHandler) SuccessWithMeta(c *gin.Context, data any, total int64, page, pageSize int) {
	c.JSON(http.StatusOK, dto.NewSuccessResponseWithMeta(data, total, page, pageSize))
}

// Created sends a 201 created response
func (h *BaseHandler) Created(c *gin.Context, data any) {
	c.JSON(http.StatusCreated, dto.NewSuccessResponse(data))
}

// NoContent sends a 204 no content response
func (h *BaseHandler) NoContent(c *gin.Context) {
	c.Status(http.StatusNoContent)
}

// Error sends an error response with the given status code
func (h *BaseHandler) Error(c *gin.Context, statusCode int, code, message string) {
	c.JSON(statusCode, dto.NewErrorResponseWithRequestID(code, message, middleware.GetRequestID(c)))
}

// BadRequest sends a 400 bad request response
func (h *BaseHandler) BadRequest(c *gin.Context, message string) {
	h.Error(c, http.StatusBadRequest, dto.ErrCodeBadRequest, message)
}

// NotFound sends a 404 not found response
func (h *BaseHandler) NotFound(c *gin.Context, message string) {
	h.Error(c, http.StatusNotFound, dto.ErrCodeNotFound, message)
}

// Unauthorized sends a 401 unauthorized response
func (h *BaseHandler) Unauthorized(c *gin.Context, message string) {
	h.Error(c, http.StatusUnauthorized, dto.ErrCodeUnauthorized, message)
}

// Forbidden sends a 403 forbidden response
func (h *BaseHandler) Forbidden(c *gin.Context, message string) {
	h.Error(c, http.StatusForbidden, dto.ErrCodeForbidden, message)
}

// InternalError sends a 500 internal server error response
func (h *BaseHandler) InternalError(c *gin.Context, message string) {
	h.Error(c, http.StatusInternalServerError, dto.ErrCodeInternal, message)
}

// HandleError converts application errors to HTTP responses
func (h *BaseHandler) HandleError(c *gin.Context, err error) {
	if err == nil {
		return
	}

	requestID := middleware.GetRequestID(c)

	// Quota denials carry the ceiling and the usage that hit it, so
	// clients can render "10 of 10 used" without a second request.
	var quotaErr *quota.QuotaExceededError
	if errors.As(err, &quotaErr) {
		resp := dto.NewErrorResponseWithRequestID("QUOTA_EXCEEDED", quotaErr.Error(), requestID)
		resp.Error.Details = gin.H{
			"kind":    quotaErr.Kind,
			"ceiling": quotaErr.Ceiling,
			"current": quotaErr.Current,
		}
		c.JSON(http.StatusUnprocessableEntity, resp)
		return
	}

	var domainErr *shared.DomainError
	if errors.As(err, &domainErr) {
		statusCode := dto.GetHTTPStatus(domainErr.Code)
		c.JSON(statusCode, dto.NewErrorResponseWithRequestID(domainErr.Code, domainErr.Message, requestID))
		return
	}

	switch {
	case errors.Is(err, auth.ErrExpiredGrant):
		h.Error(c, http.StatusUnauthorized, "GRANT_EXPIRED", "Impersonation grant has expired")
	case errors.Is(err, auth.ErrGrantRevoked):
		h.Error(c, http.StatusUnauthorized, "GRANT_REVOKED", "Impersonation grant has been revoked")
	case errors.Is(err, auth.ErrInvalidGrant), errors.Is(err, auth.ErrInvalidClaims):
		h.Unauthorized(c, "Invalid impersonation grant")
	default:
		h.InternalError(c, "An unexpected error occurred")
	}
}
