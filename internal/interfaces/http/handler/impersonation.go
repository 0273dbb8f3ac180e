package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tienda/backend/internal/application/support"
	"github.com/tienda/backend/internal/domain/identity"
	"github.com/tienda/backend/internal/interfaces/http/dto"
)

// ImpersonationHandler handles support impersonation HTTP requests.
// Issuance lives on the admin surface; only mothership operators get
// past the service's role check.
type ImpersonationHandler struct {
	BaseHandler
	impersonationService *support.ImpersonationService
}

// NewImpersonationHandler creates a new impersonation handler
func NewImpersonationHandler(impersonationService *support.ImpersonationService) *ImpersonationHandler {
	return &ImpersonationHandler{
		impersonationService: impersonationService,
	}
}

// IssueGrantRequest is the request body for issuing a grant
type IssueGrantRequest struct {
	TenantID string `json:"tenant_id" binding:"required,uuid"`
}

// RevokeGrantRequest is the request body for revoking a grant
type RevokeGrantRequest struct {
	Token string `json:"token" binding:"required"`
}

// Issue godoc
// @Summary      Issue a short-lived impersonation grant
// @Tags         impersonation
// @Router       /admin/impersonation/grants [post]
func (h *ImpersonationHandler) Issue(c *gin.Context) {
	actorID, actorRole, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Operator not identified")
		return
	}

	var req IssueGrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}
	tenantID, err := uuid.Parse(req.TenantID)
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	grant, err := h.impersonationService.Issue(c.Request.Context(), support.IssueInput{
		TenantID:  tenantID,
		ActorID:   actorID,
		ActorRole: identity.ActorRole(actorRole),
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, grant)
}

// Revoke godoc
// @Summary      Revoke an impersonation grant before it expires
// @Tags         impersonation
// @Router       /admin/impersonation/revoke [post]
func (h *ImpersonationHandler) Revoke(c *gin.Context) {
	var req RevokeGrantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.impersonationService.Revoke(c.Request.Context(), req.Token); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.MessageResponse{Message: "Grant revoked"})
}
