package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tienda/backend/internal/application/support"
	"github.com/tienda/backend/internal/domain/identity"
	"github.com/tienda/backend/internal/domain/shared"
	"github.com/tienda/backend/internal/interfaces/http/dto"
)

// AuditHandler serves the read-only audit trail on the admin surface
type AuditHandler struct {
	BaseHandler
	auditService *support.AuditService
}

// NewAuditHandler creates a new audit handler
func NewAuditHandler(auditService *support.AuditService) *AuditHandler {
	return &AuditHandler{
		auditService: auditService,
	}
}

// ListByTarget godoc
// @Summary      List audit entries for a target tenant or license
// @Tags         audit
// @Router       /admin/audit/targets/{id} [get]
func (h *AuditHandler) ListByTarget(c *gin.Context) {
	h.list(c, h.auditService.ListByTarget)
}

// ListByActor godoc
// @Summary      List audit entries recorded for an operator
// @Tags         audit
// @Router       /admin/audit/actors/{id} [get]
func (h *AuditHandler) ListByActor(c *gin.Context) {
	h.list(c, h.auditService.ListByActor)
}

func (h *AuditHandler) list(c *gin.Context, query func(ctx context.Context, role identity.ActorRole, id uuid.UUID, filter shared.Filter) ([]support.AuditEntryDTO, error)) {
	_, actorRole, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Operator not identified")
		return
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid ID")
		return
	}

	var listReq dto.ListRequest
	if err := c.ShouldBindQuery(&listReq); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	filter := shared.DefaultFilter()
	if listReq.Page > 0 {
		filter.Page = listReq.Page
	}
	if listReq.PageSize > 0 {
		filter.PageSize = listReq.PageSize
	}

	entries, err := query(c.Request.Context(), identity.ActorRole(actorRole), id, filter)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"entries": entries})
}
