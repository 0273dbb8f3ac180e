package handler

import (
	"context"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/tienda/backend/internal/application/identity"
	"github.com/tienda/backend/internal/interfaces/http/dto"
)

// TenantHandler handles tenant administration HTTP requests. These
// routes live on the admin surface and are never tenant-scoped.
type TenantHandler struct {
	BaseHandler
	tenantService *identity.TenantService
}

// NewTenantHandler creates a new tenant handler
func NewTenantHandler(tenantService *identity.TenantService) *TenantHandler {
	return &TenantHandler{
		tenantService: tenantService,
	}
}

// CreateTenantRequest is the request body for tenant creation
type CreateTenantRequest struct {
	Name         string `json:"name" binding:"required,min=1,max=120"`
	Domain       string `json:"domain" binding:"required,min=1,max=63"`
	ContactEmail string `json:"contact_email" binding:"omitempty,email"`
}

// UpdateTenantRequest is the request body for tenant updates
type UpdateTenantRequest struct {
	Name         *string `json:"name" binding:"omitempty,min=1,max=120"`
	ContactEmail *string `json:"contact_email" binding:"omitempty,email"`
}

// Create godoc
// @Summary      Provision a new tenant
// @Tags         tenants
// @Router       /admin/tenants [post]
func (h *TenantHandler) Create(c *gin.Context) {
	var req CreateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	tenant, err := h.tenantService.Create(c.Request.Context(), identity.CreateTenantInput{
		Name:         req.Name,
		Domain:       req.Domain,
		ContactEmail: req.ContactEmail,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, tenant)
}

// GetByID godoc
// @Summary      Get a tenant by ID
// @Tags         tenants
// @Router       /admin/tenants/{id} [get]
func (h *TenantHandler) GetByID(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	tenant, err := h.tenantService.Get(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tenant)
}

// List godoc
// @Summary      List tenants
// @Tags         tenants
// @Router       /admin/tenants [get]
func (h *TenantHandler) List(c *gin.Context) {
	var query dto.ListRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.tenantService.List(c.Request.Context(), identity.TenantFilter{
		Page:     query.Page,
		PageSize: query.PageSize,
		SortBy:   query.SortBy,
		SortDir:  query.SortDir,
		Keyword:  query.Keyword,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Update godoc
// @Summary      Update a tenant
// @Tags         tenants
// @Router       /admin/tenants/{id} [put]
func (h *TenantHandler) Update(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	var req UpdateTenantRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	tenant, err := h.tenantService.Update(c.Request.Context(), identity.UpdateTenantInput{
		ID:           id,
		Name:         req.Name,
		ContactEmail: req.ContactEmail,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tenant)
}

// Activate godoc
// @Summary      Activate a tenant
// @Tags         tenants
// @Router       /admin/tenants/{id}/activate [post]
func (h *TenantHandler) Activate(c *gin.Context) {
	h.transition(c, h.tenantService.Activate)
}

// Suspend godoc
// @Summary      Suspend a tenant
// @Tags         tenants
// @Router       /admin/tenants/{id}/suspend [post]
func (h *TenantHandler) Suspend(c *gin.Context) {
	h.transition(c, h.tenantService.Suspend)
}

// SoftDelete godoc
// @Summary      Soft-delete a tenant
// @Tags         tenants
// @Router       /admin/tenants/{id} [delete]
func (h *TenantHandler) SoftDelete(c *gin.Context) {
	h.transition(c, h.tenantService.SoftDelete)
}

// Purge godoc
// @Summary      Permanently remove a soft-deleted tenant
// @Tags         tenants
// @Router       /admin/tenants/{id}/purge [post]
func (h *TenantHandler) Purge(c *gin.Context) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	if err := h.tenantService.Purge(c.Request.Context(), id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.MessageResponse{Message: "Tenant purged"})
}

func (h *TenantHandler) transition(c *gin.Context, fn func(ctx context.Context, id uuid.UUID) (*identity.TenantDTO, error)) {
	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid tenant ID")
		return
	}

	tenant, err := fn(c.Request.Context(), id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, tenant)
}
