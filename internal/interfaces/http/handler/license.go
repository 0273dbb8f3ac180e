package handler

import (
	"context"

	"github.com/gin-gonic/gin"

	applicensing "github.com/tienda/backend/internal/application/licensing"
	"github.com/tienda/backend/internal/application/quota"
	"github.com/tienda/backend/internal/interfaces/http/dto"
)

// LicenseHandler handles license administration and tenant activation
type LicenseHandler struct {
	BaseHandler
	licenseService *applicensing.LicenseService
	gate           *quota.Gate
}

// NewLicenseHandler creates a new license handler
func NewLicenseHandler(licenseService *applicensing.LicenseService, gate *quota.Gate) *LicenseHandler {
	return &LicenseHandler{
		licenseService: licenseService,
		gate:           gate,
	}
}

// GenerateLicenseRequest is the request body for minting a license
type GenerateLicenseRequest struct {
	Plan     string `json:"plan" binding:"required,oneof=trial free starter pro enterprise"`
	Duration string `json:"duration" binding:"required,oneof=lifetime monthly quarterly yearly"`
}

// ActivateLicenseRequest is the request body for license activation
type ActivateLicenseRequest struct {
	Serial string `json:"serial" binding:"required"`
}

// LicenseListQuery are the query parameters for listing licenses
type LicenseListQuery struct {
	dto.ListRequest
	Serial string `form:"serial"`
}

// Generate godoc
// @Summary      Mint a new license
// @Tags         licenses
// @Router       /admin/licenses [post]
func (h *LicenseHandler) Generate(c *gin.Context) {
	actorID, actorRole, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Operator not identified")
		return
	}

	var req GenerateLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	license, err := h.licenseService.Generate(c.Request.Context(), applicensing.GenerateLicenseInput{
		Plan:      req.Plan,
		Duration:  req.Duration,
		ActorID:   actorID,
		ActorRole: actorRole,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, license)
}

// GetBySerial godoc
// @Summary      Get a license by serial
// @Tags         licenses
// @Router       /admin/licenses/{serial} [get]
func (h *LicenseHandler) GetBySerial(c *gin.Context) {
	license, err := h.licenseService.GetBySerial(c.Request.Context(), c.Param("serial"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, license)
}

// List godoc
// @Summary      List licenses
// @Tags         licenses
// @Router       /admin/licenses [get]
func (h *LicenseHandler) List(c *gin.Context) {
	var query LicenseListQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	result, err := h.licenseService.List(c.Request.Context(), applicensing.LicenseFilter{
		Page:     query.Page,
		PageSize: query.PageSize,
		SortBy:   query.SortBy,
		SortDir:  query.SortDir,
		Serial:   query.Serial,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.SuccessWithMeta(c, result.Items, result.Total, result.Page, result.PageSize)
}

// Suspend godoc
// @Summary      Suspend a license
// @Tags         licenses
// @Router       /admin/licenses/{serial}/suspend [post]
func (h *LicenseHandler) Suspend(c *gin.Context) {
	h.mutate(c, h.licenseService.Suspend)
}

// Resume godoc
// @Summary      Resume a suspended license
// @Tags         licenses
// @Router       /admin/licenses/{serial}/resume [post]
func (h *LicenseHandler) Resume(c *gin.Context) {
	h.mutate(c, h.licenseService.Resume)
}

// SoftRevoke godoc
// @Summary      Unbind a license so it can be activated again
// @Tags         licenses
// @Router       /admin/licenses/{serial}/soft-revoke [post]
func (h *LicenseHandler) SoftRevoke(c *gin.Context) {
	h.mutate(c, h.licenseService.SoftRevoke)
}

// Revoke godoc
// @Summary      Permanently revoke a license
// @Tags         licenses
// @Router       /admin/licenses/{serial}/revoke [post]
func (h *LicenseHandler) Revoke(c *gin.Context) {
	h.mutate(c, h.licenseService.Revoke)
}

// Activate godoc
// @Summary      Activate a license for the current tenant
// @Tags         licenses
// @Router       /license/activate [post]
func (h *LicenseHandler) Activate(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	var req ActivateLicenseRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	license, err := h.licenseService.Activate(c.Request.Context(), applicensing.ActivateLicenseInput{
		Serial:   req.Serial,
		TenantID: tenantID,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, license)
}

// GetCurrent godoc
// @Summary      Get the current tenant's license
// @Tags         licenses
// @Router       /license [get]
func (h *LicenseHandler) GetCurrent(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	license, err := h.licenseService.GetForTenant(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, license)
}

// Usage godoc
// @Summary      Get the current tenant's quota usage
// @Tags         licenses
// @Router       /license/usage [get]
func (h *LicenseHandler) Usage(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	usage, err := h.gate.Usage(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"usage": usage})
}

func (h *LicenseHandler) mutate(c *gin.Context, fn func(ctx context.Context, input applicensing.RevokeLicenseInput) (*applicensing.LicenseDTO, error)) {
	actorID, actorRole, err := getActor(c)
	if err != nil {
		h.Unauthorized(c, "Operator not identified")
		return
	}

	license, err := fn(c.Request.Context(), applicensing.RevokeLicenseInput{
		Serial:    c.Param("serial"),
		ActorID:   actorID,
		ActorRole: actorRole,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, license)
}
