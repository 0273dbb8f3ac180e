package handler

import (
	"github.com/gin-gonic/gin"

	"github.com/tienda/backend/internal/application/credential"
	"github.com/tienda/backend/internal/interfaces/http/dto"
)

// CredentialHandler handles tenant credential vault HTTP requests.
// Secrets travel only in request bodies; responses never echo them
// back except on an explicit read.
type CredentialHandler struct {
	BaseHandler
	credentialService *credential.Service
}

// NewCredentialHandler creates a new credential handler
func NewCredentialHandler(credentialService *credential.Service) *CredentialHandler {
	return &CredentialHandler{
		credentialService: credentialService,
	}
}

// PutCredentialRequest is the request body for storing a credential
type PutCredentialRequest struct {
	Secret string `json:"secret" binding:"required"`
}

// Put godoc
// @Summary      Store or replace a named credential
// @Tags         credentials
// @Router       /credentials/{name} [put]
func (h *CredentialHandler) Put(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	name := c.Param("name")
	if name == "" {
		h.BadRequest(c, "Credential name is required")
		return
	}

	var req PutCredentialRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	if err := h.credentialService.Put(c.Request.Context(), tenantID, name, req.Secret); err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, dto.MessageResponse{Message: "Credential stored"})
}

// Get godoc
// @Summary      Read a credential's plaintext
// @Tags         credentials
// @Router       /credentials/{name} [get]
func (h *CredentialHandler) Get(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	secret, err := h.credentialService.Get(c.Request.Context(), tenantID, c.Param("name"))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"name": c.Param("name"), "secret": secret})
}

// List godoc
// @Summary      List credential names for the current tenant
// @Tags         credentials
// @Router       /credentials [get]
func (h *CredentialHandler) List(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	names, err := h.credentialService.List(c.Request.Context(), tenantID)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, gin.H{"names": names})
}

// Delete godoc
// @Summary      Delete a credential
// @Tags         credentials
// @Router       /credentials/{name} [delete]
func (h *CredentialHandler) Delete(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	if err := h.credentialService.Delete(c.Request.Context(), tenantID, c.Param("name")); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}
