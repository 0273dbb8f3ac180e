package handler

import (
	"github.com/gin-gonic/gin"
)

// RegisterRoutes registers system routes
func (h *SystemHandler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/health", h.Health)
}

// RegisterRoutes registers tenant administration routes
func (h *TenantHandler) RegisterRoutes(rg *gin.RouterGroup) {
	tenants := rg.Group("/admin/tenants")
	{
		tenants.POST("", h.Create)
		tenants.GET("", h.List)
		tenants.GET("/:id", h.GetByID)
		tenants.PUT("/:id", h.Update)
		tenants.POST("/:id/activate", h.Activate)
		tenants.POST("/:id/suspend", h.Suspend)
		tenants.DELETE("/:id", h.SoftDelete)
		tenants.POST("/:id/purge", h.Purge)
	}
}

// RegisterRoutes registers license administration and tenant license routes
func (h *LicenseHandler) RegisterRoutes(rg *gin.RouterGroup) {
	admin := rg.Group("/admin/licenses")
	{
		admin.POST("", h.Generate)
		admin.GET("", h.List)
		admin.GET("/:serial", h.GetBySerial)
		admin.POST("/:serial/suspend", h.Suspend)
		admin.POST("/:serial/resume", h.Resume)
		admin.POST("/:serial/soft-revoke", h.SoftRevoke)
		admin.POST("/:serial/revoke", h.Revoke)
	}

	license := rg.Group("/license")
	{
		license.GET("", h.GetCurrent)
		license.POST("/activate", h.Activate)
		license.GET("/usage", h.Usage)
	}
}

// RegisterRoutes registers credential vault routes
func (h *CredentialHandler) RegisterRoutes(rg *gin.RouterGroup) {
	credentials := rg.Group("/credentials")
	{
		credentials.GET("", h.List)
		credentials.PUT("/:name", h.Put)
		credentials.GET("/:name", h.Get)
		credentials.DELETE("/:name", h.Delete)
	}
}

// RegisterRoutes registers impersonation routes on the admin surface
func (h *ImpersonationHandler) RegisterRoutes(rg *gin.RouterGroup) {
	impersonation := rg.Group("/admin/impersonation")
	{
		impersonation.POST("/grants", h.Issue)
		impersonation.POST("/revoke", h.Revoke)
	}
}

// RegisterRoutes registers audit trail routes on the admin surface
func (h *AuditHandler) RegisterRoutes(rg *gin.RouterGroup) {
	auditGroup := rg.Group("/admin/audit")
	{
		auditGroup.GET("/targets/:id", h.ListByTarget)
		auditGroup.GET("/actors/:id", h.ListByActor)
	}
}

// RegisterRoutes registers product and order routes
func (h *CommerceHandler) RegisterRoutes(rg *gin.RouterGroup) {
	products := rg.Group("/products")
	{
		products.POST("", h.CreateProduct)
		products.GET("", h.ListProducts)
		products.GET("/:id", h.GetProduct)
		products.POST("/:id/archive", h.ArchiveProduct)
		products.DELETE("/:id", h.DeleteProduct)
	}

	orders := rg.Group("/orders")
	{
		orders.POST("", h.CreateOrder)
		orders.GET("", h.ListOrders)
		orders.GET("/:id", h.GetOrder)
		orders.POST("/:id/pay", h.PayOrder)
		orders.POST("/:id/cancel", h.CancelOrder)
	}
}
