package handler

import (
	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	appcommerce "github.com/tienda/backend/internal/application/commerce"
	"github.com/tienda/backend/internal/interfaces/http/dto"
)

// CommerceHandler handles tenant product and order HTTP requests
type CommerceHandler struct {
	BaseHandler
	productService *appcommerce.ProductService
	orderService   *appcommerce.OrderService
}

// NewCommerceHandler creates a new commerce handler
func NewCommerceHandler(productService *appcommerce.ProductService, orderService *appcommerce.OrderService) *CommerceHandler {
	return &CommerceHandler{
		productService: productService,
		orderService:   orderService,
	}
}

// CreateProductRequest is the request body for product creation
type CreateProductRequest struct {
	SKU   string          `json:"sku" binding:"required,min=1,max=64"`
	Name  string          `json:"name" binding:"required,min=1,max=200"`
	Price decimal.Decimal `json:"price" binding:"required"`
}

// CreateOrderRequest is the request body for order creation
type CreateOrderRequest struct {
	Total decimal.Decimal `json:"total" binding:"required"`
}

// CreateProduct godoc
// @Summary      Create a product
// @Tags         commerce
// @Router       /products [post]
func (h *CommerceHandler) CreateProduct(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	var req CreateProductRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	product, err := h.productService.Create(c.Request.Context(), tenantID, appcommerce.CreateProductInput{
		SKU:   req.SKU,
		Name:  req.Name,
		Price: req.Price,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, product)
}

// GetProduct godoc
// @Summary      Get a product by ID
// @Tags         commerce
// @Router       /products/{id} [get]
func (h *CommerceHandler) GetProduct(c *gin.Context) {
	tenantID, id, ok := h.tenantAndID(c)
	if !ok {
		return
	}

	product, err := h.productService.Get(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// ListProducts godoc
// @Summary      List products
// @Tags         commerce
// @Router       /products [get]
func (h *CommerceHandler) ListProducts(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	var query dto.ListRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	products, err := h.productService.List(c.Request.Context(), tenantID, listFilter(query))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, products)
}

// ArchiveProduct godoc
// @Summary      Archive a product
// @Tags         commerce
// @Router       /products/{id}/archive [post]
func (h *CommerceHandler) ArchiveProduct(c *gin.Context) {
	tenantID, id, ok := h.tenantAndID(c)
	if !ok {
		return
	}

	product, err := h.productService.Archive(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, product)
}

// DeleteProduct godoc
// @Summary      Delete a product, freeing its quota slot
// @Tags         commerce
// @Router       /products/{id} [delete]
func (h *CommerceHandler) DeleteProduct(c *gin.Context) {
	tenantID, id, ok := h.tenantAndID(c)
	if !ok {
		return
	}

	if err := h.productService.Delete(c.Request.Context(), tenantID, id); err != nil {
		h.HandleError(c, err)
		return
	}

	h.NoContent(c)
}

// CreateOrder godoc
// @Summary      Create an order
// @Tags         commerce
// @Router       /orders [post]
func (h *CommerceHandler) CreateOrder(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	var req CreateOrderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.BadRequest(c, "Invalid request body")
		return
	}

	order, err := h.orderService.Create(c.Request.Context(), tenantID, appcommerce.CreateOrderInput{
		Total: req.Total,
	})
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Created(c, order)
}

// GetOrder godoc
// @Summary      Get an order by ID
// @Tags         commerce
// @Router       /orders/{id} [get]
func (h *CommerceHandler) GetOrder(c *gin.Context) {
	tenantID, id, ok := h.tenantAndID(c)
	if !ok {
		return
	}

	order, err := h.orderService.Get(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// ListOrders godoc
// @Summary      List orders
// @Tags         commerce
// @Router       /orders [get]
func (h *CommerceHandler) ListOrders(c *gin.Context) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return
	}

	var query dto.ListRequest
	if err := c.ShouldBindQuery(&query); err != nil {
		h.BadRequest(c, "Invalid query parameters")
		return
	}

	orders, err := h.orderService.List(c.Request.Context(), tenantID, listFilter(query))
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, orders)
}

// PayOrder godoc
// @Summary      Mark an order paid
// @Tags         commerce
// @Router       /orders/{id}/pay [post]
func (h *CommerceHandler) PayOrder(c *gin.Context) {
	tenantID, id, ok := h.tenantAndID(c)
	if !ok {
		return
	}

	order, err := h.orderService.MarkPaid(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

// CancelOrder godoc
// @Summary      Cancel a pending order
// @Tags         commerce
// @Router       /orders/{id}/cancel [post]
func (h *CommerceHandler) CancelOrder(c *gin.Context) {
	tenantID, id, ok := h.tenantAndID(c)
	if !ok {
		return
	}

	order, err := h.orderService.Cancel(c.Request.Context(), tenantID, id)
	if err != nil {
		h.HandleError(c, err)
		return
	}

	h.Success(c, order)
}

func (h *CommerceHandler) tenantAndID(c *gin.Context) (uuid.UUID, uuid.UUID, bool) {
	tenantID, err := getTenantID(c)
	if err != nil {
		h.Unauthorized(c, "Tenant not resolved")
		return uuid.Nil, uuid.Nil, false
	}

	id, err := uuid.Parse(c.Param("id"))
	if err != nil {
		h.BadRequest(c, "Invalid resource ID")
		return uuid.Nil, uuid.Nil, false
	}

	return tenantID, id, true
}

func listFilter(query dto.ListRequest) appcommerce.ListFilter {
	return appcommerce.ListFilter{
		Page:     query.Page,
		PageSize: query.PageSize,
		SortBy:   query.SortBy,
		SortDir:  query.SortDir,
		Keyword:  query.Keyword,
	}
}
