package commerce

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tienda/backend/internal/domain/commerce"
	"github.com/tienda/backend/internal/domain/shared"
)

// CreateProductInput contains input for creating a product
type CreateProductInput struct {
	SKU   string
	Name  string
	Price decimal.Decimal
}

// ProductDTO represents product data transfer object
type ProductDTO struct {
	ID        uuid.UUID       `json:"id"`
	SKU       string          `json:"sku"`
	Name      string          `json:"name"`
	Price     decimal.Decimal `json:"price"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

// ToProductDTO converts a domain product to its DTO
func ToProductDTO(p *commerce.Product) ProductDTO {
	return ProductDTO{
		ID:        p.ID,
		SKU:       p.SKU,
		Name:      p.Name,
		Price:     p.Price,
		Status:    string(p.Status),
		CreatedAt: p.CreatedAt,
	}
}

// CreateOrderInput contains input for creating an order
type CreateOrderInput struct {
	Total decimal.Decimal
}

// OrderDTO represents order data transfer object
type OrderDTO struct {
	ID        uuid.UUID       `json:"id"`
	Number    string          `json:"number"`
	Total     decimal.Decimal `json:"total"`
	Status    string          `json:"status"`
	CreatedAt time.Time       `json:"created_at"`
}

// ToOrderDTO converts a domain order to its DTO
func ToOrderDTO(o *commerce.Order) OrderDTO {
	return OrderDTO{
		ID:        o.ID,
		Number:    o.Number,
		Total:     o.Total,
		Status:    string(o.Status),
		CreatedAt: o.CreatedAt,
	}
}

// ListFilter represents filter for querying products or orders
type ListFilter struct {
	Page     int
	PageSize int
	SortBy   string
	SortDir  string
	Keyword  string
}

// ToSharedFilter converts ListFilter to shared.Filter
func (f ListFilter) ToSharedFilter() shared.Filter {
	filter := shared.DefaultFilter()
	if f.Page > 0 {
		filter.Page = f.Page
	}
	if f.PageSize > 0 {
		filter.PageSize = f.PageSize
	}
	if f.SortBy != "" {
		filter.OrderBy = f.SortBy
	}
	if f.SortDir != "" {
		filter.OrderDir = f.SortDir
	}
	filter.Search = f.Keyword
	return filter
}
