package commerce

import (
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/tienda/backend/internal/domain/shared"
)

// OrderStatus represents the status of an order
type OrderStatus string

const (
	OrderStatusPending   OrderStatus = "pending"
	OrderStatusPaid      OrderStatus = "paid"
	OrderStatusCancelled OrderStatus = "cancelled"
)

// Order is a sale recorded by a tenant. Every stored order counts
// against the tenant's order quota, cancelled ones included; the quota
// measures volume handled, not revenue.
type Order struct {
	shared.TenantAggregateRoot
	Number string          `gorm:"type:varchar(40);not null;uniqueIndex:,composite:tenant_scope,priority:2"`
	Total  decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0"`
	Status OrderStatus     `gorm:"type:varchar(20);not null;default:'pending'"`
}

// TableName returns the table name for GORM
func (Order) TableName() string {
	return "orders"
}

// NewOrder creates a new pending order
func NewOrder(tenantID uuid.UUID, number string, total decimal.Decimal) (*Order, error) {
	if tenantID == uuid.Nil {
		return nil, shared.NewDomainError("INVALID_TENANT", "Tenant ID cannot be empty")
	}
	if number == "" || len(number) > 40 {
		return nil, shared.NewDomainError("INVALID_ORDER_NUMBER", "Order number must be 1-40 characters")
	}
	if total.IsNegative() {
		return nil, shared.NewDomainError("INVALID_TOTAL", "Order total cannot be negative")
	}

	return &Order{
		TenantAggregateRoot: shared.NewTenantAggregateRoot(tenantID),
		Number:              number,
		Total:               total,
		Status:              OrderStatusPending,
	}, nil
}

// NewOrderNumber builds an order number from a monotonic sequence
func NewOrderNumber(seq int64) string {
	return fmt.Sprintf("ORD-%08d", seq)
}

// MarkPaid records payment for a pending order
func (o *Order) MarkPaid() error {
	if o.Status != OrderStatusPending {
		return shared.NewDomainError("INVALID_ORDER_STATE", "Only pending orders can be paid")
	}
	o.Status = OrderStatusPaid
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	return nil
}

// Cancel cancels a pending order
func (o *Order) Cancel() error {
	if o.Status != OrderStatusPending {
		return shared.NewDomainError("INVALID_ORDER_STATE", "Only pending orders can be cancelled")
	}
	o.Status = OrderStatusCancelled
	o.UpdatedAt = time.Now()
	o.IncrementVersion()
	return nil
}
