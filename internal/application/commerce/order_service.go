package commerce

import (
	"context"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tienda/backend/internal/application/quota"
	"github.com/tienda/backend/internal/domain/commerce"
	"github.com/tienda/backend/internal/domain/licensing"
	"github.com/tienda/backend/internal/infrastructure/persistence"
	"github.com/tienda/backend/internal/infrastructure/persistence/tenant"
)

// OrderService handles tenant order operations with quota admission on
// creation. Cancelled orders keep counting; only the product side of the
// quota ever frees slots.
type OrderService struct {
	db     *gorm.DB
	repo   commerce.OrderRepository
	gate   *quota.Gate
	logger *zap.Logger
}

// NewOrderService creates a new OrderService
func NewOrderService(
	db *gorm.DB,
	repo commerce.OrderRepository,
	gate *quota.Gate,
	logger *zap.Logger,
) *OrderService {
	return &OrderService{
		db:     db,
		repo:   repo,
		gate:   gate,
		logger: logger,
	}
}

// Create creates an order for the tenant after quota admission. The
// order number is derived from the tenant's own sequence inside the
// admission transaction; the license row lock the gate takes keeps two
// concurrent creates from deriving the same number.
func (s *OrderService) Create(ctx context.Context, tenantID uuid.UUID, input CreateOrderInput) (*OrderDTO, error) {
	sctx, err := tenant.Scope(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	var created *commerce.Order
	err = s.db.WithContext(sctx).Transaction(func(tx *gorm.DB) error {
		licenses := persistence.NewGormLicenseRepository(tx)
		counter := persistence.NewGormUsageCounter(tx)
		if err := s.gate.AdmitWithin(sctx, licenses, counter, tenantID, licensing.ResourceOrder, 1); err != nil {
			return err
		}

		repo := persistence.NewGormOrderRepository(tx)
		seq, err := repo.Count(sctx)
		if err != nil {
			return err
		}

		order, err := commerce.NewOrder(tenantID, commerce.NewOrderNumber(seq+1), input.Total)
		if err != nil {
			return err
		}
		if err := repo.Create(sctx, order); err != nil {
			return err
		}
		created = order
		return nil
	})
	if err != nil {
		return nil, err
	}

	dto := ToOrderDTO(created)
	return &dto, nil
}

// Get returns an order by ID within the tenant
func (s *OrderService) Get(ctx context.Context, tenantID, id uuid.UUID) (*OrderDTO, error) {
	sctx, err := tenant.Scope(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	order, err := s.repo.FindByID(sctx, id)
	if err != nil {
		return nil, err
	}

	dto := ToOrderDTO(order)
	return &dto, nil
}

// List returns the tenant's orders matching the filter
func (s *OrderService) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]OrderDTO, error) {
	sctx, err := tenant.Scope(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	orders, err := s.repo.FindAll(sctx, filter.ToSharedFilter())
	if err != nil {
		return nil, err
	}

	dtos := make([]OrderDTO, len(orders))
	for i := range orders {
		dtos[i] = ToOrderDTO(&orders[i])
	}
	return dtos, nil
}

// MarkPaid transitions an order to paid
func (s *OrderService) MarkPaid(ctx context.Context, tenantID, id uuid.UUID) (*OrderDTO, error) {
	return s.transition(ctx, tenantID, id, func(o *commerce.Order) error { return o.MarkPaid() })
}

// Cancel cancels an order. The row still counts against the quota.
func (s *OrderService) Cancel(ctx context.Context, tenantID, id uuid.UUID) (*OrderDTO, error) {
	return s.transition(ctx, tenantID, id, func(o *commerce.Order) error { return o.Cancel() })
}

func (s *OrderService) transition(ctx context.Context, tenantID, id uuid.UUID, fn func(*commerce.Order) error) (*OrderDTO, error) {
	sctx, err := tenant.Scope(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	order, err := s.repo.FindByID(sctx, id)
	if err != nil {
		return nil, err
	}
	if err := fn(order); err != nil {
		return nil, err
	}
	if err := s.repo.Save(sctx, order); err != nil {
		return nil, err
	}

	dto := ToOrderDTO(order)
	return &dto, nil
}
