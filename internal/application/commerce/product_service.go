package commerce

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/tienda/backend/internal/application/quota"
	"github.com/tienda/backend/internal/domain/commerce"
	"github.com/tienda/backend/internal/domain/licensing"
	"github.com/tienda/backend/internal/domain/shared"
	"github.com/tienda/backend/internal/infrastructure/persistence"
	"github.com/tienda/backend/internal/infrastructure/persistence/tenant"
)

// ProductService handles tenant product operations. Creation is quota
// guarded: the gate locks the tenant's license row, counts, and the
// insert commits in the same transaction, so two concurrent creates
// cannot both squeeze under the ceiling.
type ProductService struct {
	db     *gorm.DB
	repo   commerce.ProductRepository
	gate   *quota.Gate
	logger *zap.Logger
}

// NewProductService creates a new ProductService
func NewProductService(
	db *gorm.DB,
	repo commerce.ProductRepository,
	gate *quota.Gate,
	logger *zap.Logger,
) *ProductService {
	return &ProductService{
		db:     db,
		repo:   repo,
		gate:   gate,
		logger: logger,
	}
}

// Create creates a product for the tenant after quota admission
func (s *ProductService) Create(ctx context.Context, tenantID uuid.UUID, input CreateProductInput) (*ProductDTO, error) {
	sctx, err := tenant.Scope(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	if _, err := s.repo.FindBySKU(sctx, input.SKU); err == nil {
		return nil, shared.NewDomainError("ALREADY_EXISTS", "Product with this SKU already exists")
	} else if !errors.Is(err, shared.ErrNotFound) {
		return nil, err
	}

	product, err := commerce.NewProduct(tenantID, input.SKU, input.Name, input.Price)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(sctx).Transaction(func(tx *gorm.DB) error {
		licenses := persistence.NewGormLicenseRepository(tx)
		counter := persistence.NewGormUsageCounter(tx)
		if err := s.gate.AdmitWithin(sctx, licenses, counter, tenantID, licensing.ResourceProduct, 1); err != nil {
			return err
		}
		return persistence.NewGormProductRepository(tx).Create(sctx, product)
	})
	if err != nil {
		return nil, err
	}

	dto := ToProductDTO(product)
	return &dto, nil
}

// Get returns a product by ID within the tenant
func (s *ProductService) Get(ctx context.Context, tenantID, id uuid.UUID) (*ProductDTO, error) {
	sctx, err := tenant.Scope(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	product, err := s.repo.FindByID(sctx, id)
	if err != nil {
		return nil, err
	}

	dto := ToProductDTO(product)
	return &dto, nil
}

// List returns the tenant's products matching the filter
func (s *ProductService) List(ctx context.Context, tenantID uuid.UUID, filter ListFilter) ([]ProductDTO, error) {
	sctx, err := tenant.Scope(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	products, err := s.repo.FindAll(sctx, filter.ToSharedFilter())
	if err != nil {
		return nil, err
	}

	dtos := make([]ProductDTO, len(products))
	for i := range products {
		dtos[i] = ToProductDTO(&products[i])
	}
	return dtos, nil
}

// Archive retires a product from sale. The row keeps its quota slot.
func (s *ProductService) Archive(ctx context.Context, tenantID, id uuid.UUID) (*ProductDTO, error) {
	sctx, err := tenant.Scope(ctx, tenantID)
	if err != nil {
		return nil, err
	}

	product, err := s.repo.FindByID(sctx, id)
	if err != nil {
		return nil, err
	}
	if err := product.Archive(); err != nil {
		return nil, err
	}
	if err := s.repo.Save(sctx, product); err != nil {
		return nil, err
	}

	dto := ToProductDTO(product)
	return &dto, nil
}

// Delete removes a product, freeing its quota slot
func (s *ProductService) Delete(ctx context.Context, tenantID, id uuid.UUID) error {
	sctx, err := tenant.Scope(ctx, tenantID)
	if err != nil {
		return err
	}
	return s.repo.Delete(sctx, id)
}
