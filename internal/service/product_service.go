package service

import (
	"context"
	"fmt"

	"go-inventory-bom/internal/appctx"
	"go-inventory-bom/internal/model"
	"go-inventory-bom/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ProductService interface {
	CreateProduct(ctx context.Context, req *ProductRequest) (*model.Product, error)
	UpdateProduct(ctx context.Context, id uuid.UUID, req *ProductRequest) (*model.Product, error)
	DeleteProduct(ctx context.Context, id uuid.UUID) error
	GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error)
	ListProducts(ctx context.Context, search string, page repository.Page) (*PageResult[model.Product], error)
}

type ProductRequest struct {
	SKU              string          `json:"sku" validate:"required,max=50"`
	Name             string          `json:"name" validate:"required,max=255"`
	Price            decimal.Decimal `json:"price" validate:"decimal_gte0"`
	ProductFormulaID *uuid.UUID      `json:"product_formula_id"`
}

type productService struct {
	productRepo repository.ProductRepository
	formulaRepo repository.FormulaRepository
	tenants     TenantResolver
}

func NewProductService(productRepo repository.ProductRepository, formulaRepo repository.FormulaRepository, tenants TenantResolver) ProductService {
	return &productService{
		productRepo: productRepo,
		formulaRepo: formulaRepo,
		tenants:     tenants,
	}
}

func (s *productService) check(ctx context.Context, tenantID uuid.UUID, req *ProductRequest, excludeID *uuid.UUID) error {
	if err := validate(req); err != nil {
		return err
	}
	taken, err := s.productRepo.SKUTaken(ctx, tenantID, req.SKU, excludeID)
	if err != nil {
		return fmt.Errorf("check sku: %w", err)
	}
	if taken {
		return conflict("SkuAlreadyExists", req.SKU)
	}
	if req.ProductFormulaID != nil {
		if _, err := s.formulaRepo.FindByID(ctx, tenantID, *req.ProductFormulaID); isNotFound(err) {
			return notFound("ProductFormula")
		} else if err != nil {
			return fmt.Errorf("find formula: %w", err)
		}
	}
	return nil
}

func (s *productService) CreateProduct(ctx context.Context, req *ProductRequest) (*model.Product, error) {
	tenant, err := s.tenants.CurrentTenant(ctx)
	if err != nil {
		return nil, err
	}
	if err := s.check(ctx, tenant.ID, req, nil); err != nil {
		return nil, err
	}

	by := appctx.UserID(ctx)
	product := &model.Product{
		TenantID:         tenant.ID,
		SKU:              req.SKU,
		Name:             req.Name,
		Price:            req.Price,
		ProductFormulaID: req.ProductFormulaID,
	}
	product.CreatedBy = by
	product.UpdatedBy = by
	if err := s.productRepo.Create(ctx, product); err != nil {
		return nil, fmt.Errorf("create product: %w", err)
	}
	return product, nil
}

func (s *productService) UpdateProduct(ctx context.Context, id uuid.UUID, req *ProductRequest) (*model.Product, error) {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.check(ctx, product.TenantID, req, &product.ID); err != nil {
		return nil, err
	}

	product.SKU = req.SKU
	product.Name = req.Name
	product.Price = req.Price
	product.ProductFormulaID = req.ProductFormulaID
	product.UpdatedBy = appctx.UserID(ctx)
	if err := s.productRepo.Update(ctx, product); err != nil {
		return nil, fmt.Errorf("update product: %w", err)
	}
	return product, nil
}

func (s *productService) DeleteProduct(ctx context.Context, id uuid.UUID) error {
	product, err := s.GetProduct(ctx, id)
	if err != nil {
		return err
	}
	return s.productRepo.SoftDelete(ctx, product.ID, appctx.UserID(ctx))
}

func (s *productService) GetProduct(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	tenant, err := s.tenants.CurrentTenant(ctx)
	if err != nil {
		return nil, err
	}
	product, err := s.productRepo.FindByID(ctx, tenant.ID, id)
	if isNotFound(err) {
		return nil, notFound("Product")
	}
	if err != nil {
		return nil, fmt.Errorf("find product: %w", err)
	}
	return product, nil
}

func (s *productService) ListProducts(ctx context.Context, search string, page repository.Page) (*PageResult[model.Product], error) {
	tenant, err := s.tenants.CurrentTenant(ctx)
	if err != nil {
		return nil, err
	}
	products, total, err := s.productRepo.List(ctx, tenant.ID, search, page)
	if err != nil {
		return nil, fmt.Errorf("list products: %w", err)
	}
	return newPage(products, total, page), nil
}
