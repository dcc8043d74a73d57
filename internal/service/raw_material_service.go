package service

import (
	"context"
	"fmt"

	"go-inventory-bom/internal/appctx"
	"go-inventory-bom/internal/model"
	"go-inventory-bom/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type RawMaterialService interface {
	CreateRawMaterial(ctx context.Context, req *CreateRawMaterialRequest) (*model.RawMaterial, error)
	UpdateRawMaterial(ctx context.Context, id uuid.UUID, req *UpdateRawMaterialRequest) (*model.RawMaterial, error)
	DeleteRawMaterial(ctx context.Context, id uuid.UUID) error
	GetRawMaterial(ctx context.Context, id uuid.UUID) (*model.RawMaterial, error)
	ListRawMaterials(ctx context.Context, search string, page repository.Page) (*PageResult[model.RawMaterial], error)
	AdjustStock(ctx context.Context, id uuid.UUID, req *AdjustStockRequest) (*model.RawMaterial, error)
}

type CreateRawMaterialRequest struct {
	Name    string          `json:"name" validate:"required,max=255"`
	Barcode string          `json:"barcode" validate:"required,max=100"`
	Price   decimal.Decimal `json:"price" validate:"decimal_gte0"`
	Stock   decimal.Decimal `json:"stock" validate:"decimal_gte0"`
	UnitID  uuid.UUID       `json:"unit_id" validate:"uuid_required"`
}

// UpdateRawMaterialRequest has no stock field; stock moves through AdjustStock, orders and
// unit reassignment only.
type UpdateRawMaterialRequest struct {
	Name    string          `json:"name" validate:"required,max=255"`
	Barcode string          `json:"barcode" validate:"required,max=100"`
	Price   decimal.Decimal `json:"price" validate:"decimal_gte0"`
	UnitID  uuid.UUID       `json:"unit_id" validate:"uuid_required"`
}

// AdjustStockRequest books a delta (positive for goods received) in the native unit.
type AdjustStockRequest struct {
	Delta decimal.Decimal `json:"delta"`
	Note  string          `json:"note" validate:"max=255"`
}

type rawMaterialService struct {
	db                 *gorm.DB
	rawMaterialRepo    repository.RawMaterialRepository
	unitRepo           repository.UnitRepository
	formulaRepo        repository.FormulaRepository
	units              UnitService
	tenants            TenantResolver
	notifier           Notifier
	allowNegativeStock bool
}

func NewRawMaterialService(db *gorm.DB, rawMaterialRepo repository.RawMaterialRepository, unitRepo repository.UnitRepository, formulaRepo repository.FormulaRepository, units UnitService, tenants TenantResolver, notifier Notifier, allowNegativeStock bool) RawMaterialService {
	return &rawMaterialService{
		db:                 db,
		rawMaterialRepo:    rawMaterialRepo,
		unitRepo:           unitRepo,
		formulaRepo:        formulaRepo,
		units:              units,
		tenants:            tenants,
		notifier:           notifier,
		allowNegativeStock: allowNegativeStock,
	}
}

func (s *rawMaterialService) checkBarcode(ctx context.Context, repo repository.RawMaterialRepository, tenantID uuid.UUID, barcode string, excludeID *uuid.UUID) error {
	taken, err := repo.BarcodeTaken(ctx, tenantID, barcode, excludeID)
	if err != nil {
		return fmt.Errorf("check barcode: %w", err)
	}
	if taken {
		return conflict("BarcodeAlreadyExists", barcode)
	}
	return nil
}

func (s *rawMaterialService) CreateRawMaterial(ctx context.Context, req *CreateRawMaterialRequest) (*model.RawMaterial, error) {
	tenant, err := s.tenants.CurrentTenant(ctx)
	if err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	if err := s.checkBarcode(ctx, s.rawMaterialRepo, tenant.ID, req.Barcode, nil); err != nil {
		return nil, err
	}
	unit, err := s.unitRepo.FindVisible(ctx, tenant.ID, req.UnitID)
	if isNotFound(err) {
		return nil, notFound("Unit")
	}
	if err != nil {
		return nil, fmt.Errorf("find unit: %w", err)
	}

	by := appctx.UserID(ctx)
	rm := &model.RawMaterial{
		TenantID: tenant.ID,
		Name:     req.Name,
		Barcode:  req.Barcode,
		Price:    req.Price,
		Stock:    roundQuantity(req.Stock),
		UnitID:   unit.ID,
	}
	rm.CreatedBy = by
	rm.UpdatedBy = by
	if err := s.rawMaterialRepo.Create(ctx, rm); err != nil {
		return nil, fmt.Errorf("create raw material: %w", err)
	}
	rm.Unit = unit
	return rm, nil
}

// UpdateRawMaterial rewrites Stock into the new unit when UnitID changes. The factor is taken
// while the stored row still points at the old unit, then Stock and UnitID are written together.
func (s *rawMaterialService) UpdateRawMaterial(ctx context.Context, id uuid.UUID, req *UpdateRawMaterialRequest) (*model.RawMaterial, error) {
	tenant, err := s.tenants.CurrentTenant(ctx)
	if err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	var rm *model.RawMaterial
	err = s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.rawMaterialRepo.WithTx(tx)
		existing, err := repo.FindByIDForUpdate(ctx, tenant.ID, id)
		if isNotFound(err) {
			return notFound("RawMaterial")
		}
		if err != nil {
			return fmt.Errorf("lock raw material: %w", err)
		}
		rm = existing
		if err := s.checkBarcode(ctx, repo, tenant.ID, req.Barcode, &rm.ID); err != nil {
			return err
		}

		rm.Name = req.Name
		rm.Barcode = req.Barcode
		rm.Price = req.Price
		rm.UpdatedBy = appctx.UserID(ctx)

		if req.UnitID != rm.UnitID {
			rate, err := s.units.WithTx(tx).ConvertUnit(ctx, req.UnitID, rm.ID)
			if err != nil {
				return err
			}
			if rate.IsZero() {
				return validationFailed("ConversionFactorUnderflow", rm.UnitID.String(), req.UnitID.String())
			}
			rm.Stock = roundQuantity(rm.Stock.Mul(rate))
			rm.UnitID = req.UnitID
		}

		if err := repo.Update(ctx, rm); err != nil {
			return fmt.Errorf("update raw material: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notifyStock(ctx, tenant.ID, rm, "raw_material_updated")
	return rm, nil
}

func (s *rawMaterialService) DeleteRawMaterial(ctx context.Context, id uuid.UUID) error {
	tenant, err := s.tenants.CurrentTenant(ctx)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.rawMaterialRepo.WithTx(tx)
		if _, err := repo.FindByIDForUpdate(ctx, tenant.ID, id); isNotFound(err) {
			return notFound("RawMaterial")
		} else if err != nil {
			return fmt.Errorf("lock raw material: %w", err)
		}
		used, err := s.formulaRepo.WithTx(tx).CountItemsByRawMaterial(ctx, id)
		if err != nil {
			return fmt.Errorf("count formula items: %w", err)
		}
		if used > 0 {
			return invariant("RawMaterialUsedByFormula")
		}
		return repo.SoftDelete(ctx, id, appctx.UserID(ctx))
	})
}

func (s *rawMaterialService) GetRawMaterial(ctx context.Context, id uuid.UUID) (*model.RawMaterial, error) {
	tenant, err := s.tenants.CurrentTenant(ctx)
	if err != nil {
		return nil, err
	}
	rm, err := s.rawMaterialRepo.FindByID(ctx, tenant.ID, id)
	if isNotFound(err) {
		return nil, notFound("RawMaterial")
	}
	if err != nil {
		return nil, fmt.Errorf("find raw material: %w", err)
	}
	return rm, nil
}

func (s *rawMaterialService) ListRawMaterials(ctx context.Context, search string, page repository.Page) (*PageResult[model.RawMaterial], error) {
	tenant, err := s.tenants.CurrentTenant(ctx)
	if err != nil {
		return nil, err
	}
	items, total, err := s.rawMaterialRepo.List(ctx, tenant.ID, search, page)
	if err != nil {
		return nil, fmt.Errorf("list raw materials: %w", err)
	}
	return newPage(items, total, page), nil
}

func (s *rawMaterialService) AdjustStock(ctx context.Context, id uuid.UUID, req *AdjustStockRequest) (*model.RawMaterial, error) {
	tenant, err := s.tenants.CurrentTenant(ctx)
	if err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}
	if req.Delta.IsZero() {
		return nil, validationFailed("QuantityMustBePositive")
	}

	var rm *model.RawMaterial
	err = s.db.Transaction(func(tx *gorm.DB) error {
		repo := s.rawMaterialRepo.WithTx(tx)
		existing, err := repo.FindByIDForUpdate(ctx, tenant.ID, id)
		if isNotFound(err) {
			return notFound("RawMaterial")
		}
		if err != nil {
			return fmt.Errorf("lock raw material: %w", err)
		}
		rm = existing
		stock := roundQuantity(rm.Stock.Add(req.Delta))
		if stock.IsNegative() && !s.allowNegativeStock {
			return badRequest("InsufficientRawMaterialStock", rm.Name)
		}
		rm.Stock = stock
		rm.UpdatedBy = appctx.UserID(ctx)
		if err := repo.UpdateStock(ctx, rm.ID, rm.Stock, rm.UpdatedBy); err != nil {
			return fmt.Errorf("update stock: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	s.notifyStock(ctx, tenant.ID, rm, "stock_adjusted")
	return rm, nil
}

func (s *rawMaterialService) notifyStock(ctx context.Context, tenantID uuid.UUID, rm *model.RawMaterial, action string) {
	userName, _ := appctx.GetString(ctx, appctx.ContextKeyUserName)
	go s.notifier.Notify(tenantID, map[string]interface{}{
		"type":   "stock_update",
		"action": action,
		"raw_material": map[string]interface{}{
			"id":      rm.ID.String(),
			"name":    rm.Name,
			"unit_id": rm.UnitID.String(),
			"stock":   rm.Stock.String(),
		},
		"user": map[string]interface{}{
			"id":   appctx.UserID(ctx),
			"name": userName,
		},
	})
}
