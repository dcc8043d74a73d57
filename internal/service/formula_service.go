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

type FormulaService interface {
	CreateFormula(ctx context.Context, req *CreateFormulaRequest) (*model.ProductFormula, error)
	UpdateFormula(ctx context.Context, id uuid.UUID, req *UpdateFormulaRequest) (*model.ProductFormula, error)
	DeleteFormula(ctx context.Context, id uuid.UUID) error
	GetFormula(ctx context.Context, id uuid.UUID) (*model.ProductFormula, error)
	ListFormulas(ctx context.Context, search string, page repository.Page) (*PageResult[model.ProductFormula], error)
}

type FormulaItemRequest struct {
	// ID is empty for new items and set for items being kept.
	ID            *uuid.UUID      `json:"id"`
	RawMaterialID uuid.UUID       `json:"raw_material_id" validate:"uuid_required"`
	Quantity      decimal.Decimal `json:"quantity" validate:"decimal_gt0"`
	UnitID        uuid.UUID       `json:"unit_id" validate:"uuid_required"`
}

type CreateFormulaRequest struct {
	Name  string               `json:"name" validate:"required,max=255"`
	Items []FormulaItemRequest `json:"items" validate:"min=1,dive"`
}

type UpdateFormulaRequest struct {
	Name  string               `json:"name" validate:"required,max=255"`
	Items []FormulaItemRequest `json:"items" validate:"min=1,dive"`
}

type formulaService struct {
	db              *gorm.DB
	formulaRepo     repository.FormulaRepository
	rawMaterialRepo repository.RawMaterialRepository
	unitRepo        repository.UnitRepository
	productRepo     repository.ProductRepository
	tenants         TenantResolver
}

func NewFormulaService(db *gorm.DB, formulaRepo repository.FormulaRepository, rawMaterialRepo repository.RawMaterialRepository, unitRepo repository.UnitRepository, productRepo repository.ProductRepository, tenants TenantResolver) FormulaService {
	return &formulaService{
		db:              db,
		formulaRepo:     formulaRepo,
		rawMaterialRepo: rawMaterialRepo,
		unitRepo:        unitRepo,
		productRepo:     productRepo,
		tenants:         tenants,
	}
}

// formulaTx bundles the repositories bound to one transaction.
type formulaTx struct {
	formulas     repository.FormulaRepository
	rawMaterials repository.RawMaterialRepository
	units        repository.UnitRepository
	products     repository.ProductRepository
}

func (s *formulaService) bind(tx *gorm.DB) formulaTx {
	return formulaTx{
		formulas:     s.formulaRepo.WithTx(tx),
		rawMaterials: s.rawMaterialRepo.WithTx(tx),
		units:        s.unitRepo.WithTx(tx),
		products:     s.productRepo.WithTx(tx),
	}
}

func (r formulaTx) checkName(ctx context.Context, tenantID uuid.UUID, name string, excludeID *uuid.UUID) error {
	taken, err := r.formulas.NameTaken(ctx, tenantID, name, excludeID)
	if err != nil {
		return fmt.Errorf("check formula name: %w", err)
	}
	if taken {
		return conflict("NameAlreadyExists", name)
	}
	return nil
}

// resolveItem checks the raw material and unit are visible and of the same unit type.
func (r formulaTx) resolveItem(ctx context.Context, tenantID uuid.UUID, req FormulaItemRequest) error {
	rm, err := r.rawMaterials.FindByID(ctx, tenantID, req.RawMaterialID)
	if isNotFound(err) {
		return notFound("RawMaterial")
	}
	if err != nil {
		return fmt.Errorf("find raw material: %w", err)
	}
	native, err := r.units.FindVisible(ctx, tenantID, rm.UnitID)
	if isNotFound(err) {
		return notFound("Unit")
	}
	if err != nil {
		return fmt.Errorf("find unit: %w", err)
	}
	unit, err := r.units.FindVisible(ctx, tenantID, req.UnitID)
	if isNotFound(err) {
		return notFound("Unit")
	}
	if err != nil {
		return fmt.Errorf("find unit: %w", err)
	}
	if unit.UnitType != native.UnitType {
		return newError(ErrUnitTypeMismatch, "UnitTypeMismatch", string(unit.UnitType), string(native.UnitType))
	}
	return nil
}

func (s *formulaService) CreateFormula(ctx context.Context, req *CreateFormulaRequest) (*model.ProductFormula, error) {
	tenant, err := s.tenants.CurrentTenant(ctx)
	if err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	var formula *model.ProductFormula
	err = s.db.Transaction(func(tx *gorm.DB) error {
		r := s.bind(tx)
		if err := r.checkName(ctx, tenant.ID, req.Name, nil); err != nil {
			return err
		}

		by := appctx.UserID(ctx)
		formula = &model.ProductFormula{TenantID: tenant.ID, Name: req.Name}
		formula.CreatedBy = by
		formula.UpdatedBy = by
		for i, itemReq := range req.Items {
			if err := r.resolveItem(ctx, tenant.ID, itemReq); err != nil {
				return err
			}
			item := model.ProductFormulaItem{
				RawMaterialID: itemReq.RawMaterialID,
				Quantity:      itemReq.Quantity,
				UnitID:        itemReq.UnitID,
				SortOrder:     i,
			}
			item.CreatedBy = by
			item.UpdatedBy = by
			formula.Items = append(formula.Items, item)
		}
		if err := r.formulas.Create(ctx, formula); err != nil {
			return fmt.Errorf("create formula: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetFormula(ctx, formula.ID)
}

// UpdateFormula reconciles items by id: new items are inserted, kept items updated in place
// and stored items missing from the request soft deleted.
func (s *formulaService) UpdateFormula(ctx context.Context, id uuid.UUID, req *UpdateFormulaRequest) (*model.ProductFormula, error) {
	tenant, err := s.tenants.CurrentTenant(ctx)
	if err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	err = s.db.Transaction(func(tx *gorm.DB) error {
		r := s.bind(tx)
		formula, err := r.formulas.FindByID(ctx, tenant.ID, id)
		if isNotFound(err) {
			return notFound("ProductFormula")
		}
		if err != nil {
			return fmt.Errorf("find formula: %w", err)
		}
		if err := r.checkName(ctx, tenant.ID, req.Name, &formula.ID); err != nil {
			return err
		}

		by := appctx.UserID(ctx)
		formula.Name = req.Name
		formula.UpdatedBy = by
		if err := r.formulas.Update(ctx, formula); err != nil {
			return fmt.Errorf("update formula: %w", err)
		}

		stored := make(map[uuid.UUID]*model.ProductFormulaItem, len(formula.Items))
		for i := range formula.Items {
			stored[formula.Items[i].ID] = &formula.Items[i]
		}
		kept := make(map[uuid.UUID]bool, len(req.Items))

		for i, itemReq := range req.Items {
			if err := r.resolveItem(ctx, tenant.ID, itemReq); err != nil {
				return err
			}
			if itemReq.ID == nil || *itemReq.ID == uuid.Nil {
				item := &model.ProductFormulaItem{
					ProductFormulaID: formula.ID,
					RawMaterialID:    itemReq.RawMaterialID,
					Quantity:         itemReq.Quantity,
					UnitID:           itemReq.UnitID,
					SortOrder:        i,
				}
				item.CreatedBy = by
				item.UpdatedBy = by
				if err := r.formulas.CreateItem(ctx, item); err != nil {
					return fmt.Errorf("create formula item: %w", err)
				}
				continue
			}

			item, ok := stored[*itemReq.ID]
			if !ok {
				return notFound("ProductFormulaItem")
			}
			kept[item.ID] = true
			item.RawMaterialID = itemReq.RawMaterialID
			item.Quantity = itemReq.Quantity
			item.UnitID = itemReq.UnitID
			item.SortOrder = i
			item.UpdatedBy = by
			item.RawMaterial = nil
			item.Unit = nil
			if err := r.formulas.UpdateItem(ctx, item); err != nil {
				return fmt.Errorf("update formula item: %w", err)
			}
		}

		var removed []uuid.UUID
		for _, item := range formula.Items {
			if !kept[item.ID] {
				removed = append(removed, item.ID)
			}
		}
		if err := r.formulas.DeleteItems(ctx, removed, by); err != nil {
			return fmt.Errorf("delete formula items: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return s.GetFormula(ctx, id)
}

func (s *formulaService) DeleteFormula(ctx context.Context, id uuid.UUID) error {
	tenant, err := s.tenants.CurrentTenant(ctx)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		r := s.bind(tx)
		if _, err := r.formulas.FindByID(ctx, tenant.ID, id); isNotFound(err) {
			return notFound("ProductFormula")
		} else if err != nil {
			return fmt.Errorf("find formula: %w", err)
		}
		used, err := r.products.CountByFormula(ctx, id)
		if err != nil {
			return fmt.Errorf("count products: %w", err)
		}
		if used > 0 {
			return invariant("ProductFormulaUsedByProduct")
		}
		return r.formulas.SoftDelete(ctx, id, appctx.UserID(ctx))
	})
}

func (s *formulaService) GetFormula(ctx context.Context, id uuid.UUID) (*model.ProductFormula, error) {
	tenant, err := s.tenants.CurrentTenant(ctx)
	if err != nil {
		return nil, err
	}
	formula, err := s.formulaRepo.FindByID(ctx, tenant.ID, id)
	if isNotFound(err) {
		return nil, notFound("ProductFormula")
	}
	if err != nil {
		return nil, fmt.Errorf("find formula: %w", err)
	}
	return formula, nil
}

func (s *formulaService) ListFormulas(ctx context.Context, search string, page repository.Page) (*PageResult[model.ProductFormula], error) {
	tenant, err := s.tenants.CurrentTenant(ctx)
	if err != nil {
		return nil, err
	}
	formulas, total, err := s.formulaRepo.List(ctx, tenant.ID, search, page)
	if err != nil {
		return nil, fmt.Errorf("list formulas: %w", err)
	}
	return newPage(formulas, total, page), nil
}
