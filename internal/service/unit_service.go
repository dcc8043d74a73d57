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

type UnitService interface {
	// WithTx binds the service to an open transaction so callers can convert inside it.
	WithTx(tx *gorm.DB) UnitService
	CreateUnit(ctx context.Context, req *CreateUnitRequest) (*model.Unit, error)
	UpdateUnit(ctx context.Context, id uuid.UUID, req *UpdateUnitRequest) (*model.Unit, error)
	DeleteUnit(ctx context.Context, id uuid.UUID) error
	GetUnit(ctx context.Context, id uuid.UUID) (*model.Unit, error)
	ListUnits(ctx context.Context, search string, page repository.Page) (*PageResult[model.Unit], error)
	RateToRoot(ctx context.Context, unitID uuid.UUID) (decimal.Decimal, error)
	// ConvertUnit returns f with qty_in_target = qty_in_native * f for the raw material's native unit.
	ConvertUnit(ctx context.Context, targetUnitID, rawMaterialID uuid.UUID) (decimal.Decimal, error)
	// ToNative converts qty given in unitID into the raw material's native unit without going
	// through the rounded factor, so large units do not amplify its rounding error.
	ToNative(ctx context.Context, qty decimal.Decimal, unitID, rawMaterialID uuid.UUID) (decimal.Decimal, error)
}

type CreateUnitRequest struct {
	Name           string          `json:"name" validate:"required,max=100"`
	ShortCode      string          `json:"short_code" validate:"required,max=20"`
	ConversionRate decimal.Decimal `json:"conversion_rate" validate:"decimal_gt0"`
	ParentUnitID   uuid.UUID       `json:"parent_unit_id" validate:"uuid_required"`
}

type UpdateUnitRequest struct {
	Name           string          `json:"name" validate:"required,max=100"`
	ShortCode      string          `json:"short_code" validate:"required,max=20"`
	ConversionRate decimal.Decimal `json:"conversion_rate" validate:"decimal_gt0"`
	ParentUnitID   uuid.UUID       `json:"parent_unit_id" validate:"uuid_required"`
}

type unitService struct {
	db              *gorm.DB
	unitRepo        repository.UnitRepository
	rawMaterialRepo repository.RawMaterialRepository
	formulaRepo     repository.FormulaRepository
	tenants         TenantResolver
}

func NewUnitService(db *gorm.DB, unitRepo repository.UnitRepository, rawMaterialRepo repository.RawMaterialRepository, formulaRepo repository.FormulaRepository, tenants TenantResolver) UnitService {
	return &unitService{
		db:              db,
		unitRepo:        unitRepo,
		rawMaterialRepo: rawMaterialRepo,
		formulaRepo:     formulaRepo,
		tenants:         tenants,
	}
}

func (s *unitService) WithTx(tx *gorm.DB) UnitService {
	return &unitService{
		db:              tx,
		unitRepo:        s.unitRepo.WithTx(tx),
		rawMaterialRepo: s.rawMaterialRepo.WithTx(tx),
		formulaRepo:     s.formulaRepo.WithTx(tx),
		tenants:         s.tenants,
	}
}

func (s *unitService) withTx(tx *gorm.DB) *unitService {
	return s.WithTx(tx).(*unitService)
}

func (s *unitService) findVisible(ctx context.Context, tenantID, id uuid.UUID) (*model.Unit, error) {
	unit, err := s.unitRepo.FindVisible(ctx, tenantID, id)
	if isNotFound(err) {
		return nil, notFound("Unit")
	}
	if err != nil {
		return nil, fmt.Errorf("find unit %s: %w", id, err)
	}
	return unit, nil
}

// walk follows ParentUnitID from unit to its root. It returns the accumulated rate and the
// ids met on the way, unit itself included.
func (s *unitService) walk(ctx context.Context, tenantID uuid.UUID, unit *model.Unit) (decimal.Decimal, map[uuid.UUID]bool, error) {
	rate := decimal.NewFromInt(1)
	seen := map[uuid.UUID]bool{}
	for current := unit; ; {
		if seen[current.ID] {
			return decimal.Zero, nil, invariant("UnitGraphCycle", current.ShortCode)
		}
		seen[current.ID] = true
		if current.IsRoot() {
			return rate, seen, nil
		}
		rate = rate.Mul(current.ConversionRate)
		parent, err := s.findVisible(ctx, tenantID, *current.ParentUnitID)
		if err != nil {
			return decimal.Zero, nil, err
		}
		current = parent
	}
}

func (s *unitService) RateToRoot(ctx context.Context, unitID uuid.UUID) (decimal.Decimal, error) {
	tenant, err := s.tenants.CurrentTenant(ctx)
	if err != nil {
		return decimal.Zero, err
	}
	unit, err := s.findVisible(ctx, tenant.ID, unitID)
	if err != nil {
		return decimal.Zero, err
	}
	rate, _, err := s.walk(ctx, tenant.ID, unit)
	return rate, err
}

func (s *unitService) ConvertUnit(ctx context.Context, targetUnitID, rawMaterialID uuid.UUID) (decimal.Decimal, error) {
	native, target, err := s.resolveConversion(ctx, targetUnitID, rawMaterialID)
	if err != nil {
		return decimal.Zero, err
	}
	if target == nil {
		return decimal.NewFromInt(1), nil
	}
	return conversionFactor(native.RateToRoot, target.RateToRoot), nil
}

func (s *unitService) ToNative(ctx context.Context, qty decimal.Decimal, unitID, rawMaterialID uuid.UUID) (decimal.Decimal, error) {
	native, unit, err := s.resolveConversion(ctx, unitID, rawMaterialID)
	if err != nil {
		return decimal.Zero, err
	}
	if unit == nil {
		return roundQuantity(qty), nil
	}
	return scaleQuantity(qty, unit.RateToRoot, native.RateToRoot), nil
}

// resolveConversion loads the raw material's native unit and the other unit and checks they
// share a type. other is nil when the unit is the native one.
func (s *unitService) resolveConversion(ctx context.Context, unitID, rawMaterialID uuid.UUID) (native, other *model.Unit, err error) {
	tenant, err := s.tenants.CurrentTenant(ctx)
	if err != nil {
		return nil, nil, err
	}
	rm, err := s.rawMaterialRepo.FindByID(ctx, tenant.ID, rawMaterialID)
	if isNotFound(err) {
		return nil, nil, notFound("RawMaterial")
	}
	if err != nil {
		return nil, nil, fmt.Errorf("find raw material %s: %w", rawMaterialID, err)
	}
	if rm.UnitID == unitID {
		return nil, nil, nil
	}

	native, err = s.findVisible(ctx, tenant.ID, rm.UnitID)
	if err != nil {
		return nil, nil, err
	}
	other, err = s.findVisible(ctx, tenant.ID, unitID)
	if err != nil {
		return nil, nil, err
	}
	if native.UnitType != other.UnitType {
		return nil, nil, newError(ErrUnitTypeMismatch, "UnitTypeMismatch", string(native.UnitType), string(other.UnitType))
	}
	return native, other, nil
}

func (s *unitService) checkUnique(ctx context.Context, tenantID uuid.UUID, name, shortCode string, excludeID *uuid.UUID) error {
	taken, err := s.unitRepo.NameTaken(ctx, tenantID, name, excludeID)
	if err != nil {
		return fmt.Errorf("check unit name: %w", err)
	}
	if taken {
		return conflict("NameAlreadyExists", name)
	}
	taken, err = s.unitRepo.ShortCodeTaken(ctx, tenantID, shortCode, excludeID)
	if err != nil {
		return fmt.Errorf("check unit short code: %w", err)
	}
	if taken {
		return conflict("ShortCodeAlreadyExists", shortCode)
	}
	return nil
}

func (s *unitService) CreateUnit(ctx context.Context, req *CreateUnitRequest) (*model.Unit, error) {
	tenant, err := s.tenants.CurrentTenant(ctx)
	if err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	var unit *model.Unit
	err = s.db.Transaction(func(tx *gorm.DB) error {
		txs := s.withTx(tx)
		if err := txs.checkUnique(ctx, tenant.ID, req.Name, req.ShortCode, nil); err != nil {
			return err
		}
		parent, err := txs.findVisible(ctx, tenant.ID, req.ParentUnitID)
		if err != nil {
			return err
		}
		parentRate, _, err := txs.walk(ctx, tenant.ID, parent)
		if err != nil {
			return err
		}

		by := appctx.UserID(ctx)
		unit = &model.Unit{
			Name:           req.Name,
			ShortCode:      req.ShortCode,
			UnitType:       parent.UnitType,
			ConversionRate: req.ConversionRate,
			ParentUnitID:   &parent.ID,
			RateToRoot:     req.ConversionRate.Mul(parentRate),
			TenantID:       &tenant.ID,
		}
		unit.CreatedBy = by
		unit.UpdatedBy = by
		if err := txs.unitRepo.Create(ctx, unit); err != nil {
			return fmt.Errorf("create unit: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return unit, nil
}

func (s *unitService) inUse(ctx context.Context, unitID uuid.UUID) (bool, error) {
	children, err := s.unitRepo.CountChildren(ctx, unitID)
	if err != nil {
		return false, err
	}
	materials, err := s.rawMaterialRepo.CountByUnit(ctx, unitID)
	if err != nil {
		return false, err
	}
	items, err := s.formulaRepo.CountItemsByUnit(ctx, unitID)
	if err != nil {
		return false, err
	}
	return children+materials+items > 0, nil
}

// UpdateUnit re-points the unit and recomputes RateToRoot for it and every descendant in the
// same transaction, so no cached rate below the unit goes stale.
func (s *unitService) UpdateUnit(ctx context.Context, id uuid.UUID, req *UpdateUnitRequest) (*model.Unit, error) {
	tenant, err := s.tenants.CurrentTenant(ctx)
	if err != nil {
		return nil, err
	}
	if err := validate(req); err != nil {
		return nil, err
	}

	var unit *model.Unit
	err = s.db.Transaction(func(tx *gorm.DB) error {
		txs := s.withTx(tx)
		existing, err := txs.findVisible(ctx, tenant.ID, id)
		if err != nil {
			return err
		}
		if !existing.OwnedBy(tenant.ID) {
			return invariant("GlobalUnitReadOnly")
		}
		unit = existing
		if err := txs.checkUnique(ctx, tenant.ID, req.Name, req.ShortCode, &unit.ID); err != nil {
			return err
		}

		if req.ParentUnitID == unit.ID {
			return invariant("UnitParentCycle")
		}
		parent, err := txs.findVisible(ctx, tenant.ID, req.ParentUnitID)
		if err != nil {
			return err
		}
		parentRate, ancestors, err := txs.walk(ctx, tenant.ID, parent)
		if err != nil {
			return err
		}
		if ancestors[unit.ID] {
			return invariant("UnitParentCycle")
		}

		if parent.UnitType != unit.UnitType {
			used, err := txs.inUse(ctx, unit.ID)
			if err != nil {
				return fmt.Errorf("check unit usage: %w", err)
			}
			if used {
				return newError(ErrUnitTypeMismatch, "UnitTypeLocked")
			}
		}

		by := appctx.UserID(ctx)
		unit.Name = req.Name
		unit.ShortCode = req.ShortCode
		unit.ConversionRate = req.ConversionRate
		unit.ParentUnitID = &parent.ID
		unit.UnitType = parent.UnitType
		unit.RateToRoot = req.ConversionRate.Mul(parentRate)
		unit.UpdatedBy = by
		if err := txs.unitRepo.Update(ctx, unit); err != nil {
			return fmt.Errorf("update unit: %w", err)
		}
		return txs.recomputeDescendants(ctx, unit, by)
	})
	if err != nil {
		return nil, err
	}
	return unit, nil
}

func (s *unitService) recomputeDescendants(ctx context.Context, root *model.Unit, by string) error {
	queue := []*model.Unit{root}
	seen := map[uuid.UUID]bool{root.ID: true}
	for len(queue) > 0 {
		parent := queue[0]
		queue = queue[1:]
		children, err := s.unitRepo.FindChildren(ctx, parent.ID)
		if err != nil {
			return fmt.Errorf("find child units: %w", err)
		}
		for i := range children {
			child := &children[i]
			if seen[child.ID] {
				return invariant("UnitGraphCycle", child.ShortCode)
			}
			seen[child.ID] = true
			child.RateToRoot = child.ConversionRate.Mul(parent.RateToRoot)
			if err := s.unitRepo.UpdateRateToRoot(ctx, child.ID, child.RateToRoot, by); err != nil {
				return fmt.Errorf("update rate to root: %w", err)
			}
			queue = append(queue, child)
		}
	}
	return nil
}

func (s *unitService) DeleteUnit(ctx context.Context, id uuid.UUID) error {
	tenant, err := s.tenants.CurrentTenant(ctx)
	if err != nil {
		return err
	}
	return s.db.Transaction(func(tx *gorm.DB) error {
		txs := s.withTx(tx)
		unit, err := txs.findVisible(ctx, tenant.ID, id)
		if err != nil {
			return err
		}
		if !unit.OwnedBy(tenant.ID) {
			return invariant("GlobalUnitReadOnly")
		}

		children, err := txs.unitRepo.CountChildren(ctx, id)
		if err != nil {
			return fmt.Errorf("count child units: %w", err)
		}
		if children > 0 {
			return invariant("UnitHasChildUnit")
		}
		materials, err := txs.rawMaterialRepo.CountByUnit(ctx, id)
		if err != nil {
			return fmt.Errorf("count raw materials: %w", err)
		}
		if materials > 0 {
			return invariant("UnitHasProductRawMaterial")
		}
		items, err := txs.formulaRepo.CountItemsByUnit(ctx, id)
		if err != nil {
			return fmt.Errorf("count formula items: %w", err)
		}
		if items > 0 {
			return invariant("UnitHasProductFormulation")
		}

		return txs.unitRepo.SoftDelete(ctx, id, appctx.UserID(ctx))
	})
}

func (s *unitService) GetUnit(ctx context.Context, id uuid.UUID) (*model.Unit, error) {
	tenant, err := s.tenants.CurrentTenant(ctx)
	if err != nil {
		return nil, err
	}
	return s.findVisible(ctx, tenant.ID, id)
}

func (s *unitService) ListUnits(ctx context.Context, search string, page repository.Page) (*PageResult[model.Unit], error) {
	tenant, err := s.tenants.CurrentTenant(ctx)
	if err != nil {
		return nil, err
	}
	units, total, err := s.unitRepo.List(ctx, tenant.ID, search, page)
	if err != nil {
		return nil, fmt.Errorf("list units: %w", err)
	}
	return newPage(units, total, page), nil
}
