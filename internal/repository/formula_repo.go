package repository

import (
	"context"
	"strings"
	"time"

	"go-inventory-bom/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type FormulaRepository interface {
	WithTx(tx *gorm.DB) FormulaRepository
	Create(ctx context.Context, formula *model.ProductFormula) error
	Update(ctx context.Context, formula *model.ProductFormula) error
	SoftDelete(ctx context.Context, id uuid.UUID, deletedBy string) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.ProductFormula, error)
	NameTaken(ctx context.Context, tenantID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error)
	List(ctx context.Context, tenantID uuid.UUID, search string, page Page) ([]model.ProductFormula, int64, error)

	CreateItem(ctx context.Context, item *model.ProductFormulaItem) error
	UpdateItem(ctx context.Context, item *model.ProductFormulaItem) error
	DeleteItems(ctx context.Context, ids []uuid.UUID, deletedBy string) error
	// CountItemsByUnit counts live items of live formulas that use unitID.
	CountItemsByUnit(ctx context.Context, unitID uuid.UUID) (int64, error)
	CountItemsByRawMaterial(ctx context.Context, rawMaterialID uuid.UUID) (int64, error)
}

type formulaRepo struct {
	db *gorm.DB
}

func NewFormulaRepo(db *gorm.DB) FormulaRepository {
	return &formulaRepo{db}
}

func (r *formulaRepo) WithTx(tx *gorm.DB) FormulaRepository {
	return &formulaRepo{tx}
}

func preloadItems(db *gorm.DB) *gorm.DB {
	return db.Preload("Items", func(db *gorm.DB) *gorm.DB {
		return db.Order("sort_order ASC, created_at ASC")
	}).Preload("Items.RawMaterial").Preload("Items.Unit")
}

// Create inserts the formula together with its items. Item associations must be nil.
func (r *formulaRepo) Create(ctx context.Context, formula *model.ProductFormula) error {
	return r.db.WithContext(ctx).Create(formula).Error
}

// Update saves header fields only; items are reconciled with CreateItem/UpdateItem/DeleteItems.
func (r *formulaRepo) Update(ctx context.Context, formula *model.ProductFormula) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(formula).Error
}

func (r *formulaRepo) SoftDelete(ctx context.Context, id uuid.UUID, deletedBy string) error {
	now := time.Now()
	fields := map[string]interface{}{"deleted_at": now, "deleted_by": deletedBy}
	db := r.db.WithContext(ctx)
	if err := db.Model(&model.ProductFormulaItem{}).Where("product_formula_id = ?", id).Updates(fields).Error; err != nil {
		return err
	}
	return db.Model(&model.ProductFormula{}).Where("id = ?", id).Updates(fields).Error
}

func (r *formulaRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.ProductFormula, error) {
	var formula model.ProductFormula
	err := r.db.WithContext(ctx).Scopes(preloadItems).
		First(&formula, "id = ? AND tenant_id = ?", id, tenantID).Error
	if err != nil {
		return nil, err
	}
	return &formula, nil
}

func (r *formulaRepo) NameTaken(ctx context.Context, tenantID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&model.ProductFormula{}).
		Where("tenant_id = ? AND LOWER(name) = ?", tenantID, strings.ToLower(strings.TrimSpace(name)))
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *formulaRepo) List(ctx context.Context, tenantID uuid.UUID, search string, page Page) ([]model.ProductFormula, int64, error) {
	var (
		formulas []model.ProductFormula
		total    int64
	)
	q := r.db.WithContext(ctx).Model(&model.ProductFormula{}).Where("tenant_id = ?", tenantID)
	if strings.TrimSpace(search) != "" {
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, likePattern(search))
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := page.apply(q).Scopes(preloadItems).Order("name ASC").Find(&formulas).Error
	return formulas, total, err
}

func (r *formulaRepo) CreateItem(ctx context.Context, item *model.ProductFormulaItem) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(item).Error
}

func (r *formulaRepo) UpdateItem(ctx context.Context, item *model.ProductFormulaItem) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(item).Error
}

func (r *formulaRepo) DeleteItems(ctx context.Context, ids []uuid.UUID, deletedBy string) error {
	if len(ids) == 0 {
		return nil
	}
	return r.db.WithContext(ctx).Model(&model.ProductFormulaItem{}).Where("id IN ?", ids).Updates(map[string]interface{}{
		"deleted_at": time.Now(),
		"deleted_by": deletedBy,
	}).Error
}

func (r *formulaRepo) CountItemsByUnit(ctx context.Context, unitID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ProductFormulaItem{}).
		Joins("JOIN product_formulas ON product_formulas.id = product_formula_items.product_formula_id AND product_formulas.deleted_at IS NULL").
		Where("product_formula_items.unit_id = ?", unitID).
		Count(&count).Error
	return count, err
}

func (r *formulaRepo) CountItemsByRawMaterial(ctx context.Context, rawMaterialID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.ProductFormulaItem{}).
		Joins("JOIN product_formulas ON product_formulas.id = product_formula_items.product_formula_id AND product_formulas.deleted_at IS NULL").
		Where("product_formula_items.raw_material_id = ?", rawMaterialID).
		Count(&count).Error
	return count, err
}
