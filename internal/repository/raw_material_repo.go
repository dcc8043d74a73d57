package repository

import (
	"context"
	"strings"
	"time"

	"go-inventory-bom/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type RawMaterialRepository interface {
	WithTx(tx *gorm.DB) RawMaterialRepository
	Create(ctx context.Context, rm *model.RawMaterial) error
	Update(ctx context.Context, rm *model.RawMaterial) error
	UpdateStock(ctx context.Context, id uuid.UUID, stock decimal.Decimal, updatedBy string) error
	SoftDelete(ctx context.Context, id uuid.UUID, deletedBy string) error
	FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.RawMaterial, error)
	// FindByIDForUpdate reads the row with a FOR UPDATE lock; call it inside a transaction.
	FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*model.RawMaterial, error)
	BarcodeTaken(ctx context.Context, tenantID uuid.UUID, barcode string, excludeID *uuid.UUID) (bool, error)
	CountByUnit(ctx context.Context, unitID uuid.UUID) (int64, error)
	List(ctx context.Context, tenantID uuid.UUID, search string, page Page) ([]model.RawMaterial, int64, error)
}

type rawMaterialRepo struct {
	db *gorm.DB
}

func NewRawMaterialRepo(db *gorm.DB) RawMaterialRepository {
	return &rawMaterialRepo{db}
}

func (r *rawMaterialRepo) WithTx(tx *gorm.DB) RawMaterialRepository {
	return &rawMaterialRepo{tx}
}

func (r *rawMaterialRepo) Create(ctx context.Context, rm *model.RawMaterial) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(rm).Error
}

func (r *rawMaterialRepo) Update(ctx context.Context, rm *model.RawMaterial) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(rm).Error
}

func (r *rawMaterialRepo) UpdateStock(ctx context.Context, id uuid.UUID, stock decimal.Decimal, updatedBy string) error {
	return r.db.WithContext(ctx).Model(&model.RawMaterial{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"stock":      stock,
			"updated_by": updatedBy,
		}).Error
}

func (r *rawMaterialRepo) SoftDelete(ctx context.Context, id uuid.UUID, deletedBy string) error {
	return r.db.WithContext(ctx).Model(&model.RawMaterial{}).Where("id = ?", id).Updates(map[string]interface{}{
		"deleted_at": time.Now(),
		"deleted_by": deletedBy,
	}).Error
}

func (r *rawMaterialRepo) FindByID(ctx context.Context, tenantID, id uuid.UUID) (*model.RawMaterial, error) {
	var rm model.RawMaterial
	err := r.db.WithContext(ctx).Preload("Unit").
		First(&rm, "id = ? AND tenant_id = ?", id, tenantID).Error
	if err != nil {
		return nil, err
	}
	return &rm, nil
}

func (r *rawMaterialRepo) FindByIDForUpdate(ctx context.Context, tenantID, id uuid.UUID) (*model.RawMaterial, error) {
	var rm model.RawMaterial
	err := r.db.WithContext(ctx).Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&rm, "id = ? AND tenant_id = ?", id, tenantID).Error
	if err != nil {
		return nil, err
	}
	return &rm, nil
}

func (r *rawMaterialRepo) BarcodeTaken(ctx context.Context, tenantID uuid.UUID, barcode string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&model.RawMaterial{}).
		Where("tenant_id = ? AND LOWER(barcode) = ?", tenantID, strings.ToLower(strings.TrimSpace(barcode)))
	if excludeID != nil {
		q = q.Where("id <> ?", *excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *rawMaterialRepo) CountByUnit(ctx context.Context, unitID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.RawMaterial{}).Where("unit_id = ?", unitID).Count(&count).Error
	return count, err
}

func (r *rawMaterialRepo) List(ctx context.Context, tenantID uuid.UUID, search string, page Page) ([]model.RawMaterial, int64, error) {
	var (
		items []model.RawMaterial
		total int64
	)
	q := r.db.WithContext(ctx).Model(&model.RawMaterial{}).Where("tenant_id = ?", tenantID)
	if strings.TrimSpace(search) != "" {
		pattern := likePattern(search)
		q = q.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(barcode) LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := page.apply(q).Preload("Unit").Order("name ASC").Find(&items).Error
	return items, total, err
}
