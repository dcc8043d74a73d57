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

type UnitRepository interface {
	WithTx(tx *gorm.DB) UnitRepository
	Create(ctx context.Context, unit *model.Unit) error
	Update(ctx context.Context, unit *model.Unit) error
	UpdateRateToRoot(ctx context.Context, id uuid.UUID, rateToRoot decimal.Decimal, updatedBy string) error
	SoftDelete(ctx context.Context, id uuid.UUID, deletedBy string) error
	// FindVisible finds a non-deleted unit owned by tenantID or shared globally.
	FindVisible(ctx context.Context, tenantID, id uuid.UUID) (*model.Unit, error)
	FindChildren(ctx context.Context, parentID uuid.UUID) ([]model.Unit, error)
	CountChildren(ctx context.Context, parentID uuid.UUID) (int64, error)
	NameTaken(ctx context.Context, tenantID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error)
	ShortCodeTaken(ctx context.Context, tenantID uuid.UUID, shortCode string, excludeID *uuid.UUID) (bool, error)
	List(ctx context.Context, tenantID uuid.UUID, search string, page Page) ([]model.Unit, int64, error)
	FindAll(ctx context.Context) ([]model.Unit, error)
	SeedDefaults() error
}

type unitRepo struct {
	db *gorm.DB
}

func NewUnitRepo(db *gorm.DB) UnitRepository {
	return &unitRepo{db}
}

func (r *unitRepo) WithTx(tx *gorm.DB) UnitRepository {
	return &unitRepo{tx}
}

func visibleTo(tenantID uuid.UUID) func(*gorm.DB) *gorm.DB {
	return func(db *gorm.DB) *gorm.DB {
		return db.Where("(units.tenant_id = ? OR units.is_global = ?)", tenantID, true)
	}
}

func (r *unitRepo) Create(ctx context.Context, unit *model.Unit) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Create(unit).Error
}

func (r *unitRepo) Update(ctx context.Context, unit *model.Unit) error {
	return r.db.WithContext(ctx).Omit(clause.Associations).Save(unit).Error
}

func (r *unitRepo) UpdateRateToRoot(ctx context.Context, id uuid.UUID, rateToRoot decimal.Decimal, updatedBy string) error {
	return r.db.WithContext(ctx).Model(&model.Unit{}).
		Where("id = ?", id).
		Updates(map[string]interface{}{
			"rate_to_root": rateToRoot,
			"updated_by":   updatedBy,
		}).Error
}

func (r *unitRepo) SoftDelete(ctx context.Context, id uuid.UUID, deletedBy string) error {
	return r.db.WithContext(ctx).Model(&model.Unit{}).Where("id = ?", id).Updates(map[string]interface{}{
		"deleted_at": time.Now(),
		"deleted_by": deletedBy,
	}).Error
}

func (r *unitRepo) FindVisible(ctx context.Context, tenantID, id uuid.UUID) (*model.Unit, error) {
	var unit model.Unit
	if err := r.db.WithContext(ctx).Scopes(visibleTo(tenantID)).First(&unit, "units.id = ?", id).Error; err != nil {
		return nil, err
	}
	return &unit, nil
}

func (r *unitRepo) FindChildren(ctx context.Context, parentID uuid.UUID) ([]model.Unit, error) {
	var units []model.Unit
	err := r.db.WithContext(ctx).Where("parent_unit_id = ?", parentID).Order("name ASC").Find(&units).Error
	return units, err
}

func (r *unitRepo) CountChildren(ctx context.Context, parentID uuid.UUID) (int64, error) {
	var count int64
	err := r.db.WithContext(ctx).Model(&model.Unit{}).Where("parent_unit_id = ?", parentID).Count(&count).Error
	return count, err
}

func (r *unitRepo) taken(ctx context.Context, tenantID uuid.UUID, column, value string, excludeID *uuid.UUID) (bool, error) {
	var count int64
	q := r.db.WithContext(ctx).Model(&model.Unit{}).
		Scopes(visibleTo(tenantID)).
		Where("LOWER("+column+") = ?", strings.ToLower(strings.TrimSpace(value)))
	if excludeID != nil {
		q = q.Where("units.id <> ?", *excludeID)
	}
	if err := q.Count(&count).Error; err != nil {
		return false, err
	}
	return count > 0, nil
}

func (r *unitRepo) NameTaken(ctx context.Context, tenantID uuid.UUID, name string, excludeID *uuid.UUID) (bool, error) {
	return r.taken(ctx, tenantID, "name", name, excludeID)
}

func (r *unitRepo) ShortCodeTaken(ctx context.Context, tenantID uuid.UUID, shortCode string, excludeID *uuid.UUID) (bool, error) {
	return r.taken(ctx, tenantID, "short_code", shortCode, excludeID)
}

func (r *unitRepo) List(ctx context.Context, tenantID uuid.UUID, search string, page Page) ([]model.Unit, int64, error) {
	var (
		units []model.Unit
		total int64
	)
	q := r.db.WithContext(ctx).Model(&model.Unit{}).Scopes(visibleTo(tenantID))
	if strings.TrimSpace(search) != "" {
		pattern := likePattern(search)
		q = q.Where(`(LOWER(name) LIKE ? ESCAPE '\' OR LOWER(short_code) LIKE ? ESCAPE '\')`, pattern, pattern)
	}
	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := page.apply(q).Order("unit_type ASC, name ASC").Find(&units).Error
	return units, total, err
}

func (r *unitRepo) FindAll(ctx context.Context) ([]model.Unit, error) {
	var units []model.Unit
	err := r.db.WithContext(ctx).Order("created_at ASC").Find(&units).Error
	return units, err
}

// SeedDefaults creates the global root units and their standard children if missing.
func (r *unitRepo) SeedDefaults() error {
	one := decimal.NewFromInt(1)
	for _, def := range model.DefaultGlobalUnits {
		var existing model.Unit
		err := r.db.Where("is_global = ? AND short_code = ?", true, def.ShortCode).First(&existing).Error
		if err == gorm.ErrRecordNotFound {
			unit := def
			unit.ConversionRate = one
			unit.RateToRoot = one
			unit.IsGlobal = true
			unit.CreatedBy = "system"
			unit.UpdatedBy = "system"
			if err := r.db.Omit(clause.Associations).Create(&unit).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}
	}
	for _, def := range model.DefaultGlobalChildUnits {
		var existing model.Unit
		err := r.db.Where("is_global = ? AND short_code = ?", true, def.Unit.ShortCode).First(&existing).Error
		if err != gorm.ErrRecordNotFound {
			if err != nil {
				return err
			}
			continue
		}
		var parent model.Unit
		if err := r.db.Where("is_global = ? AND short_code = ?", true, def.ParentShortCode).First(&parent).Error; err != nil {
			return err
		}
		unit := def.Unit
		unit.UnitType = parent.UnitType
		unit.ParentUnitID = &parent.ID
		unit.RateToRoot = unit.ConversionRate.Mul(parent.RateToRoot)
		unit.IsGlobal = true
		unit.CreatedBy = "system"
		unit.UpdatedBy = "system"
		if err := r.db.Omit(clause.Associations).Create(&unit).Error; err != nil {
			return err
		}
	}
	return nil
}
