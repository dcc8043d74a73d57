package repository

import (
	"go-inventory-bom/internal/model"

	"gorm.io/gorm"
)

type RoleRepository interface {
	FindByCode(code string) (*model.Role, error)
	SeedDefaults() error
}

type roleRepo struct {
	db *gorm.DB
}

func NewRoleRepo(db *gorm.DB) RoleRepository {
	return &roleRepo{db: db}
}

func (r *roleRepo) FindByCode(code string) (*model.Role, error) {
	var role model.Role
	err := r.db.Preload("Privileges").Where("code = ?", code).First(&role).Error
	if err != nil {
		return nil, err
	}
	return &role, nil
}

// SeedDefaults creates the default roles and grants each its privilege set.
// Privileges must be seeded first.
func (r *roleRepo) SeedDefaults() error {
	for _, defaultRole := range model.DefaultRoles {
		var role model.Role
		err := r.db.Where("code = ?", defaultRole.Code).First(&role).Error
		if err == gorm.ErrRecordNotFound {
			role = defaultRole
			if err := r.db.Create(&role).Error; err != nil {
				return err
			}
		} else if err != nil {
			return err
		}

		var privileges []model.Privilege
		q := r.db
		if codes, limited := model.RolePrivilegeCodes[role.Code]; limited {
			q = q.Where("code IN ?", codes)
		}
		if err := q.Find(&privileges).Error; err != nil {
			return err
		}
		if err := r.db.Model(&role).Association("Privileges").Replace(privileges); err != nil {
			return err
		}
	}
	return nil
}
