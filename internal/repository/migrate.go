package repository

import (
	"go-inventory-bom/internal/model"

	"gorm.io/gorm"
)

// AutoMigrate creates or alters every table the service owns.
func AutoMigrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&model.Company{},
		&model.Privilege{},
		&model.Role{},
		&model.User{},
		&model.Unit{},
		&model.RawMaterial{},
		&model.ProductFormula{},
		&model.ProductFormulaItem{},
		&model.Product{},
		&model.Order{},
		&model.OrderItem{},
		&model.OrderPayment{},
	)
}
