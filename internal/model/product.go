package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type Product struct {
	BaseModel
	TenantID         uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	SKU              string          `gorm:"type:varchar(50);not null;index" json:"sku"`
	Name             string          `gorm:"type:varchar(255);not null" json:"name"`
	Price            decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"price"`
	ProductFormulaID *uuid.UUID      `gorm:"type:uuid;index" json:"product_formula_id"`

	ProductFormula *ProductFormula `gorm:"foreignKey:ProductFormulaID" json:"product_formula,omitempty"`
}

func (Product) TableName() string {
	return "products"
}
