package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// ProductFormula is a bill of materials: what one unit of a product consumes.
type ProductFormula struct {
	BaseModel
	TenantID uuid.UUID            `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Name     string               `gorm:"type:varchar(255);not null" json:"name"`
	Items    []ProductFormulaItem `gorm:"foreignKey:ProductFormulaID" json:"items"`
}

func (ProductFormula) TableName() string {
	return "product_formulas"
}

type ProductFormulaItem struct {
	BaseModel
	ProductFormulaID uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_formula_id"`
	RawMaterialID    uuid.UUID       `gorm:"type:uuid;not null;index" json:"raw_material_id"`
	Quantity         decimal.Decimal `gorm:"type:decimal(18,6);not null" json:"quantity"`
	UnitID           uuid.UUID       `gorm:"type:uuid;not null;index" json:"unit_id"`
	SortOrder        int             `gorm:"not null;default:0" json:"sort_order"`

	RawMaterial *RawMaterial `gorm:"foreignKey:RawMaterialID" json:"raw_material,omitempty"`
	Unit        *Unit        `gorm:"foreignKey:UnitID" json:"unit,omitempty"`
}

func (ProductFormulaItem) TableName() string {
	return "product_formula_items"
}
