package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// RawMaterial is an inventory item. Stock is always expressed in UnitID.
type RawMaterial struct {
	BaseModel
	TenantID uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	Name     string          `gorm:"type:varchar(255);not null" json:"name"`
	Barcode  string          `gorm:"type:varchar(100);not null;index" json:"barcode"`
	Price    decimal.Decimal `gorm:"type:decimal(18,2);not null;default:0" json:"price"`
	Stock    decimal.Decimal `gorm:"type:decimal(18,6);not null;default:0" json:"stock"`
	UnitID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"unit_id"`

	Unit *Unit `gorm:"foreignKey:UnitID" json:"unit,omitempty"`
}

func (RawMaterial) TableName() string {
	return "raw_materials"
}
