package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// UnitType is the closed category a unit belongs to. Units convert only within one category.
type UnitType string

const (
	UnitTypeWeight UnitType = "Weight"
	UnitTypeVolume UnitType = "Volume"
	UnitTypeLength UnitType = "Length"
	UnitTypeCount  UnitType = "Count"
	UnitTypeArea   UnitType = "Area"
	UnitTypeTime   UnitType = "Time"
)

var UnitTypes = []UnitType{UnitTypeWeight, UnitTypeVolume, UnitTypeLength, UnitTypeCount, UnitTypeArea, UnitTypeTime}

func (t UnitType) Valid() bool {
	for _, ut := range UnitTypes {
		if ut == t {
			return true
		}
	}
	return false
}

// Unit is a node of the per-type conversion tree.
//
// ConversionRate says how many parent units make one of this unit. RateToRoot is the
// cached product of ConversionRate along the parent chain, 1 for a root.
type Unit struct {
	BaseModel
	Name           string          `gorm:"type:varchar(100);not null" json:"name"`
	ShortCode      string          `gorm:"type:varchar(20);not null;index" json:"short_code"`
	UnitType       UnitType        `gorm:"type:varchar(20);not null;index" json:"unit_type"`
	ConversionRate decimal.Decimal `gorm:"type:decimal(18,6);not null" json:"conversion_rate"`
	ParentUnitID   *uuid.UUID      `gorm:"type:uuid;index" json:"parent_unit_id"`
	RateToRoot     decimal.Decimal `gorm:"type:decimal(24,12);not null" json:"rate_to_root"`

	// Nil TenantID together with IsGlobal marks a unit shared by every tenant (read-only for them).
	TenantID *uuid.UUID `gorm:"type:uuid;index" json:"tenant_id"`
	IsGlobal bool       `gorm:"default:false;index" json:"is_global"`

	ParentUnit *Unit `gorm:"foreignKey:ParentUnitID" json:"parent_unit,omitempty"`
}

func (Unit) TableName() string {
	return "units"
}

func (u *Unit) IsRoot() bool {
	return u.ParentUnitID == nil
}

// OwnedBy reports whether tenantID may write this unit.
func (u *Unit) OwnedBy(tenantID uuid.UUID) bool {
	return !u.IsGlobal && u.TenantID != nil && *u.TenantID == tenantID
}

// DefaultGlobalUnits are the seeded, tenant-shared units. Roots come first so children can
// resolve their parent during seeding.
var DefaultGlobalUnits = []Unit{
	{Name: "Kilogram", ShortCode: "kg", UnitType: UnitTypeWeight},
	{Name: "Liter", ShortCode: "l", UnitType: UnitTypeVolume},
	{Name: "Meter", ShortCode: "m", UnitType: UnitTypeLength},
	{Name: "Piece", ShortCode: "pcs", UnitType: UnitTypeCount},
	{Name: "Square Meter", ShortCode: "m2", UnitType: UnitTypeArea},
	{Name: "Second", ShortCode: "s", UnitType: UnitTypeTime},
}

// DefaultGlobalChildUnits hang below DefaultGlobalUnits, keyed by the parent short code.
var DefaultGlobalChildUnits = []struct {
	ParentShortCode string
	Unit            Unit
}{
	{"kg", Unit{Name: "Gram", ShortCode: "g", ConversionRate: decimal.RequireFromString("0.001")}},
	{"l", Unit{Name: "Milliliter", ShortCode: "ml", ConversionRate: decimal.RequireFromString("0.001")}},
	{"m", Unit{Name: "Centimeter", ShortCode: "cm", ConversionRate: decimal.RequireFromString("0.01")}},
	{"pcs", Unit{Name: "Dozen", ShortCode: "dz", ConversionRate: decimal.NewFromInt(12)}},
	{"s", Unit{Name: "Minute", ShortCode: "min", ConversionRate: decimal.NewFromInt(60)}},
	{"s", Unit{Name: "Hour", ShortCode: "h", ConversionRate: decimal.NewFromInt(3600)}},
}
