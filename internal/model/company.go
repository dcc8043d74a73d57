package model

// Company is the tenant partition. Every tenant-owned aggregate carries its ID.
type Company struct {
	BaseModel
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code" validate:"required"`
	Name string `gorm:"type:varchar(255);not null" json:"name" validate:"required"`
}

const DefaultCompanyCode = "DEFAULT"
