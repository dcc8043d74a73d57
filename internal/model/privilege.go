package model

// Privilege represents a permission that can be assigned to users
type Privilege struct {
	ID   uint   `gorm:"primaryKey" json:"id"`
	Code string `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // e.g., "unit:create"
	Name string `gorm:"type:varchar(100)" json:"name"`                     // e.g., "Create Unit"
}

// Default privileges for the system
var DefaultPrivileges = []Privilege{
	// Units
	{Code: "unit:view", Name: "View Unit"},
	{Code: "unit:create", Name: "Create Unit"},
	{Code: "unit:update", Name: "Update Unit"},
	{Code: "unit:delete", Name: "Delete Unit"},
	// Raw materials
	{Code: "raw_material:view", Name: "View Raw Material"},
	{Code: "raw_material:create", Name: "Create Raw Material"},
	{Code: "raw_material:update", Name: "Update Raw Material"},
	{Code: "raw_material:delete", Name: "Delete Raw Material"},
	// Formulas
	{Code: "formula:view", Name: "View Formula"},
	{Code: "formula:create", Name: "Create Formula"},
	{Code: "formula:update", Name: "Update Formula"},
	{Code: "formula:delete", Name: "Delete Formula"},
	// Products
	{Code: "product:view", Name: "View Product"},
	{Code: "product:create", Name: "Create Product"},
	{Code: "product:update", Name: "Update Product"},
	{Code: "product:delete", Name: "Delete Product"},
	// Orders
	{Code: "order:view", Name: "View Order"},
	{Code: "order:create", Name: "Create Order"},
	// Orders placed with is_safe_order=false skip price checks
	{Code: "order:unsafe", Name: "Place Unchecked Order"},
}
