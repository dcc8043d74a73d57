package model

// Role represents user roles in the system
type Role struct {
	ID          uint        `gorm:"primaryKey" json:"id"`
	Code        string      `gorm:"type:varchar(50);uniqueIndex;not null" json:"code"` // MASTER_ADMIN, ADMIN
	Name        string      `gorm:"type:varchar(100)" json:"name"`
	Description string      `gorm:"type:text" json:"description"`
	Privileges  []Privilege `gorm:"many2many:role_privileges;" json:"privileges,omitempty"`
}

// Role codes as constants
const (
	RoleMasterAdmin = "MASTER_ADMIN"
	RoleAdmin       = "ADMIN"
)

// DefaultRoles defines the default roles in the system
var DefaultRoles = []Role{
	{
		Code:        RoleMasterAdmin,
		Name:        "Master Administrator",
		Description: "Full system access with all privileges",
	},
	{
		Code:        RoleAdmin,
		Name:        "Administrator",
		Description: "Limited administrative access",
	},
}

// RolePrivilegeCodes limits what a seeded role is granted. Roles not listed get every privilege.
var RolePrivilegeCodes = map[string][]string{
	RoleAdmin: {
		"unit:view", "unit:create", "unit:update",
		"raw_material:view", "raw_material:create", "raw_material:update",
		"formula:view", "formula:create", "formula:update",
		"product:view", "product:create", "product:update",
		"order:view", "order:create",
	},
}
