package model

import (
	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type PaymentMethod string

const (
	PaymentCash     PaymentMethod = "CASH"
	PaymentCard     PaymentMethod = "CARD"
	PaymentTransfer PaymentMethod = "TRANSFER"
	// PaymentDiscount is not money received; it lowers NetAmount.
	PaymentDiscount PaymentMethod = "DISCOUNT"
)

func (m PaymentMethod) Valid() bool {
	switch m {
	case PaymentCash, PaymentCard, PaymentTransfer, PaymentDiscount:
		return true
	}
	return false
}

// Order totals are derived from items and payments once, at creation.
type Order struct {
	BaseModel
	TenantID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"tenant_id"`
	IsSafeOrder    bool            `gorm:"not null;default:true" json:"is_safe_order"`
	TotalAmount    decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total_amount"`
	DiscountAmount decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"discount_amount"`
	NetAmount      decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"net_amount"`
	TotalQuantity  decimal.Decimal `gorm:"type:decimal(18,6);not null" json:"total_quantity"`
	Note           string          `gorm:"type:text" json:"note"`

	Items    []OrderItem    `gorm:"foreignKey:OrderID" json:"items"`
	Payments []OrderPayment `gorm:"foreignKey:OrderID" json:"payments"`
}

func (Order) TableName() string {
	return "orders"
}

type OrderItem struct {
	BaseModel
	OrderID     uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	ProductID   uuid.UUID       `gorm:"type:uuid;not null;index" json:"product_id"`
	Quantity    decimal.Decimal `gorm:"type:decimal(18,6);not null" json:"quantity"`
	UnitPrice   decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"unit_price"` // snapshot of product price
	TotalAmount decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"total_amount"`

	Product *Product `gorm:"foreignKey:ProductID" json:"product,omitempty"`
}

func (OrderItem) TableName() string {
	return "order_items"
}

type OrderPayment struct {
	BaseModel
	OrderID       uuid.UUID       `gorm:"type:uuid;not null;index" json:"order_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,2);not null" json:"amount"`
	PaymentMethod PaymentMethod   `gorm:"type:varchar(20);not null" json:"payment_method"`
}

func (OrderPayment) TableName() string {
	return "order_payments"
}
