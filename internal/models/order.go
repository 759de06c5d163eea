package models

import (
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

type Order struct {
	Base
	UserID        uint              `gorm:"index;not null" json:"userId"`
	TotalAmount   decimal.Decimal   `gorm:"type:decimal(10,2);not null" json:"totalAmount"`
	PaymentMethod string            `gorm:"size:50" json:"paymentMethod"`
	Address       datatypes.JSONMap `json:"address"`
	Items         []OrderItem       `gorm:"foreignKey:OrderID;constraint:OnDelete:CASCADE" json:"-"`
}

type OrderItem struct {
	ID        uint            `gorm:"primaryKey" json:"id"`
	OrderID   uint            `gorm:"index;not null" json:"orderId"`
	ProductID uint            `json:"productId"`
	Name      string          `gorm:"size:255" json:"name"`
	Price     decimal.Decimal `gorm:"type:decimal(10,2)" json:"price"`
	Quantity  int             `json:"quantity"`
	Image     string          `gorm:"size:255" json:"image"`
}
