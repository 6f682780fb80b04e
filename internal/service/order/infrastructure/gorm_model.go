package infrastructure

import (
	"time"

	"gorm.io/gorm"
)

// OrderModel GORM 数据模型
type OrderModel struct {
	gorm.Model
	UserID              int64            `gorm:"not null;index"`
	CreatedDate         time.Time        `gorm:"not null"`
	TotalPriceCents     int64            `gorm:"not null"`
	DiscountAmountCents int64            `gorm:"not null;default:0"`
	Status              string           `gorm:"size:20;not null;index"`
	Items               []OrderItemModel `gorm:"foreignKey:OrderID"`
}

func (OrderModel) TableName() string {
	return "orders"
}

type OrderItemModel struct {
	gorm.Model
	OrderID              int64 `gorm:"not null;index"`
	ProductID            int64 `gorm:"not null"`
	Quantity             int   `gorm:"not null"`
	PriceAtPurchaseCents int64 `gorm:"not null"`
}

func (OrderItemModel) TableName() string {
	return "order_items"
}
