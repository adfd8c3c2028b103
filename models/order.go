package models

import "time"

// Order is a manufacturing order placed by a user.
type Order struct {
	ID        uint        `gorm:"primaryKey"`
	UserID    uint        `gorm:"not null;index"`
	Items     []OrderItem `gorm:"foreignKey:OrderID"`
	CreatedAt time.Time
}

func (o *Order) TableName() string {
	return "orders"
}

// OrderItem is one product line of an order. Quantity counts product units.
type OrderItem struct {
	ID        uint    `gorm:"primaryKey"`
	OrderID   uint    `gorm:"not null;index"`
	ProductID uint    `gorm:"not null"`
	Product   Product `gorm:"foreignKey:ProductID"`
	Quantity  int     `gorm:"not null"`
}

func (i *OrderItem) TableName() string {
	return "order_items"
}
