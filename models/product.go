package models

import "time"

// Product represents a manufacturable product.
// Its material composition is the ordered list of BOM entries.
type Product struct {
	ID        uint       `gorm:"primaryKey"`
	Name      string     `gorm:"not null"`
	Code      string     `gorm:"uniqueIndex;not null"`
	Materials []BOMEntry `gorm:"foreignKey:ProductID"`
	CreatedAt time.Time
	UpdatedAt time.Time
}

func (p *Product) TableName() string {
	return "products"
}
