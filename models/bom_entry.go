package models

import (
	"github.com/shopspring/decimal"
)

// BOMEntry is one line of a product's bill of materials: how much of one
// raw material a single product unit consumes. Unit is copied from the raw
// material at write time and re-derived whenever the material's unit changes.
type BOMEntry struct {
	ID            uint            `gorm:"primaryKey"`
	ProductID     uint            `gorm:"not null;index"`
	RawMaterialID uint            `gorm:"not null"`
	RawMaterial   RawMaterial     `gorm:"foreignKey:RawMaterialID"`
	Quantity      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Unit          Unit            `gorm:"type:varchar(10);not null"`
}

func (e *BOMEntry) TableName() string {
	return "bom_entries"
}
