package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// WarehouseBatch is one received lot of a raw material. CreatedAt defines the
// FIFO consumption order; ID breaks ties between batches received in the same
// instant. Remainder only changes through an explicit stock adjustment — the
// allocation engine works on in-memory copies and never writes it.
type WarehouseBatch struct {
	ID            uint            `gorm:"primaryKey"`
	RawMaterialID uint            `gorm:"not null;index"`
	RawMaterial   RawMaterial     `gorm:"foreignKey:RawMaterialID"`
	Remainder     decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Unit          Unit            `gorm:"type:varchar(10);not null"`
	Price         float64         `gorm:"not null"`
	CreatedAt     time.Time       `gorm:"index"`
}

func (b *WarehouseBatch) TableName() string {
	return "warehouse_batches"
}
