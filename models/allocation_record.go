package models

import (
	"github.com/shopspring/decimal"
)

// AllocationRecord links one order item and raw material to either a concrete
// batch-and-quantity or, when WarehouseBatchID is nil, to a shortage: the part
// of the requirement no batch could supply. Price is the batch's price at
// computation time and is nil exactly when the batch is nil.
//
// Records are never updated in place. A recompute deletes the order's whole
// set and inserts the new one in a single transaction.
type AllocationRecord struct {
	ID               uint            `gorm:"primaryKey"`
	OrderItemID      uint            `gorm:"not null;index"`
	RawMaterialID    uint            `gorm:"not null"`
	RawMaterial      RawMaterial     `gorm:"foreignKey:RawMaterialID"`
	WarehouseBatchID *uint           `gorm:"index"`
	Quantity         decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	Unit             Unit            `gorm:"type:varchar(10);not null"`
	Price            *float64
}

func (r *AllocationRecord) TableName() string {
	return "allocation_records"
}

// IsShortage reports whether the record marks unsatisfied demand.
func (r *AllocationRecord) IsShortage() bool {
	return r.WarehouseBatchID == nil
}
