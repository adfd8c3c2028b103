package models

import (
	"fmt"

	"gorm.io/gorm"
)

type AllocationsRepository struct {
	db *gorm.DB
}

func NewAllocationsRepository(db *gorm.DB) *AllocationsRepository {
	return &AllocationsRepository{
		db: db,
	}
}

// ReplaceForOrder swaps an order's allocation set for a freshly computed one.
// The delete and the bulk insert run in a single transaction: readers either
// see the complete previous set or the complete new one, never a mix, and a
// failed insert leaves the previous set authoritative.
func (r *AllocationsRepository) ReplaceForOrder(orderID uint, records []AllocationRecord) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.
			Where("order_item_id IN (?)",
				tx.Model(&OrderItem{}).Select("id").Where("order_id = ?", orderID),
			).
			Delete(&AllocationRecord{}).Error; err != nil {
			return fmt.Errorf("delete previous allocation records: %w", err)
		}
		if len(records) == 0 {
			return nil
		}
		if err := tx.Create(&records).Error; err != nil {
			return fmt.Errorf("insert allocation records: %w", err)
		}
		return nil
	})
}

// GetByOrder returns the persisted allocation set in computation order.
// Records are inserted in the order the engine emitted them, so primary key
// order reproduces item order, BOM order and batch age order.
func (r *AllocationsRepository) GetByOrder(orderID uint) ([]AllocationRecord, error) {
	var records []AllocationRecord
	if err := r.db.
		Joins("JOIN order_items ON order_items.id = allocation_records.order_item_id").
		Where("order_items.order_id = ?", orderID).
		Preload("RawMaterial").
		Order("allocation_records.id ASC").
		Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}
