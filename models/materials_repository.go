package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrRawMaterialNotFound is returned when a raw material is not found.
var ErrRawMaterialNotFound = errors.New("raw material not found")

// ErrBatchNotFound is returned when a warehouse batch is not found.
var ErrBatchNotFound = errors.New("warehouse batch not found")

// ErrInsufficientRemainder is returned when a stock adjustment would drive a
// batch remainder below zero.
var ErrInsufficientRemainder = errors.New("adjustment exceeds batch remainder")

type MaterialsRepository struct {
	db *gorm.DB
}

func NewMaterialsRepository(db *gorm.DB) *MaterialsRepository {
	return &MaterialsRepository{
		db: db,
	}
}

func (r *MaterialsRepository) GetRawMaterial(id uint) (*RawMaterial, error) {
	var material RawMaterial
	if err := r.db.First(&material, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRawMaterialNotFound
		}
		return nil, err
	}
	return &material, nil
}

func (r *MaterialsRepository) ListRawMaterials() ([]RawMaterial, error) {
	var materials []RawMaterial
	if err := r.db.Order("id ASC").Find(&materials).Error; err != nil {
		return nil, err
	}
	return materials, nil
}

func (r *MaterialsRepository) CreateRawMaterial(material *RawMaterial) error {
	return r.db.Create(material).Error
}

// UpdateRawMaterialUnit changes a material's unit and re-derives the cached
// unit on every BOM entry and batch that references it, in one transaction.
func (r *MaterialsRepository) UpdateRawMaterialUnit(id uint, unit Unit) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		res := tx.Model(&RawMaterial{}).Where("id = ?", id).Update("unit", unit)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return ErrRawMaterialNotFound
		}
		if err := tx.Model(&BOMEntry{}).Where("raw_material_id = ?", id).Update("unit", unit).Error; err != nil {
			return fmt.Errorf("re-derive bom entry units: %w", err)
		}
		if err := tx.Model(&WarehouseBatch{}).Where("raw_material_id = ?", id).Update("unit", unit).Error; err != nil {
			return fmt.Errorf("re-derive batch units: %w", err)
		}
		return nil
	})
}

// CreateBatch registers a received lot. The batch unit is derived from the
// raw material at write time.
func (r *MaterialsRepository) CreateBatch(rawMaterialID uint, remainder decimal.Decimal, price float64) (*WarehouseBatch, error) {
	material, err := r.GetRawMaterial(rawMaterialID)
	if err != nil {
		return nil, err
	}

	batch := WarehouseBatch{
		RawMaterialID: rawMaterialID,
		Remainder:     remainder,
		Unit:          material.Unit,
		Price:         price,
	}
	if err := r.db.Create(&batch).Error; err != nil {
		return nil, fmt.Errorf("create batch: %w", err)
	}
	return &batch, nil
}

// AvailableBatches returns the consumable ledger for a raw material: batches
// with positive remainder, oldest first. Equal timestamps fall back to ID
// order so repeated reads always come back in the same sequence.
func (r *MaterialsRepository) AvailableBatches(rawMaterialID uint) ([]WarehouseBatch, error) {
	var batches []WarehouseBatch
	if err := r.db.
		Where("raw_material_id = ? AND remainder > 0", rawMaterialID).
		Order("created_at ASC, id ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

func (r *MaterialsRepository) ListBatches(rawMaterialID uint) ([]WarehouseBatch, error) {
	var batches []WarehouseBatch
	if err := r.db.
		Where("raw_material_id = ?", rawMaterialID).
		Order("created_at ASC, id ASC").
		Find(&batches).Error; err != nil {
		return nil, err
	}
	return batches, nil
}

// AdjustRemainder applies an explicit stock correction to a batch. This is
// the only code path that durably changes a remainder; the allocation engine
// never goes through here.
func (r *MaterialsRepository) AdjustRemainder(batchID uint, delta decimal.Decimal) (*WarehouseBatch, error) {
	var batch WarehouseBatch
	err := r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.First(&batch, batchID).Error; err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrBatchNotFound
			}
			return err
		}
		next := batch.Remainder.Add(delta)
		if next.IsNegative() {
			return ErrInsufficientRemainder
		}
		if err := tx.Model(&batch).Update("remainder", next).Error; err != nil {
			return err
		}
		batch.Remainder = next
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &batch, nil
}
