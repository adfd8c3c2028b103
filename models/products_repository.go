package models

import (
	"errors"
	"fmt"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ErrProductNotFound is returned when a product is not found.
var ErrProductNotFound = errors.New("product not found")

type ProductsRepository struct {
	db *gorm.DB
}

func NewProductsRepository(db *gorm.DB) *ProductsRepository {
	return &ProductsRepository{
		db: db,
	}
}

// preloadMaterials loads a product's BOM entries in their insertion order,
// which is the order allocation records are emitted in.
func preloadMaterials(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Materials", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("bom_entries.id ASC")
		}).
		Preload("Materials.RawMaterial")
}

func (r *ProductsRepository) GetByID(id uint) (*Product, error) {
	var product Product
	if err := preloadMaterials(r.db).
		First(&product, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *ProductsRepository) GetByCode(code string) (*Product, error) {
	var product Product
	if err := preloadMaterials(r.db).
		Where("code = ?", code).
		First(&product).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrProductNotFound
		}
		return nil, err
	}
	return &product, nil
}

func (r *ProductsRepository) List(offset, limit int) ([]Product, int64, error) {
	var products []Product
	var total int64

	query := r.db.Model(&Product{})

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("products.id ASC").Offset(offset).Limit(limit).Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

// BOMLineInput describes one composition line for product creation.
type BOMLineInput struct {
	RawMaterialID uint
	Quantity      decimal.Decimal
}

// Create persists a product together with its composition in a single
// transaction. Entry units are derived from each referenced raw material at
// write time. An unknown material rolls back the whole write, including the
// product row itself.
func (r *ProductsRepository) Create(product *Product, entries []BOMLineInput) error {
	return r.db.Transaction(func(tx *gorm.DB) error {
		if err := tx.Create(product).Error; err != nil {
			return err
		}
		for _, line := range entries {
			var material RawMaterial
			if err := tx.First(&material, line.RawMaterialID).Error; err != nil {
				if errors.Is(err, gorm.ErrRecordNotFound) {
					return ErrRawMaterialNotFound
				}
				return err
			}
			entry := BOMEntry{
				ProductID:     product.ID,
				RawMaterialID: line.RawMaterialID,
				Quantity:      line.Quantity,
				Unit:          material.Unit,
			}
			if err := tx.Create(&entry).Error; err != nil {
				return fmt.Errorf("create bom entry: %w", err)
			}
		}
		return nil
	})
}

// AddBOMEntry appends a composition line to a product. The entry's unit is
// derived from the referenced raw material at write time.
func (r *ProductsRepository) AddBOMEntry(productID, rawMaterialID uint, quantity decimal.Decimal) (*BOMEntry, error) {
	var material RawMaterial
	if err := r.db.First(&material, rawMaterialID).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrRawMaterialNotFound
		}
		return nil, err
	}

	entry := BOMEntry{
		ProductID:     productID,
		RawMaterialID: rawMaterialID,
		Quantity:      quantity,
		Unit:          material.Unit,
	}
	if err := r.db.Create(&entry).Error; err != nil {
		return nil, fmt.Errorf("create bom entry: %w", err)
	}
	return &entry, nil
}
