package models

import (
	"errors"
	"fmt"

	"gorm.io/gorm"
)

// ErrOrderNotFound is returned when an order is not found.
var ErrOrderNotFound = errors.New("order not found")

// OrderItemInput is the caller-facing shape of one order line.
type OrderItemInput struct {
	ProductID uint
	Quantity  int
}

type OrdersRepository struct {
	db *gorm.DB
}

func NewOrdersRepository(db *gorm.DB) *OrdersRepository {
	return &OrdersRepository{
		db: db,
	}
}

// preloadItems loads an order's items in their insertion order, which fixes
// the order allocation is computed and presented in.
func preloadItems(db *gorm.DB) *gorm.DB {
	return db.
		Preload("Items", func(tx *gorm.DB) *gorm.DB {
			return tx.Order("order_items.id ASC")
		}).
		Preload("Items.Product")
}

// Create persists an order together with its items. Every referenced product
// must exist; the whole write happens in one transaction.
func (r *OrdersRepository) Create(userID uint, items []OrderItemInput) (*Order, error) {
	if len(items) == 0 {
		return nil, fmt.Errorf("order must contain at least one item")
	}

	order := Order{UserID: userID}
	err := r.db.Transaction(func(tx *gorm.DB) error {
		for _, item := range items {
			var count int64
			if err := tx.Model(&Product{}).Where("id = ?", item.ProductID).Count(&count).Error; err != nil {
				return err
			}
			if count == 0 {
				return ErrProductNotFound
			}
		}

		if err := tx.Create(&order).Error; err != nil {
			return err
		}
		for _, item := range items {
			orderItem := OrderItem{
				OrderID:   order.ID,
				ProductID: item.ProductID,
				Quantity:  item.Quantity,
			}
			if err := tx.Create(&orderItem).Error; err != nil {
				return err
			}
			order.Items = append(order.Items, orderItem)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *OrdersRepository) GetByID(id uint) (*Order, error) {
	var order Order
	if err := preloadItems(r.db).
		First(&order, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrOrderNotFound
		}
		return nil, err
	}
	return &order, nil
}

func (r *OrdersRepository) ListByUser(userID uint) ([]Order, error) {
	var orders []Order
	if err := preloadItems(r.db).
		Where("user_id = ?", userID).
		Order("orders.id ASC").
		Find(&orders).Error; err != nil {
		return nil, err
	}
	return orders, nil
}
