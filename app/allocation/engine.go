package allocation

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/shopspring/decimal"

	applog "warehouse/internal/log"
	"warehouse/models"
)

// ValidationError reports an order that references data the engine cannot
// resolve: a missing product or a BOM line pointing at a missing raw material.
// It is raised before any record is computed or written.
type ValidationError struct {
	Reason string
}

func (e *ValidationError) Error() string {
	return e.Reason
}

// OrderSource loads the order to plan, with its items in stored order.
type OrderSource interface {
	GetByID(id uint) (*models.Order, error)
}

// BOMResolver resolves a product's composition in BOM-entry order.
type BOMResolver interface {
	GetByID(id uint) (*models.Product, error)
}

// BatchLedger supplies the consumable batch snapshot for a raw material,
// oldest batch first.
type BatchLedger interface {
	GetRawMaterial(id uint) (*models.RawMaterial, error)
	AvailableBatches(rawMaterialID uint) ([]models.WarehouseBatch, error)
}

// RecordStore atomically replaces an order's allocation set.
type RecordStore interface {
	ReplaceForOrder(orderID uint, records []models.AllocationRecord) error
}

// Engine plans raw-material consumption for orders. A recompute simulates
// FIFO depletion of the batch ledger against an in-memory working copy of
// batch remainders; the only durable effect is the replaced record set.
type Engine struct {
	orders   OrderSource
	products BOMResolver
	ledger   BatchLedger
	store    RecordStore

	mu         sync.Mutex
	orderLocks map[uint]*sync.Mutex
}

func NewEngine(orders OrderSource, products BOMResolver, ledger BatchLedger, store RecordStore) *Engine {
	return &Engine{
		orders:     orders,
		products:   products,
		ledger:     ledger,
		store:      store,
		orderLocks: make(map[uint]*sync.Mutex),
	}
}

// orderLock returns the mutex serializing recomputes of one order.
// Overlapping recomputes of the same order would race on the delete+insert;
// different orders share no mutable state and run in parallel.
func (e *Engine) orderLock(orderID uint) *sync.Mutex {
	e.mu.Lock()
	defer e.mu.Unlock()
	lock, ok := e.orderLocks[orderID]
	if !ok {
		lock = &sync.Mutex{}
		e.orderLocks[orderID] = lock
	}
	return lock
}

// Recompute plans material consumption for the order and atomically replaces
// its persisted allocation set. Batch remainders are decremented only in a
// working copy that is discarded when the pass ends; no durable inventory
// state changes. Given unchanged inputs the produced set is identical run to
// run.
func (e *Engine) Recompute(ctx context.Context, orderID uint) error {
	lock := e.orderLock(orderID)
	lock.Lock()
	defer lock.Unlock()

	err := e.recompute(ctx, orderID)
	recomputeRuns.WithLabelValues(outcomeLabel(err)).Inc()
	return err
}

func (e *Engine) recompute(ctx context.Context, orderID uint) error {
	order, err := e.orders.GetByID(orderID)
	if err != nil {
		return err
	}

	plans, err := e.resolve(order)
	if err != nil {
		return err
	}

	stock := newWorkingStock(e.ledger)
	var records []models.AllocationRecord
	for _, plan := range plans {
		for _, entry := range plan.entries {
			required := entry.Quantity.Mul(decimal.NewFromInt(int64(plan.item.Quantity)))
			emitted, err := stock.consume(plan.item.ID, entry, required)
			if err != nil {
				return err
			}
			records = append(records, emitted...)
		}
	}

	// Nothing durable has happened yet, so a cancelled pass is a no-op.
	if err := ctx.Err(); err != nil {
		return err
	}

	if err := e.store.ReplaceForOrder(orderID, records); err != nil {
		return fmt.Errorf("replace allocation set for order %d: %w", orderID, err)
	}

	applog.Debug(ctx, "allocation recomputed",
		"order_id", orderID,
		"records", len(records),
	)
	return nil
}

type itemPlan struct {
	item    models.OrderItem
	entries []models.BOMEntry
}

// resolve validates every reference the pass will touch before any record is
// computed, so a broken order fails fast with nothing emitted.
func (e *Engine) resolve(order *models.Order) ([]itemPlan, error) {
	plans := make([]itemPlan, 0, len(order.Items))
	for _, item := range order.Items {
		product, err := e.products.GetByID(item.ProductID)
		if errors.Is(err, models.ErrProductNotFound) {
			return nil, &ValidationError{Reason: fmt.Sprintf("order item %d references unknown product %d", item.ID, item.ProductID)}
		}
		if err != nil {
			return nil, err
		}
		for _, entry := range product.Materials {
			if _, err := e.ledger.GetRawMaterial(entry.RawMaterialID); err != nil {
				if errors.Is(err, models.ErrRawMaterialNotFound) {
					return nil, &ValidationError{Reason: fmt.Sprintf("product %d references unknown raw material %d", product.ID, entry.RawMaterialID)}
				}
				return nil, err
			}
		}
		plans = append(plans, itemPlan{item: item, entries: product.Materials})
	}
	return plans, nil
}

// workingStock is the simulate-then-discard view of the batch ledger. The
// snapshot for a raw material is fetched once per pass, so depletion by an
// earlier order item is visible to later items of the same pass, and the
// remainders map is dropped with the pass so nothing reaches durable state.
type workingStock struct {
	ledger     BatchLedger
	batches    map[uint][]models.WarehouseBatch
	remainders map[uint]decimal.Decimal
}

func newWorkingStock(ledger BatchLedger) *workingStock {
	return &workingStock{
		ledger:     ledger,
		batches:    make(map[uint][]models.WarehouseBatch),
		remainders: make(map[uint]decimal.Decimal),
	}
}

func (s *workingStock) snapshot(rawMaterialID uint) ([]models.WarehouseBatch, error) {
	if batches, ok := s.batches[rawMaterialID]; ok {
		return batches, nil
	}
	batches, err := s.ledger.AvailableBatches(rawMaterialID)
	if err != nil {
		return nil, fmt.Errorf("load batches for raw material %d: %w", rawMaterialID, err)
	}
	s.batches[rawMaterialID] = batches
	for _, batch := range batches {
		s.remainders[batch.ID] = batch.Remainder
	}
	return batches, nil
}

// consume walks the material's batches oldest first, emitting one record per
// batch drawn from, and a final shortage record (nil batch, nil price) when
// the batches run out before the requirement does.
func (s *workingStock) consume(orderItemID uint, entry models.BOMEntry, required decimal.Decimal) ([]models.AllocationRecord, error) {
	batches, err := s.snapshot(entry.RawMaterialID)
	if err != nil {
		return nil, err
	}

	var records []models.AllocationRecord
	for _, batch := range batches {
		if !required.IsPositive() {
			break
		}
		remainder := s.remainders[batch.ID]
		if !remainder.IsPositive() {
			continue
		}

		batchID := batch.ID
		price := batch.Price
		taken := required
		if remainder.LessThan(required) {
			taken = remainder
		}
		records = append(records, models.AllocationRecord{
			OrderItemID:      orderItemID,
			RawMaterialID:    entry.RawMaterialID,
			WarehouseBatchID: &batchID,
			Quantity:         taken,
			Unit:             batch.Unit,
			Price:            &price,
		})
		s.remainders[batch.ID] = remainder.Sub(taken)
		required = required.Sub(taken)
	}

	if required.IsPositive() {
		records = append(records, models.AllocationRecord{
			OrderItemID:   orderItemID,
			RawMaterialID: entry.RawMaterialID,
			Quantity:      required,
			Unit:          entry.Unit,
		})
	}

	return records, nil
}
