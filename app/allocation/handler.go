package allocation

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	applog "warehouse/internal/log"
	"warehouse/models"
)

// MaterialLine is one allocation record as presented to callers. A null
// warehouse_batch together with a null price marks a shortage.
type MaterialLine struct {
	MaterialName   string   `json:"material_name"`
	WarehouseBatch *uint    `json:"warehouse_batch"`
	Quantity       float64  `json:"quantity"`
	Unit           string   `json:"unit"`
	Price          *float64 `json:"price"`
}

// ItemMaterials groups the persisted records of one order item.
type ItemMaterials struct {
	ID               uint           `json:"id"`
	Product          string         `json:"product"`
	Quantity         int            `json:"quantity"`
	ProductMaterials []MaterialLine `json:"product_materials"`
}

// Recomputer triggers an allocation pass.
type Recomputer interface {
	Recompute(ctx context.Context, orderID uint) error
}

// OrderProvider loads orders for the read side.
type OrderProvider interface {
	GetByID(id uint) (*models.Order, error)
}

// RecordProvider reads the persisted allocation set in computation order.
type RecordProvider interface {
	GetByOrder(orderID uint) ([]models.AllocationRecord, error)
}

type Handler struct {
	engine  Recomputer
	orders  OrderProvider
	records RecordProvider
}

func NewHandler(engine Recomputer, orders OrderProvider, records RecordProvider) *Handler {
	return &Handler{
		engine:  engine,
		orders:  orders,
		records: records,
	}
}

// HandleRecompute handles POST /orders/{id}/materials: recompute the order's
// allocation set and atomically replace the previous one.
func (h *Handler) HandleRecompute(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseOrderID(r)
	if err != nil {
		http.Error(w, "Invalid order id", http.StatusBadRequest)
		return
	}

	if err := h.engine.Recompute(r.Context(), orderID); err != nil {
		var validation *ValidationError
		switch {
		case errors.Is(err, models.ErrOrderNotFound):
			http.Error(w, "Order not found", http.StatusNotFound)
		case errors.As(err, &validation):
			http.Error(w, validation.Reason, http.StatusUnprocessableEntity)
		default:
			applog.Error(r.Context(), "allocation recompute failed", "order_id", orderID, "err", err)
			http.Error(w, "Failed to recompute materials", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{
		"message": "Materials recomputed successfully",
	}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// HandleGetMaterials handles GET /orders/{id}/materials: the currently
// persisted allocation set grouped by order item, in computation order.
func (h *Handler) HandleGetMaterials(w http.ResponseWriter, r *http.Request) {
	orderID, err := parseOrderID(r)
	if err != nil {
		http.Error(w, "Invalid order id", http.StatusBadRequest)
		return
	}

	order, err := h.orders.GetByID(orderID)
	if err != nil {
		if errors.Is(err, models.ErrOrderNotFound) {
			http.Error(w, "Order not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to retrieve order", http.StatusInternalServerError)
		return
	}

	records, err := h.records.GetByOrder(orderID)
	if err != nil {
		http.Error(w, "Failed to retrieve materials", http.StatusInternalServerError)
		return
	}

	byItem := make(map[uint][]MaterialLine, len(order.Items))
	for _, record := range records {
		byItem[record.OrderItemID] = append(byItem[record.OrderItemID], MaterialLine{
			MaterialName:   record.RawMaterial.Name,
			WarehouseBatch: record.WarehouseBatchID,
			Quantity:       record.Quantity.InexactFloat64(),
			Unit:           string(record.Unit),
			Price:          record.Price,
		})
	}

	response := make([]ItemMaterials, len(order.Items))
	for i, item := range order.Items {
		lines := byItem[item.ID]
		if lines == nil {
			lines = []MaterialLine{}
		}
		response[i] = ItemMaterials{
			ID:               item.ID,
			Product:          item.Product.Name,
			Quantity:         item.Quantity,
			ProductMaterials: lines,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func parseOrderID(r *http.Request) (uint, error) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		return 0, err
	}
	return uint(id), nil
}
