package orders

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"warehouse/models"
)

type OrderItem struct {
	ID        uint `json:"id"`
	ProductID uint `json:"product_id"`
	Quantity  int  `json:"quantity"`
}

type Order struct {
	ID     uint        `json:"id"`
	UserID uint        `json:"user_id"`
	Items  []OrderItem `json:"items"`
}

type OrderProvider interface {
	Create(userID uint, items []models.OrderItemInput) (*models.Order, error)
	ListByUser(userID uint) ([]models.Order, error)
}

type Handler struct {
	repo OrderProvider
}

func NewHandler(r OrderProvider) *Handler {
	return &Handler{repo: r}
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input struct {
		UserID uint `json:"user_id"`
		Items  []struct {
			ProductID uint `json:"product_id"`
			Quantity  int  `json:"quantity"`
		} `json:"items"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	if input.UserID == 0 || len(input.Items) == 0 {
		http.Error(w, "Missing user_id or items", http.StatusBadRequest)
		return
	}

	items := make([]models.OrderItemInput, len(input.Items))
	for i, item := range input.Items {
		if item.Quantity <= 0 {
			http.Error(w, "Item quantity must be positive", http.StatusBadRequest)
			return
		}
		items[i] = models.OrderItemInput{
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}

	order, err := h.repo.Create(input.UserID, items)
	if err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			http.Error(w, "Unknown product in order items", http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, "Failed to create order", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(toResponse(order)); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) HandleList(w http.ResponseWriter, r *http.Request) {
	userID, err := strconv.ParseUint(r.URL.Query().Get("user_id"), 10, 32)
	if err != nil || userID == 0 {
		http.Error(w, "Missing or invalid user_id", http.StatusBadRequest)
		return
	}

	result, err := h.repo.ListByUser(uint(userID))
	if err != nil {
		http.Error(w, "Failed to list orders", http.StatusInternalServerError)
		return
	}

	response := make([]Order, len(result))
	for i := range result {
		response[i] = *toResponse(&result[i])
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func toResponse(order *models.Order) *Order {
	items := make([]OrderItem, len(order.Items))
	for i, item := range order.Items {
		items[i] = OrderItem{
			ID:        item.ID,
			ProductID: item.ProductID,
			Quantity:  item.Quantity,
		}
	}
	return &Order{
		ID:     order.ID,
		UserID: order.UserID,
		Items:  items,
	}
}
