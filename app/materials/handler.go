package materials

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"warehouse/models"
)

type RawMaterialResponse struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Unit string `json:"unit"`
}

type BatchResponse struct {
	ID        uint    `json:"id"`
	Remainder float64 `json:"remainder"`
	Unit      string  `json:"unit"`
	Price     float64 `json:"price"`
}

type MaterialProvider interface {
	ListRawMaterials() ([]models.RawMaterial, error)
	CreateRawMaterial(material *models.RawMaterial) error
	UpdateRawMaterialUnit(id uint, unit models.Unit) error
	ListBatches(rawMaterialID uint) ([]models.WarehouseBatch, error)
	CreateBatch(rawMaterialID uint, remainder decimal.Decimal, price float64) (*models.WarehouseBatch, error)
	AdjustRemainder(batchID uint, delta decimal.Decimal) (*models.WarehouseBatch, error)
}

type Handler struct {
	repo MaterialProvider
}

func NewHandler(r MaterialProvider) *Handler {
	return &Handler{repo: r}
}

func (h *Handler) HandleGetAll(w http.ResponseWriter, r *http.Request) {
	result, err := h.repo.ListRawMaterials()
	if err != nil {
		http.Error(w, "Failed to fetch raw materials", http.StatusInternalServerError)
		return
	}

	response := make([]RawMaterialResponse, len(result))
	for i, m := range result {
		response[i] = RawMaterialResponse{
			ID:   m.ID,
			Name: m.Name,
			Unit: string(m.Unit),
		}
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name string `json:"name"`
		Unit string `json:"unit"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	if input.Name == "" {
		http.Error(w, "Missing name", http.StatusBadRequest)
		return
	}
	unit, err := models.ParseUnit(input.Unit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	material := &models.RawMaterial{
		Name: input.Name,
		Unit: unit,
	}
	if err := h.repo.CreateRawMaterial(material); err != nil {
		http.Error(w, "Failed to create raw material", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(RawMaterialResponse{
		ID:   material.ID,
		Name: material.Name,
		Unit: string(material.Unit),
	}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// HandleUpdateUnit is the administrative correction path for a material's
// unit of measure. The cached unit on BOM entries and batches is re-derived
// in the same transaction so the denormalized copies never go stale.
func (h *Handler) HandleUpdateUnit(w http.ResponseWriter, r *http.Request) {
	materialID, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		http.Error(w, "Invalid raw material id", http.StatusBadRequest)
		return
	}

	var input struct {
		Unit string `json:"unit"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	unit, err := models.ParseUnit(input.Unit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}

	if err := h.repo.UpdateRawMaterialUnit(uint(materialID), unit); err != nil {
		if errors.Is(err, models.ErrRawMaterialNotFound) {
			http.Error(w, "Raw material not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to update unit", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(map[string]string{
		"message": "Unit updated successfully",
	}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) HandleGetBatches(w http.ResponseWriter, r *http.Request) {
	materialID, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		http.Error(w, "Invalid raw material id", http.StatusBadRequest)
		return
	}

	batches, err := h.repo.ListBatches(uint(materialID))
	if err != nil {
		http.Error(w, "Failed to fetch batches", http.StatusInternalServerError)
		return
	}

	response := make([]BatchResponse, len(batches))
	for i, b := range batches {
		response[i] = toBatchResponse(&b)
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) HandleCreateBatch(w http.ResponseWriter, r *http.Request) {
	materialID, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		http.Error(w, "Invalid raw material id", http.StatusBadRequest)
		return
	}

	var input struct {
		Remainder string  `json:"remainder"`
		Price     float64 `json:"price"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	remainder, err := decimal.NewFromString(input.Remainder)
	if err != nil || !remainder.IsPositive() {
		http.Error(w, "Remainder must be a positive decimal", http.StatusBadRequest)
		return
	}

	batch, err := h.repo.CreateBatch(uint(materialID), remainder, input.Price)
	if err != nil {
		if errors.Is(err, models.ErrRawMaterialNotFound) {
			http.Error(w, "Raw material not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to create batch", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	response := toBatchResponse(batch)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// HandleAdjustBatch applies an explicit stock correction. This endpoint is
// the only way remainders change; allocation recomputes never touch them.
func (h *Handler) HandleAdjustBatch(w http.ResponseWriter, r *http.Request) {
	batchID, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		http.Error(w, "Invalid batch id", http.StatusBadRequest)
		return
	}

	var input struct {
		Delta string `json:"delta"`
	}
	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	delta, err := decimal.NewFromString(input.Delta)
	if err != nil || delta.IsZero() {
		http.Error(w, "Delta must be a non-zero decimal", http.StatusBadRequest)
		return
	}

	batch, err := h.repo.AdjustRemainder(uint(batchID), delta)
	if err != nil {
		switch {
		case errors.Is(err, models.ErrBatchNotFound):
			http.Error(w, "Batch not found", http.StatusNotFound)
		case errors.Is(err, models.ErrInsufficientRemainder):
			http.Error(w, "Adjustment exceeds batch remainder", http.StatusUnprocessableEntity)
		default:
			http.Error(w, "Failed to adjust batch", http.StatusInternalServerError)
		}
		return
	}

	w.Header().Set("Content-Type", "application/json")
	response := toBatchResponse(batch)
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func toBatchResponse(b *models.WarehouseBatch) BatchResponse {
	return BatchResponse{
		ID:        b.ID,
		Remainder: b.Remainder.InexactFloat64(),
		Unit:      string(b.Unit),
		Price:     b.Price,
	}
}
