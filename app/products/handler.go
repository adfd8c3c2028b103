package products

import (
	"encoding/json"
	"errors"
	"net/http"
	"strconv"

	"github.com/shopspring/decimal"

	"warehouse/models"
)

type Response struct {
	Total    int       `json:"total"`
	Products []Product `json:"products"`
}

type Product struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
	Code string `json:"code"`
}

type Material struct {
	MaterialName string  `json:"material_name"`
	Quantity     float64 `json:"quantity"`
	Unit         string  `json:"unit"`
}

type ProductProvider interface {
	GetByID(id uint) (*models.Product, error)
	GetByCode(code string) (*models.Product, error)
	List(offset, limit int) ([]models.Product, int64, error)
	Create(product *models.Product, entries []models.BOMLineInput) error
}

type Handler struct {
	repo ProductProvider
}

func NewHandler(r ProductProvider) *Handler {
	return &Handler{
		repo: r,
	}
}

func (h *Handler) HandleGet(w http.ResponseWriter, r *http.Request) {
	if code := r.URL.Query().Get("code"); code != "" {
		h.getByCode(w, code)
		return
	}

	// Parse pagination query params
	offset := 0
	limit := 10

	if oStr := r.URL.Query().Get("offset"); oStr != "" {
		if o, err := strconv.Atoi(oStr); err == nil && o >= 0 {
			offset = o
		}
	}

	if lStr := r.URL.Query().Get("limit"); lStr != "" {
		if l, err := strconv.Atoi(lStr); err == nil {
			if l < 1 {
				limit = 1
			} else if l > 100 {
				limit = 100
			} else {
				limit = l
			}
		}
	}

	res, total, err := h.repo.List(offset, limit)
	if err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	products := make([]Product, len(res))
	for i, p := range res {
		products[i] = Product{
			ID:   p.ID,
			Name: p.Name,
			Code: p.Code,
		}
	}

	w.Header().Set("Content-Type", "application/json")
	response := Response{
		Total:    int(total),
		Products: products,
	}
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// getByCode serves the ?code= filter as a zero-or-one element listing.
func (h *Handler) getByCode(w http.ResponseWriter, code string) {
	response := Response{Products: []Product{}}

	product, err := h.repo.GetByCode(code)
	switch {
	case err == nil:
		response.Total = 1
		response.Products = append(response.Products, Product{
			ID:   product.ID,
			Name: product.Name,
			Code: product.Code,
		})
	case errors.Is(err, models.ErrProductNotFound):
		// Empty result, not an error.
	default:
		http.Error(w, err.Error(), http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

// HandleCreate registers a product together with its bill of materials.
// Entry units are derived from each referenced raw material, not supplied by
// the caller.
func (h *Handler) HandleCreate(w http.ResponseWriter, r *http.Request) {
	var input struct {
		Name      string `json:"name"`
		Code      string `json:"code"`
		Materials []struct {
			RawMaterialID uint   `json:"raw_material_id"`
			Quantity      string `json:"quantity"`
		} `json:"materials"`
	}

	if err := json.NewDecoder(r.Body).Decode(&input); err != nil {
		http.Error(w, "Invalid JSON body", http.StatusBadRequest)
		return
	}

	if input.Name == "" || input.Code == "" {
		http.Error(w, "Missing name or code", http.StatusBadRequest)
		return
	}

	entries := make([]models.BOMLineInput, len(input.Materials))
	for i, line := range input.Materials {
		quantity, err := decimal.NewFromString(line.Quantity)
		if err != nil || !quantity.IsPositive() {
			http.Error(w, "Material quantity must be a positive decimal", http.StatusBadRequest)
			return
		}
		entries[i] = models.BOMLineInput{
			RawMaterialID: line.RawMaterialID,
			Quantity:      quantity,
		}
	}

	product := &models.Product{
		Name: input.Name,
		Code: input.Code,
	}
	if err := h.repo.Create(product, entries); err != nil {
		if errors.Is(err, models.ErrRawMaterialNotFound) {
			http.Error(w, "Unknown raw material in composition", http.StatusUnprocessableEntity)
			return
		}
		http.Error(w, "Failed to create product", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusCreated)
	if err := json.NewEncoder(w).Encode(Product{
		ID:   product.ID,
		Name: product.Name,
		Code: product.Code,
	}); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}

func (h *Handler) HandleGetProduct(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseUint(r.PathValue("id"), 10, 32)
	if err != nil {
		http.Error(w, "Invalid product id", http.StatusBadRequest)
		return
	}

	product, err := h.repo.GetByID(uint(id))
	if err != nil {
		if errors.Is(err, models.ErrProductNotFound) {
			http.Error(w, "Product not found", http.StatusNotFound)
			return
		}
		http.Error(w, "Failed to retrieve product", http.StatusInternalServerError)
		return
	}

	materials := make([]Material, len(product.Materials))
	for i, entry := range product.Materials {
		materials[i] = Material{
			MaterialName: entry.RawMaterial.Name,
			Quantity:     entry.Quantity.InexactFloat64(),
			Unit:         string(entry.Unit),
		}
	}

	response := struct {
		ID        uint       `json:"id"`
		Name      string     `json:"name"`
		Code      string     `json:"code"`
		Materials []Material `json:"materials"`
	}{
		ID:        product.ID,
		Name:      product.Name,
		Code:      product.Code,
		Materials: materials,
	}

	w.Header().Set("Content-Type", "application/json")
	if err := json.NewEncoder(w).Encode(response); err != nil {
		http.Error(w, err.Error(), http.StatusInternalServerError)
	}
}
