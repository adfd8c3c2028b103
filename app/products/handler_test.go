package products

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"

	"warehouse/models"
)

// --- Mock Repo ---

type MockProductRepo struct {
	SourceProducts []models.Product
	Err            error
	BOMErr         error

	// Fields to capture call arguments
	lastCalledOffset int
	lastCalledLimit  int
	lastCalledID     uint
	lastCalledCode   string
	createdEntries   []models.BOMLineInput
}

func (m *MockProductRepo) List(offset, limit int) ([]models.Product, int64, error) {
	m.lastCalledOffset = offset
	m.lastCalledLimit = limit

	if m.Err != nil {
		return nil, 0, m.Err
	}

	total := int64(len(m.SourceProducts))
	start := offset
	if start > len(m.SourceProducts) {
		start = len(m.SourceProducts)
	}
	end := offset + limit
	if end > len(m.SourceProducts) {
		end = len(m.SourceProducts)
	}
	return m.SourceProducts[start:end], total, nil
}

func (m *MockProductRepo) Create(product *models.Product, entries []models.BOMLineInput) error {
	if m.Err != nil {
		return m.Err
	}
	if m.BOMErr != nil {
		return m.BOMErr
	}
	product.ID = uint(len(m.SourceProducts) + 1)
	m.createdEntries = entries
	return nil
}

func (m *MockProductRepo) GetByCode(code string) (*models.Product, error) {
	m.lastCalledCode = code

	if m.Err != nil {
		return nil, m.Err
	}
	for i := range m.SourceProducts {
		if m.SourceProducts[i].Code == code {
			return &m.SourceProducts[i], nil
		}
	}
	return nil, models.ErrProductNotFound
}

func (m *MockProductRepo) GetByID(id uint) (*models.Product, error) {
	m.lastCalledID = id

	if m.Err != nil {
		return nil, m.Err
	}
	for i := range m.SourceProducts {
		if m.SourceProducts[i].ID == id {
			return &m.SourceProducts[i], nil
		}
	}
	return nil, models.ErrProductNotFound
}

var mockProducts = []models.Product{
	{
		ID:   1,
		Name: "Chair",
		Code: "CH-1",
		Materials: []models.BOMEntry{
			{
				ID:            1,
				ProductID:     1,
				RawMaterialID: 4,
				RawMaterial:   models.RawMaterial{ID: 4, Name: "Fabric", Unit: models.UnitSquareMeter},
				Quantity:      decimal.RequireFromString("2.5"),
				Unit:          models.UnitSquareMeter,
			},
		},
	},
	{ID: 2, Name: "Table", Code: "TB-1"},
	{ID: 3, Name: "Shelf", Code: "SH-1"},
}

// --- Tests: GET /products ---

func TestHandleGet(t *testing.T) {
	testCases := []struct {
		name               string
		query              string
		repo               *MockProductRepo
		expectedStatusCode int
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder)
		checkRepoCall      func(t *testing.T, repo *MockProductRepo)
	}{
		{
			name:               "Defaults applied",
			query:              "",
			repo:               &MockProductRepo{SourceProducts: mockProducts},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp Response
				assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, 3, resp.Total)
				assert.Len(t, resp.Products, 3)
				assert.Equal(t, "CH-1", resp.Products[0].Code)
			},
			checkRepoCall: func(t *testing.T, repo *MockProductRepo) {
				assert.Equal(t, 0, repo.lastCalledOffset)
				assert.Equal(t, 10, repo.lastCalledLimit)
			},
		},
		{
			name:               "Pagination params forwarded",
			query:              "?offset=1&limit=1",
			repo:               &MockProductRepo{SourceProducts: mockProducts},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp Response
				assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, 3, resp.Total)
				assert.Len(t, resp.Products, 1)
				assert.Equal(t, "TB-1", resp.Products[0].Code)
			},
			checkRepoCall: func(t *testing.T, repo *MockProductRepo) {
				assert.Equal(t, 1, repo.lastCalledOffset)
				assert.Equal(t, 1, repo.lastCalledLimit)
			},
		},
		{
			name:               "Limit clamped to 100",
			query:              "?limit=5000",
			repo:               &MockProductRepo{SourceProducts: mockProducts},
			expectedStatusCode: http.StatusOK,
			checkRepoCall: func(t *testing.T, repo *MockProductRepo) {
				assert.Equal(t, 100, repo.lastCalledLimit)
			},
		},
		{
			name:               "Code filter hit",
			query:              "?code=TB-1",
			repo:               &MockProductRepo{SourceProducts: mockProducts},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp Response
				assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, 1, resp.Total)
				assert.Len(t, resp.Products, 1)
				assert.Equal(t, "Table", resp.Products[0].Name)
			},
			checkRepoCall: func(t *testing.T, repo *MockProductRepo) {
				assert.Equal(t, "TB-1", repo.lastCalledCode)
			},
		},
		{
			name:               "Code filter miss",
			query:              "?code=NOPE",
			repo:               &MockProductRepo{SourceProducts: mockProducts},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp Response
				assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, 0, resp.Total)
				assert.Empty(t, resp.Products)
			},
		},
		{
			name:               "Repository error",
			query:              "",
			repo:               &MockProductRepo{Err: errors.New("db connection lost")},
			expectedStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewHandler(tc.repo)

			req := httptest.NewRequest(http.MethodGet, "/products"+tc.query, nil)
			rec := httptest.NewRecorder()

			handler.HandleGet(rec, req)

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}
			if tc.checkRepoCall != nil {
				tc.checkRepoCall(t, tc.repo)
			}
		})
	}
}

// --- Tests: POST /products ---

func TestHandleCreateProduct(t *testing.T) {
	testCases := []struct {
		name               string
		body               string
		repo               *MockProductRepo
		expectedStatusCode int
		checkRepoCall      func(t *testing.T, repo *MockProductRepo)
	}{
		{
			name:               "Success with composition",
			body:               `{"name":"Chair","code":"CH-2","materials":[{"raw_material_id":4,"quantity":"2.5"}]}`,
			repo:               &MockProductRepo{},
			expectedStatusCode: http.StatusCreated,
			checkRepoCall: func(t *testing.T, repo *MockProductRepo) {
				assert.Len(t, repo.createdEntries, 1)
				assert.Equal(t, uint(4), repo.createdEntries[0].RawMaterialID)
				assert.True(t, repo.createdEntries[0].Quantity.Equal(decimal.RequireFromString("2.5")))
			},
		},
		{
			name:               "Missing code",
			body:               `{"name":"Chair"}`,
			repo:               &MockProductRepo{},
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name:               "Non-positive quantity",
			body:               `{"name":"Chair","code":"CH-2","materials":[{"raw_material_id":4,"quantity":"0"}]}`,
			repo:               &MockProductRepo{},
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name:               "Unknown raw material",
			body:               `{"name":"Chair","code":"CH-2","materials":[{"raw_material_id":99,"quantity":"1"}]}`,
			repo:               &MockProductRepo{BOMErr: models.ErrRawMaterialNotFound},
			expectedStatusCode: http.StatusUnprocessableEntity,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewHandler(tc.repo)

			req := httptest.NewRequest(http.MethodPost, "/products", strings.NewReader(tc.body))
			rec := httptest.NewRecorder()

			handler.HandleCreate(rec, req)

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.checkRepoCall != nil {
				tc.checkRepoCall(t, tc.repo)
			}
		})
	}
}

// --- Tests: GET /products/{id} ---

func TestHandleGetProduct(t *testing.T) {
	testCases := []struct {
		name               string
		productID          string
		repo               *MockProductRepo
		expectedStatusCode int
		checkResponse      func(t *testing.T, rec *httptest.ResponseRecorder)
	}{
		{
			name:               "Success with composition",
			productID:          "1",
			repo:               &MockProductRepo{SourceProducts: mockProducts},
			expectedStatusCode: http.StatusOK,
			checkResponse: func(t *testing.T, rec *httptest.ResponseRecorder) {
				var resp struct {
					ID        uint       `json:"id"`
					Name      string     `json:"name"`
					Code      string     `json:"code"`
					Materials []Material `json:"materials"`
				}
				assert.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
				assert.Equal(t, "Chair", resp.Name)
				assert.Len(t, resp.Materials, 1)
				assert.Equal(t, "Fabric", resp.Materials[0].MaterialName)
				assert.Equal(t, 2.5, resp.Materials[0].Quantity)
				assert.Equal(t, "m2", resp.Materials[0].Unit)
			},
		},
		{
			name:               "Invalid id",
			productID:          "abc",
			repo:               &MockProductRepo{SourceProducts: mockProducts},
			expectedStatusCode: http.StatusBadRequest,
		},
		{
			name:               "Not found",
			productID:          "42",
			repo:               &MockProductRepo{SourceProducts: mockProducts},
			expectedStatusCode: http.StatusNotFound,
		},
		{
			name:               "Repository error",
			productID:          "1",
			repo:               &MockProductRepo{Err: errors.New("db connection lost")},
			expectedStatusCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			handler := NewHandler(tc.repo)

			req := httptest.NewRequest(http.MethodGet, "/products/"+tc.productID, nil)
			req.SetPathValue("id", tc.productID)
			rec := httptest.NewRecorder()

			handler.HandleGetProduct(rec, req)

			assert.Equal(t, tc.expectedStatusCode, rec.Code)
			if tc.checkResponse != nil {
				tc.checkResponse(t, rec)
			}
		})
	}
}
