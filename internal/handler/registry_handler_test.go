package handler

import (
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmaproc/internal/service"
)

func TestSupplierLifecycle(t *testing.T) {
	router := newTestRouter(t)

	s := createSupplier(t, router, "Acme Pharma", "local")
	assert.Equal(t, "Acme Pharma", s.Name)

	w, env := doJSON(t, router, http.MethodGet, "/api/suppliers/"+s.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "success", env.Status)

	w, env = doJSON(t, router, http.MethodPut, "/api/suppliers/"+s.ID.String(), gin.H{"phone": "+1 555 0100"})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	updated := decode[service.SupplierResponse](t, env.Data)
	assert.Equal(t, "+1 555 0100", updated.Phone)
	assert.Equal(t, "Acme Pharma", updated.Name)

	w, _ = doJSON(t, router, http.MethodDelete, "/api/suppliers/"+s.ID.String(), nil)
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Zero(t, w.Body.Len())

	w, env = doJSON(t, router, http.MethodGet, "/api/suppliers/"+s.ID.String(), nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, "error", env.Status)
	assert.Equal(t, http.StatusNotFound, env.StatusCode)
}

func TestSupplierErrors(t *testing.T) {
	router := newTestRouter(t)
	createSupplier(t, router, "Acme Pharma", "local")

	tests := []struct {
		name     string
		method   string
		path     string
		body     any
		wantCode int
		wantErr  string
	}{
		{"duplicate name", http.MethodPost, "/api/suppliers", gin.H{"name": "Acme Pharma", "supplier_type": "import"}, http.StatusConflict, ""},
		{"missing fields", http.MethodPost, "/api/suppliers", gin.H{}, http.StatusBadRequest, "name is required"},
		{"unknown type", http.MethodPost, "/api/suppliers", gin.H{"name": "X", "supplier_type": "regional"}, http.StatusBadRequest, ""},
		{"malformed body", http.MethodPost, "/api/suppliers", "{", http.StatusBadRequest, "Invalid request payload"},
		{"malformed id", http.MethodGet, "/api/suppliers/not-a-uuid", nil, http.StatusBadRequest, ""},
		{"unknown id", http.MethodGet, "/api/suppliers/" + uuid.NewString(), nil, http.StatusNotFound, ""},
		{"update unknown", http.MethodPut, "/api/suppliers/" + uuid.NewString(), gin.H{"phone": "1"}, http.StatusNotFound, ""},
		{"delete unknown", http.MethodDelete, "/api/suppliers/" + uuid.NewString(), nil, http.StatusNotFound, ""},
		{"bad type filter", http.MethodGet, "/api/suppliers?supplier_type=regional", nil, http.StatusBadRequest, ""},
		{"negative skip", http.MethodGet, "/api/suppliers?skip=-1", nil, http.StatusBadRequest, "skip"},
		{"zero limit", http.MethodGet, "/api/suppliers?limit=0", nil, http.StatusBadRequest, "limit"},
		{"non-integer limit", http.MethodGet, "/api/suppliers?limit=ten", nil, http.StatusBadRequest, "limit"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := doJSON(t, router, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
			assert.Equal(t, "error", env.Status)
			assert.NotEmpty(t, env.Error)
			if tt.wantErr != "" {
				assert.Contains(t, env.Error, tt.wantErr)
			}
		})
	}
}

func TestListSuppliersPagination(t *testing.T) {
	router := newTestRouter(t)
	for i := 0; i < 3; i++ {
		createSupplier(t, router, fmt.Sprintf("Local %d", i), "local")
	}
	createSupplier(t, router, "Overseas", "import")

	w, env := doJSON(t, router, http.MethodGet, "/api/suppliers?skip=1&limit=2", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotNil(t, env.Meta)
	assert.Equal(t, 1, env.Meta.Skip)
	assert.Equal(t, 2, env.Meta.Limit)
	assert.EqualValues(t, 4, env.Meta.Total)
	page := decode[[]service.SupplierResponse](t, env.Data)
	require.Len(t, page, 2)
	assert.Equal(t, "Local 1", page[0].Name)
	assert.Equal(t, "Local 2", page[1].Name)

	w, env = doJSON(t, router, http.MethodGet, "/api/suppliers?supplier_type=import", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, env.Meta.Total)
	assert.Equal(t, 100, env.Meta.Limit)

	w, env = doJSON(t, router, http.MethodGet, "/api/suppliers?limit=10000", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, 500, env.Meta.Limit)
}

func TestProductEndpoints(t *testing.T) {
	router := newTestRouter(t)

	p := createProduct(t, router, "Paracetamol 500mg")
	createProduct(t, router, "Amoxicillin 250mg")

	w, env := doJSON(t, router, http.MethodGet, "/api/products?name=PARACET", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]service.ProductResponse](t, env.Data)
	require.Len(t, list, 1)
	assert.Equal(t, p.ID, list[0].ID)

	w, env = doJSON(t, router, http.MethodPut, "/api/products/"+p.ID.String(), gin.H{"hs_code": "3004.90"})
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "3004.90", decode[service.ProductResponse](t, env.Data).HSCode)

	w, _ = doJSON(t, router, http.MethodPost, "/api/products", gin.H{"name": "Paracetamol 500mg"})
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = doJSON(t, router, http.MethodPut, "/api/products/"+p.ID.String(), gin.H{"name": "Amoxicillin 250mg"})
	assert.Equal(t, http.StatusConflict, w.Code)
}

func TestDeleteReferencedRegistryEntries(t *testing.T) {
	router := newTestRouter(t)
	s := createSupplier(t, router, "Acme Pharma", "local")
	p := createProduct(t, router, "Paracetamol 500mg")
	created[service.PurchaseOrderResponse](t, router, "/api/purchase-orders/local", gin.H{
		"supplier_id": s.ID,
		"items":       []gin.H{{"product_id": p.ID, "quantity": 1, "rate": 1}},
	})

	w, _ := doJSON(t, router, http.MethodDelete, "/api/suppliers/"+s.ID.String(), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
	w, _ = doJSON(t, router, http.MethodDelete, "/api/products/"+p.ID.String(), nil)
	assert.Equal(t, http.StatusConflict, w.Code)
}
