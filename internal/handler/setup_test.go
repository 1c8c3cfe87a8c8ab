package handler

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"pharmaproc/internal/metrics"
	"pharmaproc/internal/numbering"
	"pharmaproc/internal/repository/memory"
	"pharmaproc/internal/service"
	"pharmaproc/pkg/response"
)

var testDay = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

type envelope struct {
	Status     string          `json:"status"`
	StatusCode int             `json:"status_code"`
	Data       json.RawMessage `json:"data"`
	Error      string          `json:"error"`
	Meta       *response.Meta  `json:"meta"`
}

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)
	RegisterValidation()

	repos := memory.New().Repositories()
	numbers := numbering.NewGenerator(repos.Sequences).WithClock(func() time.Time { return testDay })
	m := metrics.New()

	router := gin.New()
	api := router.Group("/api")
	NewSupplierHandler(service.NewSupplierService(repos.Suppliers, repos.Tx)).RegisterRoutes(api)
	NewProductHandler(service.NewProductService(repos.Products, repos.Tx)).RegisterRoutes(api)
	NewPurchaseOrderHandler(service.NewPurchaseOrderService(repos.PurchaseOrders, repos.Suppliers, repos.Products, repos.Tx, numbers, nil, m)).RegisterRoutes(api)
	NewQCReportHandler(service.NewQCReportService(repos.QCReports, repos.PurchaseOrders, repos.Tx, numbers, nil, m)).RegisterRoutes(api)
	NewReceiptHandler(service.NewReceiptService(repos.Receipts, repos.QCReports, repos.PurchaseOrders, repos.Tx, numbers, nil, m)).RegisterRoutes(api)
	return router
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any) (*httptest.ResponseRecorder, envelope) {
	t.Helper()

	var buf bytes.Buffer
	if body != nil {
		if raw, ok := body.(string); ok {
			buf.WriteString(raw)
		} else {
			require.NoError(t, json.NewEncoder(&buf).Encode(body))
		}
	}
	req := httptest.NewRequest(method, path, &buf)
	req.Header.Set("Content-Type", "application/json")
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)

	var env envelope
	if w.Body.Len() > 0 {
		require.NoError(t, json.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	}
	return w, env
}

func decode[T any](t *testing.T, raw json.RawMessage) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal(raw, &v))
	return v
}

// created posts body and returns the decoded data of a 201 response.
func created[T any](t *testing.T, router *gin.Engine, path string, body any) T {
	t.Helper()
	w, env := doJSON(t, router, http.MethodPost, path, body)
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	return decode[T](t, env.Data)
}

func createSupplier(t *testing.T, router *gin.Engine, name, kind string) service.SupplierResponse {
	t.Helper()
	return created[service.SupplierResponse](t, router, "/api/suppliers", gin.H{"name": name, "supplier_type": kind})
}

func createProduct(t *testing.T, router *gin.Engine, name string) service.ProductResponse {
	t.Helper()
	return created[service.ProductResponse](t, router, "/api/products", gin.H{"name": name})
}
