package handler

import (
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmaproc/internal/model"
	"pharmaproc/internal/service"
)

func localOrder(t *testing.T, router *gin.Engine, tax *float64) service.PurchaseOrderResponse {
	t.Helper()
	s := createSupplier(t, router, "Acme Pharma", "local")
	p1 := createProduct(t, router, "Paracetamol 500mg")
	p2 := createProduct(t, router, "Amoxicillin 250mg")
	body := gin.H{
		"supplier_id":   s.ID,
		"payment_terms": "Net 30",
		"items": []gin.H{
			{"product_id": p1.ID, "quantity": 10, "rate": 5},
			{"product_id": p2.ID, "quantity": 4, "rate": 2.5},
		},
	}
	if tax != nil {
		body["tax"] = *tax
	}
	return created[service.PurchaseOrderResponse](t, router, "/api/purchase-orders/local", body)
}

func TestCreateLocalPurchaseOrder(t *testing.T) {
	router := newTestRouter(t)
	tax := 10.0

	po := localOrder(t, router, &tax)
	assert.Equal(t, "PO-20250101-0001", po.PONumber)
	assert.Equal(t, model.POStatusPending, po.Status)
	assert.Equal(t, model.SupplierTypeLocal, po.SupplierType)
	assert.InDelta(t, 66.0, po.TotalAmount, 1e-9)
	require.Len(t, po.Items, 2)
	assert.Equal(t, 1, po.Items[0].SN)
	assert.Equal(t, 2, po.Items[1].SN)
	assert.Equal(t, 10.0, po.Items[1].Total)

	w, env := doJSON(t, router, http.MethodGet, "/api/purchase-orders/"+po.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	fetched := decode[service.PurchaseOrderResponse](t, env.Data)
	assert.Equal(t, "Acme Pharma", fetched.Supplier.Name)
	assert.Equal(t, "Paracetamol 500mg", fetched.Items[0].Product.Name)
}

func TestCreatePurchaseOrderErrors(t *testing.T) {
	router := newTestRouter(t)
	local := createSupplier(t, router, "Acme Pharma", "local")
	overseas := createSupplier(t, router, "Overseas Labs", "import")
	p := createProduct(t, router, "Paracetamol 500mg")
	line := []gin.H{{"product_id": p.ID, "quantity": 1, "rate": 1}}

	tests := []struct {
		name     string
		path     string
		body     any
		wantCode int
		wantErr  string
	}{
		{"import order for local supplier", "/api/purchase-orders/import", gin.H{"supplier_id": local.ID, "items": line}, http.StatusBadRequest, ""},
		{"local order for import supplier", "/api/purchase-orders/local", gin.H{"supplier_id": overseas.ID, "items": line}, http.StatusBadRequest, ""},
		{"unknown supplier", "/api/purchase-orders/local", gin.H{"supplier_id": uuid.New(), "items": line}, http.StatusNotFound, ""},
		{"unknown product", "/api/purchase-orders/local", gin.H{"supplier_id": local.ID, "items": []gin.H{{"product_id": uuid.New(), "quantity": 1, "rate": 1}}}, http.StatusNotFound, ""},
		{"no items", "/api/purchase-orders/local", gin.H{"supplier_id": local.ID, "items": []gin.H{}}, http.StatusBadRequest, "items must contain at least 1 item"},
		{"zero quantity", "/api/purchase-orders/local", gin.H{"supplier_id": local.ID, "items": []gin.H{{"product_id": p.ID, "quantity": 0, "rate": 1}}}, http.StatusBadRequest, "items[0].quantity"},
		{"bad payment type", "/api/purchase-orders/import", gin.H{"supplier_id": overseas.ID, "payment_type": "cash", "items": line}, http.StatusBadRequest, "payment_type"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := doJSON(t, router, http.MethodPost, tt.path, tt.body)
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
			if tt.wantErr != "" {
				assert.Contains(t, env.Error, tt.wantErr)
			}
		})
	}

	w, env := doJSON(t, router, http.MethodGet, "/api/purchase-orders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 0, env.Meta.Total)
}

func TestImportOrderAndListFilters(t *testing.T) {
	router := newTestRouter(t)
	localOrder(t, router, nil)
	overseas := createSupplier(t, router, "Overseas Labs", "import")
	p := createProduct(t, router, "Insulin")

	imp := created[service.PurchaseOrderResponse](t, router, "/api/purchase-orders/import", gin.H{
		"supplier_id":     overseas.ID,
		"origin":          "Germany",
		"payment_type":    "DA",
		"dispatched_from": "Hamburg",
		"items":           []gin.H{{"product_id": p.ID, "quantity": 3, "rate": 100}},
	})
	assert.Equal(t, "PO-20250101-0002", imp.PONumber)
	require.NotNil(t, imp.PaymentType)
	assert.Equal(t, model.PaymentTypeDA, *imp.PaymentType)
	assert.Equal(t, 300.0, imp.TotalAmount)

	w, env := doJSON(t, router, http.MethodGet, "/api/purchase-orders?supplier_type=import", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list := decode[[]service.PurchaseOrderResponse](t, env.Data)
	require.Len(t, list, 1)
	assert.Equal(t, imp.ID, list[0].ID)

	w, env = doJSON(t, router, http.MethodGet, "/api/purchase-orders", nil)
	require.Equal(t, http.StatusOK, w.Code)
	list = decode[[]service.PurchaseOrderResponse](t, env.Data)
	require.Len(t, list, 2)
	assert.Equal(t, imp.ID, list[0].ID, "newest first")

	w, _ = doJSON(t, router, http.MethodGet, "/api/purchase-orders?status=shipped", nil)
	assert.Equal(t, http.StatusBadRequest, w.Code)
}

func TestStartInspection(t *testing.T) {
	router := newTestRouter(t)
	po := localOrder(t, router, nil)
	path := "/api/purchase-orders/" + po.ID.String() + "/start-inspection"

	w, env := doJSON(t, router, http.MethodPost, path, nil)
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	assert.Equal(t, model.POStatusQCInspection, decode[service.PurchaseOrderResponse](t, env.Data).Status)

	w, _ = doJSON(t, router, http.MethodPost, path, nil)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, _ = doJSON(t, router, http.MethodPost, "/api/purchase-orders/"+uuid.NewString()+"/start-inspection", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestQCReportAndReceiptFlow(t *testing.T) {
	router := newTestRouter(t)
	po := localOrder(t, router, nil)

	qcBody := gin.H{
		"purchase_order_id": po.ID,
		"inspector_name":    "Dr. Mehta",
		"items": []gin.H{
			{"po_item_id": po.Items[0].ID, "status": "rejected", "accepted_qty": 8, "rejected_qty": 2, "rejection_reason": "damaged"},
			{"po_item_id": po.Items[1].ID, "status": "accepted", "accepted_qty": 4},
		},
	}
	report := created[service.QCReportResponse](t, router, "/api/qc-reports", qcBody)
	assert.Equal(t, "QC-20250101-0001", report.QCReportNumber)
	assert.Equal(t, 12.0, report.TotalAcceptedQty)
	assert.Equal(t, 2.0, report.TotalRejectedQty)
	assert.Equal(t, 50.0, report.TotalAcceptedValue)
	assert.Equal(t, 10.0, report.TotalRejectedValue)

	w, env := doJSON(t, router, http.MethodGet, "/api/purchase-orders/"+po.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.POStatusPartiallyRejected, decode[service.PurchaseOrderResponse](t, env.Data).Status)

	w, _ = doJSON(t, router, http.MethodPost, "/api/qc-reports", qcBody)
	assert.Equal(t, http.StatusConflict, w.Code)

	w, env = doJSON(t, router, http.MethodGet, "/api/qc-reports/by-po/"+po.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, report.ID, decode[service.QCReportResponse](t, env.Data).ID)

	accepted := created[service.ReceiptResponse](t, router, "/api/receipts", gin.H{
		"purchase_order_id": po.ID, "receipt_type": "accepted", "generated_by": "stores",
	})
	assert.Equal(t, "RCP-ACC-20250101-0001", accepted.ReceiptNumber)
	assert.Equal(t, 12.0, accepted.TotalQuantity)
	assert.Equal(t, 50.0, accepted.TotalValue)

	rejected := created[service.ReceiptResponse](t, router, "/api/receipts", gin.H{
		"purchase_order_id": po.ID, "receipt_type": "rejected",
	})
	assert.Equal(t, "RCP-REJ-20250101-0001", rejected.ReceiptNumber)
	assert.Equal(t, 10.0, rejected.TotalValue)

	w, env = doJSON(t, router, http.MethodGet, "/api/receipts?receipt_type=accepted&purchase_order_id="+po.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, env.Meta.Total)

	w, env = doJSON(t, router, http.MethodGet, "/api/receipts/"+rejected.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, rejected.ReceiptNumber, decode[service.ReceiptResponse](t, env.Data).ReceiptNumber)

	// Revising the report to accept everything completes the order.
	w, env = doJSON(t, router, http.MethodPut, "/api/qc-reports/"+report.ID.String(), gin.H{
		"remarks": "re-inspected",
		"items": []gin.H{
			{"po_item_id": po.Items[0].ID, "status": "accepted", "accepted_qty": 10},
			{"po_item_id": po.Items[1].ID, "status": "accepted", "accepted_qty": 4},
		},
	})
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	revised := decode[service.QCReportResponse](t, env.Data)
	assert.Equal(t, "re-inspected", revised.Remarks)
	assert.Equal(t, 0.0, revised.TotalRejectedQty)

	w, env = doJSON(t, router, http.MethodGet, "/api/purchase-orders/"+po.ID.String(), nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, model.POStatusCompleted, decode[service.PurchaseOrderResponse](t, env.Data).Status)

	w, env = doJSON(t, router, http.MethodGet, "/api/qc-reports", nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.EqualValues(t, 1, env.Meta.Total)
}

func TestQCReportAndReceiptErrors(t *testing.T) {
	router := newTestRouter(t)
	po := localOrder(t, router, nil)

	tests := []struct {
		name     string
		method   string
		path     string
		body     any
		wantCode int
	}{
		{"receipt before QC", http.MethodPost, "/api/receipts", gin.H{"purchase_order_id": po.ID, "receipt_type": "accepted"}, http.StatusNotFound},
		{"receipt bad type", http.MethodPost, "/api/receipts", gin.H{"purchase_order_id": po.ID, "receipt_type": "partial"}, http.StatusBadRequest},
		{"receipt unknown order", http.MethodPost, "/api/receipts", gin.H{"purchase_order_id": uuid.New(), "receipt_type": "accepted"}, http.StatusNotFound},
		{"qc unknown order", http.MethodPost, "/api/qc-reports", gin.H{"purchase_order_id": uuid.New(), "items": []gin.H{{"po_item_id": po.Items[0].ID, "status": "accepted", "accepted_qty": 1}}}, http.StatusNotFound},
		{"qc unknown po item", http.MethodPost, "/api/qc-reports", gin.H{"purchase_order_id": po.ID, "items": []gin.H{{"po_item_id": uuid.New(), "status": "accepted", "accepted_qty": 1}}}, http.StatusNotFound},
		{"qc duplicate po item", http.MethodPost, "/api/qc-reports", gin.H{"purchase_order_id": po.ID, "items": []gin.H{
			{"po_item_id": po.Items[0].ID, "status": "accepted", "accepted_qty": 1},
			{"po_item_id": po.Items[0].ID, "status": "accepted", "accepted_qty": 1},
		}}, http.StatusBadRequest},
		{"qc missing items", http.MethodPost, "/api/qc-reports", gin.H{"purchase_order_id": po.ID}, http.StatusBadRequest},
		{"qc unknown report", http.MethodGet, "/api/qc-reports/" + uuid.NewString(), nil, http.StatusNotFound},
		{"qc none for order", http.MethodGet, "/api/qc-reports/by-po/" + po.ID.String(), nil, http.StatusNotFound},
		{"qc update unknown", http.MethodPut, "/api/qc-reports/" + uuid.NewString(), gin.H{"remarks": "x"}, http.StatusNotFound},
		{"receipt unknown", http.MethodGet, "/api/receipts/" + uuid.NewString(), nil, http.StatusNotFound},
		{"receipt bad filter", http.MethodGet, "/api/receipts?purchase_order_id=nope", nil, http.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w, env := doJSON(t, router, tt.method, tt.path, tt.body)
			assert.Equal(t, tt.wantCode, w.Code, w.Body.String())
			assert.Equal(t, "error", env.Status)
		})
	}
}
