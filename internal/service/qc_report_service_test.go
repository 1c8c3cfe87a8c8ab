package service

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pharmaproc/internal/apperr"
	"pharmaproc/internal/model"
)

func qcLineFor(item PurchaseOrderItemResponse, accepted, rejected float64) QCReportItemRequest {
	status := model.QCStatusAccepted
	if rejected > 0 {
		status = model.QCStatusRejected
	}
	return QCReportItemRequest{
		POItemID:    item.ID.String(),
		Status:      status,
		AcceptedQty: accepted,
		RejectedQty: rejected,
	}
}

func TestCreateQCReportWithRejections(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.localOrder(t, nil, [2]float64{10, 5})

	report, err := f.qc.CreateQCReport(ctx, CreateQCReportRequest{
		PurchaseOrderID: order.ID.String(),
		InspectorName:   "Dr. Mehta",
		Items:           []QCReportItemRequest{qcLineFor(order.Items[0], 8, 2)},
	})
	require.NoError(t, err)

	assert.Equal(t, "QC-20250101-0001", report.QCReportNumber)
	require.Len(t, report.Items, 1)
	assert.Equal(t, 40.0, report.Items[0].AcceptedValue)
	assert.Equal(t, 10.0, report.Items[0].RejectedValue)
	assert.Equal(t, 8.0, report.TotalAcceptedQty)
	assert.Equal(t, 2.0, report.TotalRejectedQty)
	assert.Equal(t, 40.0, report.TotalAcceptedValue)
	assert.Equal(t, 10.0, report.TotalRejectedValue)

	po, err := f.orders.GetPurchaseOrder(ctx, order.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.POStatusPartiallyRejected, po.Status)
	assert.Equal(t, order.TotalAmount, po.TotalAmount)

	assert.Contains(t, f.events.names(), EventQCReportCreated)
	assert.Contains(t, f.events.names(), EventPurchaseOrderStatusChanged)
}

func TestCreateQCReportAllAcceptedCompletesOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.localOrder(t, nil, [2]float64{10, 5}, [2]float64{2, 50})

	_, err := f.qc.CreateQCReport(ctx, CreateQCReportRequest{
		PurchaseOrderID: order.ID.String(),
		Items: []QCReportItemRequest{
			qcLineFor(order.Items[0], 10, 0),
			qcLineFor(order.Items[1], 2, 0),
		},
	})
	require.NoError(t, err)

	po, err := f.orders.GetPurchaseOrder(ctx, order.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.POStatusCompleted, po.Status)
}

func TestCreateQCReportAfterInspectionStarted(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.localOrder(t, nil, [2]float64{1, 1})

	_, err := f.orders.StartInspection(ctx, order.ID.String())
	require.NoError(t, err)

	_, err = f.qc.CreateQCReport(ctx, CreateQCReportRequest{
		PurchaseOrderID: order.ID.String(),
		Items:           []QCReportItemRequest{qcLineFor(order.Items[0], 1, 0)},
	})
	require.NoError(t, err)

	po, err := f.orders.GetPurchaseOrder(ctx, order.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.POStatusCompleted, po.Status)
}

func TestSecondQCReportIsConflict(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.localOrder(t, nil, [2]float64{1, 1})
	req := CreateQCReportRequest{
		PurchaseOrderID: order.ID.String(),
		Items:           []QCReportItemRequest{qcLineFor(order.Items[0], 1, 0)},
	}

	_, err := f.qc.CreateQCReport(ctx, req)
	require.NoError(t, err)

	// A different payload still conflicts.
	req.Items = []QCReportItemRequest{qcLineFor(order.Items[0], 0, 1)}
	_, err = f.qc.CreateQCReport(ctx, req)
	assert.True(t, apperr.IsConflict(err), "got %v", err)
}

func TestConcurrentQCReportsForOneOrder(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.localOrder(t, nil, [2]float64{1, 1})

	const workers = 8
	var (
		wg        sync.WaitGroup
		mu        sync.Mutex
		created   int
		conflicts int
	)
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := f.qc.CreateQCReport(ctx, CreateQCReportRequest{
				PurchaseOrderID: order.ID.String(),
				Items:           []QCReportItemRequest{qcLineFor(order.Items[0], 1, 0)},
			})
			mu.Lock()
			defer mu.Unlock()
			switch {
			case err == nil:
				created++
			case apperr.IsConflict(err):
				conflicts++
			default:
				t.Errorf("unexpected error: %v", err)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, created)
	assert.Equal(t, workers-1, conflicts)
}

func TestCreateQCReportPreconditions(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.localOrder(t, nil, [2]float64{1, 1})
	other := f.localOrder(t, nil, [2]float64{1, 1})

	t.Run("missing order", func(t *testing.T) {
		_, err := f.qc.CreateQCReport(ctx, CreateQCReportRequest{
			PurchaseOrderID: uuid.NewString(),
			Items:           []QCReportItemRequest{qcLineFor(order.Items[0], 1, 0)},
		})
		assert.True(t, apperr.IsNotFound(err))
	})

	t.Run("unknown po item", func(t *testing.T) {
		missing := uuid.New()
		_, err := f.qc.CreateQCReport(ctx, CreateQCReportRequest{
			PurchaseOrderID: order.ID.String(),
			Items: []QCReportItemRequest{
				{POItemID: missing.String(), Status: model.QCStatusAccepted, AcceptedQty: 1},
			},
		})
		assert.True(t, apperr.IsNotFound(err))
		assert.Contains(t, err.Error(), missing.String())
	})

	t.Run("po item of another order", func(t *testing.T) {
		_, err := f.qc.CreateQCReport(ctx, CreateQCReportRequest{
			PurchaseOrderID: order.ID.String(),
			Items:           []QCReportItemRequest{qcLineFor(other.Items[0], 1, 0)},
		})
		assert.True(t, apperr.IsNotFound(err))
	})

	t.Run("malformed lines", func(t *testing.T) {
		item := order.Items[0].ID.String()
		cases := [][]QCReportItemRequest{
			nil,
			{{POItemID: "x", Status: model.QCStatusAccepted}},
			{{POItemID: item, Status: "ok"}},
			{{POItemID: item, Status: model.QCStatusAccepted, AcceptedQty: -1}},
			{{POItemID: item, Status: model.QCStatusAccepted}, {POItemID: item, Status: model.QCStatusAccepted}},
		}
		for i, items := range cases {
			_, err := f.qc.CreateQCReport(ctx, CreateQCReportRequest{PurchaseOrderID: order.ID.String(), Items: items})
			assert.True(t, apperr.IsValidation(err), "case %d: %v", i, err)
		}
	})

	// None of the failures touched the order.
	po, err := f.orders.GetPurchaseOrder(ctx, order.ID.String())
	require.NoError(t, err)
	assert.Equal(t, model.POStatusPending, po.Status)
	_, err = f.qc.GetQCReportByPurchaseOrder(ctx, order.ID.String())
	assert.True(t, apperr.IsNotFound(err))
}

func TestUpdateQCReport(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.localOrder(t, nil, [2]float64{10, 5})

	created, err := f.qc.CreateQCReport(ctx, CreateQCReportRequest{
		PurchaseOrderID: order.ID.String(),
		InspectorName:   "First",
		Remarks:         "initial",
		Items:           []QCReportItemRequest{qcLineFor(order.Items[0], 8, 2)},
	})
	require.NoError(t, err)

	t.Run("header only", func(t *testing.T) {
		updated, err := f.qc.UpdateQCReport(ctx, created.ID.String(), UpdateQCReportRequest{InspectorName: ptr("Second")})
		require.NoError(t, err)
		assert.Equal(t, "Second", updated.InspectorName)
		assert.Equal(t, "initial", updated.Remarks)
		assert.Equal(t, created.TotalRejectedQty, updated.TotalRejectedQty)
		assert.Equal(t, created.QCReportNumber, updated.QCReportNumber)
		require.Len(t, updated.Items, 1)
		assert.Equal(t, created.Items[0].ID, updated.Items[0].ID)
	})

	t.Run("replacing items re-settles the order", func(t *testing.T) {
		items := []QCReportItemRequest{qcLineFor(order.Items[0], 10, 0)}
		updated, err := f.qc.UpdateQCReport(ctx, created.ID.String(), UpdateQCReportRequest{Items: &items})
		require.NoError(t, err)

		assert.Equal(t, 10.0, updated.TotalAcceptedQty)
		assert.Zero(t, updated.TotalRejectedQty)
		assert.Equal(t, 50.0, updated.TotalAcceptedValue)
		assert.Zero(t, updated.TotalRejectedValue)

		po, err := f.orders.GetPurchaseOrder(ctx, order.ID.String())
		require.NoError(t, err)
		assert.Equal(t, model.POStatusCompleted, po.Status)
	})

	t.Run("unknown report", func(t *testing.T) {
		_, err := f.qc.UpdateQCReport(ctx, uuid.NewString(), UpdateQCReportRequest{Remarks: ptr("x")})
		assert.True(t, apperr.IsNotFound(err))
	})
}

func TestQCReportReads(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	order := f.localOrder(t, nil, [2]float64{1, 1})

	created, err := f.qc.CreateQCReport(ctx, CreateQCReportRequest{
		PurchaseOrderID: order.ID.String(),
		Items:           []QCReportItemRequest{qcLineFor(order.Items[0], 1, 0)},
	})
	require.NoError(t, err)

	byID, err := f.qc.GetQCReport(ctx, created.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created, byID)

	byOrder, err := f.qc.GetQCReportByPurchaseOrder(ctx, order.ID.String())
	require.NoError(t, err)
	assert.Equal(t, created, byOrder)

	list, total, err := f.qc.GetQCReports(ctx, QCReportListQuery{Limit: 100})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	require.Len(t, list, 1)
	assert.Equal(t, created.ID, list[0].ID)
}
