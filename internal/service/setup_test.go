package service

import (
	"context"
	"fmt"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"pharmaproc/internal/metrics"
	"pharmaproc/internal/model"
	"pharmaproc/internal/numbering"
	"pharmaproc/internal/repository"
	"pharmaproc/internal/repository/memory"
)

var testDay = time.Date(2025, 1, 1, 9, 0, 0, 0, time.UTC)

type recordedEvent struct {
	name string
	data interface{}
}

type recordingPublisher struct {
	mu     sync.Mutex
	events []recordedEvent
}

func (p *recordingPublisher) Publish(event string, data interface{}) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, recordedEvent{name: event, data: data})
}

func (p *recordingPublisher) names() []string {
	p.mu.Lock()
	defer p.mu.Unlock()
	names := make([]string, 0, len(p.events))
	for _, e := range p.events {
		names = append(names, e.name)
	}
	return names
}

type fixture struct {
	repos     repository.Repositories
	events    *recordingPublisher
	metrics   *metrics.Metrics
	suppliers SupplierService
	products  ProductService
	orders    PurchaseOrderService
	qc        QCReportService
	receipts  ReceiptService
	seq       int
}

// fixtureOption swaps the transaction manager or sequencer the services use.
type fixtureOption func(repos *repository.Repositories, seq *numbering.Sequencer)

func withSequencer(wrap func(repository.Repositories) numbering.Sequencer) fixtureOption {
	return func(repos *repository.Repositories, seq *numbering.Sequencer) {
		*seq = wrap(*repos)
	}
}

func withTx(wrap func(repository.TransactionManager) repository.TransactionManager) fixtureOption {
	return func(repos *repository.Repositories, _ *numbering.Sequencer) {
		repos.Tx = wrap(repos.Tx)
	}
}

func newFixture(t *testing.T, opts ...fixtureOption) *fixture {
	t.Helper()

	repos := memory.New().Repositories()
	var seq numbering.Sequencer = repos.Sequences
	for _, opt := range opts {
		opt(&repos, &seq)
	}
	numbers := numbering.NewGenerator(seq).WithClock(func() time.Time { return testDay })
	events := &recordingPublisher{}
	m := metrics.New()

	return &fixture{
		repos:     repos,
		events:    events,
		metrics:   m,
		suppliers: NewSupplierService(repos.Suppliers, repos.Tx),
		products:  NewProductService(repos.Products, repos.Tx),
		orders:    NewPurchaseOrderService(repos.PurchaseOrders, repos.Suppliers, repos.Products, repos.Tx, numbers, events, m),
		qc:        NewQCReportService(repos.QCReports, repos.PurchaseOrders, repos.Tx, numbers, events, m),
		receipts:  NewReceiptService(repos.Receipts, repos.QCReports, repos.PurchaseOrders, repos.Tx, numbers, events, m),
	}
}

func (f *fixture) supplier(t *testing.T, name string, kind model.SupplierType) SupplierResponse {
	t.Helper()
	res, err := f.suppliers.CreateSupplier(context.Background(), CreateSupplierRequest{Name: name, SupplierType: kind})
	require.NoError(t, err)
	return res
}

func (f *fixture) product(t *testing.T, name string) ProductResponse {
	t.Helper()
	res, err := f.products.CreateProduct(context.Background(), CreateProductRequest{Name: name})
	require.NoError(t, err)
	return res
}

// localOrder creates a local order with one line per (quantity, rate) pair.
func (f *fixture) localOrder(t *testing.T, tax *float64, lines ...[2]float64) PurchaseOrderResponse {
	t.Helper()
	f.seq++
	supplier := f.supplier(t, fmt.Sprintf("Local Pharma %d", f.seq), model.SupplierTypeLocal)
	product := f.product(t, fmt.Sprintf("Product %d", f.seq))

	items := make([]PurchaseOrderItemRequest, 0, len(lines))
	for i, l := range lines {
		items = append(items, PurchaseOrderItemRequest{
			ProductID: product.ID.String(),
			SN:        i + 1,
			Quantity:  l[0],
			Rate:      l[1],
		})
	}
	res, err := f.orders.CreateLocalPurchaseOrder(context.Background(), CreateLocalPurchaseOrderRequest{
		SupplierID: supplier.ID.String(),
		Tax:        tax,
		Items:      items,
	})
	require.NoError(t, err)
	return res
}

func ptr[T any](v T) *T {
	return &v
}
