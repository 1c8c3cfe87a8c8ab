// Package memory implements the repository interfaces on in-process maps.
// It backs STORE_DRIVER=memory and the service tests.
package memory

import (
	"context"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"pharmaproc/internal/model"
	"pharmaproc/internal/repository"
)

type Store struct {
	// txMu serializes transactions; mu guards the maps themselves.
	txMu sync.Mutex
	mu   sync.RWMutex

	suppliers  map[uuid.UUID]model.Supplier
	products   map[uuid.UUID]model.Product
	orders     map[uuid.UUID]model.PurchaseOrder
	orderItems map[uuid.UUID]model.PurchaseOrderItem
	qcReports  map[uuid.UUID]model.QCReport
	qcItems    map[uuid.UUID]model.QCReportItem
	receipts   map[uuid.UUID]model.Receipt
	sequences  map[string]int64

	// serials records insertion order so listings are stable.
	serials    map[uuid.UUID]int64
	nextSerial int64

	now func() time.Time
}

func New() *Store {
	return &Store{
		suppliers:  make(map[uuid.UUID]model.Supplier),
		products:   make(map[uuid.UUID]model.Product),
		orders:     make(map[uuid.UUID]model.PurchaseOrder),
		orderItems: make(map[uuid.UUID]model.PurchaseOrderItem),
		qcReports:  make(map[uuid.UUID]model.QCReport),
		qcItems:    make(map[uuid.UUID]model.QCReportItem),
		receipts:   make(map[uuid.UUID]model.Receipt),
		sequences:  make(map[string]int64),
		serials:    make(map[uuid.UUID]int64),
		now:        func() time.Time { return time.Now().UTC() },
	}
}

// Repositories bundles every repository backed by s.
func (s *Store) Repositories() repository.Repositories {
	return repository.Repositories{
		Tx:             &transactionManager{store: s},
		Suppliers:      &supplierRepository{store: s},
		Products:       &productRepository{store: s},
		PurchaseOrders: &purchaseOrderRepository{store: s},
		QCReports:      &qcReportRepository{store: s},
		Receipts:       &receiptRepository{store: s},
		Sequences:      &sequenceRepository{store: s},
	}
}

type snapshot struct {
	suppliers  map[uuid.UUID]model.Supplier
	products   map[uuid.UUID]model.Product
	orders     map[uuid.UUID]model.PurchaseOrder
	orderItems map[uuid.UUID]model.PurchaseOrderItem
	qcReports  map[uuid.UUID]model.QCReport
	qcItems    map[uuid.UUID]model.QCReportItem
	receipts   map[uuid.UUID]model.Receipt
}

func cloneMap[K comparable, V any](in map[K]V) map[K]V {
	out := make(map[K]V, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

func (s *Store) snapshot() snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return snapshot{
		suppliers:  cloneMap(s.suppliers),
		products:   cloneMap(s.products),
		orders:     cloneMap(s.orders),
		orderItems: cloneMap(s.orderItems),
		qcReports:  cloneMap(s.qcReports),
		qcItems:    cloneMap(s.qcItems),
		receipts:   cloneMap(s.receipts),
	}
}

func (s *Store) restore(snap snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.suppliers = snap.suppliers
	s.products = snap.products
	s.orders = snap.orders
	s.orderItems = snap.orderItems
	s.qcReports = snap.qcReports
	s.qcItems = snap.qcItems
	s.receipts = snap.receipts
}

type txMarker struct{}

type transactionManager struct {
	store *Store
}

// RunInTx holds the store-wide transaction lock for the duration of fn and
// rolls every entity map back if fn fails. Sequences are not rolled back.
func (t *transactionManager) RunInTx(ctx context.Context, fn func(txCtx context.Context) error) error {
	if ctx.Value(txMarker{}) != nil {
		return fn(ctx)
	}

	t.store.txMu.Lock()
	defer t.store.txMu.Unlock()

	snap := t.store.snapshot()
	if err := fn(context.WithValue(ctx, txMarker{}, true)); err != nil {
		t.store.restore(snap)
		return err
	}
	return nil
}

func page[T any](rows []T, p repository.Page) []T {
	if p.Skip >= len(rows) {
		return []T{}
	}
	rows = rows[p.Skip:]
	if p.Limit > 0 && p.Limit < len(rows) {
		rows = rows[:p.Limit]
	}
	return rows
}

func containsFold(s, sub string) bool {
	return strings.Contains(strings.ToLower(s), strings.ToLower(sub))
}

// stamp assigns an id, creation time and insertion serial. Callers hold mu.
func (s *Store) stamp(id *uuid.UUID, createdAt *time.Time) time.Time {
	now := s.now()
	if *id == uuid.Nil {
		*id = uuid.New()
	}
	if createdAt.IsZero() {
		*createdAt = now
	}
	if _, ok := s.serials[*id]; !ok {
		s.nextSerial++
		s.serials[*id] = s.nextSerial
	}
	return now
}

// latestNumber picks the highest of numbers issued under scope, ordered the
// same way as the sql repositories order them.
func latestNumber(scope string, numbers []string) string {
	var latest string
	for _, n := range numbers {
		if !strings.HasPrefix(n, scope+"-") {
			continue
		}
		if len(n) > len(latest) || (len(n) == len(latest) && n > latest) {
			latest = n
		}
	}
	return latest
}

// sortByInsertion orders rows oldest first, or newest first when desc is set.
func sortByInsertion[T any](s *Store, rows []T, id func(T) uuid.UUID, desc bool) {
	sort.SliceStable(rows, func(i, j int) bool {
		a, b := s.serials[id(rows[i])], s.serials[id(rows[j])]
		if desc {
			return a > b
		}
		return a < b
	})
}
