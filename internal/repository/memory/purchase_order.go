package memory

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"pharmaproc/internal/model"
	"pharmaproc/internal/repository"
)

type purchaseOrderRepository struct {
	store *Store
}

func (r *purchaseOrderRepository) Create(_ context.Context, order *model.PurchaseOrder) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.orders {
		if o.PONumber == order.PONumber {
			return &repository.DuplicateError{Constraint: model.IdxPONumber}
		}
	}
	if _, ok := s.suppliers[order.SupplierID]; !ok {
		return fmt.Errorf("%w: fk_purchase_orders_supplier", repository.ErrReferenced)
	}
	for _, item := range order.Items {
		if _, ok := s.products[item.ProductID]; !ok {
			return fmt.Errorf("%w: fk_purchase_order_items_product", repository.ErrReferenced)
		}
	}

	order.UpdatedAt = s.stamp(&order.ID, &order.CreatedAt)
	if order.Status == "" {
		order.Status = model.POStatusPending
	}
	for i := range order.Items {
		item := &order.Items[i]
		item.PurchaseOrderID = order.ID
		s.stamp(&item.ID, &item.CreatedAt)
		stored := *item
		stored.Product = nil
		s.orderItems[item.ID] = stored
	}

	stored := *order
	stored.Supplier = nil
	stored.Items = nil
	s.orders[order.ID] = stored
	return nil
}

// hydrate attaches the supplier and the ordered items. Callers hold mu.
func (r *purchaseOrderRepository) hydrate(order model.PurchaseOrder) model.PurchaseOrder {
	s := r.store
	if supplier, ok := s.suppliers[order.SupplierID]; ok {
		order.Supplier = &supplier
	}

	items := make([]model.PurchaseOrderItem, 0)
	for _, item := range s.orderItems {
		if item.PurchaseOrderID != order.ID {
			continue
		}
		if product, ok := s.products[item.ProductID]; ok {
			item.Product = &product
		}
		items = append(items, item)
	}
	sortByInsertion(s, items, func(x model.PurchaseOrderItem) uuid.UUID { return x.ID }, false)
	sort.SliceStable(items, func(i, j int) bool { return items[i].SN < items[j].SN })
	order.Items = items
	return order
}

func (r *purchaseOrderRepository) FindByID(_ context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	order = r.hydrate(order)
	return &order, nil
}

// FindByIDForUpdate relies on the store-wide transaction lock.
func (r *purchaseOrderRepository) FindByIDForUpdate(_ context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	order, ok := s.orders[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &order, nil
}

func (r *purchaseOrderRepository) FindItemByID(_ context.Context, id uuid.UUID) (*model.PurchaseOrderItem, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	item, ok := s.orderItems[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &item, nil
}

func (r *purchaseOrderRepository) UpdateStatus(_ context.Context, id uuid.UUID, status model.POStatus) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	order, ok := s.orders[id]
	if !ok {
		return nil
	}
	order.Status = status
	order.UpdatedAt = s.now()
	s.orders[id] = order
	return nil
}

func (r *purchaseOrderRepository) List(_ context.Context, filter repository.PurchaseOrderFilter) ([]model.PurchaseOrder, int64, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]model.PurchaseOrder, 0, len(s.orders))
	for _, o := range s.orders {
		if filter.SupplierType != "" && o.SupplierType != filter.SupplierType {
			continue
		}
		if filter.Status != "" && o.Status != filter.Status {
			continue
		}
		if filter.SupplierID != nil && o.SupplierID != *filter.SupplierID {
			continue
		}
		rows = append(rows, o)
	}
	sortByInsertion(s, rows, func(x model.PurchaseOrder) uuid.UUID { return x.ID }, true)

	total := int64(len(rows))
	rows = page(rows, filter.Page)
	for i := range rows {
		rows[i] = r.hydrate(rows[i])
	}
	return rows, total, nil
}

func (r *purchaseOrderRepository) LatestNumber(_ context.Context, scope string) (string, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	numbers := make([]string, 0, len(s.orders))
	for _, o := range s.orders {
		numbers = append(numbers, o.PONumber)
	}
	return latestNumber(scope, numbers), nil
}
