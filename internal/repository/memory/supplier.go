package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"pharmaproc/internal/model"
	"pharmaproc/internal/repository"
)

type supplierRepository struct {
	store *Store
}

func (r *supplierRepository) nameTaken(name string, except uuid.UUID) bool {
	for id, s := range r.store.suppliers {
		if id != except && s.Name == name {
			return true
		}
	}
	return false
}

func (r *supplierRepository) Create(_ context.Context, supplier *model.Supplier) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.nameTaken(supplier.Name, supplier.ID) {
		return &repository.DuplicateError{Constraint: model.IdxSupplierName}
	}
	supplier.UpdatedAt = s.stamp(&supplier.ID, &supplier.CreatedAt)
	s.suppliers[supplier.ID] = *supplier
	return nil
}

func (r *supplierRepository) Update(_ context.Context, supplier *model.Supplier) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.nameTaken(supplier.Name, supplier.ID) {
		return &repository.DuplicateError{Constraint: model.IdxSupplierName}
	}
	supplier.UpdatedAt = s.stamp(&supplier.ID, &supplier.CreatedAt)
	s.suppliers[supplier.ID] = *supplier
	return nil
}

func (r *supplierRepository) Delete(_ context.Context, id uuid.UUID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, o := range s.orders {
		if o.SupplierID == id {
			return fmt.Errorf("%w: fk_purchase_orders_supplier", repository.ErrReferenced)
		}
	}
	delete(s.suppliers, id)
	return nil
}

func (r *supplierRepository) FindByID(_ context.Context, id uuid.UUID) (*model.Supplier, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	supplier, ok := s.suppliers[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &supplier, nil
}

func (r *supplierRepository) List(_ context.Context, filter repository.SupplierFilter) ([]model.Supplier, int64, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]model.Supplier, 0, len(s.suppliers))
	for _, supplier := range s.suppliers {
		if filter.SupplierType != "" && supplier.SupplierType != filter.SupplierType {
			continue
		}
		rows = append(rows, supplier)
	}
	sortByInsertion(s, rows, func(x model.Supplier) uuid.UUID { return x.ID }, false)
	return page(rows, filter.Page), int64(len(rows)), nil
}

func (r *supplierRepository) CountPurchaseOrders(_ context.Context, id uuid.UUID) (int64, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, o := range s.orders {
		if o.SupplierID == id {
			count++
		}
	}
	return count, nil
}
