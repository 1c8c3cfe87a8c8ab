package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"pharmaproc/internal/model"
	"pharmaproc/internal/repository"
)

type productRepository struct {
	store *Store
}

func (r *productRepository) nameTaken(name string, except uuid.UUID) bool {
	for id, p := range r.store.products {
		if id != except && p.Name == name {
			return true
		}
	}
	return false
}

func (r *productRepository) Create(_ context.Context, product *model.Product) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.nameTaken(product.Name, product.ID) {
		return &repository.DuplicateError{Constraint: model.IdxProductName}
	}
	product.UpdatedAt = s.stamp(&product.ID, &product.CreatedAt)
	s.products[product.ID] = *product
	return nil
}

func (r *productRepository) Update(_ context.Context, product *model.Product) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if r.nameTaken(product.Name, product.ID) {
		return &repository.DuplicateError{Constraint: model.IdxProductName}
	}
	product.UpdatedAt = s.stamp(&product.ID, &product.CreatedAt)
	s.products[product.ID] = *product
	return nil
}

func (r *productRepository) Delete(_ context.Context, id uuid.UUID) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, item := range s.orderItems {
		if item.ProductID == id {
			return fmt.Errorf("%w: fk_purchase_order_items_product", repository.ErrReferenced)
		}
	}
	delete(s.products, id)
	return nil
}

func (r *productRepository) FindByID(_ context.Context, id uuid.UUID) (*model.Product, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	product, ok := s.products[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &product, nil
}

func (r *productRepository) FindByIDs(_ context.Context, ids []uuid.UUID) ([]model.Product, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	products := make([]model.Product, 0, len(ids))
	seen := make(map[uuid.UUID]bool, len(ids))
	for _, id := range ids {
		if seen[id] {
			continue
		}
		seen[id] = true
		if p, ok := s.products[id]; ok {
			products = append(products, p)
		}
	}
	return products, nil
}

func (r *productRepository) List(_ context.Context, filter repository.ProductFilter) ([]model.Product, int64, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]model.Product, 0, len(s.products))
	for _, p := range s.products {
		if filter.Name != "" && !containsFold(p.Name, filter.Name) {
			continue
		}
		rows = append(rows, p)
	}
	sortByInsertion(s, rows, func(x model.Product) uuid.UUID { return x.ID }, false)
	return page(rows, filter.Page), int64(len(rows)), nil
}

func (r *productRepository) CountOrderItems(_ context.Context, id uuid.UUID) (int64, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	var count int64
	for _, item := range s.orderItems {
		if item.ProductID == id {
			count++
		}
	}
	return count, nil
}
