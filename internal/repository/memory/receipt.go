package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"pharmaproc/internal/model"
	"pharmaproc/internal/repository"
)

type receiptRepository struct {
	store *Store
}

func (r *receiptRepository) Create(_ context.Context, receipt *model.Receipt) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.receipts {
		if existing.ReceiptNumber == receipt.ReceiptNumber {
			return &repository.DuplicateError{Constraint: model.IdxReceiptNumber}
		}
	}
	if _, ok := s.orders[receipt.PurchaseOrderID]; !ok {
		return fmt.Errorf("%w: fk_receipts_purchase_order", repository.ErrReferenced)
	}

	s.stamp(&receipt.ID, &receipt.CreatedAt)
	stored := *receipt
	stored.PurchaseOrder = nil
	s.receipts[receipt.ID] = stored
	return nil
}

func (r *receiptRepository) FindByID(_ context.Context, id uuid.UUID) (*model.Receipt, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	receipt, ok := s.receipts[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	return &receipt, nil
}

func (r *receiptRepository) List(_ context.Context, filter repository.ReceiptFilter) ([]model.Receipt, int64, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]model.Receipt, 0, len(s.receipts))
	for _, receipt := range s.receipts {
		if filter.ReceiptType != "" && receipt.ReceiptType != filter.ReceiptType {
			continue
		}
		if filter.PurchaseOrderID != nil && receipt.PurchaseOrderID != *filter.PurchaseOrderID {
			continue
		}
		rows = append(rows, receipt)
	}
	sortByInsertion(s, rows, func(x model.Receipt) uuid.UUID { return x.ID }, true)
	return page(rows, filter.Page), int64(len(rows)), nil
}

func (r *receiptRepository) LatestNumber(_ context.Context, scope string) (string, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	numbers := make([]string, 0, len(s.receipts))
	for _, receipt := range s.receipts {
		numbers = append(numbers, receipt.ReceiptNumber)
	}
	return latestNumber(scope, numbers), nil
}
