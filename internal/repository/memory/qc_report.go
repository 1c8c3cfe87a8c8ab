package memory

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"pharmaproc/internal/model"
	"pharmaproc/internal/repository"
)

type qcReportRepository struct {
	store *Store
}

// putItems stores items for reportID. Callers hold mu.
func (r *qcReportRepository) putItems(reportID uuid.UUID, items []model.QCReportItem) error {
	s := r.store
	for _, item := range items {
		if _, ok := s.orderItems[item.POItemID]; !ok {
			return fmt.Errorf("%w: fk_qc_report_items_po_item", repository.ErrReferenced)
		}
	}
	for i := range items {
		item := &items[i]
		item.QCReportID = reportID
		s.stamp(&item.ID, &item.CreatedAt)
		stored := *item
		stored.POItem = nil
		s.qcItems[item.ID] = stored
	}
	return nil
}

func (r *qcReportRepository) Create(_ context.Context, report *model.QCReport) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, existing := range s.qcReports {
		if existing.PurchaseOrderID == report.PurchaseOrderID {
			return &repository.DuplicateError{Constraint: model.IdxQCReportPurchaseOrder}
		}
		if existing.QCReportNumber == report.QCReportNumber {
			return &repository.DuplicateError{Constraint: model.IdxQCReportNumber}
		}
	}
	if _, ok := s.orders[report.PurchaseOrderID]; !ok {
		return fmt.Errorf("%w: fk_qc_reports_purchase_order", repository.ErrReferenced)
	}

	report.UpdatedAt = s.stamp(&report.ID, &report.CreatedAt)
	if err := r.putItems(report.ID, report.Items); err != nil {
		return err
	}

	stored := *report
	stored.PurchaseOrder = nil
	stored.Items = nil
	s.qcReports[report.ID] = stored
	return nil
}

func (r *qcReportRepository) Update(_ context.Context, report *model.QCReport) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.qcReports[report.ID]; !ok {
		return nil
	}
	report.UpdatedAt = s.now()
	stored := *report
	stored.PurchaseOrder = nil
	stored.Items = nil
	s.qcReports[report.ID] = stored
	return nil
}

func (r *qcReportRepository) ReplaceItems(_ context.Context, reportID uuid.UUID, items []model.QCReportItem) error {
	s := r.store
	s.mu.Lock()
	defer s.mu.Unlock()

	for id, item := range s.qcItems {
		if item.QCReportID == reportID {
			delete(s.qcItems, id)
		}
	}
	return r.putItems(reportID, items)
}

// hydrate attaches the report items. Callers hold mu.
func (r *qcReportRepository) hydrate(report model.QCReport) model.QCReport {
	s := r.store
	items := make([]model.QCReportItem, 0)
	for _, item := range s.qcItems {
		if item.QCReportID == report.ID {
			items = append(items, item)
		}
	}
	sortByInsertion(s, items, func(x model.QCReportItem) uuid.UUID { return x.ID }, false)
	report.Items = items
	return report
}

func (r *qcReportRepository) FindByID(_ context.Context, id uuid.UUID) (*model.QCReport, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	report, ok := s.qcReports[id]
	if !ok {
		return nil, repository.ErrNotFound
	}
	report = r.hydrate(report)
	return &report, nil
}

func (r *qcReportRepository) FindByPurchaseOrderID(_ context.Context, purchaseOrderID uuid.UUID) (*model.QCReport, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	for _, report := range s.qcReports {
		if report.PurchaseOrderID == purchaseOrderID {
			report = r.hydrate(report)
			return &report, nil
		}
	}
	return nil, repository.ErrNotFound
}

func (r *qcReportRepository) List(_ context.Context, filter repository.QCReportFilter) ([]model.QCReport, int64, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows := make([]model.QCReport, 0, len(s.qcReports))
	for _, report := range s.qcReports {
		rows = append(rows, report)
	}
	sortByInsertion(s, rows, func(x model.QCReport) uuid.UUID { return x.ID }, true)

	total := int64(len(rows))
	rows = page(rows, filter.Page)
	for i := range rows {
		rows[i] = r.hydrate(rows[i])
	}
	return rows, total, nil
}

func (r *qcReportRepository) LatestNumber(_ context.Context, scope string) (string, error) {
	s := r.store
	s.mu.RLock()
	defer s.mu.RUnlock()

	numbers := make([]string, 0, len(s.qcReports))
	for _, report := range s.qcReports {
		numbers = append(numbers, report.QCReportNumber)
	}
	return latestNumber(scope, numbers), nil
}
