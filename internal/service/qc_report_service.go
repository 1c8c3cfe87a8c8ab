package service

import (
	"context"
	"errors"
	"fmt"
	"time"

	"pharmaproc/internal/apperr"
	"pharmaproc/internal/metrics"
	"pharmaproc/internal/model"
	"pharmaproc/internal/numbering"
	"pharmaproc/internal/repository"

	"github.com/google/uuid"
)

// --- QC report DTOs ---

type QCReportItemRequest struct {
	POItemID        string         `json:"po_item_id" binding:"required"`
	Status          model.QCStatus `json:"status" binding:"required"`
	AcceptedQty     float64        `json:"accepted_qty" binding:"gte=0"`
	RejectedQty     float64        `json:"rejected_qty" binding:"gte=0"`
	RejectionReason *string        `json:"rejection_reason"`
	Remarks         *string        `json:"remarks"`
}

type CreateQCReportRequest struct {
	PurchaseOrderID string                `json:"purchase_order_id" binding:"required"`
	InspectorName   string                `json:"inspector_name"`
	Remarks         string                `json:"remarks"`
	Items           []QCReportItemRequest `json:"items" binding:"required,min=1,dive"`
}

// UpdateQCReportRequest is a patch; when Items is present it replaces every line.
type UpdateQCReportRequest struct {
	InspectorName *string                `json:"inspector_name"`
	Remarks       *string                `json:"remarks"`
	Items         *[]QCReportItemRequest `json:"items"`
}

type QCReportItemResponse struct {
	ID              uuid.UUID      `json:"id"`
	POItemID        uuid.UUID      `json:"po_item_id"`
	Status          model.QCStatus `json:"status"`
	AcceptedQty     float64        `json:"accepted_qty"`
	RejectedQty     float64        `json:"rejected_qty"`
	AcceptedValue   float64        `json:"accepted_value"`
	RejectedValue   float64        `json:"rejected_value"`
	RejectionReason *string        `json:"rejection_reason"`
	Remarks         *string        `json:"remarks"`
	CreatedAt       time.Time      `json:"created_at"`
}

type QCReportResponse struct {
	ID                 uuid.UUID              `json:"id"`
	PurchaseOrderID    uuid.UUID              `json:"purchase_order_id"`
	QCReportNumber     string                 `json:"qc_report_number"`
	InspectorName      string                 `json:"inspector_name"`
	InspectionDate     time.Time              `json:"inspection_date"`
	Remarks            string                 `json:"remarks"`
	TotalAcceptedQty   float64                `json:"total_accepted_qty"`
	TotalRejectedQty   float64                `json:"total_rejected_qty"`
	TotalAcceptedValue float64                `json:"total_accepted_value"`
	TotalRejectedValue float64                `json:"total_rejected_value"`
	CreatedAt          time.Time              `json:"created_at"`
	UpdatedAt          time.Time              `json:"updated_at"`
	Items              []QCReportItemResponse `json:"items"`
}

type QCReportListQuery struct {
	Skip  int
	Limit int
}

// --- Interface ---

type QCReportService interface {
	CreateQCReport(ctx context.Context, req CreateQCReportRequest) (QCReportResponse, error)
	UpdateQCReport(ctx context.Context, id string, req UpdateQCReportRequest) (QCReportResponse, error)
	GetQCReport(ctx context.Context, id string) (QCReportResponse, error)
	GetQCReportByPurchaseOrder(ctx context.Context, purchaseOrderID string) (QCReportResponse, error)
	GetQCReports(ctx context.Context, query QCReportListQuery) ([]QCReportResponse, int64, error)
}

// --- Implementation ---

type qcReportService struct {
	reportRepo repository.QCReportRepository
	orderRepo  repository.PurchaseOrderRepository
	txManager  repository.TransactionManager
	writer     numberedWriter
	events     EventPublisher
	metrics    *metrics.Metrics
	now        func() time.Time
}

func NewQCReportService(
	reportRepo repository.QCReportRepository,
	orderRepo repository.PurchaseOrderRepository,
	txManager repository.TransactionManager,
	numbers *numbering.Generator,
	events EventPublisher,
	m *metrics.Metrics,
) QCReportService {
	return &qcReportService{
		reportRepo: reportRepo,
		orderRepo:  orderRepo,
		txManager:  txManager,
		writer:     numberedWriter{txManager: txManager, numbers: numbers, metrics: m},
		events:     publisherOrNoop(events),
		metrics:    m,
		now:        func() time.Time { return time.Now().UTC() },
	}
}

type qcLine struct {
	poItemID uuid.UUID
	item     model.QCReportItem
}

// parseQCLines checks the shape of the requested lines before any lookup.
func parseQCLines(reqs []QCReportItemRequest) ([]qcLine, error) {
	if len(reqs) == 0 {
		return nil, apperr.Validation("items must contain at least one line")
	}

	lines := make([]qcLine, 0, len(reqs))
	seen := make(map[uuid.UUID]bool, len(reqs))
	for i, r := range reqs {
		poItemID, err := uuid.Parse(r.POItemID)
		if err != nil {
			return nil, apperr.Validation("items[%d]: invalid po_item_id %q", i, r.POItemID)
		}
		if seen[poItemID] {
			return nil, apperr.Validation("items[%d]: po_item_id %s is listed more than once", i, poItemID)
		}
		seen[poItemID] = true
		if !r.Status.Valid() {
			return nil, apperr.Validation("items[%d]: status must be one of: pending, accepted, rejected", i)
		}
		if r.AcceptedQty < 0 || r.RejectedQty < 0 {
			return nil, apperr.Validation("items[%d]: quantities cannot be negative", i)
		}

		lines = append(lines, qcLine{
			poItemID: poItemID,
			item: model.QCReportItem{
				POItemID:        poItemID,
				Status:          r.Status,
				AcceptedQty:     r.AcceptedQty,
				RejectedQty:     r.RejectedQty,
				RejectionReason: r.RejectionReason,
				Remarks:         r.Remarks,
			},
		})
	}
	return lines, nil
}

// priceLines resolves every line against the order's items and values it at
// the item's rate.
func (s *qcReportService) priceLines(ctx context.Context, orderID uuid.UUID, lines []qcLine) ([]model.QCReportItem, *qcTotals, error) {
	totals := &qcTotals{}
	items := make([]model.QCReportItem, 0, len(lines))
	for _, line := range lines {
		poItem, err := s.orderRepo.FindItemByID(ctx, line.poItemID)
		if err != nil {
			return nil, nil, notFound(err, "purchase order item %s not found", line.poItemID)
		}
		if poItem.PurchaseOrderID != orderID {
			return nil, nil, apperr.NotFound("purchase order item %s not found on purchase order %s", line.poItemID, orderID)
		}

		item := line.item
		totals.add(&item, poItem.Rate)
		items = append(items, item)
	}
	return items, totals, nil
}

func (s *qcReportService) CreateQCReport(ctx context.Context, req CreateQCReportRequest) (QCReportResponse, error) {
	orderID, err := parseID(req.PurchaseOrderID, "purchase order")
	if err != nil {
		return QCReportResponse{}, err
	}
	lines, err := parseQCLines(req.Items)
	if err != nil {
		return QCReportResponse{}, err
	}

	var (
		report *model.QCReport
		order  *model.PurchaseOrder
		status model.POStatus
	)
	err = s.writer.run(ctx, numbering.KindQCReport, model.IdxQCReportNumber, s.reportRepo.LatestNumber, func(txCtx context.Context, number string) error {
		// The row lock serializes concurrent inspections of one order.
		order, err = s.orderRepo.FindByIDForUpdate(txCtx, orderID)
		if err != nil {
			return notFound(err, "purchase order %s not found", orderID)
		}

		existing, err := s.reportRepo.FindByPurchaseOrderID(txCtx, orderID)
		if err == nil {
			return apperr.Conflict("purchase order %s already has QC report %s", orderID, existing.QCReportNumber)
		}
		if !errors.Is(err, repository.ErrNotFound) {
			return fmt.Errorf("failed to check existing QC report: %w", err)
		}

		items, totals, err := s.priceLines(txCtx, orderID, lines)
		if err != nil {
			return err
		}

		status = totals.settledStatus()
		if order.Status.Settled() || !order.Status.CanTransitionTo(status) {
			return apperr.Conflict("purchase order %s is %s and cannot be inspected", orderID, order.Status)
		}

		report = &model.QCReport{
			PurchaseOrderID: orderID,
			QCReportNumber:  number,
			InspectorName:   req.InspectorName,
			InspectionDate:  s.now(),
			Remarks:         req.Remarks,
			Items:           items,
		}
		totals.applyTo(report)

		if err := s.reportRepo.Create(txCtx, report); err != nil {
			if repository.IsDuplicateOn(err, model.IdxQCReportPurchaseOrder) {
				return apperr.Wrap(apperr.ErrConflict, err, "purchase order %s already has a QC report", orderID)
			}
			return fmt.Errorf("failed to create QC report: %w", err)
		}

		return s.orderRepo.UpdateStatus(txCtx, orderID, status)
	})
	if err != nil {
		return QCReportResponse{}, err
	}

	created, err := s.reportRepo.FindByID(ctx, report.ID)
	if err != nil {
		return QCReportResponse{}, fmt.Errorf("failed to reload QC report: %w", err)
	}

	res := toQCReportResponse(*created)
	s.metrics.QCReportWritten("create", string(status))
	s.events.Publish(EventQCReportCreated, res)
	s.events.Publish(EventPurchaseOrderStatusChanged, statusChange{
		PurchaseOrderID: order.ID.String(),
		PONumber:        order.PONumber,
		From:            string(order.Status),
		To:              string(status),
	})
	return res, nil
}

// UpdateQCReport revises a report. Replacing the items re-prices them and
// re-settles the order; receipts issued earlier keep their values.
func (s *qcReportService) UpdateQCReport(ctx context.Context, id string, req UpdateQCReportRequest) (QCReportResponse, error) {
	uid, err := parseID(id, "QC report")
	if err != nil {
		return QCReportResponse{}, err
	}
	var lines []qcLine
	if req.Items != nil {
		if lines, err = parseQCLines(*req.Items); err != nil {
			return QCReportResponse{}, err
		}
	}

	var (
		order    *model.PurchaseOrder
		newState model.POStatus
	)
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		report, err := s.reportRepo.FindByID(txCtx, uid)
		if err != nil {
			return notFound(err, "QC report %s not found", uid)
		}
		order, err = s.orderRepo.FindByIDForUpdate(txCtx, report.PurchaseOrderID)
		if err != nil {
			return notFound(err, "purchase order %s not found", report.PurchaseOrderID)
		}
		newState = order.Status

		if req.InspectorName != nil {
			report.InspectorName = *req.InspectorName
		}
		if req.Remarks != nil {
			report.Remarks = *req.Remarks
		}

		if lines != nil {
			items, totals, err := s.priceLines(txCtx, order.ID, lines)
			if err != nil {
				return err
			}
			if err := s.reportRepo.ReplaceItems(txCtx, report.ID, items); err != nil {
				return fmt.Errorf("failed to replace QC report items: %w", err)
			}
			totals.applyTo(report)

			newState = totals.settledStatus()
			if newState != order.Status {
				if !order.Status.CanTransitionTo(newState) {
					return apperr.Conflict("purchase order %s cannot move from %s to %s", order.ID, order.Status, newState)
				}
				if err := s.orderRepo.UpdateStatus(txCtx, order.ID, newState); err != nil {
					return err
				}
			}
		}

		report.Items = nil
		return s.reportRepo.Update(txCtx, report)
	})
	if err != nil {
		return QCReportResponse{}, err
	}

	updated, err := s.reportRepo.FindByID(ctx, uid)
	if err != nil {
		return QCReportResponse{}, fmt.Errorf("failed to reload QC report: %w", err)
	}

	res := toQCReportResponse(*updated)
	s.metrics.QCReportWritten("update", string(newState))
	s.events.Publish(EventQCReportUpdated, res)
	if newState != order.Status {
		s.events.Publish(EventPurchaseOrderStatusChanged, statusChange{
			PurchaseOrderID: order.ID.String(),
			PONumber:        order.PONumber,
			From:            string(order.Status),
			To:              string(newState),
		})
	}
	return res, nil
}

func (s *qcReportService) GetQCReport(ctx context.Context, id string) (QCReportResponse, error) {
	uid, err := parseID(id, "QC report")
	if err != nil {
		return QCReportResponse{}, err
	}

	report, err := s.reportRepo.FindByID(ctx, uid)
	if err != nil {
		return QCReportResponse{}, notFound(err, "QC report %s not found", uid)
	}
	return toQCReportResponse(*report), nil
}

func (s *qcReportService) GetQCReportByPurchaseOrder(ctx context.Context, purchaseOrderID string) (QCReportResponse, error) {
	orderID, err := parseID(purchaseOrderID, "purchase order")
	if err != nil {
		return QCReportResponse{}, err
	}

	report, err := s.reportRepo.FindByPurchaseOrderID(ctx, orderID)
	if err != nil {
		return QCReportResponse{}, notFound(err, "no QC report for purchase order %s", orderID)
	}
	return toQCReportResponse(*report), nil
}

func (s *qcReportService) GetQCReports(ctx context.Context, query QCReportListQuery) ([]QCReportResponse, int64, error) {
	reports, total, err := s.reportRepo.List(ctx, repository.QCReportFilter{
		Page: repository.Page{Skip: query.Skip, Limit: query.Limit},
	})
	if err != nil {
		return nil, 0, err
	}

	res := make([]QCReportResponse, 0, len(reports))
	for _, r := range reports {
		res = append(res, toQCReportResponse(r))
	}
	return res, total, nil
}

func toQCReportResponse(r model.QCReport) QCReportResponse {
	res := QCReportResponse{
		ID:                 r.ID,
		PurchaseOrderID:    r.PurchaseOrderID,
		QCReportNumber:     r.QCReportNumber,
		InspectorName:      r.InspectorName,
		InspectionDate:     r.InspectionDate,
		Remarks:            r.Remarks,
		TotalAcceptedQty:   r.TotalAcceptedQty,
		TotalRejectedQty:   r.TotalRejectedQty,
		TotalAcceptedValue: r.TotalAcceptedValue,
		TotalRejectedValue: r.TotalRejectedValue,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
		Items:              make([]QCReportItemResponse, 0, len(r.Items)),
	}
	for _, item := range r.Items {
		res.Items = append(res.Items, QCReportItemResponse{
			ID:              item.ID,
			POItemID:        item.POItemID,
			Status:          item.Status,
			AcceptedQty:     item.AcceptedQty,
			RejectedQty:     item.RejectedQty,
			AcceptedValue:   item.AcceptedValue,
			RejectedValue:   item.RejectedValue,
			RejectionReason: item.RejectionReason,
			Remarks:         item.Remarks,
			CreatedAt:       item.CreatedAt,
		})
	}
	return res
}
