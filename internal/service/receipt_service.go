package service

import (
	"context"
	"fmt"
	"time"

	"pharmaproc/internal/apperr"
	"pharmaproc/internal/metrics"
	"pharmaproc/internal/model"
	"pharmaproc/internal/numbering"
	"pharmaproc/internal/repository"

	"github.com/google/uuid"
)

type CreateReceiptRequest struct {
	PurchaseOrderID string            `json:"purchase_order_id" binding:"required"`
	ReceiptType     model.ReceiptType `json:"receipt_type" binding:"required"`
	GeneratedBy     string            `json:"generated_by"`
	Remarks         string            `json:"remarks"`
}

type ReceiptResponse struct {
	ID              uuid.UUID         `json:"id"`
	ReceiptNumber   string            `json:"receipt_number"`
	PurchaseOrderID uuid.UUID         `json:"purchase_order_id"`
	ReceiptType     model.ReceiptType `json:"receipt_type"`
	TotalQuantity   float64           `json:"total_quantity"`
	TotalValue      float64           `json:"total_value"`
	GeneratedBy     string            `json:"generated_by"`
	GeneratedDate   time.Time         `json:"generated_date"`
	Remarks         string            `json:"remarks"`
	CreatedAt       time.Time         `json:"created_at"`
}

type ReceiptListQuery struct {
	ReceiptType     string
	PurchaseOrderID string
	Skip            int
	Limit           int
}

type ReceiptService interface {
	CreateReceipt(ctx context.Context, req CreateReceiptRequest) (ReceiptResponse, error)
	GetReceipt(ctx context.Context, id string) (ReceiptResponse, error)
	GetReceipts(ctx context.Context, query ReceiptListQuery) ([]ReceiptResponse, int64, error)
}

type receiptService struct {
	receiptRepo repository.ReceiptRepository
	reportRepo  repository.QCReportRepository
	orderRepo   repository.PurchaseOrderRepository
	writer      numberedWriter
	events      EventPublisher
	metrics     *metrics.Metrics
	now         func() time.Time
}

func NewReceiptService(
	receiptRepo repository.ReceiptRepository,
	reportRepo repository.QCReportRepository,
	orderRepo repository.PurchaseOrderRepository,
	txManager repository.TransactionManager,
	numbers *numbering.Generator,
	events EventPublisher,
	m *metrics.Metrics,
) ReceiptService {
	return &receiptService{
		receiptRepo: receiptRepo,
		reportRepo:  reportRepo,
		orderRepo:   orderRepo,
		writer:      numberedWriter{txManager: txManager, numbers: numbers, metrics: m},
		events:      publisherOrNoop(events),
		metrics:     m,
		now:         func() time.Time { return time.Now().UTC() },
	}
}

func receiptKind(t model.ReceiptType) numbering.Kind {
	if t == model.ReceiptTypeRejected {
		return numbering.KindRejectedReceipt
	}
	return numbering.KindAcceptedReceipt
}

// CreateReceipt copies the accepted or rejected aggregate of the order's QC
// report into a new receipt. Later report revisions do not touch it.
func (s *receiptService) CreateReceipt(ctx context.Context, req CreateReceiptRequest) (ReceiptResponse, error) {
	if !req.ReceiptType.Valid() {
		return ReceiptResponse{}, apperr.Validation("receipt_type must be one of: accepted, rejected")
	}
	orderID, err := parseID(req.PurchaseOrderID, "purchase order")
	if err != nil {
		return ReceiptResponse{}, err
	}

	var receipt *model.Receipt
	err = s.writer.run(ctx, receiptKind(req.ReceiptType), model.IdxReceiptNumber, s.receiptRepo.LatestNumber, func(txCtx context.Context, number string) error {
		if _, err := s.orderRepo.FindByID(txCtx, orderID); err != nil {
			return notFound(err, "purchase order %s not found", orderID)
		}
		report, err := s.reportRepo.FindByPurchaseOrderID(txCtx, orderID)
		if err != nil {
			return notFound(err, "no QC report for purchase order %s", orderID)
		}

		receipt = &model.Receipt{
			ReceiptNumber:   number,
			PurchaseOrderID: orderID,
			ReceiptType:     req.ReceiptType,
			GeneratedBy:     req.GeneratedBy,
			GeneratedDate:   s.now(),
			Remarks:         req.Remarks,
		}
		if req.ReceiptType == model.ReceiptTypeAccepted {
			receipt.TotalQuantity = report.TotalAcceptedQty
			receipt.TotalValue = report.TotalAcceptedValue
		} else {
			receipt.TotalQuantity = report.TotalRejectedQty
			receipt.TotalValue = report.TotalRejectedValue
		}

		if err := s.receiptRepo.Create(txCtx, receipt); err != nil {
			return fmt.Errorf("failed to create receipt: %w", err)
		}
		return nil
	})
	if err != nil {
		return ReceiptResponse{}, err
	}

	res := toReceiptResponse(*receipt)
	s.metrics.ReceiptIssued(string(receipt.ReceiptType))
	s.events.Publish(EventReceiptIssued, res)
	return res, nil
}

func (s *receiptService) GetReceipt(ctx context.Context, id string) (ReceiptResponse, error) {
	uid, err := parseID(id, "receipt")
	if err != nil {
		return ReceiptResponse{}, err
	}

	receipt, err := s.receiptRepo.FindByID(ctx, uid)
	if err != nil {
		return ReceiptResponse{}, notFound(err, "receipt %s not found", uid)
	}
	return toReceiptResponse(*receipt), nil
}

func (s *receiptService) GetReceipts(ctx context.Context, query ReceiptListQuery) ([]ReceiptResponse, int64, error) {
	filter := repository.ReceiptFilter{Page: repository.Page{Skip: query.Skip, Limit: query.Limit}}
	if query.ReceiptType != "" {
		filter.ReceiptType = model.ReceiptType(query.ReceiptType)
		if !filter.ReceiptType.Valid() {
			return nil, 0, apperr.Validation("receipt_type must be one of: accepted, rejected")
		}
	}
	if query.PurchaseOrderID != "" {
		orderID, err := parseID(query.PurchaseOrderID, "purchase order")
		if err != nil {
			return nil, 0, err
		}
		filter.PurchaseOrderID = &orderID
	}

	receipts, total, err := s.receiptRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	res := make([]ReceiptResponse, 0, len(receipts))
	for _, r := range receipts {
		res = append(res, toReceiptResponse(r))
	}
	return res, total, nil
}

func toReceiptResponse(r model.Receipt) ReceiptResponse {
	return ReceiptResponse{
		ID:              r.ID,
		ReceiptNumber:   r.ReceiptNumber,
		PurchaseOrderID: r.PurchaseOrderID,
		ReceiptType:     r.ReceiptType,
		TotalQuantity:   r.TotalQuantity,
		TotalValue:      r.TotalValue,
		GeneratedBy:     r.GeneratedBy,
		GeneratedDate:   r.GeneratedDate,
		Remarks:         r.Remarks,
		CreatedAt:       r.CreatedAt,
	}
}
