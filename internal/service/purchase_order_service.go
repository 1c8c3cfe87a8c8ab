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
	"github.com/shopspring/decimal"
)

// --- Purchase order DTOs ---

type PurchaseOrderItemRequest struct {
	ProductID string  `json:"product_id" binding:"required"`
	SN        int     `json:"sn" binding:"gte=0"`
	Quantity  float64 `json:"quantity" binding:"gt=0"`
	Rate      float64 `json:"rate" binding:"gte=0"`
}

type CreateLocalPurchaseOrderRequest struct {
	SupplierID   string                     `json:"supplier_id" binding:"required"`
	PaymentTerms string                     `json:"payment_terms"`
	Station      *string                    `json:"station"`
	Tax          *float64                   `json:"tax"` // percentage
	Items        []PurchaseOrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

type CreateImportPurchaseOrderRequest struct {
	SupplierID     string                     `json:"supplier_id" binding:"required"`
	PaymentTerms   string                     `json:"payment_terms"`
	Origin         *string                    `json:"origin"`
	PaymentType    *model.PaymentType         `json:"payment_type"`
	DispatchedFrom *string                    `json:"dispatched_from"`
	DispatchedIn   *string                    `json:"dispatched_in"`
	ValidityIndent *string                    `json:"validity_indent"`
	Items          []PurchaseOrderItemRequest `json:"items" binding:"required,min=1,dive"`
}

type PurchaseOrderItemResponse struct {
	ID        uuid.UUID       `json:"id"`
	ProductID uuid.UUID       `json:"product_id"`
	SN        int             `json:"sn"`
	Quantity  float64         `json:"quantity"`
	Rate      float64         `json:"rate"`
	Total     float64         `json:"total"`
	CreatedAt time.Time       `json:"created_at"`
	Product   ProductResponse `json:"product"`
}

type PurchaseOrderResponse struct {
	ID           uuid.UUID          `json:"id"`
	PONumber     string             `json:"po_number"`
	SupplierID   uuid.UUID          `json:"supplier_id"`
	SupplierType model.SupplierType `json:"supplier_type"`
	Status       model.POStatus     `json:"status"`
	PaymentTerms string             `json:"payment_terms"`

	Origin         *string            `json:"origin"`
	PaymentType    *model.PaymentType `json:"payment_type"`
	DispatchedFrom *string            `json:"dispatched_from"`
	DispatchedIn   *string            `json:"dispatched_in"`
	ValidityIndent *string            `json:"validity_indent"`

	Station *string  `json:"station"`
	Tax     *float64 `json:"tax"`

	TotalAmount float64                     `json:"total_amount"`
	CreatedAt   time.Time                   `json:"created_at"`
	UpdatedAt   time.Time                   `json:"updated_at"`
	Supplier    SupplierResponse            `json:"supplier"`
	Items       []PurchaseOrderItemResponse `json:"items"`
}

type PurchaseOrderListQuery struct {
	SupplierType string
	Status       string
	SupplierID   string
	Skip         int
	Limit        int
}

// --- Interface ---

type PurchaseOrderService interface {
	CreateLocalPurchaseOrder(ctx context.Context, req CreateLocalPurchaseOrderRequest) (PurchaseOrderResponse, error)
	CreateImportPurchaseOrder(ctx context.Context, req CreateImportPurchaseOrderRequest) (PurchaseOrderResponse, error)
	GetPurchaseOrder(ctx context.Context, id string) (PurchaseOrderResponse, error)
	GetPurchaseOrders(ctx context.Context, query PurchaseOrderListQuery) ([]PurchaseOrderResponse, int64, error)
	StartInspection(ctx context.Context, id string) (PurchaseOrderResponse, error)
}

// --- Implementation ---

type purchaseOrderService struct {
	orderRepo    repository.PurchaseOrderRepository
	supplierRepo repository.SupplierRepository
	productRepo  repository.ProductRepository
	txManager    repository.TransactionManager
	writer       numberedWriter
	events       EventPublisher
	metrics      *metrics.Metrics
}

func NewPurchaseOrderService(
	orderRepo repository.PurchaseOrderRepository,
	supplierRepo repository.SupplierRepository,
	productRepo repository.ProductRepository,
	txManager repository.TransactionManager,
	numbers *numbering.Generator,
	events EventPublisher,
	m *metrics.Metrics,
) PurchaseOrderService {
	return &purchaseOrderService{
		orderRepo:    orderRepo,
		supplierRepo: supplierRepo,
		productRepo:  productRepo,
		txManager:    txManager,
		writer:       numberedWriter{txManager: txManager, numbers: numbers, metrics: m},
		events:       publisherOrNoop(events),
		metrics:      m,
	}
}

// buildItems validates the requested lines and prices them. Lines without an
// explicit sn are numbered by position.
func buildItems(reqs []PurchaseOrderItemRequest) ([]model.PurchaseOrderItem, decimal.Decimal, error) {
	if len(reqs) == 0 {
		return nil, decimal.Zero, apperr.Validation("items must contain at least one line")
	}

	subtotal := decimal.Zero
	items := make([]model.PurchaseOrderItem, 0, len(reqs))
	for i, r := range reqs {
		productID, err := uuid.Parse(r.ProductID)
		if err != nil {
			return nil, decimal.Zero, apperr.Validation("items[%d]: invalid product_id %q", i, r.ProductID)
		}
		if r.Quantity <= 0 {
			return nil, decimal.Zero, apperr.Validation("items[%d]: quantity must be greater than 0", i)
		}
		if r.Rate < 0 {
			return nil, decimal.Zero, apperr.Validation("items[%d]: rate cannot be negative", i)
		}
		if r.SN < 0 {
			return nil, decimal.Zero, apperr.Validation("items[%d]: sn cannot be negative", i)
		}

		sn := r.SN
		if sn == 0 {
			sn = i + 1
		}
		total := lineTotal(r.Quantity, r.Rate)
		subtotal = subtotal.Add(total)
		items = append(items, model.PurchaseOrderItem{
			ProductID: productID,
			SN:        sn,
			Quantity:  r.Quantity,
			Rate:      r.Rate,
			Total:     toFloat(total),
		})
	}
	return items, subtotal, nil
}

func (s *purchaseOrderService) CreateLocalPurchaseOrder(ctx context.Context, req CreateLocalPurchaseOrderRequest) (PurchaseOrderResponse, error) {
	supplierID, err := parseID(req.SupplierID, "supplier")
	if err != nil {
		return PurchaseOrderResponse{}, err
	}
	if req.Tax != nil && *req.Tax < 0 {
		return PurchaseOrderResponse{}, apperr.Validation("tax cannot be negative")
	}
	items, subtotal, err := buildItems(req.Items)
	if err != nil {
		return PurchaseOrderResponse{}, err
	}

	order := &model.PurchaseOrder{
		SupplierID:   supplierID,
		SupplierType: model.SupplierTypeLocal,
		Status:       model.POStatusPending,
		PaymentTerms: req.PaymentTerms,
		Station:      req.Station,
		Tax:          req.Tax,
		TotalAmount:  toFloat(withTax(subtotal, req.Tax)),
		Items:        items,
	}
	return s.create(ctx, order)
}

func (s *purchaseOrderService) CreateImportPurchaseOrder(ctx context.Context, req CreateImportPurchaseOrderRequest) (PurchaseOrderResponse, error) {
	supplierID, err := parseID(req.SupplierID, "supplier")
	if err != nil {
		return PurchaseOrderResponse{}, err
	}
	if req.PaymentType != nil && !req.PaymentType.Valid() {
		return PurchaseOrderResponse{}, apperr.Validation("payment_type must be one of: DA, F_Payment")
	}
	items, subtotal, err := buildItems(req.Items)
	if err != nil {
		return PurchaseOrderResponse{}, err
	}

	// Import orders never carry tax.
	order := &model.PurchaseOrder{
		SupplierID:     supplierID,
		SupplierType:   model.SupplierTypeImport,
		Status:         model.POStatusPending,
		PaymentTerms:   req.PaymentTerms,
		Origin:         req.Origin,
		PaymentType:    req.PaymentType,
		DispatchedFrom: req.DispatchedFrom,
		DispatchedIn:   req.DispatchedIn,
		ValidityIndent: req.ValidityIndent,
		TotalAmount:    toFloat(subtotal),
		Items:          items,
	}
	return s.create(ctx, order)
}

func (s *purchaseOrderService) create(ctx context.Context, order *model.PurchaseOrder) (PurchaseOrderResponse, error) {
	err := s.writer.run(ctx, numbering.KindPurchaseOrder, model.IdxPONumber, s.orderRepo.LatestNumber, func(txCtx context.Context, number string) error {
		supplier, err := s.supplierRepo.FindByID(txCtx, order.SupplierID)
		if err != nil {
			return notFound(err, "supplier %s not found", order.SupplierID)
		}
		if supplier.SupplierType != order.SupplierType {
			return apperr.Validation("supplier %s is a %s supplier and cannot receive a %s order",
				supplier.ID, supplier.SupplierType, order.SupplierType)
		}

		if err := s.ensureProductsExist(txCtx, order.Items); err != nil {
			return err
		}

		order.ID = uuid.Nil
		order.PONumber = number
		for i := range order.Items {
			order.Items[i].ID = uuid.Nil
		}

		if err := s.orderRepo.Create(txCtx, order); err != nil {
			return fmt.Errorf("failed to create purchase order: %w", err)
		}
		return nil
	})
	if err != nil {
		return PurchaseOrderResponse{}, err
	}

	created, err := s.orderRepo.FindByID(ctx, order.ID)
	if err != nil {
		return PurchaseOrderResponse{}, fmt.Errorf("failed to reload purchase order: %w", err)
	}

	res := toPurchaseOrderResponse(*created)
	s.metrics.PurchaseOrderCreated(string(created.SupplierType))
	s.events.Publish(EventPurchaseOrderCreated, res)
	return res, nil
}

func (s *purchaseOrderService) ensureProductsExist(ctx context.Context, items []model.PurchaseOrderItem) error {
	ids := make([]uuid.UUID, 0, len(items))
	seen := make(map[uuid.UUID]bool, len(items))
	for _, item := range items {
		if !seen[item.ProductID] {
			seen[item.ProductID] = true
			ids = append(ids, item.ProductID)
		}
	}

	products, err := s.productRepo.FindByIDs(ctx, ids)
	if err != nil {
		return fmt.Errorf("failed to load products: %w", err)
	}
	found := make(map[uuid.UUID]bool, len(products))
	for _, p := range products {
		found[p.ID] = true
	}
	for _, id := range ids {
		if !found[id] {
			return apperr.NotFound("product %s not found", id)
		}
	}
	return nil
}

func (s *purchaseOrderService) GetPurchaseOrder(ctx context.Context, id string) (PurchaseOrderResponse, error) {
	uid, err := parseID(id, "purchase order")
	if err != nil {
		return PurchaseOrderResponse{}, err
	}

	order, err := s.orderRepo.FindByID(ctx, uid)
	if err != nil {
		return PurchaseOrderResponse{}, notFound(err, "purchase order %s not found", uid)
	}
	return toPurchaseOrderResponse(*order), nil
}

func (s *purchaseOrderService) GetPurchaseOrders(ctx context.Context, query PurchaseOrderListQuery) ([]PurchaseOrderResponse, int64, error) {
	filter := repository.PurchaseOrderFilter{Page: repository.Page{Skip: query.Skip, Limit: query.Limit}}
	if query.SupplierType != "" {
		filter.SupplierType = model.SupplierType(query.SupplierType)
		if !filter.SupplierType.Valid() {
			return nil, 0, apperr.Validation("supplier_type must be one of: local, import")
		}
	}
	if query.Status != "" {
		filter.Status = model.POStatus(query.Status)
		if !filter.Status.Valid() {
			return nil, 0, apperr.Validation("status must be one of: pending, qc_inspection, completed, partially_rejected")
		}
	}
	if query.SupplierID != "" {
		supplierID, err := parseID(query.SupplierID, "supplier")
		if err != nil {
			return nil, 0, err
		}
		filter.SupplierID = &supplierID
	}

	orders, total, err := s.orderRepo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	res := make([]PurchaseOrderResponse, 0, len(orders))
	for _, o := range orders {
		res = append(res, toPurchaseOrderResponse(o))
	}
	return res, total, nil
}

// StartInspection marks a pending order as being inspected.
func (s *purchaseOrderService) StartInspection(ctx context.Context, id string) (PurchaseOrderResponse, error) {
	uid, err := parseID(id, "purchase order")
	if err != nil {
		return PurchaseOrderResponse{}, err
	}

	var from model.POStatus
	err = s.txManager.RunInTx(ctx, func(txCtx context.Context) error {
		order, err := s.orderRepo.FindByIDForUpdate(txCtx, uid)
		if err != nil {
			return notFound(err, "purchase order %s not found", uid)
		}
		from = order.Status
		if !from.CanTransitionTo(model.POStatusQCInspection) {
			return apperr.Conflict("purchase order %s is %s, only pending orders can start inspection", uid, from)
		}
		return s.orderRepo.UpdateStatus(txCtx, uid, model.POStatusQCInspection)
	})
	if err != nil {
		return PurchaseOrderResponse{}, err
	}

	order, err := s.orderRepo.FindByID(ctx, uid)
	if err != nil {
		return PurchaseOrderResponse{}, fmt.Errorf("failed to reload purchase order: %w", err)
	}
	s.events.Publish(EventPurchaseOrderStatusChanged, statusChange{
		PurchaseOrderID: order.ID.String(),
		PONumber:        order.PONumber,
		From:            string(from),
		To:              string(order.Status),
	})
	return toPurchaseOrderResponse(*order), nil
}

func toPurchaseOrderResponse(o model.PurchaseOrder) PurchaseOrderResponse {
	res := PurchaseOrderResponse{
		ID:             o.ID,
		PONumber:       o.PONumber,
		SupplierID:     o.SupplierID,
		SupplierType:   o.SupplierType,
		Status:         o.Status,
		PaymentTerms:   o.PaymentTerms,
		Origin:         o.Origin,
		PaymentType:    o.PaymentType,
		DispatchedFrom: o.DispatchedFrom,
		DispatchedIn:   o.DispatchedIn,
		ValidityIndent: o.ValidityIndent,
		Station:        o.Station,
		Tax:            o.Tax,
		TotalAmount:    o.TotalAmount,
		CreatedAt:      o.CreatedAt,
		UpdatedAt:      o.UpdatedAt,
		Items:          make([]PurchaseOrderItemResponse, 0, len(o.Items)),
	}
	if o.Supplier != nil {
		res.Supplier = toSupplierResponse(*o.Supplier)
	}
	for _, item := range o.Items {
		itemRes := PurchaseOrderItemResponse{
			ID:        item.ID,
			ProductID: item.ProductID,
			SN:        item.SN,
			Quantity:  item.Quantity,
			Rate:      item.Rate,
			Total:     item.Total,
			CreatedAt: item.CreatedAt,
		}
		if item.Product != nil {
			itemRes.Product = toProductResponse(*item.Product)
		}
		res.Items = append(res.Items, itemRes)
	}
	return res
}
