package repository

import (
	"context"

	"pharmaproc/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type PurchaseOrderRepository interface {
	Create(ctx context.Context, order *model.PurchaseOrder) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error)
	FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error)
	FindItemByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrderItem, error)
	UpdateStatus(ctx context.Context, id uuid.UUID, status model.POStatus) error
	List(ctx context.Context, filter PurchaseOrderFilter) ([]model.PurchaseOrder, int64, error)
	LatestNumber(ctx context.Context, scope string) (string, error)
}

type purchaseOrderRepository struct {
	db *gorm.DB
}

func NewPurchaseOrderRepository(db *gorm.DB) PurchaseOrderRepository {
	return &purchaseOrderRepository{db: db}
}

// Create inserts the order together with its Items.
func (r *purchaseOrderRepository) Create(ctx context.Context, order *model.PurchaseOrder) error {
	return translateError(GetDB(ctx, r.db).Omit("Supplier").Create(order).Error)
}

func orderedItems(db *gorm.DB) *gorm.DB {
	return db.Order("sn ASC, created_at ASC")
}

func (r *purchaseOrderRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	var order model.PurchaseOrder
	if err := GetDB(ctx, r.db).
		Preload("Supplier").
		Preload("Items", orderedItems).
		Preload("Items.Product").
		First(&order, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

// FindByIDForUpdate locks the order row until the surrounding transaction ends.
func (r *purchaseOrderRepository) FindByIDForUpdate(ctx context.Context, id uuid.UUID) (*model.PurchaseOrder, error) {
	var order model.PurchaseOrder
	if err := GetDB(ctx, r.db).Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("id = ?", id).First(&order).Error; err != nil {
		return nil, err
	}
	return &order, nil
}

func (r *purchaseOrderRepository) FindItemByID(ctx context.Context, id uuid.UUID) (*model.PurchaseOrderItem, error) {
	var item model.PurchaseOrderItem
	if err := GetDB(ctx, r.db).First(&item, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &item, nil
}

func (r *purchaseOrderRepository) UpdateStatus(ctx context.Context, id uuid.UUID, status model.POStatus) error {
	return GetDB(ctx, r.db).Model(&model.PurchaseOrder{}).Where("id = ?", id).Update("status", status).Error
}

func (r *purchaseOrderRepository) List(ctx context.Context, filter PurchaseOrderFilter) ([]model.PurchaseOrder, int64, error) {
	var orders []model.PurchaseOrder
	var total int64

	query := GetDB(ctx, r.db).Model(&model.PurchaseOrder{})
	if filter.SupplierType != "" {
		query = query.Where("supplier_type = ?", filter.SupplierType)
	}
	if filter.Status != "" {
		query = query.Where("status = ?", filter.Status)
	}
	if filter.SupplierID != nil {
		query = query.Where("supplier_id = ?", *filter.SupplierID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.
		Preload("Supplier").
		Preload("Items", orderedItems).
		Preload("Items.Product").
		Order("created_at DESC").
		Offset(filter.Skip).Limit(filter.Limit).
		Find(&orders).Error; err != nil {
		return nil, 0, err
	}

	return orders, total, nil
}

// LatestNumber returns the highest po_number issued under scope, or "".
func (r *purchaseOrderRepository) LatestNumber(ctx context.Context, scope string) (string, error) {
	return latestNumber(GetDB(ctx, r.db), &model.PurchaseOrder{}, "po_number", scope)
}
