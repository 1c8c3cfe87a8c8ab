package repository

import (
	"context"

	"pharmaproc/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReceiptRepository interface {
	Create(ctx context.Context, receipt *model.Receipt) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Receipt, error)
	List(ctx context.Context, filter ReceiptFilter) ([]model.Receipt, int64, error)
	LatestNumber(ctx context.Context, scope string) (string, error)
}

type receiptRepository struct {
	db *gorm.DB
}

func NewReceiptRepository(db *gorm.DB) ReceiptRepository {
	return &receiptRepository{db: db}
}

func (r *receiptRepository) Create(ctx context.Context, receipt *model.Receipt) error {
	return translateError(GetDB(ctx, r.db).Omit("PurchaseOrder").Create(receipt).Error)
}

func (r *receiptRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Receipt, error) {
	var receipt model.Receipt
	if err := GetDB(ctx, r.db).First(&receipt, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &receipt, nil
}

func (r *receiptRepository) List(ctx context.Context, filter ReceiptFilter) ([]model.Receipt, int64, error) {
	var receipts []model.Receipt
	var total int64

	query := GetDB(ctx, r.db).Model(&model.Receipt{})
	if filter.ReceiptType != "" {
		query = query.Where("receipt_type = ?", filter.ReceiptType)
	}
	if filter.PurchaseOrderID != nil {
		query = query.Where("purchase_order_id = ?", *filter.PurchaseOrderID)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("created_at DESC").Offset(filter.Skip).Limit(filter.Limit).Find(&receipts).Error; err != nil {
		return nil, 0, err
	}

	return receipts, total, nil
}

func (r *receiptRepository) LatestNumber(ctx context.Context, scope string) (string, error) {
	return latestNumber(GetDB(ctx, r.db), &model.Receipt{}, "receipt_number", scope)
}
