package repository

import (
	"context"

	"pharmaproc/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type SupplierRepository interface {
	Create(ctx context.Context, supplier *model.Supplier) error
	Update(ctx context.Context, supplier *model.Supplier) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error)
	List(ctx context.Context, filter SupplierFilter) ([]model.Supplier, int64, error)
	CountPurchaseOrders(ctx context.Context, id uuid.UUID) (int64, error)
}

type supplierRepository struct {
	db *gorm.DB
}

func NewSupplierRepository(db *gorm.DB) SupplierRepository {
	return &supplierRepository{db: db}
}

func (r *supplierRepository) Create(ctx context.Context, supplier *model.Supplier) error {
	return translateError(GetDB(ctx, r.db).Create(supplier).Error)
}

func (r *supplierRepository) Update(ctx context.Context, supplier *model.Supplier) error {
	return translateError(GetDB(ctx, r.db).Save(supplier).Error)
}

func (r *supplierRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return translateError(GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Supplier{}).Error)
}

func (r *supplierRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Supplier, error) {
	var supplier model.Supplier
	if err := GetDB(ctx, r.db).First(&supplier, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &supplier, nil
}

func (r *supplierRepository) List(ctx context.Context, filter SupplierFilter) ([]model.Supplier, int64, error) {
	var suppliers []model.Supplier
	var total int64

	query := GetDB(ctx, r.db).Model(&model.Supplier{})
	if filter.SupplierType != "" {
		query = query.Where("supplier_type = ?", filter.SupplierType)
	}

	if err := query.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := query.Order("created_at ASC").Offset(filter.Skip).Limit(filter.Limit).Find(&suppliers).Error; err != nil {
		return nil, 0, err
	}

	return suppliers, total, nil
}

func (r *supplierRepository) CountPurchaseOrders(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.PurchaseOrder{}).Where("supplier_id = ?", id).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
