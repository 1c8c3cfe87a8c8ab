package repository

import (
	"context"

	"pharmaproc/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ProductRepository interface {
	Create(ctx context.Context, product *model.Product) error
	Update(ctx context.Context, product *model.Product) error
	Delete(ctx context.Context, id uuid.UUID) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error)
	FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error)
	List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error)
	CountOrderItems(ctx context.Context, id uuid.UUID) (int64, error)
}

type productRepository struct {
	db *gorm.DB
}

func NewProductRepository(db *gorm.DB) ProductRepository {
	return &productRepository{db: db}
}

func (r *productRepository) Create(ctx context.Context, product *model.Product) error {
	return translateError(GetDB(ctx, r.db).Create(product).Error)
}

func (r *productRepository) Update(ctx context.Context, product *model.Product) error {
	return translateError(GetDB(ctx, r.db).Save(product).Error)
}

func (r *productRepository) Delete(ctx context.Context, id uuid.UUID) error {
	return translateError(GetDB(ctx, r.db).Where("id = ?", id).Delete(&model.Product{}).Error)
}

func (r *productRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.Product, error) {
	var product model.Product
	if err := GetDB(ctx, r.db).First(&product, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &product, nil
}

func (r *productRepository) FindByIDs(ctx context.Context, ids []uuid.UUID) ([]model.Product, error) {
	var products []model.Product
	if len(ids) == 0 {
		return products, nil
	}
	if err := GetDB(ctx, r.db).Where("id IN ?", ids).Find(&products).Error; err != nil {
		return nil, err
	}
	return products, nil
}

func (r *productRepository) List(ctx context.Context, filter ProductFilter) ([]model.Product, int64, error) {
	var products []model.Product
	var total int64

	db := GetDB(ctx, r.db).Model(&model.Product{})
	if filter.Name != "" {
		db = db.Where("name ILIKE ?", "%"+filter.Name+"%")
	}

	if err := db.Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Order("created_at ASC").Offset(filter.Skip).Limit(filter.Limit).Find(&products).Error; err != nil {
		return nil, 0, err
	}

	return products, total, nil
}

func (r *productRepository) CountOrderItems(ctx context.Context, id uuid.UUID) (int64, error) {
	var count int64
	if err := GetDB(ctx, r.db).Model(&model.PurchaseOrderItem{}).Where("product_id = ?", id).Count(&count).Error; err != nil {
		return 0, err
	}
	return count, nil
}
