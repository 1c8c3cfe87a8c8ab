package repository

import (
	"context"

	"pharmaproc/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type QCReportRepository interface {
	Create(ctx context.Context, report *model.QCReport) error
	Update(ctx context.Context, report *model.QCReport) error
	ReplaceItems(ctx context.Context, reportID uuid.UUID, items []model.QCReportItem) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.QCReport, error)
	FindByPurchaseOrderID(ctx context.Context, purchaseOrderID uuid.UUID) (*model.QCReport, error)
	List(ctx context.Context, filter QCReportFilter) ([]model.QCReport, int64, error)
	LatestNumber(ctx context.Context, scope string) (string, error)
}

type qcReportRepository struct {
	db *gorm.DB
}

func NewQCReportRepository(db *gorm.DB) QCReportRepository {
	return &qcReportRepository{db: db}
}

// Create inserts the report together with its Items.
func (r *qcReportRepository) Create(ctx context.Context, report *model.QCReport) error {
	return translateError(GetDB(ctx, r.db).Omit("PurchaseOrder").Create(report).Error)
}

// Update saves header fields and aggregates only; items go through ReplaceItems.
func (r *qcReportRepository) Update(ctx context.Context, report *model.QCReport) error {
	return translateError(GetDB(ctx, r.db).Omit(clause.Associations).Save(report).Error)
}

func (r *qcReportRepository) ReplaceItems(ctx context.Context, reportID uuid.UUID, items []model.QCReportItem) error {
	db := GetDB(ctx, r.db)
	if err := db.Where("qc_report_id = ?", reportID).Delete(&model.QCReportItem{}).Error; err != nil {
		return err
	}
	if len(items) == 0 {
		return nil
	}
	for i := range items {
		items[i].QCReportID = reportID
	}
	return translateError(db.Omit("POItem").Create(&items).Error)
}

func orderedQCItems(db *gorm.DB) *gorm.DB {
	return db.Order("created_at ASC")
}

func (r *qcReportRepository) FindByID(ctx context.Context, id uuid.UUID) (*model.QCReport, error) {
	var report model.QCReport
	if err := GetDB(ctx, r.db).Preload("Items", orderedQCItems).First(&report, "id = ?", id).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *qcReportRepository) FindByPurchaseOrderID(ctx context.Context, purchaseOrderID uuid.UUID) (*model.QCReport, error) {
	var report model.QCReport
	if err := GetDB(ctx, r.db).Preload("Items", orderedQCItems).
		First(&report, "purchase_order_id = ?", purchaseOrderID).Error; err != nil {
		return nil, err
	}
	return &report, nil
}

func (r *qcReportRepository) List(ctx context.Context, filter QCReportFilter) ([]model.QCReport, int64, error) {
	var reports []model.QCReport
	var total int64

	db := GetDB(ctx, r.db)
	if err := db.Model(&model.QCReport{}).Count(&total).Error; err != nil {
		return nil, 0, err
	}

	if err := db.Preload("Items", orderedQCItems).
		Order("created_at DESC").
		Offset(filter.Skip).Limit(filter.Limit).
		Find(&reports).Error; err != nil {
		return nil, 0, err
	}

	return reports, total, nil
}

func (r *qcReportRepository) LatestNumber(ctx context.Context, scope string) (string, error) {
	return latestNumber(GetDB(ctx, r.db), &model.QCReport{}, "qc_report_number", scope)
}
