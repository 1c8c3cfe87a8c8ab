package model

import (
	"time"

	"github.com/google/uuid"
)

// QCStatus is the inspection verdict for a single order line.
type QCStatus string

const (
	QCStatusPending  QCStatus = "pending"
	QCStatusAccepted QCStatus = "accepted"
	QCStatusRejected QCStatus = "rejected"
)

func (s QCStatus) Valid() bool {
	switch s {
	case QCStatusPending, QCStatusAccepted, QCStatusRejected:
		return true
	}
	return false
}

const (
	IdxQCReportPurchaseOrder = "idx_qc_reports_purchase_order"
	IdxQCReportNumber        = "idx_qc_reports_number"
)

// QCReport records the inspection of one purchase order. At most one per order.
type QCReport struct {
	ID                 uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PurchaseOrderID    uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex:idx_qc_reports_purchase_order" json:"purchase_order_id"`
	PurchaseOrder      *PurchaseOrder `gorm:"foreignKey:PurchaseOrderID;constraint:OnDelete:CASCADE" json:"-"`
	QCReportNumber     string         `gorm:"type:varchar(50);uniqueIndex:idx_qc_reports_number;not null" json:"qc_report_number"`
	InspectorName      string         `gorm:"type:varchar(255)" json:"inspector_name"`
	InspectionDate     time.Time      `json:"inspection_date"`
	Remarks            string         `gorm:"type:text" json:"remarks"`
	TotalAcceptedQty   float64        `gorm:"not null;default:0" json:"total_accepted_qty"`
	TotalRejectedQty   float64        `gorm:"not null;default:0" json:"total_rejected_qty"`
	TotalAcceptedValue float64        `gorm:"not null;default:0" json:"total_accepted_value"`
	TotalRejectedValue float64        `gorm:"not null;default:0" json:"total_rejected_value"`
	Items              []QCReportItem `gorm:"foreignKey:QCReportID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt          time.Time      `json:"created_at"`
	UpdatedAt          time.Time      `json:"updated_at"`
}

// QCReportItem values are always derived from the referenced order line's rate.
type QCReportItem struct {
	ID              uuid.UUID          `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	QCReportID      uuid.UUID          `gorm:"type:uuid;not null;index" json:"qc_report_id"`
	POItemID        uuid.UUID          `gorm:"column:po_item_id;type:uuid;not null;index" json:"po_item_id"`
	POItem          *PurchaseOrderItem `gorm:"foreignKey:POItemID;constraint:OnDelete:CASCADE" json:"-"`
	Status          QCStatus           `gorm:"type:varchar(20);not null" json:"status"`
	AcceptedQty     float64            `gorm:"not null;default:0" json:"accepted_qty"`
	RejectedQty     float64            `gorm:"not null;default:0" json:"rejected_qty"`
	AcceptedValue   float64            `gorm:"not null;default:0" json:"accepted_value"`
	RejectedValue   float64            `gorm:"not null;default:0" json:"rejected_value"`
	RejectionReason *string            `gorm:"type:text" json:"rejection_reason,omitempty"`
	Remarks         *string            `gorm:"type:text" json:"remarks,omitempty"`
	CreatedAt       time.Time          `json:"created_at"`
}
