package model

import (
	"time"

	"github.com/google/uuid"
)

// ReceiptType selects which QC aggregate a receipt carries.
type ReceiptType string

const (
	ReceiptTypeAccepted ReceiptType = "accepted"
	ReceiptTypeRejected ReceiptType = "rejected"
)

func (t ReceiptType) Valid() bool {
	return t == ReceiptTypeAccepted || t == ReceiptTypeRejected
}

const IdxReceiptNumber = "idx_receipts_number"

// Receipt holds a frozen copy of a QC aggregate taken at issuance time.
type Receipt struct {
	ID              uuid.UUID      `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	ReceiptNumber   string         `gorm:"type:varchar(50);uniqueIndex:idx_receipts_number;not null" json:"receipt_number"`
	PurchaseOrderID uuid.UUID      `gorm:"type:uuid;not null;index" json:"purchase_order_id"`
	PurchaseOrder   *PurchaseOrder `gorm:"foreignKey:PurchaseOrderID;constraint:OnDelete:CASCADE" json:"-"`
	ReceiptType     ReceiptType    `gorm:"type:varchar(20);not null;index" json:"receipt_type"`
	TotalQuantity   float64        `gorm:"not null;default:0" json:"total_quantity"`
	TotalValue      float64        `gorm:"not null;default:0" json:"total_value"`
	GeneratedBy     string         `gorm:"type:varchar(255)" json:"generated_by"`
	GeneratedDate   time.Time      `json:"generated_date"`
	Remarks         string         `gorm:"type:text" json:"remarks"`
	CreatedAt       time.Time      `json:"created_at"`
}
