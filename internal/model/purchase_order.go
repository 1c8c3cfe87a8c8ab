package model

import (
	"time"

	"github.com/google/uuid"
)

// POStatus is the purchase order lifecycle state.
type POStatus string

const (
	POStatusPending           POStatus = "pending"
	POStatusQCInspection      POStatus = "qc_inspection"
	POStatusCompleted         POStatus = "completed"
	POStatusPartiallyRejected POStatus = "partially_rejected"
)

func (s POStatus) Valid() bool {
	switch s {
	case POStatusPending, POStatusQCInspection, POStatusCompleted, POStatusPartiallyRejected:
		return true
	}
	return false
}

// CanTransitionTo reports whether the lifecycle allows moving from s to next.
//
//	pending -> qc_inspection
//	pending | qc_inspection -> completed | partially_rejected   (QC report created)
//	completed <-> partially_rejected                          (QC report revised)
func (s POStatus) CanTransitionTo(next POStatus) bool {
	switch s {
	case POStatusPending:
		return next == POStatusQCInspection || next == POStatusCompleted || next == POStatusPartiallyRejected
	case POStatusQCInspection:
		return next == POStatusCompleted || next == POStatusPartiallyRejected
	case POStatusCompleted, POStatusPartiallyRejected:
		return next == POStatusCompleted || next == POStatusPartiallyRejected
	}
	return false
}

// Settled reports whether QC has already been recorded for the order.
func (s POStatus) Settled() bool {
	return s == POStatusCompleted || s == POStatusPartiallyRejected
}

// PaymentType applies to import orders only.
type PaymentType string

const (
	PaymentTypeDA       PaymentType = "DA"
	PaymentTypeFPayment PaymentType = "F_Payment"
)

func (p PaymentType) Valid() bool {
	return p == PaymentTypeDA || p == PaymentTypeFPayment
}

const IdxPONumber = "idx_purchase_orders_po_number"

// PurchaseOrder is a commitment to buy product quantities from one supplier.
// SupplierType is a snapshot taken at creation; TotalAmount is never recomputed.
type PurchaseOrder struct {
	ID           uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PONumber     string       `gorm:"type:varchar(50);uniqueIndex:idx_purchase_orders_po_number;not null" json:"po_number"`
	SupplierID   uuid.UUID    `gorm:"type:uuid;not null;index" json:"supplier_id"`
	Supplier     *Supplier    `gorm:"foreignKey:SupplierID;constraint:OnDelete:RESTRICT" json:"supplier,omitempty"`
	SupplierType SupplierType `gorm:"type:varchar(20);not null;index" json:"supplier_type"`
	Status       POStatus     `gorm:"type:varchar(30);not null;default:'pending';index" json:"status"`
	PaymentTerms string       `gorm:"type:varchar(255)" json:"payment_terms"`

	// Import only
	Origin         *string      `gorm:"type:varchar(255)" json:"origin,omitempty"`
	PaymentType    *PaymentType `gorm:"type:varchar(20)" json:"payment_type,omitempty"`
	DispatchedFrom *string      `gorm:"type:varchar(255)" json:"dispatched_from,omitempty"`
	DispatchedIn   *string      `gorm:"type:varchar(255)" json:"dispatched_in,omitempty"`
	ValidityIndent *string      `gorm:"type:varchar(255)" json:"validity_indent,omitempty"`

	// Local only
	Station *string  `gorm:"type:varchar(255)" json:"station,omitempty"`
	Tax     *float64 `json:"tax,omitempty"` // percentage

	TotalAmount float64             `gorm:"not null;default:0" json:"total_amount"`
	Items       []PurchaseOrderItem `gorm:"foreignKey:PurchaseOrderID;constraint:OnDelete:CASCADE" json:"items"`
	CreatedAt   time.Time           `json:"created_at"`
	UpdatedAt   time.Time           `json:"updated_at"`
}

// PurchaseOrderItem is an immutable order line; Total is always Quantity * Rate.
type PurchaseOrderItem struct {
	ID              uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	PurchaseOrderID uuid.UUID `gorm:"type:uuid;not null;index" json:"purchase_order_id"`
	ProductID       uuid.UUID `gorm:"type:uuid;not null;index" json:"product_id"`
	Product         *Product  `gorm:"foreignKey:ProductID;constraint:OnDelete:RESTRICT" json:"product,omitempty"`
	SN              int       `gorm:"column:sn" json:"sn"` // position within the order
	Quantity        float64   `gorm:"not null" json:"quantity"`
	Rate            float64   `gorm:"not null" json:"rate"`
	Total           float64   `gorm:"not null" json:"total"`
	CreatedAt       time.Time `json:"created_at"`
}
