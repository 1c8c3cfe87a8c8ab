package repository

import (
	"github.com/google/uuid"

	"pharmaproc/internal/model"
)

// Page is an offset window over a listing.
type Page struct {
	Skip  int
	Limit int
}

type SupplierFilter struct {
	SupplierType model.SupplierType
	Page
}

type ProductFilter struct {
	Name string // case-insensitive substring
	Page
}

type PurchaseOrderFilter struct {
	SupplierType model.SupplierType
	Status       model.POStatus
	SupplierID   *uuid.UUID
	Page
}

type QCReportFilter struct {
	Page
}

type ReceiptFilter struct {
	ReceiptType     model.ReceiptType
	PurchaseOrderID *uuid.UUID
	Page
}
