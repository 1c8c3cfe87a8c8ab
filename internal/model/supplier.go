package model

import (
	"time"

	"github.com/google/uuid"
)

// SupplierType distinguishes domestic from cross-border procurement.
type SupplierType string

const (
	SupplierTypeLocal  SupplierType = "local"
	SupplierTypeImport SupplierType = "import"
)

func (t SupplierType) Valid() bool {
	return t == SupplierTypeLocal || t == SupplierTypeImport
}

// Unique index names, referenced when translating constraint violations.
const (
	IdxSupplierName = "idx_suppliers_name"
	IdxProductName  = "idx_products_name"
)

// Supplier is a vendor goods are bought from
type Supplier struct {
	ID            uuid.UUID    `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name          string       `gorm:"type:varchar(255);uniqueIndex:idx_suppliers_name;not null" json:"name"`
	SupplierType  SupplierType `gorm:"type:varchar(20);not null;index" json:"supplier_type"` // local, import
	ContactPerson string       `gorm:"type:varchar(255)" json:"contact_person"`
	Email         string       `gorm:"type:varchar(255)" json:"email"`
	Phone         string       `gorm:"type:varchar(50)" json:"phone"`
	Address       string       `gorm:"type:text" json:"address"`
	CreatedAt     time.Time    `json:"created_at"`
	UpdatedAt     time.Time    `json:"updated_at"`
}
