package model

import (
	"time"

	"github.com/google/uuid"
)

// Product is a catalogue entry that can be ordered from any supplier
type Product struct {
	ID           uuid.UUID `gorm:"type:uuid;default:gen_random_uuid();primaryKey" json:"id"`
	Name         string    `gorm:"type:varchar(255);uniqueIndex:idx_products_name;not null" json:"name"`
	Description  string    `gorm:"type:text" json:"description"`
	Manufacturer string    `gorm:"type:varchar(255)" json:"manufacturer"`
	HSCode       string    `gorm:"type:varchar(50)" json:"hs_code"` // customs code, import products only
	CreatedAt    time.Time `json:"created_at"`
	UpdatedAt    time.Time `json:"updated_at"`
}
