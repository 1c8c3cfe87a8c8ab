package model

import "time"

// NumberSequence is a per-scope counter backing human-readable document numbers.
// Scope is "<PREFIX>-<YYYYMMDD>", e.g. "RCP-ACC-20250101".
type NumberSequence struct {
	Scope     string    `gorm:"type:varchar(64);primaryKey" json:"scope"`
	Value     int64     `gorm:"not null;default:0" json:"value"`
	UpdatedAt time.Time `json:"updated_at"`
}
