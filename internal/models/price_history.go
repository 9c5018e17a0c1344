// internal/models/price_history.go
package models

import "time"

// PriceEntry is one append-only price observation. Consecutive entries for an
// identity always carry different prices; an unchanged price is not recorded.
type PriceEntry struct {
	ID         uint      `json:"id" gorm:"primaryKey;autoIncrement"`
	Identity   string    `json:"identity" gorm:"size:255;not null;index:idx_price_entries_identity_recorded"`
	Price      float64   `json:"price" gorm:"type:decimal(10,2);not null"`
	RecordedAt time.Time `json:"recorded_at" gorm:"not null;index:idx_price_entries_identity_recorded"`
}
