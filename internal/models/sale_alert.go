// internal/models/sale_alert.go
package models

import (
	"time"

	"github.com/lib/pq"
)

// SaleAlert records one notification-worthy sale event. At most one alert
// exists per sale episode of an identity; it is kept after delivery so the
// deduplicator can tell an ongoing episode from a new one.
type SaleAlert struct {
	BaseModel
	Identity           string         `json:"identity" gorm:"size:255;not null;index"`
	SalePrice          float64        `json:"sale_price" gorm:"type:decimal(10,2);not null"`
	OriginalPrice      float64        `json:"original_price" gorm:"type:decimal(10,2);not null"`
	DiscountPercentage int            `json:"discount_percentage" gorm:"not null"`
	MatchedKeywords    pq.StringArray `json:"matched_keywords" gorm:"type:text[]"`
	Delivered          bool           `json:"delivered" gorm:"default:false;index"`
	DeliveredAt        *time.Time     `json:"delivered_at,omitempty"`
}
