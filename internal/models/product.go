// internal/models/product.go
package models

import "time"

// Product is the canonical, current-truth record for one tracked listing.
// Identity is derived from (source, native product id) and is stable across
// runs, so repeated scrapes update the same row in place.
type Product struct {
	Identity           string     `json:"identity" gorm:"primaryKey;size:255"`
	Source             string     `json:"source" gorm:"size:100;not null;index"`
	Name               string     `json:"name" gorm:"size:255;not null"`
	Brand              string     `json:"brand,omitempty" gorm:"size:100"`
	URL                string     `json:"url" gorm:"type:text;not null"`
	ImageURL           string     `json:"image_url,omitempty" gorm:"type:text"`
	CurrentPrice       *float64   `json:"current_price" gorm:"type:decimal(10,2)"`
	OriginalPrice      *float64   `json:"original_price" gorm:"type:decimal(10,2)"`
	DiscountPercentage int        `json:"discount_percentage" gorm:"default:0"`
	IsOnSale           bool       `json:"is_on_sale" gorm:"default:false;index"`
	PriceHidden        bool       `json:"price_hidden" gorm:"default:false"`
	RequiresReview     bool       `json:"requires_manual_review" gorm:"default:false;index"`
	ReviewNotified     bool       `json:"review_notified" gorm:"default:false"`
	Attributes         JSONB      `json:"attributes,omitempty" gorm:"type:jsonb"`
	FirstSeen          time.Time  `json:"first_seen"`
	LastChecked        time.Time  `json:"last_checked" gorm:"index"`
	ReviewedAt         *time.Time `json:"reviewed_at,omitempty"`
}
