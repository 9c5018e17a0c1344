// internal/models/listing.go
package models

import "time"

// RawListing is what a source adapter yields for one scraped listing. Field
// shapes vary wildly between sites, so only the handful of fields every
// adapter can produce are typed; everything else goes into Extra and is never
// inspected outside the normalizer.
type RawListing struct {
	NativeID          string                 `json:"native_id"`
	Name              string                 `json:"name"`
	Brand             string                 `json:"brand,omitempty"`
	URL               string                 `json:"url"`
	ImageURL          string                 `json:"image_url,omitempty"`
	PriceText         string                 `json:"price_text,omitempty"`
	OriginalPriceText string                 `json:"original_price_text,omitempty"`
	OnSaleHint        bool                   `json:"on_sale_hint,omitempty"`
	Extra             map[string]interface{} `json:"extra,omitempty"`
}

// Observation is the normalized, ephemeral form of one scraped listing.
// Prices are nil iff PriceHidden is true.
type Observation struct {
	Identity       string
	Source         string
	Name           string
	Brand          string
	URL            string
	ImageURL       string
	CurrentPrice   *float64
	OriginalPrice  *float64
	PriceHidden    bool
	RequiresReview bool
	OnSaleHint     bool
	PriceText      string
	Extra          map[string]interface{}
	ObservedAt     time.Time
}
