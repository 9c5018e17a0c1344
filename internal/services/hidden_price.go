// internal/services/hidden_price.go
package services

import (
	"strings"

	"github.com/runhunter/shoedeal-backend/internal/models"
)

// HiddenPriceClassifier decides whether a listing actually exposes a usable
// price. Retailers that withhold prices ("see price in cart") often leave a
// stray 0.00 or placeholder number in the markup, so withheld-price wording
// always wins over any parsed value.
type HiddenPriceClassifier struct {
	phrases []string
}

func NewHiddenPriceClassifier(phrases []string) *HiddenPriceClassifier {
	lowered := make([]string, 0, len(phrases))
	for _, p := range phrases {
		if trimmed := strings.ToLower(strings.TrimSpace(p)); trimmed != "" {
			lowered = append(lowered, trimmed)
		}
	}
	return &HiddenPriceClassifier{phrases: lowered}
}

// Classify sets the price-hidden and manual-review flags on the observation.
// A hidden observation never carries numeric prices.
func (c *HiddenPriceClassifier) Classify(obs *models.Observation) {
	if c.matches(obs.PriceText) {
		obs.PriceHidden = true
		obs.RequiresReview = true
		obs.CurrentPrice = nil
		obs.OriginalPrice = nil
		return
	}

	if obs.CurrentPrice != nil {
		obs.PriceHidden = false
		obs.RequiresReview = false
		return
	}

	// No withheld wording but no number either; suspicious enough to flag
	// rather than silently record a zero.
	obs.PriceHidden = true
	obs.RequiresReview = true
	obs.OriginalPrice = nil
}

func (c *HiddenPriceClassifier) matches(text string) bool {
	if text == "" {
		return false
	}
	lowered := strings.ToLower(text)
	for _, phrase := range c.phrases {
		if strings.Contains(lowered, phrase) {
			return true
		}
	}
	return false
}
