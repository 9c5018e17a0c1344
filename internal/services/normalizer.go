// internal/services/normalizer.go
package services

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/runhunter/shoedeal-backend/internal/models"
)

// NormalizerService turns raw, site-specific listing records into canonical
// observations. It is pure: no I/O, no randomness, so the same raw record
// always yields the same observation.
type NormalizerService struct{}

func NewNormalizerService() *NormalizerService {
	return &NormalizerService{}
}

// IdentityKey derives the stable cross-run key for a listing. Adapter names
// never contain ":" (enforced at registration), so identities from different
// sources cannot collide even when native ids match lexically.
func IdentityKey(source, nativeID string) string {
	return source + ":" + nativeID
}

var nonPriceChars = regexp.MustCompile(`[^\d.,]`)

// ParsePrice extracts a numeric price from display text, tolerating currency
// symbols and thousands separators. It fails closed: anything unparseable
// returns nil, never zero.
func ParsePrice(text string) *float64 {
	if text == "" {
		return nil
	}

	cleaned := nonPriceChars.ReplaceAllString(text, "")
	cleaned = strings.ReplaceAll(cleaned, ",", "")
	if cleaned == "" || strings.Count(cleaned, ".") > 1 {
		return nil
	}

	value, err := strconv.ParseFloat(cleaned, 64)
	if err != nil || value < 0 {
		return nil
	}
	return &value
}

// Normalize maps one raw record to an observation, or rejects it when the
// mandatory fields (native id, name, URL) are absent.
func (s *NormalizerService) Normalize(source string, raw models.RawListing, observedAt time.Time) (*models.Observation, error) {
	nativeID := strings.TrimSpace(raw.NativeID)
	name := strings.TrimSpace(raw.Name)
	url := strings.TrimSpace(raw.URL)

	switch {
	case nativeID == "":
		return nil, fmt.Errorf("%w: missing native id", ErrNormalizationRejected)
	case name == "":
		return nil, fmt.Errorf("%w: missing display name", ErrNormalizationRejected)
	case url == "":
		return nil, fmt.Errorf("%w: missing canonical URL", ErrNormalizationRejected)
	}

	obs := &models.Observation{
		Identity:   IdentityKey(source, nativeID),
		Source:     source,
		Name:       name,
		Brand:      strings.TrimSpace(raw.Brand),
		URL:        url,
		ImageURL:   strings.TrimSpace(raw.ImageURL),
		OnSaleHint: raw.OnSaleHint,
		PriceText:  raw.PriceText,
		Extra:      raw.Extra,
		ObservedAt: observedAt,
	}

	obs.CurrentPrice = ParsePrice(raw.PriceText)
	obs.OriginalPrice = ParsePrice(raw.OriginalPriceText)

	// Without an explicit list price the current price is the original.
	if obs.OriginalPrice == nil && obs.CurrentPrice != nil {
		original := *obs.CurrentPrice
		obs.OriginalPrice = &original
	}

	if obs.CurrentPrice == nil {
		obs.PriceHidden = true
		obs.RequiresReview = true
		obs.OriginalPrice = nil
	}

	return obs, nil
}
