// internal/services/normalizer_test.go
package services

import (
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runhunter/shoedeal-backend/internal/models"
)

func TestParsePrice(t *testing.T) {
	tests := []struct {
		name     string
		input    string
		expected *float64
	}{
		{"plain dollars", "$89.99", floatPtr(89.99)},
		{"thousands separator", "$1,234.56", floatPtr(1234.56)},
		{"no symbol", "45", floatPtr(45)},
		{"whitespace and label", "Sale: $12.50", floatPtr(12.50)},
		{"empty", "", nil},
		{"no digits", "call for price", nil},
		{"two decimal points", "1.2.3", nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ParsePrice(tt.input)
			if tt.expected == nil {
				assert.Nil(t, got)
				return
			}
			require.NotNil(t, got)
			assert.InDelta(t, *tt.expected, *got, 0.001)
		})
	}
}

func TestIdentityKeyDeterministic(t *testing.T) {
	assert.Equal(t, IdentityKey("dicks", "sku-42"), IdentityKey("dicks", "sku-42"))
	assert.NotEqual(t, IdentityKey("dicks", "sku-42"), IdentityKey("rw", "sku-42"))
	assert.NotEqual(t, IdentityKey("a", "b_c"), IdentityKey("a_b", "c"))
}

func TestNormalizeRejectsMissingMandatoryFields(t *testing.T) {
	n := NewNormalizerService()
	now := time.Now()

	base := models.RawListing{
		NativeID:  "sku-1",
		Name:      "Trail Shoe",
		URL:       "https://example.com/sku-1",
		PriceText: "$50.00",
	}

	tests := []struct {
		name   string
		mutate func(*models.RawListing)
	}{
		{"missing native id", func(r *models.RawListing) { r.NativeID = " " }},
		{"missing name", func(r *models.RawListing) { r.Name = "" }},
		{"missing url", func(r *models.RawListing) { r.URL = "" }},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw := base
			tt.mutate(&raw)
			_, err := n.Normalize("demo", raw, now)
			require.Error(t, err)
			assert.True(t, errors.Is(err, ErrNormalizationRejected))
		})
	}
}

func TestNormalizeDefaultsOriginalToCurrent(t *testing.T) {
	n := NewNormalizerService()

	obs, err := n.Normalize("demo", models.RawListing{
		NativeID:  "sku-2",
		Name:      "Runner",
		URL:       "https://example.com/sku-2",
		PriceText: "$80.00",
	}, time.Now())
	require.NoError(t, err)

	require.NotNil(t, obs.CurrentPrice)
	require.NotNil(t, obs.OriginalPrice)
	assert.Equal(t, *obs.CurrentPrice, *obs.OriginalPrice)
	assert.False(t, obs.PriceHidden)
}

func TestNormalizeUnparseablePriceFailsClosed(t *testing.T) {
	n := NewNormalizerService()

	obs, err := n.Normalize("demo", models.RawListing{
		NativeID:  "sku-3",
		Name:      "Runner",
		URL:       "https://example.com/sku-3",
		PriceText: "price unavailable",
	}, time.Now())
	require.NoError(t, err)

	assert.True(t, obs.PriceHidden)
	assert.True(t, obs.RequiresReview)
	assert.Nil(t, obs.CurrentPrice)
	assert.Nil(t, obs.OriginalPrice)
}
