// internal/services/hidden_price_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runhunter/shoedeal-backend/internal/models"
)

func TestClassifyWithheldTextBeatsStrayNumber(t *testing.T) {
	n := NewNormalizerService()
	c := NewHiddenPriceClassifier([]string{"sign in to see price"})

	// A stray scraped 0.00 next to withheld-price wording must not become a
	// real price.
	obs, err := n.Normalize("demo", models.RawListing{
		NativeID:  "sku-9",
		Name:      "Marathon Racer",
		URL:       "https://example.com/sku-9",
		PriceText: "Sign In to See Price 0.00",
	}, time.Now())
	require.NoError(t, err)

	c.Classify(obs)

	assert.True(t, obs.PriceHidden)
	assert.True(t, obs.RequiresReview)
	assert.Nil(t, obs.CurrentPrice)
	assert.Nil(t, obs.OriginalPrice)
}

func TestClassifyIsCaseInsensitive(t *testing.T) {
	c := NewHiddenPriceClassifier([]string{"MEMBERS ONLY"})

	obs := &models.Observation{
		PriceText:    "Members Only pricing",
		CurrentPrice: floatPtr(49.99),
	}
	c.Classify(obs)

	assert.True(t, obs.PriceHidden)
	assert.Nil(t, obs.CurrentPrice)
}

func TestClassifyValidPriceStaysVisible(t *testing.T) {
	c := NewHiddenPriceClassifier([]string{"see price in cart"})

	obs := &models.Observation{
		PriceText:     "$59.99",
		CurrentPrice:  floatPtr(59.99),
		OriginalPrice: floatPtr(79.99),
	}
	c.Classify(obs)

	assert.False(t, obs.PriceHidden)
	assert.False(t, obs.RequiresReview)
	require.NotNil(t, obs.CurrentPrice)
	assert.Equal(t, 59.99, *obs.CurrentPrice)
}

func TestClassifyNoPriceNoPhraseStillHidden(t *testing.T) {
	c := NewHiddenPriceClassifier([]string{"see price in cart"})

	obs := &models.Observation{PriceText: "New arrival"}
	c.Classify(obs)

	assert.True(t, obs.PriceHidden)
	assert.True(t, obs.RequiresReview)
}
