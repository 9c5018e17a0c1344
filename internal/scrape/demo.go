// internal/scrape/demo.go
package scrape

import (
	"context"

	"github.com/runhunter/shoedeal-backend/internal/models"
)

// DemoAdapter serves canned listings. It backs smoke runs without network
// access and doubles as the fake source in tests.
type DemoAdapter struct {
	name     string
	listings []models.RawListing
	err      error
}

func NewDemoAdapter(name string, listings []models.RawListing) *DemoAdapter {
	return &DemoAdapter{name: name, listings: listings}
}

// NewFailingAdapter returns an adapter whose Fetch always fails, for
// exercising the skip-and-continue path.
func NewFailingAdapter(name string, err error) *DemoAdapter {
	return &DemoAdapter{name: name, err: err}
}

func (a *DemoAdapter) Name() string {
	return a.name
}

// SetListings replaces the canned records served on the next fetch.
func (a *DemoAdapter) SetListings(listings []models.RawListing) {
	a.listings = listings
}

func (a *DemoAdapter) Fetch(ctx context.Context) ([]models.RawListing, error) {
	if a.err != nil {
		return nil, a.err
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	out := make([]models.RawListing, len(a.listings))
	copy(out, a.listings)
	return out, nil
}
