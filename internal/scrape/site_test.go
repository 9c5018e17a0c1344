// internal/scrape/site_test.go
package scrape

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const catalogPage = `<html><body>
<div class="product">
	<span class="name">Trail Runner Pro</span>
	<span class="price">$79.99</span>
	<a href="/p/trail-runner-pro">view</a>
</div>
<div class="product">
	<span class="name">Road Racer</span>
	<span class="price">Sign in to see price</span>
	<a href="/p/road-racer">view</a>
</div>
</body></html>`

func newCatalogAdapter(t *testing.T) (*SiteAdapter, *httptest.Server) {
	t.Helper()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		fmt.Fprint(w, catalogPage)
	}))
	t.Cleanup(srv.Close)

	host, err := url.Parse(srv.URL)
	require.NoError(t, err)

	adapter, err := NewSiteAdapter(SiteConfig{
		Name:              "testshop",
		AllowedDomains:    []string{host.Hostname()},
		SearchURLs:        []string{srv.URL},
		RequestsPerSecond: 100,
		ProductSelector:   ".product",
		NameSelector:      ".name",
		PriceSelector:     ".price",
		LinkSelector:      "a",
	})
	require.NoError(t, err)

	return adapter, srv
}

func TestSiteAdapterFetch(t *testing.T) {
	adapter, srv := newCatalogAdapter(t)

	listings, err := adapter.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 2)

	assert.Equal(t, "Trail Runner Pro", listings[0].Name)
	assert.Equal(t, "$79.99", listings[0].PriceText)
	assert.Equal(t, srv.URL+"/p/trail-runner-pro", listings[0].URL)
	assert.Equal(t, "Sign in to see price", listings[1].PriceText)
}

func TestSiteAdapterNativeIDFallbackIsPathSafe(t *testing.T) {
	adapter, _ := newCatalogAdapter(t)

	listings, err := adapter.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, listings, 2)

	// No id attribute configured, so the id is derived from the product
	// URL. It has to survive as a single path segment.
	for _, l := range listings {
		assert.Len(t, l.NativeID, 16)
		assert.NotContains(t, l.NativeID, "/")
	}
	assert.NotEqual(t, listings[0].NativeID, listings[1].NativeID)

	// Stable across fetches, so repeated cycles hit the same identity.
	again, err := adapter.Fetch(context.Background())
	require.NoError(t, err)
	require.Len(t, again, 2)
	assert.Equal(t, listings[0].NativeID, again[0].NativeID)
}
