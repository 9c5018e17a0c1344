// internal/scrape/site.go
package scrape

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"
	"sync"

	"github.com/gocolly/colly/v2"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/runhunter/shoedeal-backend/internal/models"
)

const defaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"

// SiteConfig describes how to pull listings out of one retailer's search
// pages. Selectors are relative to the product container.
type SiteConfig struct {
	Name              string
	AllowedDomains    []string
	SearchURLs        []string
	UserAgent         string
	RequestsPerSecond float64

	ProductSelector       string
	NameSelector          string
	BrandSelector         string
	PriceSelector         string
	OriginalPriceSelector string
	LinkSelector          string
	ImageSelector         string
	IDAttr                string
	SaleBadgeSelector     string
}

// SiteAdapter scrapes listing pages with a CSS-selector driven colly
// collector. One instance serves one retailer.
type SiteAdapter struct {
	cfg     SiteConfig
	limiter *rate.Limiter
	log     *logrus.Entry
}

func NewSiteAdapter(cfg SiteConfig) (*SiteAdapter, error) {
	if err := ValidateName(cfg.Name); err != nil {
		return nil, err
	}
	if cfg.ProductSelector == "" || cfg.NameSelector == "" || cfg.LinkSelector == "" {
		return nil, fmt.Errorf("adapter %s: product, name and link selectors are required", cfg.Name)
	}
	if cfg.UserAgent == "" {
		cfg.UserAgent = defaultUserAgent
	}
	if cfg.RequestsPerSecond <= 0 {
		cfg.RequestsPerSecond = 0.5
	}

	return &SiteAdapter{
		cfg:     cfg,
		limiter: rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), 1),
		log:     logrus.WithField("adapter", cfg.Name),
	}, nil
}

func (a *SiteAdapter) Name() string {
	return a.cfg.Name
}

func (a *SiteAdapter) Fetch(ctx context.Context) ([]models.RawListing, error) {
	// A fresh collector per fetch keeps visited-URL state from leaking
	// between cycles.
	c := colly.NewCollector(
		colly.AllowedDomains(a.cfg.AllowedDomains...),
		colly.UserAgent(a.cfg.UserAgent),
		colly.StdlibContext(ctx),
	)

	var (
		mu        sync.Mutex
		listings  []models.RawListing
		scrapeErr error
	)

	c.OnHTML(a.cfg.ProductSelector, func(e *colly.HTMLElement) {
		listing := models.RawListing{
			Name:      strings.TrimSpace(e.ChildText(a.cfg.NameSelector)),
			URL:       e.Request.AbsoluteURL(e.ChildAttr(a.cfg.LinkSelector, "href")),
			PriceText: strings.TrimSpace(e.ChildText(a.cfg.PriceSelector)),
			Extra:     map[string]interface{}{"page_url": e.Request.URL.String()},
		}

		if a.cfg.IDAttr != "" {
			listing.NativeID = strings.TrimSpace(e.Attr(a.cfg.IDAttr))
		}
		if listing.NativeID == "" {
			// Fall back to a digest of the product URL, which is stable
			// per listing and safe inside a single path segment.
			sum := sha256.Sum256([]byte(listing.URL))
			listing.NativeID = hex.EncodeToString(sum[:8])
		}
		if a.cfg.BrandSelector != "" {
			listing.Brand = strings.TrimSpace(e.ChildText(a.cfg.BrandSelector))
		}
		if a.cfg.ImageSelector != "" {
			listing.ImageURL = e.Request.AbsoluteURL(e.ChildAttr(a.cfg.ImageSelector, "src"))
		}
		if a.cfg.OriginalPriceSelector != "" {
			listing.OriginalPriceText = strings.TrimSpace(e.ChildText(a.cfg.OriginalPriceSelector))
		}
		if a.cfg.SaleBadgeSelector != "" && e.ChildText(a.cfg.SaleBadgeSelector) != "" {
			listing.OnSaleHint = true
		}
		// The classifier needs the full container text to spot withheld-price
		// wording that sits outside the price element.
		if listing.PriceText == "" {
			listing.PriceText = strings.TrimSpace(e.Text)
		}

		mu.Lock()
		listings = append(listings, listing)
		mu.Unlock()
	})

	c.OnError(func(r *colly.Response, err error) {
		a.log.WithError(err).Warnf("request failed: %s", r.Request.URL)
		mu.Lock()
		scrapeErr = err
		mu.Unlock()
	})

	for _, url := range a.cfg.SearchURLs {
		if err := a.limiter.Wait(ctx); err != nil {
			return nil, err
		}
		a.log.Infof("fetching %s", url)
		if err := c.Visit(url); err != nil {
			a.log.WithError(err).Warnf("visit failed: %s", url)
			mu.Lock()
			scrapeErr = err
			mu.Unlock()
		}
	}
	c.Wait()

	if len(listings) == 0 && scrapeErr != nil {
		return nil, fmt.Errorf("adapter %s: %w", a.cfg.Name, scrapeErr)
	}

	a.log.Infof("fetched %d listings", len(listings))
	return listings, nil
}
