// internal/scrape/adapter.go
package scrape

import (
	"context"
	"fmt"
	"regexp"

	"github.com/runhunter/shoedeal-backend/internal/models"
)

// Adapter is the contract every listing source satisfies. Fetch may return an
// empty slice on a quiet run; it returns an error only for adapter-internal
// failure. How a source gets its data (plain HTTP, headless browser, API) is
// entirely its own business.
type Adapter interface {
	Name() string
	Fetch(ctx context.Context) ([]models.RawListing, error)
}

// Adapter names become the source half of every identity key, so they are
// restricted to characters that cannot collide with the joining separator.
var validAdapterName = regexp.MustCompile(`^[a-z0-9][a-z0-9_-]*$`)

// ValidateName rejects adapter names that could produce ambiguous identity
// keys.
func ValidateName(name string) error {
	if !validAdapterName.MatchString(name) {
		return fmt.Errorf("invalid adapter name %q: must match %s", name, validAdapterName.String())
	}
	return nil
}
