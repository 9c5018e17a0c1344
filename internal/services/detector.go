// internal/services/detector.go
package services

import (
	"context"
	"errors"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/runhunter/shoedeal-backend/internal/models"
)

// DetectionResult is what one observation did to the stored state. PrevDiscount
// is the discount percentage the canonical record carried before this
// observation; the alert deduplicator uses it to tell a fresh sale episode
// from an ongoing one.
type DetectionResult struct {
	Classification models.Classification
	Product        *models.Product
	PrevDiscount   int
	LedgerAppended bool
}

// DetectorService compares each observation against the canonical product
// record and the price history ledger. It is the only component that mutates
// either; alerting reads the results but never touches price truth.
type DetectorService struct {
	db     *gorm.DB
	ledger *LedgerService
	log    *logrus.Entry
}

func NewDetectorService(db *gorm.DB, ledger *LedgerService) *DetectorService {
	return &DetectorService{
		db:     db,
		ledger: ledger,
		log:    logrus.WithField("component", "detector"),
	}
}

// DiscountPercentage computes the integer discount. Anything outside
// original > current > 0 is not a discount, whatever the source claims.
func DiscountPercentage(originalPrice, currentPrice float64) int {
	if originalPrice <= 0 || currentPrice <= 0 || originalPrice <= currentPrice {
		return 0
	}
	return int(math.Round(100 * (originalPrice - currentPrice) / originalPrice))
}

// Apply runs the detection algorithm for one observation inside a single
// transaction, so a cancelled or failed cycle leaves the identity's canonical
// record and history exactly as they were.
func (s *DetectorService) Apply(ctx context.Context, obs *models.Observation) (*DetectionResult, error) {
	var result *DetectionResult

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var product models.Product
		err := tx.First(&product, "identity = ?", obs.Identity).Error
		if err != nil {
			if !errors.Is(err, gorm.ErrRecordNotFound) {
				return fmt.Errorf("failed to load product %s: %w", obs.Identity, err)
			}
			result, err = s.applyFirstSeen(tx, obs)
			return err
		}

		result, err = s.applyUpdate(tx, &product, obs)
		return err
	})
	if err != nil {
		return nil, err
	}

	return result, nil
}

func (s *DetectorService) applyFirstSeen(tx *gorm.DB, obs *models.Observation) (*DetectionResult, error) {
	product := models.Product{
		Identity:       obs.Identity,
		Source:         obs.Source,
		Name:           obs.Name,
		Brand:          obs.Brand,
		URL:            obs.URL,
		ImageURL:       obs.ImageURL,
		CurrentPrice:   obs.CurrentPrice,
		OriginalPrice:  obs.OriginalPrice,
		PriceHidden:    obs.PriceHidden,
		RequiresReview: obs.RequiresReview,
		FirstSeen:      obs.ObservedAt,
		LastChecked:    obs.ObservedAt,
	}
	if len(obs.Extra) > 0 {
		product.Attributes = models.JSONB(obs.Extra)
	}

	if obs.CurrentPrice != nil && obs.OriginalPrice != nil {
		product.DiscountPercentage = DiscountPercentage(*obs.OriginalPrice, *obs.CurrentPrice)
		product.IsOnSale = product.DiscountPercentage > 0
	}

	if err := tx.Create(&product).Error; err != nil {
		return nil, fmt.Errorf("failed to create product %s: %w", obs.Identity, err)
	}

	appended := false
	if !obs.PriceHidden && obs.CurrentPrice != nil {
		var err error
		appended, err = s.ledger.WithTx(tx).Record(obs.Identity, *obs.CurrentPrice, obs.ObservedAt)
		if err != nil {
			return nil, err
		}
	}

	return &DetectionResult{
		Classification: models.ClassificationFirstSeen,
		Product:        &product,
		LedgerAppended: appended,
	}, nil
}

func (s *DetectorService) applyUpdate(tx *gorm.DB, product *models.Product, obs *models.Observation) (*DetectionResult, error) {
	prevDiscount := product.DiscountPercentage

	var classification models.Classification
	switch {
	case obs.PriceHidden && product.PriceHidden:
		classification = models.ClassificationStillHidden
	case obs.PriceHidden:
		classification = models.ClassificationNowHidden
	default:
		classification = s.applyNumericUpdate(product, obs)
	}

	if obs.PriceHidden {
		// Hidden observations never overwrite known numeric prices; the last
		// good price and its history stay untouched.
		if classification == models.ClassificationNowHidden {
			product.PriceHidden = true
			product.RequiresReview = true
			product.ReviewNotified = false
		}
	}

	product.Name = obs.Name
	if obs.Brand != "" {
		product.Brand = obs.Brand
	}
	product.URL = obs.URL
	if obs.ImageURL != "" {
		product.ImageURL = obs.ImageURL
	}
	if len(obs.Extra) > 0 {
		product.Attributes = models.JSONB(obs.Extra)
	}
	product.LastChecked = obs.ObservedAt

	appended := false
	if !obs.PriceHidden && obs.CurrentPrice != nil {
		var err error
		appended, err = s.ledger.WithTx(tx).Record(obs.Identity, *obs.CurrentPrice, obs.ObservedAt)
		if err != nil {
			return nil, err
		}
	}

	if err := tx.Save(product).Error; err != nil {
		return nil, fmt.Errorf("failed to update product %s: %w", obs.Identity, err)
	}

	return &DetectionResult{
		Classification: classification,
		Product:        product,
		PrevDiscount:   prevDiscount,
		LedgerAppended: appended,
	}, nil
}

func (s *DetectorService) applyNumericUpdate(product *models.Product, obs *models.Observation) models.Classification {
	prevPrice := product.CurrentPrice

	product.CurrentPrice = obs.CurrentPrice
	product.OriginalPrice = obs.OriginalPrice
	product.DiscountPercentage = DiscountPercentage(*obs.OriginalPrice, *obs.CurrentPrice)
	product.IsOnSale = product.DiscountPercentage > 0

	if product.PriceHidden {
		// Price came back after being withheld; the review flag has served
		// its purpose.
		product.PriceHidden = false
		product.RequiresReview = false
		product.ReviewNotified = false
	}

	if prevPrice == nil {
		// Record existed but never had a numeric baseline.
		return models.ClassificationPriceUnchanged
	}

	switch {
	case *obs.CurrentPrice < *prevPrice:
		return models.ClassificationPriceDropped
	case *obs.CurrentPrice > *prevPrice:
		return models.ClassificationPriceIncreased
	default:
		return models.ClassificationPriceUnchanged
	}
}
