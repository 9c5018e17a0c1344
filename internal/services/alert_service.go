// internal/services/alert_service.go
package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/lib/pq"
	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/runhunter/shoedeal-backend/internal/config"
	"github.com/runhunter/shoedeal-backend/internal/models"
)

// AlertPayload pairs an alert with its product for delivery.
type AlertPayload struct {
	Alert   models.SaleAlert
	Product models.Product
}

// AlertService decides which detection results are notification-worthy and
// guarantees one alert per sale episode. It reads canonical records and writes
// alert records; it never mutates price data.
type AlertService struct {
	db  *gorm.DB
	cfg config.TrackerConfig
	log *logrus.Entry
}

func NewAlertService(db *gorm.DB, cfg config.TrackerConfig) *AlertService {
	return &AlertService{
		db:  db,
		cfg: cfg,
		log: logrus.WithField("component", "alerts"),
	}
}

// EvaluateSale applies the episode transition rule to one detection result and
// creates an alert when the item just entered a qualifying sale episode.
// Returns nil when no alert is warranted.
func (s *AlertService) EvaluateSale(result *DetectionResult) (*models.SaleAlert, error) {
	if result.Classification != models.ClassificationPriceDropped {
		return nil, nil
	}

	product := result.Product
	if product.CurrentPrice == nil || product.OriginalPrice == nil {
		return nil, nil
	}

	discount := product.DiscountPercentage
	threshold := int(s.cfg.MinDiscountPercentage)
	if discount < threshold {
		return nil, nil
	}

	matched := s.matchKeywords(product)
	if len(matched) == 0 {
		return nil, nil
	}

	if result.PrevDiscount >= threshold {
		last, err := s.lastAlert(product.Identity)
		if err != nil {
			return nil, err
		}
		// Without an alert record the item was discovered already on sale
		// and the user has never been told; this drop gets the episode's
		// one alert. Otherwise the user was told once and a better
		// discount stays quiet unless the improvement policy is on.
		if last != nil {
			if !s.cfg.RealertOnImprovement {
				return nil, nil
			}
			if discount < last.DiscountPercentage+10 {
				return nil, nil
			}
		}
	}

	alert := &models.SaleAlert{
		Identity:           product.Identity,
		SalePrice:          *product.CurrentPrice,
		OriginalPrice:      *product.OriginalPrice,
		DiscountPercentage: discount,
		MatchedKeywords:    pq.StringArray(matched),
	}

	if err := s.db.Create(alert).Error; err != nil {
		return nil, fmt.Errorf("failed to create sale alert for %s: %w", product.Identity, err)
	}

	s.log.WithFields(logrus.Fields{
		"identity": product.Identity,
		"discount": discount,
		"price":    *product.CurrentPrice,
	}).Info("sale alert created")

	return alert, nil
}

// PendingAlerts returns undelivered alerts, newest first, joined with the
// product records the notifier needs.
func (s *AlertService) PendingAlerts() ([]AlertPayload, error) {
	var alerts []models.SaleAlert
	if err := s.db.Where("delivered = ?", false).
		Order("created_at DESC").
		Find(&alerts).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch pending alerts: %w", err)
	}
	if len(alerts) == 0 {
		return nil, nil
	}

	identities := make([]string, 0, len(alerts))
	for _, a := range alerts {
		identities = append(identities, a.Identity)
	}

	var products []models.Product
	if err := s.db.Where("identity IN ?", identities).Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch products for alerts: %w", err)
	}

	byIdentity := make(map[string]models.Product, len(products))
	for _, p := range products {
		byIdentity[p.Identity] = p
	}

	payloads := make([]AlertPayload, 0, len(alerts))
	for _, a := range alerts {
		payloads = append(payloads, AlertPayload{Alert: a, Product: byIdentity[a.Identity]})
	}
	return payloads, nil
}

// MarkDelivered flags one alert as delivered.
func (s *AlertService) MarkDelivered(alertID uuid.UUID) error {
	now := time.Now()
	if err := s.db.Model(&models.SaleAlert{}).
		Where("id = ?", alertID).
		Updates(map[string]interface{}{"delivered": true, "delivered_at": &now}).Error; err != nil {
		return fmt.Errorf("failed to mark alert delivered: %w", err)
	}
	return nil
}

// ManualReviewBatch returns flagged products that have not been included in a
// review notification yet.
func (s *AlertService) ManualReviewBatch() ([]models.Product, error) {
	var products []models.Product
	if err := s.db.Where("requires_review = ? AND review_notified = ?", true, false).
		Order("last_checked DESC").
		Find(&products).Error; err != nil {
		return nil, fmt.Errorf("failed to fetch manual review batch: %w", err)
	}
	return products, nil
}

// MarkReviewNotified records that the given identities were included in a
// review batch, so the next cycle does not repeat them.
func (s *AlertService) MarkReviewNotified(identities []string) error {
	if len(identities) == 0 {
		return nil
	}
	if err := s.db.Model(&models.Product{}).
		Where("identity IN ?", identities).
		Update("review_notified", true).Error; err != nil {
		return fmt.Errorf("failed to mark review batch notified: %w", err)
	}
	return nil
}

func (s *AlertService) lastAlert(identity string) (*models.SaleAlert, error) {
	var alert models.SaleAlert
	err := s.db.Where("identity = ?", identity).
		Order("created_at DESC").
		First(&alert).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to fetch last alert for %s: %w", identity, err)
	}
	return &alert, nil
}

func (s *AlertService) matchKeywords(product *models.Product) []string {
	haystack := strings.ToLower(product.Name + " " + product.Brand)
	var matched []string
	for _, kw := range s.cfg.Keywords {
		if strings.Contains(haystack, kw) {
			matched = append(matched, kw)
		}
	}
	return matched
}
