// internal/services/alert_service_test.go
package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/suite"
	"gorm.io/gorm"

	"github.com/runhunter/shoedeal-backend/internal/models"
)

type AlertServiceTestSuite struct {
	suite.Suite
	db     *gorm.DB
	alerts *AlertService
}

func (s *AlertServiceTestSuite) SetupTest() {
	s.db = newTestDB(s.T())
	s.alerts = NewAlertService(s.db, testTrackerConfig())
}

func (s *AlertServiceTestSuite) droppedResult(name string, discount, prevDiscount int) *DetectionResult {
	current := 100.0 * float64(100-discount) / 100.0
	product := &models.Product{
		Identity:           "demo:" + name,
		Source:             "demo",
		Name:               name,
		URL:                "https://example.com/" + name,
		CurrentPrice:       &current,
		OriginalPrice:      floatPtr(100),
		DiscountPercentage: discount,
		IsOnSale:           discount > 0,
		LastChecked:        time.Now(),
	}
	s.Require().NoError(s.db.Save(product).Error)

	return &DetectionResult{
		Classification: models.ClassificationPriceDropped,
		Product:        product,
		PrevDiscount:   prevDiscount,
	}
}

func (s *AlertServiceTestSuite) countAlerts(identity string) int64 {
	var count int64
	s.Require().NoError(s.db.Model(&models.SaleAlert{}).Where("identity = ?", identity).Count(&count).Error)
	return count
}

func (s *AlertServiceTestSuite) TestQualifyingDropCreatesOneAlert() {
	alert, err := s.alerts.EvaluateSale(s.droppedResult("running-shoe", 40, 0))
	s.Require().NoError(err)
	s.Require().NotNil(alert)

	s.Equal(40, alert.DiscountPercentage)
	s.Equal(60.0, alert.SalePrice)
	s.Contains([]string(alert.MatchedKeywords), "running")
	s.Equal(int64(1), s.countAlerts("demo:running-shoe"))
}

func (s *AlertServiceTestSuite) TestBelowThresholdNoAlert() {
	alert, err := s.alerts.EvaluateSale(s.droppedResult("running-shoe", 5, 0))
	s.Require().NoError(err)
	s.Nil(alert)
}

func (s *AlertServiceTestSuite) TestNoKeywordMatchNoAlert() {
	alert, err := s.alerts.EvaluateSale(s.droppedResult("dress loafers", 40, 0))
	s.Require().NoError(err)
	s.Nil(alert)
}

func (s *AlertServiceTestSuite) TestOngoingEpisodeDoesNotRealert() {
	alert, err := s.alerts.EvaluateSale(s.droppedResult("running-shoe", 40, 0))
	s.Require().NoError(err)
	s.Require().NotNil(alert)

	// Deeper drop within the same episode stays quiet.
	alert, err = s.alerts.EvaluateSale(s.droppedResult("running-shoe", 55, 40))
	s.Require().NoError(err)
	s.Nil(alert)
	s.Equal(int64(1), s.countAlerts("demo:running-shoe"))
}

func (s *AlertServiceTestSuite) TestDiscoveredOnSaleAlertsOnNextDrop() {
	// Discovered already at 40 percent off, so no alert record exists;
	// the next genuine drop must produce the episode's one alert.
	alert, err := s.alerts.EvaluateSale(s.droppedResult("running-shoe", 45, 40))
	s.Require().NoError(err)
	s.Require().NotNil(alert)
	s.Equal(45, alert.DiscountPercentage)

	// A further drop is now inside an alerted episode and stays quiet.
	alert, err = s.alerts.EvaluateSale(s.droppedResult("running-shoe", 50, 45))
	s.Require().NoError(err)
	s.Nil(alert)
	s.Equal(int64(1), s.countAlerts("demo:running-shoe"))
}

func (s *AlertServiceTestSuite) TestClassificationGate() {
	result := s.droppedResult("running-shoe", 40, 0)
	result.Classification = models.ClassificationPriceUnchanged

	alert, err := s.alerts.EvaluateSale(result)
	s.Require().NoError(err)
	s.Nil(alert)
}

func (s *AlertServiceTestSuite) TestImprovementPolicyRealerts() {
	cfg := testTrackerConfig()
	cfg.RealertOnImprovement = true
	alerts := NewAlertService(s.db, cfg)

	first, err := alerts.EvaluateSale(s.droppedResult("running-shoe", 20, 0))
	s.Require().NoError(err)
	s.Require().NotNil(first)

	// Small improvement inside the episode: still quiet.
	second, err := alerts.EvaluateSale(s.droppedResult("running-shoe", 25, 20))
	s.Require().NoError(err)
	s.Nil(second)

	// Ten-point jump past the last alerted discount re-alerts.
	third, err := alerts.EvaluateSale(s.droppedResult("running-shoe", 35, 25))
	s.Require().NoError(err)
	s.NotNil(third)
}

func (s *AlertServiceTestSuite) TestPendingAlertsAndDelivery() {
	alert, err := s.alerts.EvaluateSale(s.droppedResult("running-shoe", 40, 0))
	s.Require().NoError(err)
	s.Require().NotNil(alert)

	pending, err := s.alerts.PendingAlerts()
	s.Require().NoError(err)
	s.Require().Len(pending, 1)
	s.Equal("running-shoe", pending[0].Product.Name)

	s.Require().NoError(s.alerts.MarkDelivered(alert.ID))

	pending, err = s.alerts.PendingAlerts()
	s.Require().NoError(err)
	s.Empty(pending)
}

func (s *AlertServiceTestSuite) TestManualReviewBatchOncePerItem() {
	product := &models.Product{
		Identity:       "demo:hidden-shoe",
		Source:         "demo",
		Name:           "Hidden Running Shoe",
		URL:            "https://example.com/hidden",
		PriceHidden:    true,
		RequiresReview: true,
		LastChecked:    time.Now(),
	}
	s.Require().NoError(s.db.Create(product).Error)

	batch, err := s.alerts.ManualReviewBatch()
	s.Require().NoError(err)
	s.Require().Len(batch, 1)

	s.Require().NoError(s.alerts.MarkReviewNotified([]string{product.Identity}))

	batch, err = s.alerts.ManualReviewBatch()
	s.Require().NoError(err)
	s.Empty(batch)
}

func TestAlertServiceSuite(t *testing.T) {
	suite.Run(t, new(AlertServiceTestSuite))
}
