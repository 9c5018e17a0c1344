// internal/services/tracker_service.go
package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/sirupsen/logrus"
	"gorm.io/gorm"

	"github.com/runhunter/shoedeal-backend/internal/config"
	"github.com/runhunter/shoedeal-backend/internal/models"
	"github.com/runhunter/shoedeal-backend/internal/scrape"
	"github.com/runhunter/shoedeal-backend/internal/utils"
)

// CycleSummary reports what one ingestion cycle did, including every skipped
// source and listing so silent data loss stays observable.
type CycleSummary struct {
	StartedAt        time.Time                     `json:"started_at"`
	FinishedAt       time.Time                     `json:"finished_at"`
	SourcesSucceeded int                           `json:"sources_succeeded"`
	SourcesFailed    int                           `json:"sources_failed"`
	ListingsSeen     int                           `json:"listings_seen"`
	ListingsRejected int                           `json:"listings_rejected"`
	LedgerFailures   int                           `json:"ledger_failures"`
	NewAlerts        int                           `json:"new_alerts"`
	AlertsDelivered  int                           `json:"alerts_delivered"`
	ReviewItems      int                           `json:"review_items"`
	Classifications  map[models.Classification]int `json:"classifications"`
}

// TrackerStats summarizes the tracked inventory.
type TrackerStats struct {
	TotalProducts   int64   `json:"total_products"`
	ProductsOnSale  int64   `json:"products_on_sale"`
	AverageDiscount float64 `json:"average_discount"`
	PendingReview   int64   `json:"pending_review"`
}

// TrackerService drives one ingestion cycle across all sources: fetch in
// parallel, normalize, classify, detect, then alert. All store writes happen
// on a single goroutine, so two sources resolving to the same identity in one
// cycle serialize into a coherent last-writer-wins state.
type TrackerService struct {
	db         *gorm.DB
	cfg        config.TrackerConfig
	normalizer *NormalizerService
	classifier *HiddenPriceClassifier
	detector   *DetectorService
	ledger     *LedgerService
	alerts     *AlertService
	gateway    NotificationGateway
	adapters   []scrape.Adapter
	runMu      sync.Mutex
	log        *logrus.Entry
}

func NewTrackerService(db *gorm.DB, cfg config.TrackerConfig, gateway NotificationGateway, adapters []scrape.Adapter) (*TrackerService, error) {
	for _, a := range adapters {
		if err := scrape.ValidateName(a.Name()); err != nil {
			return nil, err
		}
	}

	ledger := NewLedgerService(db)
	return &TrackerService{
		db:         db,
		cfg:        cfg,
		normalizer: NewNormalizerService(),
		classifier: NewHiddenPriceClassifier(cfg.HiddenPricePhrases),
		detector:   NewDetectorService(db, ledger),
		ledger:     ledger,
		alerts:     NewAlertService(db, cfg),
		gateway:    gateway,
		adapters:   adapters,
		log:        logrus.WithField("component", "tracker"),
	}, nil
}

type sourceResult struct {
	source   string
	listings []models.RawListing
	err      error
}

// RunCycle executes one full ingestion cycle. Cycles never overlap; a cycle
// requested while one is running returns ErrCycleInProgress.
func (s *TrackerService) RunCycle(ctx context.Context) (*CycleSummary, error) {
	if !s.runMu.TryLock() {
		return nil, ErrCycleInProgress
	}
	defer s.runMu.Unlock()

	summary := &CycleSummary{
		StartedAt:       time.Now(),
		Classifications: make(map[models.Classification]int),
	}
	s.log.Infof("starting cycle across %d sources", len(s.adapters))

	results := s.fetchAll(ctx)

	// Single-writer apply loop: per-identity serialization falls out of
	// processing observations sequentially here.
	for result := range results {
		// Keep draining after cancellation so the fetch workers can
		// finish their sends and exit.
		if ctx.Err() != nil {
			continue
		}
		if result.err != nil {
			summary.SourcesFailed++
			s.log.WithError(result.err).Warnf("%v: %s skipped", ErrAdapterFailure, result.source)
			continue
		}
		summary.SourcesSucceeded++

		for _, raw := range result.listings {
			if ctx.Err() != nil {
				break
			}
			summary.ListingsSeen++
			s.processListing(ctx, result.source, raw, summary)
		}
	}

	if err := ctx.Err(); err != nil {
		return summary, err
	}

	s.deliverAlerts(summary)
	s.deliverReviewBatch(summary)

	summary.FinishedAt = time.Now()
	s.log.WithFields(logrus.Fields{
		"sources_ok":       summary.SourcesSucceeded,
		"sources_failed":   summary.SourcesFailed,
		"listings":         summary.ListingsSeen,
		"rejected":         summary.ListingsRejected,
		"ledger_failures":  summary.LedgerFailures,
		"new_alerts":       summary.NewAlerts,
		"alerts_delivered": summary.AlertsDelivered,
		"review_items":     summary.ReviewItems,
		"duration_seconds": summary.FinishedAt.Sub(summary.StartedAt).Seconds(),
	}).Info("cycle complete")

	return summary, nil
}

// fetchAll fans the adapters out over a bounded worker pool and returns a
// channel of per-source results, closed when every source has reported.
func (s *TrackerService) fetchAll(ctx context.Context) <-chan sourceResult {
	jobs := make(chan scrape.Adapter)
	results := make(chan sourceResult)

	workers := s.cfg.FetchWorkers
	if workers > len(s.adapters) {
		workers = len(s.adapters)
	}
	if workers < 1 {
		workers = 1
	}

	var wg sync.WaitGroup
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for adapter := range jobs {
				fetchCtx, cancel := context.WithTimeout(ctx, time.Duration(s.cfg.SourceTimeoutSeconds)*time.Second)
				listings, err := adapter.Fetch(fetchCtx)
				cancel()
				results <- sourceResult{source: adapter.Name(), listings: listings, err: err}
			}
		}()
	}

	go func() {
		for _, adapter := range s.adapters {
			jobs <- adapter
		}
		close(jobs)
		wg.Wait()
		close(results)
	}()

	return results
}

func (s *TrackerService) processListing(ctx context.Context, source string, raw models.RawListing, summary *CycleSummary) {
	obs, err := s.normalizer.Normalize(source, raw, time.Now())
	if err != nil {
		summary.ListingsRejected++
		s.log.WithError(err).Debugf("listing from %s rejected", source)
		return
	}

	s.classifier.Classify(obs)

	result, err := s.detector.Apply(ctx, obs)
	if err != nil {
		if errors.Is(err, ErrLedgerUnavailable) {
			summary.LedgerFailures++
		}
		s.log.WithError(err).Warnf("update abandoned for %s", obs.Identity)
		return
	}

	summary.Classifications[result.Classification]++

	alert, err := s.alerts.EvaluateSale(result)
	if err != nil {
		s.log.WithError(err).Warnf("alert evaluation failed for %s", obs.Identity)
		return
	}
	if alert != nil {
		summary.NewAlerts++
	}
}

func (s *TrackerService) deliverAlerts(summary *CycleSummary) {
	pending, err := s.alerts.PendingAlerts()
	if err != nil {
		s.log.WithError(err).Warn("failed to collect pending alerts")
		return
	}
	if len(pending) == 0 {
		return
	}

	if err := s.gateway.DeliverSaleAlerts(pending); err != nil {
		// Not retried here; the pending flag keeps them for the next cycle.
		s.log.WithError(err).Warn("alert delivery failed")
		return
	}

	for _, p := range pending {
		if err := s.alerts.MarkDelivered(p.Alert.ID); err != nil {
			s.log.WithError(err).Warnf("failed to mark alert %s delivered", p.Alert.ID)
			continue
		}
		summary.AlertsDelivered++
	}
}

func (s *TrackerService) deliverReviewBatch(summary *CycleSummary) {
	batch, err := s.alerts.ManualReviewBatch()
	if err != nil {
		s.log.WithError(err).Warn("failed to collect manual review batch")
		return
	}
	summary.ReviewItems = len(batch)
	if len(batch) == 0 {
		return
	}

	if err := s.gateway.DeliverManualReviewBatch(batch); err != nil {
		s.log.WithError(err).Warn("manual review delivery failed")
		return
	}

	identities := make([]string, 0, len(batch))
	for _, p := range batch {
		identities = append(identities, p.Identity)
	}
	if err := s.alerts.MarkReviewNotified(identities); err != nil {
		s.log.WithError(err).Warn("failed to mark review batch notified")
	}
}

var saleSortFields = []string{"discount_percentage", "current_price", "last_checked", "name"}

// ActiveSales lists products currently on sale, paginated. Default order is
// best discount first.
func (s *TrackerService) ActiveSales(params utils.PaginationParams) (utils.PaginationResult, error) {
	query := s.db.Model(&models.Product{}).Where("is_on_sale = ?", true)
	if params.Search != "" {
		pattern := "%" + strings.ToLower(params.Search) + "%"
		query = query.Where("LOWER(name) LIKE ? OR LOWER(brand) LIKE ?", pattern, pattern)
	}

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return utils.PaginationResult{}, fmt.Errorf("failed to count active sales: %w", err)
	}

	var products []models.Product
	query = utils.ApplySort(query, params, saleSortFields)
	if err := utils.ApplyPagination(query, params).Find(&products).Error; err != nil {
		return utils.PaginationResult{}, fmt.Errorf("failed to fetch active sales: %w", err)
	}
	return utils.CreatePaginationResult(products, total, params), nil
}

// ListManualReview returns flagged products, most recently checked first.
func (s *TrackerService) ListManualReview(params utils.PaginationParams) (utils.PaginationResult, error) {
	query := s.db.Model(&models.Product{}).Where("requires_review = ?", true)

	var total int64
	if err := query.Count(&total).Error; err != nil {
		return utils.PaginationResult{}, fmt.Errorf("failed to count manual review items: %w", err)
	}

	var products []models.Product
	query = utils.ApplySort(query, params, []string{"last_checked", "name"})
	if err := utils.ApplyPagination(query, params).Find(&products).Error; err != nil {
		return utils.PaginationResult{}, fmt.Errorf("failed to fetch manual review items: %w", err)
	}
	return utils.CreatePaginationResult(products, total, params), nil
}

// ClearManualReview marks an item human-reviewed. It only clears the flag;
// price data and history are untouched.
func (s *TrackerService) ClearManualReview(identity string) error {
	now := time.Now()
	result := s.db.Model(&models.Product{}).
		Where("identity = ?", identity).
		Updates(map[string]interface{}{
			"requires_review": false,
			"reviewed_at":     &now,
		})
	if result.Error != nil {
		return fmt.Errorf("failed to clear manual review for %s: %w", identity, result.Error)
	}
	if result.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// PriceHistory returns the oldest-first price history of one identity.
func (s *TrackerService) PriceHistory(identity string) ([]models.PriceEntry, error) {
	return s.ledger.History(identity)
}

// Stats reports inventory-level numbers.
func (s *TrackerService) Stats() (*TrackerStats, error) {
	stats := &TrackerStats{}

	if err := s.db.Model(&models.Product{}).Count(&stats.TotalProducts).Error; err != nil {
		return nil, fmt.Errorf("failed to count products: %w", err)
	}
	if err := s.db.Model(&models.Product{}).Where("is_on_sale = ?", true).Count(&stats.ProductsOnSale).Error; err != nil {
		return nil, fmt.Errorf("failed to count sales: %w", err)
	}
	if err := s.db.Model(&models.Product{}).Where("requires_review = ?", true).Count(&stats.PendingReview).Error; err != nil {
		return nil, fmt.Errorf("failed to count review items: %w", err)
	}

	var avg *float64
	if err := s.db.Model(&models.Product{}).
		Where("is_on_sale = ?", true).
		Select("AVG(discount_percentage)").Scan(&avg).Error; err != nil {
		return nil, fmt.Errorf("failed to average discounts: %w", err)
	}
	if avg != nil {
		stats.AverageDiscount = *avg
	}

	return stats, nil
}
