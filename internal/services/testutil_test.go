// internal/services/testutil_test.go
package services

import (
	"testing"

	"github.com/glebarez/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"github.com/runhunter/shoedeal-backend/internal/config"
	"github.com/runhunter/shoedeal-backend/internal/models"
)

// newTestDB opens a fresh in-memory database with the full schema. A single
// connection keeps every query on the same memory instance.
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Silent),
	})
	if err != nil {
		t.Fatalf("failed to open test database: %v", err)
	}

	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("failed to get sql.DB: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)

	if err := db.AutoMigrate(&models.Product{}, &models.PriceEntry{}, &models.SaleAlert{}); err != nil {
		t.Fatalf("failed to migrate test database: %v", err)
	}

	return db
}

func testTrackerConfig() config.TrackerConfig {
	return config.TrackerConfig{
		MinDiscountPercentage: 10,
		Keywords:              []string{"running", "trail"},
		HiddenPricePhrases:    []string{"see price in cart", "sign in to see price", "members only"},
		CheckIntervalMinutes:  60,
		FetchWorkers:          2,
		SourceTimeoutSeconds:  5,
	}
}

func floatPtr(v float64) *float64 {
	return &v
}
