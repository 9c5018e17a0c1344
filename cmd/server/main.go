// cmd/server/main.go
package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/runhunter/shoedeal-backend/internal/config"
	"github.com/runhunter/shoedeal-backend/internal/database"
	"github.com/runhunter/shoedeal-backend/internal/models"
	"github.com/runhunter/shoedeal-backend/internal/router"
	"github.com/runhunter/shoedeal-backend/internal/scrape"
	"github.com/runhunter/shoedeal-backend/internal/services"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})

	// Load configuration
	cfg, err := config.Load()
	if err != nil {
		logrus.Fatal("Failed to load configuration: ", err)
	}

	// Initialize database
	db, err := database.Initialize(cfg.Database)
	if err != nil {
		logrus.Fatal("Failed to initialize database: ", err)
	}
	defer database.Close(db)

	// Run database migrations
	if err := database.RunMigrations(db); err != nil {
		logrus.Fatal("Failed to run migrations: ", err)
	}

	// Build sources and the tracking pipeline
	adapters, err := buildAdapters(cfg)
	if err != nil {
		logrus.Fatal("Failed to build source adapters: ", err)
	}

	gateway := services.NewNotificationService(cfg.Notification)
	trackerService, err := services.NewTrackerService(db, cfg.Tracker, gateway, adapters)
	if err != nil {
		logrus.Fatal("Failed to build tracker: ", err)
	}

	// Set Gin mode
	if cfg.Environment == "production" {
		gin.SetMode(gin.ReleaseMode)
	}

	// Initialize router
	r := router.Initialize(trackerService)

	// Create HTTP server
	srv := &http.Server{
		Addr:         fmt.Sprintf(":%s", cfg.Server.Port),
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.Server.ReadTimeout) * time.Second,
		WriteTimeout: time.Duration(cfg.Server.WriteTimeout) * time.Second,
		IdleTimeout:  time.Duration(cfg.Server.IdleTimeout) * time.Second,
	}

	// Start server in a goroutine
	go func() {
		logrus.Infof("Starting server on port %s", cfg.Server.Port)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logrus.Fatal("Failed to start server: ", err)
		}
	}()

	// Run ingestion cycles on the configured interval
	runCtx, stopCycles := context.WithCancel(context.Background())
	go runCycleLoop(runCtx, trackerService, cfg.Tracker.CheckIntervalMinutes)

	// Wait for interrupt signal to gracefully shutdown
	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	logrus.Info("Shutting down server...")

	stopCycles()

	// Create a deadline for shutdown
	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	// Shutdown server
	if err := srv.Shutdown(ctx); err != nil {
		logrus.Fatal("Server forced to shutdown: ", err)
	}

	logrus.Info("Server exited")
}

func runCycleLoop(ctx context.Context, tracker *services.TrackerService, intervalMinutes int) {
	ticker := time.NewTicker(time.Duration(intervalMinutes) * time.Minute)
	defer ticker.Stop()

	// Run immediately on start
	runCycle(ctx, tracker)

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			runCycle(ctx, tracker)
		}
	}
}

func runCycle(ctx context.Context, tracker *services.TrackerService) {
	if _, err := tracker.RunCycle(ctx); err != nil {
		if errors.Is(err, context.Canceled) {
			return
		}
		logrus.WithError(err).Error("ingestion cycle failed")
	}
}

// buildAdapters wires the configured listing sources. Real retail adapters are
// registered here; the demo source keeps development runs working offline.
func buildAdapters(cfg *config.Config) ([]scrape.Adapter, error) {
	adapters := []scrape.Adapter{}

	if cfg.Environment != "production" {
		adapters = append(adapters, scrape.NewDemoAdapter("demo", demoListings()))
	}

	// Example retail source, selector-driven. Add one SiteConfig per store.
	warehouse, err := scrape.NewSiteAdapter(scrape.SiteConfig{
		Name:                  "running_warehouse",
		AllowedDomains:        []string{"www.runningwarehouse.com"},
		SearchURLs:            []string{"https://www.runningwarehouse.com/catpage-SALEMR.html"},
		ProductSelector:       ".cattable-wrap-cell",
		NameSelector:          ".cattable-wrap-cell-info-name",
		PriceSelector:         ".cattable-wrap-cell-info-price-sale",
		OriginalPriceSelector: ".cattable-wrap-cell-info-price-list",
		LinkSelector:          "a",
		ImageSelector:         "img",
	})
	if err != nil {
		return nil, err
	}
	adapters = append(adapters, warehouse)

	return adapters, nil
}

func demoListings() []models.RawListing {
	return []models.RawListing{
		{
			NativeID:          "demo-cloudrunner-2",
			Name:              "Demo CloudRunner 2 Running Shoes",
			Brand:             "Demo",
			URL:               "https://example.com/cloudrunner-2",
			PriceText:         "$89.99",
			OriginalPriceText: "$129.99",
		},
		{
			NativeID:  "demo-trailblazer",
			Name:      "Demo TrailBlazer Trail Shoes",
			Brand:     "Demo",
			URL:       "https://example.com/trailblazer",
			PriceText: "$149.99",
		},
		{
			NativeID:  "demo-member-special",
			Name:      "Demo Marathon Elite",
			Brand:     "Demo",
			URL:       "https://example.com/marathon-elite",
			PriceText: "Sign in to see price",
		},
	}
}
