// internal/router/router.go
package router

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/runhunter/shoedeal-backend/internal/handlers"
	"github.com/runhunter/shoedeal-backend/internal/middleware"
	"github.com/runhunter/shoedeal-backend/internal/services"
)

func Initialize(trackerService *services.TrackerService) *gin.Engine {
	// Initialize handlers
	productHandler := handlers.NewProductHandler(trackerService)
	trackerHandler := handlers.NewTrackerHandler(trackerService)

	// Initialize Gin router
	r := gin.New()

	// Global middleware
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger())
	r.Use(middleware.CORS())
	r.Use(middleware.GeneralRateLimit())

	// Health check
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{
			"status":  "healthy",
			"version": "1.0.0",
		})
	})

	// API v1 routes
	v1 := r.Group("/v1")
	{
		products := v1.Group("/products")
		{
			products.GET("/sales", productHandler.GetActiveSales)
			products.GET("/review", productHandler.GetManualReview)
			products.POST("/review/:identity/clear", productHandler.ClearManualReview)
			products.GET("/:identity/history", productHandler.GetPriceHistory)
		}

		tracker := v1.Group("/tracker")
		{
			tracker.POST("/run", trackerHandler.RunCycle)
		}

		v1.GET("/stats", trackerHandler.GetStats)
	}

	return r
}
