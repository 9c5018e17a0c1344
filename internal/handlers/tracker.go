// internal/handlers/tracker.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/runhunter/shoedeal-backend/internal/services"
	"github.com/runhunter/shoedeal-backend/internal/utils"
)

type TrackerHandler struct {
	trackerService *services.TrackerService
}

func NewTrackerHandler(trackerService *services.TrackerService) *TrackerHandler {
	return &TrackerHandler{
		trackerService: trackerService,
	}
}

// POST /tracker/run
func (h *TrackerHandler) RunCycle(c *gin.Context) {
	summary, err := h.trackerService.RunCycle(c.Request.Context())
	if err != nil {
		if errors.Is(err, services.ErrCycleInProgress) {
			utils.ConflictResponse(c, "a cycle is already running")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, summary)
}

// GET /stats
func (h *TrackerHandler) GetStats(c *gin.Context) {
	stats, err := h.trackerService.Stats()
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, stats)
}
