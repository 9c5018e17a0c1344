// internal/handlers/product.go
package handlers

import (
	"errors"

	"github.com/gin-gonic/gin"
	"gorm.io/gorm"

	"github.com/runhunter/shoedeal-backend/internal/services"
	"github.com/runhunter/shoedeal-backend/internal/utils"
)

type ProductHandler struct {
	trackerService *services.TrackerService
}

func NewProductHandler(trackerService *services.TrackerService) *ProductHandler {
	return &ProductHandler{
		trackerService: trackerService,
	}
}

// GET /products/sales
func (h *ProductHandler) GetActiveSales(c *gin.Context) {
	params := utils.GetPaginationParams(c)
	if c.Query("sort") == "" {
		params.Sort = "discount_percentage"
	}

	result, err := h.trackerService.ActiveSales(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, result)
}

// GET /products/review
func (h *ProductHandler) GetManualReview(c *gin.Context) {
	params := utils.GetPaginationParams(c)

	result, err := h.trackerService.ListManualReview(params)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.PaginatedResponse(c, result)
}

type clearReviewRequest struct {
	Identity string `uri:"identity" validate:"required,min=3,contains=:"`
}

// POST /products/review/:identity/clear
func (h *ProductHandler) ClearManualReview(c *gin.Context) {
	req := clearReviewRequest{Identity: c.Param("identity")}
	if err := utils.ValidateStruct(&req); err != nil {
		utils.ValidationErrorResponse(c, utils.GetValidationErrors(err))
		return
	}

	if err := h.trackerService.ClearManualReview(req.Identity); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			utils.NotFoundResponse(c, "product")
			return
		}
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, gin.H{"identity": req.Identity, "requires_manual_review": false})
}

// GET /products/:identity/history
func (h *ProductHandler) GetPriceHistory(c *gin.Context) {
	identity := c.Param("identity")
	if identity == "" {
		utils.BadRequestResponse(c, "identity is required", nil)
		return
	}

	history, err := h.trackerService.PriceHistory(identity)
	if err != nil {
		utils.InternalErrorResponse(c, err.Error())
		return
	}

	utils.SuccessResponse(c, history)
}
