// internal/handlers/analytics.go
package handlers

import (
	"github.com/gin-gonic/gin"

	"github.com/MadeByJay/ai-product-search/internal/services"
	"github.com/MadeByJay/ai-product-search/internal/utils"
)

type AnalyticsHandler struct {
	analytics Analytics
}

func NewAnalyticsHandler(analytics Analytics) *AnalyticsHandler {
	return &AnalyticsHandler{analytics: analytics}
}

// GET /analytics/summary
func (h *AnalyticsHandler) Summary(c *gin.Context) {
	summary, err := h.analytics.Summary(c.Request.Context())
	if err != nil {
		_ = c.Error(err)
		utils.InternalErrorResponse(c, "")
		return
	}
	utils.SuccessResponse(c, summary)
}

// GET /analytics/top-queries?limit=
func (h *AnalyticsHandler) TopQueries(c *gin.Context) {
	limit := utils.GetIntParam(c, "limit", services.DefaultTopQueriesLimit)

	items, err := h.analytics.TopQueries(c.Request.Context(), limit)
	if err != nil {
		_ = c.Error(err)
		utils.InternalErrorResponse(c, "")
		return
	}
	utils.SuccessResponse(c, gin.H{"items": items})
}

// GET /analytics/daily?days=
func (h *AnalyticsHandler) Daily(c *gin.Context) {
	days := utils.GetIntParam(c, "days", services.DefaultDailyDays)

	items, err := h.analytics.Daily(c.Request.Context(), days)
	if err != nil {
		_ = c.Error(err)
		utils.InternalErrorResponse(c, "")
		return
	}
	utils.SuccessResponse(c, gin.H{"items": items})
}
