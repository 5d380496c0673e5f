package handlers

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/emotrack-go/internal/application/services"
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/observability/performance"
)

// CacheHandlers exposes cache invalidation and inspection.
type CacheHandlers struct {
	analysis    *services.EmotionAnalysisService
	warming     *services.WarmingService
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

func NewCacheHandlers(analysis *services.EmotionAnalysisService, warming *services.WarmingService, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *CacheHandlers {
	return &CacheHandlers{analysis: analysis, warming: warming, logger: logger, perfTracker: perfTracker}
}

// HandleInvalidate handles DELETE /api/v1/emotions/cache?timeRange=
func (h *CacheHandlers) HandleInvalidate(c *gin.Context) {
	timeRange := c.Query("timeRange")
	removed := h.analysis.Invalidate(timeRange)
	h.logger.Cache().Info("Analysis cache invalidated", "timeRange", timeRange, "removed", removed)
	c.JSON(http.StatusOK, gin.H{"status": "ok", "timeRange": timeRange, "removed": removed})
}

// HandleClearAll handles DELETE /api/v1/emotions/cache/all
func (h *CacheHandlers) HandleClearAll(c *gin.Context) {
	h.analysis.ClearAll()
	h.logger.Cache().Info("All caches cleared")
	c.JSON(http.StatusOK, gin.H{"status": "ok"})
}

// HandleStats handles GET /api/v1/emotions/cache/stats
func (h *CacheHandlers) HandleStats(c *gin.Context) {
	body := gin.H{
		"caches":      h.analysis.CacheStats(),
		"performance": h.perfTracker.GetOverallStats(),
		"alerts":      h.perfTracker.GetAlerts(),
		"operations": []performance.OperationSummary{
			h.perfTracker.Summarize("analysis", time.Hour),
			h.perfTracker.Summarize("loader", time.Hour),
		},
		"warming": nil,
	}
	if h.warming != nil {
		if info, ok := h.warming.InProgress(); ok {
			body["warming"] = info
		}
	}
	c.JSON(http.StatusOK, body)
}
