// Package handlers provides HTTP handlers for emotion analysis endpoints
package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/emotrack-go/internal/application/services"
	"github.com/AtRiskMedia/emotrack-go/internal/domain/emotions"
	"github.com/AtRiskMedia/emotrack-go/internal/domain/entities/insights"
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/observability/logging"
)

// EmotionHandlers serves analysis results and record ingest.
type EmotionHandlers struct {
	analysis *services.EmotionAnalysisService
	warming  *services.WarmingService
	store    services.RecordStore
	logger   *logging.ChanneledLogger
}

// NewEmotionHandlers creates emotion handlers with injected dependencies.
// store may be nil, in which case ingest is refused.
func NewEmotionHandlers(analysis *services.EmotionAnalysisService, warming *services.WarmingService, store services.RecordStore, logger *logging.ChanneledLogger) *EmotionHandlers {
	return &EmotionHandlers{
		analysis: analysis,
		warming:  warming,
		store:    store,
		logger:   logger,
	}
}

// HandleAnalysis handles GET /api/v1/emotions/analysis
func (h *EmotionHandlers) HandleAnalysis(c *gin.Context) {
	result, ok := h.runAnalysis(c)
	if !ok {
		return
	}
	c.JSON(http.StatusOK, result)
}

// HandleAnalysisView handles GET /api/v1/emotions/analysis/:view
func (h *EmotionHandlers) HandleAnalysisView(c *gin.Context) {
	view := c.Param("view")
	if !validView(view) {
		c.JSON(http.StatusNotFound, gin.H{"error": "unknown analysis view: " + view})
		return
	}

	result, ok := h.runAnalysis(c)
	if !ok {
		return
	}

	payload := gin.H{
		"id":        result.ID,
		"timeRange": result.TimeRange,
		"startDate": result.StartDate,
		"endDate":   result.EndDate,
	}
	switch view {
	case "aggregations":
		payload["aggregations"] = result.Aggregations
	case "trend":
		payload["trend"] = result.Trend
	case "calendar":
		payload["calendar"] = result.Calendar
	case "graph":
		payload["knowledgeGraph"] = result.KnowledgeGraph
	case "statistics":
		payload["statistics"] = result.Statistics
	case "suggestions":
		payload["suggestions"] = result.Suggestions
	}
	c.JSON(http.StatusOK, payload)
}

func validView(view string) bool {
	switch view {
	case "aggregations", "trend", "calendar", "graph", "statistics", "suggestions":
		return true
	}
	return false
}

func (h *EmotionHandlers) runAnalysis(c *gin.Context) (*insights.AnalysisResult, bool) {
	start := time.Now()
	var query services.AnalysisQuery
	if err := c.ShouldBindQuery(&query); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid query parameters", "details": err.Error()})
		return nil, false
	}

	result, err := h.analysis.RunAnalysis(c.Request.Context(), query)
	if err != nil {
		status := analysisErrorStatus(err)
		h.logger.Analytics().Warn("Analysis request failed", "timeRange", query.TimeRange, "status", status, "error", err)
		c.JSON(status, gin.H{"error": services.DescribeError(err)})
		return nil, false
	}

	h.logger.Analytics().Debug("Analysis request completed", "timeRange", result.TimeRange, "resultId", result.ID, "duration", time.Since(start))
	return result, true
}

func analysisErrorStatus(err error) int {
	switch {
	case errors.Is(err, services.ErrInvalidQuery):
		return http.StatusBadRequest
	case services.IsLoadError(err):
		return http.StatusBadGateway
	case errors.Is(err, context.DeadlineExceeded):
		return http.StatusGatewayTimeout
	case errors.Is(err, context.Canceled):
		return 499 // client closed request
	default:
		return http.StatusInternalServerError
	}
}

// HandleIngestRecords handles POST /api/v1/emotions/records
func (h *EmotionHandlers) HandleIngestRecords(c *gin.Context) {
	if h.store == nil {
		c.JSON(http.StatusNotImplemented, gin.H{"error": "configured record source does not accept new records"})
		return
	}

	var req struct {
		Records []emotions.EmotionRecord `json:"records" binding:"required"`
	}
	if err := c.ShouldBindJSON(&req); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid request body", "details": err.Error()})
		return
	}
	if len(req.Records) == 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "records must not be empty"})
		return
	}

	stored, err := h.store.StoreRecords(c.Request.Context(), req.Records)
	if err != nil {
		status := http.StatusInternalServerError
		if errors.Is(err, emotions.ErrInvalidTimestamp) {
			status = http.StatusBadRequest
		}
		h.logger.Loader().Error("Record ingest failed", "count", len(req.Records), "error", err)
		c.JSON(status, gin.H{"error": err.Error()})
		return
	}

	h.analysis.RecordsChanged()
	if h.warming != nil {
		h.warming.WarmInBackground(context.Background(), "ingest", services.DefaultWarmRanges)
	}

	ids := make([]string, 0, len(stored))
	for _, record := range stored {
		ids = append(ids, record.ID)
	}
	h.logger.Loader().Info("Records ingested", "count", len(stored))
	c.JSON(http.StatusCreated, gin.H{"stored": len(stored), "ids": ids})
}
