// Package routes provides HTTP route configuration for the presentation layer.
package routes

import (
	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/emotrack-go/internal/application/container"
	"github.com/AtRiskMedia/emotrack-go/internal/presentation/http/handlers"
	"github.com/AtRiskMedia/emotrack-go/internal/presentation/http/middleware"
)

// SetupRoutes configures all HTTP routes and middleware with dependency injection.
func SetupRoutes(container *container.Container) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	r.Use(middleware.RequestLogger(container.Logger, container.PerfTracker))
	r.Use(middleware.CORSMiddleware(container.AllowedOrigins))

	// Initialize handlers
	emotionHandlers := handlers.NewEmotionHandlers(container.AnalysisService, container.WarmingService, container.RecordStore, container.Logger)
	cacheHandlers := handlers.NewCacheHandlers(container.AnalysisService, container.WarmingService, container.Logger, container.PerfTracker)
	liveHandlers := handlers.NewLiveHandlers(container.NotificationHub)
	logHandlers := handlers.NewLogHandlers(container.LogBroadcaster, container.Logger)
	healthHandlers := handlers.NewHealthHandlers(container)

	r.GET("/health", healthHandlers.HandleHealth)

	adminAuth := middleware.AdminAuth(container.AdminJWTSecret, container.Logger)

	emotionAPI := r.Group("/api/v1/emotions")
	{
		emotionAPI.GET("/analysis", emotionHandlers.HandleAnalysis)
		emotionAPI.GET("/analysis/:view", emotionHandlers.HandleAnalysisView)
		emotionAPI.GET("/cache/stats", cacheHandlers.HandleStats)
		emotionAPI.GET("/live", liveHandlers.HandleLive)

		// Mutating endpoints require an admin token
		admin := emotionAPI.Group("", adminAuth)
		{
			admin.POST("/records", emotionHandlers.HandleIngestRecords)
			admin.DELETE("/cache", cacheHandlers.HandleInvalidate)
			admin.DELETE("/cache/all", cacheHandlers.HandleClearAll)
		}
	}

	logAPI := r.Group("/api/v1/logs", adminAuth)
	{
		logAPI.GET("/stream", logHandlers.StreamLogs)
		logAPI.GET("/levels", logHandlers.GetLogLevels)
		logAPI.POST("/levels", logHandlers.SetLogLevel)
	}

	return r
}
