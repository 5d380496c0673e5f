// Package startup prepares the application server
package startup

import (
	"context"
	"fmt"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/AtRiskMedia/emotrack-go/internal/application/container"
	"github.com/AtRiskMedia/emotrack-go/internal/application/services"
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/caching/cleanup"
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/caching/manager"
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/emotrack-go/internal/presentation/http/server"
	"github.com/AtRiskMedia/emotrack-go/pkg/config"
)

const shutdownGrace = 30 * time.Second

// Initialize performs the complete startup sequence and blocks until a
// shutdown signal arrives.
func Initialize() error {
	setupLogging()

	start := time.Now().UTC()

	ctx, cancelBackgroundTasks := context.WithCancel(context.Background())
	defer cancelBackgroundTasks()

	log.Println("\033[32m" + `
  ┏━╸┏┳┓┏━┓╺┳╸┏━┓┏━┓┏━╸╻┏
  ┣╸ ┃┃┃┃ ┃ ┃ ┣┳┛┣━┫┃  ┣┻┓
  ┗━╸╹ ╹┗━┛ ╹ ╹┗╸╹ ╹┗━╸╹ ╹
` + "\033[0m")

	// Step 1: Logging and performance tracking
	logger, err := newLogger()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Close()
	perfTracker := performance.NewTracker(performance.DefaultTrackerConfig())
	perfTracker.OnAlert(func(alert performance.PerformanceAlert) {
		logger.Alert().Warn(alert.Message,
			"severity", alert.Severity,
			"operation", alert.Operation,
			"threshold", alert.Threshold,
			"actual", alert.Actual)
	})
	logger.Startup().Info("Channeled logger initialized", "level", config.LogLevel, "toFile", config.LogToFile)

	location, err := time.LoadLocation(config.AnalysisTimezone)
	if err != nil {
		return fmt.Errorf("invalid ANALYSIS_TIMEZONE %q: %w", config.AnalysisTimezone, err)
	}

	// Step 2: Record source
	logger.Startup().Info("Opening record source...", "source", config.RecordSource)
	recordSource, err := openRecordSource(config.RecordSource, location, logger)
	if err != nil {
		return err
	}
	defer recordSource.Close()
	logger.Startup().Info("Record source ready", "source", recordSource.Name, "ingest", recordSource.Store != nil)

	// Step 3: Cache system
	cacheManager := manager.NewManager(manager.Config{
		RecordCapacity: config.RecordCacheCapacity,
		RecordTTL:      config.RecordCacheTTL,
		ResultCapacity: config.ResultCacheCapacity,
		ResultTTL:      config.ResultCacheTTL,
	}, logger)
	logger.Startup().Info("Cache system initialized",
		"resultCapacity", config.ResultCacheCapacity, "resultTTL", config.ResultCacheTTL,
		"recordCapacity", config.RecordCacheCapacity, "recordTTL", config.RecordCacheTTL)

	// Step 4: Admin secret
	adminSecret, err := resolveAdminSecret(logger)
	if err != nil {
		return err
	}

	// Step 5: Live notification hub
	hub := messaging.NewNotificationHub(config.LiveHeartbeatInterval, config.LiveMaxClients, logger)
	go hub.Run(ctx)

	// Step 6: Dependency injection container
	deps := container.Dependencies{
		RecordSource:     recordSource.Source,
		RecordSourceName: recordSource.Name,
		CacheManager:     cacheManager,
		NotificationHub:  hub,
		LogBroadcaster:   logging.GetBroadcaster(),
		Reporter:         cleanup.NewReporter(os.Stdout),
		Analysis: services.AnalysisConfig{
			Location:       location,
			TrendThreshold: config.TrendThreshold,
		},
		AdminJWTSecret: adminSecret,
		AllowedOrigins: config.CORSAllowedOrigins,
	}
	if recordSource.Store != nil {
		deps.RecordStore = recordSource.Store
	}
	appContainer := container.NewContainer(deps, logger, perfTracker)
	logger.Startup().Info("Dependency injection container created")

	// Step 7: Cache warming
	if config.WarmOnStartup {
		logger.Startup().Info("Warming analysis cache in background", "ranges", services.DefaultWarmRanges)
		appContainer.WarmingService.WarmInBackground(ctx, "startup", services.DefaultWarmRanges)
	}

	// Step 8: Background cleanup worker
	cleanupWorker := cleanup.NewWorker(cacheManager, cleanup.NewConfig(), logger)
	go cleanupWorker.Start(ctx)
	go trimPerformanceData(ctx, perfTracker, config.CacheSweepInterval, logger)
	logger.Startup().Info("Background cleanup worker started", "interval", config.CacheSweepInterval)

	// Step 9: HTTP server, stopped by SIGINT or SIGTERM
	signalCtx, stopSignals := signal.NotifyContext(ctx, syscall.SIGINT, syscall.SIGTERM)
	defer stopSignals()

	httpServer := server.New(config.Port, appContainer)
	logger.Startup().Info("Application startup complete",
		"totalDuration", time.Since(start),
		"recordSource", recordSource.Name,
		"port", config.Port)

	if err := httpServer.Run(signalCtx, shutdownGrace); err != nil {
		logger.System().Error("HTTP server failed", "error", err.Error())
		return err
	}

	shutdownStart := time.Now()
	logger.Shutdown().Info("Shutdown signal received, stopping background tasks")
	cancelBackgroundTasks()

	logger.Shutdown().Info("Application shutdown complete",
		"totalUptime", time.Since(start),
		"shutdownDuration", time.Since(shutdownStart))

	return nil
}

// setupLogging configures application logging
func setupLogging() {
	if os.Getenv("GIN_MODE") == "release" {
		gin.SetMode(gin.ReleaseMode)
	}
	log.SetFlags(log.LstdFlags | log.Lshortfile)
}

func newLogger() (*logging.ChanneledLogger, error) {
	cfg := logging.DefaultLoggerConfig()
	cfg.OutputToFile = config.LogToFile
	cfg.LogDirectory = config.LogDirectory
	cfg.JSONFormat = config.LogJSONFormat

	level, err := logging.ParseLevel(config.LogLevel)
	if err != nil {
		log.Printf("Unknown LOG_LEVEL %q, using INFO", config.LogLevel)
	}
	cfg.DefaultLevel = level

	return logging.NewChanneledLogger(cfg)
}

// trimPerformanceData drops old markers and alerts on the sweep cadence.
func trimPerformanceData(ctx context.Context, tracker *performance.Tracker, interval time.Duration, logger *logging.ChanneledLogger) {
	if interval < time.Second {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if removed := tracker.Cleanup(); removed > 0 {
				logger.Perf().Debug("Performance data trimmed", "removed", removed)
			}
		}
	}
}
