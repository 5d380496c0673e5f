// Package container provides dependency injection for all singleton services
package container

import (
	"github.com/AtRiskMedia/emotrack-go/internal/application/services"
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/caching"
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/caching/cleanup"
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/caching/manager"
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/messaging"
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/observability/performance"
)

// Dependencies are the infrastructure pieces built by startup before the
// container wires services on top of them.
type Dependencies struct {
	RecordSource     services.RecordSource
	RecordStore      services.RecordStore // nil when the source is read-only
	RecordSourceName string
	CacheManager     *manager.Manager
	NotificationHub  *messaging.NotificationHub
	LogBroadcaster   *logging.LogBroadcaster
	Reporter         *cleanup.Reporter
	Analysis         services.AnalysisConfig
	AdminJWTSecret   string
	AllowedOrigins   []string
}

// Container holds all singleton services and infrastructure dependencies
type Container struct {
	// Application services
	RecordLoader    *services.RecordLoader
	AnalysisService *services.EmotionAnalysisService
	WarmingService  *services.WarmingService

	// Infrastructure dependencies
	RecordStore      services.RecordStore
	RecordSourceName string
	CacheManager     *manager.Manager
	NotificationHub  *messaging.NotificationHub
	LogBroadcaster   *logging.LogBroadcaster
	AdminJWTSecret   string
	AllowedOrigins   []string

	// Observability
	Logger      *logging.ChanneledLogger
	PerfTracker *performance.Tracker
}

// NewContainer creates and wires all singleton services
func NewContainer(deps Dependencies, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *Container {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if perfTracker == nil {
		perfTracker = performance.NewTracker(nil)
	}

	var notifier services.AnalysisNotifier
	if deps.NotificationHub != nil {
		notifier = deps.NotificationHub
	}

	loader := services.NewRecordLoader(deps.RecordSource, deps.CacheManager, logger, perfTracker)
	analysis := services.NewEmotionAnalysisService(loader, deps.CacheManager, deps.Analysis, notifier, logger, perfTracker)
	warming := services.NewWarmingService(analysis, caching.NewWarmingLock(), logger, deps.Reporter)

	return &Container{
		RecordLoader:    loader,
		AnalysisService: analysis,
		WarmingService:  warming,

		RecordStore:      deps.RecordStore,
		RecordSourceName: deps.RecordSourceName,
		CacheManager:     deps.CacheManager,
		NotificationHub:  deps.NotificationHub,
		LogBroadcaster:   deps.LogBroadcaster,
		AdminJWTSecret:   deps.AdminJWTSecret,
		AllowedOrigins:   deps.AllowedOrigins,

		Logger:      logger,
		PerfTracker: perfTracker,
	}
}
