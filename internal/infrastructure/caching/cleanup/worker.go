// Package cleanup provides the background worker that sweeps expired cache
// entries.
package cleanup

import (
	"context"
	"io"
	"os"
	"time"

	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/caching/interfaces"
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/observability/logging"
)

const minSweepInterval = time.Second

// Worker handles background cache cleanup operations. It only ever deletes
// entries; it never computes.
type Worker struct {
	source interfaces.SweepSource
	config *Config
	logger *logging.ChanneledLogger
	out    io.Writer
}

// NewWorker creates a new cleanup worker with injected configuration
func NewWorker(source interfaces.SweepSource, config *Config, logger *logging.ChanneledLogger) *Worker {
	if config == nil {
		config = NewConfig()
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &Worker{
		source: source,
		config: config,
		logger: logger,
		out:    os.Stdout,
	}
}

// Start begins the cleanup worker routine, using the configured interval.
// It returns when ctx is cancelled.
func (w *Worker) Start(ctx context.Context) {
	interval := w.config.SweepInterval
	if interval < minSweepInterval {
		interval = minSweepInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	w.logger.Cache().Info("Cache cleanup worker started",
		"interval", interval, "verbose", w.config.VerboseReporting)

	for {
		select {
		case <-ctx.Done():
			w.logger.Cache().Info("Cache cleanup worker stopping")
			return
		case <-ticker.C:
			w.SweepOnce(ctx)
		}
	}
}

// SweepOnce purges expired entries from every store and returns the number
// removed.
func (w *Worker) SweepOnce(ctx context.Context) int {
	start := time.Now()
	reporter := NewReporter(w.out)
	sweepables := w.source.Sweepables()

	if w.config.VerboseReporting {
		reporter.LogStage("PERIODIC CACHE CLEANUP")
		reporter.WriteStoreReport(sweepables)
	}

	total := 0
	for _, s := range sweepables {
		select {
		case <-ctx.Done():
			return total
		default:
		}
		removed := s.PurgeExpired()
		if removed > 0 {
			w.logger.Cache().Debug("Expired entries purged", "store", s.Name(), "removed", removed)
		}
		total += removed
	}

	duration := time.Since(start)
	if total > 0 {
		w.logger.Cache().Info("Cache cleanup finished",
			"removed", total, "stores", len(sweepables), "duration", duration)
	} else if w.config.VerboseReporting {
		reporter.LogInfo("Cache cleanup completed - no expired items found (%v)", duration)
	}
	return total
}
