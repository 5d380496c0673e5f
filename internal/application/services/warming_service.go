// Package services provides the emotion analysis pipeline and its supporting
// application services.
package services

import (
	"context"
	"fmt"
	"time"

	"github.com/AtRiskMedia/emotrack-go/internal/domain/entities/insights"
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/caching"
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/caching/cleanup"
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/observability/logging"
)

const warmingLockKey = "analysis-warming"

// DefaultWarmRanges are the symbolic ranges precomputed on startup and after
// ingest.
var DefaultWarmRanges = []insights.TimeRange{
	insights.TimeRangeWeek,
	insights.TimeRangeMonth,
}

// WarmingService precomputes analysis results for symbolic ranges so the
// first request after startup or ingest is served from cache.
type WarmingService struct {
	analysis *EmotionAnalysisService
	lock     *caching.WarmingLock
	logger   *logging.ChanneledLogger
	reporter *cleanup.Reporter
}

func NewWarmingService(analysis *EmotionAnalysisService, lock *caching.WarmingLock, logger *logging.ChanneledLogger, reporter *cleanup.Reporter) *WarmingService {
	if lock == nil {
		lock = caching.NewWarmingLock()
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &WarmingService{
		analysis: analysis,
		lock:     lock,
		logger:   logger,
		reporter: reporter,
	}
}

// WarmRanges runs an analysis for every range on behalf of trigger. It
// returns false without doing anything when another warming pass holds the
// lock.
func (ws *WarmingService) WarmRanges(ctx context.Context, trigger string, ranges []insights.TimeRange) (bool, error) {
	if !ws.lock.TryLock(warmingLockKey, trigger) {
		if info, ok := ws.lock.Holder(warmingLockKey); ok {
			ws.logger.Cache().Debug("Warming already in progress, skipping",
				"trigger", trigger, "holder", info.Holder, "since", info.Since)
		}
		return false, nil
	}
	defer ws.lock.Unlock(warmingLockKey)

	start := time.Now()
	if ws.reporter != nil {
		ws.reporter.LogHeader(fmt.Sprintf("Warming analysis cache for %d ranges", len(ranges)))
	}

	var failed int
	for _, r := range ranges {
		if err := ctx.Err(); err != nil {
			return true, err
		}
		result, err := ws.analysis.RunAnalysis(ctx, AnalysisQuery{TimeRange: string(r)})
		if err != nil {
			failed++
			ws.logger.Cache().Warn("Range warming failed", "timeRange", r, "error", err)
			if ws.reporter != nil {
				ws.reporter.LogError(fmt.Sprintf("Failed to warm %s", r), err)
			}
			continue
		}
		if ws.reporter != nil {
			ws.reporter.LogStage("%s: %d records, %d emotions", r, result.Statistics.TotalRecords, len(result.Aggregations))
		}
	}

	ws.logger.Cache().Info("Analysis cache warmed",
		"trigger", trigger, "ranges", len(ranges), "failed", failed, "duration", time.Since(start))
	if ws.reporter != nil {
		if failed > 0 {
			ws.reporter.LogWarning("%d/%d ranges warmed in %v", len(ranges)-failed, len(ranges), time.Since(start))
		} else {
			ws.reporter.LogSuccess("%d/%d ranges warmed in %v", len(ranges), len(ranges), time.Since(start))
		}
	}

	if failed > 0 {
		return true, fmt.Errorf("warming failed for %d of %d ranges", failed, len(ranges))
	}
	return true, nil
}

// WarmInBackground starts WarmRanges on its own goroutine.
func (ws *WarmingService) WarmInBackground(ctx context.Context, trigger string, ranges []insights.TimeRange) {
	go func() {
		if _, err := ws.WarmRanges(ctx, trigger, ranges); err != nil {
			ws.logger.Cache().Warn("Background warming finished with errors", "trigger", trigger, "error", err)
		}
	}()
}

// InProgress reports the running warming pass, if any.
func (ws *WarmingService) InProgress() (caching.LockInfo, bool) {
	return ws.lock.Holder(warmingLockKey)
}
