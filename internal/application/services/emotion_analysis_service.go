package services

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/AtRiskMedia/emotrack-go/internal/domain/emotions"
	"github.com/AtRiskMedia/emotrack-go/internal/domain/entities/insights"
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/caching/manager"
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/caching/types"
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/observability/performance"
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/security"
)

// AnalysisNotifier is told about finished analyses and cache invalidations.
type AnalysisNotifier interface {
	AnalysisCompleted(result *insights.AnalysisResult, cached bool)
	CacheInvalidated(scope string, removed int)
}

type noopNotifier struct{}

func (noopNotifier) AnalysisCompleted(*insights.AnalysisResult, bool) {}
func (noopNotifier) CacheInvalidated(string, int)                     {}

// AnalysisConfig holds the tunables of the pipeline.
type AnalysisConfig struct {
	Location       *time.Location
	TrendThreshold float64
	Now            func() time.Time
}

// EmotionAnalysisService composes the pipeline stages behind the result
// cache.
type EmotionAnalysisService struct {
	loader      *RecordLoader
	cache       *manager.Manager
	trend       *TrendAnalyzer
	location    *time.Location
	now         func() time.Time
	notifier    AnalysisNotifier
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker

	inflight   singleflight.Group
	generation atomic.Uint64
}

func NewEmotionAnalysisService(loader *RecordLoader, cache *manager.Manager, config AnalysisConfig, notifier AnalysisNotifier, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *EmotionAnalysisService {
	if config.Location == nil {
		config.Location = time.UTC
	}
	if config.Now == nil {
		config.Now = time.Now
	}
	if notifier == nil {
		notifier = noopNotifier{}
	}
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if perfTracker == nil {
		perfTracker = performance.NewTracker(nil)
	}
	return &EmotionAnalysisService{
		loader:      loader,
		cache:       cache,
		trend:       NewTrendAnalyzer(config.Location, config.TrendThreshold),
		location:    config.Location,
		now:         config.Now,
		notifier:    notifier,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// RunAnalysis returns the cached result for q or computes it. Concurrent
// calls for the same query share one computation. The returned result is
// shared and must not be modified.
func (s *EmotionAnalysisService) RunAnalysis(ctx context.Context, q AnalysisQuery) (*insights.AnalysisResult, error) {
	key := manager.ResultKey(q.CacheKeyRange(), strings.TrimSpace(q.StartDate), strings.TrimSpace(q.EndDate))

	if result, found := s.cache.GetResult(key); found {
		s.logger.Analytics().Debug("Analysis cache hit", "key", key, "resultId", result.ID)
		s.notifier.AnalysisCompleted(result, true)
		return result, nil
	}

	// Callers arriving after an invalidation start a fresh flight instead of
	// joining one that may have read the old records.
	generation := s.generation.Load()
	flightKey := fmt.Sprintf("%s#%d", key, generation)
	ch := s.inflight.DoChan(flightKey, func() (any, error) {
		// Shared by every waiter, so one caller going away must not cancel it.
		return s.compute(context.WithoutCancel(ctx), key, q, generation)
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		if res.Shared {
			s.logger.Analytics().Debug("Joined in-flight analysis", "key", key)
		}
		return res.Val.(*insights.AnalysisResult), nil
	}
}

func (s *EmotionAnalysisService) compute(ctx context.Context, key string, q AnalysisQuery, generation uint64) (*insights.AnalysisResult, error) {
	start := time.Now()
	marker := s.perfTracker.StartOperation("analysis:run", key)
	defer s.perfTracker.CompleteOperation(marker)

	if result, found := s.cache.GetResult(key); found {
		marker.AddCacheHit()
		return result, nil
	}
	marker.AddCacheMiss()

	current := func() bool { return s.generation.Load() == generation }
	now := s.now()
	dateRange, err := q.Resolve(now, s.location)
	if err != nil {
		marker.SetError(err)
		return nil, err
	}

	records, err := s.loader.load(ctx, dateRange, current)
	if err != nil {
		marker.SetError(err)
		s.logger.Analytics().Error("Analysis aborted, record load failed", "key", key, "error", err)
		return nil, err
	}

	result := s.analyze(records, dateRange, insights.TimeRange(q.CacheKeyRange()), now)

	if current() {
		s.cache.SetResult(key, result)
	} else {
		s.logger.Analytics().Info("Discarding analysis computed across an invalidation", "key", key, "resultId", result.ID)
	}

	marker.AddMetadata("records", result.Statistics.TotalRecords)
	s.logger.Analytics().Info("Analysis computed",
		"key", key,
		"resultId", result.ID,
		"records", result.Statistics.TotalRecords,
		"skipped", result.SkippedRecords,
		"emotions", len(result.Aggregations),
		"duration", time.Since(start))
	s.notifier.AnalysisCompleted(result, false)
	return result, nil
}

// analyze runs every stage over one prepared snapshot so the views agree with
// each other.
func (s *EmotionAnalysisService) analyze(records []emotions.EmotionRecord, r DateRange, timeRange insights.TimeRange, now time.Time) *insights.AnalysisResult {
	samples, skipped := emotions.Prepare(records, r.Start, r.End)
	for _, skip := range skipped {
		s.logger.Analytics().Warn("Skipping malformed emotion record",
			"index", skip.Index, "recordId", skip.RecordID, "error", skip.Err)
	}

	aggregations := AggregateEmotions(samples, r)
	trend := s.trend.Analyze(samples, r)
	calendar := ProjectCalendar(trend.Points)
	graph := BuildKnowledgeGraph(samples)
	stats := BuildStatistics(len(samples), aggregations, trend)

	return &insights.AnalysisResult{
		ID:             security.GenerateULID(),
		TimeRange:      timeRange,
		StartDate:      r.Start,
		EndDate:        r.End,
		GeneratedAt:    now,
		Aggregations:   aggregations,
		Trend:          trend,
		Calendar:       calendar,
		KnowledgeGraph: graph,
		Statistics:     stats,
		Suggestions:    GenerateSuggestions(stats),
		SkippedRecords: len(skipped),
	}
}

// Invalidate drops cached results for timeRange, or all results when
// timeRange is empty. Computations already running will not write back.
func (s *EmotionAnalysisService) Invalidate(timeRange string) int {
	s.generation.Add(1)
	scope := strings.ToLower(strings.TrimSpace(timeRange))
	removed := s.cache.InvalidateResults(scope)
	if scope == "" {
		scope = "results"
	}
	s.notifier.CacheInvalidated(scope, removed)
	return removed
}

// ClearAll drops both the record and result caches.
func (s *EmotionAnalysisService) ClearAll() {
	s.generation.Add(1)
	s.cache.ClearAll()
	s.notifier.CacheInvalidated("all", 0)
}

// RecordsChanged clears every cache entry that may hold the old records.
func (s *EmotionAnalysisService) RecordsChanged() {
	s.generation.Add(1)
	s.cache.InvalidateRecords()
	removed := s.cache.InvalidateResults("")
	s.notifier.CacheInvalidated("records", removed)
}

func (s *EmotionAnalysisService) CacheStats() []types.CacheStats {
	return s.cache.Stats()
}

// IsLoadError reports whether err came from the record source rather than the
// query.
func IsLoadError(err error) bool {
	return errors.Is(err, ErrRecordLoad)
}

// DescribeError returns the human-readable message for an analysis failure.
func DescribeError(err error) string {
	var loadErr *LoadError
	switch {
	case errors.As(err, &loadErr):
		return fmt.Sprintf("could not reach the emotion record source: %v", loadErr.Err)
	case errors.Is(err, ErrInvalidQuery):
		return err.Error()
	default:
		return "analysis failed: " + err.Error()
	}
}
