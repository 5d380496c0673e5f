package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/AtRiskMedia/emotrack-go/internal/domain/emotions"
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/caching/manager"
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/observability/performance"
)

// ErrRecordLoad is matched by every error returned from RecordLoader.Load.
var ErrRecordLoad = errors.New("record load failed")

// RecordSource supplies raw records for a resolved range. Timeout and retry
// policy belong to the implementation.
type RecordSource interface {
	FetchRecords(ctx context.Context, start, end time.Time) ([]emotions.EmotionRecord, error)
}

// RecordSourceFunc adapts a plain function to RecordSource.
type RecordSourceFunc func(ctx context.Context, start, end time.Time) ([]emotions.EmotionRecord, error)

func (f RecordSourceFunc) FetchRecords(ctx context.Context, start, end time.Time) ([]emotions.EmotionRecord, error) {
	return f(ctx, start, end)
}

// RecordStore accepts new records. Stores return the records as persisted,
// with generated ids filled in.
type RecordStore interface {
	StoreRecords(ctx context.Context, records []emotions.EmotionRecord) ([]emotions.EmotionRecord, error)
}

// LoadError reports a failed fetch for a range.
type LoadError struct {
	Range DateRange
	Err   error
}

func (e *LoadError) Error() string {
	return fmt.Sprintf("could not load emotion records for %s to %s: %v",
		e.Range.Start.Format(time.RFC3339), e.Range.End.Format(time.RFC3339), e.Err)
}

func (e *LoadError) Unwrap() error { return e.Err }

func (e *LoadError) Is(target error) bool { return target == ErrRecordLoad }

// RecordLoader fetches raw records and caches them by resolved bounds,
// separately from analysis results.
type RecordLoader struct {
	source      RecordSource
	cache       *manager.Manager
	logger      *logging.ChanneledLogger
	perfTracker *performance.Tracker
}

func NewRecordLoader(source RecordSource, cache *manager.Manager, logger *logging.ChanneledLogger, perfTracker *performance.Tracker) *RecordLoader {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	if perfTracker == nil {
		perfTracker = performance.NewTracker(nil)
	}
	return &RecordLoader{
		source:      source,
		cache:       cache,
		logger:      logger,
		perfTracker: perfTracker,
	}
}

// Load returns the raw records for r. Failures are returned as *LoadError
// and are never retried here.
func (l *RecordLoader) Load(ctx context.Context, r DateRange) ([]emotions.EmotionRecord, error) {
	return l.load(ctx, r, nil)
}

// load is Load with a write guard: fetched records are cached only while
// keep reports true. A nil keep always caches.
func (l *RecordLoader) load(ctx context.Context, r DateRange, keep func() bool) ([]emotions.EmotionRecord, error) {
	start := time.Now()
	key := manager.RecordKey(r.Start, r.End)
	marker := l.perfTracker.StartOperation("loader:fetch", key)
	defer l.perfTracker.CompleteOperation(marker)

	if records, found := l.cache.GetRecords(key); found {
		marker.AddCacheHit()
		l.logger.Loader().Debug("Record cache hit", "key", key, "records", len(records))
		return records, nil
	}
	marker.AddCacheMiss()

	// Fetch the whole window the key names; callers filter to r.
	from, to := manager.RecordWindow(r.Start, r.End)
	records, err := l.source.FetchRecords(ctx, from, to)
	if err != nil {
		marker.SetError(err)
		l.logger.Loader().Error("Record fetch failed", "key", key, "error", err, "duration", time.Since(start))
		return nil, &LoadError{Range: r, Err: err}
	}
	if records == nil {
		records = []emotions.EmotionRecord{}
	}

	if keep == nil || keep() {
		l.cache.SetRecords(key, records)
	} else {
		l.logger.Loader().Info("Discarding records fetched across an invalidation", "key", key)
	}
	marker.AddMetadata("records", len(records))
	l.logger.Loader().Info("Records fetched", "key", key, "records", len(records), "duration", time.Since(start))
	return records, nil
}
