package services

import (
	"context"
	"errors"
	"reflect"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/AtRiskMedia/emotrack-go/internal/domain/emotions"
	"github.com/AtRiskMedia/emotrack-go/internal/domain/entities/insights"
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/caching/manager"
)

type countingSource struct {
	calls   atomic.Int32
	records []emotions.EmotionRecord
	err     error
}

func (s *countingSource) FetchRecords(ctx context.Context, start, end time.Time) ([]emotions.EmotionRecord, error) {
	s.calls.Add(1)
	return s.records, s.err
}

type recordingNotifier struct {
	mu          sync.Mutex
	completed   []bool
	invalidated []string
}

func (n *recordingNotifier) AnalysisCompleted(result *insights.AnalysisResult, cached bool) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.completed = append(n.completed, cached)
}

func (n *recordingNotifier) CacheInvalidated(scope string, removed int) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.invalidated = append(n.invalidated, scope)
}

func newTestAnalysisService(source RecordSource, notifier AnalysisNotifier) (*EmotionAnalysisService, *manager.Manager) {
	cache := manager.NewManager(manager.Config{
		RecordCapacity: 10,
		RecordTTL:      time.Hour,
		ResultCapacity: 10,
		ResultTTL:      time.Hour,
	}, nil)
	loader := NewRecordLoader(source, cache, nil, nil)
	svc := NewEmotionAnalysisService(loader, cache, AnalysisConfig{
		Location: time.UTC,
		Now:      func() time.Time { return testNow },
	}, notifier, nil, nil)
	return svc, cache
}

func sampleRecords() []emotions.EmotionRecord {
	return []emotions.EmotionRecord{
		rec("2024-06-10T08:00:00Z", "Quiet day", det("calm", 60, "weekend")),
		rec("2024-06-12T08:00:00Z", "", det("joy", 90, "promotion"), det("anxiety", 40, "deadline")),
		rec("2024-06-14 21:30:00", "Late night", det("anxiety", 70, "deadline", "sleep")),
		rec("2024-04-01T08:00:00Z", "Outside the week", det("anger", 80)),
	}
}

func TestRunAnalysisEmptyInput(t *testing.T) {
	svc, _ := newTestAnalysisService(&countingSource{}, nil)

	result, err := svc.RunAnalysis(context.Background(), AnalysisQuery{TimeRange: "week"})
	if err != nil {
		t.Fatalf("empty input must not fail: %v", err)
	}
	if result.Statistics.TotalRecords != 0 {
		t.Fatalf("want totalRecords=0 got=%d", result.Statistics.TotalRecords)
	}
	if len(result.Aggregations) != 0 || len(result.Trend.Points) != 0 || len(result.Calendar) != 0 ||
		len(result.KnowledgeGraph.Nodes) != 0 || len(result.KnowledgeGraph.Edges) != 0 {
		t.Fatalf("want empty views got=%+v", result)
	}
	if len(result.Suggestions) != 1 {
		t.Fatalf("want a single suggestion got=%v", result.Suggestions)
	}
}

func TestRunAnalysisSkipsMalformedRecords(t *testing.T) {
	records := append(sampleRecords(),
		rec("not a timestamp", "", det("joy", 99)),
		rec("2024-06-13T08:00:00Z", "", det("joy", 50)),
	)
	svc, _ := newTestAnalysisService(&countingSource{records: records}, nil)

	result, err := svc.RunAnalysis(context.Background(), AnalysisQuery{TimeRange: "week"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if result.SkippedRecords != 1 {
		t.Fatalf("want 1 skipped record got=%d", result.SkippedRecords)
	}
	if result.Statistics.TotalRecords != 4 {
		t.Fatalf("want the 4 valid in-range records got=%d", result.Statistics.TotalRecords)
	}

	var joy *insights.EmotionAggregation
	for i := range result.Aggregations {
		if result.Aggregations[i].Emotion == "joy" {
			joy = &result.Aggregations[i]
		}
	}
	if joy == nil || joy.Count != 2 {
		t.Fatalf("want joy counted twice from valid records, got %+v", joy)
	}
}

func TestRunAnalysisViewsAreConsistent(t *testing.T) {
	svc, _ := newTestAnalysisService(&countingSource{records: sampleRecords()}, nil)
	result, err := svc.RunAnalysis(context.Background(), AnalysisQuery{TimeRange: "week"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}

	var countSum, daySum int
	var pctSum float64
	for _, a := range result.Aggregations {
		countSum += a.Count
		pctSum += a.Percentage
	}
	for _, p := range result.Trend.Points {
		daySum += len(p.Emotions)
	}
	if countSum != result.Statistics.TotalEmotions || daySum != countSum {
		t.Fatalf("views disagree: aggregations=%d days=%d stats=%d", countSum, daySum, result.Statistics.TotalEmotions)
	}
	if !approx(pctSum, 100) {
		t.Fatalf("want Σpercentage=100 got=%v", pctSum)
	}
	for i, cell := range result.Calendar {
		if cell.RecordCount != result.Trend.Points[i].RecordCount {
			t.Fatalf("calendar and trend disagree on %s", cell.Date)
		}
	}
	if s := result.Statistics; s.MoodStability < 0 || s.MoodStability > 1 || s.PositivityRatio < 0 || s.PositivityRatio > 1 {
		t.Fatalf("indices out of range %+v", s)
	}
	if result.ID == "" || result.TimeRange != insights.TimeRangeWeek {
		t.Fatalf("want id and time range echoed, got id=%q range=%q", result.ID, result.TimeRange)
	}
}

func TestRunAnalysisCachesResults(t *testing.T) {
	source := &countingSource{records: sampleRecords()}
	notifier := &recordingNotifier{}
	svc, _ := newTestAnalysisService(source, notifier)
	ctx := context.Background()

	first, err := svc.RunAnalysis(ctx, AnalysisQuery{TimeRange: "week"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	second, _ := svc.RunAnalysis(ctx, AnalysisQuery{TimeRange: "week"})
	if first != second {
		t.Fatalf("want the cached result on the second call")
	}
	if calls := source.calls.Load(); calls != 1 {
		t.Fatalf("want 1 fetch got=%d", calls)
	}
	if !reflect.DeepEqual(notifier.completed, []bool{false, true}) {
		t.Fatalf("unexpected notifications %v", notifier.completed)
	}
}

func TestRunAnalysisDoesNotMutatePreviousResults(t *testing.T) {
	svc, _ := newTestAnalysisService(&countingSource{records: sampleRecords()}, nil)
	ctx := context.Background()

	week, _ := svc.RunAnalysis(ctx, AnalysisQuery{TimeRange: "week"})
	snapshot := *week
	aggs := append([]insights.EmotionAggregation(nil), week.Aggregations...)

	month, err := svc.RunAnalysis(ctx, AnalysisQuery{TimeRange: "month"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if month == week {
		t.Fatalf("different ranges must produce different results")
	}
	if !reflect.DeepEqual(snapshot, *week) || !reflect.DeepEqual(aggs, week.Aggregations) {
		t.Fatalf("week result changed after a month query")
	}
}

func TestRunAnalysisLoadError(t *testing.T) {
	cause := errors.New("connection refused")
	svc, cache := newTestAnalysisService(&countingSource{err: cause}, nil)

	_, err := svc.RunAnalysis(context.Background(), AnalysisQuery{TimeRange: "week"})
	if err == nil {
		t.Fatalf("want load error")
	}
	if !IsLoadError(err) || !errors.Is(err, cause) {
		t.Fatalf("want a load error wrapping the cause got=%v", err)
	}
	var loadErr *LoadError
	if !errors.As(err, &loadErr) {
		t.Fatalf("want *LoadError got=%T", err)
	}
	if len(cache.ResultKeys()) != 0 {
		t.Fatalf("failed analyses must not be cached")
	}
}

func TestRunAnalysisInvalidQuery(t *testing.T) {
	source := &countingSource{}
	svc, _ := newTestAnalysisService(source, nil)

	_, err := svc.RunAnalysis(context.Background(), AnalysisQuery{TimeRange: "week", EndDate: "31/12/2024"})
	if !errors.Is(err, ErrInvalidQuery) || IsLoadError(err) {
		t.Fatalf("want ErrInvalidQuery got=%v", err)
	}
	if source.calls.Load() != 0 {
		t.Fatalf("invalid queries must not reach the source")
	}
}

func TestRunAnalysisSharesInFlightWork(t *testing.T) {
	release := make(chan struct{})
	var calls atomic.Int32
	source := RecordSourceFunc(func(ctx context.Context, start, end time.Time) ([]emotions.EmotionRecord, error) {
		calls.Add(1)
		<-release
		return sampleRecords(), nil
	})
	svc, _ := newTestAnalysisService(source, nil)

	const callers = 8
	results := make([]*insights.AnalysisResult, callers)
	var wg sync.WaitGroup
	for i := 0; i < callers; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			results[i], _ = svc.RunAnalysis(context.Background(), AnalysisQuery{TimeRange: "month"})
		}(i)
	}
	time.Sleep(50 * time.Millisecond)
	close(release)
	wg.Wait()

	if got := calls.Load(); got != 1 {
		t.Fatalf("want one fetch for concurrent callers got=%d", got)
	}
	for i, r := range results {
		if r == nil || r != results[0] {
			t.Fatalf("caller %d got a different result", i)
		}
	}
}

func TestRunAnalysisDiscardsResultAfterInvalidation(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	source := RecordSourceFunc(func(ctx context.Context, start, end time.Time) ([]emotions.EmotionRecord, error) {
		close(entered)
		<-release
		return sampleRecords(), nil
	})
	svc, cache := newTestAnalysisService(source, nil)

	done := make(chan *insights.AnalysisResult)
	go func() {
		result, _ := svc.RunAnalysis(context.Background(), AnalysisQuery{TimeRange: "week"})
		done <- result
	}()

	<-entered
	svc.Invalidate("")
	close(release)

	if result := <-done; result == nil {
		t.Fatalf("the caller should still receive its result")
	}
	if keys := cache.ResultKeys(); len(keys) != 0 {
		t.Fatalf("stale result must not be cached, got keys %v", keys)
	}
}

func TestRunAnalysisAfterRecordsChangedDoesNotJoinOldFlight(t *testing.T) {
	entered := make(chan struct{})
	release := make(chan struct{})
	var calls atomic.Int32
	source := RecordSourceFunc(func(ctx context.Context, start, end time.Time) ([]emotions.EmotionRecord, error) {
		if calls.Add(1) == 1 {
			close(entered)
			<-release
			return []emotions.EmotionRecord{rec("2024-06-14T08:00:00Z", "", det("joy", 0.5))}, nil
		}
		return []emotions.EmotionRecord{
			rec("2024-06-14T08:00:00Z", "", det("joy", 0.5)),
			rec("2024-06-14T09:00:00Z", "", det("anger", 0.7)),
		}, nil
	})
	svc, cache := newTestAnalysisService(source, nil)

	stale := make(chan *insights.AnalysisResult)
	go func() {
		result, _ := svc.RunAnalysis(context.Background(), AnalysisQuery{TimeRange: "week"})
		stale <- result
	}()
	<-entered
	svc.RecordsChanged()

	fresh, err := svc.RunAnalysis(context.Background(), AnalysisQuery{TimeRange: "week"})
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if fresh.Statistics.TotalRecords != 2 {
		t.Fatalf("want=2 got=%d", fresh.Statistics.TotalRecords)
	}

	close(release)
	if old := <-stale; old == nil || old.Statistics.TotalRecords != 1 {
		t.Fatalf("the first caller should keep its own result, got %+v", old)
	}

	cached, ok := cache.GetResult(manager.ResultKey("week", "", ""))
	if !ok || cached != fresh {
		t.Fatalf("want the post-change result cached")
	}

	// The old flight must not have left its records behind either.
	svc.Invalidate("")
	again, err := svc.RunAnalysis(context.Background(), AnalysisQuery{TimeRange: "week"})
	if err != nil || again.Statistics.TotalRecords != 2 {
		t.Fatalf("want=2 records after result invalidation got=%v err=%v", again, err)
	}
	if got := calls.Load(); got != 2 {
		t.Fatalf("want=2 fetches got=%d", got)
	}
}

func TestInvalidateAndClearAll(t *testing.T) {
	source := &countingSource{records: sampleRecords()}
	notifier := &recordingNotifier{}
	svc, cache := newTestAnalysisService(source, notifier)
	ctx := context.Background()

	week, _ := svc.RunAnalysis(ctx, AnalysisQuery{TimeRange: "week"})
	svc.RunAnalysis(ctx, AnalysisQuery{TimeRange: "month"})

	if removed := svc.Invalidate("Week"); removed != 1 {
		t.Fatalf("want 1 result removed got=%d", removed)
	}
	if keys := cache.ResultKeys(); len(keys) != 1 || keys[0] != manager.ResultKey("month", "", "") {
		t.Fatalf("want only the month result left got=%v", keys)
	}

	again, _ := svc.RunAnalysis(ctx, AnalysisQuery{TimeRange: "week"})
	if again == week {
		t.Fatalf("want a recomputed result after invalidation")
	}
	// Records are still cached, so no new fetch was needed.
	if calls := source.calls.Load(); calls != 2 {
		t.Fatalf("want 2 fetches (week and month) got=%d", calls)
	}

	svc.ClearAll()
	for _, stats := range svc.CacheStats() {
		if stats.Size != 0 {
			t.Fatalf("want empty caches after ClearAll got %+v", stats)
		}
	}
	svc.RunAnalysis(ctx, AnalysisQuery{TimeRange: "week"})
	if calls := source.calls.Load(); calls != 3 {
		t.Fatalf("want a fresh fetch after ClearAll got=%d", calls)
	}
	if !reflect.DeepEqual(notifier.invalidated, []string{"week", "all"}) {
		t.Fatalf("unexpected invalidation notifications %v", notifier.invalidated)
	}
}
