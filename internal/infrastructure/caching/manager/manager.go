// Package manager owns the raw-record and analysis-result caches and derives
// their keys from query parameters.
package manager

import (
	"strings"
	"time"

	"github.com/AtRiskMedia/emotrack-go/internal/domain/emotions"
	"github.com/AtRiskMedia/emotrack-go/internal/domain/entities/insights"
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/caching/interfaces"
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/caching/stores"
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/caching/types"
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/observability/logging"
)

const (
	RecordStoreName = "records"
	ResultStoreName = "results"

	resultKeyPrefix = "analysis:"
	recordKeyPrefix = "records:"
	recordKeyLayout = "2006-01-02T15:04"
)

var _ interfaces.SweepSource = (*Manager)(nil)

// Config sizes the two caches.
type Config struct {
	RecordCapacity int
	RecordTTL      time.Duration
	ResultCapacity int
	ResultTTL      time.Duration
	Now            func() time.Time
}

// Manager provides the cache operations used by the analysis pipeline.
type Manager struct {
	records *stores.MemoryStore[[]emotions.EmotionRecord]
	results *stores.MemoryStore[*insights.AnalysisResult]
	logger  *logging.ChanneledLogger
}

func NewManager(config Config, logger *logging.ChanneledLogger) *Manager {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	logger.Cache().Info("Initializing cache manager",
		"stores", []string{RecordStoreName, ResultStoreName},
		"recordTTL", config.RecordTTL,
		"resultTTL", config.ResultTTL)

	return &Manager{
		records: stores.NewMemoryStore[[]emotions.EmotionRecord](types.StoreConfig{
			Name:     RecordStoreName,
			Capacity: config.RecordCapacity,
			TTL:      config.RecordTTL,
			Now:      config.Now,
		}, logger),
		results: stores.NewMemoryStore[*insights.AnalysisResult](types.StoreConfig{
			Name:     ResultStoreName,
			Capacity: config.ResultCapacity,
			TTL:      config.ResultTTL,
			Now:      config.Now,
		}, logger),
		logger: logger,
	}
}

// RecordWindow widens resolved bounds to whole minutes: start rounds down and
// end extends to the last instant of its minute. Records cached under
// RecordKey must be fetched for exactly this window.
func RecordWindow(start, end time.Time) (time.Time, time.Time) {
	return start.UTC().Truncate(time.Minute), end.UTC().Truncate(time.Minute).Add(time.Minute - time.Nanosecond)
}

// RecordKey names the RecordWindow of the bounds, so repeated symbolic
// queries within the same minute share a fetch.
func RecordKey(start, end time.Time) string {
	from, to := RecordWindow(start, end)
	return recordKeyPrefix + from.Format(recordKeyLayout) + ":" + to.Format(recordKeyLayout)
}

// ResultKey derives the result cache key from the raw query parameters.
func ResultKey(timeRange, startDate, endDate string) string {
	return resultKeyPrefix + timeRange + ":" + startDate + ":" + endDate
}

// =============================================================================
// Raw records
// =============================================================================

func (m *Manager) GetRecords(key string) ([]emotions.EmotionRecord, bool) {
	return m.records.Get(key)
}

func (m *Manager) SetRecords(key string, records []emotions.EmotionRecord) {
	m.records.Set(key, records)
}

// InvalidateRecords drops every cached fetch. Used after new records are
// stored.
func (m *Manager) InvalidateRecords() int {
	removed := m.records.Len()
	m.records.Clear()
	m.logger.Cache().Info("Record cache invalidated", "removed", removed)
	return removed
}

// =============================================================================
// Analysis results
// =============================================================================

func (m *Manager) GetResult(key string) (*insights.AnalysisResult, bool) {
	return m.results.Get(key)
}

func (m *Manager) SetResult(key string, result *insights.AnalysisResult) {
	m.results.Set(key, result)
}

// InvalidateResults removes cached results for timeRange, or every result
// when timeRange is empty.
func (m *Manager) InvalidateResults(timeRange string) int {
	var removed int
	if timeRange == "" {
		removed = m.results.Len()
		m.results.Clear()
	} else {
		prefix := resultKeyPrefix + timeRange + ":"
		removed = m.results.DeleteMatching(func(key string) bool {
			return strings.HasPrefix(key, prefix)
		})
	}
	m.logger.Cache().Info("Result cache invalidated", "timeRange", timeRange, "removed", removed)
	return removed
}

// ClearAll drops both caches.
func (m *Manager) ClearAll() {
	m.records.Clear()
	m.results.Clear()
	m.logger.Cache().Info("All caches cleared")
}

func (m *Manager) Stats() []types.CacheStats {
	return []types.CacheStats{m.records.Stats(), m.results.Stats()}
}

func (m *Manager) ResultKeys() []string {
	return m.results.Keys()
}

func (m *Manager) Sweepables() []interfaces.Sweepable {
	return []interfaces.Sweepable{m.records, m.results}
}
