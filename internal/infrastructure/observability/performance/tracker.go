package performance

import (
	"fmt"
	"runtime"
	"strings"
	"sync"
	"time"
)

// Tracker manages performance markers and provides metrics aggregation
type Tracker struct {
	markers    map[string]*Marker
	alerts     []*PerformanceAlert
	thresholds *AlertThresholds
	mu         sync.RWMutex
	started    time.Time
	config     *TrackerConfig
	sequence   uint64
	onAlert    func(PerformanceAlert)
}

// TrackerConfig contains configuration options for the performance tracker
type TrackerConfig struct {
	MaxMarkers   int           `json:"maxMarkers"`
	MaxAlerts    int           `json:"maxAlerts"`
	Retention    time.Duration `json:"retention"` // How long completed markers are kept
	EnableAlerts bool          `json:"enableAlerts"`
}

// DefaultTrackerConfig returns a sensible default configuration
func DefaultTrackerConfig() *TrackerConfig {
	return &TrackerConfig{
		MaxMarkers:   10000,
		MaxAlerts:    500,
		Retention:    time.Hour,
		EnableAlerts: true,
	}
}

// AlertThresholds defines performance thresholds for generating alerts
type AlertThresholds struct {
	SlowResponseThreshold     time.Duration `json:"slowResponseThreshold"`
	CriticalResponseThreshold time.Duration `json:"criticalResponseThreshold"`
	AnalysisThreshold         time.Duration `json:"analysisThreshold"`
	LoaderThreshold           time.Duration `json:"loaderThreshold"`
	LowCacheHitRatio          float64       `json:"lowCacheHitRatio"`
}

// DefaultAlertThresholds returns sensible default alert thresholds
func DefaultAlertThresholds() *AlertThresholds {
	return &AlertThresholds{
		SlowResponseThreshold:     2 * time.Second,
		CriticalResponseThreshold: 5 * time.Second,
		AnalysisThreshold:         time.Second,
		LoaderThreshold:           500 * time.Millisecond,
		LowCacheHitRatio:          0.5,
	}
}

// NewTracker creates a new performance tracker with the given configuration
func NewTracker(config *TrackerConfig) *Tracker {
	if config == nil {
		config = DefaultTrackerConfig()
	}
	return &Tracker{
		markers:    make(map[string]*Marker),
		alerts:     make([]*PerformanceAlert, 0),
		thresholds: DefaultAlertThresholds(),
		started:    time.Now(),
		config:     config,
	}
}

// StartOperation creates and tracks a new performance marker for an operation
func (t *Tracker) StartOperation(operation, key string) *Marker {
	marker := &Marker{
		Operation: operation,
		Key:       key,
		StartTime: time.Now(),
		Metadata:  make(map[string]any),
		Success:   true,
	}

	t.mu.Lock()
	t.sequence++
	t.markers[fmt.Sprintf("%s_%d", operation, t.sequence)] = marker
	t.mu.Unlock()

	return marker
}

// OnAlert registers fn to be called for every alert raised after this call.
// fn runs on the goroutine completing the operation and must not block.
func (t *Tracker) OnAlert(fn func(PerformanceAlert)) {
	t.mu.Lock()
	t.onAlert = fn
	t.mu.Unlock()
}

// CompleteOperation completes an operation and checks for alerts
func (t *Tracker) CompleteOperation(marker *Marker) {
	if marker == nil || marker.Completed {
		return
	}
	marker.Complete()

	if t.config.EnableAlerts {
		t.checkForAlerts(marker)
	}
}

func (t *Tracker) checkForAlerts(marker *Marker) {
	alerts := t.evaluateThresholds(marker)
	if len(alerts) == 0 {
		return
	}

	t.mu.Lock()
	t.alerts = append(t.alerts, alerts...)
	if len(t.alerts) > t.config.MaxAlerts {
		t.alerts = t.alerts[len(t.alerts)-t.config.MaxAlerts:]
	}
	notify := t.onAlert
	t.mu.Unlock()

	if notify != nil {
		for _, alert := range alerts {
			notify(*alert)
		}
	}
}

func (t *Tracker) evaluateThresholds(marker *Marker) []*PerformanceAlert {
	var alerts []*PerformanceAlert

	if marker.Duration > t.thresholds.CriticalResponseThreshold {
		alerts = append(alerts, t.createAlert(marker, AlertCritical, t.thresholds.CriticalResponseThreshold,
			"Operation exceeded critical response time threshold"))
	} else if marker.Duration > t.thresholds.SlowResponseThreshold {
		alerts = append(alerts, t.createAlert(marker, AlertWarning, t.thresholds.SlowResponseThreshold,
			"Operation exceeded slow response time threshold"))
	}

	switch {
	case strings.HasPrefix(marker.Operation, "analysis"):
		if marker.Duration > t.thresholds.AnalysisThreshold {
			alerts = append(alerts, t.createAlert(marker, AlertWarning, t.thresholds.AnalysisThreshold,
				"Analysis run exceeded threshold"))
		}
	case strings.HasPrefix(marker.Operation, "loader"):
		if marker.Duration > t.thresholds.LoaderThreshold {
			alerts = append(alerts, t.createAlert(marker, AlertWarning, t.thresholds.LoaderThreshold,
				"Record fetch exceeded threshold"))
		}
	}

	if marker.CacheHits+marker.CacheMisses >= 10 && marker.GetCacheHitRatio() < t.thresholds.LowCacheHitRatio {
		alerts = append(alerts, t.createAlert(marker, AlertInfo, 0, "Cache hit ratio below optimal"))
	}

	return alerts
}

func (t *Tracker) createAlert(marker *Marker, severity AlertSeverity, threshold time.Duration, message string) *PerformanceAlert {
	return &PerformanceAlert{
		ID:        fmt.Sprintf("alert_%d", time.Now().UnixNano()),
		Timestamp: time.Now(),
		Severity:  severity,
		Operation: marker.Operation,
		Threshold: threshold,
		Actual:    marker.Duration,
		Message:   message,
		Metadata: map[string]any{
			"key":           marker.Key,
			"cacheHitRatio": marker.GetCacheHitRatio(),
			"success":       marker.Success,
		},
	}
}

// OperationSummary aggregates completed markers of one operation family.
type OperationSummary struct {
	Prefix       string        `json:"prefix"`
	Count        int           `json:"count"`
	Failures     int           `json:"failures"`
	Average      time.Duration `json:"average"`
	Slowest      time.Duration `json:"slowest"`
	CacheHitRate float64       `json:"cacheHitRate"`
}

// Summarize reports on completed markers whose operation starts with prefix
// and that finished within the given duration.
func (t *Tracker) Summarize(prefix string, within time.Duration) OperationSummary {
	t.mu.RLock()
	defer t.mu.RUnlock()

	summary := OperationSummary{Prefix: prefix}
	cutoff := time.Now().Add(-within)
	var total time.Duration
	var hits, lookups int
	for _, marker := range t.markers {
		if !marker.Completed || !strings.HasPrefix(marker.Operation, prefix) || marker.EndTime.Before(cutoff) {
			continue
		}
		summary.Count++
		if !marker.Success {
			summary.Failures++
		}
		total += marker.Duration
		if marker.Duration > summary.Slowest {
			summary.Slowest = marker.Duration
		}
		hits += marker.CacheHits
		lookups += marker.CacheHits + marker.CacheMisses
	}
	if summary.Count > 0 {
		summary.Average = total / time.Duration(summary.Count)
	}
	if lookups > 0 {
		summary.CacheHitRate = float64(hits) / float64(lookups)
	}
	return summary
}

// GetAlerts returns a copy of the retained alerts
func (t *Tracker) GetAlerts() []*PerformanceAlert {
	t.mu.RLock()
	defer t.mu.RUnlock()
	out := make([]*PerformanceAlert, len(t.alerts))
	copy(out, t.alerts)
	return out
}

// Cleanup drops completed markers past the retention window and enforces the
// marker limit.
func (t *Tracker) Cleanup() int {
	t.mu.Lock()
	defer t.mu.Unlock()

	removed := 0
	cutoff := time.Now().Add(-t.config.Retention)
	for id, marker := range t.markers {
		if marker.Completed && marker.EndTime.Before(cutoff) {
			delete(t.markers, id)
			removed++
		}
	}

	if len(t.markers) > t.config.MaxMarkers {
		for id, marker := range t.markers {
			if len(t.markers) <= t.config.MaxMarkers/2 {
				break
			}
			if marker.Completed {
				delete(t.markers, id)
				removed++
			}
		}
	}
	return removed
}

// GetOverallStats returns overall tracker statistics
func (t *Tracker) GetOverallStats() map[string]any {
	t.mu.RLock()
	defer t.mu.RUnlock()

	var memStats runtime.MemStats
	runtime.ReadMemStats(&memStats)

	activeCount := 0
	completedCount := 0
	for _, marker := range t.markers {
		if marker.Completed {
			completedCount++
		} else {
			activeCount++
		}
	}

	return map[string]any{
		"trackerUptime":       time.Since(t.started).String(),
		"totalMarkers":        len(t.markers),
		"activeOperations":    activeCount,
		"completedOperations": completedCount,
		"totalAlerts":         len(t.alerts),
		"memoryUsageMB":       memStats.Alloc / (1024 * 1024),
	}
}
