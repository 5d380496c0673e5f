package performance

import (
	"errors"
	"testing"
	"time"
)

func TestSummarizeGroupsByPrefix(t *testing.T) {
	tracker := NewTracker(nil)

	hit := tracker.StartOperation("analysis:run", "month")
	hit.AddCacheHit()
	tracker.CompleteOperation(hit)

	miss := tracker.StartOperation("analysis:run", "week")
	miss.AddCacheMiss()
	miss.SetError(errors.New("load failed"))
	tracker.CompleteOperation(miss)

	other := tracker.StartOperation("loader:fetch", "x")
	tracker.CompleteOperation(other)

	open := tracker.StartOperation("analysis:run", "year")
	_ = open

	summary := tracker.Summarize("analysis", time.Hour)
	if summary.Count != 2 {
		t.Fatalf("want=2 got=%d", summary.Count)
	}
	if summary.Failures != 1 {
		t.Fatalf("want=1 failures got=%d", summary.Failures)
	}
	if summary.CacheHitRate != 0.5 {
		t.Fatalf("want=0.5 got=%v", summary.CacheHitRate)
	}
	if summary.Slowest < summary.Average {
		t.Fatalf("slowest %v below average %v", summary.Slowest, summary.Average)
	}
}

func TestSlowAnalysisRaisesAlert(t *testing.T) {
	tracker := NewTracker(nil)
	marker := tracker.StartOperation("analysis:run", "month")
	marker.StartTime = time.Now().Add(-3 * time.Second)
	tracker.CompleteOperation(marker)

	alerts := tracker.GetAlerts()
	if len(alerts) != 2 {
		t.Fatalf("want=2 alerts got=%d", len(alerts))
	}
	if alerts[0].Severity != AlertWarning {
		t.Fatalf("want=%s got=%s", AlertWarning, alerts[0].Severity)
	}
}

func TestCleanupDropsExpiredMarkers(t *testing.T) {
	tracker := NewTracker(&TrackerConfig{MaxMarkers: 100, MaxAlerts: 10, Retention: time.Minute})
	old := tracker.StartOperation("loader:fetch", "a")
	tracker.CompleteOperation(old)
	old.EndTime = time.Now().Add(-2 * time.Minute)

	active := tracker.StartOperation("loader:fetch", "b")
	_ = active

	if removed := tracker.Cleanup(); removed != 1 {
		t.Fatalf("want=1 got=%d", removed)
	}
	if got := tracker.GetOverallStats()["activeOperations"]; got != 1 {
		t.Fatalf("want=1 active got=%v", got)
	}
}

func TestOnAlertReceivesRaisedAlerts(t *testing.T) {
	tracker := NewTracker(nil)
	var got []PerformanceAlert
	tracker.OnAlert(func(alert PerformanceAlert) { got = append(got, alert) })

	fast := tracker.StartOperation("loader:fetch", "quick")
	tracker.CompleteOperation(fast)
	if len(got) != 0 {
		t.Fatalf("want no alerts for a fast fetch got=%d", len(got))
	}

	slow := tracker.StartOperation("loader:fetch", "slow")
	slow.StartTime = time.Now().Add(-time.Second)
	tracker.CompleteOperation(slow)
	if len(got) != 1 {
		t.Fatalf("want=1 got=%d", len(got))
	}
	if got[0].Operation != "loader:fetch" || got[0].Threshold != 500*time.Millisecond {
		t.Fatalf("unexpected alert %+v", got[0])
	}
}
