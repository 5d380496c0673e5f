package services

import (
	"testing"
	"time"

	"github.com/AtRiskMedia/emotrack-go/internal/domain/entities/insights"
)

func TestTrendDailyBuckets(t *testing.T) {
	r := lastDays(7)
	samples := prepare(t, r,
		rec("2024-06-14T08:00:00Z", "Rough morning", det("anxiety", 30), det("anxiety", 30)),
		rec("2024-06-14T20:00:00Z", "", det("joy", 90), det("calm", 50)),
		rec("2024-06-15T08:00:00Z", "", det("sadness", 40)),
	)

	analysis := NewTrendAnalyzer(time.UTC, 0).Analyze(samples, r)
	if len(analysis.Points) != 2 {
		t.Fatalf("want 2 points got=%d", len(analysis.Points))
	}

	day := analysis.Points[0]
	if day.Date != "2024-06-14" || day.RecordCount != 2 {
		t.Fatalf("unexpected first point: %+v", day)
	}
	// joy wins on cumulative intensity even though anxiety appears twice.
	if day.DominantEmotion != "joy" {
		t.Fatalf("want dominant=joy got=%s", day.DominantEmotion)
	}
	if !approx(day.AverageIntensity, (0.3+0.3+0.9+0.5)/4) {
		t.Fatalf("unexpected average intensity %v", day.AverageIntensity)
	}
	if !approx(day.ActiveRatio, 0.9/2.0) || !approx(day.PassiveRatio, 0.6/2.0) {
		t.Fatalf("unexpected ratios active=%v passive=%v", day.ActiveRatio, day.PassiveRatio)
	}
	if day.ActiveRatio+day.PassiveRatio > 1 {
		t.Fatalf("ratios must not exceed 1")
	}
	if analysis.Points[1].DominantEmotion != "sadness" || analysis.Points[1].PassiveRatio != 1 {
		t.Fatalf("unexpected second point: %+v", analysis.Points[1])
	}
}

func TestTrendBucketsUseLocation(t *testing.T) {
	loc := time.FixedZone("UTC+9", 9*60*60)
	r := lastDays(7)
	samples := prepare(t, r, rec("2024-06-13T20:00:00Z", "", det("calm", 0.5)))

	analysis := NewTrendAnalyzer(loc, 0).Analyze(samples, r)
	if analysis.Points[0].Date != "2024-06-14" {
		t.Fatalf("want local date 2024-06-14 got=%s", analysis.Points[0].Date)
	}
}

func TestTrendOverallDirection(t *testing.T) {
	r := lastDays(30)
	build := func(intensities ...float64) insights.TrendAnalysis {
		records := recordsForDays(time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC), "joy", intensities...)
		return NewTrendAnalyzer(time.UTC, 0).Analyze(prepare(t, r, records...), r)
	}

	if got := build(0.2, 0.2, 0.5, 0.5, 0.8, 0.8).OverallTrend; got != insights.OverallImproving {
		t.Fatalf("want improving got=%s", got)
	}
	if got := build(0.8, 0.8, 0.5, 0.5, 0.2, 0.2).OverallTrend; got != insights.OverallDeclining {
		t.Fatalf("want declining got=%s", got)
	}
	if got := build(0.5, 0.52, 0.5, 0.5, 0.51, 0.53).OverallTrend; got != insights.OverallStable {
		t.Fatalf("want stable for small change got=%s", got)
	}
	if got := build(0.2, 0.9).OverallTrend; got != insights.OverallStable {
		t.Fatalf("want stable with fewer than 3 days got=%s", got)
	}
}

func TestTrendIndicesBounded(t *testing.T) {
	r := lastDays(30)
	start := time.Date(2024, 6, 1, 10, 0, 0, 0, time.UTC)

	steady := NewTrendAnalyzer(time.UTC, 0).Analyze(prepare(t, r, recordsForDays(start, "joy", 0.5, 0.5, 0.5)...), r)
	if steady.MoodStability != 1 {
		t.Fatalf("want stability=1 for constant intensity got=%v", steady.MoodStability)
	}
	if steady.PositivityRatio != 1 {
		t.Fatalf("want positivity=1 for only active emotions got=%v", steady.PositivityRatio)
	}

	swinging := NewTrendAnalyzer(time.UTC, 0).Analyze(prepare(t, r, recordsForDays(start, "anger", 0, 1, 0, 1)...), r)
	if swinging.MoodStability != 0 {
		t.Fatalf("want stability=0 for maximal swing got=%v", swinging.MoodStability)
	}
	for _, a := range []insights.TrendAnalysis{steady, swinging} {
		if a.MoodStability < 0 || a.MoodStability > 1 || a.PositivityRatio < 0 || a.PositivityRatio > 1 {
			t.Fatalf("indices out of range: %+v", a)
		}
	}
	if !hasSeverity(swinging.Insights, insights.SeverityWarning) {
		t.Fatalf("want a warning insight for low stability, got %+v", swinging.Insights)
	}
}

func TestTrendWeeklyComparison(t *testing.T) {
	long := lastDays(30)
	samples := prepare(t, long,
		rec("2024-06-05T10:00:00Z", "", det("joy", 40)),
		rec("2024-06-14T10:00:00Z", "", det("joy", 80)),
	)
	analysis := NewTrendAnalyzer(time.UTC, 0).Analyze(samples, long)
	if !approx(analysis.WeeklyComparison, 0.4) {
		t.Fatalf("want weeklyComparison=0.4 got=%v", analysis.WeeklyComparison)
	}

	short := lastDays(10)
	analysis = NewTrendAnalyzer(time.UTC, 0).Analyze(prepare(t, short, rec("2024-06-14T10:00:00Z", "", det("joy", 80))), short)
	if analysis.WeeklyComparison != 0 {
		t.Fatalf("want 0 for ranges under 14 days got=%v", analysis.WeeklyComparison)
	}

	onlyRecent := prepare(t, long, rec("2024-06-14T10:00:00Z", "", det("joy", 80)))
	if got := NewTrendAnalyzer(time.UTC, 0).Analyze(onlyRecent, long).WeeklyComparison; got != 0 {
		t.Fatalf("want 0 when the previous week has no data got=%v", got)
	}
}

func TestTrendEmpty(t *testing.T) {
	analysis := NewTrendAnalyzer(time.UTC, 0).Analyze(nil, lastDays(7))
	if len(analysis.Points) != 0 || len(analysis.Insights) != 0 {
		t.Fatalf("want empty analysis got=%+v", analysis)
	}
	if analysis.OverallTrend != insights.OverallStable {
		t.Fatalf("want stable got=%s", analysis.OverallTrend)
	}
}

func hasSeverity(notes []insights.TrendInsight, severity insights.Severity) bool {
	for _, n := range notes {
		if n.Severity == severity {
			return true
		}
	}
	return false
}
