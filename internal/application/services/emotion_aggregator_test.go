package services

import (
	"testing"

	"github.com/AtRiskMedia/emotrack-go/internal/domain/emotions"
	"github.com/AtRiskMedia/emotrack-go/internal/domain/entities/insights"
)

func TestAggregateSingleEmotionToday(t *testing.T) {
	r := lastDays(7)
	samples := prepare(t, r,
		rec("2024-06-15T09:00:00Z", "", det("happiness", 80)),
		rec("2024-06-15T10:00:00Z", "", det("happiness", 80)),
		rec("2024-06-15 11:00:00", "", det("happiness", 80)),
	)

	aggs := AggregateEmotions(samples, r)
	if len(aggs) != 1 {
		t.Fatalf("want 1 aggregation got=%d", len(aggs))
	}
	a := aggs[0]
	if a.Emotion != "happiness" || a.Count != 3 {
		t.Fatalf("want happiness x3 got=%s x%d", a.Emotion, a.Count)
	}
	if !approx(a.Percentage, 100) {
		t.Fatalf("want percentage=100 got=%v", a.Percentage)
	}
	if !approx(a.AverageIntensity, 0.8) {
		t.Fatalf("want averageIntensity=0.8 got=%v", a.AverageIntensity)
	}
	if a.Category != emotions.CategoryActive {
		t.Fatalf("want active category got=%s", a.Category)
	}
	if want := "2024-06-15T11:00:00Z"; a.LastOccurrence.Format("2006-01-02T15:04:05Z07:00") != want {
		t.Fatalf("want lastOccurrence=%s got=%v", want, a.LastOccurrence)
	}
}

func TestAggregatePercentagesAndOrdering(t *testing.T) {
	r := lastDays(30)
	samples := prepare(t, r,
		rec("2024-06-01T09:00:00Z", "", det("anxiety", 0.6), det("joy", 0.9)),
		rec("2024-06-02T09:00:00Z", "", det("anxiety", 50)),
		rec("2024-06-03T09:00:00Z", "", det("Sad", 30), det("anxiety", 0.2)),
		rec("2024-06-04T09:00:00Z", "", det("wistful", 0.4)),
	)

	aggs := AggregateEmotions(samples, r)
	var totalCount int
	var totalPct float64
	for _, a := range aggs {
		totalCount += a.Count
		totalPct += a.Percentage
		if !approx(a.AverageIntensity, a.TotalIntensity/float64(a.Count)) {
			t.Fatalf("%s: average must equal total/count", a.Emotion)
		}
	}
	if totalCount != 6 {
		t.Fatalf("want 6 occurrences got=%d", totalCount)
	}
	if !approx(totalPct, 100) {
		t.Fatalf("want percentages to sum to 100 got=%v", totalPct)
	}

	if aggs[0].Emotion != "anxiety" || aggs[0].Count != 3 {
		t.Fatalf("want anxiety first got=%+v", aggs[0])
	}
	// Ties keep first-seen order.
	order := []string{aggs[1].Emotion, aggs[2].Emotion, aggs[3].Emotion}
	if order[0] != "joy" || order[1] != "sadness" || order[2] != "wistful" {
		t.Fatalf("unexpected tie order: %v", order)
	}
	if aggs[3].Category != emotions.CategoryNeutral || aggs[3].Label != "wistful" {
		t.Fatalf("unknown emotion should fall back to the unknown entry, got %+v", aggs[3])
	}
}

func TestAggregateTrendTag(t *testing.T) {
	r := lastDays(10) // midpoint 2024-06-10T12:00Z
	samples := prepare(t, r,
		rec("2024-06-06T09:00:00Z", "", det("stress", 0.5), det("calm", 0.5), det("joy", 0.5)),
		rec("2024-06-07T09:00:00Z", "", det("stress", 0.5), det("joy", 0.5)),
		rec("2024-06-12T09:00:00Z", "", det("calm", 0.5), det("joy", 0.5)),
		rec("2024-06-13T09:00:00Z", "", det("calm", 0.5), det("joy", 0.5)),
		rec("2024-06-14T09:00:00Z", "", det("calm", 0.5)),
	)

	tags := map[string]insights.TrendTag{}
	for _, a := range AggregateEmotions(samples, r) {
		tags[a.Emotion] = a.Trend
	}
	if tags["stress"] != insights.TrendFalling {
		t.Fatalf("stress: want falling got=%s", tags["stress"])
	}
	if tags["calm"] != insights.TrendRising {
		t.Fatalf("calm: want rising got=%s", tags["calm"])
	}
	if tags["joy"] != insights.TrendStable {
		t.Fatalf("joy: want stable got=%s", tags["joy"])
	}
}

func TestAggregateEmpty(t *testing.T) {
	aggs := AggregateEmotions(nil, lastDays(7))
	if aggs == nil || len(aggs) != 0 {
		t.Fatalf("want empty non-nil slice got=%v", aggs)
	}
}
