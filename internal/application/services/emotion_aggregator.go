package services

import (
	"sort"
	"time"

	"github.com/AtRiskMedia/emotrack-go/internal/domain/emotions"
	"github.com/AtRiskMedia/emotrack-go/internal/domain/entities/insights"
)

const (
	risingFactor  = 1.2
	fallingFactor = 0.8
)

type emotionTally struct {
	count       int
	total       float64
	last        time.Time
	occurrences []time.Time
}

// AggregateEmotions folds the samples into one aggregation per canonical
// emotion, sorted by count descending with ties kept in first-seen order.
func AggregateEmotions(samples []emotions.Sample, r DateRange) []insights.EmotionAggregation {
	tallies := make(map[string]*emotionTally)
	var order []string

	for _, sample := range samples {
		for _, d := range sample.Detections {
			tally, exists := tallies[d.Emotion]
			if !exists {
				tally = &emotionTally{}
				tallies[d.Emotion] = tally
				order = append(order, d.Emotion)
			}
			tally.count++
			tally.total += d.Intensity
			if sample.At.After(tally.last) {
				tally.last = sample.At
			}
			tally.occurrences = append(tally.occurrences, sample.At)
		}
	}

	totalCount := 0
	for _, tally := range tallies {
		totalCount += tally.count
	}

	aggregations := make([]insights.EmotionAggregation, 0, len(order))
	midpoint := r.Midpoint()
	for _, id := range order {
		tally := tallies[id]
		meta, _ := emotions.Lookup(id)
		aggregations = append(aggregations, insights.EmotionAggregation{
			Emotion:          id,
			Label:            meta.Label,
			Category:         meta.Category,
			Color:            meta.Color,
			Emoji:            meta.Emoji,
			Count:            tally.count,
			TotalIntensity:   tally.total,
			AverageIntensity: tally.total / float64(tally.count),
			Percentage:       float64(tally.count) / float64(totalCount) * 100,
			LastOccurrence:   tally.last,
			Trend:            occurrenceTrend(tally.occurrences, midpoint),
		})
	}

	sort.SliceStable(aggregations, func(i, j int) bool {
		return aggregations[i].Count > aggregations[j].Count
	})
	return aggregations
}

// occurrenceTrend compares how many occurrences fall in each half of the
// range, split at midpoint.
func occurrenceTrend(occurrences []time.Time, midpoint time.Time) insights.TrendTag {
	var firstHalf, secondHalf int
	for _, at := range occurrences {
		if at.Before(midpoint) {
			firstHalf++
		} else {
			secondHalf++
		}
	}

	switch {
	case float64(secondHalf) > float64(firstHalf)*risingFactor:
		return insights.TrendRising
	case float64(secondHalf) < float64(firstHalf)*fallingFactor:
		return insights.TrendFalling
	default:
		return insights.TrendStable
	}
}
