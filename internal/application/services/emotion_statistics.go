package services

import (
	"github.com/AtRiskMedia/emotrack-go/internal/domain/entities/insights"
)

// diversityReference is the number of distinct emotions that counts as full
// diversity.
const diversityReference = 10

const defaultSuggestion = "Keep checking in with yourself. Your emotional balance looks healthy right now."

const emptySuggestion = "No emotion records in this period yet. Talking through your day is a good way to start."

// BuildStatistics rolls aggregations and trend output into one flat record.
func BuildStatistics(totalRecords int, aggregations []insights.EmotionAggregation, trend insights.TrendAnalysis) insights.EmotionStatistics {
	stats := insights.EmotionStatistics{
		TotalRecords:     totalRecords,
		MoodStability:    trend.MoodStability,
		PositivityRatio:  trend.PositivityRatio,
		RecentTrend:      trend.OverallTrend,
		WeeklyChange:     trend.WeeklyComparison,
		EmotionDiversity: min(1, float64(len(aggregations))/diversityReference),
	}
	if stats.RecentTrend == "" {
		stats.RecentTrend = insights.OverallStable
	}

	var totalIntensity, dominantIntensity float64
	for _, agg := range aggregations {
		stats.TotalEmotions += agg.Count
		totalIntensity += agg.TotalIntensity
		if stats.DominantEmotion == "" || agg.TotalIntensity > dominantIntensity {
			stats.DominantEmotion = agg.Emotion
			dominantIntensity = agg.TotalIntensity
		}
	}
	if stats.TotalEmotions > 0 {
		stats.AverageIntensity = totalIntensity / float64(stats.TotalEmotions)
	}
	return stats
}

type suggestionRule struct {
	applies    func(insights.EmotionStatistics) bool
	suggestion string
}

// suggestionRules are evaluated independently and in this order.
var suggestionRules = []suggestionRule{
	{
		applies:    func(s insights.EmotionStatistics) bool { return s.RecentTrend == insights.OverallDeclining },
		suggestion: "Your emotional energy has been dropping. Try to plan one small thing each day that you look forward to.",
	},
	{
		applies:    func(s insights.EmotionStatistics) bool { return s.PositivityRatio < 0.4 },
		suggestion: "Difficult emotions have outweighed positive ones lately. Reaching out to someone you trust can help.",
	},
	{
		applies:    func(s insights.EmotionStatistics) bool { return s.MoodStability < 0.5 },
		suggestion: "Your mood has been swinging. A regular sleep and meal routine can make days feel steadier.",
	},
	{
		applies:    func(s insights.EmotionStatistics) bool { return s.AverageIntensity > 0.7 },
		suggestion: "Your emotions have been running intense. Short breathing or grounding exercises may help you recover.",
	},
	{
		applies:    func(s insights.EmotionStatistics) bool { return s.EmotionDiversity < 0.3 },
		suggestion: "Only a few emotions showed up this period. Journaling can help you notice subtler feelings.",
	},
	{
		applies:    func(s insights.EmotionStatistics) bool { return s.WeeklyChange < -0.1 },
		suggestion: "This week was quieter than last. Check whether that feels like rest or like withdrawal.",
	},
}

// GenerateSuggestions applies every rule to stats. When no rule fires the
// default encouragement is returned.
func GenerateSuggestions(stats insights.EmotionStatistics) []string {
	if stats.TotalRecords == 0 {
		return []string{emptySuggestion}
	}

	suggestions := make([]string, 0, len(suggestionRules))
	for _, rule := range suggestionRules {
		if rule.applies(stats) {
			suggestions = append(suggestions, rule.suggestion)
		}
	}
	if len(suggestions) == 0 {
		suggestions = append(suggestions, defaultSuggestion)
	}
	return suggestions
}
