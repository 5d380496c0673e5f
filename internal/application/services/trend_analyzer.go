package services

import (
	"math"
	"time"

	"github.com/AtRiskMedia/emotrack-go/internal/domain/emotions"
	"github.com/AtRiskMedia/emotrack-go/internal/domain/entities/insights"
)

const (
	dayLayout = "2006-01-02"

	// DefaultTrendThreshold is the relative change between the first and last
	// third of the range that counts as improving or declining.
	DefaultTrendThreshold = 0.1

	// maxIntensityVariance is the largest possible variance of values in [0,1].
	maxIntensityVariance = 0.25

	minWeeklyComparisonDays = 14
)

// TrendAnalyzer buckets samples by local calendar day and derives
// range-wide mood indices.
type TrendAnalyzer struct {
	location  *time.Location
	threshold float64
}

func NewTrendAnalyzer(location *time.Location, threshold float64) *TrendAnalyzer {
	if location == nil {
		location = time.UTC
	}
	if threshold <= 0 {
		threshold = DefaultTrendThreshold
	}
	return &TrendAnalyzer{location: location, threshold: threshold}
}

// Analyze produces one point per day that has at least one record, ordered by
// date.
func (a *TrendAnalyzer) Analyze(samples []emotions.Sample, r DateRange) insights.TrendAnalysis {
	points := a.bucketByDay(samples)

	dailyAverages := make([]float64, len(points))
	var activeSum float64
	for i, p := range points {
		dailyAverages[i] = p.AverageIntensity
		activeSum += p.ActiveRatio
	}

	analysis := insights.TrendAnalysis{
		Points:       points,
		OverallTrend: a.overallTrend(dailyAverages),
		Insights:     []insights.TrendInsight{},
	}
	if len(points) > 0 {
		analysis.MoodStability = moodStability(dailyAverages)
		analysis.PositivityRatio = emotions.Clamp01(activeSum / float64(len(points)))
		analysis.WeeklyComparison = a.weeklyComparison(points, r)
		analysis.Insights = trendInsights(analysis)
	}
	return analysis
}

func (a *TrendAnalyzer) bucketByDay(samples []emotions.Sample) []insights.TrendPoint {
	index := make(map[string]int)
	points := make([]insights.TrendPoint, 0)

	for _, sample := range samples {
		day := sample.At.In(a.location).Format(dayLayout)
		i, exists := index[day]
		if !exists {
			i = len(points)
			index[day] = i
			points = append(points, insights.TrendPoint{Date: day, Emotions: []insights.DayEmotion{}})
		}
		p := &points[i]
		p.RecordCount++
		if sample.Summary != "" {
			p.Summaries = append(p.Summaries, sample.Summary)
		}
		for _, d := range sample.Detections {
			p.Emotions = append(p.Emotions, insights.DayEmotion{Emotion: d.Emotion, Intensity: d.Intensity})
		}
	}

	for i := range points {
		summarizeDay(&points[i])
	}
	return points
}

// summarizeDay fills the dominant emotion and intensity ratios of a point
// from its detections.
func summarizeDay(p *insights.TrendPoint) {
	if len(p.Emotions) == 0 {
		return
	}

	cumulative := make(map[string]float64)
	var order []string
	var total, active, passive float64
	for _, e := range p.Emotions {
		if _, seen := cumulative[e.Emotion]; !seen {
			order = append(order, e.Emotion)
		}
		cumulative[e.Emotion] += e.Intensity
		total += e.Intensity
		switch emotions.CategoryOf(e.Emotion) {
		case emotions.CategoryActive:
			active += e.Intensity
		case emotions.CategoryPassive:
			passive += e.Intensity
		}
	}

	p.DominantEmotion = order[0]
	for _, id := range order[1:] {
		if cumulative[id] > cumulative[p.DominantEmotion] {
			p.DominantEmotion = id
		}
	}

	p.AverageIntensity = total / float64(len(p.Emotions))
	if total > 0 {
		p.ActiveRatio = active / total
		p.PassiveRatio = passive / total
	}
}

// overallTrend compares the mean of the last third of daily averages with the
// first third.
func (a *TrendAnalyzer) overallTrend(dailyAverages []float64) insights.OverallTrend {
	n := len(dailyAverages)
	if n < 3 {
		return insights.OverallStable
	}
	third := n / 3
	first := mean(dailyAverages[:third])
	last := mean(dailyAverages[n-third:])

	if first == 0 {
		if last > 0 {
			return insights.OverallImproving
		}
		return insights.OverallStable
	}

	change := (last - first) / first
	switch {
	case change >= a.threshold:
		return insights.OverallImproving
	case change <= -a.threshold:
		return insights.OverallDeclining
	default:
		return insights.OverallStable
	}
}

func moodStability(dailyAverages []float64) float64 {
	m := mean(dailyAverages)
	var variance float64
	for _, v := range dailyAverages {
		variance += (v - m) * (v - m)
	}
	variance /= float64(len(dailyAverages))
	return emotions.Clamp01(1 - variance/maxIntensityVariance)
}

// weeklyComparison is the mean daily intensity of the last 7 days of the
// range minus that of the 7 days before.
func (a *TrendAnalyzer) weeklyComparison(points []insights.TrendPoint, r DateRange) float64 {
	if r.Days() < minWeeklyComparisonDays {
		return 0
	}

	endLocal := r.End.In(a.location)
	endDay := time.Date(endLocal.Year(), endLocal.Month(), endLocal.Day(), 0, 0, 0, 0, a.location)

	var recent, previous []float64
	for _, p := range points {
		day, err := time.ParseInLocation(dayLayout, p.Date, a.location)
		if err != nil {
			continue
		}
		age := int(math.Round(endDay.Sub(day).Hours() / 24))
		switch {
		case age >= 0 && age < 7:
			recent = append(recent, p.AverageIntensity)
		case age >= 7 && age < 14:
			previous = append(previous, p.AverageIntensity)
		}
	}
	if len(recent) == 0 || len(previous) == 0 {
		return 0
	}
	return mean(recent) - mean(previous)
}

// trendInsights turns threshold checks into notes. Each rule is independent.
func trendInsights(analysis insights.TrendAnalysis) []insights.TrendInsight {
	notes := []insights.TrendInsight{}

	switch analysis.OverallTrend {
	case insights.OverallImproving:
		notes = append(notes, insights.TrendInsight{
			Message:  "Emotional intensity has been rising across this period.",
			Severity: insights.SeverityPositive,
		})
	case insights.OverallDeclining:
		notes = append(notes, insights.TrendInsight{
			Message:  "Emotional intensity has been dropping across this period.",
			Severity: insights.SeverityWarning,
		})
	}

	if analysis.MoodStability < 0.5 {
		notes = append(notes, insights.TrendInsight{
			Message:  "Your mood has swung noticeably from day to day.",
			Severity: insights.SeverityWarning,
		})
	} else if analysis.MoodStability >= 0.8 && len(analysis.Points) >= 3 {
		notes = append(notes, insights.TrendInsight{
			Message:  "Your mood has been steady.",
			Severity: insights.SeverityPositive,
		})
	}

	if analysis.PositivityRatio >= 0.6 {
		notes = append(notes, insights.TrendInsight{
			Message:  "Positive emotions made up most of what you felt.",
			Severity: insights.SeverityPositive,
		})
	} else if analysis.PositivityRatio < 0.4 {
		notes = append(notes, insights.TrendInsight{
			Message:  "Positive emotions were less common than usual.",
			Severity: insights.SeverityWarning,
		})
	}

	if analysis.WeeklyComparison > 0.1 {
		notes = append(notes, insights.TrendInsight{
			Message:  "This week felt more intense than the week before.",
			Severity: insights.SeverityInfo,
		})
	} else if analysis.WeeklyComparison < -0.1 {
		notes = append(notes, insights.TrendInsight{
			Message:  "This week felt calmer than the week before.",
			Severity: insights.SeverityInfo,
		})
	}

	return notes
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	var sum float64
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
