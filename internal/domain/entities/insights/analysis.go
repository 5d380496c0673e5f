// Package insights holds the derived views produced by the emotion analysis
// pipeline. Values of these types are built once and never mutated.
package insights

import (
	"time"

	"github.com/AtRiskMedia/emotrack-go/internal/domain/emotions"
)

type TimeRange string

const (
	TimeRangeWeek    TimeRange = "week"
	TimeRangeMonth   TimeRange = "month"
	TimeRangeQuarter TimeRange = "quarter"
	TimeRangeYear    TimeRange = "year"
)

// Days returns the look-back window of a symbolic range. Unknown ranges
// behave like month.
func (r TimeRange) Days() int {
	switch r {
	case TimeRangeWeek:
		return 7
	case TimeRangeQuarter:
		return 90
	case TimeRangeYear:
		return 365
	default:
		return 30
	}
}

// Normalize maps unknown ranges onto month.
func (r TimeRange) Normalize() TimeRange {
	switch r {
	case TimeRangeWeek, TimeRangeMonth, TimeRangeQuarter, TimeRangeYear:
		return r
	default:
		return TimeRangeMonth
	}
}

type TrendTag string

const (
	TrendRising  TrendTag = "rising"
	TrendFalling TrendTag = "falling"
	TrendStable  TrendTag = "stable"
)

type OverallTrend string

const (
	OverallImproving OverallTrend = "improving"
	OverallDeclining OverallTrend = "declining"
	OverallStable    OverallTrend = "stable"
)

type Severity string

const (
	SeverityPositive Severity = "positive"
	SeverityInfo     Severity = "info"
	SeverityWarning  Severity = "warning"
)

type EmotionAggregation struct {
	Emotion          string            `json:"emotion"`
	Label            string            `json:"label"`
	Category         emotions.Category `json:"category"`
	Color            string            `json:"color"`
	Emoji            string            `json:"emoji"`
	Count            int               `json:"count"`
	TotalIntensity   float64           `json:"totalIntensity"`
	AverageIntensity float64           `json:"averageIntensity"`
	Percentage       float64           `json:"percentage"`
	LastOccurrence   time.Time         `json:"lastOccurrence"`
	Trend            TrendTag          `json:"trend"`
}

// DayEmotion is a single detection placed on a day bucket.
type DayEmotion struct {
	Emotion   string  `json:"emotion"`
	Intensity float64 `json:"intensity"`
}

type TrendPoint struct {
	Date             string       `json:"date"`
	Emotions         []DayEmotion `json:"emotions"`
	DominantEmotion  string       `json:"dominantEmotion"`
	AverageIntensity float64      `json:"averageIntensity"`
	ActiveRatio      float64      `json:"activeRatio"`
	PassiveRatio     float64      `json:"passiveRatio"`
	RecordCount      int          `json:"recordCount"`
	Summaries        []string     `json:"-"`
}

type TrendInsight struct {
	Message  string   `json:"message"`
	Severity Severity `json:"severity"`
}

type TrendAnalysis struct {
	Points           []TrendPoint   `json:"points"`
	OverallTrend     OverallTrend   `json:"overallTrend"`
	MoodStability    float64        `json:"moodStability"`
	PositivityRatio  float64        `json:"positivityRatio"`
	WeeklyComparison float64        `json:"weeklyComparison"`
	Insights         []TrendInsight `json:"insights"`
}

type CalendarEmotion struct {
	Emotion   string  `json:"emotion"`
	Label     string  `json:"label"`
	Intensity float64 `json:"intensity"`
	Color     string  `json:"color"`
}

type CalendarEmotionData struct {
	Date            string            `json:"date"`
	Emotions        []CalendarEmotion `json:"emotions"`
	DominantEmotion string            `json:"dominantEmotion"`
	RecordCount     int               `json:"recordCount"`
	Summary         string            `json:"summary,omitempty"`
}

type EmotionStatistics struct {
	TotalRecords     int          `json:"totalRecords"`
	TotalEmotions    int          `json:"totalEmotions"`
	DominantEmotion  string       `json:"dominantEmotion"`
	AverageIntensity float64      `json:"averageIntensity"`
	MoodStability    float64      `json:"moodStability"`
	PositivityRatio  float64      `json:"positivityRatio"`
	EmotionDiversity float64      `json:"emotionDiversity"`
	RecentTrend      OverallTrend `json:"recentTrend"`
	WeeklyChange     float64      `json:"weeklyChange"`
}

// AnalysisResult bundles every view computed for one query. It is shared by
// the cache and all callers and must be treated as read-only.
type AnalysisResult struct {
	ID             string                `json:"id"`
	TimeRange      TimeRange             `json:"timeRange"`
	StartDate      time.Time             `json:"startDate"`
	EndDate        time.Time             `json:"endDate"`
	GeneratedAt    time.Time             `json:"generatedAt"`
	Aggregations   []EmotionAggregation  `json:"aggregations"`
	Trend          TrendAnalysis         `json:"trend"`
	Calendar       []CalendarEmotionData `json:"calendar"`
	KnowledgeGraph EmotionGraph          `json:"knowledgeGraph"`
	Statistics     EmotionStatistics     `json:"statistics"`
	Suggestions    []string              `json:"suggestions"`
	SkippedRecords int                   `json:"skippedRecords"`
}
