package services

import (
	"sort"

	"github.com/AtRiskMedia/emotrack-go/internal/domain/emotions"
	"github.com/AtRiskMedia/emotrack-go/internal/domain/entities/insights"
)

const calendarEmotionsPerDay = 3

// ProjectCalendar reshapes trend points into heat-map cells. Each cell keeps
// the day's top emotions by cumulative intensity, shown with their average
// intensity.
func ProjectCalendar(points []insights.TrendPoint) []insights.CalendarEmotionData {
	calendar := make([]insights.CalendarEmotionData, 0, len(points))

	for _, p := range points {
		type dayTotal struct {
			id    string
			sum   float64
			count int
		}
		var totals []*dayTotal
		byID := make(map[string]*dayTotal)
		for _, e := range p.Emotions {
			t, exists := byID[e.Emotion]
			if !exists {
				t = &dayTotal{id: e.Emotion}
				byID[e.Emotion] = t
				totals = append(totals, t)
			}
			t.sum += e.Intensity
			t.count++
		}
		sort.SliceStable(totals, func(i, j int) bool { return totals[i].sum > totals[j].sum })
		if len(totals) > calendarEmotionsPerDay {
			totals = totals[:calendarEmotionsPerDay]
		}

		cell := insights.CalendarEmotionData{
			Date:            p.Date,
			Emotions:        make([]insights.CalendarEmotion, 0, len(totals)),
			DominantEmotion: p.DominantEmotion,
			RecordCount:     p.RecordCount,
		}
		for _, t := range totals {
			meta, _ := emotions.Lookup(t.id)
			cell.Emotions = append(cell.Emotions, insights.CalendarEmotion{
				Emotion:   t.id,
				Label:     meta.Label,
				Intensity: t.sum / float64(t.count),
				Color:     meta.Color,
			})
		}
		for _, summary := range p.Summaries {
			if summary != "" {
				cell.Summary = summary
				break
			}
		}
		calendar = append(calendar, cell)
	}
	return calendar
}
