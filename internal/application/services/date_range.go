package services

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/AtRiskMedia/emotrack-go/internal/domain/entities/insights"
)

var ErrInvalidQuery = errors.New("invalid analysis query")

const queryDateLayout = "2006-01-02"

// DateRange is a resolved, inclusive pair of bounds.
type DateRange struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Days is the length of the range in whole days, rounded up.
func (r DateRange) Days() int {
	d := r.End.Sub(r.Start)
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	return days
}

// Midpoint is the instant halfway between Start and End.
func (r DateRange) Midpoint() time.Time {
	return r.Start.Add(r.End.Sub(r.Start) / 2)
}

// AnalysisQuery carries the raw parameters of one analysis request. The cache
// key is derived from these fields only.
type AnalysisQuery struct {
	TimeRange string `json:"timeRange" form:"timeRange"`
	StartDate string `json:"startDate,omitempty" form:"startDate"`
	EndDate   string `json:"endDate,omitempty" form:"endDate"`
}

// ResolveDateRange maps a symbolic range or explicit bounds onto concrete
// bounds. Explicit bounds win over the symbolic tag; a missing end means now
// and a missing start is derived from the tag relative to the end. Unknown
// tags behave like month. Inverted bounds are swapped.
func ResolveDateRange(timeRange insights.TimeRange, start, end *time.Time, now time.Time) DateRange {
	resolvedEnd := now
	if end != nil {
		resolvedEnd = *end
	}

	var resolvedStart time.Time
	if start != nil {
		resolvedStart = *start
	} else {
		resolvedStart = resolvedEnd.AddDate(0, 0, -timeRange.Normalize().Days())
	}

	if resolvedStart.After(resolvedEnd) {
		resolvedStart, resolvedEnd = resolvedEnd, resolvedStart
	}
	return DateRange{Start: resolvedStart, End: resolvedEnd}
}

// ParseQueryDate parses a query bound given as RFC 3339 or as a bare
// YYYY-MM-DD date in loc. Bare end dates cover the whole day.
func ParseQueryDate(raw string, endOfDay bool, loc *time.Location) (*time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return nil, nil
	}
	if loc == nil {
		loc = time.UTC
	}

	if t, err := time.Parse(time.RFC3339Nano, value); err == nil {
		return &t, nil
	}

	day, err := time.ParseInLocation(queryDateLayout, value, loc)
	if err != nil {
		return nil, fmt.Errorf("%w: unparseable date %q", ErrInvalidQuery, raw)
	}
	if endOfDay {
		day = day.AddDate(0, 0, 1).Add(-time.Nanosecond)
	}
	return &day, nil
}

// Resolve parses the query's explicit bounds and resolves the final range.
func (q AnalysisQuery) Resolve(now time.Time, loc *time.Location) (DateRange, error) {
	start, err := ParseQueryDate(q.StartDate, false, loc)
	if err != nil {
		return DateRange{}, err
	}
	end, err := ParseQueryDate(q.EndDate, true, loc)
	if err != nil {
		return DateRange{}, err
	}
	return ResolveDateRange(insights.TimeRange(q.CacheKeyRange()), start, end, now), nil
}

// CacheKeyRange returns the time range used in the result cache key. Unknown
// and empty tags share month's entries.
func (q AnalysisQuery) CacheKeyRange() string {
	return string(insights.TimeRange(strings.ToLower(strings.TrimSpace(q.TimeRange))).Normalize())
}
