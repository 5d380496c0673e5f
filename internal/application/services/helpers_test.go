package services

import (
	"math"
	"testing"
	"time"

	"github.com/AtRiskMedia/emotrack-go/internal/domain/emotions"
)

var testNow = time.Date(2024, 6, 15, 12, 0, 0, 0, time.UTC)

func det(emotion string, intensity float64, causes ...string) emotions.EmotionDetection {
	d := emotions.EmotionDetection{Emotion: emotion, Intensity: intensity}
	for _, c := range causes {
		d.Causes = append(d.Causes, emotions.EmotionCause{Cause: c})
	}
	return d
}

func rec(timestamp, summary string, detections ...emotions.EmotionDetection) emotions.EmotionRecord {
	return emotions.EmotionRecord{Timestamp: timestamp, Summary: summary, DetectedEmotions: detections}
}

func lastDays(n int) DateRange {
	return DateRange{Start: testNow.AddDate(0, 0, -n), End: testNow}
}

func prepare(t *testing.T, r DateRange, records ...emotions.EmotionRecord) []emotions.Sample {
	t.Helper()
	samples, skipped := emotions.Prepare(records, r.Start, r.End)
	if len(skipped) != 0 {
		t.Fatalf("unexpected skipped records: %+v", skipped)
	}
	return samples
}

func approx(a, b float64) bool {
	return math.Abs(a-b) < 1e-9
}

// recordsForDays emits one record per day starting at start, each with a
// single detection of emotion at the given intensity.
func recordsForDays(start time.Time, emotion string, intensities ...float64) []emotions.EmotionRecord {
	records := make([]emotions.EmotionRecord, 0, len(intensities))
	for i, v := range intensities {
		at := start.AddDate(0, 0, i).Format(time.RFC3339)
		records = append(records, rec(at, "", det(emotion, v)))
	}
	return records
}
