package emotions

import (
	"errors"
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

var (
	ErrInvalidTimestamp = errors.New("invalid timestamp")
	ErrInvalidIntensity = errors.New("invalid intensity")
)

// sqlTimestampLayout is the "YYYY-MM-DD HH:mm:ss" form written by the storage
// layer. It carries no zone and is always read as UTC.
const sqlTimestampLayout = "2006-01-02 15:04:05"

var isoLayouts = []string{
	time.RFC3339Nano,
	time.RFC3339,
	"2006-01-02T15:04:05.999999999",
	"2006-01-02T15:04:05",
	"2006-01-02",
}

// ParseTimestamp accepts ISO-8601 timestamps and the storage layer's
// "YYYY-MM-DD HH:mm:ss" form. Zone-less values are interpreted as UTC.
func ParseTimestamp(raw string) (time.Time, error) {
	value := strings.TrimSpace(raw)
	if value == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidTimestamp)
	}

	if len(value) == len(sqlTimestampLayout) && value[10] == ' ' {
		value = strings.Replace(value, " ", "T", 1) + "Z"
	}

	for _, layout := range isoLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidTimestamp, raw)
}

// NormalizeIntensity maps a raw intensity to [0,1]. Values above 1 are taken
// to be on the 0-100 scale.
func NormalizeIntensity(raw float64) (float64, error) {
	if math.IsNaN(raw) || math.IsInf(raw, 0) {
		return 0, fmt.Errorf("%w: %v", ErrInvalidIntensity, raw)
	}
	v := raw
	if v > 1 {
		v = v / 100
	}
	return Clamp01(v), nil
}

// Clamp01 clamps v to [0,1].
func Clamp01(v float64) float64 {
	if v < 0 {
		return 0
	}
	if v > 1 {
		return 1
	}
	return v
}

// SkippedRecord describes a record that was dropped while preparing a
// snapshot.
type SkippedRecord struct {
	Index    int
	RecordID string
	Err      error
}

// Prepare parses and normalizes records, keeping only those whose timestamp
// falls inside [start, end]. The returned samples are ordered by time; records
// sharing a timestamp keep their input order. Malformed records are reported
// in the second return value and never abort the whole batch.
func Prepare(records []EmotionRecord, start, end time.Time) ([]Sample, []SkippedRecord) {
	samples := make([]Sample, 0, len(records))
	var skipped []SkippedRecord

	for i, record := range records {
		sample, err := prepareRecord(record)
		if err != nil {
			skipped = append(skipped, SkippedRecord{Index: i, RecordID: record.ID, Err: err})
			continue
		}
		if sample.At.Before(start) || sample.At.After(end) {
			continue
		}
		samples = append(samples, sample)
	}

	sort.SliceStable(samples, func(i, j int) bool {
		return samples[i].At.Before(samples[j].At)
	})
	return samples, skipped
}

func prepareRecord(record EmotionRecord) (Sample, error) {
	at, err := ParseTimestamp(record.Timestamp)
	if err != nil {
		return Sample{}, err
	}

	detections := make([]Detection, 0, len(record.DetectedEmotions))
	for _, d := range record.DetectedEmotions {
		id := CanonicalID(d.Emotion)
		if id == "" {
			continue
		}
		intensity, err := NormalizeIntensity(d.Intensity)
		if err != nil {
			return Sample{}, fmt.Errorf("emotion %q: %w", d.Emotion, err)
		}
		meta, _ := Lookup(id)
		detections = append(detections, Detection{
			Emotion:   id,
			Label:     meta.Label,
			Intensity: intensity,
			Causes:    d.Causes,
		})
	}

	return Sample{
		RecordID:   record.ID,
		At:         at,
		Summary:    strings.TrimSpace(record.Summary),
		Detections: detections,
	}, nil
}
