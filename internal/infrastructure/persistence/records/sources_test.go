package records

import (
	"context"
	"os"
	"path/filepath"
	"reflect"
	"testing"
	"time"
)

func TestFileRecordSource(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "records.json")
	payload := `[
		{"id":"a","timestamp":"2024-06-10T09:30:00Z","detectedEmotions":[{"emotion":"joy","intensity":70,"causes":[]}]},
		{"id":"b","timestamp":"2024-06-11 10:00:00","detectedEmotions":[]}
	]`
	if err := os.WriteFile(path, []byte(payload), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	got, err := NewFileRecordSource(path).FetchRecords(context.Background(), time.Time{}, time.Now())
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	if len(got) != 2 || got[0].ID != "a" || got[0].DetectedEmotions[0].Intensity != 70 {
		t.Fatalf("unexpected records: %+v", got)
	}
}

func TestFileRecordSourceMissingFileIsEmpty(t *testing.T) {
	got, err := NewFileRecordSource(filepath.Join(t.TempDir(), "nope.json")).FetchRecords(context.Background(), time.Time{}, time.Now())
	if err != nil {
		t.Fatalf("want nil error got=%v", err)
	}
	if got == nil || len(got) != 0 {
		t.Fatalf("want empty slice got=%v", got)
	}
}

func TestFileRecordSourceMalformed(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.json")
	if err := os.WriteFile(path, []byte("{not json"), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := NewFileRecordSource(path).FetchRecords(context.Background(), time.Time{}, time.Now()); err == nil {
		t.Fatalf("want decode error")
	}
}

func TestMockRecordSourceDeterministic(t *testing.T) {
	start := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	end := time.Date(2024, 6, 14, 23, 59, 59, 0, time.UTC)

	first, err := NewMockRecordSource(42, 3, time.UTC).FetchRecords(context.Background(), start, end)
	if err != nil {
		t.Fatalf("fetch: %v", err)
	}
	second, _ := NewMockRecordSource(42, 3, time.UTC).FetchRecords(context.Background(), start, end)
	if !reflect.DeepEqual(first, second) {
		t.Fatalf("same seed must produce same records")
	}
	if len(first) == 0 {
		t.Fatalf("want generated records over two weeks")
	}

	for _, record := range first {
		at, err := time.Parse(time.RFC3339, record.Timestamp)
		if err != nil {
			t.Fatalf("bad timestamp %q: %v", record.Timestamp, err)
		}
		if at.Before(start) || at.After(end) {
			t.Fatalf("record %s outside range", record.ID)
		}
		for _, d := range record.DetectedEmotions {
			if d.Intensity < 30 || d.Intensity >= 100 {
				t.Fatalf("intensity out of range: %v", d.Intensity)
			}
		}
	}
}

func TestMockRecordSourceSharedDaysAgree(t *testing.T) {
	source := NewMockRecordSource(7, 4, time.UTC)
	day := time.Date(2024, 6, 5, 0, 0, 0, 0, time.UTC)

	narrow, _ := source.FetchRecords(context.Background(), day, day.Add(24*time.Hour-time.Second))
	wide, _ := source.FetchRecords(context.Background(), day.AddDate(0, 0, -3), day.Add(24*time.Hour-time.Second))

	if len(wide) < len(narrow) {
		t.Fatalf("wide range lost records: narrow=%d wide=%d", len(narrow), len(wide))
	}
	tail := wide[len(wide)-len(narrow):]
	if !reflect.DeepEqual(narrow, tail) {
		t.Fatalf("overlapping ranges disagree on shared day")
	}
}

func TestMockRecordSourceRejectsInvertedRange(t *testing.T) {
	now := time.Now()
	if _, err := NewMockRecordSource(1, 1, nil).FetchRecords(context.Background(), now, now.Add(-time.Hour)); err == nil {
		t.Fatalf("want error for inverted range")
	}
}
