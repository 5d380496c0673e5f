package records

import (
	"context"
	"fmt"
	"math/rand"
	"time"

	"github.com/AtRiskMedia/emotrack-go/internal/domain/emotions"
)

type mockScenario struct {
	summary  string
	emotions []string
	causes   []string
}

var mockScenarios = []mockScenario{
	{"Finished a big project at work", []string{"pride", "joy", "stress"}, []string{"work", "deadline"}},
	{"Dinner with family", []string{"happiness", "love", "gratitude"}, []string{"family"}},
	{"Couldn't sleep before the exam", []string{"anxiety", "fear", "stress"}, []string{"exams", "sleep"}},
	{"Argument with a friend", []string{"anger", "sadness", "guilt"}, []string{"friendship"}},
	{"Quiet evening reading", []string{"calm", "contentment"}, []string{"reading", "rest"}},
	{"Lonely weekend at home", []string{"loneliness", "boredom", "sadness"}, []string{"weekend", "rest"}},
	{"Job interview went well", []string{"excitement", "hope", "anxiety"}, []string{"career", "work"}},
	{"Found old photos", []string{"nostalgia", "happiness"}, []string{"memories", "family"}},
}

// MockRecordSource generates plausible records for demos. The same seed and
// range always produce the same records.
type MockRecordSource struct {
	seed     int64
	perDay   int
	location *time.Location
}

func NewMockRecordSource(seed int64, perDay int, location *time.Location) *MockRecordSource {
	if perDay <= 0 {
		perDay = 1
	}
	if location == nil {
		location = time.UTC
	}
	return &MockRecordSource{seed: seed, perDay: perDay, location: location}
}

func (s *MockRecordSource) FetchRecords(ctx context.Context, start, end time.Time) ([]emotions.EmotionRecord, error) {
	if end.Before(start) {
		return nil, fmt.Errorf("invalid range: %v after %v", start, end)
	}

	records := make([]emotions.EmotionRecord, 0)
	day := time.Date(start.In(s.location).Year(), start.In(s.location).Month(), start.In(s.location).Day(), 0, 0, 0, 0, s.location)
	for !day.After(end) {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		// Seeded per day so overlapping ranges agree on shared days.
		rng := rand.New(rand.NewSource(s.seed ^ day.Unix()))
		count := rng.Intn(s.perDay + 1)
		for i := 0; i < count; i++ {
			at := day.Add(time.Duration(8+rng.Intn(14))*time.Hour + time.Duration(rng.Intn(60))*time.Minute)
			if at.Before(start) || at.After(end) {
				continue
			}
			records = append(records, s.generate(rng, at, i))
		}
		day = day.AddDate(0, 0, 1)
	}
	return records, nil
}

func (s *MockRecordSource) generate(rng *rand.Rand, at time.Time, i int) emotions.EmotionRecord {
	scenario := mockScenarios[rng.Intn(len(mockScenarios))]
	n := 1 + rng.Intn(len(scenario.emotions))

	detections := make([]emotions.EmotionDetection, 0, n)
	for _, emotion := range scenario.emotions[:n] {
		detection := emotions.EmotionDetection{
			Emotion:   emotion,
			Intensity: float64(30 + rng.Intn(70)),
		}
		for _, cause := range scenario.causes {
			if rng.Intn(3) > 0 {
				detection.Causes = append(detection.Causes, emotions.EmotionCause{Cause: cause})
			}
		}
		detections = append(detections, detection)
	}

	return emotions.EmotionRecord{
		ID:               fmt.Sprintf("mock-%s-%d", at.Format("20060102"), i),
		ConversationID:   fmt.Sprintf("mock-conversation-%d", rng.Intn(5)+1),
		Timestamp:        at.UTC().Format(time.RFC3339),
		Summary:          scenario.summary,
		DetectedEmotions: detections,
	}
}
