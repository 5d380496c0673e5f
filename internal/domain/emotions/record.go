// Package emotions defines the raw emotion-detection records consumed by the
// analysis pipeline and the helpers that turn them into a clean snapshot.
package emotions

import "time"

// EmotionRecord is a single per-conversation detection result as delivered by
// the record source. It is treated as immutable once fetched.
type EmotionRecord struct {
	ID               string             `json:"id,omitempty"`
	ConversationID   string             `json:"conversationId,omitempty"`
	Timestamp        string             `json:"timestamp"`
	Summary          string             `json:"summary,omitempty"`
	DetectedEmotions []EmotionDetection `json:"detectedEmotions"`
}

// EmotionDetection is one emotion found in a record. Intensity arrives either
// on a 0-100 or a 0-1 scale.
type EmotionDetection struct {
	Emotion   string         `json:"emotion"`
	Intensity float64        `json:"intensity"`
	Causes    []EmotionCause `json:"causes"`
}

// EmotionCause is a free-text reason attached to a detection.
type EmotionCause struct {
	Cause       string `json:"cause"`
	Description string `json:"description,omitempty"`
}

// Detection is a normalized EmotionDetection: canonical emotion id and an
// intensity on the 0-1 scale.
type Detection struct {
	Emotion   string
	Label     string
	Intensity float64
	Causes    []EmotionCause
}

// Sample is a record whose timestamp parsed and whose detections were
// normalized. Samples are the only input the analyzers see.
type Sample struct {
	RecordID   string
	At         time.Time
	Summary    string
	Detections []Detection
}
