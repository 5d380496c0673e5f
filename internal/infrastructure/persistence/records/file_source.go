package records

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"time"

	"github.com/AtRiskMedia/emotrack-go/internal/domain/emotions"
)

// FileRecordSource reads a JSON array of records from disk on every fetch.
// Range filtering is left to the pipeline, which also drops records with bad
// timestamps.
type FileRecordSource struct {
	path string
}

func NewFileRecordSource(path string) *FileRecordSource {
	return &FileRecordSource{path: path}
}

func (s *FileRecordSource) FetchRecords(ctx context.Context, start, end time.Time) ([]emotions.EmotionRecord, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	data, err := os.ReadFile(s.path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return []emotions.EmotionRecord{}, nil
		}
		return nil, fmt.Errorf("failed to read records file %s: %w", s.path, err)
	}

	var records []emotions.EmotionRecord
	if err := json.Unmarshal(data, &records); err != nil {
		return nil, fmt.Errorf("failed to decode records file %s: %w", s.path, err)
	}
	if records == nil {
		records = []emotions.EmotionRecord{}
	}
	return records, nil
}
