// Package records provides the record sources the analysis pipeline reads
// from: a SQL store (SQLite or Turso), a JSON file and a seeded generator.
package records

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	"github.com/AtRiskMedia/emotrack-go/internal/domain/emotions"
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/persistence/database"
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/security"
)

// storageLayout is the UTC text form of recorded_at.
const storageLayout = "2006-01-02 15:04:05"

// SQLRecordRepository is the SQL-based record store.
type SQLRecordRepository struct {
	db     *database.DB
	logger *logging.ChanneledLogger
}

func NewSQLRecordRepository(db *database.DB, logger *logging.ChanneledLogger) *SQLRecordRepository {
	if logger == nil {
		logger = logging.NewDiscardLogger()
	}
	return &SQLRecordRepository{db: db, logger: logger}
}

// FetchRecords returns the records whose recorded_at falls inside
// [start, end], oldest first. Timestamps come back in storage form.
func (r *SQLRecordRepository) FetchRecords(ctx context.Context, start, end time.Time) ([]emotions.EmotionRecord, error) {
	const query = `
		SELECT id, conversation_id, recorded_at, summary, detections_payload
		FROM emotion_records
		WHERE recorded_at >= ? AND recorded_at <= ?
		ORDER BY recorded_at ASC, id ASC`

	queryStart := time.Now()
	rows, err := r.db.QueryContext(ctx, query, start.UTC().Format(storageLayout), end.UTC().Format(storageLayout))
	if err != nil {
		return nil, fmt.Errorf("failed to query emotion records: %w", err)
	}
	defer rows.Close()

	records := make([]emotions.EmotionRecord, 0)
	for rows.Next() {
		record, err := r.scanRecord(rows)
		if err != nil {
			return nil, err
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read emotion records: %w", err)
	}

	database.CheckAndLogSlowQuery(r.logger, query, time.Since(queryStart))
	return records, nil
}

func (r *SQLRecordRepository) scanRecord(rows *sql.Rows) (emotions.EmotionRecord, error) {
	var record emotions.EmotionRecord
	var conversationID, summary sql.NullString
	var payload string

	if err := rows.Scan(&record.ID, &conversationID, &record.Timestamp, &summary, &payload); err != nil {
		return record, fmt.Errorf("failed to scan emotion record: %w", err)
	}
	record.ConversationID = conversationID.String
	record.Summary = summary.String

	// A corrupt payload keeps the record but drops its detections.
	if err := json.Unmarshal([]byte(payload), &record.DetectedEmotions); err != nil {
		r.logger.Database().Warn("Invalid detections payload", "recordId", record.ID, "error", err)
		record.DetectedEmotions = nil
	}
	return record, nil
}

// StoreRecords inserts records in one transaction. Records without an id get
// a ULID; an existing id is replaced. Timestamps are validated and rewritten
// to storage form, and the stored records are returned.
func (r *SQLRecordRepository) StoreRecords(ctx context.Context, records []emotions.EmotionRecord) ([]emotions.EmotionRecord, error) {
	const query = `
		INSERT OR REPLACE INTO emotion_records (id, conversation_id, recorded_at, summary, detections_payload)
		VALUES (?, ?, ?, ?, ?)`

	prepared := make([]emotions.EmotionRecord, 0, len(records))
	for i, record := range records {
		at, err := emotions.ParseTimestamp(record.Timestamp)
		if err != nil {
			return nil, fmt.Errorf("record %d: %w", i, err)
		}
		if record.ID == "" {
			record.ID = security.GenerateULID()
		}
		record.Timestamp = at.Format(storageLayout)
		if record.DetectedEmotions == nil {
			record.DetectedEmotions = []emotions.EmotionDetection{}
		}
		prepared = append(prepared, record)
	}

	start := time.Now()
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return nil, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, query)
	if err != nil {
		return nil, fmt.Errorf("failed to prepare insert: %w", err)
	}
	defer stmt.Close()

	for _, record := range prepared {
		payload, err := json.Marshal(record.DetectedEmotions)
		if err != nil {
			return nil, fmt.Errorf("failed to encode detections for %s: %w", record.ID, err)
		}
		if _, err := stmt.ExecContext(ctx, record.ID, nullString(record.ConversationID), record.Timestamp, nullString(record.Summary), string(payload)); err != nil {
			return nil, fmt.Errorf("failed to insert record %s: %w", record.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("failed to commit records: %w", err)
	}

	duration := time.Since(start)
	database.CheckAndLogSlowQuery(r.logger, "BULK_INSERT_EMOTION_RECORDS", duration)
	r.logger.Database().Info("Emotion records stored", "count", len(prepared), "duration", duration)
	return prepared, nil
}

// CountRecords returns the number of stored records.
func (r *SQLRecordRepository) CountRecords(ctx context.Context) (int, error) {
	var count int
	if err := r.db.QueryRowContext(ctx, `SELECT COUNT(*) FROM emotion_records`).Scan(&count); err != nil {
		return 0, fmt.Errorf("failed to count emotion records: %w", err)
	}
	return count, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
