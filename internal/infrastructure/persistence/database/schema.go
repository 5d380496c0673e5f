package database

import (
	"database/sql"
	"fmt"
)

// TableCreator handles the creation of the record store schema.
type TableCreator struct{}

func NewTableCreator() *TableCreator {
	return &TableCreator{}
}

// CreateSchema executes all necessary queries to build the tables and
// indexes. It is safe to run on every startup.
func (tc *TableCreator) CreateSchema(db *sql.DB) error {
	for _, tableSQL := range tables {
		if _, err := db.Exec(tableSQL); err != nil {
			return fmt.Errorf("failed to create table for query [%s]: %w", tableSQL, err)
		}
	}
	for _, indexSQL := range indexes {
		if _, err := db.Exec(indexSQL); err != nil {
			return fmt.Errorf("failed to create index for query [%s]: %w", indexSQL, err)
		}
	}
	return nil
}

// recorded_at holds UTC "YYYY-MM-DD HH:MM:SS" text so range filters compare
// lexically.
var tables = []string{
	`CREATE TABLE IF NOT EXISTS emotion_records (id TEXT PRIMARY KEY, conversation_id TEXT, recorded_at TEXT NOT NULL, summary TEXT, detections_payload TEXT NOT NULL, created_at TIMESTAMP NOT NULL DEFAULT CURRENT_TIMESTAMP)`,
}

var indexes = []string{
	`CREATE INDEX IF NOT EXISTS idx_emotion_records_recorded_at ON emotion_records(recorded_at)`,
	`CREATE INDEX IF NOT EXISTS idx_emotion_records_conversation_id ON emotion_records(conversation_id)`,
}
