// Package database provides database helper functions
package database

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/emotrack-go/pkg/config"
)

// TursoDSN builds the libsql connection string.
func TursoDSN(databaseURL, authToken string) string {
	if authToken == "" {
		return databaseURL
	}
	return fmt.Sprintf("%s?authToken=%s", databaseURL, authToken)
}

// Verify runs a trivial query against the pool. libsql connects lazily, so
// Ping alone does not catch a bad Turso URL or token.
func (db *DB) Verify(ctx context.Context, logger *logging.ChanneledLogger) error {
	start := time.Now()
	var one int
	if err := db.QueryRowContext(ctx, "SELECT 1").Scan(&one); err != nil {
		logger.Database().Error("Connection check failed", "connection", db.ConnectionInfo(), "error", err)
		return fmt.Errorf("%s connection check failed: %w", db.Driver, err)
	}
	if one != 1 {
		return fmt.Errorf("%s connection check returned %d", db.Driver, one)
	}
	logger.Database().Info("Connection verified", "connection", db.ConnectionInfo(), "duration", time.Since(start))
	return nil
}

// GetSlowQueryThreshold returns the configured slow query threshold
func GetSlowQueryThreshold() time.Duration {
	return config.SlowQueryThreshold
}

// CheckAndLogSlowQuery logs query on the slow-query channel when duration
// exceeds the threshold. Bulk operations are allowed three times as long.
func CheckAndLogSlowQuery(logger *logging.ChanneledLogger, query string, duration time.Duration) {
	threshold := GetSlowQueryThreshold()
	if strings.HasPrefix(query, "BULK_") {
		threshold *= 3
	}
	if duration > threshold {
		logger.LogSlowQuery(query, duration)
	}
}
