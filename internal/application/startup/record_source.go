package startup

import (
	"context"
	"fmt"
	"time"

	"github.com/AtRiskMedia/emotrack-go/internal/application/services"
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/observability/logging"
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/persistence/database"
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/persistence/records"
	"github.com/AtRiskMedia/emotrack-go/internal/infrastructure/security"
	"github.com/AtRiskMedia/emotrack-go/pkg/config"
)

const (
	SourceSQLite = "sqlite"
	SourceTurso  = "turso"
	SourceFile   = "file"
	SourceMock   = "mock"

	connectionCheckTimeout = 10 * time.Second
)

// openedSource is the configured record source plus its optional ingest side.
type openedSource struct {
	Name   string
	Source services.RecordSource
	Store  *records.SQLRecordRepository
	db     *database.DB
}

func (s *openedSource) Close() error {
	if s.db != nil {
		return s.db.Close()
	}
	return nil
}

func openRecordSource(kind string, location *time.Location, logger *logging.ChanneledLogger) (*openedSource, error) {
	switch kind {
	case SourceSQLite, SourceTurso:
		dbConfig := database.Config{SQLitePath: config.SQLitePath}
		if kind == SourceTurso {
			if config.TursoDatabaseURL == "" {
				return nil, fmt.Errorf("RECORD_SOURCE=turso requires TURSO_DATABASE_URL")
			}
			dbConfig.TursoURL = config.TursoDatabaseURL
			dbConfig.TursoToken = config.TursoAuthToken
		}

		db, err := database.Open(dbConfig, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to open record database: %w", err)
		}
		verifyCtx, cancel := context.WithTimeout(context.Background(), connectionCheckTimeout)
		err = db.Verify(verifyCtx, logger)
		cancel()
		if err != nil {
			db.Close()
			return nil, err
		}
		if err := database.NewTableCreator().CreateSchema(db.DB); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to create record schema: %w", err)
		}

		repo := records.NewSQLRecordRepository(db, logger)
		return &openedSource{Name: db.ConnectionInfo(), Source: repo, Store: repo, db: db}, nil

	case SourceFile:
		return &openedSource{Name: "file:" + config.RecordsFile, Source: records.NewFileRecordSource(config.RecordsFile)}, nil

	case SourceMock:
		return &openedSource{Name: "mock", Source: records.NewMockRecordSource(int64(config.MockSeed), config.MockRecordsPerDay, location)}, nil

	default:
		return nil, fmt.Errorf("unknown RECORD_SOURCE %q (want sqlite, turso, file or mock)", kind)
	}
}

// resolveAdminSecret returns ADMIN_JWT_SECRET, or generates a secret for this
// process and prints a token signed with it.
func resolveAdminSecret(logger *logging.ChanneledLogger) (string, error) {
	if config.AdminJWTSecret != "" {
		return config.AdminJWTSecret, nil
	}

	secret, err := security.GenerateSecureKey(64)
	if err != nil {
		return "", err
	}
	token, err := security.GenerateAdminToken("startup", secret, 24*time.Hour)
	if err != nil {
		return "", err
	}
	logger.Startup().Warn("ADMIN_JWT_SECRET not set, generated a secret for this process; admin tokens will not survive a restart")
	fmt.Printf("Admin token (valid 24h): %s\n", token)
	return secret, nil
}
