// Package config provides centralized default values for emotrack
package config

import (
	"bufio"
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"
)

var envLoaded sync.Once

func loadEnvFile() {
	envLoaded.Do(func() {
		file, err := os.Open(".env")
		if err != nil {
			return
		}
		defer file.Close()

		log.Println("Loading configuration overrides from .env file...")
		scanner := bufio.NewScanner(file)
		for scanner.Scan() {
			line := strings.TrimSpace(scanner.Text())

			if line == "" || strings.HasPrefix(line, "#") {
				continue
			}

			parts := strings.SplitN(line, "=", 2)
			if len(parts) != 2 {
				continue
			}

			key := strings.TrimSpace(parts[0])
			value := strings.TrimSpace(parts[1])

			if os.Getenv(key) == "" {
				os.Setenv(key, value)
			}
		}
	})
}

func getEnvInt(key string, defaultValue int) int {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.Atoi(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%d (default: %d)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvString(key string, defaultValue string) string {
	if val := os.Getenv(key); val != "" {
		if val != defaultValue {
			log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
		}
		return val
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseBool(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%t (default: %t)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := strconv.ParseFloat(valStr, 64); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%g (default: %g)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valStr := os.Getenv(key); valStr != "" {
		if val, err := time.ParseDuration(valStr); err == nil {
			if val != defaultValue {
				log.Printf("Config override: %s=%s (default: %s)", key, val, defaultValue)
			}
			return val
		}
	}
	return defaultValue
}

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration
	CORSAllowedOrigins []string

	// Cache Configuration
	ResultCacheTTL      time.Duration
	ResultCacheCapacity int
	RecordCacheTTL      time.Duration
	RecordCacheCapacity int
	CacheSweepInterval  time.Duration
	CacheSweepVerbose   bool
	WarmOnStartup       bool

	// Record Source
	RecordSource      string
	SQLitePath        string
	TursoDatabaseURL  string
	TursoAuthToken    string
	RecordsFile       string
	MockRecordsPerDay int
	MockSeed          int

	// Database Pool
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeMinutes int
	DBConnMaxIdleMinutes     int
	SlowQueryThreshold       time.Duration

	// Analysis
	AnalysisTimezone string
	TrendThreshold   float64

	// Security
	AdminJWTSecret string

	// Logging
	LogLevel      string
	LogDirectory  string
	LogToFile     bool
	LogJSONFormat bool

	// Live notifications
	LiveHeartbeatInterval time.Duration
	LiveMaxClients        int
)

func init() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)
	CORSAllowedOrigins = strings.Split(getEnvString("CORS_ALLOWED_ORIGINS", "http://localhost:3000,http://localhost:5173"), ",")

	// Cache Configuration
	ResultCacheTTL = time.Duration(getEnvInt("RESULT_CACHE_TTL_MINUTES", 5)) * time.Minute
	ResultCacheCapacity = getEnvInt("RESULT_CACHE_CAPACITY", 50)
	RecordCacheTTL = time.Duration(getEnvInt("RECORD_CACHE_TTL_MINUTES", 10)) * time.Minute
	RecordCacheCapacity = getEnvInt("RECORD_CACHE_CAPACITY", 20)
	CacheSweepInterval = getEnvDuration("CACHE_SWEEP_INTERVAL", time.Minute)
	CacheSweepVerbose = getEnvBool("CACHE_SWEEP_VERBOSE", false)
	WarmOnStartup = getEnvBool("CACHE_WARM_ON_STARTUP", true)

	// Record Source
	RecordSource = getEnvString("RECORD_SOURCE", "sqlite")
	SQLitePath = getEnvString("SQLITE_PATH", "db/emotrack.db")
	TursoDatabaseURL = getEnvString("TURSO_DATABASE_URL", "")
	TursoAuthToken = getEnvString("TURSO_AUTH_TOKEN", "")
	RecordsFile = getEnvString("RECORDS_FILE", "data/records.json")
	MockRecordsPerDay = getEnvInt("MOCK_RECORDS_PER_DAY", 3)
	MockSeed = getEnvInt("MOCK_SEED", 42)

	// Database Pool
	DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 3)
	DBConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	DBConnMaxIdleMinutes = getEnvInt("DB_CONN_MAX_IDLE_MINUTES", 3)
	SlowQueryThreshold = getEnvDuration("SLOW_QUERY_THRESHOLD", 200*time.Millisecond)

	// Analysis
	AnalysisTimezone = getEnvString("ANALYSIS_TIMEZONE", "UTC")
	TrendThreshold = getEnvFloat("TREND_THRESHOLD", 0.1)

	// Security
	AdminJWTSecret = getEnvString("ADMIN_JWT_SECRET", "")

	// Logging
	LogLevel = getEnvString("LOG_LEVEL", "INFO")
	LogDirectory = getEnvString("LOG_DIRECTORY", "logs")
	LogToFile = getEnvBool("LOG_TO_FILE", false)
	LogJSONFormat = getEnvBool("LOG_JSON_FORMAT", true)

	// Live notifications
	LiveHeartbeatInterval = getEnvDuration("LIVE_HEARTBEAT_INTERVAL", 30*time.Second)
	LiveMaxClients = getEnvInt("LIVE_MAX_CLIENTS", 100)
}
