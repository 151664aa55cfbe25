// Package config provides centralized default values for the storefront state service
package config

import (
	"log"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/joho/godotenv"
)

var envLoaded sync.Once

// loadEnvFile applies .env overrides without clobbering variables already set in the environment
func loadEnvFile() {
	envLoaded.Do(func() {
		if err := godotenv.Load(); err != nil {
			return
		}
		log.Println("Loaded configuration overrides from .env file")
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
			log.Printf("Config override: %s=%s (default: %s)", key, redact(key, val), redact(key, defaultValue))
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

func getEnvList(key string, defaultValue []string) []string {
	valStr := os.Getenv(key)
	if valStr == "" {
		return defaultValue
	}
	var out []string
	for _, part := range strings.Split(valStr, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	log.Printf("Config override: %s=%v", key, out)
	return out
}

// redact keeps secrets out of the override log
func redact(key, val string) string {
	upper := strings.ToUpper(key)
	if val == "" {
		return val
	}
	if strings.Contains(upper, "SECRET") || strings.Contains(upper, "PASSWORD") || strings.Contains(upper, "TOKEN") || strings.Contains(upper, "DSN") {
		return "****"
	}
	return val
}

// Storage drivers accepted by STORAGE_DRIVER
const (
	StorageMemory   = "memory"
	StorageSQLite   = "sqlite"
	StorageTurso    = "turso"
	StoragePostgres = "postgres"
	StorageRedis    = "redis"
)

var (
	// Server Configuration
	Port               string
	ServerReadTimeout  time.Duration
	ServerWriteTimeout time.Duration
	ServerIdleTimeout  time.Duration
	CORSOrigins        []string
	SysopPassword      string

	// Remote API
	APIBaseURL string
	APITimeout time.Duration

	// Persistent key-value bridge
	StorageDriver  string
	SQLitePath     string
	TursoDatabase  string
	TursoToken     string
	PostgresDSN    string
	RedisAddr      string
	StorageSecret  string
	StorageTimeout time.Duration

	// Database Pool
	DBMaxOpenConns           int
	DBMaxIdleConns           int
	DBConnMaxLifetimeMinutes int
	DBConnMaxIdleMinutes     int

	// Profiles
	MaxProfiles        int
	ProfileIdleTimeout time.Duration
	CleanupInterval    time.Duration
	EventBufferSize    int

	// Logging
	LogDirectory     string
	LogToFile        bool
	LogToConsole     bool
	LogJSON          bool
	LogLevel         string
	LogIncludeSource bool

	// Tracing
	TraceExporter string
	OTLPEndpoint  string
	ServiceName   string
)

func init() {
	Load()
}

// Load (re)reads every setting from the environment. Tests call it after t.Setenv.
func Load() {
	loadEnvFile()

	// Server Configuration
	Port = getEnvString("PORT", "8080")
	ServerReadTimeout = getEnvDuration("SERVER_READ_TIMEOUT", 15*time.Second)
	ServerWriteTimeout = getEnvDuration("SERVER_WRITE_TIMEOUT", 15*time.Second)
	ServerIdleTimeout = getEnvDuration("SERVER_IDLE_TIMEOUT", 60*time.Second)
	CORSOrigins = getEnvList("CORS_ORIGINS", []string{
		"http://localhost:3000",
		"http://localhost:5173",
		"http://127.0.0.1:3000",
		"http://127.0.0.1:5173",
		"http://[::1]:3000",
		"http://[::1]:5173",
	})
	SysopPassword = getEnvString("SYSOP_PASSWORD", "")

	// Remote API
	APIBaseURL = getEnvString("API_BASE_URL", "http://localhost:5000/api")
	APITimeout = getEnvDuration("API_TIMEOUT", 10*time.Second)

	// Persistent key-value bridge
	StorageDriver = strings.ToLower(getEnvString("STORAGE_DRIVER", StorageSQLite))
	SQLitePath = getEnvString("SQLITE_PATH", "data/storefront.db")
	TursoDatabase = getEnvString("TURSO_DATABASE_URL", "")
	TursoToken = getEnvString("TURSO_AUTH_TOKEN", "")
	PostgresDSN = getEnvString("POSTGRES_DSN", "")
	RedisAddr = getEnvString("REDIS_ADDR", "localhost:6379")
	StorageSecret = getEnvString("STORAGE_SECRET", "")
	StorageTimeout = getEnvDuration("STORAGE_TIMEOUT", 5*time.Second)

	// Database Pool
	DBMaxOpenConns = getEnvInt("DB_MAX_OPEN_CONNS", 10)
	DBMaxIdleConns = getEnvInt("DB_MAX_IDLE_CONNS", 3)
	DBConnMaxLifetimeMinutes = getEnvInt("DB_CONN_MAX_LIFETIME_MINUTES", 30)
	DBConnMaxIdleMinutes = getEnvInt("DB_CONN_MAX_IDLE_MINUTES", 3)

	// Profiles
	MaxProfiles = getEnvInt("MAX_PROFILES", 5000)
	ProfileIdleTimeout = getEnvDuration("PROFILE_IDLE_TIMEOUT", 30*time.Minute)
	CleanupInterval = getEnvDuration("CLEANUP_INTERVAL", 5*time.Minute)
	EventBufferSize = getEnvInt("EVENT_BUFFER_SIZE", 16)

	// Logging
	LogDirectory = getEnvString("LOG_DIRECTORY", "logs")
	LogToFile = getEnvBool("LOG_TO_FILE", false)
	LogToConsole = getEnvBool("LOG_TO_CONSOLE", true)
	LogJSON = getEnvBool("LOG_JSON", true)
	LogLevel = getEnvString("LOG_LEVEL", "info")
	LogIncludeSource = getEnvBool("LOG_INCLUDE_SOURCE", false)

	// Tracing
	TraceExporter = strings.ToLower(getEnvString("TRACE_EXPORTER", "none"))
	OTLPEndpoint = getEnvString("OTEL_EXPORTER_OTLP_ENDPOINT", "localhost:4317")
	ServiceName = getEnvString("OTEL_SERVICE_NAME", "storefront-go")
}
