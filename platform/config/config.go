// Package config provides application configuration loading.
// This is part of the platform layer and contains no business logic.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// =============================================================================
// Module-Specific Config Interfaces (Principle of Least Privilege)
// =============================================================================

// DatabaseConfig provides database connection settings.
type DatabaseConfig interface {
	GetDatabaseURL() string
}

// JWTConfig provides JWT validation settings for middleware.
type JWTConfig interface {
	GetJWTAccessSecret() string
}

// HTTPConfig provides settings for the HTTP server.
type HTTPConfig interface {
	GetHTTPAddr() string
	GetCORSAllowAll() bool
	GetCORSOrigins() []string
	GetCORSAllowCreds() bool
}

// SchedulerConfig provides Redis/asynq settings for background work.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// AcquisitionConfig provides tuning for the lead acquisition orchestrator.
type AcquisitionConfig interface {
	GetDirectoryPageSize() int
	GetDirectoryPageCap() int
	GetDirectoryPageDelay() time.Duration
	GetMaxTargetCount() int
	GetAcquisitionLockTTL() time.Duration
	GetAcquisitionTimeout() time.Duration
	GetReservationTimeout() time.Duration
}

// DirectoryConfig provides settings for the AI-backed directory source.
type DirectoryConfig interface {
	GetDirectoryProvider() string
	GetDirectoryModel() string
	GetGeminiAPIKey() string
	GetMoonshotAPIKey() string
	GetDirectoryRetries() int
	GetDirectoryRetryBackoff() time.Duration
	GetDirectoryRatePerSecond() float64
}

// PipelineConfig provides settings for the CRM pipeline and the recycler.
type PipelineConfig interface {
	GetRecycleCooldown() time.Duration
	GetRecycleSweepInterval() time.Duration
	GetRecycleSweepBatch() int
}

// CatalogConfig provides the optional catalog override path.
type CatalogConfig interface {
	GetCatalogPath() string
}

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration.
type Config struct {
	Env                    string
	HTTPAddr               string
	DatabaseURL            string
	JWTAccessSecret        string
	CORSAllowAll           bool
	CORSOrigins            []string
	CORSAllowCreds         bool
	RedisURL               string
	RedisTLSInsecure       bool
	AsynqQueueName         string
	AsynqConcurrency       int
	DirectoryProvider      string
	DirectoryModel         string
	GeminiAPIKey           string
	MoonshotAPIKey         string
	DirectoryPageSize      int
	DirectoryPageCap       int
	DirectoryPageDelay     time.Duration
	DirectoryRetries       int
	DirectoryRetryBackoff  time.Duration
	DirectoryRatePerSecond float64
	MaxTargetCount         int
	AcquisitionLockTTL     time.Duration
	AcquisitionTimeout     time.Duration
	ReservationTimeout     time.Duration
	RecycleCooldown        time.Duration
	RecycleSweepInterval   time.Duration
	RecycleSweepBatch      int
	CatalogPath            string
}

// =============================================================================
// Interface Implementations
// =============================================================================

// DatabaseConfig implementation
func (c *Config) GetDatabaseURL() string { return c.DatabaseURL }

// JWTConfig implementation
func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

// HTTPConfig implementation
func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

// SchedulerConfig implementation
func (c *Config) GetRedisURL() string       { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int  { return c.AsynqConcurrency }

// AcquisitionConfig implementation
func (c *Config) GetDirectoryPageSize() int            { return c.DirectoryPageSize }
func (c *Config) GetDirectoryPageCap() int             { return c.DirectoryPageCap }
func (c *Config) GetDirectoryPageDelay() time.Duration { return c.DirectoryPageDelay }
func (c *Config) GetMaxTargetCount() int               { return c.MaxTargetCount }
func (c *Config) GetAcquisitionLockTTL() time.Duration { return c.AcquisitionLockTTL }
func (c *Config) GetAcquisitionTimeout() time.Duration { return c.AcquisitionTimeout }
func (c *Config) GetReservationTimeout() time.Duration { return c.ReservationTimeout }

// DirectoryConfig implementation
func (c *Config) GetDirectoryProvider() string            { return c.DirectoryProvider }
func (c *Config) GetDirectoryModel() string               { return c.DirectoryModel }
func (c *Config) GetGeminiAPIKey() string                 { return c.GeminiAPIKey }
func (c *Config) GetMoonshotAPIKey() string               { return c.MoonshotAPIKey }
func (c *Config) GetDirectoryRetries() int                { return c.DirectoryRetries }
func (c *Config) GetDirectoryRetryBackoff() time.Duration { return c.DirectoryRetryBackoff }
func (c *Config) GetDirectoryRatePerSecond() float64      { return c.DirectoryRatePerSecond }

// PipelineConfig implementation
func (c *Config) GetRecycleCooldown() time.Duration      { return c.RecycleCooldown }
func (c *Config) GetRecycleSweepInterval() time.Duration { return c.RecycleSweepInterval }
func (c *Config) GetRecycleSweepBatch() int              { return c.RecycleSweepBatch }

// CatalogConfig implementation
func (c *Config) GetCatalogPath() string { return c.CatalogPath }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:5173"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	cfg := &Config{
		Env:                    getEnv("APP_ENV", "development"),
		HTTPAddr:               getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:            getEnv("DATABASE_URL", ""),
		JWTAccessSecret:        getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:           corsAllowAll,
		CORSOrigins:            corsOrigins,
		CORSAllowCreds:         strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "true"), "true"),
		RedisURL:               getEnv("REDIS_URL", ""),
		RedisTLSInsecure:       strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:         getEnv("ASYNQ_QUEUE", "default"),
		AsynqConcurrency:       positiveInt(getEnv("ASYNQ_CONCURRENCY", ""), 10),
		DirectoryProvider:      strings.ToLower(getEnv("DIRECTORY_PROVIDER", "gemini")),
		DirectoryModel:         getEnv("DIRECTORY_MODEL", ""),
		GeminiAPIKey:           getEnv("GEMINI_API_KEY", ""),
		MoonshotAPIKey:         getEnv("MOONSHOT_API_KEY", ""),
		DirectoryPageSize:      positiveInt(getEnv("DIRECTORY_PAGE_SIZE", ""), 20),
		DirectoryPageCap:       positiveInt(getEnv("DIRECTORY_PAGE_CAP", ""), 5),
		DirectoryPageDelay:     durationOr(getEnv("DIRECTORY_PAGE_DELAY", ""), 1500*time.Millisecond),
		DirectoryRetries:       positiveInt(getEnv("DIRECTORY_RETRIES", ""), 3),
		DirectoryRetryBackoff:  durationOr(getEnv("DIRECTORY_RETRY_BACKOFF", ""), 250*time.Millisecond),
		DirectoryRatePerSecond: positiveFloat(getEnv("DIRECTORY_RATE_PER_SECOND", ""), 2),
		MaxTargetCount:         positiveInt(getEnv("ACQUISITION_MAX_TARGET", ""), 100),
		AcquisitionLockTTL:     durationOr(getEnv("ACQUISITION_LOCK_TTL", ""), 10*time.Minute),
		AcquisitionTimeout:     durationOr(getEnv("ACQUISITION_TIMEOUT", ""), 8*time.Minute),
		ReservationTimeout:     durationOr(getEnv("QUOTA_RESERVATION_TIMEOUT", ""), 15*time.Minute),
		RecycleCooldown:        durationOr(getEnv("RECYCLE_COOLDOWN", ""), 45*24*time.Hour),
		RecycleSweepInterval:   durationOr(getEnv("RECYCLE_SWEEP_INTERVAL", ""), time.Hour),
		RecycleSweepBatch:      positiveInt(getEnv("RECYCLE_SWEEP_BATCH", ""), 200),
		CatalogPath:            getEnv("CATALOG_PATH", ""),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}
	if cfg.AcquisitionTimeout >= cfg.AcquisitionLockTTL || cfg.AcquisitionTimeout >= cfg.ReservationTimeout {
		return nil, fmt.Errorf("ACQUISITION_TIMEOUT must be shorter than ACQUISITION_LOCK_TTL and QUOTA_RESERVATION_TIMEOUT")
	}
	switch cfg.DirectoryProvider {
	case "gemini", "moonshot":
	default:
		return nil, fmt.Errorf("DIRECTORY_PROVIDER must be gemini or moonshot, got %q", cfg.DirectoryProvider)
	}

	return cfg, nil
}

func getEnv(key, fallback string) string {
	if val, ok := os.LookupEnv(key); ok {
		return val
	}
	return fallback
}

func durationOr(value string, fallback time.Duration) time.Duration {
	d, err := time.ParseDuration(strings.TrimSpace(value))
	if err != nil || d <= 0 {
		return fallback
	}
	return d
}

func positiveInt(value string, fallback int) int {
	parsed, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func positiveFloat(value string, fallback float64) float64 {
	parsed, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil || parsed <= 0 {
		return fallback
	}
	return parsed
}

func splitCSV(value string) []string {
	parts := strings.Split(value, ",")
	results := make([]string, 0, len(parts))
	for _, part := range parts {
		trimmed := strings.TrimSpace(part)
		if trimmed != "" {
			results = append(results, trimmed)
		}
	}
	return results
}

func containsWildcard(values []string) bool {
	for _, value := range values {
		if value == "*" {
			return true
		}
	}
	return false
}
