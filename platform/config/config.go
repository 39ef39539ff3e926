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
	GetMigrationsDir() string
}

// JWTConfig provides JWT validation settings for the admin middleware.
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

// RateLimitConfig provides limits for the public intake endpoints.
type RateLimitConfig interface {
	GetIntakeRatePerMinute() float64
	GetIntakeRateBurst() int
}

// EmailConfig provides settings for email sending.
type EmailConfig interface {
	GetEmailEnabled() bool
	GetEmailProvider() string
	GetSMTPHost() string
	GetSMTPPort() int
	GetSMTPUsername() string
	GetSMTPPassword() string
	GetSendGridAPIKey() string
	GetEmailFromName() string
	GetEmailFromAddress() string
}

// NotificationConfig provides settings for the notifier.
type NotificationConfig interface {
	GetLeadNotificationEmail() string
	GetAppBaseURL() string
}

// AnalysisConfig provides settings for the external analysis engine.
type AnalysisConfig interface {
	GetAnalysisEngineURL() string
	GetAnalysisTimeout() time.Duration
	GetEnrichmentDispatchMode() string
}

// SchedulerConfig provides settings for the asynq task queue.
type SchedulerConfig interface {
	GetRedisURL() string
	GetRedisTLSInsecure() bool
	GetAsynqQueueName() string
	GetAsynqConcurrency() int
}

// StorageConfig provides settings for MinIO S3-compatible storage.
type StorageConfig interface {
	GetMinIOEndpoint() string
	GetMinIOAccessKey() string
	GetMinIOSecretKey() string
	GetMinIOUseSSL() bool
	GetMinIOMaxFileSize() int64
	GetMinioBucketMaterials() string
	GetMinioBucketAnalyses() string
	IsMinIOEnabled() bool
}

// PhoneConfig provides the region used to parse national phone numbers.
type PhoneConfig interface {
	GetPhoneDefaultRegion() string
}

const (
	// DispatchInline runs enrichment on a goroutine in the API process.
	DispatchInline = "inline"
	// DispatchQueue enqueues enrichment onto the asynq queue.
	DispatchQueue = "queue"

	EmailProviderSMTP     = "smtp"
	EmailProviderSendGrid = "sendgrid"
)

// =============================================================================
// Main Config Struct
// =============================================================================

// Config holds all application configuration values.
type Config struct {
	Env                   string
	HTTPAddr              string
	DatabaseURL           string
	MigrationsDir         string
	JWTAccessSecret       string
	CORSAllowAll          bool
	CORSOrigins           []string
	CORSAllowCreds        bool
	IntakeRatePerMinute   float64
	IntakeRateBurst       int
	EmailEnabled          bool
	EmailProvider         string
	SMTPHost              string
	SMTPPort              int
	SMTPUsername          string
	SMTPPassword          string
	SendGridAPIKey        string
	EmailFromName         string
	EmailFromAddress      string
	LeadNotificationEmail string
	AppBaseURL            string
	AnalysisEngineURL     string
	AnalysisTimeout       time.Duration
	EnrichmentDispatch    string
	RedisURL              string
	RedisTLSInsecure      bool
	AsynqQueueName        string
	AsynqConcurrency      int
	MinIOEndpoint         string
	MinIOAccessKey        string
	MinIOSecretKey        string
	MinIOUseSSL           bool
	MinIOMaxFileSize      int64
	MinioBucketMaterials  string
	MinioBucketAnalyses   string
	PhoneDefaultRegion    string
}

// =============================================================================
// Interface Implementations
// =============================================================================

func (c *Config) GetDatabaseURL() string   { return c.DatabaseURL }
func (c *Config) GetMigrationsDir() string { return c.MigrationsDir }

func (c *Config) GetJWTAccessSecret() string { return c.JWTAccessSecret }

func (c *Config) GetHTTPAddr() string      { return c.HTTPAddr }
func (c *Config) GetCORSAllowAll() bool    { return c.CORSAllowAll }
func (c *Config) GetCORSOrigins() []string { return c.CORSOrigins }
func (c *Config) GetCORSAllowCreds() bool  { return c.CORSAllowCreds }

func (c *Config) GetIntakeRatePerMinute() float64 { return c.IntakeRatePerMinute }
func (c *Config) GetIntakeRateBurst() int         { return c.IntakeRateBurst }

func (c *Config) GetEmailEnabled() bool       { return c.EmailEnabled }
func (c *Config) GetEmailProvider() string    { return c.EmailProvider }
func (c *Config) GetSMTPHost() string         { return c.SMTPHost }
func (c *Config) GetSMTPPort() int            { return c.SMTPPort }
func (c *Config) GetSMTPUsername() string     { return c.SMTPUsername }
func (c *Config) GetSMTPPassword() string     { return c.SMTPPassword }
func (c *Config) GetSendGridAPIKey() string   { return c.SendGridAPIKey }
func (c *Config) GetEmailFromName() string    { return c.EmailFromName }
func (c *Config) GetEmailFromAddress() string { return c.EmailFromAddress }

func (c *Config) GetLeadNotificationEmail() string { return c.LeadNotificationEmail }
func (c *Config) GetAppBaseURL() string            { return c.AppBaseURL }

func (c *Config) GetAnalysisEngineURL() string      { return c.AnalysisEngineURL }
func (c *Config) GetAnalysisTimeout() time.Duration { return c.AnalysisTimeout }
func (c *Config) GetEnrichmentDispatchMode() string { return c.EnrichmentDispatch }

func (c *Config) GetRedisURL() string        { return c.RedisURL }
func (c *Config) GetRedisTLSInsecure() bool  { return c.RedisTLSInsecure }
func (c *Config) GetAsynqQueueName() string  { return c.AsynqQueueName }
func (c *Config) GetAsynqConcurrency() int   { return c.AsynqConcurrency }

func (c *Config) GetMinIOEndpoint() string        { return c.MinIOEndpoint }
func (c *Config) GetMinIOAccessKey() string       { return c.MinIOAccessKey }
func (c *Config) GetMinIOSecretKey() string       { return c.MinIOSecretKey }
func (c *Config) GetMinIOUseSSL() bool            { return c.MinIOUseSSL }
func (c *Config) GetMinIOMaxFileSize() int64      { return c.MinIOMaxFileSize }
func (c *Config) GetMinioBucketMaterials() string { return c.MinioBucketMaterials }
func (c *Config) GetMinioBucketAnalyses() string  { return c.MinioBucketAnalyses }
func (c *Config) IsMinIOEnabled() bool            { return c.MinIOEndpoint != "" }

func (c *Config) GetPhoneDefaultRegion() string { return c.PhoneDefaultRegion }

// Load reads configuration from environment variables.
func Load() (*Config, error) {
	_ = godotenv.Load()
	return FromLookup(os.LookupEnv)
}

// FromLookup builds a Config from an arbitrary key lookup. Load uses the
// process environment; tests pass a map.
func FromLookup(lookup func(string) (string, bool)) (*Config, error) {
	getEnv := func(key, fallback string) string {
		if val, ok := lookup(key); ok {
			return val
		}
		return fallback
	}

	corsOrigins := splitCSV(getEnv("CORS_ORIGINS", "http://localhost:3000"))
	corsAllowAll := strings.EqualFold(getEnv("CORS_ALLOW_ALL", "false"), "true")
	if containsWildcard(corsOrigins) {
		corsAllowAll = true
	}

	fromAddress := getEnv("EMAIL_FROM_ADDRESS", "hello@filmdecks.biz")

	cfg := &Config{
		Env:                   getEnv("APP_ENV", "development"),
		HTTPAddr:              getEnv("HTTP_ADDR", ":8080"),
		DatabaseURL:           getEnv("DATABASE_URL", ""),
		MigrationsDir:         getEnv("MIGRATIONS_DIR", "migrations"),
		JWTAccessSecret:       getEnv("JWT_ACCESS_SECRET", ""),
		CORSAllowAll:          corsAllowAll,
		CORSOrigins:           corsOrigins,
		CORSAllowCreds:        strings.EqualFold(getEnv("CORS_ALLOW_CREDENTIALS", "false"), "true"),
		IntakeRatePerMinute:   mustFloat(getEnv("INTAKE_RATE_PER_MINUTE", "10")),
		IntakeRateBurst:       mustInt(getEnv("INTAKE_RATE_BURST", "5")),
		EmailEnabled:          strings.EqualFold(getEnv("EMAIL_ENABLED", "false"), "true"),
		EmailProvider:         strings.ToLower(getEnv("EMAIL_PROVIDER", EmailProviderSMTP)),
		SMTPHost:              getEnv("SMTP_HOST", ""),
		SMTPPort:              mustInt(getEnv("SMTP_PORT", "587")),
		SMTPUsername:          getEnv("SMTP_USERNAME", ""),
		SMTPPassword:          getEnv("SMTP_PASSWORD", ""),
		SendGridAPIKey:        getEnv("SENDGRID_API_KEY", ""),
		EmailFromName:         getEnv("EMAIL_FROM_NAME", "FilmDecks"),
		EmailFromAddress:      fromAddress,
		LeadNotificationEmail: getEnv("LEAD_NOTIFICATION_EMAIL", fromAddress),
		AppBaseURL:            getEnv("APP_BASE_URL", "http://localhost:3000"),
		AnalysisEngineURL:     getEnv("ANALYSIS_ENGINE_URL", ""),
		AnalysisTimeout:       mustDuration(getEnv("ANALYSIS_TIMEOUT", "15m")),
		EnrichmentDispatch:    strings.ToLower(getEnv("ENRICHMENT_DISPATCH", DispatchInline)),
		RedisURL:              getEnv("REDIS_URL", ""),
		RedisTLSInsecure:      strings.EqualFold(getEnv("REDIS_TLS_INSECURE", "false"), "true"),
		AsynqQueueName:        getEnv("ASYNQ_QUEUE", "enrichment"),
		AsynqConcurrency:      mustInt(getEnv("ASYNQ_CONCURRENCY", "4")),
		MinIOEndpoint:         getEnv("MINIO_ENDPOINT", ""),
		MinIOAccessKey:        getEnv("MINIO_ACCESS_KEY", ""),
		MinIOSecretKey:        getEnv("MINIO_SECRET_KEY", ""),
		MinIOUseSSL:           strings.EqualFold(getEnv("MINIO_USE_SSL", "false"), "true"),
		MinIOMaxFileSize:      mustInt64(getEnv("MINIO_MAX_FILE_SIZE", "104857600")),
		MinioBucketMaterials:  getEnv("MINIO_BUCKET_MATERIALS", "story-materials"),
		MinioBucketAnalyses:   getEnv("MINIO_BUCKET_ANALYSES", "story-analyses"),
		PhoneDefaultRegion:    strings.ToUpper(getEnv("PHONE_DEFAULT_REGION", "US")),
	}

	if cfg.DatabaseURL == "" {
		return nil, fmt.Errorf("DATABASE_URL is required")
	}
	if cfg.JWTAccessSecret == "" {
		return nil, fmt.Errorf("JWT_ACCESS_SECRET is required")
	}
	if cfg.AnalysisTimeout <= 0 {
		return nil, fmt.Errorf("ANALYSIS_TIMEOUT must be a positive duration")
	}
	switch cfg.EnrichmentDispatch {
	case DispatchInline:
	case DispatchQueue:
		if cfg.RedisURL == "" {
			return nil, fmt.Errorf("REDIS_URL is required when ENRICHMENT_DISPATCH is queue")
		}
	default:
		return nil, fmt.Errorf("ENRICHMENT_DISPATCH must be %q or %q", DispatchInline, DispatchQueue)
	}
	if cfg.EmailEnabled {
		switch cfg.EmailProvider {
		case EmailProviderSMTP:
			if cfg.SMTPHost == "" {
				return nil, fmt.Errorf("SMTP_HOST is required when EMAIL_PROVIDER is smtp")
			}
		case EmailProviderSendGrid:
			if cfg.SendGridAPIKey == "" {
				return nil, fmt.Errorf("SENDGRID_API_KEY is required when EMAIL_PROVIDER is sendgrid")
			}
		default:
			return nil, fmt.Errorf("unknown EMAIL_PROVIDER %q", cfg.EmailProvider)
		}
	}
	if cfg.CORSAllowAll && cfg.CORSAllowCreds {
		return nil, fmt.Errorf("CORS_ALLOW_CREDENTIALS cannot be true when CORS_ALLOW_ALL is true")
	}

	return cfg, nil
}

func mustDuration(value string) time.Duration {
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0
	}
	return d
}

func mustInt(value string) int {
	result, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return 0
	}
	return result
}

func mustInt64(value string) int64 {
	result, err := strconv.ParseInt(value, 10, 64)
	if err != nil {
		return 0
	}
	return result
}

func mustFloat(value string) float64 {
	result, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return result
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
