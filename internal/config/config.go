// Package config provides centralized configuration management for the service.
// Settings come from environment variables with defaults, and everything is
// validated on startup so a misconfigured deployment fails fast.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
type Config struct {
	Server     ServerConfig
	Database   DatabaseConfig
	Matching   MatchingConfig
	Oracle     OracleConfig
	Extraction ExtractionConfig
	Cache      CacheConfig
	Rate       RateLimitConfig
	Security   SecurityConfig
	Logging    LoggingConfig
	Tracing    TracingConfig
	Metrics    MetricsConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	// Host is the interface to bind to (default: 0.0.0.0)
	Host string `env:"SERVER_HOST" default:"0.0.0.0"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" envAlt:"PORT" default:"8080"`

	ReadTimeout  time.Duration `env:"SERVER_READ_TIMEOUT" default:"15s"`
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"150s"`
	IdleTimeout  time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout bounds graceful shutdown, including the wait for
	// in-flight match requests (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests. Extraction and
	// oracle calls both run inside it (default: 2m)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"2m"`
}

// DatabaseConfig holds database connection settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string (required)
	URL string `env:"DATABASE_URL" envAlt:"DB_URL" required:"true"`

	MaxConns        int           `env:"DB_MAX_CONNS" default:"20"`
	MinConns        int           `env:"DB_MIN_CONNS" default:"2"`
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
	MaxConnIdleTime time.Duration `env:"DB_MAX_CONN_IDLE_TIME" default:"30m"`

	// AutoMigrate applies embedded schema migrations on startup (default: true)
	AutoMigrate bool `env:"DB_AUTO_MIGRATE" default:"true"`
}

// MatchingConfig controls the line-item matcher.
type MatchingConfig struct {
	// Parallelism is how many line items of one request are matched at once.
	// 1 keeps oracle traffic strictly sequential (default: 1)
	Parallelism int `env:"MATCH_PARALLELISM" default:"1"`

	// MaxConcurrent caps simultaneous match requests (default: 5)
	MaxConcurrent int `env:"MATCH_MAX_CONCURRENT" default:"5"`

	// MaxWaitTime is how long a request waits for a match slot (default: 30s)
	MaxWaitTime time.Duration `env:"MATCH_MAX_WAIT_TIME" default:"30s"`
}

// OracleConfig configures the LLM-backed semantic matcher.
// The oracle is used only when both BaseURL and APIKey are set.
type OracleConfig struct {
	BaseURL string `env:"ORACLE_BASE_URL" envAlt:"OPENAI_BASE_URL"`
	APIKey  string `env:"ORACLE_API_KEY" envAlt:"OPENAI_API_KEY"`
	Model   string `env:"ORACLE_MODEL" default:"gpt-4o-mini"`

	// Timeout bounds a single oracle call including rate-limit wait (default: 15s)
	Timeout time.Duration `env:"ORACLE_TIMEOUT" default:"15s"`

	RatePerSecond float64 `env:"ORACLE_RATE_PER_SECOND" default:"3"`
	Burst         int     `env:"ORACLE_BURST" default:"5"`

	// CacheTTL is how long verdicts stay in Redis when REDIS_URL is set (default: 24h)
	CacheTTL time.Duration `env:"ORACLE_CACHE_TTL" default:"24h"`
}

// Configured reports whether enough settings are present to call the oracle.
func (c *OracleConfig) Configured() bool {
	return c.BaseURL != "" && c.APIKey != ""
}

// ExtractionConfig configures the external document-extraction service.
type ExtractionConfig struct {
	URL     string        `env:"EXTRACTION_URL" envAlt:"OCR_API_URL"`
	APIKey  string        `env:"EXTRACTION_API_KEY" envAlt:"OCR_API_KEY"`
	Timeout time.Duration `env:"EXTRACTION_TIMEOUT" default:"90s"`

	// MaxFileSize is the largest accepted upload in bytes (default: 20MB)
	MaxFileSize int64 `env:"EXTRACTION_MAX_FILE_SIZE" default:"20971520"`
}

// CacheConfig holds the optional Redis connection.
type CacheConfig struct {
	RedisURL string `env:"REDIS_URL"`
}

// RateLimitConfig holds per-IP HTTP rate limiting settings.
type RateLimitConfig struct {
	Enabled           bool `env:"RATE_LIMIT_ENABLED" default:"true"`
	RequestsPerMinute int  `env:"RATE_LIMIT_REQUESTS_PER_MINUTE" default:"100"`
	Burst             int  `env:"RATE_LIMIT_BURST" default:"20"`
}

// SecurityConfig holds security-related settings.
type SecurityConfig struct {
	// TrustedProxies is a comma-separated list of trusted proxy CIDRs
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: info)
	Level string `env:"LOG_LEVEL" default:"info"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// TracingConfig holds OpenTelemetry settings. With no endpoint the
// stdout exporter is used.
type TracingConfig struct {
	Enabled     bool    `env:"OTEL_ENABLED" default:"false"`
	ServiceName string  `env:"OTEL_SERVICE_NAME" default:"stockmatch"`
	Endpoint    string  `env:"OTEL_EXPORTER_OTLP_ENDPOINT"`
	Insecure    bool    `env:"OTEL_EXPORTER_OTLP_INSECURE" default:"false"`
	SampleRatio float64 `env:"OTEL_SAMPLER_RATIO" default:"1"`
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool   `env:"METRICS_ENABLED" default:"true"`
	Path    string `env:"METRICS_PATH" default:"/metrics"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}
