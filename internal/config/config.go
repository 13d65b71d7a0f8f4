// Package config provides centralized configuration management for csvtool.
// It loads configuration from environment variables with sensible defaults and
// validates all settings on startup to fail fast on misconfiguration.
// Command-line flags override the values loaded here.
package config

import (
	"strconv"
	"time"
)

// Config holds all application configuration.
// All settings can be configured via environment variables.
type Config struct {
	Transform TransformConfig
	Input     InputConfig
	Server    ServerConfig
	Database  DatabaseConfig
	Security  SecurityConfig
	Logging   LoggingConfig
}

// TransformConfig holds defaults for the transform and profile commands.
type TransformConfig struct {
	// KeyColumn is the column validated as a client matter code (default: ClientMatterCode)
	KeyColumn string `env:"CSVTOOL_DEFAULT_KEY" default:"ClientMatterCode"`

	// Case is the case conversion: lower, upper, proper, none (default: none)
	Case string `env:"CSVTOOL_DEFAULT_CASE" default:"none"`

	// Duplicates is the duplicate handling: keep-first, error (default: error)
	Duplicates string `env:"CSVTOOL_DEFAULT_DUPLICATES" default:"error"`
}

// InputConfig holds file reading settings.
type InputConfig struct {
	// MaxFileSize is the maximum accepted input size in bytes (default: 100MB)
	MaxFileSize int64 `env:"CSVTOOL_MAX_FILE_SIZE" default:"104857600"`

	// ExcelSheet selects the worksheet to read; empty means the first sheet
	ExcelSheet string `env:"CSVTOOL_EXCEL_SHEET"`
}

// ServerConfig holds HTTP server settings for the serve command.
type ServerConfig struct {
	// Host is the interface to bind to (default: 127.0.0.1)
	Host string `env:"SERVER_HOST" default:"127.0.0.1"`

	// Port is the port to listen on (default: 8080)
	Port int `env:"SERVER_PORT" default:"8080"`

	// ReadTimeout is the maximum duration for reading request body (default: 30s)
	ReadTimeout time.Duration `env:"SERVER_READ_TIMEOUT" default:"30s"`

	// WriteTimeout is the maximum duration for writing a response (default: 60s)
	WriteTimeout time.Duration `env:"SERVER_WRITE_TIMEOUT" default:"60s"`

	// IdleTimeout is the keep-alive timeout (default: 60s)
	IdleTimeout time.Duration `env:"SERVER_IDLE_TIMEOUT" default:"60s"`

	// ShutdownTimeout is the maximum duration to wait for graceful shutdown (default: 30s)
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" default:"30s"`

	// RequestTimeout is the middleware timeout for requests (default: 60s)
	RequestTimeout time.Duration `env:"SERVER_REQUEST_TIMEOUT" default:"60s"`

	// RateLimitPerMinute is the per-client request limit; 0 disables it (default: 100)
	RateLimitPerMinute int `env:"SERVER_RATE_LIMIT_PER_MINUTE" default:"100"`

	// MaxConcurrentJobs is the maximum number of profile/transform jobs run at once (default: 4)
	MaxConcurrentJobs int `env:"CSVTOOL_MAX_CONCURRENT_JOBS" default:"4"`

	// JobWaitTime is how long a job waits for a free slot before rejection (default: 30s)
	JobWaitTime time.Duration `env:"CSVTOOL_JOB_WAIT_TIME" default:"30s"`
}

// DatabaseConfig holds the optional run history database settings.
type DatabaseConfig struct {
	// URL is the PostgreSQL connection string. Empty keeps run history in memory.
	// Supports both DATABASE_URL and DB_URL env vars for compatibility
	URL string `env:"DATABASE_URL" envAlt:"DB_URL"`

	// MaxConns is the maximum number of connections in the pool (default: 4)
	MaxConns int `env:"DB_MAX_CONNS" default:"4"`

	// MinConns is the minimum number of connections to keep open (default: 0)
	MinConns int `env:"DB_MIN_CONNS" default:"0"`

	// MaxConnLifetime is the maximum lifetime of a connection (default: 1h)
	MaxConnLifetime time.Duration `env:"DB_MAX_CONN_LIFETIME" default:"1h"`
}

// SecurityConfig holds HTTP access settings.
type SecurityConfig struct {
	// APIKeys are accepted in the X-API-Key header. Empty disables authentication.
	// Comma-separated list
	APIKeys []string `env:"CSVTOOL_API_KEYS"`

	// TrustedProxies are CIDRs (or single IPs) whose X-Real-IP and
	// X-Forwarded-For headers are believed. Comma-separated list
	TrustedProxies []string `env:"TRUSTED_PROXIES"`
}

// RequireAPIKey reports whether requests must carry an API key.
func (c *SecurityConfig) RequireAPIKey() bool {
	return len(c.APIKeys) > 0
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	// Level is the minimum log level: debug, info, warn, error (default: warn)
	Level string `env:"LOG_LEVEL" default:"warn"`

	// Format is the log format: text or json (default: text)
	Format string `env:"LOG_FORMAT" default:"text"`
}

// Addr returns the server listen address in host:port format.
func (c *ServerConfig) Addr() string {
	return c.Host + ":" + strconv.Itoa(c.Port)
}

// HistoryEnabled reports whether runs are persisted to PostgreSQL.
func (c *DatabaseConfig) HistoryEnabled() bool {
	return c.URL != ""
}
