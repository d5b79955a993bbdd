// Package config loads and validates the application configuration from
// defaults, an optional JSON file, and environment variables (in that
// order of increasing precedence).
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"time"

	"skillsprint/adapters/redis"
	"skillsprint/adapters/sqlx"
	"skillsprint/content"
)

// Environment represents the deployment environment
type Environment string

const (
	EnvDevelopment Environment = "development"
	EnvTesting     Environment = "testing"
	EnvStaging     Environment = "staging"
	EnvProduction  Environment = "production"
)

// Config holds the complete application configuration
type Config struct {
	// Environment and profile settings
	Environment Environment `json:"environment" env:"SKILLSPRINT_ENV"`
	Profile     string      `json:"profile" env:"SKILLSPRINT_PROFILE"`

	// Server configuration
	Server ServerConfig `json:"server"`

	// Storage configuration
	Storage StorageConfig `json:"storage"`

	// AI content generation
	Content ContentConfig `json:"content"`

	// Outbound integrations
	Integrations IntegrationsConfig `json:"integrations"`

	// Logging configuration
	Logging LoggingConfig `json:"logging"`

	// Metrics and monitoring
	Metrics MetricsConfig `json:"metrics"`

	// Security configuration
	Security SecurityConfig `json:"security"`
}

// ServerConfig holds HTTP server configuration
type ServerConfig struct {
	Address           string        `json:"address" env:"SKILLSPRINT_SERVER_ADDR"`
	PathPrefix        string        `json:"path_prefix" env:"SKILLSPRINT_SERVER_PATH_PREFIX"`
	CORSOrigin        string        `json:"cors_origin" env:"SKILLSPRINT_SERVER_CORS_ORIGIN"`
	ReadTimeout       time.Duration `json:"read_timeout" env:"SKILLSPRINT_SERVER_READ_TIMEOUT"`
	WriteTimeout      time.Duration `json:"write_timeout" env:"SKILLSPRINT_SERVER_WRITE_TIMEOUT"`
	IdleTimeout       time.Duration `json:"idle_timeout" env:"SKILLSPRINT_SERVER_IDLE_TIMEOUT"`
	ReadHeaderTimeout time.Duration `json:"read_header_timeout" env:"SKILLSPRINT_SERVER_READ_HEADER_TIMEOUT"`
	ShutdownTimeout   time.Duration `json:"shutdown_timeout" env:"SKILLSPRINT_SERVER_SHUTDOWN_TIMEOUT"`
}

// StorageConfig holds storage adapter configuration
type StorageConfig struct {
	Adapter string       `json:"adapter" env:"SKILLSPRINT_STORAGE_ADAPTER"`
	Redis   redis.Config `json:"redis,omitempty"`
	SQL     sqlx.Config  `json:"sql,omitempty"`
	File    FileConfig   `json:"file,omitempty"`
}

// FileConfig holds JSON file storage configuration
type FileConfig struct {
	Path string `json:"path" env:"SKILLSPRINT_STORAGE_FILE_PATH"`
}

// ContentConfig holds AI content generation configuration. When disabled
// the service falls back to built-in lesson and quiz templates.
type ContentConfig struct {
	Enabled     bool          `json:"enabled" env:"SKILLSPRINT_CONTENT_ENABLED"`
	BaseURL     string        `json:"base_url" env:"SKILLSPRINT_CONTENT_BASE_URL"`
	Model       string        `json:"model" env:"SKILLSPRINT_CONTENT_MODEL"`
	APIKey      string        `json:"api_key,omitempty" env:"SKILLSPRINT_CONTENT_API_KEY"`
	Timeout     time.Duration `json:"timeout" env:"SKILLSPRINT_CONTENT_TIMEOUT"`
	MaxAttempts int           `json:"max_attempts" env:"SKILLSPRINT_CONTENT_MAX_ATTEMPTS"`
	BackoffBase time.Duration `json:"backoff_base" env:"SKILLSPRINT_CONTENT_BACKOFF_BASE"`
}

// ClientConfig converts the section into a content client configuration.
func (c ContentConfig) ClientConfig() content.Config {
	return content.Config{
		BaseURL: c.BaseURL,
		Model:   c.Model,
		APIKey:  c.APIKey,
		Timeout: c.Timeout,
	}
}

// RetryConfig converts the section into the content client retry policy.
func (c ContentConfig) RetryConfig() content.RetryConfig {
	rc := content.DefaultRetryConfig()
	if c.MaxAttempts > 0 {
		rc.MaxAttempts = c.MaxAttempts
	}
	if c.BackoffBase > 0 {
		rc.BackoffBase = c.BackoffBase
	}
	return rc
}

// IntegrationsConfig holds outbound integration configuration
type IntegrationsConfig struct {
	Webhook WebhookConfig `json:"webhook,omitempty"`
}

// WebhookConfig holds webhook delivery configuration. Events limits
// delivery to the named event types; empty means all.
type WebhookConfig struct {
	Enabled   bool     `json:"enabled" env:"SKILLSPRINT_WEBHOOK_ENABLED"`
	Endpoints []string `json:"endpoints,omitempty" env:"SKILLSPRINT_WEBHOOK_ENDPOINTS"`
	Events    []string `json:"events,omitempty" env:"SKILLSPRINT_WEBHOOK_EVENTS"`
}

// LoggingConfig holds logging configuration
type LoggingConfig struct {
	Level      string            `json:"level" env:"SKILLSPRINT_LOG_LEVEL"`
	Format     string            `json:"format" env:"SKILLSPRINT_LOG_FORMAT"`
	Output     string            `json:"output" env:"SKILLSPRINT_LOG_OUTPUT"`
	Attributes map[string]string `json:"attributes,omitempty"`
}

// MetricsConfig holds metrics and monitoring configuration
type MetricsConfig struct {
	Enabled       bool   `json:"enabled" env:"SKILLSPRINT_METRICS_ENABLED"`
	Address       string `json:"address" env:"SKILLSPRINT_METRICS_ADDR"`
	Path          string `json:"path" env:"SKILLSPRINT_METRICS_PATH"`
	CollectSystem bool   `json:"collect_system" env:"SKILLSPRINT_METRICS_COLLECT_SYSTEM"`
}

// SecurityConfig holds security-related configuration
type SecurityConfig struct {
	EnableRateLimit bool            `json:"enable_rate_limit" env:"SKILLSPRINT_SECURITY_RATE_LIMIT_ENABLED"`
	RateLimit       RateLimitConfig `json:"rate_limit,omitempty"`
	APIKeys         []string        `json:"api_keys,omitempty" env:"SKILLSPRINT_SECURITY_API_KEYS"`
}

// RateLimitConfig holds rate limiting configuration
type RateLimitConfig struct {
	RequestsPerMinute int           `json:"requests_per_minute" env:"SKILLSPRINT_SECURITY_RATE_LIMIT_RPM"`
	BurstSize         int           `json:"burst_size" env:"SKILLSPRINT_SECURITY_RATE_LIMIT_BURST"`
	CleanupInterval   time.Duration `json:"cleanup_interval" env:"SKILLSPRINT_SECURITY_RATE_LIMIT_CLEANUP"`
}

// Load loads configuration from environment variables and validates it
func Load() (*Config, error) {
	cfg := DefaultConfig()

	// Load from environment variables
	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// validateConfigPath validates that the config file path is safe
func validateConfigPath(path string) error {
	if path == "" {
		return errors.New("config file path cannot be empty")
	}

	cleanPath := filepath.Clean(path)

	if !strings.HasSuffix(strings.ToLower(cleanPath), ".json") {
		return errors.New("config file must have .json extension")
	}

	if _, err := os.Stat(cleanPath); err != nil {
		return fmt.Errorf("config file not accessible: %w", err)
	}

	return nil
}

// LoadFromFile loads configuration from a JSON file
func LoadFromFile(path string) (*Config, error) {
	// Validate the path for security
	if err := validateConfigPath(path); err != nil {
		return nil, fmt.Errorf("invalid config file path: %w", err)
	}

	// Open the file safely after validation
	file, err := os.Open(path) // #nosec G304 - Path validated above
	if err != nil {
		return nil, fmt.Errorf("failed to open config file %s: %w", path, err)
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	cfg := DefaultConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}

	// Environment variables override file values
	if err := loadFromEnv(cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from environment: %w", err)
	}

	// Validate configuration
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// DefaultConfig returns a configuration with sensible defaults for development
func DefaultConfig() *Config {
	contentDefaults := content.DefaultConfig()
	retryDefaults := content.DefaultRetryConfig()

	return &Config{
		Environment: EnvDevelopment,
		Profile:     "default",
		Server: ServerConfig{
			Address:           ":8080",
			PathPrefix:        "/api",
			CORSOrigin:        "*",
			ReadTimeout:       10 * time.Second,
			WriteTimeout:      10 * time.Second,
			IdleTimeout:       60 * time.Second,
			ReadHeaderTimeout: 5 * time.Second,
			ShutdownTimeout:   30 * time.Second,
		},
		Storage: StorageConfig{
			Adapter: "memory",
			Redis:   redis.DefaultConfig(),
			SQL:     sqlx.DefaultConfig(sqlx.DriverPostgres),
			File: FileConfig{
				Path: "./data/skillsprint.json",
			},
		},
		Content: ContentConfig{
			Enabled:     false,
			BaseURL:     contentDefaults.BaseURL,
			Model:       contentDefaults.Model,
			Timeout:     contentDefaults.Timeout,
			MaxAttempts: retryDefaults.MaxAttempts,
			BackoffBase: retryDefaults.BackoffBase,
		},
		Logging: LoggingConfig{
			Level:  "info",
			Format: "json",
			Output: "stdout",
		},
		Metrics: MetricsConfig{
			Enabled:       false,
			Address:       ":9090",
			Path:          "/metrics",
			CollectSystem: true,
		},
		Security: SecurityConfig{
			EnableRateLimit: false,
			RateLimit: RateLimitConfig{
				RequestsPerMinute: 60,
				BurstSize:         10,
				CleanupInterval:   5 * time.Minute,
			},
			APIKeys: []string{},
		},
	}
}

// Validate validates the configuration and returns detailed error messages
func (c *Config) Validate() error {
	var errs []string

	// Validate environment
	if c.Environment == "" {
		errs = append(errs, "environment cannot be empty")
	}

	// Validate server config
	if err := c.Server.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("server config: %v", err))
	}

	// Validate storage config
	if err := c.Storage.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("storage config: %v", err))
	}

	// Validate content config
	if err := c.Content.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("content config: %v", err))
	}

	// Validate integrations config
	if err := c.Integrations.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("integrations config: %v", err))
	}

	// Validate logging config
	if err := c.Logging.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("logging config: %v", err))
	}

	// Validate metrics config
	if err := c.Metrics.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("metrics config: %v", err))
	}

	// Validate security config
	if err := c.Security.Validate(); err != nil {
		errs = append(errs, fmt.Sprintf("security config: %v", err))
	}

	if len(errs) > 0 {
		return errors.New(strings.Join(errs, "; "))
	}

	return nil
}

// String returns a JSON representation of the config (with secrets redacted)
func (c *Config) String() string {
	// Create a copy for redaction
	cfg := *c

	// Redact sensitive information
	if cfg.Storage.SQL.DSN != "" {
		cfg.Storage.SQL.DSN = "[REDACTED]"
	}
	if cfg.Storage.Redis.Password != "" {
		cfg.Storage.Redis.Password = "[REDACTED]"
	}
	if cfg.Content.APIKey != "" {
		cfg.Content.APIKey = "[REDACTED]"
	}

	data, _ := json.MarshalIndent(cfg, "", "  ")
	return string(data)
}
