// Package config loads all recognized options from the environment, with an
// optional .env file for local runs.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration.
type Config struct {
	Sync      SyncConfig
	Quota     QuotaConfig
	Registry  RegistryConfig
	Notify    NotifyConfig
	Scheduler SchedulerConfig
	Logging   LoggingConfig

	// Region is the home region for the registry, the notification topic and
	// any binding that omits its own regions.
	Region string
}

// SyncConfig tunes the reconciliation engine.
type SyncConfig struct {
	MaxModifyAttempts int
	BackoffBase       time.Duration
	BackoffCap        time.Duration
}

// QuotaConfig carries the tracked quota identity and the warning thresholds
// applied when a binding has none of its own.
type QuotaConfig struct {
	ServiceCode             string
	RuleQuotaCode           string
	DefaultPercentThreshold int
	DefaultBaseThreshold    int
}

// RegistryConfig locates the binding registry.
type RegistryConfig struct {
	Table string
}

// NotifyConfig locates the notification destination.
type NotifyConfig struct {
	TopicARN string
}

// SchedulerConfig tunes the fan-out pass.
type SchedulerConfig struct {
	WorkerLimit int
	// Schedule is the cron expression the serve command runs RunAll on.
	Schedule string
	// RunTimeout is the time budget for one whole fan-out pass.
	RunTimeout time.Duration
}

// LoggingConfig contains logging configuration.
type LoggingConfig struct {
	Level  string
	Format string // json or console
}

// Load loads configuration from environment variables.
func Load() (*Config, error) {
	// Load .env file if it exists (ignore errors as it's optional)
	_ = godotenv.Load()

	cfg := &Config{
		Sync: SyncConfig{
			MaxModifyAttempts: getEnvAsInt("PLSYNC_MAX_MODIFY_ATTEMPTS", 3),
			BackoffBase:       getEnvAsDuration("PLSYNC_BACKOFF_BASE", 200*time.Millisecond),
			BackoffCap:        getEnvAsDuration("PLSYNC_BACKOFF_CAP", 2*time.Second),
		},
		Quota: QuotaConfig{
			ServiceCode:             getEnv("PLSYNC_QUOTA_SERVICE_CODE", "vpc"),
			RuleQuotaCode:           getEnv("PLSYNC_RULE_QUOTA_CODE", "L-0EA8095F"),
			DefaultPercentThreshold: getEnvAsInt("PLSYNC_DEFAULT_PERCENT_THRESHOLD", 10),
			DefaultBaseThreshold:    getEnvAsInt("PLSYNC_DEFAULT_BASE_THRESHOLD", 10),
		},
		Registry: RegistryConfig{
			Table: getEnv("PLSYNC_BINDINGS_TABLE", "plsync-bindings"),
		},
		Notify: NotifyConfig{
			TopicARN: getEnv("PLSYNC_TOPIC_ARN", ""),
		},
		Scheduler: SchedulerConfig{
			WorkerLimit: getEnvAsInt("PLSYNC_WORKER_LIMIT", 5),
			Schedule:    getEnv("PLSYNC_SCHEDULE", "@every 5m"),
			RunTimeout:  getEnvAsDuration("PLSYNC_RUN_TIMEOUT", 10*time.Minute),
		},
		Logging: LoggingConfig{
			Level:  getEnv("LOG_LEVEL", "info"),
			Format: getEnv("LOG_FORMAT", "json"),
		},
		Region: getEnv("AWS_REGION", ""),
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// Validate validates the configuration.
func (c *Config) Validate() error {
	if c.Sync.MaxModifyAttempts < 1 {
		return fmt.Errorf("PLSYNC_MAX_MODIFY_ATTEMPTS must be at least 1, got %d", c.Sync.MaxModifyAttempts)
	}
	if c.Sync.BackoffBase <= 0 || c.Sync.BackoffCap < c.Sync.BackoffBase {
		return fmt.Errorf("backoff bounds must satisfy 0 < base <= cap, got base=%s cap=%s", c.Sync.BackoffBase, c.Sync.BackoffCap)
	}
	if c.Quota.DefaultPercentThreshold < 0 || c.Quota.DefaultPercentThreshold > 100 {
		return fmt.Errorf("PLSYNC_DEFAULT_PERCENT_THRESHOLD must be within [0,100], got %d", c.Quota.DefaultPercentThreshold)
	}
	if c.Quota.DefaultBaseThreshold < 0 {
		return fmt.Errorf("PLSYNC_DEFAULT_BASE_THRESHOLD must be non-negative, got %d", c.Quota.DefaultBaseThreshold)
	}
	if c.Scheduler.WorkerLimit < 1 {
		return fmt.Errorf("PLSYNC_WORKER_LIMIT must be at least 1, got %d", c.Scheduler.WorkerLimit)
	}
	if c.Registry.Table == "" {
		return fmt.Errorf("PLSYNC_BINDINGS_TABLE must not be empty")
	}
	return nil
}

// Helper functions

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
