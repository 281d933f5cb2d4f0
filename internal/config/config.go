package config

import (
	"fmt"
	"strings"
	"time"
)

// Config represents the complete application configuration
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Auth    AuthConfig    `mapstructure:"auth"`
	Queue   QueueConfig   `mapstructure:"queue"`
	Storage StorageConfig `mapstructure:"storage"`
	Report  ReportConfig  `mapstructure:"report"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig represents HTTP server configuration
type ServerConfig struct {
	Host     string `mapstructure:"host"`      // Bind address (e.g., 0.0.0.0 for all interfaces)
	HTTPPort int    `mapstructure:"http_port"` // HTTP server port
}

// AuthConfig represents authentication configuration
type AuthConfig struct {
	Enabled bool     `mapstructure:"enabled"`  // Enable/disable API key authentication
	APIKeys []string `mapstructure:"api_keys"` // List of valid API keys
}

// QueueConfig represents the reading ingestion queue
type QueueConfig struct {
	Enabled  bool   `mapstructure:"enabled"`  // Consume readings from the queue
	Type     string `mapstructure:"type"`     // nats (default), redis, kafka, memory
	URL      string `mapstructure:"url"`      // nats://localhost:4222, localhost:6379
	Username string `mapstructure:"username"` // Optional authentication
	Password string `mapstructure:"password"` // Optional authentication

	// Subject readings are published on. A trailing wildcard subscribes to
	// every backpack.
	Subject       string `mapstructure:"subject"`
	ConsumerGroup string `mapstructure:"consumer_group"`

	// Redis-specific options
	RedisDB     int    `mapstructure:"redis_db"`
	RedisStream string `mapstructure:"redis_stream"` // Stream prefix

	// Kafka-specific options
	KafkaBrokers []string `mapstructure:"kafka_brokers"`
}

// StorageConfig represents the in-memory reading store
type StorageConfig struct {
	MaxAge  time.Duration `mapstructure:"max_age"`  // Retention, 0 keeps forever
	MaxSize int           `mapstructure:"max_size"` // Max stored readings, 0 is unbounded
}

// ReportConfig holds the calendar and load limit defaults of the reports
type ReportConfig struct {
	Timezone     string  `mapstructure:"timezone"`   // "America/Sao_Paulo", "-03:00", "UTC"
	WeekStart    string  `mapstructure:"week_start"` // sunday (default) or monday
	BodyWeightKg float64 `mapstructure:"body_weight_kg"`
	MaxLoadPct   float64 `mapstructure:"max_load_pct"`
}

// LoggingConfig represents logging configuration
type LoggingConfig struct {
	Level      string `mapstructure:"level"`       // debug, info, warn, error
	Format     string `mapstructure:"format"`      // json, console
	OutputPath string `mapstructure:"output_path"` // stdout, stderr, file path
	TimeFormat string `mapstructure:"time_format"` // RFC3339, Unix, Kitchen, DateTime
}

// Validate validates the configuration
func (c *Config) Validate() error {
	if err := c.Server.Validate(); err != nil {
		return fmt.Errorf("server config: %w", err)
	}

	if err := c.Auth.Validate(); err != nil {
		return fmt.Errorf("auth config: %w", err)
	}

	if err := c.Queue.Validate(); err != nil {
		return fmt.Errorf("queue config: %w", err)
	}

	if err := c.Storage.Validate(); err != nil {
		return fmt.Errorf("storage config: %w", err)
	}

	if err := c.Report.Validate(); err != nil {
		return fmt.Errorf("report config: %w", err)
	}

	if err := c.Logging.Validate(); err != nil {
		return fmt.Errorf("logging config: %w", err)
	}

	return nil
}

// Validate validates server configuration
func (c *ServerConfig) Validate() error {
	if c.HTTPPort < 1 || c.HTTPPort > 65535 {
		return fmt.Errorf("invalid http_port: %d", c.HTTPPort)
	}
	return nil
}

// Validate validates auth configuration
func (c *AuthConfig) Validate() error {
	if c.Enabled && len(c.APIKeys) == 0 {
		return fmt.Errorf("auth.api_keys is required when auth is enabled")
	}
	return nil
}

// Validate validates queue configuration
func (c *QueueConfig) Validate() error {
	if !c.Enabled {
		return nil
	}

	switch strings.ToLower(c.Type) {
	case "", "nats", "redis", "memory":
	case "kafka":
		if len(c.KafkaBrokers) == 0 {
			return fmt.Errorf("queue.kafka_brokers is required for kafka")
		}
	default:
		return fmt.Errorf("unsupported queue.type: %s", c.Type)
	}

	if c.Subject == "" {
		return fmt.Errorf("queue.subject is required")
	}
	return nil
}

// Validate validates storage configuration
func (c *StorageConfig) Validate() error {
	if c.MaxAge < 0 {
		return fmt.Errorf("storage.max_age cannot be negative")
	}
	if c.MaxSize < 0 {
		return fmt.Errorf("storage.max_size cannot be negative")
	}
	return nil
}

// Validate validates report configuration
func (c *ReportConfig) Validate() error {
	if _, err := ParseTimezone(c.Timezone); err != nil {
		return fmt.Errorf("report.timezone: %w", err)
	}
	if _, err := ParseWeekday(c.WeekStart); err != nil {
		return fmt.Errorf("report.week_start: %w", err)
	}
	if c.BodyWeightKg < 0 {
		return fmt.Errorf("report.body_weight_kg cannot be negative")
	}
	if c.MaxLoadPct < 0 || c.MaxLoadPct > 100 {
		return fmt.Errorf("report.max_load_pct must be between 0 and 100")
	}
	return nil
}

// Validate validates logging configuration
func (c *LoggingConfig) Validate() error {
	validLevels := map[string]bool{
		"debug": true,
		"info":  true,
		"warn":  true,
		"error": true,
	}

	if !validLevels[c.Level] {
		return fmt.Errorf("logging.level must be one of: debug, info, warn, error")
	}

	validFormats := map[string]bool{
		"json":    true,
		"console": true,
	}

	if !validFormats[c.Format] {
		return fmt.Errorf("logging.format must be 'json' or 'console'")
	}

	return nil
}
