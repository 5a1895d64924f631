// Package config handles application configuration loading and validation using Viper.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	Calendar  CalendarConfig  `mapstructure:"calendar"`
	Vacation  VacationConfig  `mapstructure:"vacation"`
	Notifier  NotifierConfig  `mapstructure:"notifier"`
	Reminders RemindersConfig `mapstructure:"reminders"`
	Metrics   MetricsConfig   `mapstructure:"metrics"`
	Logging   LoggingConfig   `mapstructure:"logging"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port        int    `mapstructure:"port"`
	Environment string `mapstructure:"environment"`
}

// DatabaseConfig contains database connection settings for PostgreSQL and Redis.
type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

// PostgresConfig contains PostgreSQL database connection and pool settings.
type PostgresConfig struct {
	Host            string `mapstructure:"host"`
	Port            int    `mapstructure:"port"`
	Database        string `mapstructure:"database"`
	User            string `mapstructure:"user"`
	Password        string `mapstructure:"password"`
	SSLMode         string `mapstructure:"ssl_mode"`
	MaxOpenConns    int    `mapstructure:"max_open_conns"`
	MaxIdleConns    int    `mapstructure:"max_idle_conns"`
	ConnMaxLifetime int    `mapstructure:"conn_max_lifetime"`
}

// RedisConfig contains Redis cache connection settings.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// CalendarConfig contains calendar behavior settings.
type CalendarConfig struct {
	// Timezone is the single calendar timezone for the whole system.
	Timezone string `mapstructure:"timezone"`
	// AvailabilityCacheTTL is the redis TTL in seconds for cached free slots.
	AvailabilityCacheTTL int `mapstructure:"availability_cache_ttl"`
}

// VacationConfig contains vacation allocation limits.
type VacationConfig struct {
	// AnnualQuotaDays is the maximum vacation days per user per year.
	AnnualQuotaDays int `mapstructure:"annual_quota_days"`
	// MaxPeriodsPerYear is the maximum number of periods a year may be split into.
	MaxPeriodsPerYear int `mapstructure:"max_periods_per_year"`
	// ProtectedTags lists role tags whose holders may never overlap vacations.
	ProtectedTags []string `mapstructure:"protected_tags"`
}

// NotifierConfig contains webhook notification settings.
type NotifierConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
	Enabled    bool   `mapstructure:"enabled"`
}

// RemindersConfig contains the daily agenda reminder settings.
type RemindersConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Time    string `mapstructure:"time"` // HH:MM, weekdays only
}

// MetricsConfig contains Prometheus exporter settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// LoggingConfig contains application logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// Load reads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/agenda-epc/")
	}

	v.SetDefault("server.port", 8080)
	v.SetDefault("server.environment", "production")
	v.SetDefault("calendar.timezone", "America/Sao_Paulo")
	v.SetDefault("calendar.availability_cache_ttl", 30)
	v.SetDefault("vacation.annual_quota_days", 30)
	v.SetDefault("vacation.max_periods_per_year", 3)
	v.SetDefault("reminders.time", "07:30")
	v.SetDefault("metrics.path", "/metrics")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")

	// Explicit env bindings for 12-factor deployments
	_ = v.BindEnv("server.port", "SERVER_PORT")
	_ = v.BindEnv("server.environment", "SERVER_ENVIRONMENT")

	_ = v.BindEnv("database.postgres.host", "POSTGRES_HOST")
	_ = v.BindEnv("database.postgres.port", "POSTGRES_PORT")
	_ = v.BindEnv("database.postgres.database", "POSTGRES_DB")
	_ = v.BindEnv("database.postgres.user", "POSTGRES_USER")
	_ = v.BindEnv("database.postgres.password", "POSTGRES_PASSWORD")
	_ = v.BindEnv("database.postgres.ssl_mode", "POSTGRES_SSL_MODE")
	_ = v.BindEnv("database.postgres.max_open_conns", "POSTGRES_MAX_OPEN_CONNS")
	_ = v.BindEnv("database.postgres.max_idle_conns", "POSTGRES_MAX_IDLE_CONNS")
	_ = v.BindEnv("database.postgres.conn_max_lifetime", "POSTGRES_CONN_MAX_LIFETIME")

	_ = v.BindEnv("database.redis.host", "REDIS_HOST")
	_ = v.BindEnv("database.redis.port", "REDIS_PORT")
	_ = v.BindEnv("database.redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("database.redis.db", "REDIS_DB")
	_ = v.BindEnv("database.redis.pool_size", "REDIS_POOL_SIZE")

	_ = v.BindEnv("calendar.timezone", "CALENDAR_TIMEZONE")
	_ = v.BindEnv("calendar.availability_cache_ttl", "CALENDAR_AVAILABILITY_CACHE_TTL")

	_ = v.BindEnv("notifier.webhook_url", "NOTIFIER_WEBHOOK_URL")
	_ = v.BindEnv("notifier.enabled", "NOTIFIER_ENABLED")

	_ = v.BindEnv("reminders.enabled", "REMINDERS_ENABLED")
	_ = v.BindEnv("reminders.time", "REMINDERS_TIME")

	_ = v.BindEnv("logging.level", "LOG_LEVEL")
	_ = v.BindEnv("logging.format", "LOG_FORMAT")
	_ = v.BindEnv("logging.output", "LOG_OUTPUT")

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Database.Postgres.Host == "" {
		return fmt.Errorf("database.postgres.host is required")
	}
	if c.Database.Postgres.Database == "" {
		return fmt.Errorf("database.postgres.database is required")
	}
	if c.Database.Postgres.User == "" {
		return fmt.Errorf("database.postgres.user is required")
	}
	if c.Vacation.AnnualQuotaDays < 1 {
		return fmt.Errorf("vacation.annual_quota_days must be positive")
	}
	if c.Vacation.MaxPeriodsPerYear < 1 {
		return fmt.Errorf("vacation.max_periods_per_year must be positive")
	}
	if _, err := c.Calendar.GetLocation(); err != nil {
		return fmt.Errorf("invalid calendar.timezone: %w", err)
	}
	return nil
}

// GetLocation returns the calendar timezone location.
func (c *CalendarConfig) GetLocation() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}
