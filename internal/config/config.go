// Package config handles application configuration loading and validation using Viper.
package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration.
type Config struct {
	Server       ServerConfig       `mapstructure:"server"`
	Database     DatabaseConfig     `mapstructure:"database"`
	Logging      LoggingConfig      `mapstructure:"logging"`
	Metrics      MetricsConfig      `mapstructure:"metrics"`
	Scheduler    SchedulerConfig    `mapstructure:"scheduler"`
	Gamification GamificationConfig `mapstructure:"gamification"`
	Search       SearchConfig       `mapstructure:"search"`
	Content      ContentConfig      `mapstructure:"content"`
	Mattermost   MattermostConfig   `mapstructure:"mattermost"`
}

// ServerConfig contains HTTP server configuration.
type ServerConfig struct {
	Port            int           `mapstructure:"port"`
	Environment     string        `mapstructure:"environment"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// DatabaseConfig contains database connection settings for the SQL store and Redis.
type DatabaseConfig struct {
	Driver   string         `mapstructure:"driver"` // "postgres" or "sqlite"
	Postgres PostgresConfig `mapstructure:"postgres"`
	SQLite   SQLiteConfig   `mapstructure:"sqlite"`
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
	RunMigrations   bool   `mapstructure:"run_migrations"`
}

// DSN returns the libpq connection string.
func (c *PostgresConfig) DSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Database, c.SSLMode,
	)
}

// URL returns the postgres:// URL used by the migration runner.
func (c *PostgresConfig) URL() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Database, c.SSLMode,
	)
}

// SQLiteConfig contains the SQLite file path used for local runs.
type SQLiteConfig struct {
	Path string `mapstructure:"path"`
}

// RedisConfig contains Redis cache connection and pool settings.
type RedisConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
	PoolSize int    `mapstructure:"pool_size"`
}

// Addr returns host:port.
func (c *RedisConfig) Addr() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

// LoggingConfig contains application logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// MetricsConfig contains metrics exporter settings.
type MetricsConfig struct {
	Prometheus PrometheusConfig `mapstructure:"prometheus"`
}

// PrometheusConfig contains Prometheus metrics exporter settings.
type PrometheusConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
}

// SchedulerConfig contains background job settings.
type SchedulerConfig struct {
	Enabled              bool   `mapstructure:"enabled"`
	Timezone             string `mapstructure:"timezone"`
	RollupTime           string `mapstructure:"rollup_time"`            // cron expression for the XP rollup of yesterday and today
	AchievementSweepTime string `mapstructure:"achievement_sweep_time"` // cron expression, empty disables the sweep
}

// GetLocation returns the timezone location.
func (c *SchedulerConfig) GetLocation() (*time.Location, error) {
	return time.LoadLocation(c.Timezone)
}

// GamificationConfig tunes the leveling engine.
type GamificationConfig struct {
	LevelUpBonus     int           `mapstructure:"level_up_bonus"`
	NotificationTTL  time.Duration `mapstructure:"notification_ttl"`
	CatalogPath      string        `mapstructure:"catalog_path"`
	LeaderboardLimit int           `mapstructure:"leaderboard_limit"`
}

// SearchConfig tunes the unified search engine.
type SearchConfig struct {
	MinQueryLength    int           `mapstructure:"min_query_length"`
	DefaultLimit      int           `mapstructure:"default_limit"`
	QuickLimit        int           `mapstructure:"quick_limit"`
	QuickPerTypeLimit int           `mapstructure:"quick_per_type_limit"`
	MaxSuggestions    int           `mapstructure:"max_suggestions"`
	SimulatedLatency  time.Duration `mapstructure:"simulated_latency"`
	AdapterTimeout    time.Duration `mapstructure:"adapter_timeout"`
	RecentLimit       int           `mapstructure:"recent_limit"`
	RecentTTL         time.Duration `mapstructure:"recent_ttl"`
}

// ContentConfig points to the searchable content seed.
type ContentConfig struct {
	SeedPath string `mapstructure:"seed_path"`
}

// MattermostConfig contains chat webhook announcement settings.
type MattermostConfig struct {
	WebhookURL string `mapstructure:"webhook_url"`
	Channel    string `mapstructure:"channel"`
	Enabled    bool   `mapstructure:"enabled"`
}

// setDefaults registers defaults for every optional key.
func setDefaults(v *viper.Viper) {
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.shutdown_timeout", "10s")

	v.SetDefault("database.driver", "postgres")
	v.SetDefault("database.postgres.port", 5432)
	v.SetDefault("database.postgres.ssl_mode", "disable")
	v.SetDefault("database.postgres.max_open_conns", 25)
	v.SetDefault("database.postgres.max_idle_conns", 5)
	v.SetDefault("database.postgres.conn_max_lifetime", 300)
	v.SetDefault("database.sqlite.path", "symposium.db")
	v.SetDefault("database.redis.port", 6379)
	v.SetDefault("database.redis.pool_size", 10)

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.output", "stdout")

	v.SetDefault("metrics.prometheus.enabled", true)
	v.SetDefault("metrics.prometheus.path", "/metrics")

	v.SetDefault("scheduler.enabled", true)
	v.SetDefault("scheduler.timezone", "UTC")
	v.SetDefault("scheduler.rollup_time", "*/15 * * * *")

	v.SetDefault("gamification.level_up_bonus", 50)
	v.SetDefault("gamification.notification_ttl", "3s")
	v.SetDefault("gamification.leaderboard_limit", 20)

	v.SetDefault("search.min_query_length", 2)
	v.SetDefault("search.default_limit", 10)
	v.SetDefault("search.quick_limit", 5)
	v.SetDefault("search.quick_per_type_limit", 3)
	v.SetDefault("search.max_suggestions", 5)
	v.SetDefault("search.simulated_latency", "0s")
	v.SetDefault("search.adapter_timeout", "2s")
	v.SetDefault("search.recent_limit", 10)
	v.SetDefault("search.recent_ttl", "0s")
}

// Load reads configuration from file and environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("/etc/symposium-engage/")
	}

	// Server configuration
	_ = v.BindEnv("server.port", "SERVER_PORT", "PORT")
	_ = v.BindEnv("server.environment", "SERVER_ENVIRONMENT")
	_ = v.BindEnv("server.shutdown_timeout", "SERVER_SHUTDOWN_TIMEOUT")

	// Database configuration
	_ = v.BindEnv("database.driver", "DATABASE_DRIVER")
	_ = v.BindEnv("database.postgres.host", "POSTGRES_HOST")
	_ = v.BindEnv("database.postgres.port", "POSTGRES_PORT")
	_ = v.BindEnv("database.postgres.database", "POSTGRES_DB")
	_ = v.BindEnv("database.postgres.user", "POSTGRES_USER")
	_ = v.BindEnv("database.postgres.password", "POSTGRES_PASSWORD")
	_ = v.BindEnv("database.postgres.ssl_mode", "POSTGRES_SSL_MODE")
	_ = v.BindEnv("database.postgres.max_open_conns", "POSTGRES_MAX_OPEN_CONNS")
	_ = v.BindEnv("database.postgres.max_idle_conns", "POSTGRES_MAX_IDLE_CONNS")
	_ = v.BindEnv("database.postgres.conn_max_lifetime", "POSTGRES_CONN_MAX_LIFETIME")
	_ = v.BindEnv("database.postgres.run_migrations", "POSTGRES_RUN_MIGRATIONS")
	_ = v.BindEnv("database.sqlite.path", "SQLITE_PATH")

	// Redis configuration
	_ = v.BindEnv("database.redis.host", "REDIS_HOST")
	_ = v.BindEnv("database.redis.port", "REDIS_PORT")
	_ = v.BindEnv("database.redis.password", "REDIS_PASSWORD")
	_ = v.BindEnv("database.redis.db", "REDIS_DB")
	_ = v.BindEnv("database.redis.pool_size", "REDIS_POOL_SIZE")

	// Logging configuration
	_ = v.BindEnv("logging.level", "LOG_LEVEL")
	_ = v.BindEnv("logging.format", "LOG_FORMAT")
	_ = v.BindEnv("logging.output", "LOG_OUTPUT")

	// Scheduler configuration
	_ = v.BindEnv("scheduler.enabled", "SCHEDULER_ENABLED")
	_ = v.BindEnv("scheduler.timezone", "SCHEDULER_TIMEZONE")
	_ = v.BindEnv("scheduler.rollup_time", "SCHEDULER_ROLLUP_TIME")
	_ = v.BindEnv("scheduler.achievement_sweep_time", "SCHEDULER_ACHIEVEMENT_SWEEP_TIME")

	// Gamification and search tuning
	_ = v.BindEnv("gamification.level_up_bonus", "GAMIFICATION_LEVEL_UP_BONUS")
	_ = v.BindEnv("gamification.catalog_path", "GAMIFICATION_CATALOG_PATH")
	_ = v.BindEnv("search.simulated_latency", "SEARCH_SIMULATED_LATENCY")
	_ = v.BindEnv("content.seed_path", "CONTENT_SEED_PATH")

	// Mattermost configuration
	_ = v.BindEnv("mattermost.webhook_url", "MATTERMOST_WEBHOOK_URL")
	_ = v.BindEnv("mattermost.channel", "MATTERMOST_CHANNEL")
	_ = v.BindEnv("mattermost.enabled", "MATTERMOST_ENABLED")

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
	switch c.Database.Driver {
	case "postgres":
		if c.Database.Postgres.Host == "" {
			return fmt.Errorf("database.postgres.host is required")
		}
		if c.Database.Postgres.Database == "" {
			return fmt.Errorf("database.postgres.database is required")
		}
		if c.Database.Postgres.User == "" {
			return fmt.Errorf("database.postgres.user is required")
		}
	case "sqlite":
		if c.Database.SQLite.Path == "" {
			return fmt.Errorf("database.sqlite.path is required")
		}
	default:
		return fmt.Errorf("unsupported database.driver %q (valid: postgres, sqlite)", c.Database.Driver)
	}
	if c.Database.Redis.Host == "" {
		return fmt.Errorf("database.redis.host is required")
	}
	if c.Gamification.LevelUpBonus < 0 {
		return fmt.Errorf("gamification.level_up_bonus must not be negative")
	}
	if c.Search.MinQueryLength < 1 {
		return fmt.Errorf("search.min_query_length must be at least 1")
	}
	if c.Search.DefaultLimit < 1 || c.Search.QuickPerTypeLimit < 1 || c.Search.QuickLimit < 1 {
		return fmt.Errorf("search limits must be greater than 0")
	}
	if c.Search.RecentLimit < 1 {
		return fmt.Errorf("search.recent_limit must be greater than 0")
	}
	if c.Mattermost.Enabled && c.Mattermost.WebhookURL == "" {
		return fmt.Errorf("mattermost.webhook_url is required when mattermost is enabled")
	}

	return nil
}

// IsDevelopment reports whether the service runs in development mode.
func (c *ServerConfig) IsDevelopment() bool {
	return c.Environment == "development"
}
