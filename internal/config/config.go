// Package config loads application configuration with Viper.
//
// Precedence, highest first: process environment, a dotenv file (".env" by
// default), built-in defaults. Keys are the environment variable names.
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"slices"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	Logging  LoggingConfig
	Metrics  MetricsConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port            int
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	IdleTimeout     time.Duration
	ShutdownTimeout time.Duration
}

// DatabaseConfig holds database connection configuration.
type DatabaseConfig struct {
	Driver         string // "postgres" or "sqlite"
	Host           string
	Port           int
	Name           string
	User           string
	Password       string
	SSLMode        string
	ConnectTimeout time.Duration
	InitTimeout    time.Duration // bounds ping, schema sync and seeding at startup
	SQLitePath     string

	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
}

// LoggingConfig holds logging configuration.
type LoggingConfig struct {
	Level  string // debug, info, warn, error
	Format string // text or json
}

// MetricsConfig controls the Prometheus endpoint.
type MetricsConfig struct {
	Enabled bool
}

var defaults = map[string]any{
	"port":             5000,
	"read_timeout":     "15s",
	"write_timeout":    "15s",
	"idle_timeout":     "60s",
	"shutdown_timeout": "30s",

	"db_driver":            "postgres",
	"postgres_host":        "localhost",
	"postgres_port":        5432,
	"postgres_db":          "postgres",
	"postgres_user":        "postgres",
	"postgres_password":    "",
	"postgres_sslmode":     "require",
	"db_connect_timeout":   "10s",
	"db_init_timeout":      "30s",
	"sqlite_path":          "data/renderback.db",
	"db_max_open_conns":    10,
	"db_max_idle_conns":    5,
	"db_conn_max_lifetime": "30m",

	"log_level":  "info",
	"log_format": "text",

	"metrics_enabled": true,
}

// Load reads configuration from ".env" (if present) and the environment.
func Load() (*Config, error) {
	return LoadFrom(".env")
}

// LoadFrom is Load with an explicit dotenv path. A missing file is not an error.
func LoadFrom(envFile string) (*Config, error) {
	v := viper.New()
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	if envFile != "" {
		v.SetConfigFile(envFile)
		v.SetConfigType("env")
		if err := v.ReadInConfig(); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("config: reading %s: %w", envFile, err)
		}
	}

	// "postgres_host" → POSTGRES_HOST
	v.AutomaticEnv()

	cfg := &Config{
		Server: ServerConfig{
			Port:            v.GetInt("port"),
			ReadTimeout:     v.GetDuration("read_timeout"),
			WriteTimeout:    v.GetDuration("write_timeout"),
			IdleTimeout:     v.GetDuration("idle_timeout"),
			ShutdownTimeout: v.GetDuration("shutdown_timeout"),
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(v.GetString("db_driver")),
			Host:            v.GetString("postgres_host"),
			Port:            v.GetInt("postgres_port"),
			Name:            v.GetString("postgres_db"),
			User:            v.GetString("postgres_user"),
			Password:        v.GetString("postgres_password"),
			SSLMode:         v.GetString("postgres_sslmode"),
			ConnectTimeout:  v.GetDuration("db_connect_timeout"),
			InitTimeout:     v.GetDuration("db_init_timeout"),
			SQLitePath:      v.GetString("sqlite_path"),
			MaxOpenConns:    v.GetInt("db_max_open_conns"),
			MaxIdleConns:    v.GetInt("db_max_idle_conns"),
			ConnMaxLifetime: v.GetDuration("db_conn_max_lifetime"),
		},
		Logging: LoggingConfig{
			Level:  strings.ToLower(v.GetString("log_level")),
			Format: strings.ToLower(v.GetString("log_format")),
		},
		Metrics: MetricsConfig{
			Enabled: v.GetBool("metrics_enabled"),
		},
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate validates configuration.
func (c *Config) Validate() error {
	if err := c.validateServer(); err != nil {
		return err
	}
	if err := c.validateDatabase(); err != nil {
		return err
	}
	return c.validateLogging()
}

func (c *Config) validateServer() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("config: PORT must be between 1 and 65535, got %d", c.Server.Port)
	}
	return nil
}

func (c *Config) validateDatabase() error {
	switch c.Database.Driver {
	case "postgres":
		if c.Database.Host == "" {
			return errors.New("config: POSTGRES_HOST is required")
		}
		if c.Database.Name == "" {
			return errors.New("config: POSTGRES_DB is required")
		}
	case "sqlite":
		if c.Database.SQLitePath == "" {
			return errors.New("config: SQLITE_PATH is required with the sqlite driver")
		}
	default:
		return fmt.Errorf("config: DB_DRIVER must be one of: postgres, sqlite (got %q)", c.Database.Driver)
	}

	if c.Database.InitTimeout <= 0 {
		return errors.New("config: DB_INIT_TIMEOUT must be positive")
	}
	if c.Database.MaxOpenConns <= 0 {
		return errors.New("config: DB_MAX_OPEN_CONNS must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return errors.New("config: DB_MAX_IDLE_CONNS must not be negative")
	}
	return nil
}

func (c *Config) validateLogging() error {
	if !slices.Contains([]string{"debug", "info", "warn", "error"}, c.Logging.Level) {
		return fmt.Errorf("config: LOG_LEVEL must be one of: debug, info, warn, error (got %q)", c.Logging.Level)
	}
	if !slices.Contains([]string{"text", "json"}, c.Logging.Format) {
		return fmt.Errorf("config: LOG_FORMAT must be text or json (got %q)", c.Logging.Format)
	}
	return nil
}
