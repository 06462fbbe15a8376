// Package config provides application configuration loaded from environment variables.
package config

import (
	"fmt"
	"os"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Supported database drivers.
const (
	DriverSQLite   = "sqlite"
	DriverPostgres = "postgres"
)

// Config holds all application configuration.
type Config struct {
	Server   ServerConfig
	Database DatabaseConfig
	App      AppConfig
	Log      LogConfig
}

// ServerConfig holds HTTP server settings.
type ServerConfig struct {
	Port         string `env:"PORT" envDefault:"8080"`
	ReadTimeout  int    `env:"SERVER_READ_TIMEOUT" envDefault:"15"`  // seconds
	WriteTimeout int    `env:"SERVER_WRITE_TIMEOUT" envDefault:"15"` // seconds
	IdleTimeout  int    `env:"SERVER_IDLE_TIMEOUT" envDefault:"60"`  // seconds
}

// DatabaseConfig holds connection settings for SQLite or PostgreSQL.
type DatabaseConfig struct {
	Driver string `env:"DB_DRIVER" envDefault:"sqlite"`
	// DSN overrides every other field when set.
	DSN      string `env:"DATABASE_DSN"`
	Path     string `env:"DB_PATH" envDefault:"records.db"`
	Host     string `env:"DB_HOST" envDefault:"localhost"`
	Port     int    `env:"DB_PORT" envDefault:"5432"`
	User     string `env:"DB_USER" envDefault:"records"`
	Password string `env:"DB_PASSWORD" envDefault:"records"`
	DBName   string `env:"DB_NAME" envDefault:"records"`
	SSLMode  string `env:"DB_SSLMODE" envDefault:"disable"`
	Debug    bool   `env:"DB_DEBUG" envDefault:"false"`
}

// AppConfig holds application-level settings.
type AppConfig struct {
	Dev        bool `env:"DEV" envDefault:"false"`
	Migrations bool `env:"MIGRATIONS" envDefault:"false"`
	Seed       bool `env:"DB_SEED" envDefault:"false"`
}

// LogConfig controls the logrus logger.
type LogConfig struct {
	Level  string `env:"LOG_LEVEL" envDefault:"info"`
	Format string `env:"LOG_FORMAT" envDefault:"text"`
	// Path of the log file; empty logs to stdout only.
	Path string `env:"LOG_PATH" envDefault:"logs/records.log"`
}

// ConnectionString returns the DSN handed to the GORM driver.
func (d DatabaseConfig) ConnectionString() string {
	if d.DSN != "" {
		return d.DSN
	}
	if d.Driver == DriverPostgres {
		return fmt.Sprintf(
			"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
			d.Host, d.Port, d.User, d.Password, d.DBName, d.SSLMode,
		)
	}
	return d.Path + "?_foreign_keys=on&_busy_timeout=5000"
}

// Load reads .env files (when present) and then the environment.
// Precedence: explicit env var > .env.local > .env > default.
func Load() (*Config, error) {
	for _, f := range []string{".env.local", ".env"} {
		if _, err := os.Stat(f); err == nil {
			if err := godotenv.Load(f); err != nil {
				return nil, fmt.Errorf("loading %s: %w", f, err)
			}
		}
	}
	return Parse()
}

// Parse builds the configuration from the current environment only.
func Parse() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing environment: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate rejects settings the application cannot run with.
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverSQLite, DriverPostgres:
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverSQLite, DriverPostgres, c.Database.Driver)
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("LOG_LEVEL must be debug, info, warn or error, got %q", c.Log.Level)
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be text or json, got %q", c.Log.Format)
	}
	if c.Server.Port == "" {
		return fmt.Errorf("PORT must not be empty")
	}
	return nil
}
