package config

import (
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	Server    ServerConfig
	Database  DatabaseConfig
	RateLimit RateLimitConfig
	Log       LogConfig
	Seed      SeedConfig
	Security  SecurityConfig
}

// ServerConfig holds HTTP server settings
type ServerConfig struct {
	Port            string
	Env             string
	ReadTimeout     time.Duration
	WriteTimeout    time.Duration
	ShutdownTimeout time.Duration
	AllowedOrigins  []string
	MetricsEnabled  bool
}

// DatabaseConfig selects the storage backend. DSN and pool settings apply
// to postgres and sqlite, the host fields to SurrealDB.
type DatabaseConfig struct {
	Driver          string
	DSN             string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime time.Duration
	SlowQuery       time.Duration

	Host      string
	Port      string
	Namespace string
	Database  string
	User      string
	Password  string
}

// RateLimitConfig holds per-client request limits
type RateLimitConfig struct {
	Enabled bool
	Rate    int
	Window  time.Duration
	Burst   int
}

// LogConfig holds logging settings
type LogConfig struct {
	Level string
}

// SeedConfig controls fake data generation
type SeedConfig struct {
	Enabled   bool
	Customers int
	Users     int
}

// SecurityConfig holds password hashing and replay settings
type SecurityConfig struct {
	BcryptCost     int
	IdempotencyTTL time.Duration
}

var validDrivers = []string{"postgres", "sqlite", "surrealdb"}

// LoadDotEnv loads variables from the given .env files (".env" when none
// are named) without overriding variables already set. Missing files are
// skipped.
func LoadDotEnv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, p := range paths {
		if err := godotenv.Load(p); err != nil {
			if errors.Is(err, fs.ErrNotExist) {
				continue
			}
			return fmt.Errorf("load %s: %w", p, err)
		}
		slog.Debug("loaded env file", slog.String("path", p))
	}
	return nil
}

// Load reads configuration from environment variables with sensible defaults
func Load() (*Config, error) {
	return &Config{
		Server: ServerConfig{
			Port:            getEnv("SERVER_PORT", "8080"),
			Env:             getEnv("SERVER_ENV", "development"),
			ReadTimeout:     getDurationEnv("SERVER_READ_TIMEOUT", 15*time.Second),
			WriteTimeout:    getDurationEnv("SERVER_WRITE_TIMEOUT", 15*time.Second),
			ShutdownTimeout: getDurationEnv("SERVER_SHUTDOWN_TIMEOUT", 30*time.Second),
			AllowedOrigins:  getSliceEnv("CORS_ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
			MetricsEnabled:  getBoolEnv("METRICS_ENABLED", true),
		},
		Database: DatabaseConfig{
			Driver:          strings.ToLower(getEnv("DB_DRIVER", "sqlite")),
			DSN:             getEnv("DB_DSN", "file:data/backoffice.db?_pragma=foreign_keys(1)"),
			MaxOpenConns:    getIntEnv("DB_MAX_OPEN_CONNS", 10),
			MaxIdleConns:    getIntEnv("DB_MAX_IDLE_CONNS", 5),
			ConnMaxLifetime: getDurationEnv("DB_CONN_MAX_LIFETIME", 30*time.Minute),
			SlowQuery:       getDurationEnv("DB_SLOW_QUERY", 200*time.Millisecond),
			Host:            getEnv("DB_HOST", "localhost"),
			Port:            getEnv("DB_PORT", "8000"),
			Namespace:       getEnv("DB_NAMESPACE", "backoffice"),
			Database:        getEnv("DB_DATABASE", "main"),
			User:            getEnv("DB_USER", "root"),
			Password:        getEnv("DB_PASSWORD", "root"),
		},
		RateLimit: RateLimitConfig{
			Enabled: getBoolEnv("RATE_LIMIT_ENABLED", true),
			Rate:    getIntEnv("RATE_LIMIT_RATE", 100),
			Window:  getDurationEnv("RATE_LIMIT_WINDOW", time.Minute),
			Burst:   getIntEnv("RATE_LIMIT_BURST", 20),
		},
		Log: LogConfig{
			Level: strings.ToLower(getEnv("LOG_LEVEL", "info")),
		},
		Seed: SeedConfig{
			Enabled:   getBoolEnv("SEED_ENABLED", false),
			Customers: getIntEnv("SEED_CUSTOMERS", 0),
			Users:     getIntEnv("SEED_USERS", 0),
		},
		Security: SecurityConfig{
			BcryptCost:     getIntEnv("BCRYPT_COST", 10),
			IdempotencyTTL: getDurationEnv("IDEMPOTENCY_TTL", 24*time.Hour),
		},
	}, nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.Env == "development"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.Env == "production"
}

// IsRelational reports whether the configured driver goes through GORM
func (d DatabaseConfig) IsRelational() bool {
	return d.Driver == "postgres" || d.Driver == "sqlite"
}

// SlogLevel maps LOG_LEVEL onto a slog level; unknown values mean info
func (l LogConfig) SlogLevel() slog.Level {
	switch l.Level {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// Validate checks that all required configuration values are present and valid.
// It returns an error describing all validation failures, or nil if valid.
func (c *Config) Validate() error {
	var errs []error

	// Server validation
	if c.Server.Port == "" {
		errs = append(errs, errors.New("SERVER_PORT is required"))
	}
	if c.Server.Env != "development" && c.Server.Env != "production" && c.Server.Env != "test" {
		errs = append(errs, fmt.Errorf("SERVER_ENV must be 'development', 'production', or 'test', got '%s'", c.Server.Env))
	}
	if len(c.Server.AllowedOrigins) == 0 {
		errs = append(errs, errors.New("CORS_ALLOWED_ORIGINS must have at least one origin"))
	}

	// Database validation
	if !contains(validDrivers, c.Database.Driver) {
		errs = append(errs, fmt.Errorf("DB_DRIVER must be one of %s, got '%s'", strings.Join(validDrivers, ", "), c.Database.Driver))
	}
	if c.Database.IsRelational() && c.Database.DSN == "" {
		errs = append(errs, errors.New("DB_DSN is required for postgres and sqlite"))
	}
	if c.Database.Driver == "surrealdb" {
		if c.Database.Host == "" {
			errs = append(errs, errors.New("DB_HOST is required"))
		}
		if c.Database.Port == "" {
			errs = append(errs, errors.New("DB_PORT is required"))
		}
		if c.Database.Namespace == "" {
			errs = append(errs, errors.New("DB_NAMESPACE is required"))
		}
		if c.Database.Database == "" {
			errs = append(errs, errors.New("DB_DATABASE is required"))
		}
	}
	if c.Database.MaxOpenConns < 0 || c.Database.MaxIdleConns < 0 {
		errs = append(errs, errors.New("DB_MAX_OPEN_CONNS and DB_MAX_IDLE_CONNS must not be negative"))
	}

	// Rate limit validation
	if c.RateLimit.Enabled {
		if c.RateLimit.Rate <= 0 {
			errs = append(errs, errors.New("RATE_LIMIT_RATE must be positive"))
		}
		if c.RateLimit.Window <= 0 {
			errs = append(errs, errors.New("RATE_LIMIT_WINDOW must be positive"))
		}
	}

	// Seeding is a development convenience
	if c.Seed.Enabled && c.IsProduction() {
		errs = append(errs, errors.New("SEED_ENABLED must be false in production"))
	}
	if c.Seed.Customers < 0 || c.Seed.Users < 0 {
		errs = append(errs, errors.New("SEED_CUSTOMERS and SEED_USERS must not be negative"))
	}

	if c.Security.BcryptCost < 4 || c.Security.BcryptCost > 31 {
		errs = append(errs, fmt.Errorf("BCRYPT_COST must be between 4 and 31, got %d", c.Security.BcryptCost))
	}

	if len(errs) > 0 {
		return errors.Join(errs...)
	}
	return nil
}

func contains(list []string, v string) bool {
	for _, s := range list {
		if s == v {
			return true
		}
	}
	return false
}

// Helper functions for reading environment variables

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if i, err := strconv.Atoi(value); err == nil {
			return i
		}
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}

func getSliceEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := parts[:0]
		for _, p := range parts {
			if p = strings.TrimSpace(p); p != "" {
				out = append(out, p)
			}
		}
		return out
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
