package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
)

// Store drivers understood by storage.Open.
const (
	DriverSQLite  = "sqlite"
	DriverMongoDB = "mongodb"
)

// Config holds application configuration values
type Config struct {
	ServerPort string
	AppURL     string // Prefix for every hyperlink rendered in responses

	StoreDriver   string
	DatabaseDir   string
	DatabaseFile  string
	MongoURI      string
	MongoDatabase string
	MongoTimeout  time.Duration

	DefaultPageSize int

	LogLevel  string
	LogFormat string

	CORSAllowedOrigins []string
	RateLimitPerMinute int // 0 disables the limiter
}

// LoadConfig loads configuration from environment variables.
// It uses a .env file for local development if present (ignores it for production).
func LoadConfig(log logrus.FieldLogger) (*Config, error) {
	log.Info("Loading configuration from environment variables...")

	if os.Getenv("APP_ENV") != "production" {
		if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
			log.Warnf("Warning: Error loading .env file: %v", err)
		}
	}

	port := getEnv("SERVER_PORT", "8080")
	cfg := &Config{
		ServerPort:         strings.TrimPrefix(port, ":"),
		AppURL:             strings.TrimRight(getEnv("APP_URL", "http://127.0.0.1:"+strings.TrimPrefix(port, ":")), "/"),
		StoreDriver:        strings.ToLower(getEnv("STORE_DRIVER", DriverSQLite)),
		DatabaseDir:        getEnv("DATABASE_DIRECTORY", "data"),
		DatabaseFile:       getEnv("DATABASE_FILE", "arteesan.db"),
		MongoURI:           getEnv("MONGODB_URI", "mongodb://localhost:27017"),
		MongoDatabase:      getEnv("MONGODB_DATABASE", "arteesan"),
		MongoTimeout:       time.Duration(getEnvInt(log, "MONGODB_TIMEOUT_SECONDS", 5)) * time.Second,
		DefaultPageSize:    getEnvInt(log, "DEFAULT_PAGE_SIZE", 20),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogFormat:          strings.ToLower(getEnv("LOG_FORMAT", "text")),
		CORSAllowedOrigins: splitList(getEnv("CORS_ALLOWED_ORIGINS", "*")),
		RateLimitPerMinute: getEnvInt(log, "RATE_LIMIT_PER_MINUTE", 120),
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	log.Infof("Configuration loaded successfully. Port: %s, Store: %s, Page size: %d",
		cfg.ServerPort, cfg.StoreDriver, cfg.DefaultPageSize)
	return cfg, nil
}

// Validate checks the values that have no sensible fallback.
func (c *Config) Validate() error {
	switch c.StoreDriver {
	case DriverSQLite:
		if c.DatabaseFile == "" {
			return errors.New("DATABASE_FILE must be set for the sqlite store")
		}
	case DriverMongoDB:
		if c.MongoURI == "" || c.MongoDatabase == "" {
			return errors.New("MONGODB_URI and MONGODB_DATABASE must be set for the mongodb store")
		}
	default:
		return fmt.Errorf("unsupported STORE_DRIVER %q: must be %q or %q", c.StoreDriver, DriverSQLite, DriverMongoDB)
	}

	if c.LogFormat != "text" && c.LogFormat != "json" {
		return fmt.Errorf("unsupported LOG_FORMAT %q: must be \"text\" or \"json\"", c.LogFormat)
	}
	if c.DefaultPageSize <= 0 {
		return errors.New("DEFAULT_PAGE_SIZE must be positive")
	}
	return nil
}

// getEnv reads an environment variable or returns a default value.
func getEnv(key, fallback string) string {
	if value, exists := os.LookupEnv(key); exists && strings.TrimSpace(value) != "" {
		return strings.TrimSpace(value)
	}
	return fallback
}

// getEnvInt reads a non-negative integer, falling back (with a warning) on bad input.
func getEnvInt(log logrus.FieldLogger, key string, fallback int) int {
	raw, exists := os.LookupEnv(key)
	if !exists || strings.TrimSpace(raw) == "" {
		return fallback
	}
	value, err := strconv.Atoi(strings.TrimSpace(raw))
	if err != nil || value < 0 {
		log.Warnf("Invalid %s '%s'. Using default %d. Error: %v", key, raw, fallback, err)
		return fallback
	}
	return value
}

func splitList(raw string) []string {
	parts := strings.Split(raw, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
