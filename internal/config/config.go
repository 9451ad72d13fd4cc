package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Database   DatabaseConfig
	App        AppConfig
	Storage    StorageConfig
	Processing ProcessingPathConfig
	Cron       CronConfig
}

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

type DatabaseConfig struct {
	Driver     string
	Host       string
	Port       int
	User       string
	Password   string
	Name       string
	SSLMode    string
	SQLitePath string
}

// AppConfig holds application configuration
type AppConfig struct {
	Port           int
	Env            string
	LogLevel       string
	AllowedOrigins []string
}

// StorageConfig holds where uploaded and generated workbooks are kept
type StorageConfig struct {
	Type           string
	BasePath       string
	BaseURL        string
	MaxUploadSize  int64
	DownloadExpiry time.Duration
}

type ProcessingPathConfig struct {
	Path string
}

type CronConfig struct {
	Interval   time.Duration
	StaleAfter time.Duration
}

// Load reads the environment, optionally seeded from a .env file.
func Load() (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("load .env: %w", err)
	}

	config := &Config{}

	// Database configuration
	dbPort, err := strconv.Atoi(getEnv("DB_PORT", "5432"))
	if err != nil {
		return nil, fmt.Errorf("invalid DB_PORT: %w", err)
	}

	config.Database = DatabaseConfig{
		Driver:     strings.ToLower(getEnv("DB_DRIVER", DriverSQLite)),
		Host:       getEnv("DB_HOST", "localhost"),
		Port:       dbPort,
		User:       getEnv("DB_USER", "postgres"),
		Password:   getEnv("DB_PASSWORD", ""),
		Name:       getEnv("DB_NAME", "trackit"),
		SSLMode:    getEnv("DB_SSL_MODE", "disable"),
		SQLitePath: getEnv("SQLITE_PATH", "./data/trackit.db"),
	}

	// Application configuration
	appPort, err := strconv.Atoi(getEnv("APP_PORT", "8080"))
	if err != nil {
		return nil, fmt.Errorf("invalid APP_PORT: %w", err)
	}

	config.App = AppConfig{
		Port:           appPort,
		Env:            getEnv("APP_ENV", "development"),
		LogLevel:       getEnv("LOG_LEVEL", "info"),
		AllowedOrigins: getEnvSlice("ALLOWED_ORIGINS", []string{"http://localhost:3000"}),
	}

	// Storage configuration
	maxUpload, err := strconv.ParseInt(getEnv("MAX_UPLOAD_SIZE", "10485760"), 10, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid MAX_UPLOAD_SIZE: %w", err)
	}
	downloadExpiry, err := time.ParseDuration(getEnv("DOWNLOAD_URL_EXPIRY", "60s"))
	if err != nil {
		return nil, fmt.Errorf("invalid DOWNLOAD_URL_EXPIRY: %w", err)
	}

	config.Storage = StorageConfig{
		Type:           getEnv("STORAGE_TYPE", "local"),
		BasePath:       getEnv("STORAGE_BASE_PATH", "./uploads"),
		BaseURL:        getEnv("STORAGE_BASE_URL", "http://localhost:8080/files"),
		MaxUploadSize:  maxUpload,
		DownloadExpiry: downloadExpiry,
	}

	config.Processing = ProcessingPathConfig{
		Path: getEnv("PROCESSING_CONFIG", "config/processing.yaml"),
	}

	// Cron configuration
	interval, err := time.ParseDuration(getEnv("CRON_INTERVAL", "5m"))
	if err != nil {
		return nil, fmt.Errorf("invalid CRON_INTERVAL: %w", err)
	}
	staleAfter, err := time.ParseDuration(getEnv("STALE_PROCESSING_AFTER", "30m"))
	if err != nil {
		return nil, fmt.Errorf("invalid STALE_PROCESSING_AFTER: %w", err)
	}

	config.Cron = CronConfig{
		Interval:   interval,
		StaleAfter: staleAfter,
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("configuration validation failed: %w", err)
	}

	return config, nil
}

// Validate validates the configuration
func (c *Config) Validate() error {
	switch c.Database.Driver {
	case DriverPostgres:
		if c.Database.Password == "" {
			return fmt.Errorf("DB_PASSWORD is required for the postgres driver")
		}
	case DriverSQLite:
		if c.Database.SQLitePath == "" {
			return fmt.Errorf("SQLITE_PATH is required for the sqlite driver")
		}
	default:
		return fmt.Errorf("DB_DRIVER must be %q or %q, got %q", DriverPostgres, DriverSQLite, c.Database.Driver)
	}

	if c.Storage.Type != "local" {
		return fmt.Errorf("STORAGE_TYPE %q is not supported", c.Storage.Type)
	}
	if c.Storage.MaxUploadSize <= 0 {
		return fmt.Errorf("MAX_UPLOAD_SIZE must be positive")
	}
	if c.Cron.Interval <= 0 {
		return fmt.Errorf("CRON_INTERVAL must be positive")
	}
	if c.Cron.StaleAfter <= 0 {
		return fmt.Errorf("STALE_PROCESSING_AFTER must be positive")
	}
	return nil
}

// DatabaseURL returns the PostgreSQL connection string
func (c *Config) DatabaseURL() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.Database.User,
		c.Database.Password,
		c.Database.Host,
		c.Database.Port,
		c.Database.Name,
		c.Database.SSLMode,
	)
}

func getEnv(key, fallback string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return fallback
}

func getEnvSlice(key string, fallback []string) []string {
	value := getEnv(key, "")
	if value == "" {
		return fallback
	}
	var result []string
	for _, part := range strings.Split(value, ",") {
		if part = strings.TrimSpace(part); part != "" {
			result = append(result, part)
		}
	}
	return result
}
