package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"fintrack/internal/backend"
)

// Config holds all application configuration.
type Config struct {
	// Backend selection
	DataBackend backend.Type

	// SQLite
	SQLiteDBPath string

	// Backup
	BackupDir string

	// Reporting
	TrendMonths int

	// Logging
	LogLevel string
}

// Load reads configuration from environment variables with sensible defaults.
func Load() *Config {
	return &Config{
		DataBackend:  backend.Type(getEnv("FINTRACK_BACKEND", "sqlite")),
		SQLiteDBPath: getEnv("FINTRACK_DB_PATH", "./data/fintrack.db"),
		BackupDir:    getEnv("FINTRACK_BACKUP_DIR", "."),
		TrendMonths:  getEnvInt("FINTRACK_TREND_MONTHS", 6),
		LogLevel:     getEnv("FINTRACK_LOG_LEVEL", "info"),
	}
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	var errors []string

	if !c.DataBackend.IsValid() {
		errors = append(errors, fmt.Sprintf("FINTRACK_BACKEND must be one of: sqlite, memory (got %q)", c.DataBackend))
	}

	if c.DataBackend == backend.SQLiteBackend && c.SQLiteDBPath == "" {
		errors = append(errors, "FINTRACK_DB_PATH is required when the sqlite backend is selected")
	}

	if c.BackupDir == "" {
		errors = append(errors, "FINTRACK_BACKUP_DIR must not be empty")
	}

	if c.TrendMonths < 1 || c.TrendMonths > 24 {
		errors = append(errors, fmt.Sprintf("FINTRACK_TREND_MONTHS must be between 1 and 24 (got %d)", c.TrendMonths))
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "error":
	default:
		errors = append(errors, fmt.Sprintf("FINTRACK_LOG_LEVEL must be one of: debug, info, warn, error (got %q)", c.LogLevel))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}

	return nil
}

// BackendConfig converts the app configuration into factory input.
func (c *Config) BackendConfig() backend.Config {
	return backend.Config{
		Type:         c.DataBackend,
		SQLiteDBPath: c.SQLiteDBPath,
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.Atoi(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
