// Package cli holds the bootstrap steps shared by every command.
package cli

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/joho/godotenv"

	"fintrack/internal/backend"
	"fintrack/internal/config"
	"fintrack/internal/log"
)

// SetupLogger builds the component logger for a command and installs it as
// the process default.
func SetupLogger(component, level string) *log.Logger {
	logger := log.New(log.Config{
		Level:     parseLevel(level),
		Component: component,
		Handler: slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{
			Level: parseLevel(level),
		}),
	})
	log.SetDefault(logger)
	return logger
}

func parseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// LoadEnvFile loads .env if present. Missing files are fine; the environment
// simply wins.
func LoadEnvFile(logger *log.Logger) {
	if err := godotenv.Load(); err != nil {
		logger.Debug("no .env file loaded", log.FieldError, err)
	}
}

// LoadAndValidateConfig reads and validates the configuration.
func LoadAndValidateConfig() (*config.Config, error) {
	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// InitBackend builds the configured document backend. The returned cleanup
// may be nil.
func InitBackend(cfg *config.Config, logger *log.Logger) (*backend.Result, error) {
	factory := backend.NewFactory(logger.Logger)
	result, err := factory.Create(cfg.BackendConfig())
	if err != nil {
		return nil, fmt.Errorf("initialize %s backend: %w", cfg.DataBackend, err)
	}
	return result, nil
}
