// Package config loads application configuration from environment
// variables. cmd/server loads a .env file first via godotenv so local
// development does not need exported variables.
package config

import (
	"os"
	"strconv"

	"github.com/shanky2010/batch-visual-insights/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Ops      OpsConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// StorageConfig holds upload storage settings
type StorageConfig struct {
	BasePath    string
	MaxFileSize int64
	MaxUploads  int64 // concurrent upload processing bound
}

// DatabaseConfig holds database connection settings. URL is optional;
// when empty the server runs with the in-memory store.
type DatabaseConfig struct {
	URL string
}

// OpsConfig holds the secondary health/profiling server settings
type OpsConfig struct {
	Port    string
	Enabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port:    getEnvOrDefault("SERVER_PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "release"),
		},
		Storage: StorageConfig{
			BasePath:    getEnvOrDefault("UPLOAD_DIR", "uploads/datafiles"),
			MaxFileSize: getEnvInt64OrDefault("MAX_FILE_SIZE", 50*1024*1024),
			MaxUploads:  getEnvInt64OrDefault("MAX_CONCURRENT_UPLOADS", 4),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Ops: OpsConfig{
			Port:    getEnvOrDefault("OPS_PORT", "6060"),
			Enabled: getEnvBoolOrDefault("OPS_ENABLED", false),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("SERVER_PORT cannot be empty")
	}
	if config.Storage.MaxFileSize <= 0 {
		return errors.ConfigInvalid("MAX_FILE_SIZE must be positive")
	}
	if config.Storage.MaxUploads <= 0 {
		return errors.ConfigInvalid("MAX_CONCURRENT_UPLOADS must be positive")
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt64OrDefault(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseInt(value, 10, 64); err == nil {
			return parsed
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if parsed, err := strconv.ParseBool(value); err == nil {
			return parsed
		}
	}
	return defaultValue
}
