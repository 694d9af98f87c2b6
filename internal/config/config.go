package config

import (
	"os"
	"strconv"
	"time"

	"datalens/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Database DatabaseConfig
	AI       AIConfig
	Server   ServerConfig
	Storage  StorageConfig
	Data     DataConfig
}

// DatabaseConfig holds database connection settings.
// URL is optional: when empty the service runs with in-memory repositories.
type DatabaseConfig struct {
	URL     string
	SSLMode string
}

// AIConfig holds LLM related settings.
// Key is optional: when empty, only pattern-matched queries are answered.
type AIConfig struct {
	APIKey        string
	BaseURL       string
	Model         string
	SystemContext string
	MaxTokens     int
	Temperature   float64
	Timeout       time.Duration
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port     string
	OpsPort  string
	GinMode  string
	OpsDebug bool
}

// StorageConfig holds file storage settings
type StorageConfig struct {
	UploadDir   string
	TempDir     string
	MaxFileSize int64
}

// DataConfig holds data processing settings
type DataConfig struct {
	MaxRowsDisplay int
	SampleSize     int
}

const (
	defaultMaxFileSize = 200 * 1024 * 1024 // 200MB
	defaultModel       = "gpt-4"
	defaultMaxTokens   = 2000
	defaultTemperature = 0.1
)

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Database: DatabaseConfig{
			URL:     os.Getenv("DATABASE_URL"),
			SSLMode: getEnvOrDefault("SSL_MODE", "disable"),
		},
		AI: AIConfig{
			APIKey:        os.Getenv("OPENAI_API_KEY"),
			BaseURL:       getEnvOrDefault("OPENAI_BASE_URL", "https://api.openai.com/v1"),
			Model:         getEnvOrDefault("LLM_MODEL", defaultModel),
			SystemContext: "You are a data analysis assistant that translates questions about tabular data into structured query plans",
			MaxTokens:     getEnvIntOrDefault("MAX_TOKENS", defaultMaxTokens),
			Temperature:   getEnvFloatOrDefault("TEMPERATURE", defaultTemperature),
			Timeout:       getEnvDurationOrDefault("LLM_TIMEOUT", 60*time.Second),
		},
		Server: ServerConfig{
			Port:     getEnvOrDefault("PORT", "8080"),
			OpsPort:  getEnvOrDefault("OPS_PORT", "6060"),
			GinMode:  getEnvOrDefault("GIN_MODE", "debug"),
			OpsDebug: getEnvBoolOrDefault("OPS_DEBUG", true),
		},
		Storage: StorageConfig{
			UploadDir:   getEnvOrDefault("UPLOAD_DIR", "data/uploads"),
			TempDir:     getEnvOrDefault("TEMP_DIR", "data/temp"),
			MaxFileSize: int64(getEnvIntOrDefault("MAX_FILE_SIZE", defaultMaxFileSize)),
		},
		Data: DataConfig{
			MaxRowsDisplay: getEnvIntOrDefault("MAX_ROWS_DISPLAY", 1000),
			SampleSize:     getEnvIntOrDefault("SAMPLE_SIZE", 10000),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

// LLMEnabled reports whether LLM-backed query translation is available
func (c *Config) LLMEnabled() bool {
	return c.AI.APIKey != ""
}

// CreateDirectories creates the upload and temp directories if missing
func (c *Config) CreateDirectories() error {
	if err := os.MkdirAll(c.Storage.UploadDir, 0o755); err != nil {
		return errors.Wrap(err, "failed to create upload directory")
	}
	if err := os.MkdirAll(c.Storage.TempDir, 0o755); err != nil {
		return errors.Wrap(err, "failed to create temp directory")
	}
	return nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Storage.MaxFileSize <= 0 {
		return errors.ConfigInvalid("max file size must be positive")
	}
	if config.Data.MaxRowsDisplay <= 0 {
		return errors.ConfigInvalid("max rows display must be positive")
	}
	if config.AI.APIKey != "" && config.AI.Model == "" {
		return errors.ConfigInvalid("LLM model is required when an API key is set")
	}
	return nil
}

// Helper functions for environment variable parsing
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloatOrDefault(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}
