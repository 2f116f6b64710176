package config

import (
	"os"
	"strconv"

	"daxforge/internal/errors"
)

// Config represents the complete application configuration
type Config struct {
	Server   ServerConfig
	AI       AIConfig
	Database DatabaseConfig
	Upload   UploadConfig
	Ops      OpsConfig
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port    string
	GinMode string
}

// AIConfig holds AI/LLM related settings. An empty OpenAIKey selects the
// heuristic suggester instead of the hosted collaborator.
type AIConfig struct {
	OpenAIKey     string
	OpenAIModel   string
	SystemContext string
	MaxTokens     int
	Temperature   float64
}

// DatabaseConfig holds the optional usage-ledger database settings
type DatabaseConfig struct {
	URL string
}

// UploadConfig holds file ingestion limits
type UploadConfig struct {
	MaxFileSizeMB int64
}

// OpsConfig holds the ops/pprof sidecar server settings
type OpsConfig struct {
	Port         string
	PprofEnabled bool
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Server: ServerConfig{
			Port:    getEnvOrDefault("PORT", "8080"),
			GinMode: getEnvOrDefault("GIN_MODE", "debug"),
		},
		AI: AIConfig{
			OpenAIKey:     os.Getenv("OPENAI_API_KEY"),
			OpenAIModel:   getEnvOrDefault("LLM_MODEL", "gpt-4o-mini"),
			SystemContext: "You are a business-intelligence assistant for a data preparation wizard",
			MaxTokens:     getEnvIntOrDefault("MAX_TOKENS", 4000),
			Temperature:   getEnvFloatOrDefault("TEMPERATURE", 0.2),
		},
		Database: DatabaseConfig{
			URL: os.Getenv("DATABASE_URL"),
		},
		Upload: UploadConfig{
			MaxFileSizeMB: int64(getEnvIntOrDefault("MAX_UPLOAD_MB", 50)),
		},
		Ops: OpsConfig{
			Port:         getEnvOrDefault("OPS_PORT", "6060"),
			PprofEnabled: getEnvBoolOrDefault("PPROF_ENABLED", true),
		},
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func validateConfig(config *Config) error {
	if config.Server.Port == "" {
		return errors.ConfigInvalid("server port is required")
	}
	if config.Upload.MaxFileSizeMB <= 0 {
		return errors.ConfigInvalid("MAX_UPLOAD_MB must be positive")
	}
	if config.AI.MaxTokens <= 0 {
		return errors.ConfigInvalid("MAX_TOKENS must be positive")
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
