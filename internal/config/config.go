package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"freightsplit/internal/logger"
)

type Config struct {
	// Vendor registry override (YAML); empty uses the built-in registry
	VendorRegistry string

	// Output locations
	OutputDir   string
	SessionFile string

	// Google Sheets sources (optional)
	GoogleSheetURL        string
	ConsignmentSheetRange string
	MappingSheetRange     string

	// Logging Configuration
	LogLevel      string
	LogFormat     string
	LogTimeFormat string
	LogOutput     string
}

func Load() (*Config, error) {
	config := &Config{
		VendorRegistry:        getEnv("VENDOR_REGISTRY", ""),
		OutputDir:             getEnv("OUTPUT_DIR", "out"),
		SessionFile:           getEnv("SESSION_FILE", ""),
		GoogleSheetURL:        getEnv("GOOGLE_SHEET_URL", ""),
		ConsignmentSheetRange: getEnv("CONSIGNMENT_SHEET_RANGE", "Consignment Summary"),
		MappingSheetRange:     getEnv("MAPPING_SHEET_RANGE", "Account Maps"),
		LogLevel:              getEnv("LOG_LEVEL", "info"),
		LogFormat:             getEnv("LOG_FORMAT", "console"),
		LogTimeFormat:         getEnv("LOG_TIME_FORMAT", "2006-01-02T15:04:05Z07:00"),
		LogOutput:             getEnv("LOG_OUTPUT", "stderr"),
	}

	if config.SessionFile == "" {
		config.SessionFile = filepath.Join(config.OutputDir, "session.json")
	}

	if err := config.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return config, nil
}

// Default returns the configuration used when the environment cannot be loaded.
func Default() *Config {
	return &Config{
		OutputDir:             "out",
		SessionFile:           filepath.Join("out", "session.json"),
		ConsignmentSheetRange: "Consignment Summary",
		MappingSheetRange:     "Account Maps",
		LogLevel:              "info",
		LogFormat:             "console",
		LogTimeFormat:         "2006-01-02T15:04:05Z07:00",
		LogOutput:             "stderr",
	}
}

func (c *Config) validate() error {
	if strings.TrimSpace(c.OutputDir) == "" {
		return fmt.Errorf("OUTPUT_DIR must not be empty")
	}
	switch strings.ToLower(c.LogFormat) {
	case "console", "json":
	default:
		return fmt.Errorf("LOG_FORMAT must be console or json, got %q", c.LogFormat)
	}
	return nil
}

// GetLoggerConfig returns a logger configuration from the main config
func (c *Config) GetLoggerConfig() logger.LogConfig {
	return logger.LogConfig{
		Level:      c.LogLevel,
		Format:     c.LogFormat,
		TimeFormat: c.LogTimeFormat,
		Output:     c.LogOutput,
	}
}

// Registry loads the vendor registry named by VENDOR_REGISTRY, or the built-in one.
func (c *Config) Registry() (*Registry, error) {
	return LoadRegistry(c.VendorRegistry)
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
