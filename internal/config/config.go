package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"paxclean/internal/errors"

	"github.com/go-playground/validator/v10"
)

// Config represents the complete application configuration
type Config struct {
	Pipeline PipelineConfig `validate:"required"`
	Server   ServerConfig   `validate:"required"`
	Database DatabaseConfig
	Logging  LoggingConfig `validate:"required"`
}

// PipelineConfig holds cleaning run settings
type PipelineConfig struct {
	Input          string
	OutputDir      string `validate:"required"`
	RulesFile      string
	Formats        []string `validate:"min=1,dive,oneof=csv xlsx"`
	ParallelFields int      `validate:"gte=0,lte=64"`
}

// ServerConfig holds web server settings
type ServerConfig struct {
	Port         string `validate:"required,numeric"`
	GinMode      string `validate:"oneof=debug release test"`
	MaxUploadMB  int    `validate:"gt=0"`
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds database connection settings. Persistence is off when
// URL is empty.
type DatabaseConfig struct {
	URL string
}

// Enabled reports whether run persistence is configured.
func (d DatabaseConfig) Enabled() bool {
	return d.URL != ""
}

// LoggingConfig holds log output settings
type LoggingConfig struct {
	Level  string `validate:"oneof=trace debug info warn warning error fatal panic"`
	Format string `validate:"oneof=text json"`
}

// Load reads configuration from environment variables and validates it
func Load() (*Config, error) {
	config := &Config{
		Pipeline: *loadPipelineConfig(),
		Server:   *loadServerConfig(),
		Database: DatabaseConfig{URL: os.Getenv("DATABASE_URL")},
		Logging:  *loadLoggingConfig(),
	}

	if err := validateConfig(config); err != nil {
		return nil, errors.Wrap(err, "configuration validation failed")
	}

	return config, nil
}

func loadPipelineConfig() *PipelineConfig {
	return &PipelineConfig{
		Input:          getEnvOrDefault("PAXCLEAN_INPUT", ""),
		OutputDir:      getEnvOrDefault("PAXCLEAN_OUTPUT_DIR", "./out"),
		RulesFile:      getEnvOrDefault("PAXCLEAN_RULES_FILE", ""),
		Formats:        getEnvListOrDefault("PAXCLEAN_FORMATS", []string{"csv"}),
		ParallelFields: getEnvIntOrDefault("PAXCLEAN_PARALLEL_FIELDS", 0),
	}
}

func loadServerConfig() *ServerConfig {
	return &ServerConfig{
		Port:         getEnvOrDefault("PORT", "8080"),
		GinMode:      getEnvOrDefault("GIN_MODE", "debug"),
		MaxUploadMB:  getEnvIntOrDefault("PAXCLEAN_MAX_UPLOAD_MB", 32),
		ReadTimeout:  getEnvDurationOrDefault("PAXCLEAN_READ_TIMEOUT", 30*time.Second),
		WriteTimeout: getEnvDurationOrDefault("PAXCLEAN_WRITE_TIMEOUT", 60*time.Second),
	}
}

func loadLoggingConfig() *LoggingConfig {
	return &LoggingConfig{
		Level:  strings.ToLower(getEnvOrDefault("PAXCLEAN_LOG_LEVEL", "info")),
		Format: strings.ToLower(getEnvOrDefault("PAXCLEAN_LOG_FORMAT", "text")),
	}
}

// Validate re-checks the configuration, e.g. after command-line overrides.
func (c *Config) Validate() error {
	return validateConfig(c)
}

func validateConfig(config *Config) error {
	validate := validator.New()
	if err := validate.Struct(config); err != nil {
		if verrs, ok := err.(validator.ValidationErrors); ok {
			msgs := make([]string, 0, len(verrs))
			for _, fe := range verrs {
				msgs = append(msgs, fmt.Sprintf("%s failed %q (value %v)", fe.Namespace(), fe.Tag(), fe.Value()))
			}
			return errors.ConfigInvalid(strings.Join(msgs, "; "))
		}
		return errors.WithCode(errors.CodeConfigInvalid, err)
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

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

// getEnvListOrDefault splits a comma-separated value, dropping empty items
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	var out []string
	for _, item := range strings.Split(value, ",") {
		if item = strings.ToLower(strings.TrimSpace(item)); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
