package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"tradecraft/internal/adapters/logger"
)

// LogFormat selects the logger implementation.
type LogFormat string

const (
	LogFormatStd LogFormat = "std" // Leveled stderr logging for CLI use
	LogFormatZap LogFormat = "zap" // Structured JSON for deployments
)

// Config holds all application configuration.
type Config struct {
	// Database
	DBPath string

	// Logging
	LogLevel  logger.LogLevel
	LogFormat LogFormat

	// Sample data generation (seed command)
	SampleSeed         int64
	SampleDays         int
	SampleTradesPerDay int
}

// fileConfig mirrors the optional YAML config file.
type fileConfig struct {
	DBPath    string `yaml:"db_path"`
	LogLevel  string `yaml:"log_level"`
	LogFormat string `yaml:"log_format"`
	Sample    struct {
		Seed         int64 `yaml:"seed"`
		Days         int   `yaml:"days"`
		TradesPerDay int   `yaml:"trades_per_day"`
	} `yaml:"sample"`
}

// Load builds the configuration from (lowest to highest precedence)
// defaults, the YAML file named by CONFIG_FILE, and environment variables
// (.env supported).
func Load() (*Config, error) {
	// Load .env file, but don't fail if it doesn't exist (allow pure env vars)
	_ = godotenv.Load()

	cfg := &Config{
		DBPath:             "./data/journal.db",
		LogLevel:           logger.LevelInfo,
		LogFormat:          LogFormatStd,
		SampleSeed:         1,
		SampleDays:         90,
		SampleTradesPerDay: 2,
	}

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := applyFile(cfg, path); err != nil {
			return nil, err
		}
	}

	cfg.DBPath = getEnv("DB_PATH", cfg.DBPath)
	if levelStr := os.Getenv("LOG_LEVEL"); levelStr != "" {
		cfg.LogLevel = logger.ParseLevel(levelStr)
	}
	if formatStr := os.Getenv("LOG_FORMAT"); formatStr != "" {
		cfg.LogFormat = LogFormat(strings.ToLower(formatStr))
	}
	cfg.SampleSeed = int64(getEnvAsInt("SAMPLE_SEED", int(cfg.SampleSeed)))
	cfg.SampleDays = getEnvAsInt("SAMPLE_DAYS", cfg.SampleDays)
	cfg.SampleTradesPerDay = getEnvAsInt("SAMPLE_TRADES_PER_DAY", cfg.SampleTradesPerDay)

	var errs []string
	if cfg.DBPath == "" {
		errs = append(errs, "DB_PATH must be set")
	}
	if cfg.LogFormat != LogFormatStd && cfg.LogFormat != LogFormatZap {
		errs = append(errs, fmt.Sprintf("LOG_FORMAT must be %q or %q", LogFormatStd, LogFormatZap))
	}
	if cfg.SampleDays <= 0 {
		errs = append(errs, "SAMPLE_DAYS must be positive")
	}
	if cfg.SampleTradesPerDay <= 0 {
		errs = append(errs, "SAMPLE_TRADES_PER_DAY must be positive")
	}
	if len(errs) > 0 {
		return nil, fmt.Errorf("configuration validation failed: %s", strings.Join(errs, "; "))
	}
	return cfg, nil
}

func applyFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file %s: %w", path, err)
	}
	var fc fileConfig
	if err := yaml.Unmarshal(raw, &fc); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	if fc.DBPath != "" {
		cfg.DBPath = fc.DBPath
	}
	if fc.LogLevel != "" {
		cfg.LogLevel = logger.ParseLevel(fc.LogLevel)
	}
	if fc.LogFormat != "" {
		cfg.LogFormat = LogFormat(strings.ToLower(fc.LogFormat))
	}
	if fc.Sample.Seed != 0 {
		cfg.SampleSeed = fc.Sample.Seed
	}
	if fc.Sample.Days != 0 {
		cfg.SampleDays = fc.Sample.Days
	}
	if fc.Sample.TradesPerDay != 0 {
		cfg.SampleTradesPerDay = fc.Sample.TradesPerDay
	}
	return nil
}

// --- Env Var Helpers ---

func getEnv(key, defaultValue string) string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}
	return value
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		return defaultValue
	}
	return value
}
