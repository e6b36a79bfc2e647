// Package config provides configuration management for densho-reconcile.
// It loads configuration from environment variables and .env files.
package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
)

// DefaultDateToleranceDays is used when RECONCILE_DATE_TOLERANCE_DAYS is unset.
const DefaultDateToleranceDays = 14

// Config represents the application configuration.
type Config struct {
	Storage   StorageConfig
	Reconcile ReconcileConfig
	Debug     bool
}

// StorageConfig represents where invoices, reports and backups live.
type StorageConfig struct {
	Root            string
	DBPath          string
	ReportsDir      string
	DriveFolderName string
}

// ReconcileConfig represents reconciliation settings.
type ReconcileConfig struct {
	DateToleranceDays int
	RulesFile         string
}

// Load loads configuration from environment variables.
// It automatically loads .env file from the current directory if available.
// You can optionally specify a custom .env file path.
func Load(envPath ...string) (*Config, error) {
	if len(envPath) > 0 && envPath[0] != "" {
		if err := godotenv.Load(envPath[0]); err != nil {
			return nil, fmt.Errorf("failed to load .env file: %w", err)
		}
	} else {
		// Try to load .env from current directory (ignore error if not found)
		_ = godotenv.Load()
	}

	tolerance, err := parseIntEnv("RECONCILE_DATE_TOLERANCE_DAYS", DefaultDateToleranceDays)
	if err != nil {
		return nil, fmt.Errorf("invalid RECONCILE_DATE_TOLERANCE_DAYS: %w", err)
	}

	config := &Config{
		Storage: StorageConfig{
			Root:            getEnvOrDefault("DENSHO_ROOT", "./densho"),
			DBPath:          os.Getenv("DENSHO_DB_PATH"),
			ReportsDir:      os.Getenv("DENSHO_REPORTS_DIR"),
			DriveFolderName: getEnvOrDefault("DRIVE_FOLDER_NAME", "電子帳簿"),
		},
		Reconcile: ReconcileConfig{
			DateToleranceDays: tolerance,
			RulesFile:         getEnvOrDefault("DENSHO_RULES_FILE", "config/reconcile-rules.yaml"),
		},
		Debug: os.Getenv("DEBUG") == "true",
	}

	return config, nil
}

// Validate validates the configuration.
// It checks if all required fields are set and that the date tolerance is
// not negative.
func (c *Config) Validate(required ...[]string) error {
	if c.Reconcile.DateToleranceDays < 0 {
		return fmt.Errorf("date tolerance must not be negative: %d", c.Reconcile.DateToleranceDays)
	}

	var missing []string

	for _, path := range required {
		if len(path) < 2 {
			continue
		}

		var value string
		switch path[0] {
		case "storage":
			switch path[1] {
			case "root":
				value = c.Storage.Root
			case "dbPath":
				value = c.Storage.DBPath
			case "reportsDir":
				value = c.Storage.ReportsDir
			case "driveFolderName":
				value = c.Storage.DriveFolderName
			}
		case "reconcile":
			switch path[1] {
			case "rulesFile":
				value = c.Reconcile.RulesFile
			}
		}

		if value == "" {
			missing = append(missing, strings.Join(path, "."))
		}
	}

	if len(missing) > 0 {
		return fmt.Errorf("missing required configuration: %v\nPlease check your .env file or environment variables", missing)
	}

	return nil
}

// getEnvOrDefault returns the value of the environment variable or a default value if not set.
func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// parseIntEnv parses an int from an environment variable.
// Returns defaultValue if the environment variable is not set.
func parseIntEnv(key string, defaultValue int) (int, error) {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue, nil
	}

	parsed, err := strconv.Atoi(value)
	if err != nil {
		return 0, fmt.Errorf("invalid integer value for %s: %s", key, value)
	}

	return parsed, nil
}
