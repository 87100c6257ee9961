package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"

	"pocketledger/internal/models"
)

type Config struct {
	// HTTP Server
	Port         string
	SecureCookie bool

	// Database
	DBPath string

	// Sessions
	SessionDuration time.Duration

	// Accounts
	DefaultCurrency string
	AdminUser       string
	AdminPassword   string

	// Logging
	LogLevel  string
	LogFormat string
}

// LoadEnvFile loads a .env file for local development. A missing file is
// not an error.
func LoadEnvFile(filenames ...string) {
	_ = godotenv.Load(filenames...)
}

// Load reads the configuration from the environment.
func Load() *Config {
	return &Config{
		Port:            getEnv("PORT", "8080"),
		SecureCookie:    getEnvBool("SECURE_COOKIE", false),
		DBPath:          getEnv("DB_PATH", "expenses.db"),
		SessionDuration: getEnvDuration("SESSION_DURATION", 30*24*time.Hour),
		DefaultCurrency: getEnv("DEFAULT_CURRENCY", string(models.DefaultCurrency)),
		AdminUser:       getEnv("ADMIN_USER", ""),
		AdminPassword:   getEnv("ADMIN_PASSWORD", ""),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		LogFormat:       getEnv("LOG_FORMAT", "text"),
	}
}

// Validate validates the configuration and returns an error if invalid
func (c *Config) Validate() error {
	var errors []string

	if port, err := strconv.Atoi(c.Port); err != nil {
		errors = append(errors, fmt.Sprintf("invalid port '%s': must be a number", c.Port))
	} else if port < 1 || port > 65535 {
		errors = append(errors, fmt.Sprintf("invalid port %d: must be between 1 and 65535", port))
	}

	if strings.TrimSpace(c.DBPath) == "" {
		errors = append(errors, "database path cannot be empty")
	}

	if c.SessionDuration < time.Minute {
		errors = append(errors, fmt.Sprintf("invalid session duration %v: must be at least 1 minute", c.SessionDuration))
	}

	if _, err := models.ParseCurrency(c.DefaultCurrency, ""); err != nil || c.DefaultCurrency == "" {
		errors = append(errors, fmt.Sprintf("invalid default currency '%s': must be one of %v", c.DefaultCurrency, models.Currencies))
	}

	if (c.AdminUser == "") != (c.AdminPassword == "") {
		errors = append(errors, "ADMIN_USER and ADMIN_PASSWORD must be set together")
	}

	if c.LogFormat != "text" && c.LogFormat != "json" {
		errors = append(errors, fmt.Sprintf("invalid log format '%s': must be text or json", c.LogFormat))
	}

	if len(errors) > 0 {
		return fmt.Errorf("configuration validation failed:\n- %s", strings.Join(errors, "\n- "))
	}
	return nil
}

// Currency returns the validated default currency.
func (c *Config) Currency() models.Currency {
	cur, err := models.ParseCurrency(c.DefaultCurrency, models.DefaultCurrency)
	if err != nil {
		return models.DefaultCurrency
	}
	return cur
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if d, err := time.ParseDuration(value); err == nil {
			return d
		}
	}
	return defaultValue
}
