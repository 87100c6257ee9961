package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"pocketledger/internal/models"
)

func TestLoad_Defaults(t *testing.T) {
	for _, key := range []string{"PORT", "DB_PATH", "SECURE_COOKIE", "SESSION_DURATION", "DEFAULT_CURRENCY", "LOG_LEVEL", "LOG_FORMAT", "ADMIN_USER", "ADMIN_PASSWORD"} {
		t.Setenv(key, "")
	}

	cfg := Load()
	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, "expenses.db", cfg.DBPath)
	assert.False(t, cfg.SecureCookie)
	assert.Equal(t, 30*24*time.Hour, cfg.SessionDuration)
	assert.Equal(t, models.PKR, cfg.Currency())
	assert.NoError(t, cfg.Validate())
}

func TestLoad_FromEnv(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("SECURE_COOKIE", "true")
	t.Setenv("SESSION_DURATION", "2h")
	t.Setenv("DEFAULT_CURRENCY", "USD")

	cfg := Load()
	assert.Equal(t, "9090", cfg.Port)
	assert.True(t, cfg.SecureCookie)
	assert.Equal(t, 2*time.Hour, cfg.SessionDuration)
	assert.Equal(t, models.USD, cfg.Currency())
}

func TestLoadEnvFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("DB_PATH=/tmp/from-dotenv.db\n"), 0o600))
	t.Setenv("DB_PATH", "")
	os.Unsetenv("DB_PATH")

	LoadEnvFile(path)
	assert.Equal(t, "/tmp/from-dotenv.db", Load().DBPath)
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(c *Config)
		wantErr string
	}{
		{"bad port", func(c *Config) { c.Port = "abc" }, "invalid port"},
		{"port range", func(c *Config) { c.Port = "70000" }, "between 1 and 65535"},
		{"empty db path", func(c *Config) { c.DBPath = " " }, "database path"},
		{"short session", func(c *Config) { c.SessionDuration = time.Second }, "session duration"},
		{"bad currency", func(c *Config) { c.DefaultCurrency = "JPY" }, "default currency"},
		{"admin pair", func(c *Config) { c.AdminUser = "root" }, "ADMIN_USER and ADMIN_PASSWORD"},
		{"log format", func(c *Config) { c.LogFormat = "xml" }, "log format"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := &Config{
				Port:            "8080",
				DBPath:          "expenses.db",
				SessionDuration: time.Hour,
				DefaultCurrency: "PKR",
				LogFormat:       "text",
			}
			tt.mutate(cfg)

			err := cfg.Validate()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}
