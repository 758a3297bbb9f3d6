package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var configKeys = []string{
	"APP_ENV", "LOG_LEVEL", "LOG_DIR", "SERVER_PORT", "CERT_FILE", "KEY_FILE",
	"BACKEND_BASE_URL", "BACKEND_TIMEOUT", "CLIENT_ID", "CACHE_STALE_TIME",
	"CACHE_RETRY", "CACHE_RETRY_DELAY", "REVALIDATE_SCHEDULE",
}

// clearEnv blanks every key Load reads; t.Setenv restores them afterwards.
func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range configKeys {
		t.Setenv(k, "")
	}
}

func TestLoadDefaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("BACKEND_BASE_URL", "http://localhost:8081/api/transactions/")

	cfg, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)

	assert.Equal(t, "http://localhost:8081/api/transactions", cfg.BackendBaseURL)
	assert.Equal(t, DefaultClientID, cfg.ClientID)
	assert.Equal(t, ":8080", cfg.ServerPort)
	assert.Equal(t, "development", cfg.AppEnv)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, time.Minute, cfg.CacheStaleTime)
	assert.Equal(t, 1, cfg.CacheRetry)
	assert.Equal(t, time.Second, cfg.CacheRetryDelay)
	assert.Zero(t, cfg.BackendTimeout)
	assert.Equal(t, "@every 1m", cfg.RevalidateSchedule)
	assert.False(t, cfg.TLSEnabled())
}

func TestLoadRequiresBackendURL(t *testing.T) {
	clearEnv(t)

	_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
	assert.ErrorContains(t, err, "BACKEND_BASE_URL")
}

func TestLoadReadsEnvFile(t *testing.T) {
	clearEnv(t)
	for _, k := range configKeys {
		// godotenv never overrides variables that are already set
		require.NoError(t, os.Unsetenv(k))
	}

	file := filepath.Join(t.TempDir(), ".env")
	content := "BACKEND_BASE_URL=http://backend:8081\n" +
		"SERVER_PORT=9090\n" +
		"CLIENT_ID=web\n" +
		"CACHE_STALE_TIME=30s\n" +
		"CACHE_RETRY=3\n" +
		"BACKEND_TIMEOUT=5s\n" +
		"CERT_FILE=cert.pem\n" +
		"KEY_FILE=key.pem\n"
	require.NoError(t, os.WriteFile(file, []byte(content), 0o600))

	cfg, err := Load(file)
	require.NoError(t, err)

	assert.Equal(t, "http://backend:8081", cfg.BackendBaseURL)
	assert.Equal(t, ":9090", cfg.ServerPort)
	assert.Equal(t, "web", cfg.ClientID)
	assert.Equal(t, 30*time.Second, cfg.CacheStaleTime)
	assert.Equal(t, 3, cfg.CacheRetry)
	assert.Equal(t, 5*time.Second, cfg.BackendTimeout)
	assert.True(t, cfg.TLSEnabled())
}

func TestLoadRejectsBadValues(t *testing.T) {
	tests := map[string]string{
		"CACHE_STALE_TIME":  "soon",
		"CACHE_RETRY":       "-1",
		"CACHE_RETRY_DELAY": "1 second",
		"BACKEND_TIMEOUT":   "x",
	}

	for key, value := range tests {
		t.Run(key, func(t *testing.T) {
			clearEnv(t)
			t.Setenv("BACKEND_BASE_URL", "http://backend")
			t.Setenv(key, value)

			_, err := Load(filepath.Join(t.TempDir(), "missing.env"))
			assert.ErrorContains(t, err, key)
		})
	}
}
