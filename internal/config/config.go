package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	AppEnv   string
	LogLevel string
	LogDir   string

	ServerPort string
	CertFile   string
	KeyFile    string

	BackendBaseURL string
	BackendTimeout time.Duration
	ClientID       string

	CacheStaleTime     time.Duration
	CacheRetry         int
	CacheRetryDelay    time.Duration
	RevalidateSchedule string
}

const DefaultClientID = "frontend-go-app"

// Load reads the optional env files (".env" when none given) and then the
// process environment.
func Load(files ...string) (*Config, error) {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !os.IsNotExist(err) {
			return nil, fmt.Errorf("failed to load %s: %w", f, err)
		}
	}

	cfg := &Config{
		AppEnv:             getEnv("APP_ENV", "development"),
		LogLevel:           getEnv("LOG_LEVEL", "info"),
		LogDir:             os.Getenv("LOG_DIR"),
		ServerPort:         getEnv("SERVER_PORT", ":8080"),
		CertFile:           os.Getenv("CERT_FILE"),
		KeyFile:            os.Getenv("KEY_FILE"),
		BackendBaseURL:     strings.TrimRight(os.Getenv("BACKEND_BASE_URL"), "/"),
		ClientID:           getEnv("CLIENT_ID", DefaultClientID),
		RevalidateSchedule: getEnv("REVALIDATE_SCHEDULE", "@every 1m"),
	}

	if cfg.BackendBaseURL == "" {
		return nil, fmt.Errorf("BACKEND_BASE_URL environment variable is not set")
	}
	if !strings.HasPrefix(cfg.ServerPort, ":") && !strings.Contains(cfg.ServerPort, ":") {
		cfg.ServerPort = ":" + cfg.ServerPort
	}

	var err error
	if cfg.BackendTimeout, err = getDuration("BACKEND_TIMEOUT", 0); err != nil {
		return nil, err
	}
	if cfg.CacheStaleTime, err = getDuration("CACHE_STALE_TIME", time.Minute); err != nil {
		return nil, err
	}
	if cfg.CacheRetryDelay, err = getDuration("CACHE_RETRY_DELAY", time.Second); err != nil {
		return nil, err
	}
	if cfg.CacheRetry, err = getInt("CACHE_RETRY", 1); err != nil {
		return nil, err
	}
	if cfg.CacheRetry < 0 {
		return nil, fmt.Errorf("CACHE_RETRY must not be negative")
	}

	return cfg, nil
}

func (c *Config) TLSEnabled() bool {
	return c.CertFile != "" && c.KeyFile != ""
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}

func getDuration(key string, fallback time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getInt(key string, fallback int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return fallback, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}
