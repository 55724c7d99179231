// Package config contains everything related to configuration
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

// Config holds the application configuration.
type Config struct {
	APIURL           string
	APIToken         string
	ProfilesPath     string
	DatabasePath     string
	ListenAddr       string
	LogLevel         string
	LogFile          string
	RefreshInterval  time.Duration
	UsageHistoryDays int
}

// Default values
const (
	defaultRefreshInterval  = 60 * time.Second
	defaultUsageHistoryDays = 30
	defaultListenAddr       = "127.0.0.1:8089"
	maxUsageHistoryDays     = 365
)

// Load reads configuration from .env files and environment variables.
// The API URL and token may be empty here: they can come from the profiles file.
func Load() (*Config, error) {
	// Try loading .env from multiple locations
	envPaths := getEnvPaths()
	for _, path := range envPaths {
		if _, err := os.Stat(path); err == nil {
			_ = godotenv.Load(path)
			break
		}
	}

	var defaultURL, defaultToken string
	if creds := LoadCLICredentials(); creds != nil {
		defaultURL = creds.APIURL
		defaultToken = creds.Token
	}

	cfg := &Config{
		APIURL:           strings.TrimRight(getEnvString("BREEZE_API_URL", defaultURL), "/"),
		APIToken:         getEnvString("BREEZE_API_TOKEN", defaultToken),
		ProfilesPath:     getEnvString("PROFILES_PATH", getDefaultProfilesPath()),
		DatabasePath:     getEnvString("DATABASE_PATH", getDefaultDatabasePath()),
		ListenAddr:       getEnvString("LISTEN_ADDR", defaultListenAddr),
		LogLevel:         getEnvString("LOG_LEVEL", "info"),
		LogFile:          getEnvString("LOG_FILE", getDefaultLogPath()),
		RefreshInterval:  getEnvDuration("REFRESH_INTERVAL", defaultRefreshInterval),
		UsageHistoryDays: getEnvInt("USAGE_HISTORY_DAYS", defaultUsageHistoryDays),
	}

	if cfg.UsageHistoryDays <= 0 || cfg.UsageHistoryDays > maxUsageHistoryDays {
		return nil, fmt.Errorf("USAGE_HISTORY_DAYS must be between 1 and %d, got %d",
			maxUsageHistoryDays, cfg.UsageHistoryDays)
	}

	if cfg.RefreshInterval < time.Second {
		return nil, fmt.Errorf("REFRESH_INTERVAL must be at least 1s, got %s", cfg.RefreshInterval)
	}

	// Ensure database directory exists
	if err := ensureDir(filepath.Dir(cfg.DatabasePath)); err != nil {
		return nil, err
	}

	// Ensure profiles directory exists
	if err := ensureDir(filepath.Dir(cfg.ProfilesPath)); err != nil {
		return nil, err
	}

	return cfg, nil
}

// HasDirectCredentials reports whether an API URL and token were configured
// without going through the profiles file.
func (c *Config) HasDirectCredentials() bool {
	return c.APIURL != "" && c.APIToken != ""
}

// getEnvPaths returns a list of paths to check for .env files.
func getEnvPaths() []string {
	var paths []string

	// Current directory
	if cwd, err := os.Getwd(); err == nil {
		paths = append(paths, filepath.Join(cwd, ".env"))
	}

	// Home directory locations
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".config", "breeze-console", ".env"),
			filepath.Join(home, ".config", "breeze", ".env"),
		)
	}

	return paths
}

func configDir() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "breeze-console")
}

// getDefaultDatabasePath returns the default path for the SQLite cache.
func getDefaultDatabasePath() string {
	dir := configDir()
	if dir == "" {
		return "breeze-console.db"
	}
	return filepath.Join(dir, "cache.db")
}

// getDefaultProfilesPath returns the default path for the profiles JSON file.
func getDefaultProfilesPath() string {
	dir := configDir()
	if dir == "" {
		return "profiles.json"
	}
	return filepath.Join(dir, "profiles.json")
}

func getDefaultLogPath() string {
	dir := configDir()
	if dir == "" {
		return "breeze-console.log"
	}
	return filepath.Join(dir, "console.log")
}

// getEnvString retrieves a string environment variable or returns the default.
func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

// getEnvInt retrieves an integer environment variable or returns the default.
func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(strings.TrimSpace(value)); err == nil {
			return n
		}
	}
	return defaultValue
}

// getEnvDuration retrieves a duration environment variable or returns the default.
// Accepts values like "30s", "1m", "500ms".
func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
		// Try parsing as seconds if no unit specified
		if secs, err := strconv.Atoi(value); err == nil {
			return time.Duration(secs) * time.Second
		}
	}
	return defaultValue
}

// ensureDir creates a directory and all parent directories if they don't exist.
func ensureDir(path string) error {
	if path == "" || path == "." {
		return nil
	}
	return os.MkdirAll(path, 0o750)
}
