package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestGetEnvString(t *testing.T) {
	key := "TEST_ENV_STRING"
	val := "test_value"
	t.Setenv(key, val)

	if got := getEnvString(key, "default"); got != val {
		t.Errorf("getEnvString() = %q, want %q", got, val)
	}

	if got := getEnvString("NON_EXISTENT", "default"); got != "default" {
		t.Errorf("getEnvString() = %q, want %q", got, "default")
	}
}

func TestGetEnvInt(t *testing.T) {
	key := "TEST_ENV_INT"

	tests := []struct {
		name   string
		envVal string
		want   int
	}{
		{"Valid", "90", 90},
		{"Padded", " 7 ", 7},
		{"Invalid", "ninety", 30},
		{"Empty", "", 30},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(key, tt.envVal)
			if got := getEnvInt(key, 30); got != tt.want {
				t.Errorf("getEnvInt() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestGetEnvDuration(t *testing.T) {
	key := "TEST_ENV_DURATION"

	tests := []struct {
		name       string
		envVal     string
		defaultVal time.Duration
		want       time.Duration
	}{
		{"ValidDuration", "1m", time.Second, time.Minute},
		{"ValidSeconds", "60", time.Second, 60 * time.Second},
		{"Invalid", "invalid", time.Second, time.Second},
		{"Empty", "", time.Second, time.Second},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv(key, tt.envVal)
			if got := getEnvDuration(key, tt.defaultVal); got != tt.want {
				t.Errorf("getEnvDuration() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEnsureDir(t *testing.T) {
	tmpDir := t.TempDir()
	path := filepath.Join(tmpDir, "nested", "dir")

	if err := ensureDir(path); err != nil {
		t.Fatalf("ensureDir() failed: %v", err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		t.Error("directory was not created")
	}

	if err := ensureDir(""); err != nil {
		t.Error("ensureDir(\"\") should not error")
	}
}

func TestGetDefaultPaths(t *testing.T) {
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Skipping test because user home dir cannot be found")
	}

	if got, want := getDefaultDatabasePath(), filepath.Join(home, ".config", "breeze-console", "cache.db"); got != want {
		t.Errorf("getDefaultDatabasePath() = %q, want %q", got, want)
	}

	if got, want := getDefaultProfilesPath(), filepath.Join(home, ".config", "breeze-console", "profiles.json"); got != want {
		t.Errorf("getDefaultProfilesPath() = %q, want %q", got, want)
	}
}

func TestGetEnvPaths(t *testing.T) {
	paths := getEnvPaths()
	if len(paths) == 0 {
		t.Fatal("getEnvPaths() returned empty list")
	}

	cwd, _ := os.Getwd()
	if paths[0] != filepath.Join(cwd, ".env") {
		t.Errorf("first env path = %q, want current directory .env", paths[0])
	}
}

func TestParseCredentials(t *testing.T) {
	content := `
# written by breeze login
api_url = "https://breeze.example.com/api/v1/"
token = "brz_abc123"
`
	creds := parseCredentials(content)
	if creds == nil {
		t.Fatal("parseCredentials returned nil")
	}
	if creds.APIURL != "https://breeze.example.com/api/v1" {
		t.Errorf("APIURL = %q, want trailing slash trimmed", creds.APIURL)
	}
	if creds.Token != "brz_abc123" {
		t.Errorf("Token = %q, want %q", creds.Token, "brz_abc123")
	}
}

func TestParseCredentials_Unquoted(t *testing.T) {
	creds := parseCredentials("api_url = http://localhost:3001\ntoken = local-token\n")
	if creds == nil {
		t.Fatal("parseCredentials returned nil")
	}
	if creds.APIURL != "http://localhost:3001" || creds.Token != "local-token" {
		t.Errorf("unexpected credentials: %+v", creds)
	}
}

func TestParseCredentials_Invalid(t *testing.T) {
	tests := []struct {
		name    string
		content string
	}{
		{"Empty", ""},
		{"MissingURL", `token = "secret"`},
		{"MissingToken", `api_url = "https://breeze.example.com"`},
		{"Garbage", "some random text"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := parseCredentials(tt.content); got != nil {
				t.Errorf("parseCredentials() should return nil for %s", tt.name)
			}
		})
	}
}

func setIsolatedHome(t *testing.T) string {
	t.Helper()
	tmpDir := t.TempDir()
	t.Setenv("HOME", tmpDir)
	t.Chdir(tmpDir)
	return tmpDir
}

func TestLoad(t *testing.T) {
	tmpDir := setIsolatedHome(t)
	t.Setenv("BREEZE_API_URL", "https://breeze.example.com/api/")
	t.Setenv("BREEZE_API_TOKEN", "test-token")
	t.Setenv("DATABASE_PATH", filepath.Join(tmpDir, "db", "cache.db"))
	t.Setenv("PROFILES_PATH", filepath.Join(tmpDir, "profiles.json"))
	t.Setenv("REFRESH_INTERVAL", "")
	t.Setenv("USAGE_HISTORY_DAYS", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.APIURL != "https://breeze.example.com/api" {
		t.Errorf("APIURL = %q, want trailing slash trimmed", cfg.APIURL)
	}
	if !cfg.HasDirectCredentials() {
		t.Error("HasDirectCredentials() = false, want true")
	}
	if cfg.RefreshInterval != defaultRefreshInterval {
		t.Errorf("RefreshInterval = %v, want %v", cfg.RefreshInterval, defaultRefreshInterval)
	}
	if cfg.UsageHistoryDays != defaultUsageHistoryDays {
		t.Errorf("UsageHistoryDays = %d, want %d", cfg.UsageHistoryDays, defaultUsageHistoryDays)
	}
	if _, err := os.Stat(filepath.Join(tmpDir, "db")); err != nil {
		t.Errorf("database directory not created: %v", err)
	}
}

func TestLoad_WithoutCredentials(t *testing.T) {
	setIsolatedHome(t)
	t.Setenv("BREEZE_API_URL", "")
	t.Setenv("BREEZE_API_TOKEN", "")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.HasDirectCredentials() {
		t.Error("HasDirectCredentials() = true with no credentials configured")
	}
}

func TestLoad_InvalidDays(t *testing.T) {
	setIsolatedHome(t)
	t.Setenv("USAGE_HISTORY_DAYS", "0")

	if _, err := Load(); err == nil {
		t.Error("Load() should fail for USAGE_HISTORY_DAYS=0")
	}
}

func TestLoad_InvalidRefreshInterval(t *testing.T) {
	setIsolatedHome(t)
	t.Setenv("REFRESH_INTERVAL", "100ms")

	if _, err := Load(); err == nil {
		t.Error("Load() should fail for sub-second refresh interval")
	}
}

func TestLoad_WithEnvFile(t *testing.T) {
	tmpDir := setIsolatedHome(t)
	t.Setenv("BREEZE_API_URL", "")
	t.Setenv("BREEZE_API_TOKEN", "")
	os.Unsetenv("BREEZE_API_URL")
	os.Unsetenv("BREEZE_API_TOKEN")

	envPath := filepath.Join(tmpDir, ".env")
	content := "BREEZE_API_URL=https://env.example.com\nBREEZE_API_TOKEN=env-token"
	if err := os.WriteFile(envPath, []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}

	if cfg.APIToken != "env-token" {
		t.Errorf("APIToken = %q, want env-token", cfg.APIToken)
	}
}

func TestLoad_FromCLICredentials(t *testing.T) {
	tmpDir := setIsolatedHome(t)
	t.Setenv("BREEZE_API_URL", "")
	t.Setenv("BREEZE_API_TOKEN", "")

	dir := filepath.Join(tmpDir, ".config", "breeze")
	if err := os.MkdirAll(dir, 0o750); err != nil {
		t.Fatalf("MkdirAll failed: %v", err)
	}
	content := "api_url = \"https://cli.example.com\"\ntoken = \"cli-token\"\n"
	if err := os.WriteFile(filepath.Join(dir, "credentials"), []byte(content), 0o600); err != nil {
		t.Fatalf("WriteFile failed: %v", err)
	}

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() failed: %v", err)
	}
	if cfg.APIURL != "https://cli.example.com" || cfg.APIToken != "cli-token" {
		t.Errorf("credentials not picked up: url=%q token=%q", cfg.APIURL, cfg.APIToken)
	}
}
