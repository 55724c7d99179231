package logger

import (
	"bytes"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

type logRecord struct {
	Level   string `json:"level"`
	Msg     string `json:"msg"`
	Profile string `json:"profile"`
}

// captureJSON points the global logger at a JSON buffer at the given level.
func captureJSON(t *testing.T, level slog.Level) *bytes.Buffer {
	t.Helper()
	var buf bytes.Buffer
	original := Logger
	Logger = slog.New(slog.NewJSONHandler(&buf, &slog.HandlerOptions{Level: level}))
	t.Cleanup(func() { Logger = original })
	return &buf
}

func TestLevelHelpers(t *testing.T) {
	buf := captureJSON(t, slog.LevelDebug)

	tests := []struct {
		fn    func(msg string, args ...any)
		level string
	}{
		{Debug, "DEBUG"},
		{Info, "INFO"},
		{Warn, "WARN"},
		{Error, "ERROR"},
	}

	for _, tt := range tests {
		buf.Reset()
		tt.fn("usage refreshed", "profile", "acme")

		var rec logRecord
		if err := json.Unmarshal(buf.Bytes(), &rec); err != nil {
			t.Fatalf("%s: bad log output %q: %v", tt.level, buf.String(), err)
		}
		if rec.Level != tt.level || rec.Msg != "usage refreshed" || rec.Profile != "acme" {
			t.Errorf("%s: got %+v", tt.level, rec)
		}
	}
}

func TestLevelFiltering(t *testing.T) {
	buf := captureJSON(t, slog.LevelWarn)

	Debug("hidden")
	Info("hidden")
	if buf.Len() != 0 {
		t.Fatalf("expected nothing below warn, got %q", buf.String())
	}

	Warn("shown")
	if !strings.Contains(buf.String(), `"msg":"shown"`) {
		t.Errorf("warn was filtered: %q", buf.String())
	}
}

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"WARN", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{" error ", slog.LevelError},
		{"", slog.LevelInfo},
		{"verbose", slog.LevelInfo},
	}

	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestInit_File(t *testing.T) {
	originalLogger := Logger
	defer func() { Logger = originalLogger }()

	path := filepath.Join(t.TempDir(), "logs", "console.log")
	closer, err := Init("debug", path)
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}

	Debug("written to file", "key", "value")
	if err := closer.Close(); err != nil {
		t.Fatalf("Close failed: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("ReadFile failed: %v", err)
	}
	if !strings.Contains(string(data), "written to file") {
		t.Errorf("log file missing message, got %q", string(data))
	}
}

func TestInit_Stderr(t *testing.T) {
	originalLogger := Logger
	defer func() { Logger = originalLogger }()

	closer, err := Init("info", "")
	if err != nil {
		t.Fatalf("Init failed: %v", err)
	}
	if err := closer.Close(); err != nil {
		t.Errorf("Close should be a no-op, got %v", err)
	}
}
