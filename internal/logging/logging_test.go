package logging

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		in   string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"DEBUG", slog.LevelDebug},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"info", slog.LevelInfo},
		{"", slog.LevelInfo},
		{"bogus", slog.LevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLevel(tt.in); got != tt.want {
			t.Errorf("ParseLevel(%q) = %v, want %v", tt.in, got, tt.want)
		}
	}
}

func TestNewWritesToFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs", "timers.log")
	logger, closeFn, err := New(path, "debug")
	if err != nil {
		t.Fatal(err)
	}
	logger.Debug("Applied timer operation", "op", "start")
	if err := closeFn(); err != nil {
		t.Fatal(err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "op=start") {
		t.Fatalf("log record missing: %s", data)
	}
}

func TestNewRespectsLevel(t *testing.T) {
	path := filepath.Join(t.TempDir(), "timers.log")
	logger, closeFn, err := New(path, "error")
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("should be filtered")
	closeFn()

	data, _ := os.ReadFile(path)
	if len(data) != 0 {
		t.Fatalf("info record should be filtered at error level: %s", data)
	}
}

func TestNewEmptyPathDiscards(t *testing.T) {
	logger, closeFn, err := New("", "info")
	if err != nil {
		t.Fatal(err)
	}
	logger.Info("nowhere")
	if err := closeFn(); err != nil {
		t.Fatal(err)
	}
}
