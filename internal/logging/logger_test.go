package logging

import (
	"bytes"
	"context"
	"encoding/json"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"canbridge/internal/config"
)

func TestNewWritesLogFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "canbridge.log")
	cfg := config.Config{AppEnv: "prod", LogLevel: slog.LevelInfo, LogFile: path}

	logger, closer := New(cfg, "1.2.3", "canbridge")
	logger.Debug("dropped")
	logger.Info("dispatch started", "tick_rate", 100)
	if err := closer.Close(); err != nil {
		t.Fatalf("Close: %v", err)
	}

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read log file: %v", err)
	}
	lines := bytes.Split(bytes.TrimSpace(data), []byte("\n"))
	if len(lines) != 1 {
		t.Fatalf("log lines = %d, want 1:\n%s", len(lines), data)
	}

	var rec map[string]any
	if err := json.Unmarshal(lines[0], &rec); err != nil {
		t.Fatalf("decode log line: %v", err)
	}
	want := map[string]any{
		"msg":       "dispatch started",
		"app":       "canbridge",
		"version":   "1.2.3",
		"env":       "prod",
		"tick_rate": float64(100),
	}
	for k, v := range want {
		if rec[k] != v {
			t.Errorf("%s = %v, want %v", k, rec[k], v)
		}
	}
}

func TestNewWithoutFile(t *testing.T) {
	logger, closer := New(config.Config{LogLevel: slog.LevelWarn}, "dev", "canbridge")
	if logger.Enabled(context.Background(), slog.LevelInfo) {
		t.Error("info enabled at warn level")
	}
	if err := closer.Close(); err != nil {
		t.Errorf("Close: %v", err)
	}
}

type countingHandler struct {
	level slog.Level
	n     *int
}

func (h countingHandler) Enabled(_ context.Context, l slog.Level) bool { return l >= h.level }
func (h countingHandler) Handle(context.Context, slog.Record) error    { *h.n++; return nil }
func (h countingHandler) WithAttrs([]slog.Attr) slog.Handler           { return h }
func (h countingHandler) WithGroup(string) slog.Handler                { return h }

func TestFanoutRespectsLevels(t *testing.T) {
	var debugCount, errorCount int
	logger := slog.New(fanout{
		countingHandler{level: slog.LevelDebug, n: &debugCount},
		countingHandler{level: slog.LevelError, n: &errorCount},
	})

	logger.Debug("a")
	logger.Info("b")
	logger.Error("c")

	if debugCount != 3 {
		t.Errorf("debug handler got %d records, want 3", debugCount)
	}
	if errorCount != 1 {
		t.Errorf("error handler got %d records, want 1", errorCount)
	}
}
