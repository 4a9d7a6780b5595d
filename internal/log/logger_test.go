package log

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func newBufferLogger(component string) (*Logger, *bytes.Buffer) {
	var buf bytes.Buffer
	logger := New(Config{
		Level:     slog.LevelDebug,
		Component: component,
		Handler:   slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}),
	})
	return logger, &buf
}

func TestLoggerStampsComponent(t *testing.T) {
	logger, buf := newBufferLogger(ComponentWorker)

	logger.Info("Catch-up pass complete", FieldCount, 3)

	out := buf.String()
	if !strings.Contains(out, "component=worker") {
		t.Errorf("output missing component field: %s", out)
	}
	if !strings.Contains(out, "count=3") {
		t.Errorf("output missing count field: %s", out)
	}
	if !strings.Contains(out, "Catch-up pass complete") {
		t.Errorf("output missing message: %s", out)
	}
}

func TestWithComponent(t *testing.T) {
	logger, buf := newBufferLogger(ComponentApp)

	logger.WithComponent(ComponentStorage).Error("Load failed", FieldError, "boom")

	out := buf.String()
	if !strings.Contains(out, "component=storage") {
		t.Errorf("output missing rescoped component: %s", out)
	}
}

func TestDefaultConfig(t *testing.T) {
	cfg := DefaultConfig()
	if cfg.Component != ComponentApp {
		t.Errorf("Component = %q, want %q", cfg.Component, ComponentApp)
	}
	if cfg.Level != slog.LevelInfo {
		t.Errorf("Level = %v, want info", cfg.Level)
	}
}
