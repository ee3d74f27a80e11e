package logger

import (
	"bytes"
	"context"
	"log/slog"
	"strings"
	"testing"
)

func TestParseLevel(t *testing.T) {
	tests := []struct {
		name string
		want slog.Level
	}{
		{"debug", slog.LevelDebug},
		{"INFO", slog.LevelInfo},
		{"warn", slog.LevelWarn},
		{"warning", slog.LevelWarn},
		{"error", slog.LevelError},
		{"invalid", slog.LevelInfo},
		{"", slog.LevelInfo},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := ParseLevel(tt.name); got != tt.want {
				t.Errorf("ParseLevel(%q) = %v, want %v", tt.name, got, tt.want)
			}
		})
	}
}

func TestNewFormats(t *testing.T) {
	var buf bytes.Buffer
	New(&Config{Level: "info", Format: "json", Output: &buf}).Info("hello", "k", "v")
	if !strings.HasPrefix(buf.String(), "{") {
		t.Errorf("Expected JSON output, got %q", buf.String())
	}

	buf.Reset()
	New(&Config{Level: "info", Format: "text", Output: &buf}).Info("hello", "k", "v")
	if !strings.Contains(buf.String(), "msg=hello") {
		t.Errorf("Expected text output, got %q", buf.String())
	}
}

func TestNewLevelFilter(t *testing.T) {
	var buf bytes.Buffer
	l := New(&Config{Level: "warn", Format: "text", Output: &buf})
	l.Info("dropped")
	if buf.Len() != 0 {
		t.Errorf("Expected info to be filtered at warn level, got %q", buf.String())
	}
	l.Warn("kept")
	if !strings.Contains(buf.String(), "kept") {
		t.Error("Expected warn message in log")
	}
}

func TestWithContext(t *testing.T) {
	var buf bytes.Buffer
	Init(&Config{Level: "debug", Format: "text", Output: &buf})

	ctx := context.Background()
	ctx = context.WithValue(ctx, RequestIDKey, "req-1")
	ctx = context.WithValue(ctx, SessionIDKey, "sess-1")
	ctx = context.WithValue(ctx, LedgerKey, "lending")

	WithContext(ctx).Info("annotated")
	out := buf.String()
	for _, want := range []string{"request_id=req-1", "session_id=sess-1", "ledger=lending"} {
		if !strings.Contains(out, want) {
			t.Errorf("Expected %q in %q", want, out)
		}
	}
}

func TestWithContextEmpty(t *testing.T) {
	var buf bytes.Buffer
	Init(&Config{Level: "info", Format: "text", Output: &buf})

	WithContext(context.Background()).Info("plain")
	if strings.Contains(buf.String(), "session_id") {
		t.Errorf("Expected no session attribute, got %q", buf.String())
	}
}

func TestLogFunctions(t *testing.T) {
	var buf bytes.Buffer
	handler := slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug})
	slog.SetDefault(slog.New(handler))

	ctx := context.WithValue(context.Background(), RequestIDKey, "req-123")

	tests := []struct {
		name string
		log  func(context.Context, string, ...any)
		msg  string
	}{
		{"info", Info, "info message"},
		{"debug", Debug, "debug message"},
		{"warn", Warn, "warn message"},
		{"error", Error, "error message"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			buf.Reset()
			tt.log(ctx, tt.msg)
			if !strings.Contains(buf.String(), tt.msg) {
				t.Errorf("Expected %q in log", tt.msg)
			}
			if !strings.Contains(buf.String(), "req-123") {
				t.Error("Expected request id in log")
			}
		})
	}
}
