package app

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := []struct {
		input string
		want  LogLevel
	}{
		{"debug", LogLevelDebug},
		{"DEBUG", LogLevelDebug},
		{"info", LogLevelInfo},
		{"warn", LogLevelWarn},
		{"warning", LogLevelWarn},
		{"error", LogLevelError},
		{"garbage", LogLevelInfo},
		{"", LogLevelInfo},
	}
	for _, tt := range tests {
		if got := ParseLogLevel(tt.input); got != tt.want {
			t.Errorf("ParseLogLevel(%q) = %v, want %v", tt.input, got, tt.want)
		}
	}
}

func TestLoggerLevelFiltering(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, LogLevelWarn)

	log.Debug("hidden debug")
	log.Info("hidden info")
	log.Warn("visible warning")
	log.Error("visible error")

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Errorf("low levels leaked: %q", out)
	}
	if !strings.Contains(out, "visible warning") || !strings.Contains(out, "visible error") {
		t.Errorf("high levels missing: %q", out)
	}
	if !strings.Contains(out, "[WARN]") || !strings.Contains(out, "[ERROR]") {
		t.Errorf("level markers missing: %q", out)
	}
}

func TestLoggerFormatting(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, LogLevelInfo)

	log.Info("loaded %s in %dms", "en-US", 42)
	if !strings.Contains(buf.String(), "loaded en-US in 42ms") {
		t.Errorf("output = %q", buf.String())
	}
	if !strings.Contains(buf.String(), "spellstorm:") {
		t.Errorf("prefix missing: %q", buf.String())
	}
}

func TestLoggerFields(t *testing.T) {
	var buf bytes.Buffer
	log := NewLogger(&buf, LogLevelInfo).
		WithComponent("scheduler").
		WithField("language", "en-US")

	log.Info("scan done")
	out := buf.String()
	if !strings.Contains(out, "component=scheduler") {
		t.Errorf("component field missing: %q", out)
	}
	if !strings.Contains(out, "language=en-US") {
		t.Errorf("language field missing: %q", out)
	}
}

func TestLoggerWithFieldIsImmutable(t *testing.T) {
	var buf bytes.Buffer
	base := NewLogger(&buf, LogLevelInfo)
	derived := base.WithField("key", "value")

	base.Info("from base")
	if strings.Contains(buf.String(), "key=value") {
		t.Errorf("field leaked into base logger: %q", buf.String())
	}

	buf.Reset()
	derived.Info("from derived")
	if !strings.Contains(buf.String(), "key=value") {
		t.Errorf("derived logger lost its field: %q", buf.String())
	}
}

func TestNullLogger(t *testing.T) {
	// Must not panic and must not write anywhere.
	NullLogger.Debug("x")
	NullLogger.Info("x")
	NullLogger.Warn("x")
	NullLogger.Error("x")
}

func TestLogLevelString(t *testing.T) {
	tests := []struct {
		level LogLevel
		want  string
	}{
		{LogLevelDebug, "DEBUG"},
		{LogLevelInfo, "INFO"},
		{LogLevelWarn, "WARN"},
		{LogLevelError, "ERROR"},
		{LogLevel(99), "UNKNOWN"},
	}
	for _, tt := range tests {
		if got := tt.level.String(); got != tt.want {
			t.Errorf("LogLevel(%d).String() = %q, want %q", tt.level, got, tt.want)
		}
	}
}
