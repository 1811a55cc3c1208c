package util

import (
	"bytes"
	"strings"
	"testing"
)

func TestParseLogLevel(t *testing.T) {
	tests := map[string]LogLevel{
		"trace":   LevelTrace,
		"TRACE":   LevelTrace,
		"debug":   LevelDebug,
		"info":    LevelInfo,
		" warn ":  LevelWarn,
		"error":   LevelError,
		"unknown": LevelInfo,
	}

	for input, want := range tests {
		if got := ParseLogLevel(input); got != want {
			t.Fatalf("ParseLogLevel(%q) = %v, want %v", input, got, want)
		}
	}

	if _, ok := LookupLogLevel("verbose"); ok {
		t.Fatalf("LookupLogLevel accepted unknown level")
	}
}

func TestLoggerFiltersBelowLevel(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLoggerWithWriter(LevelWarn, &buf)

	logger.Debugf("hidden %d", 1)
	logger.Infof("hidden %d", 2)
	logger.Warnf("shown %d", 3)
	logger.Errorf("shown %d", 4)

	out := buf.String()
	if strings.Contains(out, "hidden") {
		t.Fatalf("expected debug/info to be filtered, got %q", out)
	}
	if !strings.Contains(out, "[WARN] shown 3") || !strings.Contains(out, "[ERROR] shown 4") {
		t.Fatalf("missing warn/error lines in %q", out)
	}

	logger.SetLevel(LevelTrace)
	logger.Tracef("now visible")
	if !strings.Contains(buf.String(), "[TRACE] now visible") {
		t.Fatalf("expected trace line after SetLevel, got %q", buf.String())
	}
}

func TestDiscardDropsErrors(t *testing.T) {
	logger := Discard()
	if logger.Enabled(LevelError) {
		t.Fatalf("discard logger should not enable error level")
	}
}
