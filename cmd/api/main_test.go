package main

import (
	"errors"
	"log/slog"
	"strings"
	"testing"
)

func TestRedactURL(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		raw  string
		want string
	}{
		{"empty", "", ""},
		{"password removed", "postgres://scribe:s3cret@db:5432/scribe", "postgres://scribe@db:5432/scribe"},
		{"no credentials", "redis://localhost:6379/0", "redis://localhost:6379/0"},
		{"password only", "redis://:s3cret@localhost:6379", "redis://redacted@localhost:6379"},
		{"unparseable", "postgres://%zz", "[redacted]"},
	}

	for _, tt := range tests {
		tt := tt
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			if got := redactURL(tt.raw); got != tt.want {
				t.Errorf("redactURL(%q) = %q, want %q", tt.raw, got, tt.want)
			}
		})
	}
}

func TestSanitizeError(t *testing.T) {
	t.Parallel()

	dsn := "postgres://scribe:s3cret@db:5432/scribe"
	err := errors.New("connect " + dsn + ": failed (password=s3cret)")

	got := sanitizeError(err, dsn)
	if strings.Contains(got, "s3cret") {
		t.Errorf("sanitizeError leaked the password: %s", got)
	}
	if !strings.Contains(got, "postgres://scribe@db:5432/scribe") {
		t.Errorf("sanitizeError dropped the redacted URL: %s", got)
	}

	if got := sanitizeError(nil); got != "" {
		t.Errorf("sanitizeError(nil) = %q, want empty", got)
	}
}

func TestParseLogLevel(t *testing.T) {
	t.Parallel()

	tests := map[string]slog.Level{
		"debug":   slog.LevelDebug,
		"DEBUG":   slog.LevelDebug,
		"info":    slog.LevelInfo,
		"warn":    slog.LevelWarn,
		"error":   slog.LevelError,
		"verbose": slog.LevelInfo,
	}

	for input, want := range tests {
		if got := parseLogLevel(input); got != want {
			t.Errorf("parseLogLevel(%q) = %v, want %v", input, got, want)
		}
	}
}
