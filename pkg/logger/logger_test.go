package logger

import (
	"bytes"
	"log/slog"
	"strings"
	"testing"
)

func TestLogLevelFiltering(t *testing.T) {
	originalLogger := Logger
	t.Cleanup(func() {
		Logger = originalLogger
		SetLogLevel(INFO)
	})

	var buf bytes.Buffer
	Logger = slog.New(slog.NewTextHandler(&buf, nil))

	SetLogLevel(INFO)
	Debug("debug message should be filtered")
	Info("info message should appear")

	output := buf.String()
	if strings.Contains(output, "debug message should be filtered") {
		t.Fatalf("debug message was logged at INFO level:\n%s", output)
	}
	if !strings.Contains(output, "info message should appear") {
		t.Fatalf("info message was not logged:\n%s", output)
	}
}

func TestEnabledFollowsLevel(t *testing.T) {
	t.Cleanup(func() {
		SetLogLevel(INFO)
	})

	SetLogLevel(ERROR)
	if Enabled(INFO) {
		t.Fatal("INFO should be disabled at ERROR level")
	}
	if !Enabled(ERROR) {
		t.Fatal("ERROR should be enabled at ERROR level")
	}

	SetLogLevel(DEBUG)
	if !Enabled(INFO) {
		t.Fatal("INFO should be enabled at DEBUG level")
	}
}

func TestParseLogLevel(t *testing.T) {
	cases := []struct {
		value   string
		want    LogLevel
		wantErr bool
	}{
		{value: "debug", want: DEBUG},
		{value: " INFO ", want: INFO},
		{value: "Error", want: ERROR},
		{value: "verbose", want: INFO, wantErr: true},
	}

	for _, tc := range cases {
		got, err := ParseLogLevel(tc.value)
		if tc.wantErr && err == nil {
			t.Fatalf("expected error for %q", tc.value)
		}
		if !tc.wantErr && err != nil {
			t.Fatalf("unexpected error for %q: %v", tc.value, err)
		}
		if got != tc.want {
			t.Fatalf("ParseLogLevel(%q) = %v, want %v", tc.value, got, tc.want)
		}
	}
}
