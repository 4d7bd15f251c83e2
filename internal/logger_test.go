package internal

import (
	"bytes"
	"encoding/json"
	"os"
	"strings"
	"testing"
)

func restoreLogger(t *testing.T) {
	t.Helper()
	originalLevel := logLevel
	t.Cleanup(func() {
		logLevel = originalLevel
		SetLogOutput(os.Stderr, true)
	})
}

func TestSetLogLevel(t *testing.T) {
	restoreLogger(t)

	SetLogLevel(LogLevelDebug)
	if logLevel != LogLevelDebug {
		t.Errorf("SetLogLevel() logLevel = %v, want LogLevelDebug", logLevel)
	}

	SetLogLevel(LogLevelError)
	if logLevel != LogLevelError {
		t.Errorf("SetLogLevel() logLevel = %v, want LogLevelError", logLevel)
	}
}

func TestSetVerbose(t *testing.T) {
	restoreLogger(t)

	SetVerbose(true)
	if logLevel != LogLevelDebug {
		t.Errorf("SetVerbose(true) logLevel = %v, want LogLevelDebug", logLevel)
	}

	SetVerbose(false)
	if logLevel != LogLevelInfo {
		t.Errorf("SetVerbose(false) logLevel = %v, want LogLevelInfo", logLevel)
	}
}

func TestLogFunctions_Filtering(t *testing.T) {
	restoreLogger(t)

	tests := []struct {
		name  string
		level LogLevel
		want  []string
		skip  []string
	}{
		{"info", LogLevelInfo, []string{"error msg", "warn msg", "info msg"}, []string{"debug msg"}},
		{"debug", LogLevelDebug, []string{"error msg", "warn msg", "info msg", "debug msg"}, nil},
		{"error", LogLevelError, []string{"error msg"}, []string{"warn msg", "info msg", "debug msg"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			SetLogLevel(tt.level)
			SetLogOutput(&buf, false)

			LogError("error %s", "msg")
			LogWarn("warn %s", "msg")
			LogInfo("info %s", "msg")
			LogDebug("debug %s", "msg")

			out := buf.String()
			for _, w := range tt.want {
				if !strings.Contains(out, w) {
					t.Errorf("output missing %q: %s", w, out)
				}
			}
			for _, s := range tt.skip {
				if strings.Contains(out, s) {
					t.Errorf("output should not contain %q: %s", s, out)
				}
			}
		})
	}
}

func TestSetLogOutput_JSONLines(t *testing.T) {
	restoreLogger(t)

	var buf bytes.Buffer
	SetLogLevel(LogLevelInfo)
	SetLogOutput(&buf, false)
	LogWarn("Failed to list sessions: %v", "refused")

	var entry map[string]interface{}
	if err := json.Unmarshal(bytes.TrimSpace(buf.Bytes()), &entry); err != nil {
		t.Fatalf("log line is not JSON: %v (%s)", err, buf.String())
	}
	if entry["level"] != "warn" {
		t.Errorf("level = %v, want warn", entry["level"])
	}
	if entry["message"] != "Failed to list sessions: refused" {
		t.Errorf("message = %v", entry["message"])
	}
	if Logger() == nil {
		t.Error("Logger() returned nil")
	}
}

func TestLogLevels(t *testing.T) {
	if LogLevelError >= LogLevelWarn {
		t.Error("LogLevelError should be less than LogLevelWarn")
	}
	if LogLevelWarn >= LogLevelInfo {
		t.Error("LogLevelWarn should be less than LogLevelInfo")
	}
	if LogLevelInfo >= LogLevelDebug {
		t.Error("LogLevelInfo should be less than LogLevelDebug")
	}
}
