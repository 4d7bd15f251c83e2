package export

import (
	"bytes"
	"strings"
	"testing"

	"github.com/iksnae/adk-chat/internal"
)

func TestNewExporter(t *testing.T) {
	tests := []struct {
		format  string
		wantExt string
		// markers every export of the test transcript must contain
		want []string
	}{
		{"jsonl", "jsonl", []string{`"session_id":"s1"`, `"tool_events"`, "get_mood", "thank you!"}},
		{"json", "json", []string{`"tool_events"`, `"functionResponse"`, "get_mood", "thank you!"}},
		{"yaml", "yaml", []string{"tool_events:", "kind: functionCall", "get_mood", "thank you!"}},
		{"md", "md", []string{"# Test Conversation", "🔧 `get_mood(", "✅ `get_mood` success", "thank you!"}},
		{"markdown", "md", []string{"**Messages:** 2", "\\*\\*well\\*\\*"}},
	}

	transcript := internal.CreateTestTranscript("s1")
	for _, tt := range tests {
		t.Run(tt.format, func(t *testing.T) {
			exporter, err := NewExporter(tt.format)
			if err != nil {
				t.Fatalf("NewExporter(%q) error = %v", tt.format, err)
			}
			if got := exporter.Extension(); got != tt.wantExt {
				t.Errorf("Extension() = %q, want %q", got, tt.wantExt)
			}

			var buf bytes.Buffer
			if err := exporter.Export(&transcript, &buf); err != nil {
				t.Fatalf("Export() error = %v", err)
			}
			out := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(out, want) {
					t.Errorf("%s export missing %q:\n%s", tt.format, want, out)
				}
			}
			if !strings.Contains(out, "Hello, how are you?") {
				t.Errorf("%s export missing the user turn", tt.format)
			}
		})
	}
}

func TestNewExporter_Unsupported(t *testing.T) {
	for _, format := range []string{"xml", "", "JSONL"} {
		exporter, err := NewExporter(format)
		if err == nil {
			t.Errorf("NewExporter(%q) = %T, want error", format, exporter)
			continue
		}
		if !strings.Contains(err.Error(), "supported: jsonl, md, yaml, json") {
			t.Errorf("error %q should list the supported formats", err)
		}
	}
}

func TestExporters_EmptyTranscript(t *testing.T) {
	transcript := internal.CreateTestTranscriptWithMessages("empty", nil)

	for _, format := range []string{"jsonl", "json", "yaml", "md"} {
		exporter, err := NewExporter(format)
		if err != nil {
			t.Fatalf("NewExporter(%q) error = %v", format, err)
		}
		var buf bytes.Buffer
		if err := exporter.Export(&transcript, &buf); err != nil {
			t.Errorf("%s: Export() of an empty transcript error = %v", format, err)
		}
		if format == "jsonl" && buf.Len() != 0 {
			t.Errorf("jsonl export of no messages should be empty, got %q", buf.String())
		}
	}
}
