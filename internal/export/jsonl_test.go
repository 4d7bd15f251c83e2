package export

import (
	"bytes"
	"encoding/json"
	"strings"
	"testing"
	"time"

	"github.com/iksnae/adk-chat/internal"
)

func TestJSONLExporter_Export(t *testing.T) {
	ts := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		transcript internal.Transcript
		want       []string
		wantLines  int
	}{
		{
			name:       "empty transcript",
			transcript: internal.CreateTestTranscriptWithMessages("test1", []internal.Message{}),
			want:       []string{},
			wantLines:  0,
		},
		{
			name:       "transcript with messages",
			transcript: internal.CreateTestTranscript("test2"),
			want: []string{
				`"role":"user"`,
				`"role":"assistant"`,
				`"session_id":"test2"`,
				`"tool_events":[`,
				`"kind":"functionCall"`,
			},
			wantLines: 2,
		},
		{
			name: "message with timestamp",
			transcript: internal.CreateTestTranscriptWithMessages("test3", []internal.Message{
				{ID: "m1", Role: internal.RoleUser, Content: "Hello", Timestamp: ts},
			}),
			want:      []string{`"timestamp":"2023-01-01T00:00:00Z"`},
			wantLines: 1,
		},
		{
			name: "message without timestamp",
			transcript: internal.CreateTestTranscriptWithMessages("test4", []internal.Message{
				{ID: "m1", Role: internal.RoleUser, Content: "Hello"},
			}),
			want:      []string{`"role":"user"`, `"content":"Hello"`},
			wantLines: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			exporter := &JSONLExporter{}

			if err := exporter.Export(&tt.transcript, &buf); err != nil {
				t.Fatalf("Export() error = %v", err)
			}

			output := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(output, want) {
					t.Errorf("Export() output missing %q\nGot: %s", want, output)
				}
			}

			lines := strings.Split(strings.TrimSpace(output), "\n")
			if output == "" {
				lines = nil
			}
			if len(lines) != tt.wantLines {
				t.Fatalf("Export() wrote %d lines, want %d", len(lines), tt.wantLines)
			}
			for i, line := range lines {
				var obj map[string]interface{}
				if err := json.Unmarshal([]byte(line), &obj); err != nil {
					t.Errorf("Line %d is not valid JSON: %v", i+1, err)
				}
			}
		})
	}
}

func TestJSONLExporter_OmitsTimestampWhenZero(t *testing.T) {
	transcript := internal.CreateTestTranscriptWithMessages("t", []internal.Message{
		{ID: "m1", Role: internal.RoleAssistant, Content: "Hi"},
	})
	var buf bytes.Buffer
	if err := (&JSONLExporter{}).Export(&transcript, &buf); err != nil {
		t.Fatalf("Export() error = %v", err)
	}
	if strings.Contains(buf.String(), "timestamp") {
		t.Errorf("zero timestamp should be omitted, got %s", buf.String())
	}
}

func TestJSONLExporter_Extension(t *testing.T) {
	exporter := &JSONLExporter{}
	if got := exporter.Extension(); got != "jsonl" {
		t.Errorf("Extension() = %q, want %q", got, "jsonl")
	}
}
