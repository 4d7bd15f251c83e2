package export

import (
	"bytes"
	"strings"
	"testing"
	"time"

	"github.com/iksnae/adk-chat/internal"
)

func TestMarkdownExporter_Export(t *testing.T) {
	ts := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)

	tests := []struct {
		name       string
		transcript internal.Transcript
		want       []string
		notWant    []string
	}{
		{
			name:       "basic transcript",
			transcript: internal.CreateTestTranscript("test1"),
			want: []string{
				"# Test Conversation",
				"**Session:** test1",
				"**Messages:** 2",
				"## Messages",
				"**user:**",
				"Hello, how are you?",
				"**assistant:**",
				"`get_mood({\"who\":\"me\"})`",
				"`get_mood` success",
			},
		},
		{
			name: "message with timestamp",
			transcript: internal.CreateTestTranscriptWithMessages("test2", []internal.Message{
				{ID: "m1", Role: internal.RoleUser, Content: "Hello", Timestamp: ts},
			}),
			want: []string{"**user:** (2023-01-01T00:00:00Z)"},
		},
		{
			name: "untitled session",
			transcript: internal.Transcript{
				Session:  internal.Session{ID: "test3"},
				Messages: []internal.Message{},
			},
			want:    []string{"# Session test3"},
			notWant: []string{"**Updated:**"},
		},
		{
			name: "bold outside code is escaped",
			transcript: internal.CreateTestTranscriptWithMessages("test4", []internal.Message{
				{ID: "m1", Role: internal.RoleAssistant, Content: "**bold**\n```\n**kept**\n```"},
			}),
			want: []string{"\\*\\*bold\\*\\*", "**kept**"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var buf bytes.Buffer
			exporter := &MarkdownExporter{}

			if err := exporter.Export(&tt.transcript, &buf); err != nil {
				t.Fatalf("MarkdownExporter.Export() error = %v", err)
			}

			output := buf.String()
			for _, want := range tt.want {
				if !strings.Contains(output, want) {
					t.Errorf("Export() output missing %q\nGot: %s", want, output)
				}
			}
			for _, notWant := range tt.notWant {
				if strings.Contains(output, notWant) {
					t.Errorf("Export() output should not contain %q", notWant)
				}
			}
		})
	}
}

func TestEscapeMarkdown(t *testing.T) {
	tests := []struct {
		name  string
		input string
		want  string
	}{
		{"plain text", "hello", "hello"},
		{"bold", "**x**", "\\*\\*x\\*\\*"},
		{"underscore bold", "__x__", "\\_\\_x\\_\\_"},
		{"code block untouched", "```\n**x**\n```", "```\n**x**\n```"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := escapeMarkdown(tt.input); got != tt.want {
				t.Errorf("escapeMarkdown(%q) = %q, want %q", tt.input, got, tt.want)
			}
		})
	}
}

func TestMarkdownExporter_Extension(t *testing.T) {
	exporter := &MarkdownExporter{}
	if got := exporter.Extension(); got != "md" {
		t.Errorf("Extension() = %q, want %q", got, "md")
	}
}
