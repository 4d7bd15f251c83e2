package internal

import "time"

// Role identifies who authored a message
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
)

const (
	// DefaultNewSessionTitle is the title of a session created in this client
	DefaultNewSessionTitle = "New Chat"
	// DefaultListedSessionTitle is the title of a session returned by the list endpoint
	DefaultListedSessionTitle = "Chat"
	// EmptyResponseMarker replaces an assistant reply with no recoverable text
	EmptyResponseMarker = "(empty response)"
	// PendingMessageID is the reserved id of the in-flight assistant placeholder
	PendingMessageID = "assistant_loading"
)

// Session represents a conversation between a user and the agent
type Session struct {
	ID           string    `json:"id" yaml:"id"`
	Title        string    `json:"title" yaml:"title"`
	LastMessage  string    `json:"last_message,omitempty" yaml:"last_message,omitempty"`
	MessageCount int       `json:"message_count" yaml:"message_count"`
	Timestamp    time.Time `json:"timestamp" yaml:"timestamp"`
}

// ToolEventKind distinguishes function calls from function responses
type ToolEventKind string

const (
	ToolEventCall     ToolEventKind = "functionCall"
	ToolEventResponse ToolEventKind = "functionResponse"
)

// ToolEvent describes tool activity reported by the backend. Display only.
type ToolEvent struct {
	Kind     ToolEventKind `json:"kind" yaml:"kind"`
	Name     string        `json:"name,omitempty" yaml:"name,omitempty"`
	Args     any           `json:"args,omitempty" yaml:"args,omitempty"`
	Status   string        `json:"status,omitempty" yaml:"status,omitempty"`
	Response any           `json:"response,omitempty" yaml:"response,omitempty"`
}

// Message represents one turn in a session
type Message struct {
	ID         string      `json:"id" yaml:"id"`
	Role       Role        `json:"role" yaml:"role"`
	Content    string      `json:"content" yaml:"content"`
	Timestamp  time.Time   `json:"timestamp" yaml:"timestamp"`
	Streaming  bool        `json:"-" yaml:"-"`
	ToolEvents []ToolEvent `json:"tool_events,omitempty" yaml:"tool_events,omitempty"`
}

// IsUser reports whether the message was authored by the user
func (m Message) IsUser() bool {
	return m.Role == RoleUser
}

// Transcript is a session together with its history, used for export and caching
type Transcript struct {
	Session  Session   `json:"session" yaml:"session"`
	Messages []Message `json:"messages" yaml:"messages"`
}
