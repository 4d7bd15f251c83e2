package internal

import (
	"encoding/json"
	"fmt"
	"math"
	"strings"
	"time"
)

// RawPart is one content part of a backend event
type RawPart struct {
	Text             *string              `json:"text,omitempty"`
	FunctionCall     *RawFunctionCall     `json:"functionCall,omitempty"`
	FunctionResponse *RawFunctionResponse `json:"functionResponse,omitempty"`
}

// RawFunctionCall is a tool invocation reported by the backend
type RawFunctionCall struct {
	Name string `json:"name,omitempty"`
	Args any    `json:"args,omitempty"`
}

// RawFunctionResponse is a tool result reported by the backend
type RawFunctionResponse struct {
	Name     string `json:"name,omitempty"`
	Response any    `json:"response,omitempty"`
}

// RawContent holds the parts of an event
type RawContent struct {
	Role  string    `json:"role,omitempty"`
	Parts []RawPart `json:"parts,omitempty"`
}

// RawEvent is an entry of a session's event history
type RawEvent struct {
	ID        string      `json:"id,omitempty"`
	Author    string      `json:"author,omitempty"`
	Role      string      `json:"role,omitempty"`
	Timestamp float64     `json:"timestamp,omitempty"`
	Content   *RawContent `json:"content,omitempty"`
}

// RawSessionItem is an element of the session list endpoint
type RawSessionItem struct {
	ID             string  `json:"id"`
	LastUpdateTime float64 `json:"lastUpdateTime,omitempty"`
}

// RunRequest is the body of the synchronous run endpoint
type RunRequest struct {
	AppName    string     `json:"app_name"`
	UserID     string     `json:"user_id"`
	SessionID  string     `json:"session_id"`
	NewMessage RawContent `json:"new_message"`
}

// NewRunRequest builds a run request carrying text as a single user part
func NewRunRequest(appName, userID, sessionID, text string) RunRequest {
	return RunRequest{
		AppName:   appName,
		UserID:    userID,
		SessionID: sessionID,
		NewMessage: RawContent{
			Role:  string(RoleUser),
			Parts: []RawPart{{Text: &text}},
		},
	}
}

// ParseSessionList parses the body of the list endpoint
func ParseSessionList(data []byte) ([]RawSessionItem, error) {
	var items []RawSessionItem
	if err := json.Unmarshal(data, &items); err != nil {
		return nil, fmt.Errorf("failed to parse session list: %w", err)
	}
	return items, nil
}

// ParseEvents extracts the event array from a session body. Events that
// fail to decode individually are skipped.
func ParseEvents(data []byte) ([]RawEvent, error) {
	var envelope struct {
		Events json.RawMessage `json:"events"`
	}
	if err := json.Unmarshal(data, &envelope); err != nil {
		return nil, fmt.Errorf("failed to parse session: %w", err)
	}

	var rawEvents []json.RawMessage
	if len(envelope.Events) == 0 || string(envelope.Events) == "null" {
		return nil, nil
	}
	if err := json.Unmarshal(envelope.Events, &rawEvents); err != nil {
		return nil, fmt.Errorf("events is not an array: %w", err)
	}

	events := make([]RawEvent, 0, len(rawEvents))
	for i, raw := range rawEvents {
		var ev RawEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			LogDebug("Skipping malformed event %d: %v", i, err)
			continue
		}
		events = append(events, ev)
	}
	return events, nil
}

// Text concatenates the textual parts of the event in order
func (e RawEvent) Text() string {
	if e.Content == nil {
		return ""
	}
	return joinText(e.Content.Parts)
}

// IsUser reports whether the event was authored by the user
func (e RawEvent) IsUser() bool {
	if strings.EqualFold(e.Role, string(RoleUser)) || strings.EqualFold(e.Author, string(RoleUser)) {
		return true
	}
	return e.Content != nil && strings.EqualFold(e.Content.Role, string(RoleUser))
}

// ToolEvents returns the tool activity carried by the event
func (e RawEvent) ToolEvents() []ToolEvent {
	if e.Content == nil {
		return nil
	}
	return toolEvents(e.Content.Parts)
}

// GetTimestamp returns the event time, or the zero time when absent
func (e RawEvent) GetTimestamp() time.Time {
	return secondsToTime(e.Timestamp)
}

// GetLastUpdateTime returns the last activity time of a listed session
func (s RawSessionItem) GetLastUpdateTime() time.Time {
	return secondsToTime(s.LastUpdateTime)
}

func joinText(parts []RawPart) string {
	var b strings.Builder
	for _, p := range parts {
		if p.Text != nil {
			b.WriteString(*p.Text)
		}
	}
	return b.String()
}

func toolEvents(parts []RawPart) []ToolEvent {
	var out []ToolEvent
	for _, p := range parts {
		if p.FunctionCall != nil {
			out = append(out, ToolEvent{
				Kind: ToolEventCall,
				Name: p.FunctionCall.Name,
				Args: p.FunctionCall.Args,
			})
		}
		if p.FunctionResponse != nil {
			out = append(out, ToolEvent{
				Kind:     ToolEventResponse,
				Name:     p.FunctionResponse.Name,
				Status:   responseStatus(p.FunctionResponse.Response),
				Response: p.FunctionResponse.Response,
			})
		}
	}
	return out
}

func responseStatus(response any) string {
	m, ok := response.(map[string]any)
	if !ok {
		return ""
	}
	status, _ := m["status"].(string)
	return status
}

// secondsToTime converts backend epoch seconds (possibly fractional) to a time
func secondsToTime(seconds float64) time.Time {
	if seconds <= 0 {
		return time.Time{}
	}
	return time.UnixMilli(int64(math.Round(seconds * 1000)))
}
