package internal

import (
	"strings"
	"time"
)

// ChatState is the client-side aggregate of sessions and the open thread
type ChatState struct {
	Sessions         []Session
	CurrentSessionID string
	Messages         []Message
	IsLoading        bool
}

// Clone returns a deep copy of the state
func (s ChatState) Clone() ChatState {
	out := s
	out.Sessions = append([]Session(nil), s.Sessions...)
	out.Messages = make([]Message, len(s.Messages))
	for i, m := range s.Messages {
		m.ToolEvents = append([]ToolEvent(nil), m.ToolEvents...)
		out.Messages[i] = m
	}
	return out
}

// FindSession returns the index of the session with id, or -1
func (s ChatState) FindSession(id string) int {
	for i, session := range s.Sessions {
		if session.ID == id {
			return i
		}
	}
	return -1
}

// View is derived from a ChatState snapshot and never stored
type View struct {
	ChatState
	CurrentSession *Session
	ShowLanding    bool
	Header         string
}

// DeriveView computes the presentation view of a state snapshot
func DeriveView(s ChatState) View {
	v := View{ChatState: s, Header: "AI Chat"}
	if i := s.FindSession(s.CurrentSessionID); s.CurrentSessionID != "" && i >= 0 {
		session := s.Sessions[i]
		v.CurrentSession = &session
		v.Header = session.Title
	}
	v.ShowLanding = s.CurrentSessionID == "" && len(s.Messages) == 0
	return v
}

// DisplayMessages returns the thread with the pending assistant placeholder
// in place while a reply is outstanding
func (v View) DisplayMessages(now time.Time) []Message {
	if !v.IsLoading || v.CurrentSessionID == "" {
		return v.Messages
	}
	out := make([]Message, 0, len(v.Messages)+1)
	out = append(out, v.Messages...)
	return append(out, Message{
		ID:        PendingMessageID,
		Role:      RoleAssistant,
		Timestamp: now,
		Streaming: true,
	})
}

// FilterSessions returns sessions whose title or last message contains query,
// case-insensitively. An empty query matches everything.
func (v View) FilterSessions(query string) []Session {
	q := strings.ToLower(strings.TrimSpace(query))
	if q == "" {
		return v.Sessions
	}
	var out []Session
	for _, s := range v.Sessions {
		if strings.Contains(strings.ToLower(s.Title), q) || strings.Contains(strings.ToLower(s.LastMessage), q) {
			out = append(out, s)
		}
	}
	return out
}
