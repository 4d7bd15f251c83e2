package internal

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRunRequest_WireFormat(t *testing.T) {
	req := NewRunRequest("demo_app", "u1", "s1", "hello")

	data, err := json.Marshal(req)
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"app_name": "demo_app",
		"user_id": "u1",
		"session_id": "s1",
		"new_message": {"role": "user", "parts": [{"text": "hello"}]}
	}`, string(data))
}

func TestParseSessionList(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantIDs []string
		wantErr bool
	}{
		{"empty array", `[]`, []string{}, false},
		{"items", `[{"id":"a","lastUpdateTime":1700000000.5},{"id":"b"}]`, []string{"a", "b"}, false},
		{"not an array", `{"sessions":[]}`, nil, true},
		{"garbage", `not json`, nil, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			items, err := ParseSessionList([]byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			ids := []string{}
			for _, it := range items {
				ids = append(ids, it.ID)
			}
			assert.Equal(t, tt.wantIDs, ids)
		})
	}
}

func TestParseEvents(t *testing.T) {
	tests := []struct {
		name      string
		body      string
		wantCount int
		wantErr   bool
	}{
		{"missing events", `{"id":"s1"}`, 0, false},
		{"null events", `{"id":"s1","events":null}`, 0, false},
		{"empty events", `{"events":[]}`, 0, false},
		{"two events", `{"events":[{"id":"e1"},{"id":"e2"}]}`, 2, false},
		{"malformed event skipped", `{"events":[{"id":"e1"},{"id":42},{"id":"e3"}]}`, 2, false},
		{"events not an array", `{"events":{"id":"e1"}}`, 0, true},
		{"body not an object", `[1,2]`, 0, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			events, err := ParseEvents([]byte(tt.body))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Len(t, events, tt.wantCount)
		})
	}
}

func TestRawEvent_Text(t *testing.T) {
	var ev RawEvent
	require.NoError(t, json.Unmarshal([]byte(`{
		"content": {"parts": [{"text": "Hello, "}, {"functionCall": {"name": "f"}}, {"text": "world"}]}
	}`), &ev))
	assert.Equal(t, "Hello, world", ev.Text())

	assert.Equal(t, "", RawEvent{}.Text())
}

func TestRawEvent_IsUser(t *testing.T) {
	tests := []struct {
		name string
		ev   RawEvent
		want bool
	}{
		{"author user", RawEvent{Author: "user"}, true},
		{"role user", RawEvent{Role: "USER"}, true},
		{"content role user", RawEvent{Author: "x", Content: &RawContent{Role: "user"}}, true},
		{"agent", RawEvent{Author: "my_agent", Content: &RawContent{Role: "model"}}, false},
		{"nothing", RawEvent{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.ev.IsUser())
		})
	}
}

func TestRawEvent_ToolEvents(t *testing.T) {
	var ev RawEvent
	require.NoError(t, json.Unmarshal([]byte(`{
		"content": {"parts": [
			{"functionCall": {"name": "lookup", "args": {"q": "go"}}},
			{"functionResponse": {"name": "lookup", "response": {"status": "ok", "n": 3}}}
		]}
	}`), &ev))

	tools := ev.ToolEvents()
	require.Len(t, tools, 2)
	assert.Equal(t, ToolEventCall, tools[0].Kind)
	assert.Equal(t, "lookup", tools[0].Name)
	assert.Equal(t, map[string]any{"q": "go"}, tools[0].Args)
	assert.Equal(t, ToolEventResponse, tools[1].Kind)
	assert.Equal(t, "ok", tools[1].Status)
}

func TestSecondsToTime(t *testing.T) {
	assert.True(t, secondsToTime(0).IsZero())
	assert.True(t, secondsToTime(-5).IsZero())

	got := secondsToTime(1700000000.25)
	assert.Equal(t, time.UnixMilli(1700000000250), got)
}
