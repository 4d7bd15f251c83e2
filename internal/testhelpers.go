package internal

import (
	"time"
)

// testEpoch is a fixed instant used by test fixtures
var testEpoch = time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC)

// CreateTestSession creates a session with sample data
func CreateTestSession(id string) Session {
	return Session{
		ID:           id,
		Title:        "Test Conversation",
		LastMessage:  "Hello, how are you?",
		MessageCount: 2,
		Timestamp:    testEpoch,
	}
}

// CreateTestTranscript creates a transcript with a user turn and an assistant
// turn that used a tool
func CreateTestTranscript(id string) Transcript {
	return Transcript{
		Session: CreateTestSession(id),
		Messages: []Message{
			{
				ID:        "m1",
				Role:      RoleUser,
				Content:   "Hello, how are you?",
				Timestamp: testEpoch,
			},
			{
				ID:        "m2",
				Role:      RoleAssistant,
				Content:   "I'm doing **well**, thank you!",
				Timestamp: testEpoch.Add(time.Second),
				ToolEvents: []ToolEvent{
					{Kind: ToolEventCall, Name: "get_mood", Args: map[string]any{"who": "me"}},
					{Kind: ToolEventResponse, Name: "get_mood", Status: "success", Response: map[string]any{"status": "success"}},
				},
			},
		},
	}
}

// CreateTestTranscriptWithMessages creates a transcript with custom messages
func CreateTestTranscriptWithMessages(id string, messages []Message) Transcript {
	session := CreateTestSession(id)
	session.MessageCount = len(messages)
	return Transcript{Session: session, Messages: messages}
}
