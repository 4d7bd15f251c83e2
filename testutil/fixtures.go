package testutil

import (
	"path/filepath"
	"testing"
)

// Event builders produce history events in the backend's wire format

// UserEvent returns a user-authored text event
func UserEvent(id, text string, ts float64) map[string]interface{} {
	return map[string]interface{}{
		"id":        id,
		"author":    "user",
		"timestamp": ts,
		"content": map[string]interface{}{
			"role":  "user",
			"parts": []interface{}{map[string]interface{}{"text": text}},
		},
	}
}

// ModelEvent returns an agent-authored text event
func ModelEvent(id, text string, ts float64) map[string]interface{} {
	return map[string]interface{}{
		"id":        id,
		"author":    "assistant_agent",
		"timestamp": ts,
		"content": map[string]interface{}{
			"role":  "model",
			"parts": []interface{}{map[string]interface{}{"text": text}},
		},
	}
}

// ToolCallEvent returns a text-less event carrying a function call
func ToolCallEvent(id, name string, args map[string]interface{}, ts float64) map[string]interface{} {
	return map[string]interface{}{
		"id":        id,
		"author":    "assistant_agent",
		"timestamp": ts,
		"content": map[string]interface{}{
			"role": "model",
			"parts": []interface{}{map[string]interface{}{
				"functionCall": map[string]interface{}{"name": name, "args": args},
			}},
		},
	}
}

// ToolResponseEvent returns a text-less event carrying a function response
func ToolResponseEvent(id, name string, response map[string]interface{}, ts float64) map[string]interface{} {
	return map[string]interface{}{
		"id":        id,
		"author":    "assistant_agent",
		"timestamp": ts,
		"content": map[string]interface{}{
			"role": "user",
			"parts": []interface{}{map[string]interface{}{
				"functionResponse": map[string]interface{}{"name": name, "response": response},
			}},
		},
	}
}

// CreateConfigFixture writes a config file named name into dir and returns its path
func CreateConfigFixture(t *testing.T, dir, name, content string) string {
	t.Helper()
	path := filepath.Join(dir, name)
	WriteFile(t, path, []byte(content))
	return path
}
