package internal

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// responseShape tags which of the accepted run response layouts was found
type responseShape int

const (
	shapeUnknown responseShape = iota
	shapeEvents                // [{"content":{"parts":[...]}}, ...]
	shapeText                  // {"message": "..."} or {"content": "..."}
	shapeParts                 // {"content":{"parts":[...]}} or {"parts":[...]}
)

func (s responseShape) String() string {
	switch s {
	case shapeEvents:
		return "events"
	case shapeText:
		return "text"
	case shapeParts:
		return "parts"
	default:
		return "unknown"
	}
}

// runResponse is the normalized result of the run endpoint
type runResponse struct {
	shape      responseShape
	text       string
	toolEvents []ToolEvent
}

// Content returns the assistant text, or the empty-response marker
func (r runResponse) Content() string {
	if r.text == "" {
		return EmptyResponseMarker
	}
	return r.text
}

// decodeRunResponse detects the response layout in a fixed order: event
// array, then message/content string, then content.parts / parts.
// An undecodable body yields shapeUnknown together with the decode error.
func decodeRunResponse(data []byte) (runResponse, error) {
	trimmed := bytes.TrimSpace(data)
	if len(trimmed) == 0 {
		return runResponse{}, fmt.Errorf("empty body")
	}

	if trimmed[0] == '[' {
		return decodeEventArray(trimmed)
	}

	var obj map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &obj); err != nil {
		return runResponse{}, err
	}

	for _, key := range []string{"message", "content"} {
		if s, ok := asString(obj[key]); ok {
			return runResponse{shape: shapeText, text: s}, nil
		}
	}

	if raw, ok := obj["content"]; ok {
		var content struct {
			Parts *[]RawPart `json:"parts"`
		}
		if err := json.Unmarshal(raw, &content); err == nil && content.Parts != nil {
			return partsResponse(*content.Parts), nil
		}
	}
	if raw, ok := obj["parts"]; ok {
		var parts []RawPart
		if err := json.Unmarshal(raw, &parts); err == nil {
			return partsResponse(parts), nil
		}
	}

	return runResponse{shape: shapeUnknown}, nil
}

func decodeEventArray(data []byte) (runResponse, error) {
	var raws []json.RawMessage
	if err := json.Unmarshal(data, &raws); err != nil {
		return runResponse{}, err
	}

	resp := runResponse{shape: shapeEvents}
	var text []byte
	for _, raw := range raws {
		var ev RawEvent
		if err := json.Unmarshal(raw, &ev); err != nil {
			continue
		}
		text = append(text, ev.Text()...)
		resp.toolEvents = append(resp.toolEvents, ev.ToolEvents()...)
	}
	resp.text = string(text)
	return resp, nil
}

func partsResponse(parts []RawPart) runResponse {
	return runResponse{
		shape:      shapeParts,
		text:       joinText(parts),
		toolEvents: toolEvents(parts),
	}
}

func asString(raw json.RawMessage) (string, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return "", false
	}
	var s string
	if err := json.Unmarshal(raw, &s); err != nil {
		return "", false
	}
	return s, true
}
