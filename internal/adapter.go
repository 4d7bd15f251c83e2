package internal

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"
)

// Backend is the contract the controller relies on. Implementations own all
// network I/O and return normalized values.
type Backend interface {
	CreateSession(ctx context.Context, userID string) (Session, error)
	ListSessions(ctx context.Context, userID string) []Session
	GetHistory(ctx context.Context, userID, sessionID string) []Message
	SendMessage(ctx context.Context, userID, sessionID, text string) (Message, error)
	DeleteSession(ctx context.Context, userID, sessionID string) error
	RenameSession(ctx context.Context, userID, sessionID, title string) error
}

// Capabilities lists optional operations the backend deployment supports
type Capabilities struct {
	Delete bool `yaml:"delete" toml:"delete"`
	Rename bool `yaml:"rename" toml:"rename"`
}

// Client is the HTTP adapter for an agent-serving API
type Client struct {
	baseURL string
	appName string
	caps    Capabilities
	http    *http.Client
	newID   func() string
	now     func() time.Time
}

// ClientOption configures a Client
type ClientOption func(*Client)

// WithHTTPClient sets the HTTP client used for requests
func WithHTTPClient(h *http.Client) ClientOption {
	return func(c *Client) { c.http = h }
}

// WithCapabilities enables optional backend operations
func WithCapabilities(caps Capabilities) ClientOption {
	return func(c *Client) { c.caps = caps }
}

// WithIDGenerator overrides session and message id generation
func WithIDGenerator(fn func() string) ClientOption {
	return func(c *Client) { c.newID = fn }
}

// WithClock overrides the time source
func WithClock(fn func() time.Time) ClientOption {
	return func(c *Client) { c.now = fn }
}

// NewClient creates a Client for the given base URL and application name
func NewClient(baseURL, appName string, opts ...ClientOption) *Client {
	c := &Client{
		baseURL: strings.TrimRight(baseURL, "/"),
		appName: appName,
		http:    &http.Client{},
		newID:   func() string { return uuid.NewString() },
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Capabilities returns the optional operations this client performs remotely
func (c *Client) Capabilities() Capabilities {
	return c.caps
}

func (c *Client) sessionsPath(userID string) string {
	return fmt.Sprintf("/apps/%s/users/%s/sessions", url.PathEscape(c.appName), url.PathEscape(userID))
}

func (c *Client) sessionPath(userID, sessionID string) string {
	return c.sessionsPath(userID) + "/" + url.PathEscape(sessionID)
}

// CreateSession creates a session under a locally generated id
func (c *Client) CreateSession(ctx context.Context, userID string) (Session, error) {
	id := c.newID()
	data, err := c.do(ctx, "create", http.MethodPost, c.sessionPath(userID, id), struct{}{})
	if err != nil {
		return Session{}, err
	}

	if echoed := echoedID(data); echoed != "" && echoed != id {
		return Session{}, &IdentifierMismatchError{Expected: id, Got: echoed}
	}

	LogDebug("Created session %s for user %s", id, userID)
	return Session{
		ID:           id,
		Title:        DefaultNewSessionTitle,
		MessageCount: 0,
		Timestamp:    c.now(),
	}, nil
}

func echoedID(data []byte) string {
	var ack struct {
		ID string `json:"id"`
	}
	if len(bytes.TrimSpace(data)) == 0 {
		return ""
	}
	if err := json.Unmarshal(data, &ack); err != nil {
		return ""
	}
	return ack.ID
}

// FetchSessions lists sessions and reports failures
func (c *Client) FetchSessions(ctx context.Context, userID string) ([]Session, error) {
	data, err := c.do(ctx, "list", http.MethodGet, c.sessionsPath(userID), nil)
	if err != nil {
		return nil, err
	}
	items, err := ParseSessionList(data)
	if err != nil {
		return nil, &ShapeError{Op: "list", Err: err}
	}

	sessions := make([]Session, 0, len(items))
	for _, item := range items {
		if item.ID == "" {
			continue
		}
		sessions = append(sessions, Session{
			ID:           item.ID,
			Title:        DefaultListedSessionTitle,
			MessageCount: 0,
			Timestamp:    item.GetLastUpdateTime(),
		})
	}
	sort.SliceStable(sessions, func(i, j int) bool {
		return sessions[i].Timestamp.After(sessions[j].Timestamp)
	})
	return sessions, nil
}

// ListSessions returns the user's sessions, newest first. Failures yield an
// empty list.
func (c *Client) ListSessions(ctx context.Context, userID string) []Session {
	sessions, err := c.FetchSessions(ctx, userID)
	if err != nil {
		LogWarn("Failed to list sessions: %v", err)
		return []Session{}
	}
	return sessions
}

// FetchHistory returns the flattened history of a session and reports failures
func (c *Client) FetchHistory(ctx context.Context, userID, sessionID string) ([]Message, error) {
	data, err := c.do(ctx, "history", http.MethodGet, c.sessionPath(userID, sessionID), nil)
	if err != nil {
		return nil, err
	}
	events, err := ParseEvents(data)
	if err != nil {
		return nil, &ShapeError{Op: "history", Err: err}
	}
	return c.flattenEvents(events), nil
}

// GetHistory returns the flattened history of a session. Failures yield an
// empty list.
func (c *Client) GetHistory(ctx context.Context, userID, sessionID string) []Message {
	messages, err := c.FetchHistory(ctx, userID, sessionID)
	if err != nil {
		LogWarn("Failed to load history for %s: %v", sessionID, err)
		return []Message{}
	}
	return messages
}

// flattenEvents turns events into messages: one message per event with text.
// Tool activity of text-less events moves to the next assistant message.
func (c *Client) flattenEvents(events []RawEvent) []Message {
	messages := make([]Message, 0, len(events))
	seen := make(map[string]int)
	var pendingTools []ToolEvent

	for i, ev := range events {
		tools := ev.ToolEvents()
		text := ev.Text()
		if text == "" {
			pendingTools = append(pendingTools, tools...)
			continue
		}

		msg := Message{
			ID:        uniqueID(seen, ev.ID, i),
			Role:      RoleAssistant,
			Content:   text,
			Timestamp: ev.GetTimestamp(),
		}
		if ev.IsUser() {
			msg.Role = RoleUser
		}
		if msg.Timestamp.IsZero() {
			msg.Timestamp = c.now()
		}
		if msg.Role == RoleAssistant {
			msg.ToolEvents = append(pendingTools, tools...)
			pendingTools = nil
		}
		messages = append(messages, msg)
	}
	return messages
}

// uniqueID returns id, or id with the first free numeric suffix. Every id
// handed out is marked in seen, suffixed ones included.
func uniqueID(seen map[string]int, id string, index int) string {
	if id == "" {
		id = fmt.Sprintf("event_%d", index)
	}
	candidate := id
	for n := seen[id]; ; n++ {
		if n > 0 {
			candidate = fmt.Sprintf("%s_%d", id, n)
		}
		if _, taken := seen[candidate]; !taken {
			seen[id] = n + 1
			break
		}
	}
	if candidate != id {
		seen[candidate] = 1
	}
	return candidate
}

// SendMessage posts text to the run endpoint and returns the assistant reply
func (c *Client) SendMessage(ctx context.Context, userID, sessionID, text string) (Message, error) {
	req := NewRunRequest(c.appName, userID, sessionID, text)
	data, err := c.do(ctx, "send", http.MethodPost, "/run", req)
	if err != nil {
		return Message{}, err
	}

	resp, err := decodeRunResponse(data)
	if err != nil {
		LogWarn("Unrecognized run response: %v", &ShapeError{Op: "send", Err: err})
	}
	LogDebug("Run response for %s matched shape %s", sessionID, resp.shape)

	return Message{
		ID:         "assistant_" + c.newID(),
		Role:       RoleAssistant,
		Content:    resp.Content(),
		Timestamp:  c.now(),
		ToolEvents: resp.toolEvents,
	}, nil
}

// DeleteSession deletes the session remotely when the deployment supports it.
// Otherwise it performs no request and succeeds.
func (c *Client) DeleteSession(ctx context.Context, userID, sessionID string) error {
	if !c.caps.Delete {
		LogDebug("Delete not supported by backend; %s removed locally only", sessionID)
		return nil
	}
	_, err := c.do(ctx, "delete", http.MethodDelete, c.sessionPath(userID, sessionID), nil)
	return err
}

// RenameSession never reaches the network: the API has no rename endpoint.
// Persisting titles is the job of TitledBackend.
func (c *Client) RenameSession(ctx context.Context, userID, sessionID, title string) error {
	LogDebug("Rename of %s to %q not sent to backend", sessionID, title)
	return nil
}

// do issues a request and returns the body of a 2xx response
func (c *Client) do(ctx context.Context, op, method, path string, body any) ([]byte, error) {
	var reader io.Reader
	if body != nil {
		buf, err := json.Marshal(body)
		if err != nil {
			return nil, err
		}
		reader = bytes.NewReader(buf)
	}

	target := c.baseURL + path
	req, err := http.NewRequestWithContext(ctx, method, target, reader)
	if err != nil {
		return nil, &TransportError{Op: op, URL: target, Err: err}
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, &TransportError{Op: op, URL: target, Err: err}
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, &TransportError{Op: op, URL: target, Err: err}
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &StatusError{Op: op, StatusCode: resp.StatusCode, Body: strings.TrimSpace(string(data))}
	}
	return data, nil
}
