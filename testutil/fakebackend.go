package testutil

import (
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
)

// RecordedRequest is a request seen by FakeBackend
type RecordedRequest struct {
	Method string
	Path   string
	Body   []byte
}

type fakeSession struct {
	id             string
	userID         string
	lastUpdateTime float64
	events         []map[string]interface{}
}

// FakeBackend is an in-process agent API serving the session and run
// endpoints for one application
type FakeBackend struct {
	*httptest.Server
	App string

	mu       sync.Mutex
	sessions map[string]*fakeSession
	requests []RecordedRequest
	failures map[string]int
	runReply []byte
	echoID   string
	clock    float64
}

// NewFakeBackend starts a fake backend for app, closed when the test ends
func NewFakeBackend(t *testing.T, app string) *FakeBackend {
	t.Helper()
	f := &FakeBackend{
		App:      app,
		sessions: make(map[string]*fakeSession),
		failures: make(map[string]int),
		clock:    1700000000,
	}

	mux := http.NewServeMux()
	mux.HandleFunc("POST /apps/{app}/users/{user}/sessions/{id}", f.handleCreate)
	mux.HandleFunc("GET /apps/{app}/users/{user}/sessions", f.handleList)
	mux.HandleFunc("GET /apps/{app}/users/{user}/sessions/{id}", f.handleGet)
	mux.HandleFunc("DELETE /apps/{app}/users/{user}/sessions/{id}", f.handleDelete)
	mux.HandleFunc("POST /run", f.handleRun)

	f.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		f.mu.Lock()
		f.requests = append(f.requests, RecordedRequest{Method: r.Method, Path: r.URL.Path, Body: body})
		f.mu.Unlock()
		r.Body = io.NopCloser(strings.NewReader(string(body)))
		mux.ServeHTTP(w, r)
	}))
	t.Cleanup(f.Close)
	return f
}

// AddSession seeds a session with history events
func (f *FakeBackend) AddSession(userID, id string, lastUpdateTime float64, events ...map[string]interface{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sessions[key(userID, id)] = &fakeSession{
		id:             id,
		userID:         userID,
		lastUpdateTime: lastUpdateTime,
		events:         append([]map[string]interface{}{}, events...),
	}
}

// HasSession reports whether the backend knows the session
func (f *FakeBackend) HasSession(userID, id string) bool {
	f.mu.Lock()
	defer f.mu.Unlock()
	_, ok := f.sessions[key(userID, id)]
	return ok
}

// SetRunReply makes /run answer with body verbatim
func (f *FakeBackend) SetRunReply(body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.runReply = []byte(body)
}

// EchoID makes session creation acknowledge id instead of the requested one
func (f *FakeBackend) EchoID(id string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.echoID = id
}

// Fail makes an operation ("create", "list", "history", "run", "delete")
// answer with status
func (f *FakeBackend) Fail(op string, status int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.failures[op] = status
}

// Requests returns the requests seen so far
func (f *FakeBackend) Requests() []RecordedRequest {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]RecordedRequest{}, f.requests...)
}

// CountRequests counts requests with method whose path starts with prefix
func (f *FakeBackend) CountRequests(method, prefix string) int {
	n := 0
	for _, r := range f.Requests() {
		if r.Method == method && strings.HasPrefix(r.Path, prefix) {
			n++
		}
	}
	return n
}

func key(userID, id string) string {
	return userID + "/" + id
}

func (f *FakeBackend) failure(w http.ResponseWriter, op string) bool {
	f.mu.Lock()
	status, ok := f.failures[op]
	f.mu.Unlock()
	if !ok {
		return false
	}
	http.Error(w, `{"detail":"injected failure"}`, status)
	return true
}

func (f *FakeBackend) knownApp(w http.ResponseWriter, r *http.Request) bool {
	if r.PathValue("app") != f.App {
		http.Error(w, `{"detail":"app not found"}`, http.StatusNotFound)
		return false
	}
	return true
}

func writeJSON(w http.ResponseWriter, v interface{}) {
	w.Header().Set("Content-Type", "application/json")
	_ = json.NewEncoder(w).Encode(v)
}

func (f *FakeBackend) handleCreate(w http.ResponseWriter, r *http.Request) {
	if f.failure(w, "create") || !f.knownApp(w, r) {
		return
	}
	user, id := r.PathValue("user"), r.PathValue("id")

	f.mu.Lock()
	f.clock++
	f.sessions[key(user, id)] = &fakeSession{id: id, userID: user, lastUpdateTime: f.clock}
	ts := f.clock
	ack := id
	if f.echoID != "" {
		ack = f.echoID
	}
	f.mu.Unlock()

	writeJSON(w, map[string]interface{}{
		"id":             ack,
		"appName":        f.App,
		"userId":         user,
		"state":          map[string]interface{}{},
		"events":         []interface{}{},
		"lastUpdateTime": ts,
	})
}

func (f *FakeBackend) handleList(w http.ResponseWriter, r *http.Request) {
	if f.failure(w, "list") || !f.knownApp(w, r) {
		return
	}
	user := r.PathValue("user")

	f.mu.Lock()
	items := []map[string]interface{}{}
	for _, s := range f.sessions {
		if s.userID == user {
			items = append(items, map[string]interface{}{
				"id":             s.id,
				"appName":        f.App,
				"userId":         user,
				"lastUpdateTime": s.lastUpdateTime,
			})
		}
	}
	f.mu.Unlock()
	writeJSON(w, items)
}

func (f *FakeBackend) handleGet(w http.ResponseWriter, r *http.Request) {
	if f.failure(w, "history") || !f.knownApp(w, r) {
		return
	}
	f.mu.Lock()
	s, ok := f.sessions[key(r.PathValue("user"), r.PathValue("id"))]
	var events []map[string]interface{}
	if ok {
		events = append(events, s.events...)
	}
	f.mu.Unlock()
	if !ok {
		http.Error(w, `{"detail":"Session not found"}`, http.StatusNotFound)
		return
	}
	writeJSON(w, map[string]interface{}{
		"id":     s.id,
		"userId": s.userID,
		"events": events,
	})
}

func (f *FakeBackend) handleDelete(w http.ResponseWriter, r *http.Request) {
	if f.failure(w, "delete") || !f.knownApp(w, r) {
		return
	}
	k := key(r.PathValue("user"), r.PathValue("id"))
	f.mu.Lock()
	_, ok := f.sessions[k]
	delete(f.sessions, k)
	f.mu.Unlock()
	if !ok {
		http.Error(w, `{"detail":"Session not found"}`, http.StatusNotFound)
		return
	}
	w.WriteHeader(http.StatusOK)
}

func (f *FakeBackend) handleRun(w http.ResponseWriter, r *http.Request) {
	if f.failure(w, "run") {
		return
	}
	var req struct {
		AppName    string `json:"app_name"`
		UserID     string `json:"user_id"`
		SessionID  string `json:"session_id"`
		NewMessage struct {
			Role  string `json:"role"`
			Parts []struct {
				Text string `json:"text"`
			} `json:"parts"`
		} `json:"new_message"`
	}
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		http.Error(w, `{"detail":"invalid body"}`, http.StatusUnprocessableEntity)
		return
	}
	var text strings.Builder
	for _, p := range req.NewMessage.Parts {
		text.WriteString(p.Text)
	}

	f.mu.Lock()
	s, ok := f.sessions[key(req.UserID, req.SessionID)]
	if !ok || req.AppName != f.App {
		f.mu.Unlock()
		http.Error(w, `{"detail":"Session not found"}`, http.StatusNotFound)
		return
	}
	f.clock++
	reply := ModelEvent("", "echo: "+text.String(), f.clock)
	s.events = append(s.events, UserEvent("", text.String(), f.clock), reply)
	s.lastUpdateTime = f.clock
	custom := f.runReply
	f.mu.Unlock()

	if custom != nil {
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write(custom)
		return
	}
	writeJSON(w, []interface{}{reply})
}
