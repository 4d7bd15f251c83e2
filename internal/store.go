package internal

import "sync"

// Store owns the ChatState. Every mutation happens under one lock so readers
// only ever observe committed states.
type Store struct {
	mu    sync.Mutex
	state ChatState
}

// NewStore creates an empty store: no sessions, nothing selected
func NewStore() *Store {
	return &Store{state: ChatState{Sessions: []Session{}, Messages: []Message{}}}
}

// Snapshot returns a deep copy of the current state
func (s *Store) Snapshot() ChatState {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.Clone()
}

// Update applies fn to the state as a single commit
func (s *Store) Update(fn func(*ChatState)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	fn(&s.state)
}

// BeginLoading sets the loading flag and reports whether it was clear before
func (s *Store) BeginLoading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.state.IsLoading {
		return false
	}
	s.state.IsLoading = true
	return true
}

// EndLoading clears the loading flag
func (s *Store) EndLoading() {
	s.Update(func(st *ChatState) { st.IsLoading = false })
}
