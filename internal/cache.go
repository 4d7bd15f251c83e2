package internal

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"time"

	"gopkg.in/yaml.v3"
)

const cacheVersion = "1.0"

// TranscriptCache keeps fetched session histories on disk for offline reads
type TranscriptCache struct {
	cacheDir string
	now      func() time.Time
}

// CacheMetadata stores metadata about the cache
type CacheMetadata struct {
	BaseURL      string    `yaml:"base_url"`
	AppName      string    `yaml:"app_name"`
	UserID       string    `yaml:"user_id"`
	CacheVersion string    `yaml:"cache_version"`
	CreatedAt    time.Time `yaml:"created_at"`
	UpdatedAt    time.Time `yaml:"updated_at"`
}

// CacheIndexEntry describes one cached transcript
type CacheIndexEntry struct {
	ID           string    `yaml:"id"`
	Title        string    `yaml:"title,omitempty"`
	LastMessage  string    `yaml:"last_message,omitempty"`
	MessageCount int       `yaml:"message_count"`
	Timestamp    time.Time `yaml:"timestamp"`
	CachedAt     time.Time `yaml:"cached_at"`
}

// CacheIndex is the YAML index of cached transcripts
type CacheIndex struct {
	Sessions []CacheIndexEntry `yaml:"sessions"`
	Metadata CacheMetadata     `yaml:"metadata"`
}

// NewTranscriptCache creates a cache rooted at cacheDir
func NewTranscriptCache(cacheDir string) *TranscriptCache {
	return &TranscriptCache{cacheDir: cacheDir, now: time.Now}
}

// Dir returns the cache directory path
func (tc *TranscriptCache) Dir() string {
	return tc.cacheDir
}

// IndexPath returns the path to the index YAML file
func (tc *TranscriptCache) IndexPath() string {
	return filepath.Join(tc.cacheDir, "sessions.yaml")
}

// TranscriptPath returns the path to a session's transcript file
func (tc *TranscriptCache) TranscriptPath(sessionID string) string {
	return filepath.Join(tc.cacheDir, fmt.Sprintf("transcript_%s.json", safeFileName(sessionID)))
}

// LoadIndex loads the index. A missing index is an empty one.
func (tc *TranscriptCache) LoadIndex() (*CacheIndex, error) {
	data, err := os.ReadFile(tc.IndexPath())
	if errors.Is(err, os.ErrNotExist) {
		return &CacheIndex{Sessions: []CacheIndexEntry{}}, nil
	}
	if err != nil {
		return nil, &StorageError{Path: tc.IndexPath(), Op: "read", Err: err}
	}

	var index CacheIndex
	if err := yaml.Unmarshal(data, &index); err != nil {
		return nil, fmt.Errorf("failed to unmarshal index: %w", err)
	}
	return &index, nil
}

func (tc *TranscriptCache) saveIndex(index *CacheIndex) error {
	data, err := yaml.Marshal(index)
	if err != nil {
		return fmt.Errorf("failed to marshal index: %w", err)
	}
	return os.WriteFile(tc.IndexPath(), data, 0644)
}

// Save stores a transcript and updates its index entry. meta identifies the
// backend the transcript came from.
func (tc *TranscriptCache) Save(transcript Transcript, meta CacheMetadata) error {
	if err := os.MkdirAll(tc.cacheDir, 0755); err != nil {
		return &StorageError{Path: tc.cacheDir, Op: "mkdir", Err: err}
	}

	data, err := json.MarshalIndent(transcript, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal transcript: %w", err)
	}
	path := tc.TranscriptPath(transcript.Session.ID)
	if err := os.WriteFile(path, data, 0644); err != nil {
		return &StorageError{Path: path, Op: "write", Err: err}
	}

	index, err := tc.LoadIndex()
	if err != nil {
		LogWarn("Rebuilding unreadable cache index: %v", err)
		index = &CacheIndex{}
	}

	now := tc.now()
	if index.Metadata.CreatedAt.IsZero() {
		index.Metadata.CreatedAt = now
	}
	index.Metadata.BaseURL = meta.BaseURL
	index.Metadata.AppName = meta.AppName
	index.Metadata.UserID = meta.UserID
	index.Metadata.CacheVersion = cacheVersion
	index.Metadata.UpdatedAt = now

	entry := CacheIndexEntry{
		ID:           transcript.Session.ID,
		Title:        transcript.Session.Title,
		LastMessage:  transcript.Session.LastMessage,
		MessageCount: len(transcript.Messages),
		Timestamp:    transcript.Session.Timestamp,
		CachedAt:     now,
	}
	found := false
	for i := range index.Sessions {
		if index.Sessions[i].ID == entry.ID {
			index.Sessions[i] = entry
			found = true
			break
		}
	}
	if !found {
		index.Sessions = append(index.Sessions, entry)
	}
	sort.SliceStable(index.Sessions, func(i, j int) bool {
		return index.Sessions[i].Timestamp.After(index.Sessions[j].Timestamp)
	})

	return tc.saveIndex(index)
}

// Load reads a cached transcript
func (tc *TranscriptCache) Load(sessionID string) (*Transcript, error) {
	path := tc.TranscriptPath(sessionID)
	data, err := os.ReadFile(path)
	if errors.Is(err, os.ErrNotExist) {
		return nil, fmt.Errorf("no cached transcript for %s: %w", sessionID, ErrSessionNotFound)
	}
	if err != nil {
		return nil, &StorageError{Path: path, Op: "read", Err: err}
	}

	var transcript Transcript
	if err := json.Unmarshal(data, &transcript); err != nil {
		return nil, fmt.Errorf("failed to unmarshal transcript: %w", err)
	}
	return &transcript, nil
}

// Clear removes every cached transcript and the index
func (tc *TranscriptCache) Clear() error {
	index, err := tc.LoadIndex()
	if err == nil {
		for _, entry := range index.Sessions {
			_ = os.Remove(tc.TranscriptPath(entry.ID))
		}
	}

	if err := os.Remove(tc.IndexPath()); err != nil && !os.IsNotExist(err) {
		return err
	}
	return nil
}

// safeFileName keeps session ids from escaping the cache directory
func safeFileName(id string) string {
	out := []rune(id)
	for i, r := range out {
		switch {
		case r >= 'a' && r <= 'z', r >= 'A' && r <= 'Z', r >= '0' && r <= '9', r == '-', r == '_', r == '.':
		default:
			out[i] = '_'
		}
	}
	name := string(out)
	if name == "" || name == "." || name == ".." {
		return "_"
	}
	return name
}
