package internal

import (
	"context"
	"database/sql"
	"fmt"
	"time"
)

const titlesSchema = `
CREATE TABLE IF NOT EXISTS session_titles (
	app        TEXT NOT NULL,
	user_id    TEXT NOT NULL,
	session_id TEXT NOT NULL,
	title      TEXT NOT NULL,
	updated_at INTEGER NOT NULL,
	PRIMARY KEY (app, user_id, session_id)
)`

// TitleStore keeps session titles locally, since the list endpoint has none
type TitleStore struct {
	db      *sql.DB
	appName string
	now     func() time.Time
}

// NewTitleStore wraps an open database and creates the schema if needed
func NewTitleStore(db *sql.DB, appName string) (*TitleStore, error) {
	if _, err := db.Exec(titlesSchema); err != nil {
		return nil, &StorageError{Path: "session_titles", Op: "migrate", Err: err}
	}
	return &TitleStore{db: db, appName: appName, now: time.Now}, nil
}

// OpenTitleStore opens the title database at path
func OpenTitleStore(path, appName string) (*TitleStore, error) {
	db, err := OpenDatabase(path)
	if err != nil {
		return nil, err
	}
	store, err := NewTitleStore(db, appName)
	if err != nil {
		db.Close()
		return nil, err
	}
	return store, nil
}

// Close closes the underlying database
func (s *TitleStore) Close() error {
	return s.db.Close()
}

// RecordTitle stores the title of a session, replacing any previous one
func (s *TitleStore) RecordTitle(userID, sessionID, title string) error {
	_, err := s.db.Exec(`
		INSERT INTO session_titles (app, user_id, session_id, title, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (app, user_id, session_id)
		DO UPDATE SET title = excluded.title, updated_at = excluded.updated_at`,
		s.appName, userID, sessionID, title, s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to record title: %w", err)
	}
	return nil
}

// RecordDerivedTitle stores title only if the session has none yet, so a
// title chosen by rename is never replaced by one derived from a message
func (s *TitleStore) RecordDerivedTitle(userID, sessionID, title string) error {
	_, err := s.db.Exec(`
		INSERT INTO session_titles (app, user_id, session_id, title, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (app, user_id, session_id) DO NOTHING`,
		s.appName, userID, sessionID, title, s.now().UnixMilli())
	if err != nil {
		return fmt.Errorf("failed to record title: %w", err)
	}
	return nil
}

// Titles returns the stored titles of a user's sessions keyed by session id
func (s *TitleStore) Titles(userID string) (map[string]string, error) {
	rows, err := s.db.Query(
		"SELECT session_id, title FROM session_titles WHERE app = ? AND user_id = ?",
		s.appName, userID)
	if err != nil {
		return nil, fmt.Errorf("query failed: %w", err)
	}
	defer rows.Close()

	titles := make(map[string]string)
	for rows.Next() {
		var id, title string
		if err := rows.Scan(&id, &title); err != nil {
			return nil, fmt.Errorf("scan failed: %w", err)
		}
		titles[id] = title
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("rows iteration error: %w", err)
	}
	return titles, nil
}

// Forget removes the stored title of a session
func (s *TitleStore) Forget(userID, sessionID string) error {
	_, err := s.db.Exec(
		"DELETE FROM session_titles WHERE app = ? AND user_id = ? AND session_id = ?",
		s.appName, userID, sessionID)
	if err != nil {
		return fmt.Errorf("failed to forget title: %w", err)
	}
	return nil
}

// TitledBackend overlays locally stored titles on a Backend
type TitledBackend struct {
	Backend
	titles *TitleStore
	caps   Capabilities
}

// NewTitledBackend decorates inner. Renames are persisted only when caps
// allows renaming; otherwise they stay in memory as with a bare backend.
// Stored titles are dropped only for deletes the backend really performs.
func NewTitledBackend(inner Backend, titles *TitleStore, caps Capabilities) *TitledBackend {
	return &TitledBackend{Backend: inner, titles: titles, caps: caps}
}

// ListSessions lists sessions and applies stored titles
func (b *TitledBackend) ListSessions(ctx context.Context, userID string) []Session {
	sessions := b.Backend.ListSessions(ctx, userID)
	if len(sessions) == 0 {
		return sessions
	}

	titles, err := b.titles.Titles(userID)
	if err != nil {
		LogWarn("Failed to read stored titles: %v", err)
		return sessions
	}
	for i := range sessions {
		if title, ok := titles[sessions[i].ID]; ok && title != "" {
			sessions[i].Title = title
		}
	}
	return sessions
}

// RenameSession renames through the inner backend and stores the title
func (b *TitledBackend) RenameSession(ctx context.Context, userID, sessionID, title string) error {
	if err := b.Backend.RenameSession(ctx, userID, sessionID, title); err != nil {
		return err
	}
	if !b.caps.Rename {
		return nil
	}
	return b.titles.RecordTitle(userID, sessionID, title)
}

// DeleteSession deletes through the inner backend. The stored title is kept
// when the backend cannot delete, since the session will be listed again.
func (b *TitledBackend) DeleteSession(ctx context.Context, userID, sessionID string) error {
	if err := b.Backend.DeleteSession(ctx, userID, sessionID); err != nil {
		return err
	}
	if !b.caps.Delete {
		return nil
	}
	if err := b.titles.Forget(userID, sessionID); err != nil {
		LogWarn("Failed to forget title of %s: %v", sessionID, err)
	}
	return nil
}

// RecordTitle lets the decorator serve as the controller's TitleRecorder.
// Derived titles never replace a stored one.
func (b *TitledBackend) RecordTitle(userID, sessionID, title string) error {
	return b.titles.RecordDerivedTitle(userID, sessionID, title)
}
