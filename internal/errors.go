package internal

import (
	"errors"
	"fmt"
)

var (
	// ErrIdentifierMismatch is matched by IdentifierMismatchError
	ErrIdentifierMismatch = errors.New("session identifier mismatch")
	// ErrBusy is returned when an action is attempted while a request is in flight
	ErrBusy = errors.New("another request is in progress")
	// ErrSessionNotFound is returned for ids that are not in the session list
	ErrSessionNotFound = errors.New("session not found")
	// ErrEmptyMessage is returned when sending blank text
	ErrEmptyMessage = errors.New("message is empty")
	// ErrEmptyTitle is returned when renaming to a blank title
	ErrEmptyTitle = errors.New("title is empty")
)

// TransportError represents a request that never produced a response
type TransportError struct {
	Op  string // "create", "list", "history", "send", "delete"
	URL string
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("transport error: %s %s: %v", e.Op, e.URL, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError represents a non-2xx response from the backend
type StatusError struct {
	Op         string
	StatusCode int
	Body       string
}

func (e *StatusError) Error() string {
	if e.Body == "" {
		return fmt.Sprintf("backend error [%s]: status %d", e.Op, e.StatusCode)
	}
	return fmt.Sprintf("backend error [%s]: status %d: %s", e.Op, e.StatusCode, e.Body)
}

// ShapeError represents a response body that could not be decoded
type ShapeError struct {
	Op  string
	Err error
}

func (e *ShapeError) Error() string {
	return fmt.Sprintf("unexpected response [%s]: %v", e.Op, e.Err)
}

func (e *ShapeError) Unwrap() error {
	return e.Err
}

// IdentifierMismatchError is returned when the backend acknowledges a session
// under a different id than the one requested
type IdentifierMismatchError struct {
	Expected string
	Got      string
}

func (e *IdentifierMismatchError) Error() string {
	return fmt.Sprintf("session identifier mismatch: requested %q, backend returned %q", e.Expected, e.Got)
}

func (e *IdentifierMismatchError) Is(target error) bool {
	return target == ErrIdentifierMismatch
}

// StorageError represents errors accessing local storage files
type StorageError struct {
	Path string
	Op   string // "open", "read", "write", "migrate"
	Err  error
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage error: %s %s: %v", e.Op, e.Path, e.Err)
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

// ExportError represents errors during export
type ExportError struct {
	Format string
	Path   string
	Err    error
}

func (e *ExportError) Error() string {
	return fmt.Sprintf("export error [%s] %s: %v", e.Format, e.Path, e.Err)
}

func (e *ExportError) Unwrap() error {
	return e.Err
}
