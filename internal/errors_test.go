package internal

import (
	"errors"
	"fmt"
	"strings"
	"testing"
)

func TestStorageError(t *testing.T) {
	originalErr := errors.New("permission denied")
	err := &StorageError{
		Path: "/test/path",
		Op:   "open",
		Err:  originalErr,
	}

	errorMsg := err.Error()
	if !strings.Contains(errorMsg, "storage error") {
		t.Errorf("StorageError.Error() should contain 'storage error', got: %q", errorMsg)
	}
	if !strings.Contains(errorMsg, "/test/path") {
		t.Errorf("StorageError.Error() should contain path, got: %q", errorMsg)
	}
	if !errors.Is(err, originalErr) {
		t.Error("StorageError.Unwrap() should return original error")
	}
}

func TestTransportError(t *testing.T) {
	originalErr := errors.New("connection refused")
	err := &TransportError{Op: "list", URL: "http://localhost:8000/apps/a/users/u/sessions", Err: originalErr}

	if !strings.Contains(err.Error(), "list") || !strings.Contains(err.Error(), "connection refused") {
		t.Errorf("TransportError.Error() = %q", err.Error())
	}
	if !errors.Is(err, originalErr) {
		t.Error("TransportError.Unwrap() should return original error")
	}
}

func TestStatusError(t *testing.T) {
	tests := []struct {
		name string
		err  *StatusError
		want string
	}{
		{"with body", &StatusError{Op: "send", StatusCode: 500, Body: "boom"}, "backend error [send]: status 500: boom"},
		{"without body", &StatusError{Op: "create", StatusCode: 404}, "backend error [create]: status 404"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := tt.err.Error(); got != tt.want {
				t.Errorf("StatusError.Error() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestShapeError(t *testing.T) {
	originalErr := errors.New("unexpected token")
	err := &ShapeError{Op: "history", Err: originalErr}

	if !strings.Contains(err.Error(), "unexpected response [history]") {
		t.Errorf("ShapeError.Error() = %q", err.Error())
	}
	if !errors.Is(err, originalErr) {
		t.Error("ShapeError.Unwrap() should return original error")
	}
}

func TestIdentifierMismatchError(t *testing.T) {
	err := fmt.Errorf("create session: %w", &IdentifierMismatchError{Expected: "a", Got: "b"})

	if !errors.Is(err, ErrIdentifierMismatch) {
		t.Error("wrapped IdentifierMismatchError should match ErrIdentifierMismatch")
	}
	var mismatch *IdentifierMismatchError
	if !errors.As(err, &mismatch) || mismatch.Got != "b" {
		t.Errorf("errors.As() = %v", mismatch)
	}
	if errors.Is(err, ErrBusy) {
		t.Error("IdentifierMismatchError should not match ErrBusy")
	}
}

func TestExportError(t *testing.T) {
	originalErr := errors.New("write failed")
	err := &ExportError{
		Format: "jsonl",
		Path:   "/output/session.jsonl",
		Err:    originalErr,
	}

	errorMsg := err.Error()
	if !strings.Contains(errorMsg, "export error") {
		t.Errorf("ExportError.Error() should contain 'export error', got: %q", errorMsg)
	}
	if !strings.Contains(errorMsg, "jsonl") {
		t.Errorf("ExportError.Error() should contain format, got: %q", errorMsg)
	}
	if !errors.Is(err, originalErr) {
		t.Error("ExportError.Unwrap() should return original error")
	}
}
