package errors

import (
	"errors"
	"fmt"
	"testing"
)

func TestAppError_Error(t *testing.T) {
	err := New(CodeNotFound, "memo 7 not found")
	expected := "[NOT_FOUND] memo 7 not found"
	if err.Error() != expected {
		t.Errorf("expected %q, got %q", expected, err.Error())
	}
}

func TestAppError_Wrap(t *testing.T) {
	inner := fmt.Errorf("disk I/O error")
	err := Wrap(CodeStorage, "failed to create memo", inner)

	if err.Error() != "[STORAGE] failed to create memo: disk I/O error" {
		t.Errorf("unexpected error string: %s", err.Error())
	}

	if !errors.Is(err, inner) {
		t.Error("errors.Is should find inner error")
	}
}

func TestAppError_WithSuggestion(t *testing.T) {
	err := New(CodeInitialization, "data directory not writable").
		WithSuggestion("Pass --data-dir with a writable directory")

	if err.Suggestion != "Pass --data-dir with a writable directory" {
		t.Errorf("unexpected suggestion: %s", err.Suggestion)
	}
}

func TestAppError_IsSentinel(t *testing.T) {
	err := Newf(CodeNotFound, "memo %d not found", 9999)
	wrapped := fmt.Errorf("update: %w", err)

	if !errors.Is(wrapped, ErrNotFound) {
		t.Error("expected wrapped error to match ErrNotFound")
	}
	if errors.Is(wrapped, ErrStorage) {
		t.Error("NOT_FOUND must not match ErrStorage")
	}
	if !IsNotFound(wrapped) {
		t.Error("IsNotFound should be true")
	}
}

func TestAsCode(t *testing.T) {
	err := Wrap(CodeStorage, "query failed", fmt.Errorf("no such table"))
	if AsCode(err) != CodeStorage {
		t.Errorf("expected code %q, got %q", CodeStorage, AsCode(err))
	}

	plain := fmt.Errorf("plain error")
	if AsCode(plain) != "" {
		t.Error("expected empty code for non-AppError")
	}
}

func TestSuggestion(t *testing.T) {
	err := New(CodeInvalidInput, "bad id").WithSuggestion("ids are positive integers")
	if Suggestion(err) != "ids are positive integers" {
		t.Errorf("unexpected suggestion %q", Suggestion(err))
	}

	if Suggestion(fmt.Errorf("plain")) != "" {
		t.Error("expected empty suggestion for non-AppError")
	}
}
