package errors

import (
	stderrors "errors"
	"fmt"
	"testing"
)

func TestNew(t *testing.T) {
	err := New(ErrCodeMissingPacks, "manifest has no %s section", "packs")

	if err.Code != ErrCodeMissingPacks {
		t.Errorf("Code = %s", err.Code)
	}
	if err.Message != "manifest has no packs section" {
		t.Errorf("Message = %q", err.Message)
	}
	if got := err.Error(); got != "MISSING_PACKS: manifest has no packs section" {
		t.Errorf("Error() = %q", got)
	}
}

func TestWrap(t *testing.T) {
	cause := stderrors.New("yaml: line 3: mapping values are not allowed")
	err := Wrap(ErrCodeParse, cause, "manifest for %s is invalid", "org/repo")

	if err.Cause != cause {
		t.Error("Cause not preserved")
	}
	if !stderrors.Is(err, cause) {
		t.Error("errors.Is should reach the cause through Unwrap")
	}
	want := "PARSE_ERROR: manifest for org/repo is invalid: yaml: line 3: mapping values are not allowed"
	if got := err.Error(); got != want {
		t.Errorf("Error() = %q, want %q", got, want)
	}
}

func TestIs(t *testing.T) {
	err := New(ErrCodeNotFound, "missing")

	if !Is(err, ErrCodeNotFound) {
		t.Error("Is should match the error's own code")
	}
	if Is(err, ErrCodeFetch) {
		t.Error("Is should not match a different code")
	}
	if Is(stderrors.New("plain"), ErrCodeNotFound) {
		t.Error("Is should not match plain errors")
	}
	if Is(nil, ErrCodeNotFound) {
		t.Error("Is(nil) should be false")
	}

	// Code survives fmt wrapping.
	wrapped := fmt.Errorf("handler: %w", err)
	if !Is(wrapped, ErrCodeNotFound) {
		t.Error("Is should unwrap through fmt.Errorf")
	}
}

func TestGetCode(t *testing.T) {
	if got := GetCode(New(ErrCodeInvalidRepo, "bad")); got != ErrCodeInvalidRepo {
		t.Errorf("GetCode = %s", got)
	}
	if got := GetCode(stderrors.New("plain")); got != "" {
		t.Errorf("GetCode(plain) = %q, want empty", got)
	}
}

func TestUserMessage(t *testing.T) {
	err := New(ErrCodeInvalidLimit, "limit must be between 1 and 500, got 0")
	if got := UserMessage(err); got != "limit must be between 1 and 500, got 0" {
		t.Errorf("UserMessage = %q", got)
	}

	// The code prefix never leaks into the user message.
	wrapped := Wrap(ErrCodeFetch, stderrors.New("dial tcp: refused"), "could not reach upstream")
	if got := UserMessage(wrapped); got != "could not reach upstream" {
		t.Errorf("UserMessage = %q", got)
	}

	plain := stderrors.New("plain failure")
	if got := UserMessage(plain); got != "plain failure" {
		t.Errorf("UserMessage(plain) = %q", got)
	}
}
