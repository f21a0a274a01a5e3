package errors

import (
	"fmt"
	"testing"
)

func TestClipError_Error(t *testing.T) {
	err := &ClipError{
		Code:    ErrNotFound,
		Status:  404,
		Message: "clip not found: 7",
	}

	expected := "NOT_FOUND: clip not found: 7"
	if err.Error() != expected {
		t.Errorf("Error() = %q, want %q", err.Error(), expected)
	}
}

func TestNewInvalidRequest(t *testing.T) {
	err := NewInvalidRequest("content is required")

	if err.Code != ErrInvalidRequest {
		t.Errorf("Code = %q, want %q", err.Code, ErrInvalidRequest)
	}
	if err.Status != 400 {
		t.Errorf("Status = %d, want 400", err.Status)
	}
	if err.Message != "content is required" {
		t.Errorf("Message = %q, want %q", err.Message, "content is required")
	}
}

func TestNewNotFound(t *testing.T) {
	err := NewNotFound(42)

	if err.Code != ErrNotFound {
		t.Errorf("Code = %q, want %q", err.Code, ErrNotFound)
	}
	if err.Status != 404 {
		t.Errorf("Status = %d, want 404", err.Status)
	}
	if err.Details["id"] != int64(42) {
		t.Errorf("Details[id] = %v, want 42", err.Details["id"])
	}
}

func TestNewUnavailable(t *testing.T) {
	err := NewUnavailable("clipboard unavailable")

	if err.Code != ErrUnavailable {
		t.Errorf("Code = %q, want %q", err.Code, ErrUnavailable)
	}
	if err.Status != 503 {
		t.Errorf("Status = %d, want 503", err.Status)
	}
}

func TestNewInternal(t *testing.T) {
	err := NewInternal(fmt.Errorf("disk full"))
	if err.Code != ErrInternal {
		t.Errorf("Code = %q, want %q", err.Code, ErrInternal)
	}
	if err.Message != "disk full" {
		t.Errorf("Message = %q, want %q", err.Message, "disk full")
	}

	nilErr := NewInternal(nil)
	if nilErr.Message != "internal error" {
		t.Errorf("Message = %q, want %q", nilErr.Message, "internal error")
	}
}

func TestWrap(t *testing.T) {
	if Wrap(nil) != nil {
		t.Error("Wrap(nil) should be nil")
	}

	notFound := NewNotFound(1)
	if got := Wrap(notFound); got != notFound {
		t.Errorf("Wrap(ClipError) = %v, want same error", got)
	}

	wrapped := Wrap(fmt.Errorf("query: %w", notFound))
	if !Is(wrapped, ErrNotFound) {
		t.Errorf("Wrap(wrapped ClipError) = %v, want NOT_FOUND", wrapped)
	}

	plain := Wrap(fmt.Errorf("boom"))
	if !Is(plain, ErrInternal) {
		t.Errorf("Wrap(plain) = %v, want INTERNAL", plain)
	}
}

func TestIs(t *testing.T) {
	tests := []struct {
		name string
		err  error
		code ErrorCode
		want bool
	}{
		{"matching code", NewNotFound(1), ErrNotFound, true},
		{"different code", NewNotFound(1), ErrInternal, false},
		{"wrapped", fmt.Errorf("ctx: %w", NewInvalidRequest("x")), ErrInvalidRequest, true},
		{"plain error", fmt.Errorf("boom"), ErrInternal, false},
		{"nil", nil, ErrNotFound, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := Is(tt.err, tt.code); got != tt.want {
				t.Errorf("Is() = %v, want %v", got, tt.want)
			}
		})
	}
}
