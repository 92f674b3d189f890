package errs

import (
	"errors"
	"fmt"
	"net/http"
	"testing"
)

func TestNewError(t *testing.T) {
	tests := []struct {
		name       string
		code       int
		details    []any
		wantCode   int
		wantMsg    string
		wantStatus int
	}{
		{"plain", ErrEmailExists, nil, ErrEmailExists, "Email already exists.", http.StatusOK},
		{"explicit status", ErrRateLimitExceeded, nil, ErrRateLimitExceeded, "Too many requests. Please try again later.", http.StatusTooManyRequests},
		{"formatted", ErrMessageContentTooLong, []any{5000}, ErrMessageContentTooLong, "Message is too long (max 5000 bytes).", http.StatusOK},
		{"unknown code", 424242, nil, ErrUnknown, "Something went wrong. Please try again.", http.StatusInternalServerError},
		{"unknown keeps message private", ErrUnknown, []any{errors.New("db exploded")}, ErrUnknown, "Something went wrong. Please try again.", http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := NewError(tt.code, tt.details...)
			if err.Code != tt.wantCode {
				t.Errorf("Code = %d, want %d", err.Code, tt.wantCode)
			}
			if err.Message != tt.wantMsg {
				t.Errorf("Message = %q, want %q", err.Message, tt.wantMsg)
			}
			if err.Status != tt.wantStatus {
				t.Errorf("Status = %d, want %d", err.Status, tt.wantStatus)
			}
		})
	}
}

func TestNewErrorDoesNotMutateTemplate(t *testing.T) {
	_ = NewError(ErrMessageContentTooLong, 10)
	again := NewError(ErrMessageContentTooLong, 20)

	if again.Message != "Message is too long (max 20 bytes)." {
		t.Fatalf("template was mutated: %q", again.Message)
	}
}

func TestIs(t *testing.T) {
	wrapped := fmt.Errorf("login: %w", NewError(ErrInvalidCredentials))

	if !Is(wrapped, ErrInvalidCredentials) {
		t.Error("Is should see through wrapping")
	}
	if Is(wrapped, ErrUserNotFound) {
		t.Error("Is matched the wrong code")
	}
	if Is(errors.New("plain"), ErrUnknown) {
		t.Error("Is matched a non-custom error")
	}
}
