package domain

import (
	"errors"
	"fmt"
	"testing"
)

func TestErrors(t *testing.T) {
	tests := []struct {
		name string
		err  error
		msg  string
	}{
		{"ErrNotFound", ErrNotFound, "not found"},
		{"ErrInvalidInput", ErrInvalidInput, "invalid input"},
		{"ErrUnauthorized", ErrUnauthorized, "unauthorized"},
		{"ErrTokenInvalid", ErrTokenInvalid, "token invalid"},
		{"ErrTokenExpired", ErrTokenExpired, "token expired"},
		{"ErrExchangeRejected", ErrExchangeRejected, "credential exchange rejected"},
		{"ErrInvalidTransition", ErrInvalidTransition, "invalid login state transition"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if tt.err.Error() != tt.msg {
				t.Errorf("expected %q, got %q", tt.msg, tt.err.Error())
			}
		})
	}
}

func TestErrorsAreDistinct(t *testing.T) {
	allErrors := []error{
		ErrNotFound,
		ErrInvalidInput,
		ErrUnauthorized,
		ErrTokenInvalid,
		ErrTokenExpired,
		ErrExchangeRejected,
		ErrInvalidTransition,
	}

	for i, a := range allErrors {
		for j, b := range allErrors {
			if i != j && errors.Is(a, b) {
				t.Errorf("expected %v and %v to be distinct", a, b)
			}
		}
	}
}

func TestErrExchangeRejected_Wrapped(t *testing.T) {
	wrapped := fmt.Errorf("password grant: %w", ErrExchangeRejected)
	if !errors.Is(wrapped, ErrExchangeRejected) {
		t.Error("expected wrapped error to match ErrExchangeRejected")
	}
}
