package errors

import (
	stderrors "errors"
	"fmt"
	"net/http"
	"testing"
)

func TestErrorUnwrap(t *testing.T) {
	cause := stderrors.New("row missing")
	err := Wrap(CodeNotFound, "task not found", cause)

	if !stderrors.Is(err, cause) {
		t.Fatal("expected wrapped cause in chain")
	}
	if err.Error() != "task not found" {
		t.Fatalf("Error() = %q", err.Error())
	}
}

func TestErrorIsMatchesByCode(t *testing.T) {
	err := New(CodeNotFound, "task not found")
	target := New(CodeNotFound, "different message")

	if !stderrors.Is(err, target) {
		t.Fatal("expected errors with the same code to match")
	}
	other := New(CodeAuthForbidden, "nope")
	if stderrors.Is(err, other) {
		t.Fatal("expected errors with different codes not to match")
	}
}

func TestCodeOf(t *testing.T) {
	err := fmt.Errorf("lookup task: %w", New(CodeNotFound, "task not found"))
	if got := CodeOf(err); got != CodeNotFound {
		t.Fatalf("CodeOf = %q, want %q", got, CodeNotFound)
	}
	if got := CodeOf(stderrors.New("plain")); got != CodeUnknown {
		t.Fatalf("CodeOf plain error = %q, want %q", got, CodeUnknown)
	}
}

func TestHTTPStatusMapping(t *testing.T) {
	tests := []struct {
		code Code
		want int
	}{
		{CodeTaskTitleEmpty, http.StatusBadRequest},
		{CodeAuthInvalidCredentials, http.StatusUnauthorized},
		{CodeAuthCSRFInvalid, http.StatusForbidden},
		{CodeNotFound, http.StatusNotFound},
		{CodeUserEmailTaken, http.StatusConflict},
		{CodeInviteGrantExpired, http.StatusUnprocessableEntity},
		{CodeAuthRateLimited, http.StatusTooManyRequests},
		{CodeAIProviderUnavailable, http.StatusBadGateway},
		{CodeUnknown, http.StatusInternalServerError},
	}
	for _, tt := range tests {
		if got := tt.code.HTTPStatus(); got != tt.want {
			t.Fatalf("HTTPStatus(%s) = %d, want %d", tt.code, got, tt.want)
		}
	}
}

func TestHTTPStatusFromChain(t *testing.T) {
	err := fmt.Errorf("handler: %w", New(CodeAuthRateLimited, "slow down"))
	if got := HTTPStatus(err); got != http.StatusTooManyRequests {
		t.Fatalf("HTTPStatus = %d, want %d", got, http.StatusTooManyRequests)
	}
}
