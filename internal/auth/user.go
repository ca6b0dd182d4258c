// Package auth implements PIN credentials, sessions, CSRF signatures, and
// request throttling for the API surface.
package auth

import (
	"net/mail"
	"strings"
	"time"

	apperrors "github.com/wavezly/wavezly/internal/platform/errors"
)

// User is an authenticated person. Membership rows bind users to agencies.
type User struct {
	ID          string
	Email       string
	DisplayName string
	PINHash     string
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// NormalizeEmail lowercases and validates a login email address.
func NormalizeEmail(value string) (string, error) {
	value = strings.ToLower(strings.TrimSpace(value))
	if value == "" {
		return "", apperrors.New(apperrors.CodeUserEmailInvalid, "email is required")
	}
	parsed, err := mail.ParseAddress(value)
	if err != nil || parsed.Address != value {
		return "", apperrors.New(apperrors.CodeUserEmailInvalid, "email is invalid")
	}
	return value, nil
}

// NewUser builds a validated user with a hashed PIN.
func NewUser(id string, email string, displayName string, pin string, now time.Time) (User, error) {
	normalizedEmail, err := NormalizeEmail(email)
	if err != nil {
		return User{}, err
	}
	displayName = strings.TrimSpace(displayName)
	if displayName == "" {
		return User{}, apperrors.New(apperrors.CodeUserDisplayNameEmpty, "display name is required")
	}
	pinHash, err := HashPIN(pin)
	if err != nil {
		return User{}, err
	}
	now = now.UTC()
	return User{
		ID:          id,
		Email:       normalizedEmail,
		DisplayName: displayName,
		PINHash:     pinHash,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
