package auth

import (
	"fmt"

	"golang.org/x/crypto/bcrypt"

	apperrors "github.com/wavezly/wavezly/internal/platform/errors"
)

const (
	// minPINLength is the shortest PIN accepted.
	minPINLength = 4
	// maxPINLength bounds PINs well under the bcrypt input limit.
	maxPINLength = 12
)

// ValidatePIN enforces the PIN policy: 4 to 12 digits.
func ValidatePIN(pin string) error {
	if len(pin) < minPINLength || len(pin) > maxPINLength {
		return apperrors.New(apperrors.CodeAuthPinTooWeak, "pin must be 4 to 12 digits")
	}
	for _, r := range pin {
		if r < '0' || r > '9' {
			return apperrors.New(apperrors.CodeAuthPinTooWeak, "pin must contain only digits")
		}
	}
	return nil
}

// HashPIN validates and bcrypt-hashes a PIN for storage.
func HashPIN(pin string) (string, error) {
	if err := ValidatePIN(pin); err != nil {
		return "", err
	}
	hash, err := bcrypt.GenerateFromPassword([]byte(pin), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("hash pin: %w", err)
	}
	return string(hash), nil
}

// VerifyPIN compares a stored hash against a candidate PIN.
// Any mismatch maps to the same credentials error so callers cannot
// distinguish a wrong PIN from a malformed hash.
func VerifyPIN(hash string, pin string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(pin)); err != nil {
		return apperrors.New(apperrors.CodeAuthInvalidCredentials, "email or pin is incorrect")
	}
	return nil
}
