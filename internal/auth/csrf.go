package auth

import (
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"strings"

	"github.com/caarlos0/env/v11"
)

// csrfKeyBytes is the required CSRF signing key length.
const csrfKeyBytes = 32

// csrfEnv holds the raw env value before decoding.
type csrfEnv struct {
	Key string `env:"WAVEZLY_CSRF_HMAC_KEY"`
}

// CSRFSigner issues and verifies per-session CSRF tokens.
//
// A token is hex(HMAC-SHA256(key, session ID)): it rotates with the session
// and never needs server-side storage.
type CSRFSigner struct {
	key []byte
}

// NewCSRFSigner builds a signer from a hex-encoded 32-byte key.
func NewCSRFSigner(hexKey string) (*CSRFSigner, error) {
	key, err := hex.DecodeString(strings.TrimSpace(hexKey))
	if err != nil {
		return nil, fmt.Errorf("decode csrf key: %w", err)
	}
	if len(key) != csrfKeyBytes {
		return nil, fmt.Errorf("csrf key must be %d bytes, got %d", csrfKeyBytes, len(key))
	}
	return &CSRFSigner{key: key}, nil
}

// LoadCSRFSignerFromEnv reads the signing key from WAVEZLY_CSRF_HMAC_KEY.
func LoadCSRFSignerFromEnv() (*CSRFSigner, error) {
	var raw csrfEnv
	if err := env.Parse(&raw); err != nil {
		return nil, fmt.Errorf("parse csrf env: %w", err)
	}
	if strings.TrimSpace(raw.Key) == "" {
		return nil, fmt.Errorf("WAVEZLY_CSRF_HMAC_KEY is required")
	}
	return NewCSRFSigner(raw.Key)
}

// Token computes the CSRF token for a session ID.
func (s *CSRFSigner) Token(sessionID string) string {
	if s == nil {
		return ""
	}
	mac := hmac.New(sha256.New, s.key)
	mac.Write([]byte(sessionID))
	return hex.EncodeToString(mac.Sum(nil))
}

// Verify reports whether token matches the session's expected signature.
func (s *CSRFSigner) Verify(sessionID string, token string) bool {
	if s == nil || sessionID == "" {
		return false
	}
	expected := s.Token(sessionID)
	return hmac.Equal([]byte(expected), []byte(strings.TrimSpace(token)))
}
