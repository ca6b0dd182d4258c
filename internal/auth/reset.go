package auth

import (
	"crypto/rand"
	"crypto/sha256"
	"crypto/subtle"
	"encoding/hex"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"

	apperrors "github.com/wavezly/wavezly/internal/platform/errors"
)

// resetTokenBytes sizes the raw reset token before hex encoding.
const resetTokenBytes = 32

// ResetConfig controls PIN reset token timing.
//
// The TTL is read at startup so operators can tune it without changing
// runtime code paths.
type ResetConfig struct {
	TTL time.Duration `env:"WAVEZLY_PIN_RESET_TTL" envDefault:"15m"`
}

// LoadResetConfigFromEnv loads reset configuration and applies defensive defaults.
//
// Defaults are intentionally explicit because reset tokens are
// security-sensitive and should remain predictable in local and CI
// environments.
func LoadResetConfigFromEnv() ResetConfig {
	var cfg ResetConfig
	_ = env.Parse(&cfg)
	if cfg.TTL == 0 {
		cfg.TTL = 15 * time.Minute
	}
	return cfg
}

// ResetRequest is a pending PIN reset. Only the SHA-256 digest of the token
// is persisted; the raw token travels to the user out of band.
type ResetRequest struct {
	UserID      string
	TokenDigest string
	ExpiresAt   time.Time
	CreatedAt   time.Time
}

// NewResetToken generates a raw reset token and its storage digest.
func NewResetToken() (raw string, digest string, err error) {
	buf := make([]byte, resetTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", "", fmt.Errorf("generate reset token: %w", err)
	}
	raw = hex.EncodeToString(buf)
	return raw, HashResetToken(raw), nil
}

// HashResetToken computes the storage digest for a raw token.
func HashResetToken(raw string) string {
	sum := sha256.Sum256([]byte(strings.TrimSpace(raw)))
	return hex.EncodeToString(sum[:])
}

// NewResetRequest builds a pending reset for a user.
func NewResetRequest(userID string, digest string, now time.Time, ttl time.Duration) ResetRequest {
	if ttl <= 0 {
		ttl = 15 * time.Minute
	}
	now = now.UTC()
	return ResetRequest{
		UserID:      userID,
		TokenDigest: digest,
		ExpiresAt:   now.Add(ttl),
		CreatedAt:   now,
	}
}

// VerifyResetToken checks a raw token against a pending request.
func VerifyResetToken(request ResetRequest, raw string, now time.Time) error {
	digest := HashResetToken(raw)
	if subtle.ConstantTimeCompare([]byte(digest), []byte(request.TokenDigest)) != 1 {
		return apperrors.New(apperrors.CodeAuthResetTokenInvalid, "reset token is invalid")
	}
	if !request.ExpiresAt.After(now.UTC()) {
		return apperrors.New(apperrors.CodeAuthResetTokenExpired, "reset token is expired")
	}
	return nil
}
