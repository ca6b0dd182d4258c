package agency

import (
	"crypto/ed25519"
	"encoding/base64"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/golang-jwt/jwt/v5"

	"github.com/wavezly/wavezly/internal/platform/id"

	apperrors "github.com/wavezly/wavezly/internal/platform/errors"
)

// grantEnv holds raw env values before post-parse validation.
type grantEnv struct {
	Issuer     string `env:"WAVEZLY_GRANT_ISSUER" envDefault:"wavezly"`
	Audience   string `env:"WAVEZLY_GRANT_AUDIENCE" envDefault:"wavezly-api"`
	PrivateKey string `env:"WAVEZLY_GRANT_PRIVATE_KEY"`
}

// GrantConfig defines how invitation grants are signed and verified.
type GrantConfig struct {
	Issuer   string
	Audience string
	Key      ed25519.PrivateKey
	Now      func() time.Time
}

// GrantExpectation defines the expected identity for an invitation grant.
type GrantExpectation struct {
	AgencyID string
	InviteID string
	Email    string
}

// GrantClaims captures validated invitation grant claims.
type GrantClaims struct {
	Issuer    string
	Audience  []string
	ExpiresAt time.Time
	NotBefore time.Time
	IssuedAt  time.Time
	JWTID     string
	AgencyID  string
	InviteID  string
	Email     string
}

// grantClaims is the internal claims type used for JWT parsing.
type grantClaims struct {
	jwt.RegisteredClaims
	AgencyID string `json:"agency_id"`
	InviteID string `json:"invite_id"`
	Email    string `json:"email"`
}

// LoadGrantConfigFromEnv reads grant signing configuration from the
// WAVEZLY_GRANT_* variables. The key may be a full Ed25519 private key or
// a 32-byte seed, base64 encoded either raw or padded.
func LoadGrantConfigFromEnv(now func() time.Time) (GrantConfig, error) {
	var raw grantEnv
	if err := env.Parse(&raw); err != nil {
		return GrantConfig{}, fmt.Errorf("parse invite grant env: %w", err)
	}
	issuer := strings.TrimSpace(raw.Issuer)
	audience := strings.TrimSpace(raw.Audience)
	privateKey := strings.TrimSpace(raw.PrivateKey)
	if issuer == "" {
		return GrantConfig{}, fmt.Errorf("WAVEZLY_GRANT_ISSUER is required")
	}
	if audience == "" {
		return GrantConfig{}, fmt.Errorf("WAVEZLY_GRANT_AUDIENCE is required")
	}
	if privateKey == "" {
		return GrantConfig{}, fmt.Errorf("WAVEZLY_GRANT_PRIVATE_KEY is required")
	}
	keyBytes, err := decodeBase64(privateKey)
	if err != nil {
		return GrantConfig{}, fmt.Errorf("decode invite grant private key: %w", err)
	}
	switch len(keyBytes) {
	case ed25519.PrivateKeySize:
	case ed25519.SeedSize:
		keyBytes = ed25519.NewKeyFromSeed(keyBytes)
	default:
		return GrantConfig{}, fmt.Errorf("invite grant private key must be %d or %d bytes", ed25519.SeedSize, ed25519.PrivateKeySize)
	}
	if now == nil {
		now = time.Now
	}
	return GrantConfig{
		Issuer:   issuer,
		Audience: audience,
		Key:      ed25519.PrivateKey(keyBytes),
		Now:      now,
	}, nil
}

// SignGrant issues an Ed25519 grant token for a pending invitation.
// The token expiry mirrors the invitation row so both lapse together.
func SignGrant(invite Invitation, cfg GrantConfig) (string, error) {
	if cfg.Issuer == "" || cfg.Audience == "" || len(cfg.Key) != ed25519.PrivateKeySize {
		return "", errors.New("invite grant signer is not configured")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	jti, err := id.NewID()
	if err != nil {
		return "", fmt.Errorf("generate grant id: %w", err)
	}

	now := cfg.Now().UTC()
	claims := grantClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Issuer:    cfg.Issuer,
			Audience:  jwt.ClaimStrings{cfg.Audience},
			IssuedAt:  jwt.NewNumericDate(now),
			NotBefore: jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(invite.ExpiresAt.UTC()),
			ID:        jti,
		},
		AgencyID: invite.AgencyID,
		InviteID: invite.ID,
		Email:    invite.Email,
	}

	token := jwt.NewWithClaims(jwt.SigningMethodEdDSA, claims)
	signed, err := token.SignedString(cfg.Key)
	if err != nil {
		return "", fmt.Errorf("sign invite grant: %w", err)
	}
	return signed, nil
}

// ValidateGrant verifies an invitation grant token and validates expected claims.
func ValidateGrant(grant string, expected GrantExpectation, cfg GrantConfig) (GrantClaims, error) {
	grant = strings.TrimSpace(grant)
	if grant == "" {
		return GrantClaims{}, apperrors.New(apperrors.CodeInviteGrantInvalid, "invite grant is required")
	}
	if cfg.Now == nil {
		cfg.Now = time.Now
	}
	if cfg.Issuer == "" || cfg.Audience == "" || len(cfg.Key) != ed25519.PrivateKeySize {
		return GrantClaims{}, errors.New("invite grant verifier is not configured")
	}
	publicKey := cfg.Key.Public().(ed25519.PublicKey)

	var parsed grantClaims
	_, err := jwt.ParseWithClaims(grant, &parsed, func(token *jwt.Token) (any, error) {
		return publicKey, nil
	},
		jwt.WithValidMethods([]string{"EdDSA"}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return GrantClaims{}, mapJWTError(err)
	}

	if parsed.Issuer == "" || parsed.Issuer != cfg.Issuer {
		return GrantClaims{}, apperrors.WithMetadata(
			apperrors.CodeInviteGrantMismatch,
			"invite grant issuer mismatch",
			map[string]string{"Field": "issuer"},
		)
	}
	if !audienceContains(parsed.Audience, cfg.Audience) {
		return GrantClaims{}, apperrors.WithMetadata(
			apperrors.CodeInviteGrantMismatch,
			"invite grant audience mismatch",
			map[string]string{"Field": "audience"},
		)
	}

	if parsed.ID == "" {
		return GrantClaims{}, apperrors.New(apperrors.CodeInviteGrantInvalid, "invite grant jti is required")
	}
	if parsed.ExpiresAt == nil {
		return GrantClaims{}, apperrors.New(apperrors.CodeInviteGrantInvalid, "invite grant exp is required")
	}

	now := cfg.Now().UTC()
	exp := parsed.ExpiresAt.Time.UTC()
	if !exp.After(now) {
		return GrantClaims{}, apperrors.New(apperrors.CodeInviteGrantExpired, "invite grant is expired")
	}
	if parsed.NotBefore != nil {
		nbf := parsed.NotBefore.Time.UTC()
		if now.Before(nbf) {
			return GrantClaims{}, apperrors.New(apperrors.CodeInviteGrantInvalid, "invite grant not active yet")
		}
	}

	if strings.TrimSpace(parsed.AgencyID) == "" || parsed.AgencyID != expected.AgencyID {
		return GrantClaims{}, apperrors.WithMetadata(
			apperrors.CodeInviteGrantMismatch,
			"invite grant agency mismatch",
			map[string]string{"Field": "agency_id"},
		)
	}
	if strings.TrimSpace(parsed.InviteID) == "" || parsed.InviteID != expected.InviteID {
		return GrantClaims{}, apperrors.WithMetadata(
			apperrors.CodeInviteGrantMismatch,
			"invite grant invite mismatch",
			map[string]string{"Field": "invite_id"},
		)
	}
	if strings.TrimSpace(parsed.Email) == "" || parsed.Email != expected.Email {
		return GrantClaims{}, apperrors.WithMetadata(
			apperrors.CodeInviteGrantMismatch,
			"invite grant email mismatch",
			map[string]string{"Field": "email"},
		)
	}

	claims := GrantClaims{
		Issuer:    parsed.Issuer,
		Audience:  []string(parsed.Audience),
		ExpiresAt: exp,
		JWTID:     parsed.ID,
		AgencyID:  parsed.AgencyID,
		InviteID:  parsed.InviteID,
		Email:     parsed.Email,
	}
	if parsed.NotBefore != nil {
		claims.NotBefore = parsed.NotBefore.Time.UTC()
	}
	if parsed.IssuedAt != nil {
		claims.IssuedAt = parsed.IssuedAt.Time.UTC()
	}
	return claims, nil
}

// ParseGrantClaims decodes grant claims without expectation checks so the
// accept endpoint can locate the invitation row before full validation.
func ParseGrantClaims(grant string, cfg GrantConfig) (GrantClaims, error) {
	grant = strings.TrimSpace(grant)
	if grant == "" {
		return GrantClaims{}, apperrors.New(apperrors.CodeInviteGrantInvalid, "invite grant is required")
	}
	if len(cfg.Key) != ed25519.PrivateKeySize {
		return GrantClaims{}, errors.New("invite grant verifier is not configured")
	}
	publicKey := cfg.Key.Public().(ed25519.PublicKey)

	var parsed grantClaims
	_, err := jwt.ParseWithClaims(grant, &parsed, func(token *jwt.Token) (any, error) {
		return publicKey, nil
	},
		jwt.WithValidMethods([]string{"EdDSA"}),
		jwt.WithoutClaimsValidation(),
	)
	if err != nil {
		return GrantClaims{}, mapJWTError(err)
	}
	claims := GrantClaims{
		Issuer:   parsed.Issuer,
		Audience: []string(parsed.Audience),
		JWTID:    parsed.ID,
		AgencyID: strings.TrimSpace(parsed.AgencyID),
		InviteID: strings.TrimSpace(parsed.InviteID),
		Email:    strings.TrimSpace(parsed.Email),
	}
	if parsed.ExpiresAt != nil {
		claims.ExpiresAt = parsed.ExpiresAt.Time.UTC()
	}
	return claims, nil
}

// mapJWTError translates jwt library errors to application errors.
func mapJWTError(err error) error {
	if errors.Is(err, jwt.ErrTokenSignatureInvalid) || errors.Is(err, jwt.ErrEd25519Verification) {
		return apperrors.New(apperrors.CodeInviteGrantInvalid, "invite grant signature is invalid")
	}
	if errors.Is(err, jwt.ErrTokenUnverifiable) {
		return apperrors.New(apperrors.CodeInviteGrantInvalid, "invite grant alg is invalid")
	}
	return apperrors.New(apperrors.CodeInviteGrantInvalid, "invite grant is invalid")
}

// audienceContains reports whether the audience list contains the given value.
func audienceContains(aud jwt.ClaimStrings, value string) bool {
	for _, item := range aud {
		if item == value {
			return true
		}
	}
	return false
}

func decodeBase64(value string) ([]byte, error) {
	if value == "" {
		return nil, errors.New("empty base64 value")
	}
	decoded, err := base64.RawStdEncoding.DecodeString(value)
	if err == nil {
		return decoded, nil
	}
	return base64.StdEncoding.DecodeString(value)
}
