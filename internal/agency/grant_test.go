package agency

import (
	"crypto/ed25519"
	"crypto/rand"
	"encoding/base64"
	"testing"
	"time"

	apperrors "github.com/wavezly/wavezly/internal/platform/errors"
)

func base64Encode(value []byte) string {
	return base64.StdEncoding.EncodeToString(value)
}

func testGrantConfig(t *testing.T, now time.Time) GrantConfig {
	t.Helper()
	_, privateKey, err := ed25519.GenerateKey(rand.Reader)
	if err != nil {
		t.Fatalf("generate key: %v", err)
	}
	return GrantConfig{
		Issuer:   "wavezly-test",
		Audience: "wavezly-invites",
		Key:      privateKey,
		Now:      func() time.Time { return now },
	}
}

func testInvitation(now time.Time) Invitation {
	return Invitation{
		ID:        "inv-1",
		AgencyID:  "agency-1",
		Email:     "agent@example.com",
		Role:      RoleAgent,
		Status:    InviteStatusPending,
		ExpiresAt: now.Add(time.Hour),
	}
}

func TestSignAndValidateGrant(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	cfg := testGrantConfig(t, now)
	invite := testInvitation(now)

	grant, err := SignGrant(invite, cfg)
	if err != nil {
		t.Fatalf("sign grant: %v", err)
	}

	claims, err := ValidateGrant(grant, GrantExpectation{
		AgencyID: "agency-1",
		InviteID: "inv-1",
		Email:    "agent@example.com",
	}, cfg)
	if err != nil {
		t.Fatalf("validate grant: %v", err)
	}
	if claims.AgencyID != "agency-1" || claims.InviteID != "inv-1" || claims.Email != "agent@example.com" {
		t.Fatalf("claims = %+v", claims)
	}
	if claims.JWTID == "" {
		t.Fatal("expected jti")
	}
}

func TestValidateGrantExpired(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	cfg := testGrantConfig(t, now)
	grant, err := SignGrant(testInvitation(now), cfg)
	if err != nil {
		t.Fatalf("sign grant: %v", err)
	}

	cfg.Now = func() time.Time { return now.Add(2 * time.Hour) }
	_, err = ValidateGrant(grant, GrantExpectation{AgencyID: "agency-1", InviteID: "inv-1", Email: "agent@example.com"}, cfg)
	if apperrors.CodeOf(err) != apperrors.CodeInviteGrantExpired {
		t.Fatalf("expected expired error, got %v", err)
	}
}

func TestValidateGrantMismatch(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	cfg := testGrantConfig(t, now)
	grant, err := SignGrant(testInvitation(now), cfg)
	if err != nil {
		t.Fatalf("sign grant: %v", err)
	}

	tests := []struct {
		name     string
		expected GrantExpectation
	}{
		{"wrong agency", GrantExpectation{AgencyID: "agency-2", InviteID: "inv-1", Email: "agent@example.com"}},
		{"wrong invite", GrantExpectation{AgencyID: "agency-1", InviteID: "inv-2", Email: "agent@example.com"}},
		{"wrong email", GrantExpectation{AgencyID: "agency-1", InviteID: "inv-1", Email: "other@example.com"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ValidateGrant(grant, tt.expected, cfg)
			if apperrors.CodeOf(err) != apperrors.CodeInviteGrantMismatch {
				t.Fatalf("expected mismatch error, got %v", err)
			}
		})
	}
}

func TestValidateGrantWrongKey(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	cfg := testGrantConfig(t, now)
	grant, err := SignGrant(testInvitation(now), cfg)
	if err != nil {
		t.Fatalf("sign grant: %v", err)
	}

	other := testGrantConfig(t, now)
	_, err = ValidateGrant(grant, GrantExpectation{AgencyID: "agency-1", InviteID: "inv-1", Email: "agent@example.com"}, other)
	if apperrors.CodeOf(err) != apperrors.CodeInviteGrantInvalid {
		t.Fatalf("expected invalid error, got %v", err)
	}
}

func TestParseGrantClaimsLocatesInvite(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	cfg := testGrantConfig(t, now)
	grant, err := SignGrant(testInvitation(now), cfg)
	if err != nil {
		t.Fatalf("sign grant: %v", err)
	}

	claims, err := ParseGrantClaims(grant, cfg)
	if err != nil {
		t.Fatalf("parse grant claims: %v", err)
	}
	if claims.InviteID != "inv-1" || claims.AgencyID != "agency-1" {
		t.Fatalf("claims = %+v", claims)
	}
}

func TestValidateGrantEmpty(t *testing.T) {
	cfg := testGrantConfig(t, time.Now())
	_, err := ValidateGrant("  ", GrantExpectation{}, cfg)
	if apperrors.CodeOf(err) != apperrors.CodeInviteGrantInvalid {
		t.Fatalf("expected invalid error, got %v", err)
	}
}

func TestLoadGrantConfigFromEnv(t *testing.T) {
	seed := make([]byte, ed25519.SeedSize)
	key := ed25519.NewKeyFromSeed(seed)

	t.Setenv("WAVEZLY_GRANT_ISSUER", "wavezly")
	t.Setenv("WAVEZLY_GRANT_AUDIENCE", "wavezly-invites")
	t.Setenv("WAVEZLY_GRANT_PRIVATE_KEY", base64Encode(seed))

	cfg, err := LoadGrantConfigFromEnv(nil)
	if err != nil {
		t.Fatalf("load grant config: %v", err)
	}
	if !key.Equal(cfg.Key) {
		t.Fatal("expected key derived from seed")
	}
	if cfg.Issuer != "wavezly" || cfg.Audience != "wavezly-invites" {
		t.Fatalf("config = %+v", cfg)
	}
}

func TestLoadGrantConfigFromEnvMissing(t *testing.T) {
	t.Setenv("WAVEZLY_GRANT_ISSUER", "")
	t.Setenv("WAVEZLY_GRANT_AUDIENCE", "")
	t.Setenv("WAVEZLY_GRANT_PRIVATE_KEY", "")
	if _, err := LoadGrantConfigFromEnv(nil); err == nil {
		t.Fatal("expected error for missing env")
	}
}

func TestLoadGrantConfigFromEnvIdentityDefaults(t *testing.T) {
	seed := make([]byte, ed25519.SeedSize)
	t.Setenv("WAVEZLY_GRANT_PRIVATE_KEY", base64Encode(seed))

	cfg, err := LoadGrantConfigFromEnv(nil)
	if err != nil {
		t.Fatalf("load grant config: %v", err)
	}
	if cfg.Issuer != "wavezly" || cfg.Audience != "wavezly-api" {
		t.Fatalf("config = %+v", cfg)
	}
}
