package auth

import (
	"strings"
	"testing"
)

const testCSRFKey = "000102030405060708090a0b0c0d0e0f101112131415161718191a1b1c1d1e1f"

func TestCSRFTokenRoundTrip(t *testing.T) {
	signer, err := NewCSRFSigner(testCSRFKey)
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}

	token := signer.Token("session-1")
	if token == "" {
		t.Fatal("expected token")
	}
	if !signer.Verify("session-1", token) {
		t.Fatal("expected token to verify")
	}
	if !signer.Verify("session-1", "  "+token+" ") {
		t.Fatal("expected trimmed token to verify")
	}
	if signer.Verify("session-2", token) {
		t.Fatal("token must be bound to the session")
	}
	if signer.Verify("session-1", token[:len(token)-2]+"00") {
		t.Fatal("tampered token must fail")
	}
}

func TestCSRFTokensDifferPerSession(t *testing.T) {
	signer, err := NewCSRFSigner(testCSRFKey)
	if err != nil {
		t.Fatalf("new signer: %v", err)
	}
	if signer.Token("a") == signer.Token("b") {
		t.Fatal("tokens must differ per session")
	}
}

func TestNewCSRFSignerRejectsBadKeys(t *testing.T) {
	if _, err := NewCSRFSigner("zz"); err == nil {
		t.Fatal("expected error for non-hex key")
	}
	if _, err := NewCSRFSigner("abcd"); err == nil || !strings.Contains(err.Error(), "32 bytes") {
		t.Fatalf("expected length error, got %v", err)
	}
}

func TestLoadCSRFSignerFromEnv(t *testing.T) {
	t.Setenv("WAVEZLY_CSRF_HMAC_KEY", testCSRFKey)
	signer, err := LoadCSRFSignerFromEnv()
	if err != nil {
		t.Fatalf("load signer: %v", err)
	}
	if !signer.Verify("s", signer.Token("s")) {
		t.Fatal("expected loaded signer to verify its own token")
	}

	t.Setenv("WAVEZLY_CSRF_HMAC_KEY", "")
	if _, err := LoadCSRFSignerFromEnv(); err == nil {
		t.Fatal("expected error for missing key")
	}
}

func TestCSRFNilSigner(t *testing.T) {
	var signer *CSRFSigner
	if signer.Token("s") != "" {
		t.Fatal("nil signer token should be empty")
	}
	if signer.Verify("s", "x") {
		t.Fatal("nil signer must not verify")
	}
}
