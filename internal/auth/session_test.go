package auth

import (
	"testing"
	"time"

	"github.com/wavezly/wavezly/internal/platform/requestctx"
)

func TestSessionStoreRoundTrip(t *testing.T) {
	now := testNow()
	store := NewSessionStore(time.Hour)
	principal := requestctx.Principal{UserID: "user-1", AgencyID: "agency-1", Role: "agent"}

	id := store.Create(principal, now)
	if id == "" {
		t.Fatal("expected session id")
	}

	got, ok := store.Get(id, now.Add(30*time.Minute))
	if !ok {
		t.Fatal("expected session")
	}
	if got != principal {
		t.Fatalf("principal = %+v", got)
	}
}

func TestSessionStoreExpiry(t *testing.T) {
	now := testNow()
	store := NewSessionStore(time.Hour)
	id := store.Create(requestctx.Principal{UserID: "user-1"}, now)

	if _, ok := store.Get(id, now.Add(2*time.Hour)); ok {
		t.Fatal("expected expired session to be gone")
	}
	// Expired lookups remove the entry.
	if _, ok := store.Get(id, now); ok {
		t.Fatal("expected session removed after expired lookup")
	}
}

func TestSessionStoreDelete(t *testing.T) {
	now := testNow()
	store := NewSessionStore(time.Hour)
	id := store.Create(requestctx.Principal{UserID: "user-1"}, now)
	store.Delete(id)
	if _, ok := store.Get(id, now); ok {
		t.Fatal("expected deleted session to be gone")
	}
}

func TestSessionStoreSweep(t *testing.T) {
	now := testNow()
	store := NewSessionStore(time.Hour)
	store.Create(requestctx.Principal{UserID: "user-1"}, now)
	store.Create(requestctx.Principal{UserID: "user-2"}, now.Add(2*time.Hour))

	removed := store.Sweep(now.Add(90 * time.Minute))
	if removed != 1 {
		t.Fatalf("removed = %d, want 1", removed)
	}
}

func TestSessionIDsUnique(t *testing.T) {
	now := testNow()
	store := NewSessionStore(time.Hour)
	seen := make(map[string]bool)
	for i := 0; i < 32; i++ {
		id := store.Create(requestctx.Principal{UserID: "user-1"}, now)
		if seen[id] {
			t.Fatalf("duplicate session id %q", id)
		}
		seen[id] = true
	}
}
