package bootstrap

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/wavezly/wavezly/internal/agency"
	"github.com/wavezly/wavezly/internal/auth"
	"github.com/wavezly/wavezly/internal/storage/sqlite"

	apperrors "github.com/wavezly/wavezly/internal/platform/errors"
)

func openTempStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "bootstrap.db"))
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() {
		if err := store.Close(); err != nil {
			t.Fatalf("close store: %v", err)
		}
	})
	return store
}

func TestRunCreatesAgencyAndOwner(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC)

	result, err := Run(ctx, store, Input{
		AgencyName:  "Harbor Insurance",
		Email:       "Taylor@Harbor.Test",
		DisplayName: "Taylor",
		PIN:         "1234",
	}, now)
	if err != nil {
		t.Fatalf("bootstrap: %v", err)
	}

	tenant, err := store.GetAgency(ctx, result.AgencyID)
	if err != nil {
		t.Fatalf("get agency: %v", err)
	}
	if tenant.Name != "Harbor Insurance" {
		t.Fatalf("agency name = %q", tenant.Name)
	}

	user, err := store.GetUserByEmail(ctx, "taylor@harbor.test")
	if err != nil {
		t.Fatalf("get user: %v", err)
	}
	if user.ID != result.UserID {
		t.Fatalf("user id = %q, want %q", user.ID, result.UserID)
	}
	if err := auth.VerifyPIN(user.PINHash, "1234"); err != nil {
		t.Fatalf("owner pin should verify: %v", err)
	}

	member, err := store.GetMemberByUser(ctx, result.UserID)
	if err != nil {
		t.Fatalf("get member: %v", err)
	}
	if member.AgencyID != result.AgencyID || member.Role != agency.RoleOwner {
		t.Fatalf("member = %+v", member)
	}
}

func TestRunRefusesExistingEmail(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC)

	input := Input{
		AgencyName:  "Harbor Insurance",
		Email:       "taylor@harbor.test",
		DisplayName: "Taylor",
		PIN:         "1234",
	}
	if _, err := Run(ctx, store, input, now); err != nil {
		t.Fatalf("first bootstrap: %v", err)
	}

	_, err := Run(ctx, store, input, now)
	if apperrors.CodeOf(err) != apperrors.CodeUserEmailTaken {
		t.Fatalf("second bootstrap err = %v", err)
	}
}

func TestRunValidatesInput(t *testing.T) {
	store := openTempStore(t)
	ctx := context.Background()
	now := time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC)

	if _, err := Run(ctx, store, Input{AgencyName: "Harbor", Email: "not-an-email", DisplayName: "T", PIN: "1234"}, now); err == nil {
		t.Fatal("expected error for bad email")
	}
	if _, err := Run(ctx, store, Input{AgencyName: "", Email: "a@b.test", DisplayName: "T", PIN: "1234"}, now); err == nil {
		t.Fatal("expected error for empty agency name")
	}
	if _, err := Run(ctx, store, Input{AgencyName: "Harbor", Email: "a@b.test", DisplayName: "T", PIN: "12"}, now); err == nil {
		t.Fatal("expected error for weak pin")
	}
}
