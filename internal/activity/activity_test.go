package activity

import (
	"testing"
	"time"

	apperrors "github.com/wavezly/wavezly/internal/platform/errors"
)

func TestNewEntry(t *testing.T) {
	now := time.Date(2026, 3, 14, 9, 0, 0, 0, time.UTC)
	entry, err := New("entry-1", "agency-1", "user-1", EntityTask, "task-1", ActionCreated, "created task", now)
	if err != nil {
		t.Fatalf("new entry: %v", err)
	}
	if entry.Action != ActionCreated || entry.Entity != EntityTask {
		t.Fatalf("entry = %+v", entry)
	}
	if !entry.CreatedAt.Equal(now) {
		t.Fatalf("created_at = %v", entry.CreatedAt)
	}
}

func TestNewEntryAllowsSystemActor(t *testing.T) {
	_, err := New("entry-2", "agency-1", "", EntityDigest, "digest-1", ActionDigested, "", time.Now())
	if err != nil {
		t.Fatalf("expected system entries without actor to be valid: %v", err)
	}
}

func TestNewEntryRejects(t *testing.T) {
	now := time.Now()
	if _, err := New("e", "", "u", EntityTask, "t", ActionCreated, "", now); apperrors.CodeOf(err) != apperrors.CodeActivityEmptyEntity {
		t.Fatalf("expected empty-entity error, got %v", err)
	}
	if _, err := New("e", "a", "u", EntityTask, "", ActionCreated, "", now); apperrors.CodeOf(err) != apperrors.CodeActivityEmptyEntity {
		t.Fatalf("expected empty-entity error, got %v", err)
	}
	if _, err := New("e", "a", "u", EntityTask, "t", "exploded", "", now); apperrors.CodeOf(err) != apperrors.CodeActivityInvalidAction {
		t.Fatalf("expected invalid-action error, got %v", err)
	}
}

func TestParseActionCanonicalizes(t *testing.T) {
	got, err := ParseAction("  Completed ")
	if err != nil {
		t.Fatalf("parse action: %v", err)
	}
	if got != ActionCompleted {
		t.Fatalf("action = %q", got)
	}
}
