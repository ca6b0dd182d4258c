package sqlite

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/wavezly/wavezly/internal/activity"
	"github.com/wavezly/wavezly/internal/digest"
	"github.com/wavezly/wavezly/internal/storage"
)

func TestUpsertDigestOnePerDay(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 8, 27, 6, 0, 0, 0, time.UTC)
	seedAgency(t, store, "agency-1", now)

	first := digest.DailyDigest{
		ID:            "digest-1",
		AgencyID:      "agency-1",
		Date:          "2026-08-27",
		OpenCount:     4,
		OverdueCount:  1,
		OverdueTitles: []string{"Renewal call"},
		GeneratedAt:   now,
	}
	if err := store.UpsertDigest(context.Background(), first); err != nil {
		t.Fatalf("upsert digest: %v", err)
	}

	// Regenerating the same day replaces counts instead of adding a row.
	second := first
	second.ID = "digest-2"
	second.OpenCount = 6
	second.OverdueTitles = []string{"Renewal call", "Claim escalation"}
	second.GeneratedAt = now.Add(time.Hour)
	if err := store.UpsertDigest(context.Background(), second); err != nil {
		t.Fatalf("upsert digest again: %v", err)
	}

	got, err := store.GetDigest(context.Background(), "agency-1", "2026-08-27")
	if err != nil {
		t.Fatalf("get digest: %v", err)
	}
	if got.OpenCount != 6 {
		t.Fatalf("open count = %d", got.OpenCount)
	}
	if len(got.OverdueTitles) != 2 {
		t.Fatalf("overdue titles = %v", got.OverdueTitles)
	}

	listed, err := store.ListDigests(context.Background(), "agency-1", 0)
	if err != nil {
		t.Fatalf("list digests: %v", err)
	}
	if len(listed) != 1 {
		t.Fatalf("digests = %d", len(listed))
	}

	if _, err := store.GetDigest(context.Background(), "agency-1", "2026-08-26"); !errors.Is(err, storage.ErrNotFound) {
		t.Fatalf("missing date: expected not found, got %v", err)
	}
	if _, err := store.GetDigest(context.Background(), "agency-1", "not-a-date"); err == nil {
		t.Fatal("expected invalid date error")
	}
}

func TestListDigestsNewestFirst(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 8, 27, 6, 0, 0, 0, time.UTC)
	seedAgency(t, store, "agency-1", now)

	for i, date := range []string{"2026-08-25", "2026-08-27", "2026-08-26"} {
		record := digest.DailyDigest{
			ID:          "digest-" + date,
			AgencyID:    "agency-1",
			Date:        date,
			OpenCount:   i,
			GeneratedAt: now,
		}
		if err := store.UpsertDigest(context.Background(), record); err != nil {
			t.Fatalf("upsert %s: %v", date, err)
		}
	}

	listed, err := store.ListDigests(context.Background(), "agency-1", 2)
	if err != nil {
		t.Fatalf("list digests: %v", err)
	}
	if len(listed) != 2 {
		t.Fatalf("digests = %d", len(listed))
	}
	if listed[0].Date != "2026-08-27" || listed[1].Date != "2026-08-26" {
		t.Fatalf("order = %s, %s", listed[0].Date, listed[1].Date)
	}
}

func TestAppendAndListActivity(t *testing.T) {
	t.Parallel()

	store := openTempStore(t)
	now := time.Date(2026, 8, 27, 12, 0, 0, 0, time.UTC)
	seedAgency(t, store, "agency-1", now)

	entries := []activity.Entry{
		{ID: "act-1", AgencyID: "agency-1", ActorID: "user-1", Entity: activity.EntityTask, EntityID: "task-1", Action: activity.ActionCreated, CreatedAt: now},
		{ID: "act-2", AgencyID: "agency-1", ActorID: "user-1", Entity: activity.EntityTask, EntityID: "task-1", Action: activity.ActionCompleted, CreatedAt: now.Add(time.Minute)},
		{ID: "act-3", AgencyID: "agency-1", Entity: activity.EntityDigest, EntityID: "digest-1", Action: activity.ActionDigested, CreatedAt: now.Add(2 * time.Minute)},
	}
	for _, entry := range entries {
		if err := store.AppendActivity(context.Background(), entry); err != nil {
			t.Fatalf("append activity %s: %v", entry.ID, err)
		}
	}

	all, err := store.ListActivity(context.Background(), "agency-1", storage.ActivityFilter{})
	if err != nil {
		t.Fatalf("list activity: %v", err)
	}
	if len(all) != 3 {
		t.Fatalf("entries = %d", len(all))
	}
	if all[0].ID != "act-3" {
		t.Fatalf("newest first: got %s", all[0].ID)
	}
	if all[0].ActorID != "" {
		t.Fatalf("system entry actor = %q", all[0].ActorID)
	}

	tasksOnly, err := store.ListActivity(context.Background(), "agency-1", storage.ActivityFilter{Entity: activity.EntityTask, EntityID: "task-1"})
	if err != nil {
		t.Fatalf("list task activity: %v", err)
	}
	if len(tasksOnly) != 2 {
		t.Fatalf("task entries = %d", len(tasksOnly))
	}

	limited, err := store.ListActivity(context.Background(), "agency-1", storage.ActivityFilter{Limit: 1})
	if err != nil {
		t.Fatalf("list limited: %v", err)
	}
	if len(limited) != 1 {
		t.Fatalf("limited entries = %d", len(limited))
	}
}
