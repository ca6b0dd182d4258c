package worker

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/wavezly/wavezly/internal/agency"
	"github.com/wavezly/wavezly/internal/storage"
	"github.com/wavezly/wavezly/internal/storage/sqlite"
	"github.com/wavezly/wavezly/internal/task"
)

func openTempStore(t *testing.T) *sqlite.Store {
	t.Helper()
	store, err := sqlite.Open(filepath.Join(t.TempDir(), "worker.db"))
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

func seedAgencyWithTasks(t *testing.T, store *sqlite.Store, agencyID string, now time.Time) {
	t.Helper()
	ctx := context.Background()

	tenant, err := agency.New(agencyID, "Agency "+agencyID, now)
	if err != nil {
		t.Fatalf("new agency: %v", err)
	}
	if err := store.PutAgency(ctx, tenant); err != nil {
		t.Fatalf("put agency: %v", err)
	}

	overdue, err := task.New(agencyID+"-task-1", task.CreateInput{
		AgencyID: agencyID,
		Title:    "Chase the renewal",
		DueAt:    now.Add(-48 * time.Hour),
	}, now.Add(-72*time.Hour))
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	open, err := task.New(agencyID+"-task-2", task.CreateInput{
		AgencyID: agencyID,
		Title:    "Quote the farm",
	}, now)
	if err != nil {
		t.Fatalf("new task: %v", err)
	}
	for _, record := range []task.Task{overdue, open} {
		if err := store.PutTask(ctx, record); err != nil {
			t.Fatalf("put task: %v", err)
		}
	}
}

func TestRunOnceGeneratesOneDigestPerAgency(t *testing.T) {
	store := openTempStore(t)
	now := time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC)

	seedAgencyWithTasks(t, store, "agency-a", now)
	seedAgencyWithTasks(t, store, "agency-b", now)

	w := New(store, Options{PollInterval: time.Minute, LookbackDays: 1})
	w.now = func() time.Time { return now }

	generated, err := w.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("run once: %v", err)
	}
	if generated != 2 {
		t.Fatalf("generated = %d, want 2", generated)
	}

	record, err := store.GetDigest(context.Background(), "agency-a", "2026-08-27")
	if err != nil {
		t.Fatalf("get digest: %v", err)
	}
	if record.OpenCount != 2 || record.OverdueCount != 1 {
		t.Fatalf("digest = %+v", record)
	}
	if len(record.OverdueTitles) != 1 || record.OverdueTitles[0] != "Chase the renewal" {
		t.Fatalf("overdue titles = %v", record.OverdueTitles)
	}

	// The audit trail records the generation with no actor.
	entries, err := store.ListActivity(context.Background(), "agency-a", storage.ActivityFilter{})
	if err != nil {
		t.Fatalf("list activity: %v", err)
	}
	if len(entries) != 1 || entries[0].ActorID != "" || string(entries[0].Action) != "digested" {
		t.Fatalf("activity = %+v", entries)
	}
}

func TestRunOnceIsIdempotentPerDay(t *testing.T) {
	store := openTempStore(t)
	now := time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC)
	seedAgencyWithTasks(t, store, "agency-a", now)

	w := New(store, Options{PollInterval: time.Minute, LookbackDays: 1})
	w.now = func() time.Time { return now }

	if generated, err := w.RunOnce(context.Background()); err != nil || generated != 1 {
		t.Fatalf("first run = %d, %v", generated, err)
	}
	if generated, err := w.RunOnce(context.Background()); err != nil || generated != 0 {
		t.Fatalf("second run = %d, %v", generated, err)
	}

	// A new day produces a fresh digest.
	w.now = func() time.Time { return now.Add(24 * time.Hour) }
	if generated, err := w.RunOnce(context.Background()); err != nil || generated != 1 {
		t.Fatalf("next day run = %d, %v", generated, err)
	}
}

func TestRunOnceBackfillsLookbackWindow(t *testing.T) {
	store := openTempStore(t)
	now := time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC)
	seedAgencyWithTasks(t, store, "agency-a", now.Add(-48*time.Hour))

	// A worker down across midnight still writes the missed days.
	w := New(store, Options{PollInterval: time.Minute, LookbackDays: 3})
	w.now = func() time.Time { return now }

	generated, err := w.RunOnce(context.Background())
	if err != nil {
		t.Fatalf("run once: %v", err)
	}
	if generated != 3 {
		t.Fatalf("generated = %d, want 3", generated)
	}
	for _, date := range []string{"2026-08-25", "2026-08-26", "2026-08-27"} {
		if _, err := store.GetDigest(context.Background(), "agency-a", date); err != nil {
			t.Fatalf("get digest for %s: %v", date, err)
		}
	}

	// Backfilled days are not rewritten on the next pass.
	if generated, err := w.RunOnce(context.Background()); err != nil || generated != 0 {
		t.Fatalf("second run = %d, %v", generated, err)
	}
}

func TestRunStopsOnContext(t *testing.T) {
	store := openTempStore(t)
	w := New(store, Options{PollInterval: 10 * time.Millisecond})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() {
		done <- w.Run(ctx)
	}()
	cancel()

	select {
	case err := <-done:
		if err != nil {
			t.Fatalf("run returned error: %v", err)
		}
	case <-time.After(time.Second):
		t.Fatal("worker did not stop on cancel")
	}
}
