package digest

import (
	"testing"
	"time"

	apperrors "github.com/wavezly/wavezly/internal/platform/errors"
	"github.com/wavezly/wavezly/internal/task"
)

func TestParseDate(t *testing.T) {
	date, err := ParseDate(" 2026-08-27 ")
	if err != nil {
		t.Fatalf("parse date: %v", err)
	}
	if date != "2026-08-27" {
		t.Fatalf("date = %q", date)
	}

	for _, bad := range []string{"", "2026-8-27", "08/27/2026", "yesterday"} {
		if _, err := ParseDate(bad); apperrors.CodeOf(err) != apperrors.CodeDigestInvalidDate {
			t.Fatalf("ParseDate(%q): expected invalid date error, got %v", bad, err)
		}
	}
}

func TestCompose(t *testing.T) {
	now := time.Date(2026, 8, 27, 6, 0, 0, 0, time.UTC)
	tasks := []task.Task{
		{Title: "Renewal call", Status: task.StatusOpen, Priority: task.PriorityNormal, DueAt: now.Add(-30 * time.Hour)},
		{Title: "Claim escalation", Status: task.StatusInProgress, Priority: task.PriorityUrgent, DueAt: now.Add(-2 * time.Hour)},
		{Title: "Quote follow-up", Status: task.StatusOpen, Priority: task.PriorityNormal, DueAt: now.Add(10 * time.Hour)},
		{Title: "Done yesterday", Status: task.StatusDone, CompletedAt: now.Add(-20 * time.Hour)},
		{Title: "Done last week", Status: task.StatusDone, CompletedAt: now.Add(-6 * 24 * time.Hour)},
		{Title: "Archived", Status: task.StatusArchived, DueAt: now.Add(-time.Hour)},
	}

	d := Compose("digest-1", "agency-1", tasks, now)

	if d.Date != "2026-08-27" {
		t.Fatalf("date = %q", d.Date)
	}
	if d.OpenCount != 3 {
		t.Fatalf("open = %d", d.OpenCount)
	}
	if d.OverdueCount != 2 {
		t.Fatalf("overdue = %d", d.OverdueCount)
	}
	if d.DueTodayCount != 2 {
		t.Fatalf("due today = %d", d.DueTodayCount)
	}
	if d.CompletedYesterday != 1 {
		t.Fatalf("completed yesterday = %d", d.CompletedYesterday)
	}
	if len(d.OverdueTitles) != 2 || d.OverdueTitles[0] != "Claim escalation" {
		t.Fatalf("overdue titles = %v", d.OverdueTitles)
	}
}

func TestComposeCapsHighlights(t *testing.T) {
	now := time.Date(2026, 8, 27, 6, 0, 0, 0, time.UTC)
	var tasks []task.Task
	for i := 0; i < 8; i++ {
		tasks = append(tasks, task.Task{
			Title:    "Overdue",
			Status:   task.StatusOpen,
			Priority: task.PriorityNormal,
			DueAt:    now.Add(-time.Duration(i+25) * time.Hour),
		})
	}

	d := Compose("digest-1", "agency-1", tasks, now)
	if len(d.OverdueTitles) != maxHighlights {
		t.Fatalf("highlights = %d, want %d", len(d.OverdueTitles), maxHighlights)
	}
	if d.OverdueCount != 8 {
		t.Fatalf("overdue = %d", d.OverdueCount)
	}
}
