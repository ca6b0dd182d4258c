package analytics

import (
	"testing"
	"time"

	"github.com/wavezly/wavezly/internal/task"
)

func TestBuildDashboardCounts(t *testing.T) {
	now := time.Date(2026, 8, 27, 15, 0, 0, 0, time.UTC)
	tasks := []task.Task{
		{Status: task.StatusOpen, Category: task.CategoryRenewal, DueAt: now.Add(-48 * time.Hour), CreatedAt: now.Add(-5 * 24 * time.Hour)},
		{Status: task.StatusOpen, Category: task.CategoryClaim, DueAt: now.Add(2 * time.Hour), CreatedAt: now.Add(-2 * 24 * time.Hour)},
		{Status: task.StatusInProgress, Category: task.CategoryQuote, CreatedAt: now.Add(-10 * 24 * time.Hour)},
		{Status: task.StatusDone, Category: task.CategoryRenewal, CompletedAt: now.Add(-24 * time.Hour), CreatedAt: now.Add(-3 * 24 * time.Hour)},
		{Status: task.StatusArchived, Category: task.CategoryAdmin, CreatedAt: now.Add(-60 * 24 * time.Hour)},
	}

	dash := BuildDashboard(tasks, now)

	if dash.StatusCounts[task.StatusOpen] != 2 || dash.StatusCounts[task.StatusDone] != 1 {
		t.Fatalf("status counts = %v", dash.StatusCounts)
	}
	if dash.Overdue != 1 {
		t.Fatalf("overdue = %d", dash.Overdue)
	}
	if dash.DueToday != 1 {
		t.Fatalf("due today = %d", dash.DueToday)
	}
	if dash.CategoryCounts[task.CategoryRenewal] != 2 {
		t.Fatalf("category counts = %v", dash.CategoryCounts)
	}
	if dash.CategoryCounts[task.CategoryAdmin] != 0 {
		t.Fatalf("archived tasks must not count toward categories: %v", dash.CategoryCounts)
	}
	// 4 tasks created in the trailing 30 days, 1 done.
	if dash.CompletionRate != 0.25 {
		t.Fatalf("completion rate = %v", dash.CompletionRate)
	}
}

func TestBuildDashboardEmpty(t *testing.T) {
	dash := BuildDashboard(nil, time.Now())
	if dash.CompletionRate != 0 || dash.Overdue != 0 || dash.DueToday != 0 {
		t.Fatalf("dashboard = %+v", dash)
	}
}

func TestDueTodayIgnoresFinishedTasks(t *testing.T) {
	now := time.Date(2026, 8, 27, 9, 0, 0, 0, time.UTC)
	done := task.Task{Status: task.StatusDone, DueAt: now.Add(time.Hour), CreatedAt: now}
	dash := BuildDashboard([]task.Task{done}, now)
	if dash.DueToday != 0 {
		t.Fatalf("done task counted as due today")
	}
}
