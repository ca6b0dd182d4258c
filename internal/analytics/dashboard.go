// Package analytics computes agency-level reporting from task data.
package analytics

import (
	"time"

	"github.com/wavezly/wavezly/internal/task"
)

// completionWindow is the trailing period the completion rate covers.
const completionWindow = 30 * 24 * time.Hour

// Dashboard summarizes an agency's task load at a point in time.
type Dashboard struct {
	StatusCounts   map[task.Status]int   `json:"status_counts"`
	CategoryCounts map[task.Category]int `json:"category_counts"`
	Overdue        int                   `json:"overdue"`
	DueToday       int                   `json:"due_today"`
	// CompletionRate is the share of tasks created in the trailing
	// 30 days that are done, in [0, 1]. Zero when nothing was created.
	CompletionRate float64 `json:"completion_rate"`
}

// BuildDashboard folds an agency's tasks into dashboard counts.
func BuildDashboard(tasks []task.Task, now time.Time) Dashboard {
	now = now.UTC()
	dash := Dashboard{
		StatusCounts:   make(map[task.Status]int),
		CategoryCounts: make(map[task.Category]int),
	}

	windowStart := now.Add(-completionWindow)
	var createdInWindow, doneInWindow int

	for _, t := range tasks {
		dash.StatusCounts[t.Status]++
		if t.Status != task.StatusArchived {
			dash.CategoryCounts[t.Category]++
		}
		if t.Overdue(now) {
			dash.Overdue++
		}
		if dueToday(t, now) {
			dash.DueToday++
		}
		if !t.CreatedAt.Before(windowStart) {
			createdInWindow++
			if t.Status == task.StatusDone {
				doneInWindow++
			}
		}
	}

	if createdInWindow > 0 {
		dash.CompletionRate = float64(doneInWindow) / float64(createdInWindow)
	}
	return dash
}

// dueToday reports whether an actionable task is due on now's UTC date.
func dueToday(t task.Task, now time.Time) bool {
	if t.DueAt.IsZero() {
		return false
	}
	if t.Status == task.StatusDone || t.Status == task.StatusArchived {
		return false
	}
	y1, m1, d1 := t.DueAt.UTC().Date()
	y2, m2, d2 := now.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
