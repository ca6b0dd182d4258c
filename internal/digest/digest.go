// Package digest composes the daily agency summary.
package digest

import (
	"sort"
	"strings"
	"time"

	apperrors "github.com/wavezly/wavezly/internal/platform/errors"
	"github.com/wavezly/wavezly/internal/task"
)

// DateFormat is the digest's calendar date layout.
const DateFormat = "2006-01-02"

// maxHighlights caps how many overdue titles a digest carries.
const maxHighlights = 5

// DailyDigest is one agency's summary for a single UTC date. At most one
// digest exists per (agency, date).
type DailyDigest struct {
	ID                 string
	AgencyID           string
	Date               string // YYYY-MM-DD, UTC
	OpenCount          int
	OverdueCount       int
	DueTodayCount      int
	CompletedYesterday int
	// OverdueTitles lists the most pressing overdue tasks, ordered by
	// priority then due date.
	OverdueTitles []string
	GeneratedAt   time.Time
}

// ParseDate validates a digest date string.
func ParseDate(value string) (string, error) {
	value = strings.TrimSpace(value)
	parsed, err := time.Parse(DateFormat, value)
	if err != nil {
		return "", apperrors.New(apperrors.CodeDigestInvalidDate, "date must be YYYY-MM-DD")
	}
	return parsed.Format(DateFormat), nil
}

// Compose folds an agency's tasks into the digest for now's UTC date.
func Compose(id string, agencyID string, tasks []task.Task, now time.Time) DailyDigest {
	now = now.UTC()
	dayStart := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, time.UTC)
	dayEnd := dayStart.Add(24 * time.Hour)
	yesterdayStart := dayStart.Add(-24 * time.Hour)

	d := DailyDigest{
		ID:          id,
		AgencyID:    agencyID,
		Date:        dayStart.Format(DateFormat),
		GeneratedAt: now,
	}

	var overdue []task.Task
	for _, t := range tasks {
		switch t.Status {
		case task.StatusOpen, task.StatusInProgress:
			d.OpenCount++
		case task.StatusDone:
			if !t.CompletedAt.Before(yesterdayStart) && t.CompletedAt.Before(dayStart) {
				d.CompletedYesterday++
			}
		}
		if t.Overdue(now) {
			d.OverdueCount++
			overdue = append(overdue, t)
		}
		if dueWithin(t, dayStart, dayEnd) {
			d.DueTodayCount++
		}
	}

	sort.SliceStable(overdue, func(i, j int) bool {
		if overdue[i].Priority.Rank() != overdue[j].Priority.Rank() {
			return overdue[i].Priority.Rank() > overdue[j].Priority.Rank()
		}
		return overdue[i].DueAt.Before(overdue[j].DueAt)
	})
	for _, t := range overdue {
		if len(d.OverdueTitles) == maxHighlights {
			break
		}
		d.OverdueTitles = append(d.OverdueTitles, t.Title)
	}
	return d
}

// dueWithin reports whether an actionable task is due in [start, end).
func dueWithin(t task.Task, start, end time.Time) bool {
	if t.DueAt.IsZero() {
		return false
	}
	if t.Status == task.StatusDone || t.Status == task.StatusArchived {
		return false
	}
	due := t.DueAt.UTC()
	return !due.Before(start) && due.Before(end)
}
