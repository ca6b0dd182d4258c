// Package task models agency work items and their lifecycle.
package task

import (
	"strings"
	"time"

	apperrors "github.com/wavezly/wavezly/internal/platform/errors"
)

// MaxTitleLength caps task titles so list views and digests stay readable.
const MaxTitleLength = 200

// Category classifies the insurance workflow a task belongs to.
type Category string

const (
	// CategoryFollowUp covers client follow-up calls and emails.
	CategoryFollowUp Category = "follow_up"
	// CategoryRenewal covers policy renewal work.
	CategoryRenewal Category = "renewal"
	// CategoryClaim covers claim handling.
	CategoryClaim Category = "claim"
	// CategoryQuote covers quoting new business.
	CategoryQuote Category = "quote"
	// CategoryAdmin covers internal agency administration.
	CategoryAdmin Category = "admin"
)

// Priority orders tasks within a due date.
type Priority string

const (
	// PriorityLow is deferrable work.
	PriorityLow Priority = "low"
	// PriorityNormal is the default priority.
	PriorityNormal Priority = "normal"
	// PriorityHigh is work that should happen today.
	PriorityHigh Priority = "high"
	// PriorityUrgent is work that blocks a client.
	PriorityUrgent Priority = "urgent"
)

// Status tracks the task lifecycle.
type Status string

const (
	// StatusOpen is the initial state.
	StatusOpen Status = "open"
	// StatusInProgress marks claimed work.
	StatusInProgress Status = "in_progress"
	// StatusDone marks completed work.
	StatusDone Status = "done"
	// StatusArchived removes a task from active views without deleting it.
	StatusArchived Status = "archived"
)

// Task is the domain model for a single agency work item.
type Task struct {
	ID          string
	AgencyID    string
	Title       string
	Notes       string
	AssigneeID  string
	ClientName  string
	Category    Category
	Priority    Priority
	Status      Status
	DueAt       time.Time // zero means no due date
	CompletedAt time.Time // zero unless Status is done
	TemplateID  string    // template the task was instantiated from, if any
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// CreateInput captures caller-provided fields for creating a task.
type CreateInput struct {
	AgencyID   string
	Title      string
	Notes      string
	AssigneeID string
	ClientName string
	Category   Category
	Priority   Priority
	DueAt      time.Time
	TemplateID string
}

// UpdateInput captures mutable fields for updating an existing task.
// Pointer fields distinguish "leave unchanged" from "set to zero value".
type UpdateInput struct {
	Title      *string
	Notes      *string
	AssigneeID *string
	ClientName *string
	Category   *Category
	Priority   *Priority
	Status     *Status
	DueAt      *time.Time
}

// ParseCategory canonicalizes a category value.
func ParseCategory(value string) (Category, error) {
	switch Category(strings.ToLower(strings.TrimSpace(value))) {
	case CategoryFollowUp:
		return CategoryFollowUp, nil
	case CategoryRenewal:
		return CategoryRenewal, nil
	case CategoryClaim:
		return CategoryClaim, nil
	case CategoryQuote:
		return CategoryQuote, nil
	case CategoryAdmin, "":
		return CategoryAdmin, nil
	}
	return "", apperrors.New(apperrors.CodeTaskInvalidCategory, "category is invalid")
}

// ParsePriority canonicalizes a priority value. Empty input defaults to normal.
func ParsePriority(value string) (Priority, error) {
	switch Priority(strings.ToLower(strings.TrimSpace(value))) {
	case PriorityLow:
		return PriorityLow, nil
	case PriorityNormal, "":
		return PriorityNormal, nil
	case PriorityHigh:
		return PriorityHigh, nil
	case PriorityUrgent:
		return PriorityUrgent, nil
	}
	return "", apperrors.New(apperrors.CodeTaskInvalidPriority, "priority is invalid")
}

// ParseStatus canonicalizes a status value.
func ParseStatus(value string) (Status, error) {
	switch Status(strings.ToLower(strings.TrimSpace(value))) {
	case StatusOpen:
		return StatusOpen, nil
	case StatusInProgress:
		return StatusInProgress, nil
	case StatusDone:
		return StatusDone, nil
	case StatusArchived:
		return StatusArchived, nil
	}
	return "", apperrors.New(apperrors.CodeTaskInvalidStatus, "status is invalid")
}

// Rank orders priorities for sorting, highest first.
func (p Priority) Rank() int {
	switch p {
	case PriorityUrgent:
		return 3
	case PriorityHigh:
		return 2
	case PriorityNormal:
		return 1
	default:
		return 0
	}
}

// NormalizeCreateInput validates and canonicalizes create input.
func NormalizeCreateInput(input CreateInput) (CreateInput, error) {
	input.AgencyID = strings.TrimSpace(input.AgencyID)
	if input.AgencyID == "" {
		return CreateInput{}, apperrors.New(apperrors.CodeTaskEmptyAgencyID, "agency id is required")
	}

	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return CreateInput{}, apperrors.New(apperrors.CodeTaskTitleEmpty, "title is required")
	}
	if len(input.Title) > MaxTitleLength {
		return CreateInput{}, apperrors.New(apperrors.CodeTaskTitleTooLong, "title is too long")
	}

	category, err := ParseCategory(string(input.Category))
	if err != nil {
		return CreateInput{}, err
	}
	input.Category = category

	priority, err := ParsePriority(string(input.Priority))
	if err != nil {
		return CreateInput{}, err
	}
	input.Priority = priority

	input.Notes = strings.TrimSpace(input.Notes)
	input.AssigneeID = strings.TrimSpace(input.AssigneeID)
	input.ClientName = strings.TrimSpace(input.ClientName)
	input.TemplateID = strings.TrimSpace(input.TemplateID)
	return input, nil
}

// New builds a task from normalized input.
func New(id string, input CreateInput, now time.Time) (Task, error) {
	normalized, err := NormalizeCreateInput(input)
	if err != nil {
		return Task{}, err
	}
	now = now.UTC()
	return Task{
		ID:         id,
		AgencyID:   normalized.AgencyID,
		Title:      normalized.Title,
		Notes:      normalized.Notes,
		AssigneeID: normalized.AssigneeID,
		ClientName: normalized.ClientName,
		Category:   normalized.Category,
		Priority:   normalized.Priority,
		Status:     StatusOpen,
		DueAt:      normalized.DueAt,
		TemplateID: normalized.TemplateID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

// ApplyUpdate mutates a copy of the task with the provided fields.
func ApplyUpdate(current Task, input UpdateInput, now time.Time) (Task, error) {
	updated := current

	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return Task{}, apperrors.New(apperrors.CodeTaskTitleEmpty, "title is required")
		}
		if len(title) > MaxTitleLength {
			return Task{}, apperrors.New(apperrors.CodeTaskTitleTooLong, "title is too long")
		}
		updated.Title = title
	}
	if input.Notes != nil {
		updated.Notes = strings.TrimSpace(*input.Notes)
	}
	if input.AssigneeID != nil {
		updated.AssigneeID = strings.TrimSpace(*input.AssigneeID)
	}
	if input.ClientName != nil {
		updated.ClientName = strings.TrimSpace(*input.ClientName)
	}
	if input.Category != nil {
		category, err := ParseCategory(string(*input.Category))
		if err != nil {
			return Task{}, err
		}
		updated.Category = category
	}
	if input.Priority != nil {
		priority, err := ParsePriority(string(*input.Priority))
		if err != nil {
			return Task{}, err
		}
		updated.Priority = priority
	}
	if input.Status != nil {
		status, err := ParseStatus(string(*input.Status))
		if err != nil {
			return Task{}, err
		}
		updated.Status = status
		if status == StatusDone && updated.CompletedAt.IsZero() {
			updated.CompletedAt = now.UTC()
		}
		if status != StatusDone {
			updated.CompletedAt = time.Time{}
		}
	}
	if input.DueAt != nil {
		updated.DueAt = *input.DueAt
	}

	updated.UpdatedAt = now.UTC()
	return updated, nil
}

// Complete marks the task done at the given time.
func Complete(current Task, now time.Time) Task {
	updated := current
	updated.Status = StatusDone
	updated.CompletedAt = now.UTC()
	updated.UpdatedAt = now.UTC()
	return updated
}

// Overdue reports whether the task is past due and still actionable.
func (t Task) Overdue(now time.Time) bool {
	if t.DueAt.IsZero() {
		return false
	}
	if t.Status == StatusDone || t.Status == StatusArchived {
		return false
	}
	return t.DueAt.Before(now)
}
