// Package template models reusable task blueprints.
//
// Templates capture recurring agency work (renewal reminders, claim
// follow-ups) so agents stamp out consistent tasks instead of retyping them.
package template

import (
	"strings"
	"time"

	apperrors "github.com/wavezly/wavezly/internal/platform/errors"
	"github.com/wavezly/wavezly/internal/task"
)

// MaxDueInDays caps the due-date offset a template may carry.
const MaxDueInDays = 365

// Template is the domain model for a task blueprint.
type Template struct {
	ID        string
	AgencyID  string
	Name      string
	Title     string
	Notes     string
	Category  task.Category
	Priority  task.Priority
	DueInDays int // 0 means instantiated tasks carry no due date
	CreatedAt time.Time
	UpdatedAt time.Time
}

// CreateInput captures caller-provided fields for creating a template.
type CreateInput struct {
	AgencyID  string
	Name      string
	Title     string
	Notes     string
	Category  task.Category
	Priority  task.Priority
	DueInDays int
}

// UpdateInput captures mutable fields for updating an existing template.
type UpdateInput struct {
	Name      *string
	Title     *string
	Notes     *string
	Category  *task.Category
	Priority  *task.Priority
	DueInDays *int
}

// NormalizeCreateInput validates and canonicalizes create input.
func NormalizeCreateInput(input CreateInput) (CreateInput, error) {
	input.AgencyID = strings.TrimSpace(input.AgencyID)
	if input.AgencyID == "" {
		return CreateInput{}, apperrors.New(apperrors.CodeTemplateEmptyAgencyID, "agency id is required")
	}

	input.Name = strings.TrimSpace(input.Name)
	if input.Name == "" {
		return CreateInput{}, apperrors.New(apperrors.CodeTemplateNameEmpty, "name is required")
	}

	input.Title = strings.TrimSpace(input.Title)
	if input.Title == "" {
		return CreateInput{}, apperrors.New(apperrors.CodeTemplateTitleEmpty, "title is required")
	}

	category, err := task.ParseCategory(string(input.Category))
	if err != nil {
		return CreateInput{}, err
	}
	input.Category = category

	priority, err := task.ParsePriority(string(input.Priority))
	if err != nil {
		return CreateInput{}, err
	}
	input.Priority = priority

	if input.DueInDays < 0 || input.DueInDays > MaxDueInDays {
		return CreateInput{}, apperrors.New(apperrors.CodeTemplateInvalidDueIn, "due-in days is out of range")
	}

	input.Notes = strings.TrimSpace(input.Notes)
	return input, nil
}

// New builds a template from normalized input.
func New(id string, input CreateInput, now time.Time) (Template, error) {
	normalized, err := NormalizeCreateInput(input)
	if err != nil {
		return Template{}, err
	}
	now = now.UTC()
	return Template{
		ID:        id,
		AgencyID:  normalized.AgencyID,
		Name:      normalized.Name,
		Title:     normalized.Title,
		Notes:     normalized.Notes,
		Category:  normalized.Category,
		Priority:  normalized.Priority,
		DueInDays: normalized.DueInDays,
		CreatedAt: now,
		UpdatedAt: now,
	}, nil
}

// ApplyUpdate mutates a copy of the template with the provided fields.
func ApplyUpdate(current Template, input UpdateInput, now time.Time) (Template, error) {
	updated := current

	if input.Name != nil {
		name := strings.TrimSpace(*input.Name)
		if name == "" {
			return Template{}, apperrors.New(apperrors.CodeTemplateNameEmpty, "name is required")
		}
		updated.Name = name
	}
	if input.Title != nil {
		title := strings.TrimSpace(*input.Title)
		if title == "" {
			return Template{}, apperrors.New(apperrors.CodeTemplateTitleEmpty, "title is required")
		}
		updated.Title = title
	}
	if input.Notes != nil {
		updated.Notes = strings.TrimSpace(*input.Notes)
	}
	if input.Category != nil {
		category, err := task.ParseCategory(string(*input.Category))
		if err != nil {
			return Template{}, err
		}
		updated.Category = category
	}
	if input.Priority != nil {
		priority, err := task.ParsePriority(string(*input.Priority))
		if err != nil {
			return Template{}, err
		}
		updated.Priority = priority
	}
	if input.DueInDays != nil {
		if *input.DueInDays < 0 || *input.DueInDays > MaxDueInDays {
			return Template{}, apperrors.New(apperrors.CodeTemplateInvalidDueIn, "due-in days is out of range")
		}
		updated.DueInDays = *input.DueInDays
	}

	updated.UpdatedAt = now.UTC()
	return updated, nil
}

// Instantiate produces the create input for a concrete task stamped from
// the template. The assignee defaults to the instantiating user.
func Instantiate(tpl Template, assigneeID string, clientName string, now time.Time) task.CreateInput {
	input := task.CreateInput{
		AgencyID:   tpl.AgencyID,
		Title:      tpl.Title,
		Notes:      tpl.Notes,
		AssigneeID: strings.TrimSpace(assigneeID),
		ClientName: strings.TrimSpace(clientName),
		Category:   tpl.Category,
		Priority:   tpl.Priority,
		TemplateID: tpl.ID,
	}
	if tpl.DueInDays > 0 {
		input.DueAt = now.UTC().AddDate(0, 0, tpl.DueInDays)
	}
	return input
}
