package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	apperrors "github.com/wavezly/wavezly/internal/platform/errors"
	"github.com/wavezly/wavezly/internal/task"
)

// TaskDraft is the structured result of parsing a client email.
type TaskDraft struct {
	Title      string        `json:"title"`
	Notes      string        `json:"notes,omitempty"`
	Category   task.Category `json:"category"`
	Priority   task.Priority `json:"priority"`
	DueDate    string        `json:"due_date,omitempty"` // YYYY-MM-DD
	ClientName string        `json:"client_name,omitempty"`
}

// emailPrompt instructs the model to extract task fields from an email.
const emailPrompt = `You are an assistant for an insurance agency task manager.
Extract a single actionable task from the email below.
Respond with only a JSON object with fields:
"title" (short imperative), "notes" (context worth keeping), "category"
(one of follow_up, renewal, claim, quote, admin), "priority" (one of low,
normal, high, urgent), "due_date" (YYYY-MM-DD or empty), "client_name".
No other text.

Subject: %s

%s`

// ParseEmail asks the provider to turn a client email into a task draft.
//
// Enum fields are re-validated after parsing; invalid values degrade to
// defaults rather than failing the request.
func ParseEmail(ctx context.Context, invoker Invoker, subject string, body string) (TaskDraft, error) {
	subject = strings.TrimSpace(subject)
	body = strings.TrimSpace(body)
	if subject == "" && body == "" {
		return TaskDraft{}, apperrors.New(apperrors.CodeAIInputEmpty, "subject or body is required")
	}
	if invoker == nil {
		return TaskDraft{}, apperrors.New(apperrors.CodeAIProviderUnavailable, "ai provider is not configured")
	}

	prompt := fmt.Sprintf(emailPrompt, subject, body)
	output, err := invoker.Invoke(ctx, prompt)
	if err != nil {
		return TaskDraft{}, apperrors.Wrap(apperrors.CodeAIProviderUnavailable, "invoke email parse", err)
	}

	draft, ok := parseTaskDraft(output)
	if !ok {
		return TaskDraft{}, apperrors.New(apperrors.CodeAIOutputUnusable, "email parse output is unusable")
	}
	if draft.Title == "" {
		// Fall back to the subject line when the model returns no title.
		draft.Title = subject
	}
	if draft.Title == "" {
		return TaskDraft{}, apperrors.New(apperrors.CodeAIOutputUnusable, "email parse produced no title")
	}
	return normalizeDraft(draft), nil
}

// parseTaskDraft extracts a draft object from model output.
func parseTaskDraft(output string) (TaskDraft, bool) {
	cleaned := stripCodeFence(output)

	var draft TaskDraft
	if err := json.Unmarshal([]byte(cleaned), &draft); err == nil {
		return draft, true
	}

	start := strings.Index(cleaned, "{")
	end := strings.LastIndex(cleaned, "}")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), &draft); err == nil {
			return draft, true
		}
	}
	return TaskDraft{}, false
}

// normalizeDraft trims fields and degrades invalid enums to defaults.
func normalizeDraft(draft TaskDraft) TaskDraft {
	draft.Title = strings.TrimSpace(draft.Title)
	draft.Notes = strings.TrimSpace(draft.Notes)
	draft.ClientName = strings.TrimSpace(draft.ClientName)

	category, err := task.ParseCategory(string(draft.Category))
	if err != nil {
		category = task.CategoryFollowUp
	}
	draft.Category = category

	priority, err := task.ParsePriority(string(draft.Priority))
	if err != nil {
		priority = task.PriorityNormal
	}
	draft.Priority = priority

	draft.DueDate = strings.TrimSpace(draft.DueDate)
	if draft.DueDate != "" {
		if _, err := time.Parse("2006-01-02", draft.DueDate); err != nil {
			draft.DueDate = ""
		}
	}
	return draft
}
