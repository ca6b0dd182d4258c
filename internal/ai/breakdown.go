package ai

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	apperrors "github.com/wavezly/wavezly/internal/platform/errors"
)

// maxSubtasks caps how many steps a breakdown returns.
const maxSubtasks = 10

// Subtask is one ordered step produced by a task breakdown.
type Subtask struct {
	Title string `json:"title"`
	Notes string `json:"notes,omitempty"`
}

// breakdownPrompt instructs the model to answer with a bare JSON array so
// the strict parser can consume it without stripping prose.
const breakdownPrompt = `You are an assistant for an insurance agency task manager.
Break the following task into at most %d concrete subtasks an agent can act on.
Respond with only a JSON array of objects with "title" and optional "notes" fields, no other text.

Task: %s
Details: %s`

// BreakDownTask asks the provider to split a task into ordered subtasks.
//
// Model output is parsed strictly as JSON first; when the model wraps the
// array in prose or fencing, a line-based fallback keeps the endpoint usable.
func BreakDownTask(ctx context.Context, invoker Invoker, title string, notes string) ([]Subtask, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return nil, apperrors.New(apperrors.CodeAIInputEmpty, "title is required")
	}
	if invoker == nil {
		return nil, apperrors.New(apperrors.CodeAIProviderUnavailable, "ai provider is not configured")
	}

	prompt := fmt.Sprintf(breakdownPrompt, maxSubtasks, title, strings.TrimSpace(notes))
	output, err := invoker.Invoke(ctx, prompt)
	if err != nil {
		return nil, apperrors.Wrap(apperrors.CodeAIProviderUnavailable, "invoke breakdown", err)
	}

	subtasks := parseSubtasks(output)
	if len(subtasks) == 0 {
		return nil, apperrors.New(apperrors.CodeAIOutputUnusable, "breakdown output is unusable")
	}
	if len(subtasks) > maxSubtasks {
		subtasks = subtasks[:maxSubtasks]
	}
	return subtasks, nil
}

// parseSubtasks extracts subtasks from model output.
func parseSubtasks(output string) []Subtask {
	cleaned := stripCodeFence(output)

	var parsed []Subtask
	if err := json.Unmarshal([]byte(cleaned), &parsed); err == nil {
		return trimSubtasks(parsed)
	}

	// Some models wrap the array in prose; retry on the bracketed slice.
	start := strings.Index(cleaned, "[")
	end := strings.LastIndex(cleaned, "]")
	if start >= 0 && end > start {
		if err := json.Unmarshal([]byte(cleaned[start:end+1]), &parsed); err == nil {
			return trimSubtasks(parsed)
		}
	}

	return subtasksFromLines(cleaned)
}

// trimSubtasks drops entries without titles and trims whitespace.
func trimSubtasks(subtasks []Subtask) []Subtask {
	result := make([]Subtask, 0, len(subtasks))
	for _, sub := range subtasks {
		sub.Title = strings.TrimSpace(sub.Title)
		sub.Notes = strings.TrimSpace(sub.Notes)
		if sub.Title == "" {
			continue
		}
		result = append(result, sub)
	}
	return result
}

// subtasksFromLines treats each non-empty output line as a subtask title,
// stripping common list markers.
func subtasksFromLines(output string) []Subtask {
	var result []Subtask
	for _, line := range strings.Split(output, "\n") {
		line = strings.TrimSpace(line)
		line = strings.TrimLeft(line, "-*0123456789.) ")
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		result = append(result, Subtask{Title: line})
	}
	return result
}

// stripCodeFence removes a surrounding markdown code fence when present.
func stripCodeFence(output string) string {
	trimmed := strings.TrimSpace(output)
	if !strings.HasPrefix(trimmed, "```") {
		return trimmed
	}
	trimmed = strings.TrimPrefix(trimmed, "```")
	if idx := strings.Index(trimmed, "\n"); idx >= 0 {
		trimmed = trimmed[idx+1:]
	}
	trimmed = strings.TrimSuffix(strings.TrimSpace(trimmed), "```")
	return strings.TrimSpace(trimmed)
}
