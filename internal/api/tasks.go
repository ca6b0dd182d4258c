package api

import (
	"context"
	"log"
	"net/http"
	"time"

	"github.com/wavezly/wavezly/internal/activity"
	"github.com/wavezly/wavezly/internal/platform/id"
	"github.com/wavezly/wavezly/internal/platform/requestctx"
	"github.com/wavezly/wavezly/internal/storage"
	"github.com/wavezly/wavezly/internal/task"
)

type taskBody struct {
	Title      string `json:"title"`
	Notes      string `json:"notes"`
	AssigneeID string `json:"assignee_id"`
	ClientName string `json:"client_name"`
	Category   string `json:"category"`
	Priority   string `json:"priority"`
	DueAt      string `json:"due_at"` // RFC 3339, empty clears
}

type taskPatchBody struct {
	Title      *string `json:"title"`
	Notes      *string `json:"notes"`
	AssigneeID *string `json:"assignee_id"`
	ClientName *string `json:"client_name"`
	Category   *string `json:"category"`
	Priority   *string `json:"priority"`
	Status     *string `json:"status"`
	DueAt      *string `json:"due_at"`
}

type taskResponse struct {
	ID          string `json:"id"`
	Title       string `json:"title"`
	Notes       string `json:"notes,omitempty"`
	AssigneeID  string `json:"assignee_id,omitempty"`
	ClientName  string `json:"client_name,omitempty"`
	Category    string `json:"category"`
	Priority    string `json:"priority"`
	Status      string `json:"status"`
	DueAt       string `json:"due_at,omitempty"`
	CompletedAt string `json:"completed_at,omitempty"`
	TemplateID  string `json:"template_id,omitempty"`
	CreatedAt   string `json:"created_at"`
	UpdatedAt   string `json:"updated_at"`
}

func renderTask(record task.Task) taskResponse {
	return taskResponse{
		ID:          record.ID,
		Title:       record.Title,
		Notes:       record.Notes,
		AssigneeID:  record.AssigneeID,
		ClientName:  record.ClientName,
		Category:    string(record.Category),
		Priority:    string(record.Priority),
		Status:      string(record.Status),
		DueAt:       renderTime(record.DueAt),
		CompletedAt: renderTime(record.CompletedAt),
		TemplateID:  record.TemplateID,
		CreatedAt:   renderTime(record.CreatedAt),
		UpdatedAt:   renderTime(record.UpdatedAt),
	}
}

func renderTaskList(records []task.Task) []taskResponse {
	out := make([]taskResponse, 0, len(records))
	for _, record := range records {
		out = append(out, renderTask(record))
	}
	return out
}

func renderTime(value time.Time) string {
	if value.IsZero() {
		return ""
	}
	return value.UTC().Format(time.RFC3339)
}

func parseTime(value string) (time.Time, error) {
	if value == "" {
		return time.Time{}, nil
	}
	return time.Parse(time.RFC3339, value)
}

// handleListTasks lists the agency's tasks with optional filters.
func (h *Handler) handleListTasks(w http.ResponseWriter, r *http.Request) {
	principal, _ := requestctx.PrincipalFromContext(r.Context())
	query := r.URL.Query()

	filter := storage.TaskFilter{
		AssigneeID: query.Get("assignee"),
		Query:      query.Get("q"),
	}
	if value := query.Get("status"); value != "" {
		status, err := task.ParseStatus(value)
		if err != nil {
			writeError(w, err)
			return
		}
		filter.Status = status
	}
	if value := query.Get("category"); value != "" {
		category, err := task.ParseCategory(value)
		if err != nil {
			writeError(w, err)
			return
		}
		filter.Category = category
	}
	if value := query.Get("due_before"); value != "" {
		dueBefore, err := parseTime(value)
		if err != nil {
			writeBadRequest(w, "due_before must be RFC 3339")
			return
		}
		filter.DueBefore = &dueBefore
	}
	if query.Get("overdue") == "true" {
		now := h.nowUTC()
		filter.OverdueAt = &now
	}

	records, err := h.store.ListTasks(r.Context(), principal.AgencyID, filter)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, renderTaskList(records))
}

// handleCreateTask creates a task in the caller's agency.
func (h *Handler) handleCreateTask(w http.ResponseWriter, r *http.Request) {
	principal, _ := requestctx.PrincipalFromContext(r.Context())
	var req taskBody
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	dueAt, err := parseTime(req.DueAt)
	if err != nil {
		writeBadRequest(w, "due_at must be RFC 3339")
		return
	}

	taskID, err := id.NewID()
	if err != nil {
		writeError(w, err)
		return
	}
	record, err := task.New(taskID, task.CreateInput{
		AgencyID:   principal.AgencyID,
		Title:      req.Title,
		Notes:      req.Notes,
		AssigneeID: req.AssigneeID,
		ClientName: req.ClientName,
		Category:   task.Category(req.Category),
		Priority:   task.Priority(req.Priority),
		DueAt:      dueAt,
	}, h.now())
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.store.PutTask(r.Context(), record); err != nil {
		writeError(w, err)
		return
	}
	h.recordActivity(r.Context(), principal, activity.EntityTask, record.ID, activity.ActionCreated, record.Title)
	writeJSON(w, http.StatusCreated, renderTask(record))
}

// handleGetTask fetches one task. Cross-agency IDs read as not found.
func (h *Handler) handleGetTask(w http.ResponseWriter, r *http.Request) {
	principal, _ := requestctx.PrincipalFromContext(r.Context())
	record, err := h.store.GetTask(r.Context(), principal.AgencyID, r.PathValue("id"))
	if err != nil {
		writeError(w, mapStoreErr(err))
		return
	}
	writeJSON(w, http.StatusOK, renderTask(record))
}

// handleUpdateTask applies a partial update.
func (h *Handler) handleUpdateTask(w http.ResponseWriter, r *http.Request) {
	principal, _ := requestctx.PrincipalFromContext(r.Context())
	var req taskPatchBody
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	current, err := h.store.GetTask(r.Context(), principal.AgencyID, r.PathValue("id"))
	if err != nil {
		writeError(w, mapStoreErr(err))
		return
	}

	input := task.UpdateInput{
		Title:      req.Title,
		Notes:      req.Notes,
		AssigneeID: req.AssigneeID,
		ClientName: req.ClientName,
	}
	if req.Category != nil {
		category := task.Category(*req.Category)
		input.Category = &category
	}
	if req.Priority != nil {
		priority := task.Priority(*req.Priority)
		input.Priority = &priority
	}
	if req.Status != nil {
		status := task.Status(*req.Status)
		input.Status = &status
	}
	if req.DueAt != nil {
		dueAt, parseErr := parseTime(*req.DueAt)
		if parseErr != nil {
			writeBadRequest(w, "due_at must be RFC 3339")
			return
		}
		input.DueAt = &dueAt
	}

	updated, err := task.ApplyUpdate(current, input, h.now())
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.store.PutTask(r.Context(), updated); err != nil {
		writeError(w, err)
		return
	}

	action := activity.ActionUpdated
	if current.Status != task.StatusDone && updated.Status == task.StatusDone {
		action = activity.ActionCompleted
	}
	h.recordActivity(r.Context(), principal, activity.EntityTask, updated.ID, action, updated.Title)
	writeJSON(w, http.StatusOK, renderTask(updated))
}

// handleDeleteTask removes a task.
func (h *Handler) handleDeleteTask(w http.ResponseWriter, r *http.Request) {
	principal, _ := requestctx.PrincipalFromContext(r.Context())
	taskID := r.PathValue("id")

	current, err := h.store.GetTask(r.Context(), principal.AgencyID, taskID)
	if err != nil {
		writeError(w, mapStoreErr(err))
		return
	}
	if err := h.store.DeleteTask(r.Context(), principal.AgencyID, taskID); err != nil {
		writeError(w, mapStoreErr(err))
		return
	}
	h.recordActivity(r.Context(), principal, activity.EntityTask, taskID, activity.ActionDeleted, current.Title)
	w.WriteHeader(http.StatusNoContent)
}

// handleCompleteTask marks a task done.
func (h *Handler) handleCompleteTask(w http.ResponseWriter, r *http.Request) {
	principal, _ := requestctx.PrincipalFromContext(r.Context())
	current, err := h.store.GetTask(r.Context(), principal.AgencyID, r.PathValue("id"))
	if err != nil {
		writeError(w, mapStoreErr(err))
		return
	}

	updated := task.Complete(current, h.now())
	if err := h.store.PutTask(r.Context(), updated); err != nil {
		writeError(w, err)
		return
	}
	h.recordActivity(r.Context(), principal, activity.EntityTask, updated.ID, activity.ActionCompleted, updated.Title)
	writeJSON(w, http.StatusOK, renderTask(updated))
}

// recordActivity appends an audit entry. Failures are logged, not surfaced:
// the primary mutation already committed.
func (h *Handler) recordActivity(ctx context.Context, principal requestctx.Principal, entity activity.EntityKind, entityID string, action activity.Action, detail string) {
	entryID, err := id.NewID()
	if err != nil {
		log.Printf("api: generate activity id: %v", err)
		return
	}
	entry, err := activity.New(entryID, principal.AgencyID, principal.UserID, entity, entityID, action, detail, h.now())
	if err != nil {
		log.Printf("api: build activity entry: %v", err)
		return
	}
	if err := h.store.AppendActivity(ctx, entry); err != nil {
		log.Printf("api: append activity: %v", err)
	}
}
