package api

import (
	"net/http"

	"github.com/wavezly/wavezly/internal/activity"
	"github.com/wavezly/wavezly/internal/platform/id"
	"github.com/wavezly/wavezly/internal/platform/requestctx"
	"github.com/wavezly/wavezly/internal/task"
	"github.com/wavezly/wavezly/internal/template"
)

type templateBody struct {
	Name      string `json:"name"`
	Title     string `json:"title"`
	Notes     string `json:"notes"`
	Category  string `json:"category"`
	Priority  string `json:"priority"`
	DueInDays int    `json:"due_in_days"`
}

type templatePatchBody struct {
	Name      *string `json:"name"`
	Title     *string `json:"title"`
	Notes     *string `json:"notes"`
	Category  *string `json:"category"`
	Priority  *string `json:"priority"`
	DueInDays *int    `json:"due_in_days"`
}

type templateResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	Title     string `json:"title"`
	Notes     string `json:"notes,omitempty"`
	Category  string `json:"category"`
	Priority  string `json:"priority"`
	DueInDays int    `json:"due_in_days"`
	CreatedAt string `json:"created_at"`
	UpdatedAt string `json:"updated_at"`
}

func renderTemplate(record template.Template) templateResponse {
	return templateResponse{
		ID:        record.ID,
		Name:      record.Name,
		Title:     record.Title,
		Notes:     record.Notes,
		Category:  string(record.Category),
		Priority:  string(record.Priority),
		DueInDays: record.DueInDays,
		CreatedAt: renderTime(record.CreatedAt),
		UpdatedAt: renderTime(record.UpdatedAt),
	}
}

// handleListTemplates lists the agency's templates.
func (h *Handler) handleListTemplates(w http.ResponseWriter, r *http.Request) {
	principal, _ := requestctx.PrincipalFromContext(r.Context())
	records, err := h.store.ListTemplates(r.Context(), principal.AgencyID)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]templateResponse, 0, len(records))
	for _, record := range records {
		out = append(out, renderTemplate(record))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleCreateTemplate creates a template in the caller's agency.
func (h *Handler) handleCreateTemplate(w http.ResponseWriter, r *http.Request) {
	principal, _ := requestctx.PrincipalFromContext(r.Context())
	var req templateBody
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	templateID, err := id.NewID()
	if err != nil {
		writeError(w, err)
		return
	}
	record, err := template.New(templateID, template.CreateInput{
		AgencyID:  principal.AgencyID,
		Name:      req.Name,
		Title:     req.Title,
		Notes:     req.Notes,
		Category:  task.Category(req.Category),
		Priority:  task.Priority(req.Priority),
		DueInDays: req.DueInDays,
	}, h.now())
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.store.PutTemplate(r.Context(), record); err != nil {
		writeError(w, err)
		return
	}
	h.recordActivity(r.Context(), principal, activity.EntityTemplate, record.ID, activity.ActionCreated, record.Name)
	writeJSON(w, http.StatusCreated, renderTemplate(record))
}

// handleGetTemplate fetches one template.
func (h *Handler) handleGetTemplate(w http.ResponseWriter, r *http.Request) {
	principal, _ := requestctx.PrincipalFromContext(r.Context())
	record, err := h.store.GetTemplate(r.Context(), principal.AgencyID, r.PathValue("id"))
	if err != nil {
		writeError(w, mapStoreErr(err))
		return
	}
	writeJSON(w, http.StatusOK, renderTemplate(record))
}

// handleUpdateTemplate applies a partial update.
func (h *Handler) handleUpdateTemplate(w http.ResponseWriter, r *http.Request) {
	principal, _ := requestctx.PrincipalFromContext(r.Context())
	var req templatePatchBody
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	current, err := h.store.GetTemplate(r.Context(), principal.AgencyID, r.PathValue("id"))
	if err != nil {
		writeError(w, mapStoreErr(err))
		return
	}

	input := template.UpdateInput{
		Name:      req.Name,
		Title:     req.Title,
		Notes:     req.Notes,
		DueInDays: req.DueInDays,
	}
	if req.Category != nil {
		category := task.Category(*req.Category)
		input.Category = &category
	}
	if req.Priority != nil {
		priority := task.Priority(*req.Priority)
		input.Priority = &priority
	}

	updated, err := template.ApplyUpdate(current, input, h.now())
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.store.PutTemplate(r.Context(), updated); err != nil {
		writeError(w, err)
		return
	}
	h.recordActivity(r.Context(), principal, activity.EntityTemplate, updated.ID, activity.ActionUpdated, updated.Name)
	writeJSON(w, http.StatusOK, renderTemplate(updated))
}

// handleDeleteTemplate removes a template.
func (h *Handler) handleDeleteTemplate(w http.ResponseWriter, r *http.Request) {
	principal, _ := requestctx.PrincipalFromContext(r.Context())
	templateID := r.PathValue("id")

	current, err := h.store.GetTemplate(r.Context(), principal.AgencyID, templateID)
	if err != nil {
		writeError(w, mapStoreErr(err))
		return
	}
	if err := h.store.DeleteTemplate(r.Context(), principal.AgencyID, templateID); err != nil {
		writeError(w, mapStoreErr(err))
		return
	}
	h.recordActivity(r.Context(), principal, activity.EntityTemplate, templateID, activity.ActionDeleted, current.Name)
	w.WriteHeader(http.StatusNoContent)
}

type instantiateBody struct {
	AssigneeID string `json:"assignee_id"`
	ClientName string `json:"client_name"`
}

// handleInstantiateTemplate stamps a concrete task from a template. The
// assignee defaults to the caller.
func (h *Handler) handleInstantiateTemplate(w http.ResponseWriter, r *http.Request) {
	principal, _ := requestctx.PrincipalFromContext(r.Context())
	var req instantiateBody
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	tpl, err := h.store.GetTemplate(r.Context(), principal.AgencyID, r.PathValue("id"))
	if err != nil {
		writeError(w, mapStoreErr(err))
		return
	}

	assignee := req.AssigneeID
	if assignee == "" {
		assignee = principal.UserID
	}

	taskID, err := id.NewID()
	if err != nil {
		writeError(w, err)
		return
	}
	record, err := task.New(taskID, template.Instantiate(tpl, assignee, req.ClientName, h.now()), h.now())
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
