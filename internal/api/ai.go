package api

import (
	"net/http"

	"github.com/wavezly/wavezly/internal/ai"
)

type breakdownBody struct {
	Title string `json:"title"`
	Notes string `json:"notes"`
}

type breakdownResponse struct {
	Subtasks []ai.Subtask `json:"subtasks"`
}

// handleAIBreakdown splits a task into subtasks via the AI provider.
func (h *Handler) handleAIBreakdown(w http.ResponseWriter, r *http.Request) {
	var req breakdownBody
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	subtasks, err := ai.BreakDownTask(r.Context(), h.invoker, req.Title, req.Notes)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, breakdownResponse{Subtasks: subtasks})
}

type parseEmailBody struct {
	Subject string `json:"subject"`
	Body    string `json:"body"`
}

// handleAIParseEmail turns a client email into a task draft.
func (h *Handler) handleAIParseEmail(w http.ResponseWriter, r *http.Request) {
	var req parseEmailBody
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	draft, err := ai.ParseEmail(r.Context(), h.invoker, req.Subject, req.Body)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, draft)
}
