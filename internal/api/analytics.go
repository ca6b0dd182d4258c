package api

import (
	"net/http"

	"github.com/wavezly/wavezly/internal/analytics"
	"github.com/wavezly/wavezly/internal/platform/requestctx"
	"github.com/wavezly/wavezly/internal/storage"
)

// handleDashboard computes the agency dashboard from current task data.
func (h *Handler) handleDashboard(w http.ResponseWriter, r *http.Request) {
	principal, _ := requestctx.PrincipalFromContext(r.Context())
	records, err := h.store.ListTasks(r.Context(), principal.AgencyID, storage.TaskFilter{})
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, analytics.BuildDashboard(records, h.now()))
}

// handleCashFlow runs the deterministic cash-flow projection.
func (h *Handler) handleCashFlow(w http.ResponseWriter, r *http.Request) {
	var input analytics.CashFlowInput
	if err := decodeJSON(r, &input); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	months, err := analytics.ProjectCashFlow(input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"months": months})
}

// handleStrategy computes funnel targets from agency assumptions.
func (h *Handler) handleStrategy(w http.ResponseWriter, r *http.Request) {
	var input analytics.StrategyInput
	if err := decodeJSON(r, &input); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}
	targets, err := analytics.ComputeStrategy(input)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, targets)
}
