package api

import (
	"net/http"
	"strconv"

	"github.com/wavezly/wavezly/internal/activity"
	"github.com/wavezly/wavezly/internal/platform/requestctx"
	"github.com/wavezly/wavezly/internal/storage"
)

type activityResponse struct {
	ID        string `json:"id"`
	ActorID   string `json:"actor_id,omitempty"`
	Entity    string `json:"entity"`
	EntityID  string `json:"entity_id"`
	Action    string `json:"action"`
	Detail    string `json:"detail,omitempty"`
	CreatedAt string `json:"created_at"`
}

// handleListActivity lists the agency's audit trail, newest first.
func (h *Handler) handleListActivity(w http.ResponseWriter, r *http.Request) {
	principal, _ := requestctx.PrincipalFromContext(r.Context())
	query := r.URL.Query()

	filter := storage.ActivityFilter{
		Entity:   activity.EntityKind(query.Get("entity")),
		EntityID: query.Get("entity_id"),
	}
	if value := query.Get("limit"); value != "" {
		limit, err := strconv.Atoi(value)
		if err != nil || limit < 0 {
			writeBadRequest(w, "limit must be a non-negative integer")
			return
		}
		filter.Limit = limit
	}

	records, err := h.store.ListActivity(r.Context(), principal.AgencyID, filter)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]activityResponse, 0, len(records))
	for _, record := range records {
		out = append(out, activityResponse{
			ID:        record.ID,
			ActorID:   record.ActorID,
			Entity:    string(record.Entity),
			EntityID:  record.EntityID,
			Action:    string(record.Action),
			Detail:    record.Detail,
			CreatedAt: renderTime(record.CreatedAt),
		})
	}
	writeJSON(w, http.StatusOK, out)
}
