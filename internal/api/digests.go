package api

import (
	"net/http"
	"strconv"

	"github.com/wavezly/wavezly/internal/digest"
	"github.com/wavezly/wavezly/internal/platform/requestctx"
)

type digestResponse struct {
	Date               string   `json:"date"`
	OpenCount          int      `json:"open_count"`
	OverdueCount       int      `json:"overdue_count"`
	DueTodayCount      int      `json:"due_today_count"`
	CompletedYesterday int      `json:"completed_yesterday"`
	OverdueTitles      []string `json:"overdue_titles"`
	GeneratedAt        string   `json:"generated_at"`
}

func renderDigest(record digest.DailyDigest) digestResponse {
	titles := record.OverdueTitles
	if titles == nil {
		titles = []string{}
	}
	return digestResponse{
		Date:               record.Date,
		OpenCount:          record.OpenCount,
		OverdueCount:       record.OverdueCount,
		DueTodayCount:      record.DueTodayCount,
		CompletedYesterday: record.CompletedYesterday,
		OverdueTitles:      titles,
		GeneratedAt:        renderTime(record.GeneratedAt),
	}
}

// handleListDigests lists recent digests, newest first.
func (h *Handler) handleListDigests(w http.ResponseWriter, r *http.Request) {
	principal, _ := requestctx.PrincipalFromContext(r.Context())

	limit := 0
	if value := r.URL.Query().Get("limit"); value != "" {
		parsed, err := strconv.Atoi(value)
		if err != nil || parsed < 0 {
			writeBadRequest(w, "limit must be a non-negative integer")
			return
		}
		limit = parsed
	}

	records, err := h.store.ListDigests(r.Context(), principal.AgencyID, limit)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]digestResponse, 0, len(records))
	for _, record := range records {
		out = append(out, renderDigest(record))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleGetDigest fetches the digest for one date.
func (h *Handler) handleGetDigest(w http.ResponseWriter, r *http.Request) {
	principal, _ := requestctx.PrincipalFromContext(r.Context())
	record, err := h.store.GetDigest(r.Context(), principal.AgencyID, r.PathValue("date"))
	if err != nil {
		writeError(w, mapStoreErr(err))
		return
	}
	writeJSON(w, http.StatusOK, renderDigest(record))
}
