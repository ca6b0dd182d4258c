package api

import (
	"errors"
	"net/http"

	"github.com/wavezly/wavezly/internal/activity"
	"github.com/wavezly/wavezly/internal/agency"
	"github.com/wavezly/wavezly/internal/auth"
	apperrors "github.com/wavezly/wavezly/internal/platform/errors"
	"github.com/wavezly/wavezly/internal/platform/id"
	"github.com/wavezly/wavezly/internal/platform/requestctx"
	"github.com/wavezly/wavezly/internal/storage"
)

type agencyResponse struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	CreatedAt string `json:"created_at"`
}

type memberResponse struct {
	UserID      string `json:"user_id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
	Role        string `json:"role"`
	JoinedAt    string `json:"joined_at"`
}

type invitationResponse struct {
	ID        string `json:"id"`
	Email     string `json:"email"`
	Role      string `json:"role"`
	Status    string `json:"status"`
	ExpiresAt string `json:"expires_at"`
	CreatedAt string `json:"created_at"`
	Grant     string `json:"grant,omitempty"`
}

func renderInvitation(record agency.Invitation, grant string) invitationResponse {
	return invitationResponse{
		ID:        record.ID,
		Email:     record.Email,
		Role:      string(record.Role),
		Status:    string(record.Status),
		ExpiresAt: renderTime(record.ExpiresAt),
		CreatedAt: renderTime(record.CreatedAt),
		Grant:     grant,
	}
}

// handleGetAgency returns the caller's agency.
func (h *Handler) handleGetAgency(w http.ResponseWriter, r *http.Request) {
	principal, _ := requestctx.PrincipalFromContext(r.Context())
	record, err := h.store.GetAgency(r.Context(), principal.AgencyID)
	if err != nil {
		writeError(w, mapStoreErr(err))
		return
	}
	writeJSON(w, http.StatusOK, agencyResponse{
		ID:        record.ID,
		Name:      record.Name,
		CreatedAt: renderTime(record.CreatedAt),
	})
}

// handleListMembers lists the agency roster with display names.
func (h *Handler) handleListMembers(w http.ResponseWriter, r *http.Request) {
	principal, _ := requestctx.PrincipalFromContext(r.Context())
	members, err := h.store.ListMembers(r.Context(), principal.AgencyID)
	if err != nil {
		writeError(w, err)
		return
	}

	out := make([]memberResponse, 0, len(members))
	for _, member := range members {
		user, err := h.store.GetUser(r.Context(), member.UserID)
		if err != nil {
			writeError(w, mapStoreErr(err))
			return
		}
		out = append(out, memberResponse{
			UserID:      member.UserID,
			Email:       user.Email,
			DisplayName: user.DisplayName,
			Role:        string(member.Role),
			JoinedAt:    renderTime(member.CreatedAt),
		})
	}
	writeJSON(w, http.StatusOK, out)
}

type invitationBody struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

// handleCreateInvitation issues an invitation plus its signed grant.
// Admins and owners only.
func (h *Handler) handleCreateInvitation(w http.ResponseWriter, r *http.Request) {
	principal, _ := requestctx.PrincipalFromContext(r.Context())
	if !canManage(principal) {
		writeError(w, apperrors.New(apperrors.CodeAuthForbidden, "managing invitations requires an admin role"))
		return
	}

	var req invitationBody
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	inviteID, err := id.NewID()
	if err != nil {
		writeError(w, err)
		return
	}
	invite, err := agency.NewInvitation(inviteID, principal.AgencyID, req.Email, agency.Role(req.Role), h.now(), 0)
	if err != nil {
		writeError(w, err)
		return
	}
	grant, err := agency.SignGrant(invite, h.grantCfg)
	if err != nil {
		writeError(w, err)
		return
	}

	if err := h.store.PutInvitation(r.Context(), invite); err != nil {
		writeError(w, err)
		return
	}
	h.recordActivity(r.Context(), principal, activity.EntityInvitation, invite.ID, activity.ActionInvited, invite.Email)
	writeJSON(w, http.StatusCreated, renderInvitation(invite, grant))
}

// handleListInvitations lists the agency's invitations. Admins and owners only.
func (h *Handler) handleListInvitations(w http.ResponseWriter, r *http.Request) {
	principal, _ := requestctx.PrincipalFromContext(r.Context())
	if !canManage(principal) {
		writeError(w, apperrors.New(apperrors.CodeAuthForbidden, "managing invitations requires an admin role"))
		return
	}

	records, err := h.store.ListInvitations(r.Context(), principal.AgencyID)
	if err != nil {
		writeError(w, err)
		return
	}
	out := make([]invitationResponse, 0, len(records))
	for _, record := range records {
		// Grants are surfaced only at creation time.
		out = append(out, renderInvitation(record, ""))
	}
	writeJSON(w, http.StatusOK, out)
}

// handleRevokeInvitation withdraws a pending invitation.
func (h *Handler) handleRevokeInvitation(w http.ResponseWriter, r *http.Request) {
	principal, _ := requestctx.PrincipalFromContext(r.Context())
	if !canManage(principal) {
		writeError(w, apperrors.New(apperrors.CodeAuthForbidden, "managing invitations requires an admin role"))
		return
	}

	invite, err := h.store.GetInvitation(r.Context(), principal.AgencyID, r.PathValue("id"))
	if err != nil {
		writeError(w, mapStoreErr(err))
		return
	}
	if invite.Status != agency.InviteStatusPending {
		writeError(w, apperrors.New(apperrors.CodeInviteNotPending, "invitation is not pending"))
		return
	}

	invite.Status = agency.InviteStatusRevoked
	invite.UpdatedAt = h.nowUTC()
	if err := h.store.PutInvitation(r.Context(), invite); err != nil {
		writeError(w, err)
		return
	}
	h.recordActivity(r.Context(), principal, activity.EntityInvitation, invite.ID, activity.ActionUpdated, "revoked")
	writeJSON(w, http.StatusOK, renderInvitation(invite, ""))
}

type acceptBody struct {
	Grant       string `json:"grant"`
	DisplayName string `json:"display_name"`
	PIN         string `json:"pin"`
}

type acceptResponse struct {
	UserID   string `json:"user_id"`
	AgencyID string `json:"agency_id"`
	Role     string `json:"role"`
}

// handleAcceptInvitation redeems a grant, creating the user and membership.
// Public: the grant itself is the credential.
func (h *Handler) handleAcceptInvitation(w http.ResponseWriter, r *http.Request) {
	var req acceptBody
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	// Decode claims first to locate the invitation row, then validate the
	// grant against that row so every expected field is pinned.
	claims, err := agency.ParseGrantClaims(req.Grant, h.grantCfg)
	if err != nil {
		writeError(w, err)
		return
	}
	invite, err := h.store.GetInvitation(r.Context(), claims.AgencyID, claims.InviteID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, apperrors.New(apperrors.CodeInviteGrantInvalid, "invite grant does not match an invitation"))
			return
		}
		writeError(w, err)
		return
	}
	if _, err := agency.ValidateGrant(req.Grant, agency.GrantExpectation{
		AgencyID: invite.AgencyID,
		InviteID: invite.ID,
		Email:    invite.Email,
	}, h.grantCfg); err != nil {
		writeError(w, err)
		return
	}
	now := h.now()
	if err := invite.Acceptable(now); err != nil {
		writeError(w, err)
		return
	}

	userID, err := id.NewID()
	if err != nil {
		writeError(w, err)
		return
	}
	user, err := auth.NewUser(userID, invite.Email, req.DisplayName, req.PIN, now)
	if err != nil {
		writeError(w, err)
		return
	}
	if err := h.store.PutUser(r.Context(), user); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			writeError(w, apperrors.New(apperrors.CodeUserEmailTaken, "email is already registered"))
			return
		}
		writeError(w, err)
		return
	}

	member := agency.Member{
		AgencyID:  invite.AgencyID,
		UserID:    user.ID,
		Role:      invite.Role,
		CreatedAt: now.UTC(),
	}
	if err := h.store.PutMember(r.Context(), member); err != nil {
		if errors.Is(err, storage.ErrConflict) {
			writeError(w, apperrors.New(apperrors.CodeMemberAlreadyExists, "user already belongs to an agency"))
			return
		}
		writeError(w, err)
		return
	}

	invite.Status = agency.InviteStatusAccepted
	invite.UpdatedAt = now.UTC()
	if err := h.store.PutInvitation(r.Context(), invite); err != nil {
		writeError(w, err)
		return
	}
	h.recordActivity(r.Context(), requestctx.Principal{UserID: user.ID, AgencyID: invite.AgencyID, Role: string(invite.Role)},
		activity.EntityInvitation, invite.ID, activity.ActionAccepted, invite.Email)

	writeJSON(w, http.StatusCreated, acceptResponse{
		UserID:   user.ID,
		AgencyID: invite.AgencyID,
		Role:     string(invite.Role),
	})
}
