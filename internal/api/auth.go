package api

import (
	"errors"
	"log"
	"net/http"
	"time"

	"github.com/wavezly/wavezly/internal/agency"
	"github.com/wavezly/wavezly/internal/auth"
	apperrors "github.com/wavezly/wavezly/internal/platform/errors"
	"github.com/wavezly/wavezly/internal/platform/requestctx"
	"github.com/wavezly/wavezly/internal/storage"
)

type loginRequest struct {
	Email string `json:"email"`
	PIN   string `json:"pin"`
}

type viewerResponse struct {
	User      viewerUser   `json:"user"`
	Agency    viewerAgency `json:"agency"`
	Role      string       `json:"role"`
	CSRFToken string       `json:"csrf_token"`
}

type viewerUser struct {
	ID          string `json:"id"`
	Email       string `json:"email"`
	DisplayName string `json:"display_name"`
}

type viewerAgency struct {
	ID   string `json:"id"`
	Name string `json:"name"`
}

// handleLogin exchanges email plus PIN for a session cookie. Only failed
// credential checks count against the per-IP limiter; successful logins
// never trip it.
func (h *Handler) handleLogin(w http.ResponseWriter, r *http.Request) {
	limiterKey := "login:" + clientIP(r)
	if blocked, retryAfter := h.loginLimiter.Blocked(limiterKey, h.now()); blocked {
		w.Header().Set("Retry-After", retryAfterHeader(retryAfter.Seconds()))
		writeError(w, apperrors.New(apperrors.CodeAuthRateLimited, "too many failed login attempts"))
		return
	}

	var req loginRequest
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	email, err := auth.NormalizeEmail(req.Email)
	if err != nil {
		// Do not reveal whether the account exists.
		h.loginLimiter.Record(limiterKey, h.now())
		writeError(w, apperrors.New(apperrors.CodeAuthInvalidCredentials, "email or pin is incorrect"))
		return
	}

	user, err := h.store.GetUserByEmail(r.Context(), email)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			h.loginLimiter.Record(limiterKey, h.now())
			writeError(w, apperrors.New(apperrors.CodeAuthInvalidCredentials, "email or pin is incorrect"))
			return
		}
		writeError(w, err)
		return
	}
	if err := auth.VerifyPIN(user.PINHash, req.PIN); err != nil {
		h.loginLimiter.Record(limiterKey, h.now())
		writeError(w, err)
		return
	}

	member, err := h.store.GetMemberByUser(r.Context(), user.ID)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, apperrors.New(apperrors.CodeAuthForbidden, "user has no agency membership"))
			return
		}
		writeError(w, err)
		return
	}

	principal := requestctx.Principal{
		UserID:   user.ID,
		AgencyID: member.AgencyID,
		Role:     string(member.Role),
	}
	sessionID := h.sessions.Create(principal, h.now())
	h.setSessionCookie(w, r, sessionID)

	viewer, err := h.buildViewer(r, principal, sessionID)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewer)
}

// handleLogout drops the session. It succeeds whether or not one exists.
func (h *Handler) handleLogout(w http.ResponseWriter, r *http.Request) {
	if cookie, err := r.Cookie(SessionCookieName); err == nil && cookie.Value != "" {
		h.sessions.Delete(cookie.Value)
	}
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		Path:     "/",
		MaxAge:   -1,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
	w.WriteHeader(http.StatusNoContent)
}

type resetRequestBody struct {
	Email string `json:"email"`
}

// handleResetRequest starts a PIN reset. The response never reveals whether
// the account exists; the raw token travels through the mail hook only.
func (h *Handler) handleResetRequest(w http.ResponseWriter, r *http.Request) {
	var req resetRequestBody
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	email, err := auth.NormalizeEmail(req.Email)
	if err == nil {
		if user, lookupErr := h.store.GetUserByEmail(r.Context(), email); lookupErr == nil {
			raw, digest, tokenErr := auth.NewResetToken()
			if tokenErr != nil {
				writeError(w, tokenErr)
				return
			}
			request := auth.NewResetRequest(user.ID, digest, h.now(), h.resetCfg.TTL)
			if putErr := h.store.PutResetRequest(r.Context(), request); putErr != nil {
				writeError(w, putErr)
				return
			}
			if h.resetMail != nil {
				h.resetMail(user.Email, raw)
			} else {
				log.Printf("api: pin reset requested for user %s with no mail hook configured", user.ID)
			}
		}
	}

	w.WriteHeader(http.StatusAccepted)
}

type resetBody struct {
	Token  string `json:"token"`
	NewPIN string `json:"new_pin"`
}

// handleReset consumes a reset token and re-hashes the PIN.
func (h *Handler) handleReset(w http.ResponseWriter, r *http.Request) {
	var req resetBody
	if err := decodeJSON(r, &req); err != nil {
		writeBadRequest(w, "invalid request body")
		return
	}

	now := h.now()
	request, err := h.store.GetResetRequestByDigest(r.Context(), auth.HashResetToken(req.Token))
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			writeError(w, apperrors.New(apperrors.CodeAuthResetTokenInvalid, "reset token is invalid"))
			return
		}
		writeError(w, err)
		return
	}
	if err := auth.VerifyResetToken(request, req.Token, now); err != nil {
		writeError(w, err)
		return
	}

	pinHash, err := auth.HashPIN(req.NewPIN)
	if err != nil {
		writeError(w, err)
		return
	}

	user, err := h.store.GetUser(r.Context(), request.UserID)
	if err != nil {
		writeError(w, mapStoreErr(err))
		return
	}
	user.PINHash = pinHash
	user.UpdatedAt = now.UTC()
	if err := h.store.PutUser(r.Context(), user); err != nil {
		writeError(w, err)
		return
	}

	// Tokens are single use.
	if err := h.store.DeleteResetRequest(r.Context(), request.TokenDigest); err != nil {
		log.Printf("api: delete consumed reset token: %v", err)
	}
	w.WriteHeader(http.StatusNoContent)
}

// handleMe returns the viewer with a fresh CSRF token.
func (h *Handler) handleMe(w http.ResponseWriter, r *http.Request) {
	principal, ok := requestctx.PrincipalFromContext(r.Context())
	if !ok {
		writeError(w, apperrors.New(apperrors.CodeAuthSessionRequired, "session is required"))
		return
	}
	cookie, _ := r.Cookie(SessionCookieName)

	viewer, err := h.buildViewer(r, principal, cookie.Value)
	if err != nil {
		writeError(w, err)
		return
	}
	writeJSON(w, http.StatusOK, viewer)
}

func (h *Handler) buildViewer(r *http.Request, principal requestctx.Principal, sessionID string) (viewerResponse, error) {
	user, err := h.store.GetUser(r.Context(), principal.UserID)
	if err != nil {
		return viewerResponse{}, mapStoreErr(err)
	}
	tenant, err := h.store.GetAgency(r.Context(), principal.AgencyID)
	if err != nil {
		return viewerResponse{}, mapStoreErr(err)
	}
	return viewerResponse{
		User:      viewerUser{ID: user.ID, Email: user.Email, DisplayName: user.DisplayName},
		Agency:    viewerAgency{ID: tenant.ID, Name: tenant.Name},
		Role:      principal.Role,
		CSRFToken: h.csrf.Token(sessionID),
	}, nil
}

func (h *Handler) setSessionCookie(w http.ResponseWriter, r *http.Request, sessionID string) {
	http.SetCookie(w, &http.Cookie{
		Name:     SessionCookieName,
		Value:    sessionID,
		Path:     "/",
		Expires:  h.now().Add(auth.DefaultSessionTTL),
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
		Secure:   r.TLS != nil,
	})
}

// canManage reports whether the principal may administer the agency.
func canManage(principal requestctx.Principal) bool {
	return agency.Role(principal.Role).CanManage()
}

// nowUTC is a small helper for handlers stamping updates.
func (h *Handler) nowUTC() time.Time {
	return h.now().UTC()
}
