// Package api implements the HTTP JSON surface of the service.
package api

import (
	"net/http"
	"time"

	"github.com/wavezly/wavezly/internal/agency"
	"github.com/wavezly/wavezly/internal/ai"
	"github.com/wavezly/wavezly/internal/auth"
	"github.com/wavezly/wavezly/internal/storage"
)

// SessionCookieName is the session cookie set on login.
const SessionCookieName = "wz_session"

// CSRFHeaderName is the header mutating requests must carry.
const CSRFHeaderName = "X-Wavezly-CSRF"

// Config carries the dependencies the handler composes over.
type Config struct {
	Store    storage.Store
	Sessions *auth.SessionStore
	CSRF     *auth.CSRFSigner
	Invoker  ai.Invoker
	GrantCfg agency.GrantConfig
	ResetCfg auth.ResetConfig

	// LoginLimiter throttles failed logins and the reset and invitation
	// accept endpoints per client IP.
	LoginLimiter *auth.Limiter
	// AILimiter throttles provider-backed endpoints per client IP.
	AILimiter *auth.Limiter

	// ResetMail delivers the raw reset token out of band. The token is never
	// written to a response body.
	ResetMail func(email string, token string)

	// Now is overridable for tests.
	Now func() time.Time
}

// Handler serves the API routes.
type Handler struct {
	store        storage.Store
	sessions     *auth.SessionStore
	csrf         *auth.CSRFSigner
	invoker      ai.Invoker
	grantCfg     agency.GrantConfig
	resetCfg     auth.ResetConfig
	loginLimiter *auth.Limiter
	aiLimiter    *auth.Limiter
	resetMail    func(email string, token string)
	now          func() time.Time
}

// New builds the API handler.
func New(cfg Config) *Handler {
	now := cfg.Now
	if now == nil {
		now = time.Now
	}
	return &Handler{
		store:        cfg.Store,
		sessions:     cfg.Sessions,
		csrf:         cfg.CSRF,
		invoker:      cfg.Invoker,
		grantCfg:     cfg.GrantCfg,
		resetCfg:     cfg.ResetCfg,
		loginLimiter: cfg.LoginLimiter,
		aiLimiter:    cfg.AILimiter,
		resetMail:    cfg.ResetMail,
		now:          now,
	}
}

// Routes registers every API route on a fresh mux.
func (h *Handler) Routes() *http.ServeMux {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /healthz", h.handleHealthz)

	// Login throttles itself so only failed attempts count.
	mux.HandleFunc("POST /api/auth/login", h.handleLogin)
	mux.HandleFunc("POST /api/auth/logout", h.handleLogout)
	mux.HandleFunc("POST /api/auth/pin/reset-request", h.rateLimit(h.loginLimiter, "auth", h.handleResetRequest))
	mux.HandleFunc("POST /api/auth/pin/reset", h.rateLimit(h.loginLimiter, "auth", h.handleReset))
	mux.HandleFunc("GET /api/me", h.requireSession(h.handleMe))

	mux.HandleFunc("GET /api/tasks", h.requireSession(h.handleListTasks))
	mux.HandleFunc("POST /api/tasks", h.requireSession(h.handleCreateTask))
	mux.HandleFunc("GET /api/tasks/{id}", h.requireSession(h.handleGetTask))
	mux.HandleFunc("PATCH /api/tasks/{id}", h.requireSession(h.handleUpdateTask))
	mux.HandleFunc("DELETE /api/tasks/{id}", h.requireSession(h.handleDeleteTask))
	mux.HandleFunc("POST /api/tasks/{id}/complete", h.requireSession(h.handleCompleteTask))

	mux.HandleFunc("GET /api/templates", h.requireSession(h.handleListTemplates))
	mux.HandleFunc("POST /api/templates", h.requireSession(h.handleCreateTemplate))
	mux.HandleFunc("GET /api/templates/{id}", h.requireSession(h.handleGetTemplate))
	mux.HandleFunc("PATCH /api/templates/{id}", h.requireSession(h.handleUpdateTemplate))
	mux.HandleFunc("DELETE /api/templates/{id}", h.requireSession(h.handleDeleteTemplate))
	mux.HandleFunc("POST /api/templates/{id}/instantiate", h.requireSession(h.handleInstantiateTemplate))

	mux.HandleFunc("GET /api/activity", h.requireSession(h.handleListActivity))

	mux.HandleFunc("GET /api/agency", h.requireSession(h.handleGetAgency))
	mux.HandleFunc("GET /api/agency/members", h.requireSession(h.handleListMembers))
	mux.HandleFunc("POST /api/agency/invitations", h.requireSession(h.handleCreateInvitation))
	mux.HandleFunc("GET /api/agency/invitations", h.requireSession(h.handleListInvitations))
	mux.HandleFunc("POST /api/agency/invitations/{id}/revoke", h.requireSession(h.handleRevokeInvitation))
	mux.HandleFunc("POST /api/invitations/accept", h.rateLimit(h.loginLimiter, "auth", h.handleAcceptInvitation))

	mux.HandleFunc("POST /api/ai/breakdown", h.requireSession(h.rateLimit(h.aiLimiter, "ai", h.handleAIBreakdown)))
	mux.HandleFunc("POST /api/ai/parse-email", h.requireSession(h.rateLimit(h.aiLimiter, "ai", h.handleAIParseEmail)))

	mux.HandleFunc("GET /api/analytics/dashboard", h.requireSession(h.handleDashboard))
	mux.HandleFunc("POST /api/analytics/cashflow", h.requireSession(h.handleCashFlow))
	mux.HandleFunc("POST /api/analytics/strategy", h.requireSession(h.handleStrategy))

	mux.HandleFunc("GET /api/digests", h.requireSession(h.handleListDigests))
	mux.HandleFunc("GET /api/digests/{date}", h.requireSession(h.handleGetDigest))

	return mux
}

// handleHealthz reports liveness once the store answers.
func (h *Handler) handleHealthz(w http.ResponseWriter, r *http.Request) {
	if err := h.store.Ping(r.Context()); err != nil {
		http.Error(w, "store unavailable", http.StatusServiceUnavailable)
		return
	}
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write([]byte("ok"))
}
