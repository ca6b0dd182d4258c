package api

import (
	"net"
	"net/http"
	"strconv"
	"strings"

	"github.com/wavezly/wavezly/internal/auth"
	apperrors "github.com/wavezly/wavezly/internal/platform/errors"
	"github.com/wavezly/wavezly/internal/platform/requestctx"
)

// requireSession resolves the session cookie into a request principal and,
// for mutating methods, verifies the CSRF signature before calling next.
func (h *Handler) requireSession(next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		cookie, err := r.Cookie(SessionCookieName)
		if err != nil || strings.TrimSpace(cookie.Value) == "" {
			writeError(w, apperrors.New(apperrors.CodeAuthSessionRequired, "session is required"))
			return
		}
		principal, ok := h.sessions.Get(cookie.Value, h.now())
		if !ok {
			writeError(w, apperrors.New(apperrors.CodeAuthSessionRequired, "session is expired"))
			return
		}

		if mutating(r.Method) {
			if !h.csrf.Verify(cookie.Value, r.Header.Get(CSRFHeaderName)) {
				writeError(w, apperrors.New(apperrors.CodeAuthCSRFInvalid, "csrf token is invalid"))
				return
			}
		}

		next(w, r.WithContext(requestctx.WithPrincipal(r.Context(), principal)))
	}
}

// rateLimit throttles by client IP within a route class. A nil limiter
// passes everything through.
func (h *Handler) rateLimit(limiter *auth.Limiter, class string, next http.HandlerFunc) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		key := class + ":" + clientIP(r)
		allowed, retryAfter := limiter.Allow(key, h.now())
		if !allowed {
			w.Header().Set("Retry-After", retryAfterHeader(retryAfter.Seconds()))
			writeError(w, apperrors.New(apperrors.CodeAuthRateLimited, "too many requests"))
			return
		}
		next(w, r)
	}
}

func mutating(method string) bool {
	switch method {
	case http.MethodGet, http.MethodHead, http.MethodOptions:
		return false
	}
	return true
}

// clientIP extracts the caller address, honoring the first forwarded hop.
func clientIP(r *http.Request) string {
	if forwarded := r.Header.Get("X-Forwarded-For"); forwarded != "" {
		if first, _, found := strings.Cut(forwarded, ","); found || first != "" {
			return strings.TrimSpace(first)
		}
	}
	host, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return host
}

// retryAfterHeader renders a Retry-After value in whole seconds, rounded up.
func retryAfterHeader(seconds float64) string {
	value := int(seconds)
	if float64(value) < seconds {
		value++
	}
	if value < 1 {
		value = 1
	}
	return strconv.Itoa(value)
}
