package auth

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"sync"
	"time"

	"github.com/wavezly/wavezly/internal/platform/requestctx"
)

// DefaultSessionTTL bounds how long a login stays valid without re-entry.
const DefaultSessionTTL = 12 * time.Hour

// session holds data for an authenticated API session.
type session struct {
	principal requestctx.Principal
	expiresAt time.Time
}

// SessionStore is a thread-safe in-memory session store.
//
// Sessions are deliberately not persisted: a restart logs agents out, and
// the store stays free of credential material.
type SessionStore struct {
	mu       sync.RWMutex
	sessions map[string]*session
	ttl      time.Duration
}

// NewSessionStore creates an empty session store.
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &SessionStore{
		sessions: make(map[string]*session),
		ttl:      ttl,
	}
}

// Create stores a new session and returns its ID.
func (s *SessionStore) Create(principal requestctx.Principal, now time.Time) string {
	id := randomHex(16)
	s.mu.Lock()
	s.sessions[id] = &session{
		principal: principal,
		expiresAt: now.UTC().Add(s.ttl),
	}
	s.mu.Unlock()
	return id
}

// Get returns the principal for a session ID, or false if missing or expired.
func (s *SessionStore) Get(id string, now time.Time) (requestctx.Principal, bool) {
	s.mu.RLock()
	sess, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return requestctx.Principal{}, false
	}
	if now.UTC().After(sess.expiresAt) {
		s.Delete(id)
		return requestctx.Principal{}, false
	}
	return sess.principal, true
}

// Delete removes a session by ID.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Sweep removes expired sessions and returns how many were dropped.
func (s *SessionStore) Sweep(now time.Time) int {
	now = now.UTC()
	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, sess := range s.sessions {
		if now.After(sess.expiresAt) {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}

// Run sweeps expired sessions on the given interval until the context ends.
func (s *SessionStore) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		interval = 10 * time.Minute
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case now := <-ticker.C:
			s.Sweep(now)
		}
	}
}

// randomHex returns a hex string of n random bytes.
func randomHex(n int) string {
	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand failing means the process cannot mint any secret.
		panic(err)
	}
	return hex.EncodeToString(buf)
}
