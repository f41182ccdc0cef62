// Package session tracks the single authoritative access context per account.
//
// The guard holds one canonical token per account. Starting a new session
// overwrites the previous token, so any operation still carrying the old one
// fails its access check — this is how concurrent access from a second
// terminal is detected without locking read paths.
package session

import (
	"sync"
	"time"

	"github.com/google/uuid"
)

type entry struct {
	token    uuid.UUID
	lastSeen time.Time
}

// Guard is the session registry. A zero TTL disables inactivity expiry.
type Guard struct {
	mu       sync.Mutex
	sessions map[uuid.UUID]entry
	ttl      time.Duration
	now      func() time.Time
}

// NewGuard creates a Guard with the given inactivity TTL.
func NewGuard(ttl time.Duration) *Guard {
	return &Guard{
		sessions: make(map[uuid.UUID]entry),
		ttl:      ttl,
		now:      time.Now,
	}
}

// StartSession issues a fresh token for the account, invalidating any prior
// session unconditionally.
func (g *Guard) StartSession(accountID uuid.UUID) uuid.UUID {
	g.mu.Lock()
	defer g.mu.Unlock()

	token := uuid.New()
	g.sessions[accountID] = entry{token: token, lastSeen: g.now()}
	return token
}

// CheckAccess reports whether token is the account's current session. A
// mismatch means the account was accessed from another location and the
// caller must abort, not retry. A passing check refreshes the inactivity
// timer.
func (g *Guard) CheckAccess(accountID, token uuid.UUID) bool {
	g.mu.Lock()
	defer g.mu.Unlock()

	e, ok := g.sessions[accountID]
	if !ok || e.token != token {
		return false
	}
	if g.ttl > 0 && g.now().Sub(e.lastSeen) > g.ttl {
		delete(g.sessions, accountID)
		return false
	}

	e.lastSeen = g.now()
	g.sessions[accountID] = e
	return true
}

// EndSession clears the account's session. Idempotent.
func (g *Guard) EndSession(accountID uuid.UUID) {
	g.mu.Lock()
	defer g.mu.Unlock()

	delete(g.sessions, accountID)
}
