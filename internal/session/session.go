// Package session owns the single active identity and its bearer token.
// The store is an explicit object created at startup and passed by
// reference to the gateway and the workflows; there is no package-global
// slot. The token is volatile and dies with the process.
package session

import "sync"

// Identity is created on successful authentication and destroyed on
// logout or clear. At most one is active at a time.
type Identity struct {
	AccountID     string
	AccountNumber string
	DisplayName   string
	Token         string
}

// Store holds the active identity behind a mutex. Establish and Clear
// are atomic replace-or-clear; no finer-grained locking is needed since
// exactly one workflow writes at a time.
type Store struct {
	mu       sync.RWMutex
	identity *Identity
}

func NewStore() *Store {
	return &Store{}
}

// Establish replaces any prior identity and its token.
func (s *Store) Establish(id Identity) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = &id
}

// Clear discards the identity and token (logout, or recovery from an
// invalidated session).
func (s *Store) Clear() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.identity = nil
}

// Current returns a copy of the active identity, or false when logged out.
func (s *Store) Current() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return Identity{}, false
	}
	return *s.identity, true
}

// Token implements gateway.TokenSource. Empty means no credential, which
// is fine for public endpoints.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.identity == nil {
		return ""
	}
	return s.identity.Token
}
