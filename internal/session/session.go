// Package session keeps per-client state: one cart, one favorites list and
// the manager login, plus the scopes of in-flight fetches.
package session

import (
	"context"
	"sync"
	"time"

	"bistro/internal/cart"
	"bistro/internal/domain"
	"bistro/internal/favorites"
	"bistro/internal/models"
)

type Session struct {
	ID        string
	Cart      *cart.Store
	Favorites *favorites.Store
	CreatedAt time.Time

	mu       sync.Mutex
	auth     *models.AuthSession
	lastSeen time.Time
	scopes   map[*Scope]struct{}
	closed   bool
}

func newSession(id string, publisher domain.EventPublisher, now time.Time) *Session {
	return &Session{
		ID:        id,
		Cart:      cart.NewStore(id, publisher),
		Favorites: favorites.NewStore(id, publisher),
		CreatedAt: now,
		lastSeen:  now,
		scopes:    make(map[*Scope]struct{}),
	}
}

// OpenScope starts a cancellable scope bound to parent and to the session
// lifetime. On a closed session the scope comes back already closed.
func (s *Session) OpenScope(parent context.Context, name string) *Scope {
	scope := newScope(parent, name, s.forgetScope)

	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		scope.Close()
		return scope
	}
	s.scopes[scope] = struct{}{}
	s.mu.Unlock()
	return scope
}

func (s *Session) forgetScope(scope *Scope) {
	s.mu.Lock()
	delete(s.scopes, scope)
	s.mu.Unlock()
}

// SetAuth stores the manager login on the session. It reports false and
// stores nothing once the session is closed.
func (s *Session) SetAuth(auth models.AuthSession) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return false
	}
	s.auth = &auth
	return true
}

// Auth returns the manager login, or false when nobody is logged in.
func (s *Session) Auth() (models.AuthSession, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.auth == nil {
		return models.AuthSession{}, false
	}
	return *s.auth, true
}

func (s *Session) ClearAuth() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.auth = nil
}

func (s *Session) IsManager() bool {
	_, ok := s.Auth()
	return ok
}

func (s *Session) touch(now time.Time) {
	s.mu.Lock()
	s.lastSeen = now
	s.mu.Unlock()
}

func (s *Session) LastSeen() time.Time {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.lastSeen
}

// Close closes every open scope and drops the login. Stores stay readable
// but the session is no longer reachable from the registry.
func (s *Session) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	scopes := make([]*Scope, 0, len(s.scopes))
	for scope := range s.scopes {
		scopes = append(scopes, scope)
	}
	s.scopes = make(map[*Scope]struct{})
	s.auth = nil
	s.mu.Unlock()

	for _, scope := range scopes {
		scope.Close()
	}
}

func (s *Session) Closed() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.closed
}
