package session

import (
	"context"
	"fmt"
	"sync"
	"time"

	"bistro/internal/domain"
	"bistro/internal/events"
	"bistro/internal/metrics"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

// Registry owns all live sessions and expires idle ones.
type Registry struct {
	idleTTL   time.Duration
	publisher domain.EventPublisher
	logger    *zerolog.Logger
	now       func() time.Time

	mu       sync.RWMutex
	sessions map[string]*Session
}

func NewRegistry(idleTTL time.Duration, publisher domain.EventPublisher, logger *zerolog.Logger) *Registry {
	return &Registry{
		idleTTL:   idleTTL,
		publisher: publisher,
		logger:    logger,
		now:       time.Now,
		sessions:  make(map[string]*Session),
	}
}

// Create opens a session with empty stores.
func (r *Registry) Create() *Session {
	s := newSession(uuid.NewString(), r.publisher, r.now())

	r.mu.Lock()
	r.sessions[s.ID] = s
	n := len(r.sessions)
	r.mu.Unlock()

	metrics.SetActiveSessions(n)
	r.logger.Debug().Str("session_id", s.ID).Msg("session created")
	return s
}

// Get returns the session and marks it as active.
func (r *Registry) Get(id string) (*Session, error) {
	r.mu.RLock()
	s, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("session %q: %w", id, domain.ErrSessionNotFound)
	}
	s.touch(r.now())
	return s, nil
}

// Delete closes the session and forgets it.
func (r *Registry) Delete(id string) error {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	n := len(r.sessions)
	r.mu.Unlock()
	if !ok {
		return fmt.Errorf("session %q: %w", id, domain.ErrSessionNotFound)
	}

	r.closeSession(s, "deleted")
	metrics.SetActiveSessions(n)
	return nil
}

// Sweep removes sessions idle longer than the TTL and returns how many went away.
func (r *Registry) Sweep() int {
	if r.idleTTL <= 0 {
		return 0
	}
	cutoff := r.now().Add(-r.idleTTL)

	r.mu.Lock()
	var expired []*Session
	for id, s := range r.sessions {
		if s.LastSeen().Before(cutoff) {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	n := len(r.sessions)
	r.mu.Unlock()

	for _, s := range expired {
		r.closeSession(s, "expired")
	}
	if len(expired) > 0 {
		metrics.SetActiveSessions(n)
		r.logger.Info().Int("expired", len(expired)).Int("active", n).Msg("idle sessions swept")
	}
	return len(expired)
}

// Run sweeps on every tick until ctx is done, then closes what is left.
func (r *Registry) Run(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			r.CloseAll()
			return
		case <-ticker.C:
			r.Sweep()
		}
	}
}

// CloseAll closes and forgets every session.
func (r *Registry) CloseAll() {
	r.mu.Lock()
	all := make([]*Session, 0, len(r.sessions))
	for _, s := range r.sessions {
		all = append(all, s)
	}
	r.sessions = make(map[string]*Session)
	r.mu.Unlock()

	for _, s := range all {
		r.closeSession(s, "shutdown")
	}
	metrics.SetActiveSessions(0)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

func (r *Registry) closeSession(s *Session, reason string) {
	s.Close()
	if r.publisher != nil {
		_ = r.publisher.PublishJSON(events.EventSessionClosed, map[string]string{
			"session_id": s.ID,
			"reason":     reason,
		})
	}
	r.logger.Debug().Str("session_id", s.ID).Str("reason", reason).Msg("session closed")
}
