package session

import (
	"context"
	"sync"
)

// Scope groups background work started on behalf of a session. Once closed,
// its context is cancelled and Apply refuses to run further mutations.
type Scope struct {
	name   string
	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup

	mu      sync.RWMutex
	closed  bool
	onClose func(*Scope)
}

func newScope(parent context.Context, name string, onClose func(*Scope)) *Scope {
	ctx, cancel := context.WithCancel(parent)
	return &Scope{name: name, ctx: ctx, cancel: cancel, onClose: onClose}
}

func (s *Scope) Name() string { return s.name }

// Context is cancelled when the scope or its session closes.
func (s *Scope) Context() context.Context { return s.ctx }

// Go runs fn in a goroutine tracked by the scope. It returns false without
// running fn when the scope is already closed.
func (s *Scope) Go(fn func(ctx context.Context)) bool {
	s.mu.RLock()
	if s.closed {
		s.mu.RUnlock()
		return false
	}
	s.wg.Add(1)
	s.mu.RUnlock()

	go func() {
		defer s.wg.Done()
		fn(s.ctx)
	}()
	return true
}

// Apply runs fn only while the scope is open and its context is live.
func (s *Scope) Apply(fn func()) bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if s.closed || s.ctx.Err() != nil {
		return false
	}
	fn()
	return true
}

// Wait blocks until every goroutine started with Go has returned.
func (s *Scope) Wait() {
	s.wg.Wait()
}

// Close cancels the scope and waits for its goroutines. Safe to call twice.
func (s *Scope) Close() {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return
	}
	s.closed = true
	s.mu.Unlock()

	s.cancel()
	s.wg.Wait()
	if s.onClose != nil {
		s.onClose(s)
	}
}

// Closed reports whether Close has been called.
func (s *Scope) Closed() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.closed
}
