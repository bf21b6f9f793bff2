// Package identity abstracts the identity provider the sharing engine runs
// against. Authentication itself is out of scope; the engine only needs to
// know who the current user is and when that changes.
package identity

import (
	"sync"

	"github.com/forgo/wander/engine/internal/model"
)

// Provider yields the currently authenticated user.
type Provider interface {
	// CurrentUser returns the authenticated user, or nil when signed out.
	CurrentUser() *model.User

	// OnAuthChange registers a callback invoked whenever the current user
	// changes (sign-in, sign-out, account switch). The returned function
	// unregisters the callback and is safe to call more than once.
	OnAuthChange(fn func(*model.User)) (unsubscribe func())
}

// Static is a Provider with a fixed user, for tools and tests.
type Static struct {
	mu        sync.Mutex
	user      *model.User
	callbacks map[int]func(*model.User)
	nextID    int
}

// NewStatic creates a provider that reports the given user. A nil user means
// signed out.
func NewStatic(user *model.User) *Static {
	return &Static{
		user:      user,
		callbacks: make(map[int]func(*model.User)),
	}
}

// CurrentUser returns the configured user
func (s *Static) CurrentUser() *model.User {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.user
}

// OnAuthChange registers a callback for SetUser calls
func (s *Static) OnAuthChange(fn func(*model.User)) func() {
	s.mu.Lock()
	defer s.mu.Unlock()
	id := s.nextID
	s.nextID++
	s.callbacks[id] = fn
	return func() {
		s.mu.Lock()
		defer s.mu.Unlock()
		delete(s.callbacks, id)
	}
}

// SetUser switches the current user and notifies registered callbacks
func (s *Static) SetUser(user *model.User) {
	s.mu.Lock()
	s.user = user
	fns := make([]func(*model.User), 0, len(s.callbacks))
	for _, fn := range s.callbacks {
		fns = append(fns, fn)
	}
	s.mu.Unlock()

	for _, fn := range fns {
		fn(user)
	}
}
