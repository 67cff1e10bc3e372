package dashboard

import (
	"sync"
	"time"
)

// Registry keeps one Controller per browser session.
type Registry struct {
	mu          sync.Mutex
	controllers map[string]*Controller
	factory     func() *Controller
	nowTime     func() time.Time
}

type RegistryOption func(*Registry)

// WithRegistryNowTime sets the now time function (primarily for testing)
func WithRegistryNowTime(nowFunc func() time.Time) RegistryOption {
	return func(r *Registry) {
		r.nowTime = nowFunc
	}
}

// NewRegistry builds controllers with factory on first use of a session.
func NewRegistry(factory func() *Controller, options ...RegistryOption) *Registry {
	r := &Registry{
		controllers: make(map[string]*Controller),
		factory:     factory,
		nowTime:     time.Now,
	}
	for _, opt := range options {
		opt(r)
	}
	return r
}

// Get returns the session's controller, creating it if needed, and marks it used.
func (r *Registry) Get(sessionID string) *Controller {
	r.mu.Lock()
	c, ok := r.controllers[sessionID]
	if !ok {
		c = r.factory()
		r.controllers[sessionID] = c
	}
	r.mu.Unlock()

	c.touch(r.nowTime())
	return c
}

// Remove drops the session's controller, e.g. on logout.
func (r *Registry) Remove(sessionID string) {
	r.mu.Lock()
	defer r.mu.Unlock()

	delete(r.controllers, sessionID)
}

// EvictIdle drops controllers unused for longer than idleTTL and returns how many.
func (r *Registry) EvictIdle(idleTTL time.Duration) int {
	cutoff := r.nowTime().Add(-idleTTL)

	r.mu.Lock()
	defer r.mu.Unlock()

	evicted := 0
	for id, c := range r.controllers {
		if c.idleSince().Before(cutoff) {
			delete(r.controllers, id)
			evicted++
		}
	}
	return evicted
}

func (r *Registry) Len() int {
	r.mu.Lock()
	defer r.mu.Unlock()

	return len(r.controllers)
}
