package engine

import (
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/hybridboard/gametable-backend/engine/rules"
)

// Registry holds the live sessions of one process, keyed by game id.
// Sessions share no mutable state; each entry carries its own lock so the
// transport's handlers apply commands strictly one at a time per session
// while independent sessions proceed in parallel.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*registryEntry
}

type registryEntry struct {
	mu sync.Mutex
	s  *Session
}

// NewRegistry builds an empty registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*registryEntry)}
}

// Create builds and registers a session.
func (r *Registry) Create(id string, cfg rules.Config, seed int64, log *logrus.Entry) (*Session, error) {
	s, err := NewSession(id, cfg, seed, log)
	if err != nil {
		return nil, err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, dup := r.sessions[id]; dup {
		return nil, reject(CodeWrongPhase, "session %s already exists", id)
	}
	r.sessions[id] = &registryEntry{s: s}
	return s, nil
}

// Remove drops a finished or abandoned session.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	delete(r.sessions, id)
	r.mu.Unlock()
}

// Has reports whether a session is live.
func (r *Registry) Has(id string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.sessions[id]
	return ok
}

// Do runs fn against the session under its command lock. Every transport
// entry point goes through here, which is what gives the engine its
// sequential-mutation guarantee.
func (r *Registry) Do(id string, fn func(*Session) ([]Event, error)) ([]Event, error) {
	r.mu.RLock()
	e, ok := r.sessions[id]
	r.mu.RUnlock()
	if !ok {
		return nil, reject(CodeWrongPhase, "no such session %s", id)
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return fn(e.s)
}
