package session

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"
)

// Registry owns every live session, keyed by game id. Map operations
// are independently atomic; session-internal mutation is covered by
// each session's own mutex.
type Registry struct {
	mu       sync.RWMutex
	sessions map[string]*Session
	now      func() time.Time
}

func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session), now: time.Now}
}

// SetNow overrides the clock source for sessions the registry creates.
func (r *Registry) SetNow(now func() time.Time) {
	if now != nil {
		r.now = now
	}
}

// Create allocates a collision-free game id and registers the session.
func (r *Registry) Create(p Params) (*Session, error) {
	if p.Now == nil {
		p.Now = r.now
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for attempt := 0; attempt < 5; attempt++ {
		id, err := generateGameID()
		if err != nil {
			return nil, err
		}
		if _, taken := r.sessions[id]; taken {
			continue
		}
		p.ID = id
		s, err := New(p)
		if err != nil {
			return nil, err
		}
		r.sessions[id] = s
		return s, nil
	}
	return nil, fmt.Errorf("failed to allocate game id")
}

func (r *Registry) Get(id string) *Session {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.sessions[id]
}

func (r *Registry) Remove(id string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.sessions, id)
}

func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.sessions)
}

// generateGameID returns a 6-character upper alphanumeric code.
func generateGameID() (string, error) {
	const letters = "ABCDEFGHIJKLMNOPQRSTUVWXYZ0123456789"
	b := make([]byte, 6)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	for i := range b {
		b[i] = letters[int(b[i])%len(letters)]
	}
	return string(b), nil
}
