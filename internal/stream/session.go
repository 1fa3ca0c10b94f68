package stream

import (
	"log"
	"sync"
	"time"

	"github.com/google/uuid"
)

const (
	sessionBuffer = 64
	sessionTTL    = time.Hour
)

// Session is one live planning stream. The planning run publishes into it
// from its own goroutine; an SSE handler drains it.
type Session struct {
	ID        string
	createdAt time.Time

	mu     sync.Mutex
	events chan Event
	closed bool
}

// Publish delivers an event without blocking. Events beyond the buffer are
// dropped so a slow or absent consumer cannot stall planning.
func (s *Session) Publish(ev Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	select {
	case s.events <- ev:
	default:
		log.Printf("Warning: stream %s buffer full, dropping %s event", s.ID, ev.Type)
	}
}

// Events returns the receive side of the session. The channel closes when
// the session does.
func (s *Session) Events() <-chan Event {
	return s.events
}

// Close ends the stream. Publishes after Close are ignored.
func (s *Session) Close() {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}
	s.closed = true
	close(s.events)
}

func (s *Session) expiredAt(now time.Time) bool {
	return now.Sub(s.createdAt) > sessionTTL
}

// Registry tracks sessions by stream id.
type Registry struct {
	mu       sync.Mutex
	sessions map[string]*Session
}

// NewRegistry creates an empty session registry.
func NewRegistry() *Registry {
	return &Registry{sessions: make(map[string]*Session)}
}

// Create allocates a session under a fresh stream id.
func (r *Registry) Create() *Session {
	s := &Session{
		ID:        uuid.NewString(),
		createdAt: time.Now(),
		events:    make(chan Event, sessionBuffer),
	}
	r.mu.Lock()
	r.sessions[s.ID] = s
	r.mu.Unlock()
	return s
}

// Get returns the session for the given stream id.
func (r *Registry) Get(id string) (*Session, bool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.sessions[id]
	return s, ok
}

// Remove closes the session and drops it from the registry.
func (r *Registry) Remove(id string) {
	r.mu.Lock()
	s, ok := r.sessions[id]
	delete(r.sessions, id)
	r.mu.Unlock()
	if ok {
		s.Close()
	}
}

// SweepExpired closes and removes sessions past their TTL, returning how
// many were dropped. Abandoned streams would otherwise pin their buffers
// for the life of the process.
func (r *Registry) SweepExpired() int {
	now := time.Now()

	r.mu.Lock()
	var expired []*Session
	for id, s := range r.sessions {
		if s.expiredAt(now) {
			expired = append(expired, s)
			delete(r.sessions, id)
		}
	}
	r.mu.Unlock()

	for _, s := range expired {
		s.Close()
	}
	if len(expired) > 0 {
		log.Printf("Swept %d expired stream sessions", len(expired))
	}
	return len(expired)
}
