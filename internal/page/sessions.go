package page

import (
	"sync"
	"time"
)

type session struct {
	page     *Orchestrator
	lastSeen time.Time
}

// Sessions keeps one orchestrator per browser. Every orchestrator shares the
// same store, so all browsers read through one cache.
type Sessions struct {
	mu   sync.Mutex
	byID map[string]*session

	store Store
	now   func() time.Time
	loc   *time.Location
}

func NewSessions(store Store, now func() time.Time, loc *time.Location) *Sessions {
	if now == nil {
		now = time.Now
	}
	if loc == nil {
		loc = time.Local
	}
	return &Sessions{
		byID:  make(map[string]*session),
		store: store,
		now:   now,
		loc:   loc,
	}
}

// Lookup returns the orchestrator of an existing session.
func (s *Sessions) Lookup(id string) (*Orchestrator, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()

	sess, ok := s.byID[id]
	if !ok {
		return nil, false
	}
	sess.lastSeen = s.now()
	return sess.page, true
}

// Open starts a session under id with an empty form on page 1. An existing
// session with the same id is returned as is.
func (s *Sessions) Open(id string) *Orchestrator {
	s.mu.Lock()
	defer s.mu.Unlock()

	if sess, ok := s.byID[id]; ok {
		sess.lastSeen = s.now()
		return sess.page
	}
	sess := &session{
		page:     NewOrchestrator(s.store, s.now, s.loc),
		lastSeen: s.now(),
	}
	s.byID[id] = sess
	return sess.page
}

func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.byID)
}

// Prune drops sessions unused for at least idle and returns how many went.
func (s *Sessions) Prune(idle time.Duration) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	cutoff := s.now().Add(-idle)
	removed := 0
	for id, sess := range s.byID {
		if !sess.lastSeen.After(cutoff) {
			delete(s.byID, id)
			removed++
		}
	}
	return removed
}
