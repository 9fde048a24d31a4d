// Package store keeps live booking wizards in memory for the
// duration of a dialog.  Sessions are keyed by opaque UUIDs handed
// to the client and are reaped after a period of inactivity, the
// same way expired seat holds are swept server-side; reaping runs
// the wizard's abandonment path so a half-open payment window still
// gets its best-effort cancellation.
package store

import (
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/iamsuteerth/skyfox-frontend/internal/booking"
)

type entry struct {
	wizard   *booking.Wizard
	lastSeen time.Time
}

// SessionStore is a mutex-guarded map of wizard sessions with a
// background sweeper.
type SessionStore struct {
	mu       sync.Mutex
	ttl      time.Duration
	sessions map[string]*entry
	stop     chan struct{}
	stopOnce sync.Once
}

// NewSessionStore returns a store whose sessions expire after ttl of
// inactivity.  Call StartSweeper to begin reaping.
func NewSessionStore(ttl time.Duration) *SessionStore {
	if ttl <= 0 {
		ttl = 30 * time.Minute
	}
	return &SessionStore{
		ttl:      ttl,
		sessions: make(map[string]*entry),
		stop:     make(chan struct{}),
	}
}

// Put registers a wizard and returns its session ID.
func (s *SessionStore) Put(w *booking.Wizard) string {
	id := uuid.NewString()
	s.mu.Lock()
	s.sessions[id] = &entry{wizard: w, lastSeen: time.Now()}
	s.mu.Unlock()
	return id
}

// Get returns the wizard for a session and refreshes its activity
// timestamp.
func (s *SessionStore) Get(id string) (*booking.Wizard, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	e, ok := s.sessions[id]
	if !ok {
		return nil, false
	}
	e.lastSeen = time.Now()
	return e.wizard, true
}

// Delete removes a session without touching the wizard.  Callers are
// expected to have closed or abandoned the wizard first.
func (s *SessionStore) Delete(id string) {
	s.mu.Lock()
	delete(s.sessions, id)
	s.mu.Unlock()
}

// Len returns the number of live sessions.
func (s *SessionStore) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.sessions)
}

// StartSweeper launches the background reaper.  Each pass abandons
// and drops every session idle for longer than the TTL.
func (s *SessionStore) StartSweeper(interval time.Duration) {
	if interval <= 0 {
		interval = time.Minute
	}
	go func() {
		ticker := time.NewTicker(interval)
		defer ticker.Stop()
		for {
			select {
			case <-s.stop:
				return
			case <-ticker.C:
				s.sweep(time.Now())
			}
		}
	}()
}

// sweep drops idle sessions.  Split out for tests.
func (s *SessionStore) sweep(now time.Time) {
	s.mu.Lock()
	expired := make([]*booking.Wizard, 0)
	for id, e := range s.sessions {
		if now.Sub(e.lastSeen) > s.ttl {
			expired = append(expired, e.wizard)
			delete(s.sessions, id)
		}
	}
	s.mu.Unlock()
	for _, w := range expired {
		w.Abandon()
	}
}

// Close stops the sweeper.  Live sessions stay untouched.
func (s *SessionStore) Close() {
	s.stopOnce.Do(func() { close(s.stop) })
}
