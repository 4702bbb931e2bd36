package session

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

var ErrSessionNotFound = errors.New("session not found")

// DefaultIdleTTL is how long an untouched session survives Evict.
const DefaultIdleTTL = 24 * time.Hour

type entry struct {
	mu    sync.Mutex
	state *State
}

// Store keeps browsing sessions in memory, keyed by uuid. Each session is
// locked independently so slow work on one never blocks another.
type Store struct {
	mu       sync.RWMutex
	sessions map[string]*entry
	budget   float64
	idleTTL  time.Duration
	now      func() time.Time
}

// NewStore creates an empty store. budget seeds every session's team and
// idleTTL bounds how long an untouched session is kept.
func NewStore(budget float64, idleTTL time.Duration) *Store {
	if idleTTL <= 0 {
		idleTTL = DefaultIdleTTL
	}
	return &Store{
		sessions: make(map[string]*entry),
		budget:   budget,
		idleTTL:  idleTTL,
		now:      time.Now,
	}
}

// Create starts a session and hands it to init before it becomes visible.
func (s *Store) Create(init func(*State)) View {
	st := newState(uuid.NewString(), s.budget, s.now())
	if init != nil {
		init(st)
	}
	view := st.View()

	s.mu.Lock()
	s.sessions[st.ID] = &entry{state: st}
	s.mu.Unlock()
	return view
}

func (s *Store) lookup(id string) (*entry, error) {
	s.mu.RLock()
	e, ok := s.sessions[id]
	s.mu.RUnlock()
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	return e, nil
}

func (s *Store) Get(id string) (View, error) {
	e, err := s.lookup(id)
	if err != nil {
		return View{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.state.View(), nil
}

// Update runs fn with exclusive access to the session and returns the
// resulting view. The session is touched even when fn fails.
func (s *Store) Update(id string, fn func(*State) error) (View, error) {
	e, err := s.lookup(id)
	if err != nil {
		return View{}, err
	}
	e.mu.Lock()
	defer e.mu.Unlock()

	e.state.touchedAt = s.now()
	err = fn(e.state)
	return e.state.View(), err
}

func (s *Store) Delete(id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.sessions[id]; !ok {
		return fmt.Errorf("%w: %s", ErrSessionNotFound, id)
	}
	delete(s.sessions, id)
	return nil
}

func (s *Store) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.sessions)
}

// Evict drops sessions idle for longer than the store's TTL and returns
// how many were removed.
func (s *Store) Evict() int {
	cutoff := s.now().Add(-s.idleTTL)

	s.mu.Lock()
	defer s.mu.Unlock()
	removed := 0
	for id, e := range s.sessions {
		e.mu.Lock()
		idle := e.state.touchedAt.Before(cutoff)
		e.mu.Unlock()
		if idle {
			delete(s.sessions, id)
			removed++
		}
	}
	return removed
}
