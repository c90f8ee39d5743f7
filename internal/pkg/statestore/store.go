package statestore

import (
	"sync"

	"github.com/remihome/remi-card/internal/pkg/model"
)

// Store is the card's copy of the host state snapshot. The host owns all data
// lifetime; the store only mirrors the latest snapshot plus incremental
// state_changed updates. Every mutation bumps Revision so derived values can
// skip recomputation when nothing moved.
type Store struct {
	mu       sync.RWMutex
	states   map[model.EntityID]model.EntityState
	language string
	revision uint64

	subscribers []func(changed model.EntityID)
}

func New() *Store {
	return &Store{
		states:   make(map[model.EntityID]model.EntityState),
		language: "en",
	}
}

// Lookup returns the state for an identifier. Absence is an ordinary outcome
// for the render gate, not an error.
func (s *Store) Lookup(id model.EntityID) (model.EntityState, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	st, ok := s.states[id]
	return st, ok
}

// IDs returns all entity identifiers the host currently reports.
func (s *Store) IDs() []model.EntityID {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ids := make([]model.EntityID, 0, len(s.states))
	for id := range s.states {
		ids = append(ids, id)
	}
	return ids
}

func (s *Store) CurrentLanguage() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.language
}

func (s *Store) SetLanguage(lang string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if lang != "" {
		s.language = lang
	}
}

func (s *Store) Revision() uint64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.revision
}

// ReplaceAll installs a full host snapshot, dropping anything not in it.
func (s *Store) ReplaceAll(states []model.EntityState) {
	s.mu.Lock()
	s.states = make(map[model.EntityID]model.EntityState, len(states))
	for _, st := range states {
		s.states[st.EntityID] = st
	}
	s.revision++
	s.mu.Unlock()
	s.notify("")
}

// Apply folds a single state_changed update into the snapshot. A nil new state
// means the entity was removed.
func (s *Store) Apply(id model.EntityID, newState *model.EntityState) {
	s.mu.Lock()
	if newState == nil {
		delete(s.states, id)
	} else {
		s.states[id] = *newState
	}
	s.revision++
	s.mu.Unlock()
	s.notify(id)
}

// Subscribe registers a callback fired after every snapshot change; changed is
// the updated entity id, or empty for a full snapshot replacement. Callbacks
// run on the mutating goroutine and must not block.
func (s *Store) Subscribe(fn func(changed model.EntityID)) {
	s.mu.Lock()
	s.subscribers = append(s.subscribers, fn)
	s.mu.Unlock()
}

func (s *Store) notify(changed model.EntityID) {
	s.mu.RLock()
	subs := make([]func(model.EntityID), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.RUnlock()
	for _, fn := range subs {
		fn(changed)
	}
}
