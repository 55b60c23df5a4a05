// Package selection holds the operator selection state shared by the
// dashboard views: one active operator for single-operator pages and an
// ordered, never-empty comparison set for the tracking views.
package selection

import (
	"fmt"
	"sync"
)

// DefaultOperator seeds the selection on first use.
const DefaultOperator = "LUZ"

// State is a snapshot of the selection. Active may be empty (no operator
// selected); Comparison keeps insertion order for the UI and is never empty.
type State struct {
	Active     string   `json:"active,omitempty"`
	Comparison []string `json:"comparison"`
}

func (s State) clone() State {
	out := State{Active: s.Active, Comparison: make([]string, len(s.Comparison))}
	copy(out.Comparison, s.Comparison)
	return out
}

// Persistence stores the selection across restarts. Load reports whether a
// stored state existed.
type Persistence interface {
	Load() (State, bool, error)
	Save(State) error
}

// Store is the injectable selection state. Every mutation is synchronously
// persisted before subscribers are notified.
type Store struct {
	mu      sync.Mutex
	state   State
	persist Persistence
	subs    []func(State)
}

// NewStore loads the persisted selection or seeds the default operator.
func NewStore(persist Persistence) (*Store, error) {
	state, found, err := persist.Load()
	if err != nil {
		return nil, fmt.Errorf("failed to load operator selection: %w", err)
	}
	if !found {
		state = State{Active: DefaultOperator, Comparison: []string{DefaultOperator}}
		if err := persist.Save(state); err != nil {
			return nil, fmt.Errorf("failed to persist default selection: %w", err)
		}
	}
	if len(state.Comparison) == 0 {
		state.Comparison = []string{DefaultOperator}
	}
	return &Store{state: state, persist: persist}, nil
}

// State returns a snapshot of the current selection.
func (s *Store) State() State {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.state.clone()
}

// SetActive replaces the active operator. An empty operator clears the
// selection.
func (s *Store) SetActive(operator string) error {
	s.mu.Lock()
	if s.state.Active == operator {
		s.mu.Unlock()
		return nil
	}
	s.state.Active = operator
	return s.commitAndUnlock()
}

// ToggleComparison adds the operator to the comparison set, or removes it if
// already present. Removing the last remaining operator is a no-op: at least
// one operator must stay selected for the comparison views.
func (s *Store) ToggleComparison(operator string) error {
	s.mu.Lock()
	idx := -1
	for i, op := range s.state.Comparison {
		if op == operator {
			idx = i
			break
		}
	}

	if idx >= 0 {
		if len(s.state.Comparison) == 1 {
			s.mu.Unlock()
			return nil
		}
		s.state.Comparison = append(s.state.Comparison[:idx], s.state.Comparison[idx+1:]...)
	} else {
		s.state.Comparison = append(s.state.Comparison, operator)
	}
	return s.commitAndUnlock()
}

// Subscribe registers a callback invoked with a snapshot after every
// successful mutation. Callbacks run outside the store lock.
func (s *Store) Subscribe(fn func(State)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subs = append(s.subs, fn)
}

// commitAndUnlock persists the current state, releases the lock and fans the
// snapshot out to subscribers. Must be called with the lock held.
func (s *Store) commitAndUnlock() error {
	snapshot := s.state.clone()
	subs := make([]func(State), len(s.subs))
	copy(subs, s.subs)
	err := s.persist.Save(snapshot)
	s.mu.Unlock()
	if err != nil {
		return fmt.Errorf("failed to persist operator selection: %w", err)
	}
	for _, fn := range subs {
		fn(snapshot.clone())
	}
	return nil
}

// MemoryPersistence keeps the selection in process memory. Used in tests and
// as the fallback when no database is configured.
type MemoryPersistence struct {
	mu    sync.Mutex
	state State
	saved bool
}

// NewMemoryPersistence returns an empty in-memory persistence.
func NewMemoryPersistence() *MemoryPersistence {
	return &MemoryPersistence{}
}

// Load returns the last saved state, if any.
func (m *MemoryPersistence) Load() (State, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.state.clone(), m.saved, nil
}

// Save stores the state in memory.
func (m *MemoryPersistence) Save(state State) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.state = state.clone()
	m.saved = true
	return nil
}
