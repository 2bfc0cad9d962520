package store

import (
	"slices"
	"sync"

	"github.com/goliatone/go-regform/pkg/model"
)

// Action names the update that produced a state change.
type Action string

const (
	ActionSetFormData  Action = "form/setFormData"
	ActionSetFormImage Action = "form/setFormImage"
	ActionSetCountries Action = "form/setCountries"
)

// State is an immutable snapshot of the store.
type State struct {
	FormData  *model.FormValues
	FormImage *string
	Countries []model.Country
}

// Listener observes updates after they are applied.
type Listener func(action Action, state State)

// Store holds the application state. The zero value is not usable; call New.
type Store struct {
	mu        sync.RWMutex
	state     State
	listeners map[int]Listener
	nextID    int
}

// New returns an empty store.
func New() *Store {
	return &Store{listeners: make(map[int]Listener)}
}

// SetFormData replaces the last submitted form. A nil record clears it.
func (s *Store) SetFormData(values *model.FormValues) {
	var stored *model.FormValues
	if values != nil {
		clone := values.Clone()
		stored = &clone
	}
	s.update(ActionSetFormData, func(st *State) { st.FormData = stored })
}

// SetFormImage replaces the uploaded image representation. A nil image
// clears it.
func (s *Store) SetFormImage(image *string) {
	var stored *string
	if image != nil {
		value := *image
		stored = &value
	}
	s.update(ActionSetFormImage, func(st *State) { st.FormImage = stored })
}

// SetCountries replaces the country reference list.
func (s *Store) SetCountries(countries []model.Country) {
	stored := slices.Clone(countries)
	s.update(ActionSetCountries, func(st *State) { st.Countries = stored })
}

// State returns a snapshot of the current state.
func (s *Store) State() State {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.state
}

// Subscribe registers a listener and returns a function removing it.
func (s *Store) Subscribe(listener Listener) func() {
	if listener == nil {
		return func() {}
	}
	s.mu.Lock()
	id := s.nextID
	s.nextID++
	s.listeners[id] = listener
	s.mu.Unlock()

	return func() {
		s.mu.Lock()
		delete(s.listeners, id)
		s.mu.Unlock()
	}
}

func (s *Store) update(action Action, apply func(*State)) {
	s.mu.Lock()
	next := s.state
	apply(&next)
	s.state = next
	listeners := make([]Listener, 0, len(s.listeners))
	for _, listener := range s.listeners {
		listeners = append(listeners, listener)
	}
	s.mu.Unlock()

	for _, listener := range listeners {
		listener(action, next)
	}
}
