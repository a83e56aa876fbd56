package statemachine

import "sync"

// Transition is a single applied state change.
type Transition[S comparable, E comparable] struct {
	From  S
	To    S
	Event E
}

// Changed reports whether the transition moved to a different state.
func (t Transition[S, E]) Changed() bool {
	return t.From != t.To
}

// Machine is a thread-safe finite state machine over comparable states and
// events. Transitions are declared up front with Permit; firing an event that
// has no transition from the current state is an error and leaves the state
// untouched.
type Machine[S comparable, E comparable] struct {
	mu          sync.RWMutex
	initial     S
	current     S
	transitions map[S]map[E]S
}

// New creates a machine starting in initial.
func New[S comparable, E comparable](initial S) *Machine[S, E] {
	return &Machine[S, E]{
		initial:     initial,
		current:     initial,
		transitions: make(map[S]map[E]S),
	}
}

// Permit declares that event moves the machine from from to to.
// Declaring the same from/event pair again replaces the target.
func (m *Machine[S, E]) Permit(from S, event E, to S) *Machine[S, E] {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.transitions[from]; !ok {
		m.transitions[from] = make(map[E]S)
	}
	m.transitions[from][event] = to
	return m
}

func (m *Machine[S, E]) Current() S {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.current
}

// Is reports whether the machine is in state s.
func (m *Machine[S, E]) Is(s S) bool {
	return m.Current() == s
}

// Fire applies event and returns the transition taken.
func (m *Machine[S, E]) Fire(event E) (Transition[S, E], error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	to, ok := m.transitions[m.current][event]
	if !ok {
		return Transition[S, E]{}, &ErrNoTransitionAvailable{State: m.current, Event: event}
	}

	t := Transition[S, E]{From: m.current, To: to, Event: event}
	m.current = to
	return t, nil
}

// CanFire reports whether event has a transition from the current state.
func (m *Machine[S, E]) CanFire(event E) bool {
	m.mu.RLock()
	defer m.mu.RUnlock()

	_, ok := m.transitions[m.current][event]
	return ok
}

// Restore sets the current state without firing an event. It is meant for
// hydrating a machine from persisted state.
func (m *Machine[S, E]) Restore(s S) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.current = s
}

// Reset returns the machine to its initial state.
func (m *Machine[S, E]) Reset() {
	m.Restore(m.initial)
}
