// Package statemachine provides a small generic finite state machine.
//
// States and events are any comparable types, usually string-based enums:
//
//	type Status string
//	type Event string
//
//	m := statemachine.New[Status, Event]("unauthenticated").
//		Permit("unauthenticated", "login", "authenticated").
//		Permit("authenticated", "logout", "unauthenticated")
//
//	t, err := m.Fire("login")
//	// t.From == "unauthenticated", t.To == "authenticated"
//
// Fire returns *ErrNoTransitionAvailable for events that are not permitted in
// the current state. The machine only tracks state; side effects belong to
// the caller, which can inspect the returned Transition.
package statemachine
