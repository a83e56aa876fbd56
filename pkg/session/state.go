package session

import "github.com/dmitrymomot/storefront/pkg/statemachine"

// Status is the authentication state of the session.
type Status string

const (
	Unauthenticated Status = "unauthenticated"
	Authenticated   Status = "authenticated"
)

func (s Status) String() string { return string(s) }

type event string

const (
	eventLogin  event = "login"
	eventLogout event = "logout"
	eventExpire event = "expire"
)

// newMachine builds the two-state session machine. A repeated login replaces
// the identity without leaving Authenticated.
func newMachine(initial Status) *statemachine.Machine[Status, event] {
	return statemachine.New[Status, event](initial).
		Permit(Unauthenticated, eventLogin, Authenticated).
		Permit(Authenticated, eventLogin, Authenticated).
		Permit(Authenticated, eventLogout, Unauthenticated).
		Permit(Authenticated, eventExpire, Unauthenticated)
}

// Change describes a status transition delivered to listeners.
type Change struct {
	From     Status
	To       Status
	Identity Identity
}

// SignedIn reports a transition into Authenticated, including re-login.
func (c Change) SignedIn() bool {
	return c.To == Authenticated
}

// SignedOut reports a transition out of Authenticated.
func (c Change) SignedOut() bool {
	return c.From == Authenticated && c.To == Unauthenticated
}
