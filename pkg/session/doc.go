// Package session holds the storefront's authentication state.
//
// A Store is created once at application start. It hydrates synchronously
// from durable storage: the session starts Authenticated when both the
// "token" and "user" keys are present and the identity decodes, and the
// content gate (age confirmation) starts accepted when "ageVerified" is
// "true".
//
// Status follows a two-state machine:
//
//	Unauthenticated --login--> Authenticated
//	Authenticated   --login--> Authenticated  (identity replaced)
//	Authenticated   --logout/expire--> Unauthenticated
//
// Logout is purely local; the backend keeps no session to revoke. Expire is
// meant to be installed as the API client's unauthorized handler: it performs
// the same teardown and then asks the Navigator to show "/login". Neither
// clears the content gate.
//
// Other stores observe transitions with Subscribe:
//
//	unsubscribe := sess.Subscribe(func(ctx context.Context, c session.Change) {
//		if c.SignedOut() {
//			cart.Clear()
//		}
//	})
//	defer unsubscribe()
//
// The API client reads the credential through TokenReader, which reads
// storage on every request and never writes it.
package session
