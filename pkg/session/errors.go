package session

import "errors"

var (
	// ErrRegistrationFailed indicates the backend refused to create the account.
	ErrRegistrationFailed = errors.New("session.registration_failed")

	// ErrAutoLoginFailed indicates the account was created but the follow-up
	// sign-in failed. The user can sign in manually.
	ErrAutoLoginFailed = errors.New("session.auto_login_failed")

	// ErrStorage indicates persisted session state could not be read or written.
	ErrStorage = errors.New("session.storage_failure")

	// ErrNoAuthenticator indicates New was called without an authenticator.
	ErrNoAuthenticator = errors.New("session.no_authenticator")

	// ErrNoStorage indicates New was called without storage.
	ErrNoStorage = errors.New("session.no_storage")
)
