package session

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/storefront/pkg/apiclient"
	"github.com/dmitrymomot/storefront/pkg/logger"
	"github.com/dmitrymomot/storefront/pkg/sanitizer"
	"github.com/dmitrymomot/storefront/pkg/statemachine"
	"github.com/dmitrymomot/storefront/pkg/storage"
	"github.com/dmitrymomot/storefront/pkg/validator"
)

// Authenticator is the part of the API client the session needs.
type Authenticator interface {
	Authenticate(ctx context.Context, email, password string) (*apiclient.AuthResult, error)
	Register(ctx context.Context, profile apiclient.RegisterProfile) (*apiclient.Ack, error)
}

type listenerEntry struct {
	id uint64
	fn Listener
}

// Store owns the signed-in identity, the credential token and the content
// gate flag. It is the only writer of those storage keys.
type Store struct {
	storage   storage.Storage
	auth      Authenticator
	logger    *slog.Logger
	navigator Navigator

	mu          sync.RWMutex
	machine     *statemachine.Machine[Status, event]
	identity    Identity
	token       string
	gate        bool
	listeners   []listenerEntry
	listenerSeq uint64
}

// New creates a session store and hydrates it from s. The session is
// Authenticated only when both a token and a decodable identity are stored.
func New(ctx context.Context, s storage.Storage, auth Authenticator, opts ...Option) (*Store, error) {
	if s == nil {
		return nil, ErrNoStorage
	}
	if auth == nil {
		return nil, ErrNoAuthenticator
	}

	st := &Store{
		storage: s,
		auth:    auth,
		logger:  slog.Default(),
	}
	for _, opt := range opts {
		opt(st)
	}
	st.logger = st.logger.With(logger.Component("session"))
	if st.navigator == nil {
		st.navigator = NavigatorFunc(func(ctx context.Context, path string) {
			st.logger.DebugContext(ctx, "navigation requested without navigator", logger.Path(path))
		})
	}

	if err := st.hydrate(ctx); err != nil {
		return nil, err
	}
	return st, nil
}

func (s *Store) hydrate(ctx context.Context) error {
	status := Unauthenticated

	token, hasToken, err := s.lookup(ctx, KeyToken)
	if err != nil {
		return err
	}
	rawUser, hasUser, err := s.lookup(ctx, KeyUser)
	if err != nil {
		return err
	}

	if hasToken && hasUser {
		id, err := decodeIdentity(rawUser)
		if err != nil {
			s.logger.WarnContext(ctx, "stored identity is unreadable, starting signed out", logger.Error(err))
		} else {
			s.identity = id
			s.token = token
			status = Authenticated
		}
	}

	gate, _, err := s.lookup(ctx, KeyAgeVerified)
	if err != nil {
		return err
	}
	s.gate = gate == gateAccepted
	s.machine = newMachine(status)

	s.logger.DebugContext(ctx, "session hydrated", logger.State(status.String()), logger.UserID(s.identity.ID))
	return nil
}

// lookup treats undecryptable values as absent.
func (s *Store) lookup(ctx context.Context, key string) (string, bool, error) {
	value, ok, err := storage.Lookup(ctx, s.storage, key)
	switch {
	case errors.Is(err, storage.ErrCorrupted):
		s.logger.WarnContext(ctx, "stored value is unreadable", slog.String("key", key), logger.Error(err))
		return "", false, nil
	case err != nil:
		return "", false, errors.Join(ErrStorage, err)
	}
	return value, ok, nil
}

// Login authenticates with the backend and, on success, persists the token
// and identity and transitions to Authenticated. On failure nothing changes.
func (s *Store) Login(ctx context.Context, email, password string) error {
	email = sanitizer.Trim(email)
	if err := validator.Apply(
		validator.Required("email", email),
		validator.Required("password", password),
	); err != nil {
		return err
	}

	res, err := s.auth.Authenticate(ctx, email, password)
	if err != nil {
		s.logger.InfoContext(ctx, "login failed", logger.Error(err))
		return fmt.Errorf("login: %w", err)
	}

	id := Identity{ID: res.UserID, Email: email, IsAdmin: res.IsAdmin}
	encoded, err := id.encode()
	if err != nil {
		return errors.Join(ErrStorage, err)
	}
	if err := s.storage.Set(ctx, KeyToken, res.AccessToken); err != nil {
		return errors.Join(ErrStorage, err)
	}
	if err := s.storage.Set(ctx, KeyUser, encoded); err != nil {
		_ = s.storage.Delete(ctx, KeyToken)
		return errors.Join(ErrStorage, err)
	}

	s.mu.Lock()
	t, err := s.machine.Fire(eventLogin)
	if err == nil {
		s.identity = id
		s.token = res.AccessToken
	}
	s.mu.Unlock()
	if err != nil {
		return err
	}

	s.logger.InfoContext(ctx, "signed in", logger.UserID(id.ID))
	s.notify(ctx, Change{From: t.From, To: t.To, Identity: id})
	return nil
}

// Register creates an account and signs in with the same credentials.
// Backend refusal matches ErrRegistrationFailed; a failed follow-up sign-in
// matches ErrAutoLoginFailed. Both keep the API error in the chain.
func (s *Store) Register(ctx context.Context, profile apiclient.RegisterProfile) error {
	profile.Email = sanitizer.Trim(profile.Email)
	profile.FirstName = sanitizer.NormalizeText(profile.FirstName)
	profile.LastName = sanitizer.NormalizeText(profile.LastName)

	if err := ValidateProfile(profile); err != nil {
		return err
	}

	if _, err := s.auth.Register(ctx, profile); err != nil {
		s.logger.InfoContext(ctx, "registration failed", logger.Error(err))
		return fmt.Errorf("%w: %w", ErrRegistrationFailed, err)
	}

	if err := s.Login(ctx, profile.Email, profile.Password); err != nil {
		return fmt.Errorf("%w: %w", ErrAutoLoginFailed, err)
	}
	return nil
}

// ValidateProfile checks a sign-up form: every field is required and the
// password must be at least 8 characters.
func ValidateProfile(p apiclient.RegisterProfile) error {
	return validator.Apply(
		validator.Required("firstName", p.FirstName),
		validator.Required("lastName", p.LastName),
		validator.Required("email", p.Email),
		validator.Email("email", p.Email),
		validator.MinLen("password", p.Password, 8),
	)
}

// Logout clears the local session. The backend is not contacted and the
// content gate flag is kept. Logging out while signed out is a no-op.
func (s *Store) Logout(ctx context.Context) error {
	return s.signOut(ctx, eventLogout)
}

// Expire is the global handler for 401 responses: it tears the session down
// like Logout and then navigates to the sign-in page.
func (s *Store) Expire(ctx context.Context) {
	if err := s.signOut(ctx, eventExpire); err != nil {
		s.logger.ErrorContext(ctx, "failed to clear expired session", logger.Error(err))
	}
	s.navigator.Navigate(ctx, LoginPath)
}

func (s *Store) signOut(ctx context.Context, ev event) error {
	storeErr := s.storage.Delete(ctx, KeyToken, KeyUser)
	if storeErr != nil {
		storeErr = errors.Join(ErrStorage, storeErr)
	}

	s.mu.Lock()
	if !s.machine.CanFire(ev) {
		s.mu.Unlock()
		return storeErr
	}
	t, err := s.machine.Fire(ev)
	prev := s.identity
	s.identity = Identity{}
	s.token = ""
	s.mu.Unlock()
	if err != nil {
		return errors.Join(err, storeErr)
	}

	s.logger.InfoContext(ctx, "signed out", logger.UserID(prev.ID), logger.Event(string(ev)))
	s.notify(ctx, Change{From: t.From, To: t.To})
	return storeErr
}

// SetContentGateAccepted records the age confirmation. Accepting persists
// the flag; passing false only affects the current process.
func (s *Store) SetContentGateAccepted(ctx context.Context, accepted bool) error {
	if accepted {
		if err := s.storage.Set(ctx, KeyAgeVerified, gateAccepted); err != nil {
			return errors.Join(ErrStorage, err)
		}
	}

	s.mu.Lock()
	s.gate = accepted
	s.mu.Unlock()
	return nil
}

func (s *Store) ContentGateAccepted() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.gate
}

func (s *Store) Status() Status {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.machine.Current()
}

// IsAuthenticated is derived from Status on every call.
func (s *Store) IsAuthenticated() bool {
	return s.Status() == Authenticated
}

// Identity returns the signed-in user.
func (s *Store) Identity() (Identity, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if !s.machine.Is(Authenticated) {
		return Identity{}, false
	}
	return s.identity, true
}

// Token returns the in-memory credential, empty when signed out.
func (s *Store) Token() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.token
}

// Subscribe registers l for status transitions and returns a function that
// removes it. Listeners run synchronously, in registration order, on the
// goroutine that caused the transition. They must not call Login, Logout or
// Expire.
func (s *Store) Subscribe(l Listener) (unsubscribe func()) {
	if l == nil {
		return func() {}
	}

	s.mu.Lock()
	s.listenerSeq++
	id := s.listenerSeq
	s.listeners = append(s.listeners, listenerEntry{id: id, fn: l})
	s.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			s.mu.Lock()
			defer s.mu.Unlock()
			for i, e := range s.listeners {
				if e.id == id {
					s.listeners = append(s.listeners[:i:i], s.listeners[i+1:]...)
					return
				}
			}
		})
	}
}

func (s *Store) notify(ctx context.Context, c Change) {
	s.mu.RLock()
	listeners := make([]listenerEntry, len(s.listeners))
	copy(listeners, s.listeners)
	s.mu.RUnlock()

	for _, l := range listeners {
		l.fn(ctx, c)
	}
}
