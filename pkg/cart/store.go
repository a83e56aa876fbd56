package cart

import (
	"context"
	"fmt"
	"log/slog"
	"sync"

	"github.com/dmitrymomot/storefront/pkg/apiclient"
	"github.com/dmitrymomot/storefront/pkg/broadcast"
	"github.com/dmitrymomot/storefront/pkg/logger"
	"github.com/dmitrymomot/storefront/pkg/money"
	"github.com/dmitrymomot/storefront/pkg/session"
	"github.com/dmitrymomot/storefront/pkg/validator"
)

// API is the cart subset of the API client.
type API interface {
	GetCart(ctx context.Context) (*apiclient.CartSnapshot, error)
	AddCartItem(ctx context.Context, productID int64, quantity int) (*apiclient.Ack, error)
	UpdateCartItem(ctx context.Context, itemID int64, quantity int) (*apiclient.Ack, error)
	RemoveCartItem(ctx context.Context, itemID int64) (*apiclient.Ack, error)
}

// Session is the read-only view of the session the cart depends on.
type Session interface {
	IsAuthenticated() bool
	Subscribe(l session.Listener) (unsubscribe func())
}

// Store mirrors the server-side cart of the signed-in user.
type Store struct {
	api     API
	auth    Session
	logger  *slog.Logger
	money   *money.Formatter
	updates *broadcast.Broadcaster[Snapshot]

	life        context.Context
	stop        context.CancelFunc
	wg          sync.WaitGroup
	unsubscribe func()

	mu       sync.RWMutex
	snap     Snapshot
	gen      uint64
	inflight int
	idle     chan struct{} // closed while inflight == 0
	closed   bool
}

// New creates a cart store bound to the session. When the session is
// already authenticated the first fetch starts in the background.
func New(api API, auth Session, opts ...Option) (*Store, error) {
	if api == nil {
		return nil, ErrNoAPI
	}
	if auth == nil {
		return nil, ErrNoSession
	}

	s := &Store{
		api:     api,
		auth:    auth,
		logger:  slog.Default(),
		money:   money.USD(),
		updates: broadcast.New[Snapshot](),
		snap:    emptySnapshot(),
		idle:    make(chan struct{}),
	}
	close(s.idle)
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("cart"))
	s.life, s.stop = context.WithCancel(context.Background())

	s.updates.Publish(s.snap.clone())
	s.unsubscribe = auth.Subscribe(s.onSessionChange)

	if auth.IsAuthenticated() {
		s.fetchAsync(s.life)
	}
	return s, nil
}

func (s *Store) onSessionChange(ctx context.Context, c session.Change) {
	switch {
	case c.SignedOut():
		s.reset()
		s.logger.DebugContext(ctx, "cart cleared on sign-out")
	case c.SignedIn():
		if c.From == session.Authenticated {
			// Another identity; drop the previous user's lines first.
			s.reset()
		}
		s.fetchAsync(ctx)
	}
}

// fetchAsync runs a fetch that outlives ctx's cancellation but not Close.
// The fetch counts as in flight from the moment it is scheduled.
func (s *Store) fetchAsync(ctx context.Context) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return
	}

	gen := s.gen
	s.begin()

	ctx, cancel := context.WithCancel(context.WithoutCancel(ctx))
	stopAfter := context.AfterFunc(s.life, cancel)

	s.wg.Add(1)
	go func() {
		defer s.wg.Done()
		defer stopAfter()
		defer cancel()

		if err := s.load(ctx, gen); err != nil {
			s.logger.ErrorContext(ctx, "cart fetch failed", logger.Error(err))
		}
	}()
}

func (s *Store) fetch(ctx context.Context) error {
	s.mu.Lock()
	gen := s.gen
	s.begin()
	s.mu.Unlock()

	return s.load(ctx, gen)
}

// load replaces the snapshot with the backend's. A response that arrives
// after a Clear or sign-out (gen changed) is discarded; otherwise the last
// response wins.
func (s *Store) load(ctx context.Context, gen uint64) error {
	res, err := s.api.GetCart(ctx)

	s.mu.Lock()
	defer s.mu.Unlock()
	s.end()

	if err != nil {
		return err
	}
	if gen != s.gen {
		s.logger.DebugContext(ctx, "discarding stale cart snapshot")
		return nil
	}

	s.snap = fromAPI(res)
	s.updates.Publish(s.snap.clone())
	s.logger.DebugContext(ctx, "cart synced", logger.ItemCount(s.snap.ItemCount()))
	return nil
}

// begin and end track in-flight work; both require s.mu.
func (s *Store) begin() {
	if s.inflight == 0 {
		s.idle = make(chan struct{})
	}
	s.inflight++
}

func (s *Store) end() {
	s.inflight--
	if s.inflight == 0 {
		close(s.idle)
	}
}

// Wait blocks until no fetch or mutation is in flight.
func (s *Store) Wait(ctx context.Context) error {
	s.mu.RLock()
	idle := s.idle
	s.mu.RUnlock()

	select {
	case <-idle:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// Refresh refetches the cart. It is a no-op when signed out.
func (s *Store) Refresh(ctx context.Context) error {
	if !s.auth.IsAuthenticated() {
		return nil
	}
	return s.fetch(ctx)
}

// AddItem adds quantity units of a product and resyncs the cart.
func (s *Store) AddItem(ctx context.Context, productID int64, quantity int) error {
	if err := validateQuantity(quantity); err != nil {
		return err
	}
	return s.mutate(ctx, "add item", func(ctx context.Context) error {
		_, err := s.api.AddCartItem(ctx, productID, quantity)
		return err
	})
}

// UpdateItem sets the quantity of a cart line and resyncs the cart.
// Use RemoveItem to drop a line; zero is not a valid quantity.
func (s *Store) UpdateItem(ctx context.Context, itemID int64, quantity int) error {
	if err := validateQuantity(quantity); err != nil {
		return err
	}
	return s.mutate(ctx, "update item", func(ctx context.Context) error {
		_, err := s.api.UpdateCartItem(ctx, itemID, quantity)
		return err
	})
}

// RemoveItem deletes a cart line and resyncs the cart.
func (s *Store) RemoveItem(ctx context.Context, itemID int64) error {
	return s.mutate(ctx, "remove item", func(ctx context.Context) error {
		_, err := s.api.RemoveCartItem(ctx, itemID)
		return err
	})
}

// mutate calls the backend and then refetches the whole cart, also when the
// call failed, so the mirror always reflects the last server response.
// Overlapping calls are not serialized.
func (s *Store) mutate(ctx context.Context, op string, call func(context.Context) error) error {
	s.mu.Lock()
	s.begin()
	s.mu.Unlock()
	defer func() {
		s.mu.Lock()
		s.end()
		s.mu.Unlock()
	}()

	callErr := call(ctx)
	if callErr != nil {
		s.logger.WarnContext(ctx, "cart update failed", logger.Op(op), logger.Error(callErr))
	}
	refreshErr := s.Refresh(ctx)
	if refreshErr != nil {
		s.logger.WarnContext(ctx, "cart refresh failed", logger.Op(op), logger.Error(refreshErr))
	}

	switch {
	case callErr != nil:
		return fmt.Errorf("%s: %w", op, callErr)
	case refreshErr != nil:
		return fmt.Errorf("%s: refresh: %w", op, refreshErr)
	}
	return nil
}

func validateQuantity(quantity int) error {
	if err := validator.Apply(validator.Min("quantity", quantity, 1)); err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidQuantity, err)
	}
	return nil
}

// Clear empties the local cart without contacting the backend.
func (s *Store) Clear() {
	s.reset()
}

func (s *Store) reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.gen++
	s.snap = emptySnapshot()
	s.updates.Publish(s.snap.clone())
}

// Snapshot returns a copy of the current cart.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.clone()
}

func (s *Store) Items() []Item {
	return s.Snapshot().Items
}

// Total is the backend-reported total, never a local sum.
func (s *Store) Total() float64 {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.Total
}

// ItemCount is the sum of quantities, computed on every call.
func (s *Store) ItemCount() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.snap.ItemCount()
}

// FormattedTotal renders Total for display, e.g. "$39.98".
func (s *Store) FormattedTotal() string {
	return s.money.Format(s.Total())
}

// Loading reports whether a fetch or mutation is in flight.
func (s *Store) Loading() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.inflight > 0
}

// Watch streams snapshots as they are applied, starting with the current
// one. Slow readers only see the newest value. The channel closes when ctx
// is done or the store is closed.
func (s *Store) Watch(ctx context.Context) <-chan Snapshot {
	return s.updates.Subscribe(ctx).Receive()
}

// Close detaches from the session, cancels background fetches and waits
// for them to return.
func (s *Store) Close() error {
	s.mu.Lock()
	if s.closed {
		s.mu.Unlock()
		return nil
	}
	s.closed = true
	s.mu.Unlock()

	s.unsubscribe()
	s.stop()
	s.wg.Wait()
	return s.updates.Close()
}
