package broadcast

import (
	"context"
	"sync"
)

// Subscriber receives values published on a Broadcaster.
type Subscriber[T any] interface {
	// Receive returns the channel values are delivered on. It is closed when
	// the subscriber or the broadcaster is closed.
	Receive() <-chan T

	// Close detaches the subscriber. Close is idempotent.
	Close() error
}

type subscriber[T any] struct {
	mu     sync.Mutex
	ch     chan T
	stop   chan struct{}
	closed bool
	detach func()
}

func newSubscriber[T any]() *subscriber[T] {
	return &subscriber[T]{
		ch:   make(chan T, 1),
		stop: make(chan struct{}),
	}
}

func (s *subscriber[T]) Receive() <-chan T {
	return s.ch
}

func (s *subscriber[T]) Close() error {
	if s.shutdown() && s.detach != nil {
		s.detach()
	}
	return nil
}

// shutdown closes the channels and reports whether this call did it.
func (s *subscriber[T]) shutdown() bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return false
	}
	s.closed = true
	close(s.ch)
	close(s.stop)
	return true
}

// send replaces any undelivered value with v. Holding mu makes this the only
// writer, so the push after draining cannot block.
func (s *subscriber[T]) send(v T) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.closed {
		return
	}

	select {
	case <-s.ch:
	default:
	}
	s.ch <- v
}

// Broadcaster fans the most recent value out to every subscriber.
// All methods are safe for concurrent use.
type Broadcaster[T any] struct {
	mu          sync.RWMutex
	subscribers map[*subscriber[T]]struct{}
	latest      T
	hasLatest   bool
	closed      bool
	cleanupWg   sync.WaitGroup
}

// New creates an empty broadcaster.
func New[T any]() *Broadcaster[T] {
	return &Broadcaster[T]{
		subscribers: make(map[*subscriber[T]]struct{}),
	}
}

// Subscribe registers a subscriber. If a value was already published it is
// delivered immediately. The subscription ends when ctx is cancelled.
// Subscribing to a closed broadcaster returns a closed subscriber.
func (b *Broadcaster[T]) Subscribe(ctx context.Context) Subscriber[T] {
	b.mu.Lock()
	defer b.mu.Unlock()

	sub := newSubscriber[T]()
	if b.closed {
		sub.shutdown()
		return sub
	}

	sub.detach = func() { b.remove(sub) }
	b.subscribers[sub] = struct{}{}
	if b.hasLatest {
		sub.send(b.latest)
	}

	if ctx.Done() != nil {
		b.cleanupWg.Add(1)
		go func() {
			defer b.cleanupWg.Done()
			select {
			case <-ctx.Done():
				_ = sub.Close()
			case <-sub.stop:
			}
		}()
	}

	return sub
}

// Publish records v as the latest value and delivers it to all subscribers.
// Publishing never blocks on slow consumers; they observe only the newest value.
func (b *Broadcaster[T]) Publish(v T) {
	b.mu.Lock()
	defer b.mu.Unlock()

	if b.closed {
		return
	}

	b.latest = v
	b.hasLatest = true
	for sub := range b.subscribers {
		sub.send(v)
	}
}

// Latest returns the last published value.
func (b *Broadcaster[T]) Latest() (T, bool) {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return b.latest, b.hasLatest
}

// Subscribers counts active subscriptions.
func (b *Broadcaster[T]) Subscribers() int {
	b.mu.RLock()
	defer b.mu.RUnlock()
	return len(b.subscribers)
}

// Close closes every subscriber. It is safe to call Close multiple times.
func (b *Broadcaster[T]) Close() error {
	b.mu.Lock()
	if b.closed {
		b.mu.Unlock()
		return nil
	}

	b.closed = true
	for sub := range b.subscribers {
		sub.shutdown()
	}
	clear(b.subscribers)
	b.mu.Unlock()

	// Cleanup goroutines exit once their subscriber's stop channel closes.
	b.cleanupWg.Wait()
	return nil
}

func (b *Broadcaster[T]) remove(sub *subscriber[T]) {
	b.mu.Lock()
	defer b.mu.Unlock()
	delete(b.subscribers, sub)
}
