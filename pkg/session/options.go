package session

import (
	"context"
	"log/slog"
)

// LoginPath is where Expire navigates.
const LoginPath = "/login"

// Navigator moves the view layer to another route.
type Navigator interface {
	Navigate(ctx context.Context, path string)
}

// NavigatorFunc adapts a function to Navigator.
type NavigatorFunc func(ctx context.Context, path string)

func (f NavigatorFunc) Navigate(ctx context.Context, path string) {
	f(ctx, path)
}

// Listener is notified after every status transition.
type Listener func(ctx context.Context, change Change)

// Option configures a Store.
type Option func(*Store)

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithNavigator sets the navigator used by Expire.
func WithNavigator(n Navigator) Option {
	return func(s *Store) {
		if n != nil {
			s.navigator = n
		}
	}
}
