package cart

import (
	"log/slog"

	"github.com/dmitrymomot/storefront/pkg/money"
)

// Option configures a Store.
type Option func(*Store)

func WithLogger(l *slog.Logger) Option {
	return func(s *Store) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithMoneyFormatter overrides the USD formatter used by FormattedTotal.
func WithMoneyFormatter(f *money.Formatter) Option {
	return func(s *Store) {
		if f != nil {
			s.money = f
		}
	}
}
