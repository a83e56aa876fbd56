package catalog

import (
	"log/slog"
	"time"
)

const (
	DefaultTTL          = 5 * time.Minute
	DefaultCapacity     = 32
	DefaultRelatedLimit = 4
)

// Option configures a Service.
type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// WithTTL sets how long listings are served from memory. Zero keeps them
// until Invalidate.
func WithTTL(ttl time.Duration) Option {
	return func(s *Service) {
		s.ttl = max(ttl, 0)
	}
}

// WithCapacity bounds the number of cached product listings.
func WithCapacity(n int) Option {
	return func(s *Service) {
		if n > 0 {
			s.capacity = n
		}
	}
}

// WithClock overrides time.Now for cache expiry.
func WithClock(now func() time.Time) Option {
	return func(s *Service) {
		if now != nil {
			s.now = now
		}
	}
}
