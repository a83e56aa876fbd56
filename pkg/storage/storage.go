package storage

import (
	"context"
	"errors"
)

// Storage defines the interface for durable client-side persistence.
type Storage interface {
	// Get returns the value stored under key or ErrNotFound.
	Get(ctx context.Context, key string) (string, error)

	// Set stores value under key, replacing any previous value.
	Set(ctx context.Context, key, value string) error

	// Delete removes the given keys. Missing keys are not an error.
	Delete(ctx context.Context, keys ...string) error
}

// Reader is the read-only half of Storage.
type Reader interface {
	Get(ctx context.Context, key string) (string, error)
}

// Lookup is Get that folds ErrNotFound into ok=false.
func Lookup(ctx context.Context, s Reader, key string) (value string, ok bool, err error) {
	value, err = s.Get(ctx, key)
	switch {
	case errors.Is(err, ErrNotFound):
		return "", false, nil
	case err != nil:
		return "", false, err
	default:
		return value, true, nil
	}
}
