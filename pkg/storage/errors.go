package storage

import "errors"

var (
	// ErrNotFound indicates no value is stored under the key.
	ErrNotFound = errors.New("storage.not_found")

	// ErrEmptyKey indicates an empty key was passed.
	ErrEmptyKey = errors.New("storage.empty_key")

	// ErrCorrupted indicates the backing file or value could not be decoded.
	ErrCorrupted = errors.New("storage.corrupted")

	// ErrBackend wraps failures of the underlying backend (disk, Redis).
	ErrBackend = errors.New("storage.backend_failure")
)
