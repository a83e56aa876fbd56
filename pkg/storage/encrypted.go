package storage

import (
	"context"
	"errors"

	"github.com/dmitrymomot/storefront/pkg/secrets"
)

// EncryptedStorage seals values with a secrets.Cipher before handing them to
// the wrapped Storage. The storage key is used as associated data, so a sealed
// value moved to another key does not open.
type EncryptedStorage struct {
	next   Storage
	cipher *secrets.Cipher
}

// NewEncryptedStorage decorates next.
func NewEncryptedStorage(next Storage, cipher *secrets.Cipher) *EncryptedStorage {
	return &EncryptedStorage{next: next, cipher: cipher}
}

func (e *EncryptedStorage) Get(ctx context.Context, key string) (string, error) {
	sealed, err := e.next.Get(ctx, key)
	if err != nil {
		return "", err
	}

	plain, err := e.cipher.DecryptString(key, sealed)
	if err != nil {
		return "", errors.Join(ErrCorrupted, err)
	}
	return plain, nil
}

func (e *EncryptedStorage) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}

	sealed, err := e.cipher.EncryptString(key, value)
	if err != nil {
		return err
	}
	return e.next.Set(ctx, key, sealed)
}

func (e *EncryptedStorage) Delete(ctx context.Context, keys ...string) error {
	return e.next.Delete(ctx, keys...)
}
