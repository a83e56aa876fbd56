package storefront

import (
	"context"
	"fmt"

	"github.com/dmitrymomot/storefront/pkg/redis"
	"github.com/dmitrymomot/storefront/pkg/secrets"
	"github.com/dmitrymomot/storefront/pkg/storage"
)

// openStorage builds the configured backend, wrapped with encryption when a
// key is configured.
func (a *App) openStorage(ctx context.Context) (storage.Storage, error) {
	cfg := a.Config

	var backend storage.Storage
	switch cfg.Storage {
	case StorageMemory:
		backend = storage.NewMemoryStorage(nil)

	case StorageFile:
		fs, err := storage.OpenFile(cfg.StoragePath)
		if err != nil {
			return nil, err
		}
		backend = fs

	case StorageRedis:
		client, err := redis.Connect(ctx, cfg.Redis)
		if err != nil {
			return nil, err
		}
		a.closers = append(a.closers, client.Close)
		a.health = append(a.health, redis.Healthcheck(client))
		backend = storage.NewRedisStorage(client, storage.WithKeyPrefix(cfg.RedisKeyPrefix))

	default:
		return nil, fmt.Errorf("%w: unknown storage backend %q", ErrInvalidConfig, cfg.Storage)
	}

	if cfg.EncryptionKey == "" {
		return backend, nil
	}

	appKey, err := secrets.ParseKey(cfg.EncryptionKey)
	if err != nil {
		return nil, a.abort(err)
	}
	deviceKey, err := secrets.ParseKey(cfg.DeviceKey)
	if err != nil {
		return nil, a.abort(err)
	}
	cipher, err := secrets.NewCipher(appKey, deviceKey)
	if err != nil {
		return nil, a.abort(err)
	}
	return storage.NewEncryptedStorage(backend, cipher), nil
}

// abort releases anything opened so far and returns err with any close error.
func (a *App) abort(err error) error {
	if cerr := a.Close(); cerr != nil {
		return fmt.Errorf("%w (cleanup: %w)", err, cerr)
	}
	return err
}
