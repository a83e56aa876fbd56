package storage

import (
	"context"
	"errors"

	"github.com/redis/go-redis/v9"
)

const defaultRedisPrefix = "storefront:"

// RedisStorage implements Storage on top of a go-redis client. Keys are
// namespaced with a prefix (typically including a device or profile id) so one
// Redis database can hold many client profiles.
type RedisStorage struct {
	db     redis.UniversalClient
	prefix string
}

// RedisOption configures RedisStorage.
type RedisOption func(*RedisStorage)

// WithKeyPrefix replaces the default "storefront:" prefix.
func WithKeyPrefix(prefix string) RedisOption {
	return func(s *RedisStorage) {
		s.prefix = prefix
	}
}

// NewRedisStorage wraps an already connected client. The client is owned by the
// caller and is not closed by RedisStorage.
func NewRedisStorage(client redis.UniversalClient, opts ...RedisOption) *RedisStorage {
	s := &RedisStorage{db: client, prefix: defaultRedisPrefix}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *RedisStorage) key(k string) string { return s.prefix + k }

func (s *RedisStorage) Get(ctx context.Context, key string) (string, error) {
	if key == "" {
		return "", ErrEmptyKey
	}

	val, err := s.db.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	if err != nil {
		return "", errors.Join(ErrBackend, err)
	}
	return val, nil
}

// Set stores the value without expiration: persisted session state is only
// removed by an explicit Delete.
func (s *RedisStorage) Set(ctx context.Context, key, value string) error {
	if key == "" {
		return ErrEmptyKey
	}

	if err := s.db.Set(ctx, s.key(key), value, 0).Err(); err != nil {
		return errors.Join(ErrBackend, err)
	}
	return nil
}

func (s *RedisStorage) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	prefixed := make([]string, 0, len(keys))
	for _, k := range keys {
		if k != "" {
			prefixed = append(prefixed, s.key(k))
		}
	}
	if len(prefixed) == 0 {
		return nil
	}

	if err := s.db.Del(ctx, prefixed...).Err(); err != nil {
		return errors.Join(ErrBackend, err)
	}
	return nil
}
