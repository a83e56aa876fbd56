package storefront

import (
	"errors"
	"fmt"
	"time"

	"github.com/dmitrymomot/storefront/pkg/config"
	"github.com/dmitrymomot/storefront/pkg/environment"
	"github.com/dmitrymomot/storefront/pkg/redis"
)

// StorageKind selects the durable storage backend.
type StorageKind string

const (
	StorageMemory StorageKind = "memory"
	StorageFile   StorageKind = "file"
	StorageRedis  StorageKind = "redis"
)

// Config is the client configuration, read from the environment.
type Config struct {
	Env      string `env:"APP_ENV" envDefault:"development"`
	LogLevel string `env:"STOREFRONT_LOG_LEVEL"`

	APIURL      string        `env:"STOREFRONT_API_URL" envDefault:"http://localhost:5000/api"`
	HTTPTimeout time.Duration `env:"STOREFRONT_HTTP_TIMEOUT" envDefault:"30s"`

	Storage        StorageKind `env:"STOREFRONT_STORAGE" envDefault:"file"`
	StoragePath    string      `env:"STOREFRONT_STORAGE_PATH" envDefault:".storefront/state.json"`
	RedisKeyPrefix string      `env:"STOREFRONT_REDIS_PREFIX" envDefault:"storefront:"`

	// Both keys are base64; encryption is on when EncryptionKey is set.
	EncryptionKey string `env:"STOREFRONT_ENCRYPTION_KEY"`
	DeviceKey     string `env:"STOREFRONT_DEVICE_KEY"`

	CatalogTTL time.Duration `env:"STOREFRONT_CATALOG_TTL" envDefault:"5m"`

	Redis redis.Config
}

// LoadConfig reads .env files (if present) and the process environment.
func LoadConfig(files ...string) (Config, error) {
	cfg, err := config.Load[Config](files...)
	if err != nil {
		return Config{}, err
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Environment parses Env.
func (c Config) Environment() environment.Environment {
	return environment.Parse(c.Env)
}

func (c Config) Validate() error {
	var errs []error
	if c.APIURL == "" {
		errs = append(errs, errors.New("STOREFRONT_API_URL is required"))
	}
	switch c.Storage {
	case StorageMemory, StorageRedis:
	case StorageFile:
		if c.StoragePath == "" {
			errs = append(errs, errors.New("STOREFRONT_STORAGE_PATH is required for file storage"))
		}
	default:
		errs = append(errs, fmt.Errorf("unknown storage backend %q", c.Storage))
	}
	if c.EncryptionKey != "" && c.DeviceKey == "" {
		errs = append(errs, errors.New("STOREFRONT_DEVICE_KEY is required when encryption is enabled"))
	}
	if c.HTTPTimeout < 0 || c.CatalogTTL < 0 {
		errs = append(errs, errors.New("durations must not be negative"))
	}

	if len(errs) > 0 {
		return errors.Join(append([]error{ErrInvalidConfig}, errs...)...)
	}
	return nil
}
