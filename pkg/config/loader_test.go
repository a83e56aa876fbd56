package config_test

import (
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storefront/pkg/config"
)

type testConfig struct {
	URL     string        `env:"CFG_TEST_URL" envDefault:"http://localhost:5000/api"`
	Timeout time.Duration `env:"CFG_TEST_TIMEOUT" envDefault:"30s"`
	Debug   bool          `env:"CFG_TEST_DEBUG" envDefault:"false"`
}

type requiredConfig struct {
	Key string `env:"CFG_TEST_REQUIRED,required"`
}

func TestLoad_Defaults(t *testing.T) {
	os.Unsetenv("CFG_TEST_URL")
	os.Unsetenv("CFG_TEST_TIMEOUT")

	cfg, err := config.Load[testConfig](filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "http://localhost:5000/api", cfg.URL)
	assert.Equal(t, 30*time.Second, cfg.Timeout)
	assert.False(t, cfg.Debug)
}

func TestLoad_FromEnvironment(t *testing.T) {
	t.Setenv("CFG_TEST_URL", "https://shop.example.com/api")
	t.Setenv("CFG_TEST_TIMEOUT", "5s")
	t.Setenv("CFG_TEST_DEBUG", "true")

	cfg, err := config.Load[testConfig](filepath.Join(t.TempDir(), "missing.env"))
	require.NoError(t, err)
	assert.Equal(t, "https://shop.example.com/api", cfg.URL)
	assert.Equal(t, 5*time.Second, cfg.Timeout)
	assert.True(t, cfg.Debug)
}

func TestLoad_FromDotEnvFile(t *testing.T) {
	// t.Setenv registers cleanup; the value is then cleared so the file wins.
	t.Setenv("CFG_TEST_REQUIRED", "")
	os.Unsetenv("CFG_TEST_REQUIRED")

	path := filepath.Join(t.TempDir(), ".env")
	require.NoError(t, os.WriteFile(path, []byte("CFG_TEST_REQUIRED=from-file\n"), 0o600))

	cfg, err := config.Load[requiredConfig](path)
	require.NoError(t, err)
	assert.Equal(t, "from-file", cfg.Key)
}

func TestLoad_MissingRequired(t *testing.T) {
	t.Setenv("CFG_TEST_REQUIRED", "")
	os.Unsetenv("CFG_TEST_REQUIRED")

	_, err := config.Load[requiredConfig](filepath.Join(t.TempDir(), "missing.env"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, config.ErrParsingConfig))
}

func TestMustLoad_Panics(t *testing.T) {
	t.Setenv("CFG_TEST_REQUIRED", "")
	os.Unsetenv("CFG_TEST_REQUIRED")

	assert.Panics(t, func() {
		config.MustLoad[requiredConfig](filepath.Join(t.TempDir(), "missing.env"))
	})
}
