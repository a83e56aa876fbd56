package storage_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storefront/pkg/secrets"
	"github.com/dmitrymomot/storefront/pkg/storage"
)

// runStorageContract exercises the behaviour every backend must share.
func runStorageContract(t *testing.T, s storage.Storage) {
	t.Helper()
	ctx := context.Background()

	_, err := s.Get(ctx, "token")
	require.ErrorIs(t, err, storage.ErrNotFound)

	require.NoError(t, s.Set(ctx, "token", "abc"))
	require.NoError(t, s.Set(ctx, "user", `{"id":1}`))
	require.NoError(t, s.Set(ctx, "ageVerified", "true"))

	v, err := s.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "abc", v)

	require.NoError(t, s.Set(ctx, "token", "def"))
	v, err = s.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "def", v)

	require.NoError(t, s.Set(ctx, "empty", ""))
	v, err = s.Get(ctx, "empty")
	require.NoError(t, err)
	assert.Equal(t, "", v)

	require.NoError(t, s.Delete(ctx, "token", "user", "never-set"))
	_, err = s.Get(ctx, "token")
	assert.ErrorIs(t, err, storage.ErrNotFound)
	_, err = s.Get(ctx, "user")
	assert.ErrorIs(t, err, storage.ErrNotFound)

	v, err = s.Get(ctx, "ageVerified")
	require.NoError(t, err)
	assert.Equal(t, "true", v)

	assert.ErrorIs(t, s.Set(ctx, "", "x"), storage.ErrEmptyKey)
	_, err = s.Get(ctx, "")
	assert.ErrorIs(t, err, storage.ErrEmptyKey)
}

func TestMemoryStorage(t *testing.T) {
	t.Parallel()
	runStorageContract(t, storage.NewMemoryStorage(nil))
}

func TestMemoryStorage_SeedIsCopied(t *testing.T) {
	t.Parallel()
	seed := map[string]string{"token": "t"}
	s := storage.NewMemoryStorage(seed)
	seed["token"] = "changed"

	v, err := s.Get(context.Background(), "token")
	require.NoError(t, err)
	assert.Equal(t, "t", v)
	assert.Equal(t, map[string]string{"token": "t"}, s.Snapshot())
}

func TestFileStorage(t *testing.T) {
	t.Parallel()
	s, err := storage.OpenFile(filepath.Join(t.TempDir(), "nested", "state.json"))
	require.NoError(t, err)
	runStorageContract(t, s)
}

func TestFileStorage_SurvivesReopen(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "state.json")

	s, err := storage.OpenFile(path)
	require.NoError(t, err)
	require.NoError(t, s.Set(ctx, "token", "persisted"))

	info, err := os.Stat(path)
	require.NoError(t, err)
	assert.Equal(t, os.FileMode(0o600), info.Mode().Perm())

	reopened, err := storage.OpenFile(path)
	require.NoError(t, err)
	v, err := reopened.Get(ctx, "token")
	require.NoError(t, err)
	assert.Equal(t, "persisted", v)
}

func TestFileStorage_Corrupted(t *testing.T) {
	t.Parallel()
	path := filepath.Join(t.TempDir(), "state.json")
	require.NoError(t, os.WriteFile(path, []byte("{not json"), 0o600))

	_, err := storage.OpenFile(path)
	assert.ErrorIs(t, err, storage.ErrCorrupted)
}

func newCipher(t *testing.T) *secrets.Cipher {
	t.Helper()
	appKey, err := secrets.GenerateKey()
	require.NoError(t, err)
	deviceKey, err := secrets.GenerateKey()
	require.NoError(t, err)
	c, err := secrets.NewCipher(appKey, deviceKey)
	require.NoError(t, err)
	return c
}

func TestEncryptedStorage(t *testing.T) {
	t.Parallel()
	runStorageContract(t, storage.NewEncryptedStorage(storage.NewMemoryStorage(nil), newCipher(t)))
}

func TestEncryptedStorage_ValuesAreSealed(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	backend := storage.NewMemoryStorage(nil)
	s := storage.NewEncryptedStorage(backend, newCipher(t))

	require.NoError(t, s.Set(ctx, "token", "bearer-secret"))

	raw := backend.Snapshot()["token"]
	assert.NotEmpty(t, raw)
	assert.NotContains(t, raw, "bearer-secret")

	// A sealed value copied under another key must not open.
	require.NoError(t, backend.Set(ctx, "user", raw))
	_, err := s.Get(ctx, "user")
	assert.ErrorIs(t, err, storage.ErrCorrupted)
}

func TestLookup(t *testing.T) {
	t.Parallel()
	ctx := context.Background()
	s := storage.NewMemoryStorage(map[string]string{"token": "abc"})

	v, ok, err := storage.Lookup(ctx, s, "token")
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "abc", v)

	_, ok, err = storage.Lookup(ctx, s, "user")
	require.NoError(t, err)
	assert.False(t, ok)

	_, _, err = storage.Lookup(ctx, s, "")
	assert.ErrorIs(t, err, storage.ErrEmptyKey)
}
