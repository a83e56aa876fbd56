package storefront_test

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storefront"
	"github.com/dmitrymomot/storefront/internal/fakeapi"
	"github.com/dmitrymomot/storefront/pkg/apiclient"
	"github.com/dmitrymomot/storefront/pkg/checkout"
	"github.com/dmitrymomot/storefront/pkg/logger"
	"github.com/dmitrymomot/storefront/pkg/secrets"
	"github.com/dmitrymomot/storefront/pkg/session"
)

type recordingNavigator struct {
	mu    sync.Mutex
	paths []string
}

func (n *recordingNavigator) Navigate(_ context.Context, path string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.paths = append(n.paths, path)
}

func (n *recordingNavigator) Paths() []string {
	n.mu.Lock()
	defer n.mu.Unlock()
	return append([]string(nil), n.paths...)
}

func newBackend(t *testing.T) (*fakeapi.Server, string) {
	t.Helper()
	fake, err := fakeapi.New()
	require.NoError(t, err)
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	_, err = fake.AddUser("a@x.com", "secret123", false)
	require.NoError(t, err)
	return fake, srv.URL + "/api"
}

func baseConfig(apiURL string) storefront.Config {
	return storefront.Config{
		Env:         "development",
		APIURL:      apiURL,
		HTTPTimeout: 5 * time.Second,
		Storage:     storefront.StorageMemory,
		CatalogTTL:  time.Minute,
	}
}

func waitForCartFetch(t *testing.T, fake *fakeapi.Server, app *storefront.App, n int) {
	t.Helper()
	require.NoError(t, app.Cart.Wait(context.Background()))
	assert.GreaterOrEqual(t, fake.Calls(http.MethodGet, "/api/cart"), n)
}

func TestConfig_Validate(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		mutate  func(*storefront.Config)
		wantErr bool
	}{
		{"memory", func(*storefront.Config) {}, false},
		{"file", func(c *storefront.Config) { c.Storage = storefront.StorageFile; c.StoragePath = "state.json" }, false},
		{"file without path", func(c *storefront.Config) { c.Storage = storefront.StorageFile }, true},
		{"redis", func(c *storefront.Config) { c.Storage = storefront.StorageRedis }, false},
		{"unknown backend", func(c *storefront.Config) { c.Storage = "s3" }, true},
		{"missing api url", func(c *storefront.Config) { c.APIURL = "" }, true},
		{"encryption without device key", func(c *storefront.Config) { c.EncryptionKey = "abc" }, true},
		{"negative timeout", func(c *storefront.Config) { c.HTTPTimeout = -time.Second }, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			cfg := baseConfig("http://localhost:5000/api")
			tt.mutate(&cfg)
			err := cfg.Validate()
			if tt.wantErr {
				assert.ErrorIs(t, err, storefront.ErrInvalidConfig)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestLoadConfig(t *testing.T) {
	dir := t.TempDir()
	envFile := filepath.Join(dir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("STOREFRONT_CATALOG_TTL=90s\n"), 0o600))

	// Registered for restore, then removed so the .env file can set it.
	t.Setenv("STOREFRONT_CATALOG_TTL", "")
	require.NoError(t, os.Unsetenv("STOREFRONT_CATALOG_TTL"))

	t.Setenv("STOREFRONT_API_URL", "http://shop.test/api")
	t.Setenv("STOREFRONT_STORAGE", "memory")
	t.Setenv("APP_ENV", "production")
	t.Setenv("REDIS_URL", "redis://cache:6379/2")

	cfg, err := storefront.LoadConfig(envFile)
	require.NoError(t, err)

	assert.Equal(t, "http://shop.test/api", cfg.APIURL)
	assert.Equal(t, storefront.StorageMemory, cfg.Storage)
	assert.Equal(t, 90*time.Second, cfg.CatalogTTL)
	assert.Equal(t, 30*time.Second, cfg.HTTPTimeout)
	assert.Equal(t, "redis://cache:6379/2", cfg.Redis.ConnectionURL)
	assert.Equal(t, "production", cfg.Environment().String())
}

func TestApp_ShoppingFlow(t *testing.T) {
	t.Parallel()

	fake, apiURL := newBackend(t)
	nav := &recordingNavigator{}
	reg := prometheus.NewRegistry()

	app, err := storefront.New(context.Background(), baseConfig(apiURL),
		storefront.WithLogger(logger.Discard()),
		storefront.WithNavigator(nav),
		storefront.WithRegisterer(reg),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = app.Close() })
	ctx := context.Background()

	require.False(t, app.Session.IsAuthenticated())

	page, err := app.Catalog.Load(ctx, "")
	require.NoError(t, err)
	assert.NotEmpty(t, page.Categories)
	assert.NotEmpty(t, page.Products)

	require.NoError(t, app.Session.SetContentGateAccepted(ctx, true))
	require.NoError(t, app.Session.Login(ctx, "a@x.com", "secret123"))
	waitForCartFetch(t, fake, app, 1)

	require.NoError(t, app.Cart.AddItem(ctx, 7, 2))
	assert.Equal(t, 2, app.Cart.ItemCount())
	assert.Equal(t, "$39.98", app.Cart.FormattedTotal())
	assert.InDelta(t, 43.98, app.Checkout.Summary().Total, 1e-9)

	receipt, err := app.Checkout.PlaceOrder(ctx, checkout.ShippingForm{
		FirstName:     "Ann",
		LastName:      "Lee",
		Email:         "a@x.com",
		Address:       "1 Main St",
		City:          "Springfield",
		State:         "IL",
		ZipCode:       "62701",
		PaymentMethod: checkout.PaymentPayPal,
	})
	require.NoError(t, err)
	assert.NotZero(t, receipt.OrderID)
	assert.Zero(t, app.Cart.ItemCount())

	orders, err := app.Checkout.Orders(ctx)
	require.NoError(t, err)
	assert.Len(t, orders, 1)

	// Token expires mid-session.
	fake.RevokeTokens()
	_, err = app.Checkout.Orders(ctx)
	require.ErrorIs(t, err, apiclient.ErrAuthExpired)

	assert.False(t, app.Session.IsAuthenticated())
	assert.True(t, app.Session.ContentGateAccepted())
	assert.Equal(t, []string{session.LoginPath}, nav.Paths())

	expected := `
# HELP storefront_api_unauthorized_total Responses that triggered the global sign-out
# TYPE storefront_api_unauthorized_total counter
storefront_api_unauthorized_total 1
`
	assert.NoError(t, testutil.GatherAndCompare(reg, strings.NewReader(expected), "storefront_api_unauthorized_total"))
}

func TestApp_EncryptedFileStorage(t *testing.T) {
	t.Parallel()

	fake, apiURL := newBackend(t)
	appKey, err := secrets.GenerateKey()
	require.NoError(t, err)
	deviceKey, err := secrets.GenerateKey()
	require.NoError(t, err)

	cfg := baseConfig(apiURL)
	cfg.Storage = storefront.StorageFile
	cfg.StoragePath = filepath.Join(t.TempDir(), "profile", "state.json")
	cfg.EncryptionKey = secrets.EncodeKey(appKey)
	cfg.DeviceKey = secrets.EncodeKey(deviceKey)
	ctx := context.Background()

	first, err := storefront.New(ctx, cfg, storefront.WithLogger(logger.Discard()))
	require.NoError(t, err)
	require.NoError(t, first.Session.Login(ctx, "a@x.com", "secret123"))
	waitForCartFetch(t, fake, first, 1)
	token := first.Session.Token()
	require.NotEmpty(t, token)
	require.NoError(t, first.Close())

	raw, err := os.ReadFile(cfg.StoragePath)
	require.NoError(t, err)
	assert.NotContains(t, string(raw), token)
	assert.NotContains(t, string(raw), "a@x.com")

	second, err := storefront.New(ctx, cfg, storefront.WithLogger(logger.Discard()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = second.Close() })

	assert.True(t, second.Session.IsAuthenticated())
	id, ok := second.Session.Identity()
	require.True(t, ok)
	assert.Equal(t, "a@x.com", id.Email)
	waitForCartFetch(t, fake, second, 2)

	// A different device key cannot read the profile and starts signed out.
	otherKey, err := secrets.GenerateKey()
	require.NoError(t, err)
	cfg.DeviceKey = secrets.EncodeKey(otherKey)
	third, err := storefront.New(ctx, cfg, storefront.WithLogger(logger.Discard()))
	require.NoError(t, err)
	t.Cleanup(func() { _ = third.Close() })
	assert.False(t, third.Session.IsAuthenticated())
}

func TestApp_InvalidEncryptionKey(t *testing.T) {
	t.Parallel()

	cfg := baseConfig("http://localhost:5000/api")
	cfg.EncryptionKey = "not base64!"
	cfg.DeviceKey = "also not"

	_, err := storefront.New(context.Background(), cfg, storefront.WithLogger(logger.Discard()))
	assert.ErrorIs(t, err, storefront.ErrStorageSetup)
}

func TestApp_InvalidConfig(t *testing.T) {
	t.Parallel()

	_, err := storefront.New(context.Background(), storefront.Config{Storage: storefront.StorageMemory})
	assert.ErrorIs(t, err, storefront.ErrInvalidConfig)
}

func TestApp_CloseIsIdempotent(t *testing.T) {
	t.Parallel()

	_, apiURL := newBackend(t)
	app, err := storefront.New(context.Background(), baseConfig(apiURL), storefront.WithLogger(logger.Discard()))
	require.NoError(t, err)

	require.NoError(t, app.Close())
	require.NoError(t, app.Close())
	assert.NoError(t, app.Healthcheck(context.Background()))
}

func TestApp_LogOutput(t *testing.T) {
	t.Parallel()

	_, apiURL := newBackend(t)
	cfg := baseConfig(apiURL)
	cfg.LogLevel = "debug"

	var buf bytes.Buffer
	app, err := storefront.New(context.Background(), cfg, storefront.WithLogOutput(&buf))
	require.NoError(t, err)
	require.NoError(t, app.Close())

	out := buf.String()
	assert.Contains(t, out, "storefront client ready")
	for line := range strings.Lines(out) {
		assert.Equal(t, 1, strings.Count(line, "env=development"), line)
	}
}
