package apiclient_test

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dmitrymomot/storefront/internal/fakeapi"
	"github.com/dmitrymomot/storefront/pkg/apiclient"
	"github.com/dmitrymomot/storefront/pkg/logger"
	"github.com/dmitrymomot/storefront/pkg/requestid"
)

type staticToken struct {
	token atomic.Value
}

func (s *staticToken) Set(token string) { s.token.Store(token) }

func (s *staticToken) Token(context.Context) (string, error) {
	v, _ := s.token.Load().(string)
	return v, nil
}

type headerRecorder struct {
	mu     sync.Mutex
	header http.Header
}

func (h *headerRecorder) record(r *http.Request) {
	h.mu.Lock()
	defer h.mu.Unlock()
	h.header = r.Header.Clone()
}

func (h *headerRecorder) Get(key string) string {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.header.Get(key)
}

func newFake(t *testing.T) (*fakeapi.Server, string) {
	t.Helper()
	fake, err := fakeapi.New()
	require.NoError(t, err)
	srv := httptest.NewServer(fake)
	t.Cleanup(srv.Close)
	return fake, srv.URL + "/api"
}

func TestNew(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		baseURL string
		wantErr bool
	}{
		{"valid http", "http://localhost:5000/api", false},
		{"valid https trailing slash", "https://shop.example.com/api/", false},
		{"empty", "", true},
		{"bad scheme", "ftp://example.com", true},
		{"no host", "http:///api", true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			c, err := apiclient.New(tt.baseURL)
			if tt.wantErr {
				assert.ErrorIs(t, err, apiclient.ErrInvalidBaseURL)
				assert.Nil(t, c)
				return
			}
			require.NoError(t, err)
			assert.False(t, strings.HasSuffix(c.BaseURL(), "/"))
		})
	}
}

func TestClient_Headers(t *testing.T) {
	t.Parallel()

	got := &headerRecorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.record(r)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	tokens := &staticToken{}
	c, err := apiclient.New(srv.URL+"/api",
		apiclient.WithTokenSource(tokens),
		apiclient.WithUserAgent("storefront-test"),
		apiclient.WithHeader("X-Store", "main"),
		apiclient.WithLogger(logger.Discard()),
	)
	require.NoError(t, err)

	t.Run("anonymous", func(t *testing.T) {
		_, err := c.ListCategories(context.Background())
		require.NoError(t, err)
		assert.Empty(t, got.Get("Authorization"))
		assert.Equal(t, "application/json", got.Get("Accept"))
		assert.Empty(t, got.Get("Content-Type"))
		assert.Equal(t, "storefront-test", got.Get("User-Agent"))
		assert.Equal(t, "main", got.Get("X-Store"))
		assert.True(t, requestid.IsValid(got.Get(requestid.Header)))
	})

	t.Run("bearer when token present", func(t *testing.T) {
		tokens.Set("abc")
		ctx := requestid.WithContext(context.Background(), "req-42")
		_, err := c.ListCategories(ctx)
		require.NoError(t, err)
		assert.Equal(t, "Bearer abc", got.Get("Authorization"))
		assert.Equal(t, "req-42", got.Get(requestid.Header))
	})
}

func TestClient_TokenSourceErrorFallsBackToAnonymous(t *testing.T) {
	t.Parallel()

	got := &headerRecorder{}
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		got.record(r)
		_, _ = w.Write([]byte(`[]`))
	}))
	defer srv.Close()

	c, err := apiclient.New(srv.URL,
		apiclient.WithLogger(logger.Discard()),
		apiclient.WithTokenSource(apiclient.TokenFunc(func(context.Context) (string, error) {
			return "", errors.New("storage offline")
		})),
	)
	require.NoError(t, err)

	_, err = c.ListOrders(context.Background())
	require.NoError(t, err)
	assert.Empty(t, got.Get("Authorization"))
}

func TestClient_ErrorKinds(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		status  int
		body    string
		kind    error
		message string
	}{
		{"validation", http.StatusConflict, `{"message":"User already exists"}`, apiclient.ErrValidation, "User already exists"},
		{"not found", http.StatusNotFound, `{"message":"Item not found in cart"}`, apiclient.ErrValidation, "Item not found in cart"},
		{"server with message", http.StatusInternalServerError, `{"message":"db down"}`, apiclient.ErrServer, "db down"},
		{"server without body", http.StatusBadGateway, ``, apiclient.ErrServer, "Something went wrong. Please try again later."},
		{"server html body", http.StatusServiceUnavailable, `<html>oops</html>`, apiclient.ErrServer, "Something went wrong. Please try again later."},
		{"auth expired flask msg", http.StatusUnauthorized, `{"msg":"Token has expired"}`, apiclient.ErrAuthExpired, "Token has expired"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tt.status)
				_, _ = w.Write([]byte(tt.body))
			}))
			defer srv.Close()

			c, err := apiclient.New(srv.URL, apiclient.WithLogger(logger.Discard()))
			require.NoError(t, err)

			_, err = c.Register(context.Background(), apiclient.RegisterProfile{Email: "a@x.com", Password: "secret123"})
			require.Error(t, err)
			assert.ErrorIs(t, err, tt.kind)
			assert.Equal(t, tt.message, apiclient.Message(err))

			var apiErr *apiclient.Error
			require.ErrorAs(t, err, &apiErr)
			assert.Equal(t, tt.status, apiErr.StatusCode)
			assert.Equal(t, "auth.register", apiErr.Op)
		})
	}
}

func TestClient_NetworkError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	c, err := apiclient.New(url, apiclient.WithLogger(logger.Discard()))
	require.NoError(t, err)

	_, err = c.ListProducts(context.Background(), "")
	assert.ErrorIs(t, err, apiclient.ErrNetwork)
	assert.False(t, apiclient.IsAuthExpired(err))
	assert.Contains(t, apiclient.Message(err), "Unable to reach the store")
}

func TestClient_Timeout(t *testing.T) {
	t.Parallel()

	release := make(chan struct{})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		select {
		case <-release:
		case <-r.Context().Done():
		}
	}))
	defer srv.Close()
	defer close(release)

	c, err := apiclient.New(srv.URL, apiclient.WithTimeout(50*time.Millisecond), apiclient.WithLogger(logger.Discard()))
	require.NoError(t, err)

	_, err = c.ListCategories(context.Background())
	assert.ErrorIs(t, err, apiclient.ErrNetwork)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestClient_DecodeError(t *testing.T) {
	t.Parallel()

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"items": "nope"}`))
	}))
	defer srv.Close()

	c, err := apiclient.New(srv.URL, apiclient.WithLogger(logger.Discard()))
	require.NoError(t, err)

	_, err = c.GetCart(context.Background())
	assert.ErrorIs(t, err, apiclient.ErrDecode)
}

func TestClient_UnauthorizedHandler(t *testing.T) {
	t.Parallel()

	fake, baseURL := newFake(t)
	_, err := fake.AddUser("a@x.com", "secret123", false)
	require.NoError(t, err)

	tokens := &staticToken{}
	var fired atomic.Int32
	c, err := apiclient.New(baseURL,
		apiclient.WithTokenSource(tokens),
		apiclient.WithLogger(logger.Discard()),
		apiclient.WithUnauthorizedHandler(func(context.Context) { fired.Add(1) }),
	)
	require.NoError(t, err)

	ctx := context.Background()
	auth, err := c.Authenticate(ctx, "a@x.com", "secret123")
	require.NoError(t, err)
	tokens.Set(auth.AccessToken)

	_, err = c.GetCart(ctx)
	require.NoError(t, err)
	assert.Equal(t, int32(0), fired.Load())

	fake.RevokeTokens()
	_, err = c.AddCartItem(ctx, 1, 1)
	require.Error(t, err)
	assert.True(t, apiclient.IsAuthExpired(err))
	assert.Equal(t, int32(1), fired.Load())

	// Any call that gets a 401 triggers the handler, including sign-in.
	_, err = c.Authenticate(ctx, "a@x.com", "wrong")
	assert.ErrorIs(t, err, apiclient.ErrAuthExpired)
	assert.Equal(t, "Invalid credentials", apiclient.Message(err))
	assert.Equal(t, int32(2), fired.Load())
}

func TestClient_Endpoints(t *testing.T) {
	t.Parallel()

	fake, baseURL := newFake(t)
	tokens := &staticToken{}
	c, err := apiclient.New(baseURL, apiclient.WithTokenSource(tokens), apiclient.WithLogger(logger.Discard()))
	require.NoError(t, err)
	ctx := context.Background()

	ack, err := c.Register(ctx, apiclient.RegisterProfile{Email: "a@x.com", Password: "secret123", FirstName: "Ann", LastName: "Lee"})
	require.NoError(t, err)
	assert.Equal(t, "User created successfully", ack.Message)

	auth, err := c.Authenticate(ctx, "a@x.com", "secret123")
	require.NoError(t, err)
	assert.EqualValues(t, 1, auth.UserID)
	assert.False(t, auth.IsAdmin)
	tokens.Set(auth.AccessToken)

	categories, err := c.ListCategories(ctx)
	require.NoError(t, err)
	assert.Len(t, categories, 5)

	beers, err := c.ListProducts(ctx, "1")
	require.NoError(t, err)
	require.NotEmpty(t, beers)
	for _, p := range beers {
		assert.EqualValues(t, 1, p.CategoryID)
	}

	all, err := c.ListProducts(ctx, "")
	require.NoError(t, err)
	assert.Greater(t, len(all), len(beers))

	_, err = c.AddCartItem(ctx, 7, 2)
	require.NoError(t, err)
	cart, err := c.GetCart(ctx)
	require.NoError(t, err)
	require.Len(t, cart.Items, 1)
	assert.EqualValues(t, 7, cart.Items[0].ProductID)
	assert.Equal(t, 2, cart.Items[0].Quantity)
	assert.InDelta(t, 19.99, cart.Items[0].UnitPrice, 0.0001)
	assert.InDelta(t, 39.98, cart.Total, 0.0001)

	_, err = c.UpdateCartItem(ctx, cart.Items[0].ID, 3)
	require.NoError(t, err)
	assert.Equal(t, 3, fake.CartQuantity(auth.UserID, 7))

	_, err = c.UpdateCartItem(ctx, 999, 1)
	assert.ErrorIs(t, err, apiclient.ErrValidation)
	assert.Equal(t, "Item not found in cart", apiclient.Message(err))

	order, err := c.Checkout(ctx, apiclient.OrderRequest{TotalAmount: 65.97, ShippingAddress: "1 Main St, Springfield, IL 62701", PaymentMethod: "paypal"})
	require.NoError(t, err)
	assert.EqualValues(t, 1, order.OrderID)

	orders, err := c.ListOrders(ctx)
	require.NoError(t, err)
	require.Len(t, orders, 1)
	assert.Equal(t, "pending", orders[0].Status)
	placed, err := orders[0].PlacedAt()
	require.NoError(t, err)
	assert.WithinDuration(t, time.Now().UTC(), placed, time.Minute)

	_, err = c.AddCartItem(ctx, 1, 1)
	require.NoError(t, err)
	cart, err = c.GetCart(ctx)
	require.NoError(t, err)
	_, err = c.RemoveCartItem(ctx, cart.Items[0].ID)
	require.NoError(t, err)
	cart, err = c.GetCart(ctx)
	require.NoError(t, err)
	assert.Empty(t, cart.Items)
	assert.NotNil(t, cart.Items)
}
