// Package fakeapi is an in-process stand-in for the storefront backend.
//
// It serves the same routes and JSON shapes under /api, issues real HS256
// tokens so that expiry produces genuine 401 responses, and exposes hooks
// for tests: call counting, one-shot failure injection and token revocation.
//
//	fake, _ := fakeapi.New()
//	srv := httptest.NewServer(fake)
//	client, _ := apiclient.New(srv.URL + "/api")
package fakeapi

import (
	"context"
	"errors"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"golang.org/x/crypto/bcrypt"
)

var (
	ErrInvalidSeed = errors.New("fakeapi: invalid seed")

	errTokenExpired = errors.New("token has expired")
	errTokenInvalid = errors.New("invalid token")
	errTokenRevoked = errors.New("token has been revoked")
	errUserExists   = errors.New("user already exists")
)

type user struct {
	id           int64
	email        string
	passwordHash []byte
	firstName    string
	lastName     string
	isAdmin      bool
}

type cartLine struct {
	id        int64
	productID int64
	quantity  int
}

type order struct {
	ID          int64   `json:"id"`
	Date        string  `json:"date"`
	TotalAmount float64 `json:"total_amount"`
	Status      string  `json:"status"`

	shippingAddress string
	paymentMethod   string
}

type failure struct {
	status  int
	message string
}

// Option configures a Server.
type Option func(*Server)

// WithSecret sets the token signing key.
func WithSecret(secret string) Option {
	return func(s *Server) {
		if secret != "" {
			s.secret = []byte(secret)
		}
	}
}

// WithTokenTTL sets the lifetime of issued tokens. Default is 24h.
func WithTokenTTL(ttl time.Duration) Option {
	return func(s *Server) {
		if ttl > 0 {
			s.tokenTTL = ttl
		}
	}
}

// WithSeed replaces the embedded catalog with a YAML document.
func WithSeed(raw []byte) Option {
	return func(s *Server) {
		s.seed = raw
	}
}

// WithClock overrides time.Now for token issuing and order dates.
func WithClock(now func() time.Time) Option {
	return func(s *Server) {
		if now != nil {
			s.now = now
		}
	}
}

// Server is an http.Handler emulating the backend.
type Server struct {
	router http.Handler
	seed   []byte
	now    func() time.Time

	mu          sync.Mutex
	secret      []byte
	tokenTTL    time.Duration
	generation  int
	users       map[string]*user
	categories  []Category
	products    map[int64]Product
	carts       map[int64][]*cartLine
	orders      map[int64][]*order
	nextUserID  int64
	nextItemID  int64
	nextOrderID int64
	calls       map[string]int
	failures    map[string][]failure
}

// New builds a server seeded with the default or configured catalog.
func New(opts ...Option) (*Server, error) {
	s := &Server{
		seed:     defaultSeed,
		now:      time.Now,
		secret:   []byte("jwt-secret-key"),
		tokenTTL: 24 * time.Hour,
		users:    make(map[string]*user),
		products: make(map[int64]Product),
		carts:    make(map[int64][]*cartLine),
		orders:   make(map[int64][]*order),
		calls:    make(map[string]int),
		failures: make(map[string][]failure),
	}
	for _, opt := range opts {
		opt(s)
	}

	seed, err := ParseSeed(s.seed)
	if err != nil {
		return nil, err
	}
	s.categories = seed.Categories
	for _, p := range seed.Products {
		s.products[p.ID] = p
	}

	s.router = s.routes()
	return s, nil
}

func (s *Server) routes() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)
	r.Use(s.record)

	r.Route("/api", func(r chi.Router) {
		r.Post("/register", s.handleRegister)
		r.Post("/login", s.handleLogin)
		r.Get("/products", s.handleProducts)
		r.Get("/categories", s.handleCategories)

		r.Group(func(r chi.Router) {
			r.Use(s.requireAuth)
			r.Get("/cart", s.handleGetCart)
			r.Post("/cart/add", s.handleAddToCart)
			r.Put("/cart/update", s.handleUpdateCart)
			r.Delete("/cart/remove", s.handleRemoveFromCart)
			r.Post("/checkout", s.handleCheckout)
			r.Get("/user/orders", s.handleOrders)
		})
	})

	return r
}

func (s *Server) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	s.router.ServeHTTP(w, r)
}

// record counts calls and serves injected failures.
func (s *Server) record(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := callKey(r.Method, r.URL.Path)

		s.mu.Lock()
		s.calls[key]++
		var injected *failure
		if queue := s.failures[key]; len(queue) > 0 {
			injected = &queue[0]
			s.failures[key] = queue[1:]
		}
		s.mu.Unlock()

		if injected != nil {
			if injected.message == "" {
				w.WriteHeader(injected.status)
				return
			}
			writeJSON(w, injected.status, map[string]string{"message": injected.message})
			return
		}
		next.ServeHTTP(w, r)
	})
}

func callKey(method, path string) string {
	return method + " " + path
}

// Calls reports how many requests hit method and path (e.g. "GET", "/api/cart").
func (s *Server) Calls(method, path string) int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.calls[callKey(method, path)]
}

// TotalCalls reports all requests received.
func (s *Server) TotalCalls() int {
	s.mu.Lock()
	defer s.mu.Unlock()

	total := 0
	for _, n := range s.calls {
		total += n
	}
	return total
}

// ResetCalls zeroes the call counters.
func (s *Server) ResetCalls() {
	s.mu.Lock()
	defer s.mu.Unlock()
	clear(s.calls)
}

// Fail makes the next request to method and path answer status with an
// optional {"message": ...} body. Calls queue up.
func (s *Server) Fail(method, path string, status int, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := callKey(method, path)
	s.failures[key] = append(s.failures[key], failure{status: status, message: message})
}

// AddUser creates an account directly and returns its id.
func (s *Server) AddUser(email, password string, isAdmin bool) (int64, error) {
	hash, err := bcrypt.GenerateFromPassword([]byte(password), bcrypt.MinCost)
	if err != nil {
		return 0, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if _, ok := s.users[email]; ok {
		return 0, errUserExists
	}
	s.nextUserID++
	s.users[email] = &user{id: s.nextUserID, email: email, passwordHash: hash, isAdmin: isAdmin}
	return s.nextUserID, nil
}

// PutProduct adds or replaces a catalog product.
func (s *Server) PutProduct(p Product) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.products[p.ID] = p
}

// CartQuantity returns the quantity of productID in the user's cart.
func (s *Server) CartQuantity(userID, productID int64) int {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, line := range s.carts[userID] {
		if line.productID == productID {
			return line.quantity
		}
	}
	return 0
}

// sortedProducts must be called with mu held.
func (s *Server) sortedProducts() []Product {
	out := make([]Product, 0, len(s.products))
	for _, p := range s.products {
		out = append(out, p)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out
}

type userIDKey struct{}

func withUserID(ctx context.Context, id int64) context.Context {
	return context.WithValue(ctx, userIDKey{}, id)
}

func userIDFrom(ctx context.Context) int64 {
	id, _ := ctx.Value(userIDKey{}).(int64)
	return id
}
