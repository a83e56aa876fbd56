package catalog

import (
	"context"
	"log/slog"
	"strconv"
	"time"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/singleflight"

	"github.com/dmitrymomot/storefront/pkg/apiclient"
	"github.com/dmitrymomot/storefront/pkg/cache"
	"github.com/dmitrymomot/storefront/pkg/logger"
)

type (
	Product  = apiclient.Product
	Category = apiclient.Category
)

// API is the catalog subset of the API client.
type API interface {
	ListProducts(ctx context.Context, categoryID string) ([]apiclient.Product, error)
	ListCategories(ctx context.Context) ([]apiclient.Category, error)
}

// Page is what the products page needs on first render.
type Page struct {
	Categories []Category
	Products   []Product
}

const categoriesKey = "categories"

// Service is a read-through cache over the public catalog endpoints.
// Concurrent misses for the same listing share one backend call.
type Service struct {
	api      API
	logger   *slog.Logger
	ttl      time.Duration
	capacity int
	now      func() time.Time

	products   *cache.Cache[string, []Product]
	categories *cache.Cache[string, []Category]
	flight     singleflight.Group
}

func New(api API, opts ...Option) (*Service, error) {
	if api == nil {
		return nil, ErrNoAPI
	}

	s := &Service{
		api:      api,
		logger:   slog.Default(),
		ttl:      DefaultTTL,
		capacity: DefaultCapacity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("catalog"))

	s.products = cache.New(s.capacity,
		cache.WithTTL[string, []Product](s.ttl),
		cache.WithClock[string, []Product](s.now),
	)
	s.categories = cache.New(1,
		cache.WithTTL[string, []Category](s.ttl),
		cache.WithClock[string, []Category](s.now),
	)
	return s, nil
}

// Products lists products, optionally filtered by category id. An empty
// categoryID lists everything.
func (s *Service) Products(ctx context.Context, categoryID string) ([]Product, error) {
	if cached, ok := s.products.Get(categoryID); ok {
		return clone(cached), nil
	}

	v, err := s.share(ctx, "products:"+categoryID, func(ctx context.Context) (any, error) {
		list, err := s.api.ListProducts(ctx, categoryID)
		if err != nil {
			return nil, err
		}
		s.products.Put(categoryID, list)
		return list, nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "product listing failed", slog.String("category_id", categoryID), logger.Error(err))
		return nil, err
	}
	return clone(v.([]Product)), nil
}

func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	if cached, ok := s.categories.Get(categoriesKey); ok {
		return clone(cached), nil
	}

	v, err := s.share(ctx, categoriesKey, func(ctx context.Context) (any, error) {
		list, err := s.api.ListCategories(ctx)
		if err != nil {
			return nil, err
		}
		s.categories.Put(categoriesKey, list)
		return list, nil
	})
	if err != nil {
		s.logger.WarnContext(ctx, "category listing failed", logger.Error(err))
		return nil, err
	}
	return clone(v.([]Category)), nil
}

// share runs fetch once per key for all concurrent callers. The fetch is
// detached from any single caller's cancellation; each caller stops
// waiting when its own ctx is done.
func (s *Service) share(ctx context.Context, key string, fetch func(context.Context) (any, error)) (any, error) {
	detached := context.WithoutCancel(ctx)
	ch := s.flight.DoChan(key, func() (any, error) {
		return fetch(detached)
	})

	select {
	case res := <-ch:
		if res.Shared {
			s.logger.DebugContext(ctx, "catalog listing shared", slog.String("key", key))
		}
		return res.Val, res.Err
	case <-ctx.Done():
		return nil, ctx.Err()
	}
}

// Product finds a product by id in the full listing.
func (s *Service) Product(ctx context.Context, id int64) (Product, error) {
	all, err := s.Products(ctx, "")
	if err != nil {
		return Product{}, err
	}
	for _, p := range all {
		if p.ID == id {
			return p, nil
		}
	}
	return Product{}, ErrProductNotFound
}

// Related returns up to limit other products from p's category, in listing
// order. A non-positive limit uses DefaultRelatedLimit.
func (s *Service) Related(ctx context.Context, p Product, limit int) ([]Product, error) {
	if limit <= 0 {
		limit = DefaultRelatedLimit
	}

	all, err := s.Products(ctx, "")
	if err != nil {
		return nil, err
	}

	related := make([]Product, 0, limit)
	for _, candidate := range all {
		if candidate.CategoryID != p.CategoryID || candidate.ID == p.ID {
			continue
		}
		related = append(related, candidate)
		if len(related) == limit {
			break
		}
	}
	return related, nil
}

// Load fetches categories and products concurrently. The first failure
// cancels the other request.
func (s *Service) Load(ctx context.Context, categoryID string) (Page, error) {
	var page Page
	g, ctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		list, err := s.Categories(ctx)
		page.Categories = list
		return err
	})
	g.Go(func() error {
		list, err := s.Products(ctx, categoryID)
		page.Products = list
		return err
	})

	if err := g.Wait(); err != nil {
		return Page{}, err
	}
	return page, nil
}

// CategoryFilter renders a category id the way the products endpoint
// expects it. Zero means no filter.
func CategoryFilter(id int64) string {
	if id == 0 {
		return ""
	}
	return strconv.FormatInt(id, 10)
}

// Invalidate drops every cached listing.
func (s *Service) Invalidate() {
	s.products.Clear()
	s.categories.Clear()
}

func clone[T any](in []T) []T {
	out := make([]T, len(in))
	copy(out, in)
	return out
}
