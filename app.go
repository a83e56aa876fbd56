package storefront

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"
	"slices"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/dmitrymomot/storefront/pkg/apiclient"
	"github.com/dmitrymomot/storefront/pkg/cart"
	"github.com/dmitrymomot/storefront/pkg/catalog"
	"github.com/dmitrymomot/storefront/pkg/checkout"
	"github.com/dmitrymomot/storefront/pkg/logger"
	"github.com/dmitrymomot/storefront/pkg/requestid"
	"github.com/dmitrymomot/storefront/pkg/session"
	"github.com/dmitrymomot/storefront/pkg/storage"
)

// App owns every store of one storefront client. Views receive it (or the
// individual stores) explicitly; there are no package-level singletons.
type App struct {
	Config   Config
	Logger   *slog.Logger
	Storage  storage.Storage
	API      *apiclient.Client
	Session  *session.Store
	Cart     *cart.Store
	Catalog  *catalog.Service
	Checkout *checkout.Service

	closers []func() error
	health  []func(context.Context) error
}

type options struct {
	logger     *slog.Logger
	logOutput  io.Writer
	navigator  session.Navigator
	storage    storage.Storage
	httpClient *http.Client
	registerer prometheus.Registerer
}

// Option customizes New.
type Option func(*options)

func WithLogger(l *slog.Logger) Option {
	return func(o *options) { o.logger = l }
}

// WithLogOutput sends the default logger's records to w instead of stdout.
// Ignored when WithLogger is set.
func WithLogOutput(w io.Writer) Option {
	return func(o *options) { o.logOutput = w }
}

// WithNavigator receives the redirect to the sign-in page after a 401.
func WithNavigator(n session.Navigator) Option {
	return func(o *options) { o.navigator = n }
}

// WithStorage bypasses the configured backend.
func WithStorage(s storage.Storage) Option {
	return func(o *options) { o.storage = s }
}

func WithHTTPClient(c *http.Client) Option {
	return func(o *options) { o.httpClient = c }
}

// WithRegisterer enables API client metrics on reg.
func WithRegisterer(reg prometheus.Registerer) Option {
	return func(o *options) { o.registerer = reg }
}

// New builds the client stack: storage, API client, session, cart, catalog
// and checkout. The session is hydrated before New returns; if it is
// authenticated the cart starts fetching in the background.
func New(ctx context.Context, cfg Config, opts ...Option) (*App, error) {
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	o := &options{}
	for _, opt := range opts {
		opt(o)
	}

	env := cfg.Environment()
	if o.logger == nil {
		logOpts := []logger.Option{
			logger.WithEnvironment(env, "storefront"),
			logger.WithLevelName(cfg.LogLevel),
			logger.WithContextExtractors(requestid.LoggerExtractor()),
		}
		if o.logOutput != nil {
			logOpts = append(logOpts, logger.WithOutput(o.logOutput))
		}
		o.logger = logger.New(logOpts...)
	}

	app := &App{Config: cfg, Logger: o.logger}

	if o.storage != nil {
		app.Storage = o.storage
	} else {
		s, err := app.openStorage(ctx)
		if err != nil {
			return nil, errors.Join(ErrStorageSetup, err)
		}
		app.Storage = s
	}

	clientOpts := []apiclient.Option{
		apiclient.WithLogger(app.Logger),
		apiclient.WithTimeout(cfg.HTTPTimeout),
		apiclient.WithTokenSource(session.TokenReader(app.Storage)),
		apiclient.WithUnauthorizedHandler(app.expire),
	}
	if o.httpClient != nil {
		clientOpts = append(clientOpts, apiclient.WithHTTPClient(o.httpClient))
	}
	if o.registerer != nil {
		clientOpts = append(clientOpts, apiclient.WithMetrics(apiclient.NewMetrics(o.registerer)))
	}

	var err error
	if app.API, err = apiclient.New(cfg.APIURL, clientOpts...); err != nil {
		return nil, app.abort(err)
	}

	sessOpts := []session.Option{session.WithLogger(app.Logger)}
	if o.navigator != nil {
		sessOpts = append(sessOpts, session.WithNavigator(o.navigator))
	}
	if app.Session, err = session.New(ctx, app.Storage, app.API, sessOpts...); err != nil {
		return nil, app.abort(err)
	}

	if app.Cart, err = cart.New(app.API, app.Session, cart.WithLogger(app.Logger)); err != nil {
		return nil, app.abort(err)
	}
	app.closers = append(app.closers, app.Cart.Close)

	if app.Catalog, err = catalog.New(app.API, catalog.WithLogger(app.Logger), catalog.WithTTL(cfg.CatalogTTL)); err != nil {
		return nil, app.abort(err)
	}
	if app.Checkout, err = checkout.New(app.API, app.Cart, checkout.WithLogger(app.Logger)); err != nil {
		return nil, app.abort(err)
	}

	app.Logger.InfoContext(ctx, "storefront client ready",
		slog.String("api_url", app.API.BaseURL()),
		slog.String("storage", string(cfg.Storage)),
		logger.State(app.Session.Status().String()))
	return app, nil
}

// expire is installed as the API client's 401 handler before the session
// exists, so it tolerates a nil session.
func (a *App) expire(ctx context.Context) {
	if a.Session != nil {
		a.Session.Expire(ctx)
	}
}

// Healthcheck probes the storage backend when it is remote.
func (a *App) Healthcheck(ctx context.Context) error {
	var errs []error
	for _, check := range a.health {
		if err := check(ctx); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}

// Close stops background work and releases the storage backend, in reverse
// order of acquisition.
func (a *App) Close() error {
	closers := a.closers
	a.closers = nil

	var errs []error
	for _, c := range slices.Backward(closers) {
		if err := c(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
