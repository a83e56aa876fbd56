package checkout

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/dmitrymomot/storefront/pkg/apiclient"
	"github.com/dmitrymomot/storefront/pkg/cart"
	"github.com/dmitrymomot/storefront/pkg/logger"
)

// API is the order subset of the API client.
type API interface {
	Checkout(ctx context.Context, order apiclient.OrderRequest) (*apiclient.Ack, error)
	ListOrders(ctx context.Context) ([]apiclient.Order, error)
}

// Cart is what checkout reads from and resets on the cart store.
type Cart interface {
	Snapshot() cart.Snapshot
	Clear()
}

// Receipt describes a placed order.
type Receipt struct {
	OrderID int64
	Message string
	Summary Summary
	Address string
}

type Service struct {
	api    API
	cart   Cart
	logger *slog.Logger
}

type Option func(*Service)

func WithLogger(l *slog.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

func New(api API, c Cart, opts ...Option) (*Service, error) {
	if api == nil {
		return nil, ErrNoAPI
	}
	if c == nil {
		return nil, ErrNoCart
	}

	s := &Service{api: api, cart: c, logger: slog.Default()}
	for _, opt := range opts {
		opt(s)
	}
	s.logger = s.logger.With(logger.Component("checkout"))
	return s, nil
}

// Summary breaks down the current cart total.
func (s *Service) Summary() Summary {
	return Summarize(s.cart.Snapshot().Total)
}

// PlaceOrder validates the form, submits the order for the current cart and
// clears the local cart once the backend accepts it.
func (s *Service) PlaceOrder(ctx context.Context, form ShippingForm) (Receipt, error) {
	form = form.Normalize()
	if err := form.Validate(); err != nil {
		return Receipt{}, err
	}

	snap := s.cart.Snapshot()
	if snap.Empty() {
		return Receipt{}, ErrEmptyCart
	}

	summary := Summarize(snap.Total)
	address := form.ShippingAddress()

	ack, err := s.api.Checkout(ctx, apiclient.OrderRequest{
		TotalAmount:     summary.Total,
		ShippingAddress: address,
		PaymentMethod:   form.PaymentMethod,
	})
	if err != nil {
		s.logger.WarnContext(ctx, "order rejected", logger.Error(err))
		return Receipt{}, fmt.Errorf("place order: %w", err)
	}

	s.cart.Clear()
	s.logger.InfoContext(ctx, "order placed",
		slog.Int64("order_id", ack.OrderID),
		logger.ItemCount(snap.ItemCount()))

	return Receipt{
		OrderID: ack.OrderID,
		Message: ack.Message,
		Summary: summary,
		Address: address,
	}, nil
}

// OrderView is an order with its date parsed.
type OrderView struct {
	apiclient.Order
	Placed time.Time
}

// Orders lists the signed-in user's orders. Unparseable dates are left zero.
func (s *Service) Orders(ctx context.Context) ([]OrderView, error) {
	orders, err := s.api.ListOrders(ctx)
	if err != nil {
		return nil, fmt.Errorf("list orders: %w", err)
	}

	out := make([]OrderView, 0, len(orders))
	for _, o := range orders {
		placed, err := o.PlacedAt()
		if err != nil {
			s.logger.DebugContext(ctx, "unparseable order date", slog.Int64("order_id", o.ID), logger.Error(err))
		}
		out = append(out, OrderView{Order: o, Placed: placed})
	}
	return out, nil
}
