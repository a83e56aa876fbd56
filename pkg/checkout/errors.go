package checkout

import "errors"

var (
	ErrEmptyCart = errors.New("checkout.empty_cart")
	ErrNoAPI     = errors.New("checkout.no_api")
	ErrNoCart    = errors.New("checkout.no_cart")
)
