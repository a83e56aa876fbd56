package cart

import "errors"

var (
	ErrInvalidQuantity = errors.New("cart.invalid_quantity")
	ErrNoAPI           = errors.New("cart.no_api")
	ErrNoSession       = errors.New("cart.no_session")
)
