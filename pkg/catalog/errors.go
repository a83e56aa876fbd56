package catalog

import "errors"

var (
	ErrProductNotFound = errors.New("catalog.product_not_found")
	ErrNoAPI           = errors.New("catalog.no_api")
)
