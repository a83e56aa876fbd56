package storefront

import "errors"

var (
	ErrInvalidConfig = errors.New("storefront: invalid configuration")
	ErrStorageSetup  = errors.New("storefront: storage setup failed")
)
