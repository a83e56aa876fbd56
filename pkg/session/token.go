package session

import (
	"context"

	"github.com/dmitrymomot/storefront/pkg/apiclient"
	"github.com/dmitrymomot/storefront/pkg/storage"
)

// TokenReader returns a token source that reads the persisted credential on
// every request. It never writes, so the Store stays the only owner of the
// token.
func TokenReader(r storage.Reader) apiclient.TokenSource {
	return apiclient.TokenFunc(func(ctx context.Context) (string, error) {
		token, _, err := storage.Lookup(ctx, r, KeyToken)
		return token, err
	})
}
