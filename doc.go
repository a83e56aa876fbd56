// Package storefront assembles the client core of the storefront: durable
// storage, the REST API client, the session store, the cart store, the
// catalog cache and the checkout service.
//
// A process creates one App at start and closes it at exit:
//
//	cfg, err := storefront.LoadConfig()
//	if err != nil {
//		return err
//	}
//	app, err := storefront.New(ctx, cfg, storefront.WithNavigator(router))
//	if err != nil {
//		return err
//	}
//	defer app.Close()
//
// Wiring rules:
//
//   - The API client reads the bearer token from storage on every request
//     through session.TokenReader; only the session store writes it.
//   - Any 401 response runs Session.Expire, which clears the credential,
//     moves to Unauthenticated and navigates to "/login". The error still
//     reaches the caller.
//   - The cart store follows session transitions: it fetches on sign-in and
//     empties itself on sign-out.
//
// Configuration comes from the environment (see Config); STOREFRONT_STORAGE
// picks memory, file or redis storage, and STOREFRONT_ENCRYPTION_KEY together
// with STOREFRONT_DEVICE_KEY seals stored values.
package storefront
