// Package apiclient is the only component that talks to the storefront
// backend over HTTP.
//
// Every request carries a JSON Accept header, a request id (see package
// requestid) and, when the configured TokenSource yields one, an
// "Authorization: Bearer <token>" header. Calls are never retried.
//
// # Errors
//
// Failed calls return *Error, which matches one sentinel kind with errors.Is:
//
//   - ErrNetwork: the request was never answered
//   - ErrAuthExpired: the backend answered 401
//   - ErrValidation: any other 4xx; Message holds the backend's text verbatim
//   - ErrServer: 5xx
//   - ErrDecode: a 2xx whose body could not be decoded
//
// # Global sign-out
//
// Any 401, whatever call produced it, first invokes the handler installed with
// WithUnauthorizedHandler and then returns the ErrAuthExpired error to the
// caller. The session store installs a handler that tears the session down
// and navigates to the sign-in page.
//
//	client, err := apiclient.New("http://localhost:5000/api",
//		apiclient.WithTokenSource(session.TokenReader(store)),
//		apiclient.WithUnauthorizedHandler(func(ctx context.Context) { sess.Expire(ctx) }),
//	)
package apiclient
