// Package logger builds the *slog.Logger shared by every storefront component.
//
// New applies functional options on top of production-safe defaults (JSON
// output, INFO level) and wraps the resulting handler with a decorator that
// pulls attributes out of context.Context on every record. Stores and the API
// client never construct loggers themselves; they receive one through their own
// WithLogger option and fall back to slog.Default().
//
// # Usage
//
//	log := logger.New(
//	    logger.WithEnvironment(environment.Parse(cfg.Env), "storefront"),
//	    logger.WithContextExtractors(requestid.LoggerExtractor()),
//	)
//	log.InfoContext(ctx, "cart refreshed",
//	    logger.Component("cart"),
//	    logger.ItemCount(3),
//	)
//
// # Attributes
//
// attr.go holds constructors for the attribute keys used across the module so
// that "user_id", "op" or "status" are spelled the same everywhere. Error and
// UserID return an empty slog.Attr for nil input, which slog drops, so callers
// can pass them unconditionally.
package logger
