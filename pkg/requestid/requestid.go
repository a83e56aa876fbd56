// Package requestid propagates correlation identifiers for outbound API calls.
//
// The API client calls Ensure before every request: an id already present in
// the context (for example one chosen by the view that started the action) is
// reused, otherwise a UUIDv4 is generated. The id travels to the backend in the
// X-Request-ID header and into log records through LoggerExtractor.
package requestid

import (
	"context"
	"log/slog"
	"regexp"

	"github.com/google/uuid"
)

// Header is the HTTP header carrying the request id.
const Header = "X-Request-ID"

const maxIDLength = 128

var validID = regexp.MustCompile(`^[a-zA-Z0-9_-]+$`)

type contextKey struct{}

func WithContext(ctx context.Context, requestID string) context.Context {
	return context.WithValue(ctx, contextKey{}, requestID)
}

func FromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	requestID, _ := ctx.Value(contextKey{}).(string)
	return requestID
}

// Ensure returns ctx carrying a valid request id together with that id.
// Malformed ids found in ctx are replaced.
func Ensure(ctx context.Context) (context.Context, string) {
	if id := FromContext(ctx); IsValid(id) {
		return ctx, id
	}
	id := uuid.NewString()
	return WithContext(ctx, id), id
}

// IsValid reports whether id is safe to send as a header value.
func IsValid(id string) bool {
	if id == "" || len(id) > maxIDLength {
		return false
	}
	return validID.MatchString(id)
}

// LoggerExtractor returns a ContextExtractor for the logger.
func LoggerExtractor() func(ctx context.Context) (slog.Attr, bool) {
	return func(ctx context.Context) (slog.Attr, bool) {
		if requestID := FromContext(ctx); requestID != "" {
			return slog.String("request_id", requestID), true
		}
		return slog.Attr{}, false
	}
}
