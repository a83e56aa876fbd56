package apiclient

import (
	"errors"
	"fmt"
)

// Error kinds. Every *Error returned by the client matches exactly one of
// them with errors.Is.
var (
	ErrNetwork     = errors.New("network error")
	ErrAuthExpired = errors.New("authentication expired")
	ErrValidation  = errors.New("request rejected")
	ErrServer      = errors.New("server error")
	ErrDecode      = errors.New("malformed response")
)

// Configuration errors returned by New.
var (
	ErrInvalidBaseURL = errors.New("invalid base URL")
	ErrInvalidRequest = errors.New("invalid request")
)

const genericServerMessage = "Something went wrong. Please try again later."

// Error describes a failed API call.
type Error struct {
	// Kind is one of ErrNetwork, ErrAuthExpired, ErrValidation, ErrServer, ErrDecode.
	Kind error
	// Op names the client method, e.g. "cart.add".
	Op string
	// StatusCode is zero for ErrNetwork.
	StatusCode int
	// Message is the backend's message when it sent one.
	Message string
	// Err is the underlying transport or decoding error, if any.
	Err error
}

func (e *Error) Error() string {
	switch {
	case e.StatusCode != 0 && e.Message != "":
		return fmt.Sprintf("%s: %s (%d): %s", e.Op, e.Kind, e.StatusCode, e.Message)
	case e.StatusCode != 0:
		return fmt.Sprintf("%s: %s (%d)", e.Op, e.Kind, e.StatusCode)
	case e.Err != nil:
		return fmt.Sprintf("%s: %s: %v", e.Op, e.Kind, e.Err)
	default:
		return fmt.Sprintf("%s: %s", e.Op, e.Kind)
	}
}

func (e *Error) Is(target error) bool {
	return target == e.Kind
}

func (e *Error) Unwrap() error {
	return e.Err
}

// Message extracts a user-facing message from err. Backend messages are
// returned verbatim; other failures map to a fixed sentence per kind.
func Message(err error) string {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		if err == nil {
			return ""
		}
		return genericServerMessage
	}

	if apiErr.Message != "" {
		return apiErr.Message
	}

	switch apiErr.Kind {
	case ErrNetwork:
		return "Unable to reach the store. Check your connection and try again."
	case ErrAuthExpired:
		return "Your session has expired. Please sign in again."
	default:
		return genericServerMessage
	}
}

// IsAuthExpired reports whether err was caused by a 401 response.
func IsAuthExpired(err error) bool {
	return errors.Is(err, ErrAuthExpired)
}
