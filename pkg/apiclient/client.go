package apiclient

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/dmitrymomot/storefront/pkg/logger"
	"github.com/dmitrymomot/storefront/pkg/requestid"
)

// DefaultBaseURL is the development backend.
const DefaultBaseURL = "http://localhost:5000/api"

// maxBodySize bounds response bodies read into memory.
const maxBodySize = 1 << 20

// Client performs calls against the storefront backend.
// Zero value is not usable; use New to create instances.
type Client struct {
	baseURL        *url.URL
	http           *http.Client
	timeout        time.Duration
	tokens         TokenSource
	onUnauthorized UnauthorizedHandler
	logger         *slog.Logger
	metrics        *Metrics
	userAgent      string
	headers        http.Header
}

// New creates a client for the backend rooted at baseURL, e.g.
// "http://localhost:5000/api".
func New(baseURL string, opts ...Option) (*Client, error) {
	if baseURL == "" {
		return nil, fmt.Errorf("%w: URL is required", ErrInvalidBaseURL)
	}

	u, err := url.Parse(baseURL)
	if err != nil {
		return nil, errors.Join(ErrInvalidBaseURL, err)
	}
	if u.Scheme != "http" && u.Scheme != "https" {
		return nil, fmt.Errorf("%w: only http and https schemes are supported", ErrInvalidBaseURL)
	}
	if u.Host == "" {
		return nil, fmt.Errorf("%w: host is required", ErrInvalidBaseURL)
	}
	u.Path = strings.TrimSuffix(u.Path, "/")

	c := &Client{
		baseURL:   u,
		timeout:   30 * time.Second,
		logger:    slog.Default(),
		userAgent: "storefront-client/1.0",
		headers:   make(http.Header),
	}
	for _, opt := range opts {
		opt(c)
	}

	if c.http == nil {
		c.http = &http.Client{
			Transport: &http.Transport{
				MaxIdleConns:        20,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		}
	}

	return c, nil
}

// BaseURL returns the configured backend root.
func (c *Client) BaseURL() string {
	return c.baseURL.String()
}

// call sends one request and decodes a 2xx body into out (when out is non-nil).
// It never retries.
func (c *Client) call(ctx context.Context, op, method, path string, query url.Values, in, out any) error {
	start := time.Now()
	ctx, reqID := requestid.Ensure(ctx)

	var body io.Reader
	if in != nil {
		payload, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
		}
		body = bytes.NewReader(payload)
	}

	reqCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	endpoint := c.baseURL.JoinPath(path)
	if len(query) > 0 {
		endpoint.RawQuery = query.Encode()
	}

	req, err := http.NewRequestWithContext(reqCtx, method, endpoint.String(), body)
	if err != nil {
		return fmt.Errorf("%w: %w", ErrInvalidRequest, err)
	}

	for k, vs := range c.headers {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	req.Header.Set("Accept", "application/json")
	req.Header.Set("User-Agent", c.userAgent)
	req.Header.Set(requestid.Header, reqID)
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	} else {
		req.Header.Del("Content-Type")
	}

	req.Header.Del("Authorization")
	if c.tokens != nil {
		token, err := c.tokens.Token(ctx)
		if err != nil {
			// Token read failures degrade to an anonymous request.
			c.logger.WarnContext(ctx, "token source failed", logger.Op(op), logger.Error(err))
		} else if token != "" {
			req.Header.Set("Authorization", "Bearer "+token)
		}
	}

	resp, err := c.http.Do(req)
	if err != nil {
		c.metrics.observe(op, 0, start)
		c.logger.WarnContext(ctx, "api request failed",
			logger.Op(op), logger.Method(method), logger.Path(path),
			logger.Duration(time.Since(start)), logger.Error(err))
		return &Error{Kind: ErrNetwork, Op: op, Err: err}
	}
	defer func() { _ = resp.Body.Close() }()

	raw, readErr := io.ReadAll(io.LimitReader(resp.Body, maxBodySize))
	c.metrics.observe(op, resp.StatusCode, start)
	c.logger.DebugContext(ctx, "api request",
		logger.Op(op), logger.Method(method), logger.Path(path),
		logger.Status(resp.StatusCode), logger.Duration(time.Since(start)))

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		apiErr := classify(op, resp.StatusCode, raw)
		if apiErr.Kind == ErrAuthExpired {
			c.logger.InfoContext(ctx, "backend rejected credentials", logger.Op(op))
			if c.onUnauthorized != nil {
				c.onUnauthorized(ctx)
			}
		}
		return apiErr
	}

	if readErr != nil {
		return &Error{Kind: ErrNetwork, Op: op, StatusCode: resp.StatusCode, Err: readErr}
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return &Error{Kind: ErrDecode, Op: op, StatusCode: resp.StatusCode, Err: err}
	}
	return nil
}

func classify(op string, status int, raw []byte) *Error {
	e := &Error{Op: op, StatusCode: status, Message: backendMessage(raw)}

	switch {
	case status == http.StatusUnauthorized:
		e.Kind = ErrAuthExpired
	case status >= 400 && status < 500:
		e.Kind = ErrValidation
	default:
		e.Kind = ErrServer
	}
	return e
}

func backendMessage(raw []byte) string {
	if len(raw) == 0 {
		return ""
	}
	var body errorBody
	if err := json.Unmarshal(raw, &body); err != nil {
		return ""
	}
	if body.Message != "" {
		return body.Message
	}
	return body.Msg
}
