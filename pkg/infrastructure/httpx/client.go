// Package httpx provides the shared HTTP plumbing for every upstream
// client: user-agent stamping, per-upstream rate limiting, bounded
// retries with exponential backoff, and JSON decoding with taxonomy
// errors. Status-code semantics stay with the individual clients.
package httpx

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"math/rand"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"

	"github.com/searxng-tools/web-research-assist/pkg/domain/errors"
)

const (
	maxRetries     = 3
	retryBaseDelay = 500 * time.Millisecond
	retryMaxDelay  = 5 * time.Second
	retryJitterMax = 500 * time.Millisecond
)

// Client wraps http.Client with the behavior every upstream shares.
type Client struct {
	http      *http.Client
	userAgent string
	limiter   *rate.Limiter
	logger    zerolog.Logger
	retries   int
}

// Option configures a Client.
type Option func(*Client)

// WithTimeout sets the per-request timeout.
func WithTimeout(d time.Duration) Option {
	return func(c *Client) { c.http.Timeout = d }
}

// WithRateLimit throttles outgoing requests to rps with the given burst.
func WithRateLimit(rps float64, burst int) Option {
	return func(c *Client) { c.limiter = rate.NewLimiter(rate.Limit(rps), burst) }
}

// WithoutRedirects makes the client surface 3xx responses instead of
// following them. The repo client needs the 301 Location header.
func WithoutRedirects() Option {
	return func(c *Client) {
		c.http.CheckRedirect = func(req *http.Request, via []*http.Request) error {
			return http.ErrUseLastResponse
		}
	}
}

// WithRetries overrides the connection-error retry budget.
func WithRetries(n int) Option {
	return func(c *Client) { c.retries = n }
}

// New builds a Client with a 10 second timeout unless overridden.
func New(logger zerolog.Logger, userAgent string, opts ...Option) *Client {
	c := &Client{
		http:      &http.Client{Timeout: 10 * time.Second},
		userAgent: userAgent,
		logger:    logger.With().Str("component", "httpx").Logger(),
		retries:   maxRetries,
	}
	for _, opt := range opts {
		opt(c)
	}
	return c
}

// Do sends req after waiting for the rate limiter, retrying connection
// failures with exponential backoff. HTTP error statuses are returned to
// the caller untouched; only transport errors are retried.
func (c *Client) Do(req *http.Request) (*http.Response, error) {
	ctx := req.Context()
	if c.userAgent != "" && req.Header.Get("User-Agent") == "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	var lastErr error
	for attempt := 0; attempt < c.retries; attempt++ {
		if c.limiter != nil {
			if err := c.limiter.Wait(ctx); err != nil {
				return nil, errors.New(errors.CodeUpstreamTimeout, "httpx", "rate limit wait canceled", err)
			}
		}

		resp, err := c.http.Do(req)
		if err == nil {
			return resp, nil
		}
		lastErr = err

		if ctx.Err() != nil {
			return nil, errors.New(errors.CodeUpstreamTimeout, "httpx", "request canceled", ctx.Err())
		}
		if attempt < c.retries-1 {
			delay := backoffDelay(attempt)
			c.logger.Debug().
				Str("url", req.URL.Host).
				Int("attempt", attempt+1).
				Dur("delay", delay).
				Err(err).
				Msg("Retrying after connection error")
			select {
			case <-time.After(delay):
			case <-ctx.Done():
				return nil, errors.New(errors.CodeUpstreamTimeout, "httpx", "request canceled", ctx.Err())
			}
		}
	}

	return nil, errors.New(errors.CodeUpstreamUnavailable, "httpx",
		fmt.Sprintf("upstream %s unreachable after %d attempts", req.URL.Host, c.retries), lastErr)
}

// Get issues a GET with optional extra headers.
func (c *Client) Get(ctx context.Context, rawURL string, headers map[string]string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, rawURL, nil)
	if err != nil {
		return nil, errors.New(errors.CodeInternalError, "httpx", "failed to create request", err)
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return c.Do(req)
}

// Head issues a HEAD request. Used for cheap existence probes.
func (c *Client) Head(ctx context.Context, rawURL string) (*http.Response, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodHead, rawURL, nil)
	if err != nil {
		return nil, errors.New(errors.CodeInternalError, "httpx", "failed to create request", err)
	}
	return c.Do(req)
}

// GetJSON issues a GET expecting a 200 JSON body decoded into v.
// Non-200 statuses come back as a StatusError so callers can branch on
// the code without parsing error strings.
func (c *Client) GetJSON(ctx context.Context, rawURL string, headers map[string]string, v interface{}) error {
	resp, err := c.Get(ctx, rawURL, headers)
	if err != nil {
		return err
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return &StatusError{URL: rawURL, StatusCode: resp.StatusCode}
	}
	return DecodeJSON(resp.Body, v)
}

// DecodeJSON decodes body into v, mapping failures to the malformed
// taxonomy code.
func DecodeJSON(body io.Reader, v interface{}) error {
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return errors.New(errors.CodeUpstreamMalformed, "httpx", "upstream returned unexpected data", err)
	}
	return nil
}

// ReadBody drains body up to limit bytes.
func ReadBody(body io.Reader, limit int64) ([]byte, error) {
	data, err := io.ReadAll(io.LimitReader(body, limit))
	if err != nil {
		return nil, errors.New(errors.CodeIoError, "httpx", "failed to read response body", err)
	}
	return data, nil
}

// StatusError carries a non-200 upstream reply.
type StatusError struct {
	URL        string
	StatusCode int
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("%s returned HTTP %d", e.URL, e.StatusCode)
}

// IsStatus reports whether err is a StatusError with the given code.
func IsStatus(err error, code int) bool {
	se, ok := AsStatus(err)
	return ok && se.StatusCode == code
}

// AsStatus unwraps err to a StatusError when there is one.
func AsStatus(err error) (*StatusError, bool) {
	var se *StatusError
	if stderrors.As(err, &se) {
		return se, true
	}
	return nil, false
}

func backoffDelay(attempt int) time.Duration {
	delay := retryBaseDelay * (1 << attempt)
	delay += time.Duration(rand.Int63n(int64(retryJitterMax)))
	if delay > retryMaxDelay {
		delay = retryMaxDelay
	}
	return delay
}
