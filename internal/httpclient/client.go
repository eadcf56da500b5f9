// Package httpclient provides the resilient HTTP request primitive used
// by every provider adapter: bounded retries with linear backoff, a fixed
// per-attempt timeout, and typed errors carrying the final status and body.
package httpclient

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"net/http"
	"time"
)

// DefaultTimeout is the per-attempt request timeout.
const DefaultTimeout = 30 * time.Second

// DefaultMaxAttempts is the total number of attempts (first try included).
const DefaultMaxAttempts = 3

// DefaultBaseDelay is the backoff unit: attempt n (0-indexed) waits
// baseDelay*(n+1) before the next try.
const DefaultBaseDelay = time.Second

// DefaultUserAgent is the user agent string for outgoing requests.
const DefaultUserAgent = "Mozilla/5.0 (compatible; Pulsewatch/1.0)"

// StatusError is returned when the server answered with a non-success
// status that was either non-retryable or still failing after retries.
type StatusError struct {
	URL  string
	Code int
	Body string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("request to %s failed with HTTP %d", e.URL, e.Code)
}

// TransportError is returned when no HTTP response was obtained at all
// (network failure, timeout) after exhausting retries.
type TransportError struct {
	URL   string
	Cause error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("request to %s failed: %v", e.URL, e.Cause)
}

func (e *TransportError) Unwrap() error {
	return e.Cause
}

// Options configures the client.
type Options struct {
	Timeout     time.Duration
	MaxAttempts int
	BaseDelay   time.Duration
	UserAgent   string
}

// DefaultOptions returns sensible defaults.
func DefaultOptions() *Options {
	return &Options{
		Timeout:     DefaultTimeout,
		MaxAttempts: DefaultMaxAttempts,
		BaseDelay:   DefaultBaseDelay,
		UserAgent:   DefaultUserAgent,
	}
}

// Client issues HTTP requests with retry and backoff. It is safe for
// concurrent use.
type Client struct {
	http        *http.Client
	maxAttempts int
	baseDelay   time.Duration
	userAgent   string
}

// New creates a client from the given options (nil means defaults).
func New(opts *Options) *Client {
	if opts == nil {
		opts = DefaultOptions()
	}
	if opts.Timeout == 0 {
		opts.Timeout = DefaultTimeout
	}
	if opts.MaxAttempts == 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	if opts.BaseDelay == 0 {
		opts.BaseDelay = DefaultBaseDelay
	}
	if opts.UserAgent == "" {
		opts.UserAgent = DefaultUserAgent
	}
	return &Client{
		http:        &http.Client{Timeout: opts.Timeout},
		maxAttempts: opts.MaxAttempts,
		baseDelay:   opts.BaseDelay,
		userAgent:   opts.UserAgent,
	}
}

// Do performs the request, retrying transient failures. Retried: network
// and timeout errors, 5xx responses, and HTTP 429. Not retried: other
// 4xx responses, which surface immediately as a StatusError. A single
// failed call never panics or aborts the process.
func (c *Client) Do(ctx context.Context, method, url string, headers map[string]string, body []byte) (int, []byte, error) {
	var lastErr error

	for attempt := 0; attempt < c.maxAttempts; attempt++ {
		if attempt > 0 {
			if err := c.sleep(ctx, time.Duration(attempt)*c.baseDelay); err != nil {
				return 0, nil, err
			}
		}

		status, respBody, err := c.once(ctx, method, url, headers, body)
		if err != nil {
			// No response at all: network failure or timeout.
			lastErr = &TransportError{URL: url, Cause: err}
			continue
		}

		switch {
		case status < 400:
			return status, respBody, nil
		case status == http.StatusTooManyRequests || status >= 500:
			lastErr = &StatusError{URL: url, Code: status, Body: string(respBody)}
		default:
			// Permanent client error: do not retry.
			return status, respBody, &StatusError{URL: url, Code: status, Body: string(respBody)}
		}
	}

	return 0, nil, lastErr
}

// once performs a single attempt.
func (c *Client) once(ctx context.Context, method, url string, headers map[string]string, body []byte) (int, []byte, error) {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, reader)
	if err != nil {
		return 0, nil, err
	}
	req.Header.Set("User-Agent", c.userAgent)
	for key, value := range headers {
		req.Header.Set(key, value)
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return 0, nil, err
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return 0, nil, err
	}
	return resp.StatusCode, respBody, nil
}

// sleep waits for the backoff delay, aborting early on context cancel.
func (c *Client) sleep(ctx context.Context, d time.Duration) error {
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
