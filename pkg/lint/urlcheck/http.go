package urlcheck

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"time"
)

// DefaultHTTPTimeout bounds a single HEAD request.
const DefaultHTTPTimeout = 2 * time.Second

// HTTPOptions configures an HTTPChecker.
type HTTPOptions struct {
	// Timeout bounds each request. Defaults to DefaultHTTPTimeout.
	Timeout time.Duration

	// UserAgent is sent with every request when set.
	UserAgent string

	// Transport overrides the HTTP transport (tests).
	Transport http.RoundTripper
}

// HTTPChecker issues a HEAD request for http and https URLs.
// Redirects are not followed: a 3xx response counts as reachable.
type HTTPChecker struct {
	client    *http.Client
	userAgent string
}

// NewHTTPChecker creates an HTTPChecker.
func NewHTTPChecker(opts HTTPOptions) *HTTPChecker {
	if opts.Timeout <= 0 {
		opts.Timeout = DefaultHTTPTimeout
	}
	transport := opts.Transport
	if transport == nil {
		if dt, ok := http.DefaultTransport.(*http.Transport); ok {
			transport = dt.Clone()
		}
	}

	return &HTTPChecker{
		client: &http.Client{
			Timeout:   opts.Timeout,
			Transport: transport,
			CheckRedirect: func(*http.Request, []*http.Request) error {
				return http.ErrUseLastResponse
			},
		},
		userAgent: opts.UserAgent,
	}
}

// Name returns "http".
func (c *HTTPChecker) Name() string {
	return "http"
}

// Responsible claims http and https URLs.
func (c *HTTPChecker) Responsible(u *url.URL) bool {
	return u.Scheme == "http" || u.Scheme == "https"
}

// Check sends a HEAD request. A status of 400 or above, or any transport
// error, is a failure.
func (c *HTTPChecker) Check(ctx context.Context, u *url.URL) Result {
	res := Result{Checker: c.Name()}

	req, err := http.NewRequestWithContext(ctx, http.MethodHead, u.String(), nil)
	if err != nil {
		res.Err = fmt.Errorf("create request: %w", err)
		return res
	}
	if c.userAgent != "" {
		req.Header.Set("User-Agent", c.userAgent)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		res.Err = fmt.Errorf("%w: %w", ErrUnreachable, err)
		return res
	}
	defer func() {
		_ = resp.Body.Close()
	}()
	_, _ = io.Copy(io.Discard, resp.Body)

	res.Status = resp.StatusCode
	if resp.StatusCode >= http.StatusBadRequest {
		res.Err = fmt.Errorf("%w: %s", ErrHTTPStatus, resp.Status)
	}
	return res
}
