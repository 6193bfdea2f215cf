// Package httpclient is the one place the core issues outbound HTTP
// requests (spec.md §6 network boundary): a shared http.Client with a
// per-request deadline, a descriptive User-Agent, and a per-host rate
// limiter so Chocolatey's ≤10 req/s cap (spec.md §4.3.2) is enforced
// centrally instead of duplicated into every provider.
package httpclient

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"strings"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/winpacman/core/internal/errs"
	"github.com/winpacman/core/internal/retry"
)

const (
	requestTimeout = 30 * time.Second
	userAgent      = "winpacman-core/1.0 (+https://github.com/winpacman/core)"
)

// Client wraps http.Client with the rate limiting and retry policy
// spec.md §5 requires for provider network requests.
type Client struct {
	hc       *http.Client
	limiters sync.Map // host -> *rate.Limiter
	// defaultLimit is applied to hosts with no explicit override; zero
	// means unlimited.
	defaultLimit rate.Limit
}

// New returns a Client with the given default per-host rate limit (in
// requests/sec, 0 = unlimited) and per-call 30s deadline.
func New(defaultRPS float64) *Client {
	limit := rate.Inf
	if defaultRPS > 0 {
		limit = rate.Limit(defaultRPS)
	}
	return &Client{
		hc:           &http.Client{Timeout: requestTimeout},
		defaultLimit: limit,
	}
}

// SetHostLimit overrides the per-second rate limit for a specific host,
// e.g. community.chocolatey.org at 10 req/s (spec.md §4.3.2).
func (c *Client) SetHostLimit(host string, rps float64) {
	c.limiters.Store(host, rate.NewLimiter(rate.Limit(rps), 1))
}

func (c *Client) limiterFor(host string) *rate.Limiter {
	if v, ok := c.limiters.Load(host); ok {
		return v.(*rate.Limiter)
	}
	l := rate.NewLimiter(c.defaultLimit, 1)
	actual, _ := c.limiters.LoadOrStore(host, l)
	return actual.(*rate.Limiter)
}

// Get issues a rate-limited, retried GET request and returns the body.
// The caller is responsible for closing nothing; the body is fully
// drained into memory, which is appropriate for the JSON/XML/NDJSON
// payload sizes every provider in spec.md §6 deals with.
func (c *Client) Get(ctx context.Context, url string) ([]byte, error) {
	var body []byte
	err := retry.Do(ctx, retry.Default(), func() error {
		req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
		if err != nil {
			return retry.NonRetryable{Err: err}
		}
		req.Header.Set("User-Agent", userAgent)

		if err := c.limiterFor(req.URL.Host).Wait(ctx); err != nil {
			return err
		}

		resp, err := c.hc.Do(req)
		if err != nil {
			return err
		}
		defer resp.Body.Close()

		if resp.StatusCode == http.StatusNotAcceptable {
			// Chocolatey's $skip >= 10000 signal; not transient, the
			// caller must switch pagination strategy, not retry.
			return retry.NonRetryable{Err: fmt.Errorf("406 not acceptable: %s", url)}
		}
		if resp.StatusCode >= 500 {
			return fmt.Errorf("server error %d from %s", resp.StatusCode, url)
		}
		if resp.StatusCode != http.StatusOK {
			return retry.NonRetryable{Err: fmt.Errorf("unexpected status %d from %s", resp.StatusCode, url)}
		}

		b, err := io.ReadAll(resp.Body)
		if err != nil {
			return err
		}
		body = b
		return nil
	})
	if err != nil {
		return nil, errs.ProviderUnavailable(url, err)
	}
	return body, nil
}

// IsNotAcceptable reports whether err wraps a Chocolatey-style 406
// response, distinguishing "switch pagination strategy" from a generic
// ProviderUnavailable failure.
func IsNotAcceptable(err error) bool {
	var e *errs.Error
	if errors.As(err, &e) && e.Cause != nil {
		return strings.Contains(e.Cause.Error(), "406 not acceptable")
	}
	return false
}
